package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keybridge/internal/domain"
	"keybridge/internal/keyexport"
)

// export <keys.json> <out>: armor a JSON list of room keys.
func exportCmd() *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "export <keys.json> <out>",
		Short: "Encrypt a room key list into an armored export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var keys []domain.ExportedRoomKey
			if err := json.Unmarshal(raw, &keys); err != nil {
				return err
			}

			armored, err := keyexport.Encrypt(keys, passphrase, rounds)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], []byte(armored+"\n"), 0o600); err != nil {
				return err
			}
			fmt.Printf("exported %d keys to %s\n", len(keys), args[1])
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", keyexport.RecommendedRounds, "PBKDF2 rounds for passphrase stretching")
	return cmd
}
