package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keybridge/internal/keyexport"
)

// import <export>: decrypt an armored export and print the keys as JSON.
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <export>",
		Short: "Decrypt an armored key export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			armored, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			keys, err := keyexport.Decrypt(string(armored), passphrase)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(keys, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
