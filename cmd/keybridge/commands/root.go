package commands

import (
	"github.com/spf13/cobra"

	"keybridge/internal/app"
)

var (
	passphrase    string
	homeserverURL string
	appCtx        *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "keybridge",
		Short: "Export, import and verify end-to-end encryption keys",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if homeserverURL != "" {
				appCtx = app.NewWire(app.Config{HomeserverURL: homeserverURL})
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the key export")
	root.PersistentFlags().StringVar(&homeserverURL, "homeserver", "", "homeserver base URL (e.g. https://matrix.example.org)")

	root.AddCommand(exportCmd(), importCmd(), qrCmd(), sendToDeviceCmd())
	return root.Execute()
}
