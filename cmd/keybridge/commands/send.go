package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"keybridge/internal/domain"
	"keybridge/internal/requests"
)

// send-to-device <user> <device> <event-type> <content>: send one to-device
// event and print the correlation id. Mainly useful when debugging a stuck
// verification against a test homeserver.
func sendToDeviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-to-device <user> <device> <event-type> <content>",
		Short: "Send a raw to-device event",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return fmt.Errorf("no homeserver configured. use --homeserver")
			}
			var content json.RawMessage
			if err := json.Unmarshal([]byte(args[3]), &content); err != nil {
				return fmt.Errorf("content is not valid JSON: %w", err)
			}

			tdr := requests.NewToDeviceRequest(
				domain.UserID(args[0]),
				domain.DeviceID(args[1]).Target(),
				domain.EventType(args[2]),
				content,
			)
			req := requests.NewOutgoingRequest(tdr)

			if _, err := appCtx.Exchange.Send(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Printf("sent, request id %s\n", req.RequestID())
			return nil
		},
	}
}
