package commands

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"keybridge/internal/encoding"
	"keybridge/internal/verification"
)

func qrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Show or scan device verification QR codes",
	}
	cmd.AddCommand(qrShowCmd(), qrScanCmd())
	return cmd
}

// qr show: render a verification payload as a QR PNG.
func qrShowCmd() *cobra.Command {
	var (
		mode      uint8
		flowID    string
		firstKey  string
		secondKey string
		secret    string
		size      int
	)

	cmd := &cobra.Command{
		Use:   "show <out.png>",
		Short: "Render a verification payload as a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qr, err := verification.EncodeQR(mode, flowID, firstKey, secondKey, secret, size)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := png.Encode(f, qr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Uint8Var(&mode, "mode", verification.ModeCrossUser, "verification mode (0-2)")
	cmd.Flags().StringVar(&flowID, "flow-id", "", "verification flow id (event id or transaction id)")
	cmd.Flags().StringVar(&firstKey, "first-key", "", "our key, unpadded base64")
	cmd.Flags().StringVar(&secondKey, "second-key", "", "their key, unpadded base64")
	cmd.Flags().StringVar(&secret, "secret", "", "shared secret, unpadded base64")
	cmd.Flags().IntVar(&size, "size", 256, "image size in pixels")
	_ = cmd.MarkFlagRequired("flow-id")
	_ = cmd.MarkFlagRequired("first-key")
	_ = cmd.MarkFlagRequired("second-key")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

// qr scan <image>: decode a verification payload from an image file.
func qrScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "Decode a verification QR code from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			img, _, err := image.Decode(f)
			if err != nil {
				return err
			}
			p, err := verification.ScanImage(img)
			if err != nil {
				return err
			}

			fmt.Printf("mode:       %d\n", p.Mode)
			fmt.Printf("flow id:    %s\n", p.FlowID)
			fmt.Printf("first key:  %s\n", encoding.B64(p.FirstKey))
			fmt.Printf("second key: %s\n", encoding.B64(p.SecondKey))
			fmt.Printf("secret:     %s\n", encoding.B64(p.SharedSecret))
			return nil
		},
	}
}
