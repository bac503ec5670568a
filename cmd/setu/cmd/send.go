package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/725aayush/setu-sharing/internal/create"
	"github.com/725aayush/setu-sharing/internal/logging"
)

var (
	sendDir      string
	sendPassword string
	sendIP       string
	sendExpiry   int
	sendQROut    string
)

var sendCmd = &cobra.Command{
	Use:   "send <directory>",
	Short: "Share a directory on the LAN",
	Long: `Publish a directory through the portal and print the share link
and token. Receivers need the share password to get in.

Expiry is given in minutes. Use --expiry 0 for a share that never
expires; leave the flag unset to take the server default (24 hours).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			sendDir = args[0]
		}
		if sendDir != "" {
			abs, err := filepath.Abs(sendDir)
			if err == nil {
				sendDir = abs
			}
		}

		if sendPassword == "" {
			pw, err := promptPassword("Share password: ")
			if err != nil {
				return err
			}
			sendPassword = pw
		}

		ctx := cmd.Context()
		ctrl := create.NewController(newClient())
		ctrl.Prefill(ctx)

		params := create.Params{
			DirPath:  sendDir,
			Password: sendPassword,
			HostIP:   sendIP,
		}
		if cmd.Flags().Changed("expiry") {
			expiry := sendExpiry
			params.ExpiryMinutes = &expiry
		}

		result, err := ctrl.Submit(ctx, params)
		if err != nil {
			return err
		}

		logging.Debug("share created", zap.String("token", result.Token))

		fmt.Printf("Token:      %s\n", result.Token)
		fmt.Printf("Share link: %s\n", result.ShareLink)
		if result.ExpiresAt != "" {
			fmt.Printf("Expires:    %s\n", result.ExpiresAt)
		} else {
			fmt.Println("Expires:    never")
		}

		if sendQROut != "" {
			png, err := create.QRPNG(result.ShareLink, 0)
			if err != nil {
				return fmt.Errorf("failed to render QR code: %w", err)
			}
			if err := os.WriteFile(sendQROut, png, 0o644); err != nil {
				return fmt.Errorf("failed to write QR code: %w", err)
			}
			fmt.Printf("QR code:    %s\n", sendQROut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendDir, "dir", "", "directory to share (alternative to the positional argument)")
	sendCmd.Flags().StringVar(&sendPassword, "password", "", "share password (prompted when omitted)")
	sendCmd.Flags().StringVar(&sendIP, "ip", "", "host IP to embed in the share link (default: server suggestion)")
	sendCmd.Flags().IntVar(&sendExpiry, "expiry", 0, "share lifetime in minutes, 0 = never expires")
	sendCmd.Flags().StringVar(&sendQROut, "qr-out", "", "write the share QR code to this PNG file")
}
