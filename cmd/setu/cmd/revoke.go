package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Stop a share before it expires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Revoke(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Share %s revoked.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)
}
