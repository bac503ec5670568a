package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/725aayush/setu-sharing/internal/config"
	"github.com/725aayush/setu-sharing/internal/logging"
	"github.com/725aayush/setu-sharing/pkg/retry"
	"github.com/725aayush/setu-sharing/pkg/shareclient"
)

var (
	cfg       *config.Config
	serverURL string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "setu",
	Short: "Setu Sharing - share and fetch directories over the LAN",
	Long: `Setu is a command-line tool for password-protected directory sharing
on a local network.

The sender runs "setu send" to publish a directory and gets back a share
link, a token, and a QR code. Receivers run "setu receive <token>" to
browse, download, and upload files after entering the share password.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load(os.Getenv)
		cfg.SetServerURL(serverURL)
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if logFormat != "" {
			cfg.LogFormat = logFormat
		}
		return logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "portal base URL (default $SETU_SERVER or "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json, console")
}

func newClient() *shareclient.Client {
	return shareclient.New(shareclient.Config{
		BaseURL:     cfg.ServerURL,
		Timeout:     cfg.Timeout,
		RetryConfig: retry.DefaultConfig(),
	})
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(passwordBytes)), nil
}
