// Package cli implements corralctl, the command-line client for corrald.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corraldev/corral/internal/daemon"
	"github.com/corraldev/corral/internal/logging"
	"github.com/corraldev/corral/pkg/client"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "corralctl",
		Short:        "Manage containers and their properties on a corral daemon.",
		Long:         "Manage containers and their properties on a corral daemon over its control socket.",
		Example:      "",
		Version:      daemon.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logfile, _ := cmd.Flags().GetString("log")
			debug, _ := cmd.Flags().GetBool("debug")

			if logfile != "" {
				logger, err := logging.NewFileLogger(logfile, debug)
				if err != nil {
					return fmt.Errorf("initialise logging: %w", err)
				}

				cmd.Root().SetErr(logging.NewErrorWriter(logger))
			}

			return nil
		},
	}

	cmd.AddCommand(
		createCmd(),
		destroyCmd(),
		listCmd(),
		setCmd(),
		getCmd(),
		reloadCmd(),
	)

	cmd.PersistentFlags().StringP(
		"socket",
		"s",
		client.DefaultSocket,
		"UNIX control socket of the daemon",
	)

	cmd.PersistentFlags().DurationP(
		"timeout",
		"t",
		10*time.Second,
		"Timeout applied to every API call",
	)

	cmd.PersistentFlags().StringP(
		"log",
		"l",
		"",
		"Destination to write error logs (default is stderr)",
	)

	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

// connect dials the daemon using the persistent socket/timeout flags.
func connect(cmd *cobra.Command) (*client.Client, error) {
	socket, _ := cmd.Flags().GetString("socket")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	c, err := client.Connect(socket, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	return c, nil
}
