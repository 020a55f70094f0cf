package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corraldev/corral/internal/config"
	"github.com/corraldev/corral/internal/logging"
	"github.com/corraldev/corral/internal/store"
	"github.com/corraldev/corral/pkg/client"
)

const reloadTimeout = 30 * time.Second

// Cmd builds the corrald command: running it starts the daemon in the
// foreground; the reload subcommand drives a running daemon.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "corrald [flags]",
		Short:        "The corral container property daemon",
		Example:      "  corrald --socket /run/corral/corrald.sock",
		Version:      Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd)
		},
	}

	cmd.PersistentFlags().StringP(
		"config",
		"c",
		"",
		"Path to config file (default is /etc/corral/corrald.yaml)",
	)
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().
		Bool("discard", false, "With reload: discard existing state")

	cmd.Flags().StringP("socket", "s", "", "UNIX control socket")
	cmd.Flags().String("state-dir", "", "Directory for container state")
	cmd.Flags().StringP(
		"log",
		"l",
		"",
		"Destination to write logs (default is stderr)",
	)
	cmd.Flags().Bool("enforce", false, "Apply resource properties to cgroups")

	cmd.AddCommand(reloadCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

func runDaemon(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewFileLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("initialise logging: %w", err)
	}

	st, err := store.New(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}

	if err := st.Load(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	listener, err := setupListener(cfg.Socket)
	if err != nil {
		return fmt.Errorf("setup socket: %w", err)
	}

	server := NewServer(listener, st, logger, cfg.Enforce)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	ctx, cancel := signal.NotifyContext(
		cmd.Context(),
		syscall.SIGTERM,
		os.Interrupt,
	)
	defer cancel()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	case <-ctx.Done():
		server.Shutdown()
		<-errCh
	}

	return nil
}

func reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "reload",
		Short:   "Reload a running daemon, optionally discarding its state",
		Example: "  corrald --verbose --discard reload",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			discard, _ := cmd.Root().PersistentFlags().GetBool("discard")

			c, err := client.Connect(cfg.Socket, reloadTimeout)
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer c.Close()

			if err := c.Reload(discard); err != nil {
				return fmt.Errorf("reload: %w", err)
			}

			return nil
		},
	}
}

// loadConfig resolves the effective configuration: config file and env
// first, then explicit flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		cfg.Debug = true
	}

	flags := cmd.Root().Flags()
	if flags.Changed("socket") {
		cfg.Socket, _ = flags.GetString("socket")
	}
	if flags.Changed("state-dir") {
		cfg.StateDir, _ = flags.GetString("state-dir")
	}
	if flags.Changed("log") {
		cfg.LogFile, _ = flags.GetString("log")
	}
	if flags.Changed("enforce") {
		cfg.Enforce, _ = flags.GetBool("enforce")
	}

	return cfg, nil
}

func setupListener(socket string) (net.Listener, error) {
	if err := os.Remove(socket); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(socket), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	if err := os.Chmod(socket, 0o660); err != nil {
		listener.Close()
		return nil, fmt.Errorf("set socket permissions: %w", err)
	}

	return listener, nil
}
