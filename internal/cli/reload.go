package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reload [flags]",
		Short:   "Reload the daemon's state, optionally discarding it",
		Example: "  corralctl reload --discard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			discard, _ := cmd.Flags().GetBool("discard")

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Reload(discard); err != nil {
				return fmt.Errorf("reload: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().Bool("discard", false, "Discard all existing containers")

	return cmd
}
