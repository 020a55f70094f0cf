package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func destroyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "destroy [flags] CONTAINER_NAME",
		Short:   "Destroy a container and all its properties",
		Example: "  corralctl destroy test",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Destroy(name); err != nil {
				return fmt.Errorf("destroy: %w", err)
			}

			return nil
		},
	}

	return cmd
}
