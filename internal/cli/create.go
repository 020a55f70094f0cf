package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create [flags] CONTAINER_NAME",
		Short:   "Create a container",
		Example: "  corralctl create test",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := c.Create(name); err != nil {
				return fmt.Errorf("create: %w", err)
			}

			return nil
		},
	}

	return cmd
}
