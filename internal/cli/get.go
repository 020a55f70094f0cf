package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get [flags] CONTAINER_NAME PROPERTY",
		Short:   "Get a container property",
		Example: "  corralctl get test cpu_limit",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key := args[0], args[1]

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			value, err := c.GetProperty(name, key)
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	}

	return cmd
}
