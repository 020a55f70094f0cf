package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set [flags] CONTAINER_NAME PROPERTY VALUE",
		Short:   "Set a container property",
		Example: "  corralctl set test cpu_limit 0.9c",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key, value := args[0], args[1], args[2]

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.SetProperty(name, key, value); err != nil {
				return fmt.Errorf("set: %w", err)
			}

			return nil
		},
	}

	return cmd
}
