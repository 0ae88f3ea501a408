package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the whole directory with the default catalog",
	Long: `Replace the whole directory with the default catalog.

Every user-added resource, pin and click count is lost. Pass --yes to confirm.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _, core, err := openCore(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		items, err := core.Directory.ResetToDefault(cmd.Context(), resetYes)
		if err != nil {
			return fmt.Errorf("%w (pass --yes)", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "✅ directory reset to %d default resources\n", len(items))
		return err
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the reset")
}
