package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/dashboard/internal/app"
	"github.com/abelbrown/dashboard/internal/prefs"
)

// stateAliases map the short names accepted by state reset onto store keys.
var stateAliases = map[string]string{
	"favorites":   app.FavoritesKey,
	"preferences": prefs.Key,
}

// NewStateCommand creates the state command group, which inspects and
// resets the persisted favorites and preferences.
func NewStateCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset saved favorites and preferences",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the saved state entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			keys, err := db.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset [favorites|preferences|KEY]...",
		Short: "Delete saved state; with no arguments, delete all of it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			keys := make([]string, 0, len(args))
			for _, a := range args {
				if k, ok := stateAliases[a]; ok {
					a = k
				}
				keys = append(keys, a)
			}
			if len(keys) == 0 {
				if keys, err = db.Keys(); err != nil {
					return err
				}
			}
			for _, k := range keys {
				if err := db.Delete(k); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", k)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, resetCmd)
	return cmd
}
