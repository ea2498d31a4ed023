package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// prefsCmd настройки интерфейса. Доступны без входа, как и на экране логина.
func prefsCmd(app appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			locale := a.prefs.Locale(ctx)
			a.io.Println("=== Preferences ===")
			a.io.Printf("Locale:    %s (%s)\n", locale, a.prefs.Direction(ctx))
			a.io.Printf("Dark mode: %s\n", onOff(a.prefs.DarkMode(ctx)))

			org, err := a.prefs.CurrentOrganization(ctx)
			if err != nil {
				return err
			}
			if org == nil {
				a.io.Println("Organization: (none)")
			} else {
				a.io.Printf("Organization: %s [%d]\n", org.DisplayName(locale), org.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(prefsLocaleCmd(app), prefsDarkModeCmd(app), prefsOrgCmd(app))
	return cmd
}

func prefsLocaleCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "locale <code>",
		Short:   "Set interface language (en, ar)",
		Example: "  grc prefs locale ar",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.prefs.SetLocale(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.io.Printf("✓ Locale set to %s (%s)\n", args[0], a.prefs.Direction(cmd.Context()))
			return nil
		},
	}
}

func prefsDarkModeCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "dark-mode on|off|toggle",
		Short:     "Switch dark mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			var (
				enabled bool
				err     error
			)
			switch args[0] {
			case "on":
				enabled = true
				err = a.prefs.SetDarkMode(ctx, true)
			case "off":
				err = a.prefs.SetDarkMode(ctx, false)
			case "toggle":
				enabled, err = a.prefs.ToggleDarkMode(ctx)
			default:
				return fmt.Errorf("invalid value %q, want on, off or toggle", args[0])
			}
			if err != nil {
				return err
			}

			a.io.Printf("✓ Dark mode %s\n", onOff(enabled))
			return nil
		},
	}
}

func prefsOrgCmd(app appFunc) *cobra.Command {
	var clearOrg bool

	cmd := &cobra.Command{
		Use:     "org [json]",
		Short:   "Set (or --clear) the current organization",
		Example: `  grc prefs org '{"id":1,"name":"Head Office"}'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			if clearOrg {
				if err := a.prefs.SetOrganization(ctx, nil); err != nil {
					return err
				}
				a.io.Println("✓ Organization cleared")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("organization JSON is required (or --clear)")
			}

			if err := a.prefs.SetOrganizationJSON(ctx, json.RawMessage(args[0])); err != nil {
				return err
			}
			org, err := a.prefs.CurrentOrganization(ctx)
			if err != nil {
				return err
			}
			if org != nil {
				a.io.Printf("✓ Organization set to %s\n", org.DisplayName(a.prefs.Locale(ctx)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearOrg, "clear", false, "remove the current organization")
	return cmd
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
