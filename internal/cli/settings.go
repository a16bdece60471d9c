package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sas-panel/internal/client"
)

var settingNames = map[string]client.Setting{
	"timezone":    client.SettingTimezone,
	"sms-api-key": client.SettingSMSAPIKey,
	"api-key":     client.SettingSMSAPIKey,
	"telephone":   client.SettingTelephone,
}

func lookupSetting(name string) (client.Setting, error) {
	s, ok := settingNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return client.Setting{}, fmt.Errorf("unknown setting %q (want timezone, sms-api-key or telephone)", name)
	}
	return s, nil
}

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	get := &cobra.Command{
		Use:   "get [name]",
		Short: "Print one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSettingsGet,
	}
	set := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSet,
	}

	cmd.AddCommand(get, set)
	return cmd
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	settings := client.Settings()
	if len(args) == 1 {
		one, err := lookupSetting(args[0])
		if err != nil {
			return err
		}
		settings = []client.Setting{one}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	for _, setting := range settings {
		value, found, err := s.client.Get(cmd.Context(), setting)
		if err != nil {
			return err
		}
		if !found {
			value = "(unset)"
		}
		if len(settings) == 1 {
			fmt.Fprintln(out, value)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", setting.Object, value)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	setting, err := lookupSetting(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.client.Set(cmd.Context(), setting, args[1])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("backend rejected %s", setting.Object)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set\n", setting.Object)
	return nil
}
