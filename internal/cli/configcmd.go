package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the CLI configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if isJSON() {
					return printJSON(output(cmd), settings)
				}
				data, err := yaml.Marshal(settings)
				if err != nil {
					return fmt.Errorf("marshaling config: %w", err)
				}
				_, err = output(cmd).Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Save a setting to the config file",
			Long:  "Save db_path, dev or user_cache_size to ~/.config/pt/config.yaml.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(args[0], args[1])
			},
		},
	)
	return cmd
}

func runConfigSet(key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "db_path":
		cfg.DBPath = value
	case "dev":
		dev, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid dev value: %s", value)
		}
		cfg.Dev = dev
	case "user_cache_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid user_cache_size: %s", value)
		}
		cfg.UserCacheSize = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return saveConfig(cfg)
}
