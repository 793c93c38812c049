package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"uyadmin.io/cli/internal/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `View and edit uyadmin settings.

Values resolve in this order: command-line flags, UYADMIN_* environment
variables, the config file, built-in defaults.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigSetCommand(container))
	configCmd.AddCommand(NewConfigUnsetCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(container.Config)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// NewConfigSetCommand creates the set subcommand
func NewConfigSetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Write a value to the config file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := configStorage(cmd)
			if err != nil {
				return err
			}
			if err := storage.Set(args[0], args[1]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Set %s in %s", args[0], storage.Path())
			return nil
		},
	}
}

// NewConfigUnsetCommand creates the unset subcommand
func NewConfigUnsetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := configStorage(cmd)
			if err != nil {
				return err
			}
			if err := storage.Unset(args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Unset %s", args[0])
			return nil
		},
	}
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := configStorage(cmd)
			if err != nil {
				return err
			}
			source := "not created yet"
			if container.Config != nil && container.Config.Source != "" {
				source = "loaded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s (%s)\n", storage.Path(), source)
			return nil
		},
	}
}

func configStorage(cmd *cobra.Command) (*config.Storage, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.NewStorageWithPath(path), nil
	}
	return config.NewStorage()
}
