package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup already wrote defaults if the file was missing; refuse to clobber an edited one.
			if _, err := os.Stat(a.configPath); err == nil && !force {
				current, err := LoadConfig(a.configPath)
				if err != nil {
					return err
				}
				if !configEqual(current, DefaultConfig()) {
					return fmt.Errorf("%s already exists, use --force to overwrite it", a.configPath)
				}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := SaveConfig(a.configPath, DefaultConfig()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, including environment and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.config)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// configEqual compares two configs by their JSON form.
func configEqual(a, b *Config) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}
