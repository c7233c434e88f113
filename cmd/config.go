package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andrei-shtanakov/Vimja/internal/config"
	"github.com/andrei-shtanakov/Vimja/internal/log"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or edit the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config file",
		Long: `Write the commented default config. The path defaults to
` + config.LocalConfigPath + ` in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.LocalConfigPath
			if len(args) == 1 {
				path = config.ExpandHome(args[0])
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path, log.Discard()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one value, keeping comments",
		Example: `  vimja config set initial_mode insert
  vimja config set cursor.insert_width 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := root.configPath()
			if err != nil {
				return err
			}
			before, readErr := os.ReadFile(path) //nolint:gosec // G304: path is the user's config
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			// The edited file must still load; otherwise put it back.
			if _, _, err := config.Load(viper.New(), path, log.Discard()); err != nil {
				if readErr == nil {
					_ = os.WriteFile(path, before, 0o600)
				} else {
					_ = os.Remove(path)
				}
				return fmt.Errorf("%s: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
			return err
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, used, err := root.load()
			if err != nil {
				return err
			}
			if used == "" {
				used = "(none, using defaults)"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), used)
			return err
		},
	}

	cmd.AddCommand(initCmd, setCmd, pathCmd)
	return cmd
}

// configPath returns the file config edits: --config, else the file that
// would be loaded, else the project-local file.
func (o *rootOptions) configPath() (string, error) {
	if o.cfgFile != "" {
		return o.cfgFile, nil
	}
	_, used, err := config.Load(viper.New(), "", log.Discard())
	switch {
	case used != "":
		return used, nil
	case err != nil:
		return "", err
	}
	return config.LocalConfigPath, nil
}
