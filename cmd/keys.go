package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/config"
	"github.com/andrei-shtanakov/Vimja/internal/keymap"
	"github.com/andrei-shtanakov/Vimja/internal/ui/markdown"
)

type keysOptions struct {
	root   *rootOptions
	plain  bool
	yaml   bool
	diff   bool
	export string
	width  int
	style  string
}

func newKeysCmd(root *rootOptions) *cobra.Command {
	o := &keysOptions{root: root}
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the active key bindings",
		Long: `List the bindings of the configured keymap, or the built-in ones when
no keymap is set.

With --export the bindings are written as a keymap file and the config
is pointed at it, ready for editing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&o.plain, "plain", false, "plain text without styling")
	flags.BoolVar(&o.yaml, "yaml", false, "print as a keymap file")
	flags.BoolVar(&o.diff, "diff", false, "show changes from the built-in bindings")
	flags.StringVar(&o.export, "export", "", "write the bindings to this keymap file and use it")
	flags.IntVarP(&o.width, "width", "w", 80, "wrap width")
	flags.StringVar(&o.style, "style", "", "glamour style (dark, light, notty, ...); default follows the terminal")
	cmd.MarkFlagsMutuallyExclusive("plain", "yaml", "diff", "export")
	return cmd
}

func (o *keysOptions) run(cmd *cobra.Command) error {
	cfg, used, err := o.root.load()
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return fmt.Errorf("loading keymap: %w", err)
	}
	descs := table.Descriptors()
	out := cmd.OutOrStdout()

	switch {
	case o.export != "":
		return o.exportTo(cmd, descs, used)
	case o.yaml:
		data, err := keymap.Encode(descs)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case o.diff:
		d, err := keymap.Diff(command.DefaultDescriptors(), descs)
		if err != nil {
			return err
		}
		if d == "" {
			_, err = fmt.Fprintln(out, "keymap matches the built-in bindings")
			return err
		}
		_, err = fmt.Fprint(out, d)
		return err
	case o.plain:
		_, err := fmt.Fprint(out, keymap.Plain(descs, o.width))
		return err
	}

	r, err := markdown.New(o.width, o.style)
	if err != nil {
		return err
	}
	rendered, err := r.Render(keymap.Markdown(descs))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// exportTo writes descs as a keymap file and points the config at it.
// Without a loaded config file the project-local one is created.
func (o *keysOptions) exportTo(cmd *cobra.Command, descs []command.Descriptor, configPath string) error {
	data, err := keymap.Encode(descs)
	if err != nil {
		return err
	}
	path := config.ExpandHome(o.export)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating keymap directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing keymap: %w", err)
	}

	if configPath == "" {
		configPath = config.LocalConfigPath
	}
	if err := config.SaveKeymap(configPath, o.export); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bindings to %s (config: %s)\n", len(descs), path, configPath)
	return err
}
