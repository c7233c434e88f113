// Package cmd holds the vimja command line.
package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andrei-shtanakov/Vimja/internal/config"
	"github.com/andrei-shtanakov/Vimja/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the buffer.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// debugLogPath is used when --debug is given without a log path.
const debugLogPath = "debug.log"

var (
	version = "dev"
	rootCmd = newRootCmd(viper.GetViper())
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	o := &rootOptions{v: v}
	cmd := &cobra.Command{
		Use:   "vimja [file]",
		Short: "A modal keyboard editor for the terminal",
		Long: `Vimja edits a text file with vim-style modal keys: motions and operators
in normal mode, typing in insert mode and incremental search with "/".
Bindings come from a keymap file; run 'vimja keys' to list them.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return o.runEditor(cmd.Context(), path)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.cfgFile, "config", "c", "",
		"config file (default: .vimja/config.yaml, then ~/.config/vimja/config.yaml)")
	flags.StringP("keymap", "k", "", "keymap file replacing the built-in bindings")
	flags.BoolP("debug", "d", false, "write a debug log")
	flags.String("log", "", "debug log path (default: "+debugLogPath+" with --debug)")

	// Bind flags to viper
	_ = v.BindPFlag("keymap", flags.Lookup("keymap"))
	_ = v.BindPFlag("log.debug", flags.Lookup("debug"))
	_ = v.BindPFlag("log.path", flags.Lookup("log"))

	cmd.AddCommand(newKeysCmd(o), newConfigCmd(o))
	return cmd
}

// load reads the configuration. It logs nowhere: the log destination is
// itself configured.
func (o *rootOptions) load() (config.Config, string, error) {
	cfg, used, err := config.Load(o.v, o.cfgFile, log.Discard())
	if err != nil {
		if used != "" {
			return config.Config{}, used, fmt.Errorf("%s: %w", used, err)
		}
		return config.Config{}, used, fmt.Errorf("loading config: %w", err)
	}
	return cfg, used, nil
}

func (o *rootOptions) runEditor(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, used, err := o.load()
	if err != nil {
		return err
	}

	logger, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	logger.Info(log.CatConfig, "Starting vimja", "version", version, "config", used, "file", path)

	s, err := newSession(ctx, cfg, path, logger)
	if err != nil {
		logger.ErrorErr(log.CatUI, "Failed to start session", err)
		return err
	}

	p := tea.NewProgram(&s.model, programOptions(cfg)...)
	_, err = p.Run()

	// Registers and traces are flushed even when the program failed.
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if closeErr := s.close(closeCtx); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func programOptions(cfg config.Config) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}

// openLogger returns the debug logger for cfg. Without a path or --debug
// it discards. Info and above are written unless debug is on.
func openLogger(cfg config.LogConfig) (*log.Logger, error) {
	path := config.ExpandHome(cfg.Path)
	if path == "" && cfg.Debug {
		path = debugLogPath
	}
	if path == "" {
		return log.Discard(), nil
	}
	logger, err := log.OpenTea(path, "vimja")
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	if !cfg.Debug {
		logger.SetMinLevel(log.LevelInfo)
	}
	return logger, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
