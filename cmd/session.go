package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrei-shtanakov/Vimja/internal/config"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/editor"
	"github.com/andrei-shtanakov/Vimja/internal/infrastructure/sqlite"
	"github.com/andrei-shtanakov/Vimja/internal/interpreter"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/register"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
	"github.com/andrei-shtanakov/Vimja/internal/watcher"
)

// session is everything one editor run owns, wired from the config.
type session struct {
	model   editor.Model
	started bool

	logger    *log.Logger
	tracing   *tracing.Provider
	registers *register.Store
	db        *sqlite.DB
	watcher   *watcher.Watcher
}

// newSession builds the interpreter and editor for the file at path.
// path may be empty or name a file that does not exist yet.
func newSession(ctx context.Context, cfg config.Config, path string, logger *log.Logger) (_ *session, err error) {
	s := &session{logger: logger, registers: register.NewStore()}
	defer func() {
		if err != nil {
			_ = s.close(ctx)
		}
	}()

	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("loading keymap: %w", err)
	}
	initial, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	s.tracing, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	if cfg.Registers.Persist {
		dbPath := config.ExpandHome(cfg.Registers.Path)
		if err := s.openRegisters(ctx, dbPath); err != nil {
			// Editing still works without saved registers.
			logger.ErrorErr(log.CatStore, "Register database unavailable", err, "path", dbPath)
		}
	}

	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	in := interpreter.New(table,
		interpreter.WithLogger(logger),
		interpreter.WithTracer(s.tracing.Tracer()),
		interpreter.WithInitialMode(initial),
		interpreter.WithWidths(cfg.Cursor.Widths()),
		interpreter.WithRegisters(s.registers),
	)

	opts := editor.Options{
		Path:            path,
		ShowStatusBar:   cfg.UI.ShowStatusBar,
		ShowLineNumbers: cfg.UI.ShowLineNumbers,
		ShowLastLog:     cfg.UI.ShowLastLog,
		Logger:          logger,
	}
	if cfg.WatchKeymap && cfg.Keymap != "" {
		changes, err := s.watchKeymap(config.ExpandHome(cfg.Keymap))
		if err != nil {
			in.Shutdown()
			return nil, fmt.Errorf("watching keymap: %w", err)
		}
		opts.KeymapChanges = changes
		opts.LoadKeymap = cfg.Table
	}

	s.model = editor.New(in, cursor.NewBuffer(text), opts)
	s.started = true
	return s, nil
}

func (s *session) openRegisters(ctx context.Context, path string) error {
	db, err := sqlite.NewDB(path)
	if err != nil {
		return err
	}
	saved, err := db.Registers().LoadAll(ctx)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.registers.Restore(saved)
	s.db = db
	s.logger.Debug(log.CatStore, "Loaded registers", "path", path, "count", len(saved))
	return nil
}

func (s *session) watchKeymap(path string) (<-chan struct{}, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}
	s.watcher = w
	s.logger.Debug(log.CatKeymap, "Watching keymap", "path", path)
	return changes, nil
}

// close ends the editor session, saves registers and flushes traces.
// It is safe on a partially built session.
func (s *session) close(ctx context.Context) error {
	var errs []error
	if s.started {
		s.model.Close()
	}
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
	}
	if s.db != nil {
		errs = append(errs, s.saveRegisters(ctx))
		errs = append(errs, s.db.Close())
	}
	if s.tracing != nil {
		errs = append(errs, s.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (s *session) saveRegisters(ctx context.Context) error {
	regs := s.registers.Snapshot()
	if err := s.db.Registers().SaveAll(ctx, regs); err != nil {
		s.logger.ErrorErr(log.CatStore, "Failed to save registers", err, "path", s.db.Path())
		return err
	}
	s.logger.Debug(log.CatStore, "Saved registers", "count", len(regs))
	return nil
}

// readText returns the contents of path, or "" when path is empty or
// the file does not exist yet.
func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the file the user asked to edit
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
