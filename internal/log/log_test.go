package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info(CatMode, "switched", "from", "NORMAL", "to", "INSERT")

	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2} \[INFO\] \[mode\] switched from=NORMAL to=INSERT\n$`)
	require.Regexp(t, re, buf.String())
}

func TestLogger_OddFields(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Debug(CatKeys, "key", "code", "d", "orphan")
	require.Contains(t, buf.String(), "code=d orphan=<missing>")
}

func TestLogger_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.ErrorErr(CatEdit, "paste failed", errors.New("boom"))
	l.ErrorErr(CatEdit, "paste failed", nil)

	require.Contains(t, buf.String(), "[ERROR] [edit] paste failed error=boom")
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetMinLevel(LevelWarn)

	l.Debug(CatKeys, "hidden")
	l.Info(CatKeys, "hidden")
	l.Warn(CatKeys, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[WARN] [keys] shown")
}

func TestLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetEnabled(false)
	l.Error(CatUI, "nothing")
	require.Empty(t, buf.String())
}

func TestLogger_WithScopesFields(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf)
	session := root.With("session", "abc")

	session.Info(CatKeys, "dispatch", "seq", "dd")
	root.Info(CatKeys, "plain")

	require.Contains(t, buf.String(), "dispatch session=abc seq=dd")
	require.Contains(t, buf.String(), "[keys] plain\n")
}

func TestLogger_NilAndDiscardAreSafe(t *testing.T) {
	var l *Logger
	l.Info(CatUI, "ignored")
	require.Nil(t, l.With("k", "v"))
	require.Nil(t, l.NewListener(context.Background()))
	require.NoError(t, l.Close())

	d := Discard()
	d.Error(CatUI, "ignored")
	require.NoError(t, d.Close())
}

func TestLogger_PublishesEntries(t *testing.T) {
	l := New(&bytes.Buffer{})
	defer func() { _ = l.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := l.NewListener(ctx)
	require.NotNil(t, listener)

	l.Warn(CatSearch, "no match", "pattern", "zzz")

	event, ok := listener.Listen()().(LogEvent)
	require.True(t, ok)
	require.Contains(t, event.Payload, "[WARN] [search] no match pattern=zzz")
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	l, err := Open(path)
	require.NoError(t, err)
	l.Info(CatConfig, "first")
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	l.Info(CatConfig, "second")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "first")
	require.Contains(t, string(data), "second")
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "debug.log"))
	require.Error(t, err)
}
