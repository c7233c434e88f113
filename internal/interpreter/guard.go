package interpreter

import (
	"errors"
	"fmt"

	"github.com/andrei-shtanakov/Vimja/internal/cursor"
)

var (
	// ErrInvalidOperation marks a command the adapter cannot carry out,
	// such as a movement unit it does not support.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrDetached is returned by cursor operations before an editor is attached.
	ErrDetached = errors.New("no editor attached")
	// ErrAdapterFault wraps a panic raised by the host adapter.
	ErrAdapterFault = errors.New("cursor adapter fault")
)

// protect runs fn and converts a panic into ErrAdapterFault.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAdapterFault, r)
		}
	}()
	return fn()
}

// call runs fn against the attached adapter.
func (in *Interpreter) call(fn func(cursor.Adapter) error) error {
	a := in.adapter
	if a == nil {
		return ErrDetached
	}
	return protect(func() error { return fn(a) })
}

// edit runs fn inside an edit transaction. EndEdit runs on every path
// once BeginEdit has returned, including when fn panics.
func (in *Interpreter) edit(fn func(cursor.Adapter) error) error {
	a := in.adapter
	if a == nil {
		return ErrDetached
	}
	if err := protect(func() error {
		a.BeginEdit()
		return nil
	}); err != nil {
		return err
	}
	err := protect(func() error { return fn(a) })
	if endErr := protect(func() error {
		a.EndEdit()
		return nil
	}); endErr != nil && err == nil {
		err = endErr
	}
	return err
}
