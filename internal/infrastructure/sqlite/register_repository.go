package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/andrei-shtanakov/Vimja/internal/register"
)

// RegisterRepository loads and saves register contents.
type RegisterRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newRegisterRepository(db *sql.DB) *RegisterRepository {
	return &RegisterRepository{db: db, now: time.Now}
}

// LoadAll returns every saved register keyed by name.
func (r *RegisterRepository) LoadAll(ctx context.Context) (map[string]register.Register, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, text, is_line, updated_at FROM registers`)
	if err != nil {
		return nil, fmt.Errorf("loading registers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]register.Register)
	for rows.Next() {
		var m RegisterModel
		if err := rows.Scan(&m.Name, &m.Text, &m.IsLine, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning register: %w", err)
		}
		out[m.Name] = m.toRegister()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading registers: %w", err)
	}
	return out, nil
}

// SaveAll replaces the saved registers with regs in one transaction.
func (r *RegisterRepository) SaveAll(ctx context.Context, regs map[string]register.Register) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving registers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registers`); err != nil {
		return fmt.Errorf("clearing registers: %w", err)
	}

	names := make([]string, 0, len(regs))
	for name := range regs {
		names = append(names, name)
	}
	slices.Sort(names)

	now := r.now()
	for _, name := range names {
		m := toRegisterModel(name, regs[name], now)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO registers (name, text, is_line, updated_at) VALUES (?, ?, ?, ?)`,
			m.Name, m.Text, m.IsLine, m.UpdatedAt,
		); err != nil {
			return fmt.Errorf("saving register %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// UpdatedAt returns when name was last saved, or false if it is not saved.
func (r *RegisterRepository) UpdatedAt(ctx context.Context, name string) (time.Time, bool, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM registers WHERE name = ?`, name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading register %q: %w", name, err)
	}
	return time.Unix(ts, 0), true, nil
}
