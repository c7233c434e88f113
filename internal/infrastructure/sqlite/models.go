package sqlite

import (
	"time"

	"github.com/andrei-shtanakov/Vimja/internal/register"
)

// RegisterModel is a row of the registers table. Times are Unix seconds.
type RegisterModel struct {
	Name      string
	Text      string
	IsLine    bool
	UpdatedAt int64
}

func toRegisterModel(name string, r register.Register, now time.Time) RegisterModel {
	return RegisterModel{
		Name:      name,
		Text:      r.Text,
		IsLine:    r.IsLine,
		UpdatedAt: now.Unix(),
	}
}

func (m RegisterModel) toRegister() register.Register {
	return register.Register{Text: m.Text, IsLine: m.IsLine}
}
