package workbook

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSheet  = errors.New("sheet not found in workbook")
	ErrMissingColumn = errors.New("required column not found")
	ErrInvalidValue  = errors.New("invalid cell value")
)

// SourceError carrega a aba, coluna e linha onde a leitura falhou
type SourceError struct {
	Err    error
	Sheet  string
	Column string
	Row    int // Linha da planilha, começando em 1 (0 quando não se aplica)
	Value  string
}

func (e *SourceError) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("%s: sheet %q, column %q, row %d: %q", e.Err, e.Sheet, e.Column, e.Row, e.Value)
	case e.Column != "":
		return fmt.Sprintf("%s: sheet %q, column %q", e.Err, e.Sheet, e.Column)
	default:
		return fmt.Sprintf("%s: sheet %q", e.Err, e.Sheet)
	}
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
