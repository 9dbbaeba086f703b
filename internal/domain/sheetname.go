package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSheetNameLength é o limite de caracteres de um nome de aba no Excel
	MaxSheetNameLength = 31

	// TotalSheetName é a aba reservada para a previsão total na exportação
	TotalSheetName = "Total"
)

var sheetNameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"?", "_",
	"*", "_",
	"[", "_",
	"]", "_",
)

// SanitizeSheetName trunca o nome em 31 caracteres e troca separadores por "_"
func SanitizeSheetName(name string) string {
	name = truncateRunes(strings.TrimSpace(name), MaxSheetNameLength)
	name = strings.Trim(sheetNameReplacer.Replace(name), "'")
	if name == "" {
		return "Sheet"
	}
	return name
}

// SheetNamer gera nomes de aba únicos; colisões recebem sufixo numérico
type SheetNamer struct {
	used map[string]struct{}
}

func NewSheetNamer(reserved ...string) *SheetNamer {
	n := &SheetNamer{used: make(map[string]struct{})}
	for _, name := range reserved {
		n.used[strings.ToLower(name)] = struct{}{}
	}
	return n
}

func (n *SheetNamer) Name(raw string) string {
	base := SanitizeSheetName(raw)
	candidate := base

	for i := 2; ; i++ {
		if _, taken := n.used[strings.ToLower(candidate)]; !taken {
			break
		}
		suffix := fmt.Sprintf("~%d", i)
		candidate = truncateRunes(base, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}

	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
