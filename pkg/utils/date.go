package utils

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/06",
	"1/2/06 15:04",
}

// ParseDate interpreta uma data textual nos formatos aceitos nas planilhas
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("data vazia")
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("formato de data não reconhecido: %q", dateStr)
}

// TruncateToDay remove o horário mantendo o dia do calendário em UTC
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
