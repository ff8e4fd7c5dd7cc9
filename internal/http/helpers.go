package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"spendwise/internal/core"
)

// formatDollars renders m the same way the terminal tables do.
func formatDollars(m core.Money) string {
	return "$" + m.String()
}

// parseDate parses an optional YYYY-MM-DD date. Empty input yields the zero
// date, which the tracker replaces with today.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request, p *RequestBodyParser) bool {
	if p != nil && p.IsJSON() {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") && r.Header.Get("HX-Request") == ""
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month), year)
}
