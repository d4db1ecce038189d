package market

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ReadQuotes reads one quote per line:
//
//	GOLD=2050.25
//	OIL=78.1 2024-03-15T10:30:00Z
//
// Blank lines and lines starting with # are skipped. A quote without a
// timestamp is stamped with now.
func ReadQuotes(r io.Reader, now time.Time) ([]Quote, error) {
	var out []Quote
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: %w: want SYMBOL=PRICE [RFC3339 time]", line, ErrBadQuote)
		}
		q, err := ParseQuote(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		q.Time = now
		if len(fields) == 2 {
			if q.Time, err = time.Parse(time.RFC3339, fields[1]); err != nil {
				return nil, fmt.Errorf("line %d: %w: time %q", line, ErrBadQuote, fields[1])
			}
		}
		out = append(out, q)
	}
	return out, sc.Err()
}
