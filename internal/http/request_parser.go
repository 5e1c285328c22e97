package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tradebook/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields so client typos surface as errors instead of silent zero values.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseMonthParam reads the month query parameter, defaulting to the
// current UTC month when absent.
func parseMonthParam(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.MonthKey(time.Now().UTC()), nil
	}
	if _, _, err := core.MonthRange(v); err != nil {
		return "", err
	}
	return v, nil
}

// parseDateParam reads the date query parameter as an ISO date,
// defaulting to today in UTC when absent.
func parseDateParam(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return time.Now().UTC(), nil
	}
	return core.ParseISODate(v)
}

// pathID extracts the trailing ID segment from a prefixed route like
// /api/pairs/{id}.
func pathID(r *http.Request, prefix string) (string, error) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", errors.New("missing or malformed id in path")
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
