package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseDate accepts a calendar date (YYYY-MM-DD) or a full RFC3339 stamp so
// clients may carry a time component for spending pattern analysis.
func parseDate(dateStr string) (core.Date, error) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return core.Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", dateStr, core.ErrInvalidDate)
	}
	return core.Date{Time: t}, nil
}

// parsePositiveInt reads an integer query parameter, falling back to def for
// missing or unusable values.
func parsePositiveInt(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
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

// requestID creates a unique request ID for tracing.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
