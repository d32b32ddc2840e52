package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// resolvePeriod reads the "period" parameter from the query string or
// posted form. A missing or malformed value falls back to the current
// month.
func resolvePeriod(r *http.Request) core.Period {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		v = strings.TrimSpace(r.Form.Get("period"))
	}
	if v != "" {
		if p, err := core.ParsePeriod(v); err == nil {
			return p
		}
	}
	return core.PeriodOf(time.Now())
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
