package validation

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// stripFences removes a markdown code fence wrapper from an LLM reply, with
// or without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeReply best-effort unmarshals an LLM reply into v after stripping code
// fences. Parse failure is a first-class outcome here, not an exception path:
// callers supply a documented fallback when this returns an error.
func decodeReply(reply string, v any) error {
	return json.Unmarshal([]byte(stripFences(reply)), v)
}

// decodeScore parses a bare 0-1 score from an LLM reply, clamping into range.
// Unparsable replies return fallback; each call site documents its own
// neutral value so one bad reply does not zero out a reasonable response.
func decodeScore(reply string, fallback float64) float64 {
	s := stripFences(reply)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		zap.L().Debug("validation: unparsable score reply",
			zap.String("reply", truncate(reply, 80)),
			zap.Float64("fallback", fallback),
		)
		return fallback
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
