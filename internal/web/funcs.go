package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"fmtTime":    FormatTime,
		"fmtUnix":    FormatUnix,
		"orDash":     orDash,
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"prettyJSON": prettyJSON,
		"hasPrefix":  strings.HasPrefix,
		"list":       func(items ...string) []string { return items },
		"dict":       dict,
	}
}

// FormatTime renders backend timestamps, which arrive in a few layouts.
// Unparseable values are shown as received.
func FormatTime(raw string) string {
	if raw == "" {
		return "-"
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("Jan 2, 2006 15:04 UTC")
		}
	}
	return raw
}

// FormatUnix renders a seconds timestamp.
func FormatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).UTC().Format("Jan 2, 2006 15:04:05 UTC")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func prettyJSON(v any) string {
	if raw, ok := v.(json.RawMessage); ok {
		var decoded any
		if json.Unmarshal(raw, &decoded) == nil {
			v = decoded
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// dict builds a map from key/value pairs so a partial can take several
// arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
