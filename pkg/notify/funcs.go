package notify

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/dispatch/pkg/i18n"
	"github.com/dmitrymomot/dispatch/pkg/mailer"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
)

// templateFuncs returns the helpers available to notification templates.
func templateFuncs(lf *i18n.LocaleFormat) mailer.FuncMap {
	return mailer.FuncMap{
		"money":    func(v any) string { return lf.FormatCurrency(toFloat(v)) },
		"number":   func(v any) string { return lf.FormatNumber(toFloat(v)) },
		"date":     func(v any) string { return formatTime(v, lf.FormatDate) },
		"datetime": func(v any) string { return formatTime(v, lf.FormatDateTime) },
		"title":    titleCase,
		"humanize": humanize,
		"plain":    sanitizer.HTMLToText,
		"oneline":  sanitizer.StripHTML,
		"md":       mailer.EscapeMarkdown,
		"upper":    strings.ToUpper,
		"default":  withDefault,
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	default:
		return 0
	}
}

// formatTime accepts time values or pre-formatted strings, which pass through.
func formatTime(v any, f func(time.Time) string) string {
	switch t := v.(type) {
	case time.Time:
		return f(t)
	case *time.Time:
		if t == nil {
			return ""
		}
		return f(*t)
	case string:
		return t
	default:
		return ""
	}
}

// withDefault returns def when v is nil or prints as an empty string.
func withDefault(def string, v any) string {
	if v == nil {
		return def
	}
	if s := fmt.Sprint(v); s != "" {
		return s
	}
	return def
}

// titleCase builds a caser per call because cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// humanize turns identifiers such as "in_progress" into "in progress".
func humanize(s string) string {
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(s))
}
