// Package format holds the pure presentation helpers shared by the views:
// dates, numbers, text truncation, ids, URL validation and HTML sanitization.
package format

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	notAvailable = "N/A"
	invalidDate  = "Invalid Date"
)

// Date renders an RFC 3339 timestamp as "Jan 2, 2006".
func Date(value string) string {
	t, msg, ok := parse(value)
	if !ok {
		return msg
	}
	return t.Format("Jan 2, 2006")
}

// RelativeDate renders timestamps less than a day old as "N hours ago" and
// anything older like Date.
func RelativeDate(value string, now time.Time) string {
	t, msg, ok := parse(value)
	if !ok {
		return msg
	}
	if diff := now.Sub(t); diff >= 0 && diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	return t.Format("Jan 2, 2006")
}

// DateTime renders a timestamp with the time of day, for the detail view.
func DateTime(value string) string {
	t, msg, ok := parse(value)
	if !ok {
		return msg
	}
	return t.Format("January 2, 2006 at 03:04 PM")
}

func parse(value string) (time.Time, string, bool) {
	if value == "" {
		return time.Time{}, notAvailable, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalidDate, false
	}
	return t, "", true
}

// Number abbreviates n with K and M suffixes, keeping up to precision
// decimals with trailing zeros removed. Without abbreviation it groups thousands.
func Number(n int64, precision int, abbreviate bool) string {
	if !abbreviate {
		return humanize.Comma(n)
	}
	sign := ""
	abs := uint64(n)
	if n < 0 {
		sign = "-"
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return sign + fixed(float64(abs)/1_000_000, precision) + "M"
	case abs >= 1_000:
		return sign + fixed(float64(abs)/1_000, precision) + "K"
	default:
		return sign + fixed(float64(abs), precision)
	}
}

func fixed(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// Truncate shortens text to maxLength runes followed by ellipsis. With
// wordBoundary it cuts at the last space inside the limit when there is one.
func Truncate(text string, maxLength int, ellipsis string, wordBoundary bool) string {
	runes := []rune(text)
	if maxLength < 0 {
		maxLength = 0
	}
	if len(runes) <= maxLength {
		return text
	}
	cut := string(runes[:maxLength])
	if wordBoundary {
		if i := strings.LastIndex(cut, " "); i > 0 {
			return cut[:i] + ellipsis
		}
	}
	return cut + ellipsis
}

// NewID returns a random alphanumeric id of the given length, optionally
// prefixed as "<prefix>_<id>".
func NewID(prefix string, length int) string {
	if length <= 0 {
		length = 8
	}
	var b strings.Builder
	for b.Len() < length {
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	id := b.String()[:length]
	if prefix != "" {
		return prefix + "_" + id
	}
	return id
}

// ValidURL reports whether raw parses as an absolute URL whose scheme is one
// of protocols (http and https by default).
func ValidURL(raw string, protocols ...string) bool {
	if raw == "" {
		return false
	}
	if len(protocols) == 0 {
		protocols = []string{"http", "https"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return false
	}
	return slices.Contains(protocols, strings.ToLower(u.Scheme))
}

var (
	htmlPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// SanitizeHTML strips scripts, embedded frames and objects, event handler
// attributes and javascript: URLs from user-supplied HTML.
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return htmlPolicy.Sanitize(html)
}

// StripHTML removes every tag, leaving text fit for a terminal.
func StripHTML(html string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(html))
}

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#2b7489",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"C#":         "#178600",
	"PHP":        "#4F5D95",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Ruby":       "#701516",
	"Swift":      "#ffac45",
	"Kotlin":     "#F18E33",
	"Dart":       "#00B4AB",
	"Vue":        "#2c3e50",
	"React":      "#61dafb",
	"Angular":    "#dd0031",
	"Node.js":    "#339933",
}

// LanguageColor returns the accent colour used for a language badge.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return "#6b7280"
}
