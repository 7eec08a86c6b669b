package format

import (
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid", input: "2023-01-15T10:30:00Z", want: "Jan 15, 2023"},
		{name: "empty", input: "", want: "N/A"},
		{name: "invalid", input: "not-a-date", want: "Invalid Date"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Date(tc.input))
		})
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2 hours ago", RelativeDate("2024-03-10T10:00:00Z", now))
	assert.Equal(t, "1 hour ago", RelativeDate("2024-03-10T11:00:00Z", now))
	assert.Equal(t, "0 hours ago", RelativeDate("2024-03-10T11:59:00Z", now))
	assert.Equal(t, "Mar 1, 2024", RelativeDate("2024-03-01T10:00:00Z", now))
	assert.Equal(t, "N/A", RelativeDate("", now))
}

func TestDateTime(t *testing.T) {
	assert.Equal(t, "January 15, 2023 at 02:05 PM", DateTime("2023-01-15T14:05:00Z"))
	assert.Equal(t, "Invalid Date", DateTime("yesterday"))
}

func TestNumber(t *testing.T) {
	testCases := []struct {
		name       string
		n          int64
		precision  int
		abbreviate bool
		want       string
	}{
		{name: "thousands", n: 1500, precision: 1, abbreviate: true, want: "1.5K"},
		{name: "millions", n: 2_500_000, precision: 1, abbreviate: true, want: "2.5M"},
		{name: "exact thousand", n: 1000, precision: 1, abbreviate: true, want: "1K"},
		{name: "small", n: 999, precision: 1, abbreviate: true, want: "999"},
		{name: "zero", n: 0, precision: 1, abbreviate: true, want: "0"},
		{name: "negative", n: -1200, precision: 1, abbreviate: true, want: "-1.2K"},
		{name: "precision two", n: 1234, precision: 2, abbreviate: true, want: "1.23K"},
		{name: "grouped", n: 1234567, precision: 1, abbreviate: false, want: "1,234,567"},
		{name: "min int64", n: math.MinInt64, precision: 1, abbreviate: true, want: "-9223372036854.8M"},
		{name: "min int64 grouped", n: math.MinInt64, precision: 0, abbreviate: false, want: "-9,223,372,036,854,775,808"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Number(tc.n, tc.precision, tc.abbreviate))
		})
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		name         string
		text         string
		max          int
		wordBoundary bool
		want         string
	}{
		{name: "short", text: "Short text", max: 20, want: "Short text"},
		{name: "hard cut", text: "This is a long text", max: 10, want: "This is a ..."},
		{name: "word boundary", text: "This is a long text", max: 10, wordBoundary: true, want: "This is a..."},
		{name: "no space", text: "abcdefghijkl", max: 5, wordBoundary: true, want: "abcde..."},
		{name: "runes", text: "日本語のテキスト", max: 3, want: "日本語..."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Truncate(tc.text, tc.max, "...", tc.wordBoundary))
		})
	}
}

func TestNewID(t *testing.T) {
	id := NewID("", 12)
	assert.Len(t, id, 12)
	assert.NotEqual(t, id, NewID("", 12))

	prefixed := NewID("repo", 40)
	assert.True(t, strings.HasPrefix(prefixed, "repo_"))
	assert.Len(t, prefixed, len("repo_")+40)

	assert.Len(t, NewID("", 0), 8)
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://github.com/godaddy/repo"))
	assert.True(t, ValidURL("http://example.com"))
	assert.False(t, ValidURL("ftp://example.com"))
	assert.True(t, ValidURL("ftp://example.com", "ftp"))
	assert.False(t, ValidURL("not a url"))
	assert.False(t, ValidURL(""))
	assert.False(t, ValidURL("https://"))
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="steal()">Hi <a href="javascript:alert(1)">x</a><script>alert(1)</script></p>`)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "Hi")
	assert.Equal(t, "", SanitizeHTML(""))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "A bold move", StripHTML(" A <b>bold</b> move "))
	assert.Equal(t, "No description available", StripHTML("No description available"))
}

func TestLanguageColor(t *testing.T) {
	assert.Equal(t, "#00ADD8", LanguageColor("Go"))
	assert.Equal(t, "#6b7280", LanguageColor("Not specified"))
}

func TestDebounce(t *testing.T) {
	var calls atomic.Int32
	trigger, cancel := Debounce(func() { calls.Add(1) }, 20*time.Millisecond)
	defer cancel()

	for range 5 {
		trigger()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebounce_Cancel(t *testing.T) {
	var calls atomic.Int32
	trigger, cancel := Debounce(func() { calls.Add(1) }, 20*time.Millisecond)

	trigger()
	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestThrottle(t *testing.T) {
	var calls atomic.Int32
	throttled := Throttle(func() { calls.Add(1) }, 50*time.Millisecond, true, true)

	throttled()
	assert.Equal(t, int32(1), calls.Load())

	throttled()
	throttled()
	assert.Equal(t, int32(1), calls.Load())

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestThrottle_NoTrailing(t *testing.T) {
	var calls atomic.Int32
	throttled := Throttle(func() { calls.Add(1) }, 30*time.Millisecond, true, false)

	throttled()
	throttled()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	throttled()
	assert.Equal(t, int32(2), calls.Load())
}
