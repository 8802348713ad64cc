package feed

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s<]+`)
	mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
)

// Colour derives a stable display colour from a blast id, as a
// six-digit hex string without the leading '#'.
func Colour(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])[:6]
}

// RenderMessage HTML-escapes a message body and turns URLs and @name
// tokens into links. Used by the since-feed, which serves pre-rendered
// message HTML to the polling client.
func RenderMessage(msg string) string {
	escaped := html.EscapeString(msg)
	escaped = urlPattern.ReplaceAllStringFunc(escaped, func(u string) string {
		trimmed := strings.TrimRight(u, ".,;:!?)")
		tail := u[len(trimmed):]
		return fmt.Sprintf(`<a href="%s">%s</a>%s`, trimmed, trimmed, tail)
	})
	escaped = mentionPattern.ReplaceAllString(escaped, `<a href="/$1/">@$1</a>`)
	return escaped
}

// DateLabel renders a timestamp's UTC date as "2nd January", the form
// the polling client displays.
func DateLabel(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d%s %s", t.Day(), ordinalSuffix(t.Day()), t.Month())
}

// ClockLabel renders a timestamp's UTC time of day as "15:04".
func ClockLabel(t time.Time) string {
	return t.UTC().Format("15:04")
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// MentionNames extracts the distinct @name tokens from a message, in
// first-appearance order. The caller resolves names to user ids at
// posting time.
func MentionNames(msg string) []string {
	matches := mentionPattern.FindAllStringSubmatch(msg, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
