package api

import (
	"math"
	"strings"
)

// Buffer limits. Longer input is truncated silently.
const (
	MaxRequest = 127
	MaxPath    = 63
	MaxQuery   = 63
)

// ParseRequestLine extracts the path and raw query from the first line of
// an HTTP request such as "GET /api/alarm?position=3&melody=D HTTP/1.1".
// The path runs from the first space to the next space or '?'; the query
// runs from the '?' to the next space. Either may be empty.
func ParseRequestLine(raw string) (path, query string) {
	if len(raw) > MaxRequest {
		raw = raw[:MaxRequest]
	}
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		raw = raw[:i]
	}

	sp := strings.IndexByte(raw, ' ')
	if sp < 0 {
		return "", ""
	}
	target := raw[sp+1:]
	if end := strings.IndexByte(target, ' '); end >= 0 {
		target = target[:end]
	}

	path = target
	if q := strings.IndexByte(target, '?'); q >= 0 {
		path = target[:q]
		query = target[q+1:]
	}
	return truncate(path, MaxPath), truncate(query, MaxQuery)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// param returns everything after the first occurrence of key= in query.
func param(query, key string) (string, bool) {
	i := strings.Index(query, key+"=")
	if i < 0 {
		return "", false
	}
	return query[i+len(key)+1:], true
}

// atoi parses a leading decimal integer the way C's atoi does: leading
// blanks and an optional sign are accepted, parsing stops at the first
// non-digit, and no digits yields 0. Results saturate at the int32 range.
func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var n int64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
		if n > math.MaxInt32+1 {
			n = math.MaxInt32 + 1
		}
	}
	if neg {
		n = -n
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n)
}
