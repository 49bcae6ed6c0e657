package api

import (
	"strings"
	"testing"
)

func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantPath  string
		wantQuery string
	}{
		{"plain", "GET /api/error HTTP/1.1\r\nHost: x\r\n\r\n", "/api/error", ""},
		{"query", "GET /api/alarm?position=12&melody=D HTTP/1.1\r\n", "/api/alarm", "position=12&melody=D"},
		{"empty query", "GET /api/prealarm? HTTP/1.1", "/api/prealarm", ""},
		{"no version", "GET /api/logout", "/api/logout", ""},
		{"no space", "GARBAGE", "", ""},
		{"empty", "", "", ""},
		{"question mark in header only", "GET /api/error HTTP/1.1\r\nReferer: /a?b\r\n", "/api/error", ""},
		{"lf only", "GET /api/login?username=bob HTTP/1.0\nHost: x", "/api/login", "username=bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, query := ParseRequestLine(tt.raw)
			if path != tt.wantPath {
				t.Errorf("path: got %q, want %q", path, tt.wantPath)
			}
			if query != tt.wantQuery {
				t.Errorf("query: got %q, want %q", query, tt.wantQuery)
			}
		})
	}
}

func TestParseRequestLineTruncates(t *testing.T) {
	longPath := "/api/" + strings.Repeat("p", 100)
	path, _ := ParseRequestLine("GET " + longPath + " HTTP/1.1")
	if len(path) != MaxPath {
		t.Errorf("path length: got %d, want %d", len(path), MaxPath)
	}
	if path != longPath[:MaxPath] {
		t.Errorf("path should be a prefix of the requested path")
	}

	longQuery := "username=" + strings.Repeat("q", 100)
	_, query := ParseRequestLine("GET /api/login?" + longQuery + " HTTP/1.1")
	if len(query) != MaxQuery {
		t.Errorf("query length: got %d, want %d", len(query), MaxQuery)
	}
}

func TestParseRequestLineRequestLimit(t *testing.T) {
	// Only the first MaxRequest bytes are considered.
	raw := "GET /" + strings.Repeat("x", MaxRequest) + "?position=1 HTTP/1.1"
	path, query := ParseRequestLine(raw)
	if query != "" {
		t.Errorf("query beyond request limit: got %q", query)
	}
	if len(path) != MaxPath {
		t.Errorf("path length: got %d, want %d", len(path), MaxPath)
	}
}

func TestAtoi(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12", 12},
		{"12&melody=D", 12},
		{"  7", 7},
		{"+5", 5},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
		{"0", 0},
		{"9999", 9999},
		{"99999999999999", 2147483647},
		{"-99999999999999", -2147483648},
	}
	for _, tt := range tests {
		if got := atoi(tt.in); got != tt.want {
			t.Errorf("atoi(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParam(t *testing.T) {
	v, ok := param("position=12&melody=D", "melody")
	if !ok || v != "D" {
		t.Errorf("melody: got %q, %v", v, ok)
	}
	if _, ok := param("position=12", "melody"); ok {
		t.Error("missing key reported present")
	}
}
