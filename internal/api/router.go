// Package api routes minimal HTTP-style request lines to notification
// commands. Every response is a 200 with a small JSON body; failures are
// reported only in the body.
package api

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/command"
)

// Response bodies.
const (
	BodySuccess      = `{"result":"success"}`
	BodyNotFound     = `{"result":"error","error":"404 Not Found: Path does not exist"}`
	BodyAlarmInvalid = `{"result":"error","error":"invalid or missing parameters (position, melody) for alarm"}`
	BodyNoUsername   = `{"result":"error","error":"username not provided"}`
)

// Poster accepts parsed commands.
type Poster interface {
	Post(cmd command.Command) uint64
}

type handlerFunc func(query string) (command.Command, string)

type route struct {
	prefix  string
	handler handlerFunc
}

// Router matches request paths against a fixed, ordered route table.
type Router struct {
	box    Poster
	logger *zap.SugaredLogger
	routes []route
}

// NewRouter returns a router that posts accepted commands to box.
func NewRouter(box Poster, logger *zap.SugaredLogger) *Router {
	return &Router{
		box:    box,
		logger: logger,
		routes: []route{
			{"/api/error", fixed(command.DeskError)},
			{"/api/errend", fixed(command.DeskErrorEnd)},
			{"/api/prealarm", fixed(command.PreAlarm)},
			{"/api/alarm", alarm},
			{"/api/login", login},
			{"/api/logout", fixed(command.Logout)},
		},
	}
}

// Handle answers one raw request with a complete HTTP response.
func (r *Router) Handle(raw []byte) []byte {
	return Wrap(r.Body(string(raw)))
}

// Body answers one raw request with the JSON body only.
func (r *Router) Body(raw string) string {
	path, query := ParseRequestLine(raw)

	// Prefix match: /api/alarm also serves /api/alarmFoo.
	for _, rt := range r.routes {
		if !strings.HasPrefix(path, rt.prefix) {
			continue
		}
		cmd, errBody := rt.handler(query)
		if errBody != "" {
			r.logger.Warnw("command rejected", "path", path, "query", query, "reason", errBody)
			return errBody
		}
		seq := r.box.Post(cmd)
		r.logger.Infow("command accepted",
			"path", path,
			"kind", cmd.Kind,
			"seq", seq,
		)
		return BodySuccess
	}

	r.logger.Warnw("no route", "path", path)
	return BodyNotFound
}

// Wrap prefixes body with a 200 response header.
func Wrap(body string) []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		len(body), body))
}

func fixed(k command.Kind) handlerFunc {
	return func(string) (command.Command, string) {
		return command.Command{Kind: k}, ""
	}
}

func alarm(query string) (command.Command, string) {
	position := -1
	var melody byte

	if v, ok := param(query, "position"); ok {
		position = atoi(v)
	}
	if v, ok := param(query, "melody"); ok && len(v) > 0 && v[0] != '&' {
		melody = v[0]
	}

	if position <= 0 || melody == 0 {
		return command.Command{}, BodyAlarmInvalid
	}
	return command.Command{Kind: command.Alarm, Position: position, Melody: melody}, ""
}

func login(query string) (command.Command, string) {
	v, ok := param(query, "username")
	if !ok {
		return command.Command{}, BodyNoUsername
	}
	if i := strings.IndexByte(v, '&'); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return command.Command{}, BodyNoUsername
	}
	return command.Command{Kind: command.Login, Username: command.TruncateUsername(v)}, ""
}
