// Package httpapi serves the command API over plain TCP. Each connection
// carries one request: the server reads the request head, writes the
// handler's byte-exact response and closes the connection.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MaxRequest is the number of request bytes handed to the handler.
const MaxRequest = 127

const (
	defaultReadTimeout = 5 * time.Second

	// After responding, unread input is drained for a short while so the
	// close does not reset the connection under the client.
	lingerTimeout = 250 * time.Millisecond
	maxDrain      = 4096
)

// Handler turns a raw request into a complete response.
type Handler interface {
	Handle(raw []byte) []byte
}

// Server is a single-request-per-connection TCP server.
type Server struct {
	addr    string
	handler Handler
	logger  *zap.SugaredLogger

	// ReadTimeout bounds how long a client may take to send its request.
	ReadTimeout time.Duration

	mu       sync.Mutex
	ln       net.Listener
	closed   bool
	conns    sync.WaitGroup
	shutdown chan struct{}
}

// New creates a Server for addr, e.g. ":80".
func New(addr string, h Handler, logger *zap.SugaredLogger) *Server {
	return &Server{
		addr:        addr,
		handler:     h,
		logger:      logger,
		ReadTimeout: defaultReadTimeout,
		shutdown:    make(chan struct{}),
	}
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	s.logger.Infow("command api listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warnw("accept timeout", "error", err)
				continue
			}
			return err
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(conn)
		}()
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting and waits for in-flight connections or ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.shutdown)
		if s.ln != nil {
			s.ln.Close()
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	raw, err := readHead(conn)
	if len(raw) == 0 {
		if err != nil {
			s.logger.Debugw("empty request", "remote", conn.RemoteAddr().String(), "error", err)
		}
		return
	}

	resp := s.handler.Handle(raw)
	conn.SetWriteDeadline(time.Now().Add(s.ReadTimeout))
	if _, err := conn.Write(resp); err != nil {
		s.logger.Warnw("write response failed", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}
	closeWriteAndDrain(conn)
}

func closeWriteAndDrain(conn net.Conn) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}
	conn.SetReadDeadline(time.Now().Add(lingerTimeout))
	io.Copy(io.Discard, io.LimitReader(conn, maxDrain))
}

// readHead reads until the request line is complete, MaxRequest bytes are
// buffered, or the connection stops delivering.
func readHead(conn net.Conn) ([]byte, error) {
	buf := make([]byte, MaxRequest)
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if bytes.IndexByte(buf[:n], '\n') >= 0 {
			return buf[:n], nil
		}
		if err != nil {
			return buf[:n], err
		}
	}
	return buf[:n], nil
}
