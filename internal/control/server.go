// SPDX-License-Identifier: EPL-2.0

package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Server accepts line-oriented clients on a unix socket. Each line is one
// command and gets exactly one reply line. "quit" closes the connection.
type Server struct {
	path string
	d    *Dispatcher
	log  zerolog.Logger
}

func NewServer(path string, d *Dispatcher, log zerolog.Logger) *Server {
	return &Server{
		path: path,
		d:    d,
		log:  log.With().Str("component", "server").Str("socket", path).Logger(),
	}
}

// ListenAndServe removes any stale socket file, listens on it and serves
// until ctx is done. The socket file is removed on return.
func (s *Server) ListenAndServe(ctx context.Context) error {
	_ = os.Remove(s.path)

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	s.log.Info().Msg("listening")

	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done, then closes ln and
// every open connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				cancel()
				break
			}
			s.log.Warn().Err(err).Msg("accept")
			continue
		}

		g.Go(func() error {
			s.serveConn(ctx, c)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer c.Close()

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	s.log.Debug().Str("remote", c.RemoteAddr().String()).Msg("client connected")

	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			return
		}

		rep, err := s.d.Do(ctx, line)
		if err != nil {
			return
		}
		if _, err := io.WriteString(c, rep.String()+"\n"); err != nil {
			return
		}
	}

	if err := sc.Err(); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("read")
	}
}
