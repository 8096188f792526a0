// SPDX-License-Identifier: EPL-2.0

package control

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func roundTrip(t *testing.T, rw *bufio.ReadWriter, line string) string {
	t.Helper()

	if _, err := rw.WriteString(line + "\n"); err != nil {
		t.Fatal(err)
	}
	if err := rw.Flush(); err != nil {
		t.Fatal(err)
	}

	got, err := rw.ReadString('\n')
	if err != nil {
		t.Fatalf("read reply to %q: %v", line, err)
	}
	return got[:len(got)-1]
}

func TestServer_ServeConn(t *testing.T) {
	t.Parallel()

	d, _ := startDispatcher(t)
	s := NewServer("unused.sock", d, zerolog.Nop())

	client, conn := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		s.serveConn(context.Background(), conn)
		close(done)
	}()

	rw := bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client))

	tests := []struct {
		line string
		want string
	}{
		{"bgm play a.ogg", "OK"},
		{"bgm state", "OK playing"},
		{"volume sfx 20", "OK 20"},
		{"nope", `ERR "nope": unknown command`},
	}
	for _, tt := range tests {
		if got := roundTrip(t, rw, tt.line); got != tt.want {
			t.Errorf("%q -> %q, want %q", tt.line, got, tt.want)
		}
	}

	if _, err := rw.WriteString("\nquit\n"); err != nil {
		t.Fatal(err)
	}
	_ = rw.Flush()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed after quit")
	}
}

func TestServer_ListenAndServe(t *testing.T) {
	t.Parallel()

	d, _ := startDispatcher(t)

	path := filepath.Join(t.TempDir(), "a.sock")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewServer(path, d, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	var (
		c   net.Conn
		err error
	)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, err = net.Dial("unix", path); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))
	if got := roundTrip(t, rw, "watch"); got != "OK me-not-playing" {
		t.Errorf("watch -> %q", got)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket file still present: %v", err)
	}
}
