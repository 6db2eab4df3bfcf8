package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Port:            0,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
}

func waitForListener(t *testing.T, s *Server) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := s.Addr(); !strings.HasPrefix(addr, ":") {
			_, port, err := net.SplitHostPort(addr)
			require.NoError(t, err)
			return net.JoinHostPort("127.0.0.1", port)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("server did not start listening")
	return ""
}

func TestServer_ServesAndShutsDownInReverseOrder(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s := New(handler, testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	var order []string
	s.OnShutdown("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	s.OnShutdown("redis", func(context.Context) error {
		order = append(order, "redis")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunContext(ctx) }()

	addr := waitForListener(t, s)
	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"redis", "postgres"}, order)
}

func TestServer_ShutdownErrorsAreJoined(t *testing.T) {
	t.Parallel()

	s := New(http.NotFoundHandler(), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	boom := errors.New("close failed")
	closed := false
	s.OnShutdown("first", func(context.Context) error {
		closed = true
		return nil
	})
	s.OnShutdown("second", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunContext(ctx) }()
	waitForListener(t, s)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, closed, "later failures must not skip earlier components")
}
