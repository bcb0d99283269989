package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

func TestServerStartsAndAcceptsRequests(t *testing.T) {
	app := weft.New()
	app.Use(func(c *weft.Context, next weft.Next) error {
		c.Response.SetBody("hello from weft")
		return nil
	})

	srv := New(app.Callback(), WithAddr("127.0.0.1:0"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	go srv.ServeOn(ln)
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello from weft" {
		t.Errorf("body = %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func TestServerGracefulShutdownLetsRequestsFinish(t *testing.T) {
	app := weft.New()
	app.Use(func(c *weft.Context, next weft.Next) error {
		select {
		case <-time.After(200 * time.Millisecond):
			c.Response.SetBody("slow but done")
			return nil
		case <-c.Context().Done():
			return c.Context().Err()
		}
	})

	srv := New(app.Callback(),
		WithAddr("127.0.0.1:0"),
		WithShutdownTimeout(5*time.Second),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	go srv.ServeOn(ln)
	time.Sleep(50 * time.Millisecond)

	statusCh := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			statusCh <- 0
			return
		}
		defer resp.Body.Close()
		statusCh <- resp.StatusCode
	}()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	if status := <-statusCh; status != http.StatusOK {
		t.Errorf("slow request status = %d, want 200", status)
	}
}

func TestServerFunctionalOptions(t *testing.T) {
	srv := New(http.NotFoundHandler(),
		WithAddr(":9999"),
		WithReadTimeout(10*time.Second),
		WithWriteTimeout(20*time.Second),
		WithShutdownTimeout(10*time.Second),
	)

	if srv.config.Addr != ":9999" {
		t.Errorf("addr = %q, want %q", srv.config.Addr, ":9999")
	}
	if srv.config.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout = %v", srv.config.ReadTimeout)
	}
	if srv.config.WriteTimeout != 20*time.Second {
		t.Errorf("write timeout = %v", srv.config.WriteTimeout)
	}
	if srv.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", srv.config.ShutdownTimeout)
	}
}
