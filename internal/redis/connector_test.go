package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{
		Timeout:     200 * time.Millisecond,
		Initial:     10 * time.Millisecond,
		MaxWait:     20 * time.Millisecond,
		PingTimeout: 50 * time.Millisecond,
	}
}

func TestNewConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), ConnectOptions{Addr: mr.Addr(), Retry: testPolicy()}, logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	opts := ConnectOptions{Addr: addr, DialTimeout: 20 * time.Millisecond, Retry: testPolicy()}
	if _, err := New(context.Background(), opts, logger.NewNop()); err == nil {
		t.Fatal("New() error = nil, want unreachable error")
	}
}

func TestNewRejectsBadPolicy(t *testing.T) {
	opts := ConnectOptions{Addr: "localhost:0", Retry: retry.Policy{}}
	if _, err := New(context.Background(), opts, logger.NewNop()); err == nil {
		t.Fatal("New() error = nil, want invalid policy error")
	}
}
