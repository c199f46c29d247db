package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/logger"
)

func fastPolicy() Policy {
	return Policy{
		Timeout:       time.Second,
		Initial:       5 * time.Millisecond,
		MaxWait:       20 * time.Millisecond,
		PingTimeout:   50 * time.Millisecond,
		WarnThreshold: 2,
	}
}

func TestPingSucceedsAfterRetries(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := Ping(context.Background(), "redis", "localhost:6379", fastPolicy(), ping, logger.NewNop()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping called %d times, want 3", calls)
	}
}

func TestPingGivesUp(t *testing.T) {
	p := fastPolicy()
	p.Timeout = 40 * time.Millisecond
	down := errors.New("connection refused")

	err := Ping(context.Background(), "mongo", "localhost:27017", p, func(context.Context) error { return down }, logger.NewNop())
	if !errors.Is(err, down) {
		t.Fatalf("Ping() error = %v, want wrapping %v", err, down)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"timeout", func(p *Policy) { p.Timeout = 0 }},
		{"initial", func(p *Policy) { p.Initial = 0 }},
		{"max wait", func(p *Policy) { p.MaxWait = -1 }},
		{"ping timeout", func(p *Policy) { p.PingTimeout = 0 }},
		{"warn threshold", func(p *Policy) { p.WarnThreshold = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fastPolicy()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
	if err := fastPolicy().Validate(); err != nil {
		t.Errorf("Validate() = %v on a valid policy", err)
	}
}
