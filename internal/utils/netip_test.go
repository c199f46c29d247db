package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudnotes/cloudnotes/internal/logger"
)

func TestParseHostNoPort(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"10.0.0.1":       "10.0.0.1",
		"10.0.0.1:8080":  "10.0.0.1",
		"[::1]:5000":     "::1",
		"notes.local:80": "notes.local",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseHostNoPort(in), in)
	}
}

func TestFirstForwardedFor(t *testing.T) {
	assert.Equal(t, "1.2.3.4", FirstForwardedFor(" 1.2.3.4 , 10.0.0.1"))
	assert.Equal(t, "1.2.3.4", FirstForwardedFor("1.2.3.4"))
	assert.Equal(t, "", FirstForwardedFor("  "))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", nil, false, "192.0.2.1"},
		{"headers ignored without trust", map[string]string{"X-Forwarded-For": "1.1.1.1"}, false, "192.0.2.1"},
		{"cloudflare first", map[string]string{"CF-Connecting-IP": "2.2.2.2", "X-Forwarded-For": "1.1.1.1"}, true, "2.2.2.2"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.1"}, true, "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, true, "3.3.3.3"},
		{"trusted but empty", nil, true, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.trustProxy))
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.10 ", "", "garbage", "2001:db8::/32"})
	assert.False(t, m.IsEmpty())

	assert.True(t, m.Allow("10.20.30.40"))
	assert.True(t, m.Allow("192.168.1.10"))
	assert.True(t, m.Allow("::ffff:192.168.1.10"))
	assert.True(t, m.Allow("2001:db8::1"))
	assert.False(t, m.Allow("192.168.1.11"))
	assert.False(t, m.Allow("not-an-ip"))

	assert.True(t, NewIPMatcher(nil).IsEmpty())
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestMustClose(t *testing.T) {
	log := logger.NewNop()
	MustClose(closer{}, "ok", log)
	MustClose(closer{err: errors.New("boom")}, "broken", log)

	called := false
	MustClose(CloserFunc(func() error { called = true; return nil }), "func", log)
	assert.True(t, called)
}
