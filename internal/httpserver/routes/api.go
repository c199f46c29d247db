package routes

import (
	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/mw"
)

// APIPrefix holds every authenticated, rate limited route.
const APIPrefix = "/api"

func init() { Group(APIPrefix, rateLimit, authenticate) }

func rateLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:      d.RateBurst,
		PerMinute:  d.RatePerMin,
		MaxEntries: 10000,
		TrustProxy: d.TrustProxy,
	})
}

func authenticate(d deps.Deps) Middleware {
	return mw.Authenticate(d.Verifier, d.Logger)
}
