package deps

import (
	"context"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/metrics"
	"github.com/cloudnotes/cloudnotes/internal/notes"
	"github.com/cloudnotes/cloudnotes/internal/templates"
	"github.com/cloudnotes/cloudnotes/internal/version"
)

// Pinger reports whether the note store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info

	Notes     *notes.Service
	Templates *templates.Catalog
	Verifier  *identity.Verifier
	Store     Pinger // backing store, checked by /readyz
	StoreKind string // "memory" | "redis" | "mongo"
	Metrics   *metrics.Metrics

	FrontendURL  string   // allowed CORS origin
	AllowedHosts []string // Host headers allowed on operational endpoints
	AllowedCIDRS []string // IPs allowed on /readyz, /metrics and /reload
	TrustProxy   bool     // true if running behind a trusted reverse proxy
	RateBurst    int      // per-IP token bucket size on /api
	RatePerMin   int      // per-IP refill rate on /api

	ReloadTrigger chan struct{} // forces a template reload
}
