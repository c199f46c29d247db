package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// MiddlewareFactory builds a middleware once deps are known, since most
	// of ours need the logger, the verifier or access lists.
	MiddlewareFactory func(d deps.Deps) Middleware
)

type entry struct {
	group string // "" = router root
	reg   Registrar
	mws   []MiddlewareFactory
}

var (
	registry []entry
	groups   = map[string][]MiddlewareFactory{}
)

// Register a registrar at the router root with optional per-route middlewares.
func Register(reg Registrar, mws ...MiddlewareFactory) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// Group declares a path prefix whose middlewares wrap every registrar
// added with RegisterIn.
func Group(prefix string, mws ...MiddlewareFactory) {
	groups[prefix] = append(groups[prefix], mws...)
}

// RegisterIn adds a registrar under a group prefix. Declaration order of
// Group and RegisterIn does not matter; both are resolved in RegisterAll.
func RegisterIn(prefix string, reg Registrar, mws ...MiddlewareFactory) {
	if _, ok := groups[prefix]; !ok {
		groups[prefix] = nil
	}
	registry = append(registry, entry{group: prefix, reg: reg, mws: mws})
}

// Called once from httpserver.NewRouter()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if e.group == "" {
			apply(r, e, d)
		}
	}

	prefixes := make([]string, 0, len(groups))
	for p := range groups {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		r.Route(prefix, func(sub chi.Router) {
			sub.Use(build(groups[prefix], d)...)
			for _, e := range registry {
				if e.group == prefix {
					apply(sub, e, d)
				}
			}
		})
	}
}

func apply(r chi.Router, e entry, d deps.Deps) {
	if len(e.mws) == 0 {
		e.reg(r, d)
		return
	}
	e.reg(r.With(build(e.mws, d)...), d)
}

func build(factories []MiddlewareFactory, d deps.Deps) []Middleware {
	out := make([]Middleware, 0, len(factories))
	for _, f := range factories {
		out = append(out, f(d))
	}
	return out
}
