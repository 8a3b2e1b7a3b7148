// internal/component/registry.go
//
// Component contract and mounting.
//
// Each HTTP surface lives under components/<name> and is built with its
// services already wired, so there is no init()-time self-registration.
// cmd/web constructs the components and hands them to Mount, which attaches
// every component's Routes() at its Prefix().

package component

import (
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Component contract.
//
// Routes() returns a sub-router; gating middleware belongs inside it, e.g.
//
//	r := chi.NewRouter()
//	r.Use(acl.Require(session.KindAdmin))
//	r.Get("/guests", c.listGuests)
//	return r
type Component interface {
	Name() string
	Prefix() string
	Routes() chi.Router
}

// Mount attaches every component to r in name order and logs each mount.
func Mount(r chi.Router, log *zap.SugaredLogger, cs ...Component) {
	sorted := append([]Component(nil), cs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	for _, c := range sorted {
		r.Mount(c.Prefix(), c.Routes())
		if log != nil {
			log.Debugw("component mounted", "component", c.Name(), "prefix", c.Prefix())
		}
	}
}
