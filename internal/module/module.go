// Package module implements the glue a host process drives this store
// through: priority negotiation against a caller's preference list,
// namespace add/delete, and shutdown. It does not implement any shared-
// memory logic itself — that lives in the publisher/attacher/modex
// packages it wires together — only the module-level contract a selector
// elsewhere in a real RPC layer would call.
package module

import (
	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/attacher"
	"github.com/iamNilotpal/shmgds/internal/hashtable"
	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/modex"
	"github.com/iamNilotpal/shmgds/internal/publisher"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// Name is this module's identifier in a caller's preference list.
const Name = "shmem"

// Priority values returned by Priority.
const (
	PriorityDisabled = 0
	PriorityDefault  = 50
	PriorityMax      = 100
)

// Module is the top-level glue object a host process constructs once per
// server or client role and drives namespace lifecycle through.
type Module struct {
	Registry  *job.Registry
	Publisher *publisher.Publisher
	Attacher  *attacher.Attacher
	Modex     *modex.Store

	options *options.Options
	log     *zap.SugaredLogger
}

// ServerConfig holds the parameters needed to construct a server-role Module.
type ServerConfig struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
	Fetcher jobsource.Fetcher
}

// NewServer constructs a server-role Module: it can publish job segments
// and accept fence payloads.
func NewServer(config *ServerConfig) *Module {
	registry := job.New(&job.Config{Options: config.Options, Logger: config.Logger})
	return &Module{
		Registry:  registry,
		Publisher: publisher.New(registry, config.Fetcher, config.Options, config.Logger),
		Modex:     modex.New(registry, config.Options, config.Logger),
		options:   config.Options,
		log:       config.Logger,
	}
}

// ClientConfig holds the parameters needed to construct a client-role Module.
type ClientConfig struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// NewClient constructs a client-role Module: it can attach segments a
// server has published.
func NewClient(config *ClientConfig) *Module {
	registry := job.New(&job.Config{Options: config.Options, Logger: config.Logger})
	return &Module{
		Registry: registry,
		Attacher: attacher.New(registry, config.Options, config.Logger),
		options:  config.Options,
		log:      config.Logger,
	}
}

// Priority negotiates this module's priority given the caller's preference
// list: named explicitly → max priority; other modules named but not this
// one → zero; nothing named → default mid-range. Disabled forces zero
// unconditionally, overriding every other branch.
func (m *Module) Priority(requestedModules []string) int {
	if m.options.Disabled {
		return PriorityDisabled
	}
	if len(requestedModules) == 0 {
		return PriorityDefault
	}
	for _, name := range requestedModules {
		if name == Name {
			return PriorityMax
		}
	}
	return 0
}

// IsThreadSafe always returns false: this module is single-threaded
// cooperative per process, with no internal locking below the registry.
func (m *Module) IsThreadSafe() bool {
	return false
}

// AddNamespace registers namespace with the module, creating an empty
// tracker for it if one does not already exist.
func (m *Module) AddNamespace(namespace string) (*job.Tracker, error) {
	return m.Registry.GetOrCreateTracker(namespace)
}

// DeleteNamespace tears down namespace's tracker and both of its segments.
func (m *Module) DeleteNamespace(namespace string) error {
	return m.Registry.DeleteNamespace(namespace)
}

// Shutdown tears down every namespace this module has registered.
func (m *Module) Shutdown() error {
	return m.Registry.Shutdown()
}

// LookupJobKey reads back namespace's local_hashtab entry for key, once the
// JOB segment has been created (server) or attached (client). It returns
// false if the namespace has no tracker, the JOB segment isn't up yet, or
// key was never stored there — the same "not found" treatment for all three.
func (m *Module) LookupJobKey(namespace, key string) ([]byte, bool) {
	tr := m.Registry.Tracker(namespace)
	if tr == nil {
		return nil, false
	}

	h := tr.Header(segment.RoleJob)
	a := tr.Arena(segment.RoleJob)
	if h == nil || a == nil {
		return nil, false
	}

	bucketsAddr, capacity, count := h.LocalHashtab()
	tbl := hashtable.Attach(a, bucketsAddr, capacity, count)

	addr, length, ok := tbl.Lookup(key)
	if !ok {
		return nil, false
	}
	return a.Bytes(addr, uintptr(length)), true
}
