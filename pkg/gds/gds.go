// Package gds is the top-level entry point for the shared-memory-backed
// Generalized Data Store: a Server publishes per-namespace job metadata and
// answers post-fence payloads, a Client attaches the segments a Server's
// replies describe. Both wrap the internal module/registry/publisher/
// attacher/modex machinery behind a small, stable surface.
package gds

import (
	"context"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/module"
	"github.com/iamNilotpal/shmgds/pkg/logger"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// Server is the server-role half of the store: it fetches local job data,
// publishes job segments to local peers, and stores post-fence data into
// modex segments.
type Server struct {
	mod     *module.Module
	fetcher *jobsource.MapFetcher
}

// NewServer constructs a Server, applying any OptionFuncs on top of the
// module's default configuration.
func NewServer(ctx context.Context, service string, opts ...options.OptionFunc) (*Server, error) {
	log, err := newLogger(service)
	if err != nil {
		return nil, err
	}

	resolved := resolveOptions(opts)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	fetcher := jobsource.NewMapFetcher()

	mod := module.NewServer(&module.ServerConfig{Options: &resolved, Logger: log, Fetcher: fetcher})
	return &Server{mod: mod, fetcher: fetcher}, nil
}

// PutJobData registers entries as namespace's job-level data, as the real
// local key/value store would answer the Publisher's wildcard fetch.
func (s *Server) PutJobData(namespace string, entries ...jobsource.Entry) {
	s.fetcher.Put(namespace, entries...)
}

// Register runs the registration pipeline for one local peer joining
// namespace, returning the packed connection-info blob for that peer's
// reply.
func (s *Server) Register(namespace string, nLocalPeers int) ([]byte, error) {
	return s.mod.Publisher.Register(namespace, nLocalPeers)
}

// HandleFence stores a peer's post-fence payload into namespace's modex
// segment, creating that segment on the first call for the namespace.
func (s *Server) HandleFence(namespace, peerID string, payload []byte, nPeers int) error {
	return s.mod.Modex.HandleFence(namespace, peerID, payload, nPeers)
}

// LookupModex reads back a peer's stored post-fence payload.
func (s *Server) LookupModex(namespace, peerID string) ([]byte, bool) {
	return s.mod.Modex.Lookup(namespace, peerID)
}

// LookupJobKey reads back namespace's job-level value for key directly out
// of the server's own JOB segment, without going through the wire.
func (s *Server) LookupJobKey(namespace, key string) ([]byte, bool) {
	return s.mod.LookupJobKey(namespace, key)
}

// Priority negotiates this module's priority given a caller's preference list.
func (s *Server) Priority(requestedModules []string) int {
	return s.mod.Priority(requestedModules)
}

// DeleteNamespace tears down namespace's segments.
func (s *Server) DeleteNamespace(namespace string) error {
	return s.mod.DeleteNamespace(namespace)
}

// Close shuts down every namespace this Server has registered.
func (s *Server) Close() error {
	return s.mod.Shutdown()
}

// Client is the client-role half of the store: it attaches the segments a
// Server's replies describe and reads job/modex data directly out of them.
type Client struct {
	mod *module.Module
}

// NewClient constructs a Client, applying any OptionFuncs on top of the
// module's default configuration.
func NewClient(ctx context.Context, service string, opts ...options.OptionFunc) (*Client, error) {
	log, err := newLogger(service)
	if err != nil {
		return nil, err
	}

	resolved := resolveOptions(opts)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	mod := module.NewClient(&module.ClientConfig{Options: &resolved, Logger: log})
	return &Client{mod: mod}, nil
}

// HandleReplyEntry processes one entry from a server's reply buffer.
func (c *Client) HandleReplyEntry(key string, value []byte) error {
	return c.mod.Attacher.HandleReplyEntry(key, value)
}

// LookupJobKey reads back namespace's job-level value for key out of the
// client's attached JOB segment.
func (c *Client) LookupJobKey(namespace, key string) ([]byte, bool) {
	return c.mod.LookupJobKey(namespace, key)
}

// Priority negotiates this module's priority given a caller's preference list.
func (c *Client) Priority(requestedModules []string) int {
	return c.mod.Priority(requestedModules)
}

// DeleteNamespace detaches namespace's segments on this client.
func (c *Client) DeleteNamespace(namespace string) error {
	return c.mod.DeleteNamespace(namespace)
}

// Close detaches every namespace this Client has attached.
func (c *Client) Close() error {
	return c.mod.Shutdown()
}

func resolveOptions(opts []options.OptionFunc) options.Options {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

func newLogger(service string) (*zap.SugaredLogger, error) {
	log, err := logger.New(&logger.Config{Development: false})
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
