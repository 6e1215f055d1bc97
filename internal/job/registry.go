package job

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/pkg/filesys"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// ErrRegistryClosed is returned when attempting to perform operations on a
// closed Registry.
var ErrRegistryClosed = stdErrors.New("operation failed: cannot access closed job registry")

// cachedBlob is a previously packed connection-info reply held for reuse by
// the remaining local peers of one namespace.
type cachedBlob struct {
	data      []byte
	remaining int
}

// Registry is the process-wide owner of every namespace's Tracker, plus the
// per-namespace cached-blob counters the Publisher's reuse path consults
// before doing any real work. It mirrors the teacher's coarse-grained
// subsystem types: RWMutex-protected maps with an atomic.Bool guarding
// idempotent Close, even though the arena/segment logic it wraps is itself
// single-threaded per namespace.
type Registry struct {
	log     *zap.SugaredLogger
	options *options.Options

	mu       sync.RWMutex
	trackers map[string]*Tracker
	blobs    map[string]*cachedBlob

	closed atomic.Bool
}

// Config holds the parameters needed to initialize a new Registry.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New constructs a Registry and, unless disabled in Options, performs a
// best-effort sweep of stale backing files left behind by a crashed prior
// server before returning.
func New(config *Config) *Registry {
	r := &Registry{
		log:      config.Logger,
		options:  config.Options,
		trackers: make(map[string]*Tracker),
		blobs:    make(map[string]*cachedBlob),
	}

	if config.Options.StaleCleanupOnStartup {
		r.sweepStaleBackingFiles()
	}

	return r
}

// GetOrCreateTracker returns the Tracker for namespace, creating an empty
// one on first use.
func (r *Registry) GetOrCreateTracker(namespace string) (*Tracker, error) {
	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[namespace]
	if !ok {
		t = NewTracker(namespace)
		r.trackers[namespace] = t
	}
	return t, nil
}

// Tracker returns the existing Tracker for namespace, or nil if none exists.
func (r *Registry) Tracker(namespace string) *Tracker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trackers[namespace]
}

// DeleteNamespace removes and closes the Tracker for namespace, tearing
// down both of its segments. It is a no-op if the namespace has no tracker.
func (r *Registry) DeleteNamespace(namespace string) error {
	if r.closed.Load() {
		return ErrRegistryClosed
	}

	r.mu.Lock()
	t, ok := r.trackers[namespace]
	delete(r.trackers, namespace)
	delete(r.blobs, namespace)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return t.Close(r.log)
}

// CacheBlob retains data as the reply for the remaining local peers of
// namespace still to be served, per the Publisher's step 7.
func (r *Registry) CacheBlob(namespace string, data []byte, remainingLocalPeers int) {
	if remainingLocalPeers <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[namespace] = &cachedBlob{data: data, remaining: remainingLocalPeers}
}

// TakeCachedBlob returns the cached reply for namespace, if one exists, and
// decrements its remaining-peer counter. The cache entry is released once
// the last peer has been served, matching the original's cache-hit/
// cache-miss branching exactly.
func (r *Registry) TakeCachedBlob(namespace string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.blobs[namespace]
	if !ok {
		return nil, false
	}

	b.remaining--
	if b.remaining <= 0 {
		delete(r.blobs, namespace)
	}
	return b.data, true
}

// Shutdown destroys every tracker's segments. Trackers' own session/node/app
// lists live inside their segments and must not be traversed afterward, so
// Shutdown always removes a tracker from the registry before closing it.
func (r *Registry) Shutdown() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrRegistryClosed
	}

	r.mu.Lock()
	trackers := r.trackers
	r.trackers = nil
	r.blobs = nil
	r.mu.Unlock()

	var firstErr error
	for _, t := range trackers {
		if err := t.Close(r.log); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var backingFileNamePattern = regexp.MustCompile(`-gds-shmem-.*-(job|modex)-(\d+)$`)

// sweepStaleBackingFiles scans the configured base directories for backing
// files left behind by a server process that is no longer running and
// unlinks them. This is best-effort: any failure to list or remove a file
// is logged and does not block Registry construction, per the decision that
// a reimplementation should clean up what the original never did.
func (r *Registry) sweepStaleBackingFiles() {
	dirs := map[string]struct{}{}
	if r.options.NamespaceTmpDir != "" {
		dirs[r.options.NamespaceTmpDir] = struct{}{}
	}
	if r.options.GeneralTmpDir != "" {
		dirs[r.options.GeneralTmpDir] = struct{}{}
	}
	dirs[segment.ChooseBaseDir("", "")] = struct{}{}

	for dir := range dirs {
		if ok, err := filesys.Exists(dir); err != nil || !ok {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if r.log != nil {
				r.log.Debugw("skipping stale backing-file sweep", "dir", dir, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			match := backingFileNamePattern.FindStringSubmatch(entry.Name())
			if match == nil {
				continue
			}

			pid, err := strconv.Atoi(match[2])
			if err != nil || isProcessLive(pid) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				if r.log != nil {
					r.log.Warnw("failed to remove stale segment backing file", "path", path, "error", err)
				}
				continue
			}
			if r.log != nil {
				r.log.Infow("removed stale segment backing file from a prior server", "path", path, "pid", pid)
			}
		}
	}
}

func isProcessLive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
