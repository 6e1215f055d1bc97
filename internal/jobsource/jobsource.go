// Package jobsource stands in for the local key/value fetch collaborator:
// the real RPC/registry layer that would answer "give me every job-level
// key for this namespace" is out of scope, so this package provides the
// minimal in-process interface the Publisher depends on, plus a plain-map
// implementation exercised by tests.
package jobsource

import (
	"sync"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// Category classifies a fetched job-level value by which header container
// Populate stores it in. This mirrors original_source's store_job_info and
// get_local_job_data_stats, which both dispatch on exactly these categories
// by name rather than treating every key as a flat hash-table entry.
type Category int

const (
	// CategoryPlain is the zero value: everything that isn't session,
	// job, node, app, or process-data info goes into local_hashtab.
	CategoryPlain Category = iota
	CategorySessionInfo
	CategoryJobInfo
	CategoryNodeInfo
	CategoryAppInfo
	// CategoryProcessData marks the one category the sizing estimator
	// treats specially: its element count contributes directly to the
	// expected hash-entry count instead of a flat 1.
	CategoryProcessData
)

// Value is one fetched job-level value. Category decides which header
// container Populate stores it in; ProcessDataCount is only meaningful when
// Category is CategoryProcessData, where it is the number of elements this
// one fetched entry expands into for the sizing estimate.
type Value struct {
	Bytes            []byte
	Category         Category
	ProcessDataCount int
}

// Entry pairs a key with its fetched value.
type Entry struct {
	Key   string
	Value Value
}

// Fetcher answers a wildcard fetch for every job-level key of a namespace.
type Fetcher interface {
	FetchNamespace(namespace string) ([]Entry, error)
}

// MapFetcher is a minimal in-process Fetcher backed by a plain map,
// standing in for the real local key/value store.
type MapFetcher struct {
	mu   sync.RWMutex
	data map[string][]Entry
}

// NewMapFetcher constructs an empty MapFetcher.
func NewMapFetcher() *MapFetcher {
	return &MapFetcher{data: make(map[string][]Entry)}
}

// Put registers entries as the job-level data for namespace, replacing
// anything previously registered for it.
func (f *MapFetcher) Put(namespace string, entries ...Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[namespace] = entries
}

// FetchNamespace returns the registered entries for namespace. An unknown
// namespace is not an error — it simply has no job-level data yet.
func (f *MapFetcher) FetchNamespace(namespace string) ([]Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, ok := f.data[namespace]
	if !ok {
		return nil, nil
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// ErrNamespaceRequired returns a fresh protocol-violation error for a
// missing namespace id, used by callers that reject an empty namespace
// before ever reaching the Fetcher.
func ErrNamespaceRequired() error {
	return shmerrors.NewProtocolViolationError(nil, "namespace id must not be empty").WithKey("namespace")
}
