// Package publisher implements the server-side registration pipeline: fetch
// a namespace's job-level keys, size a segment for them, create and attach
// it, populate its arena-backed containers, and pack the resulting
// connection-info blob for the reply buffer.
package publisher

import (
	"os"
	"unsafe"

	"go.uber.org/zap"

	"github.com/iamNilotpal/shmgds/internal/arena"
	"github.com/iamNilotpal/shmgds/internal/hashtable"
	"github.com/iamNilotpal/shmgds/internal/header"
	"github.com/iamNilotpal/shmgds/internal/job"
	"github.com/iamNilotpal/shmgds/internal/joblist"
	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/internal/segment"
	"github.com/iamNilotpal/shmgds/internal/sizing"
	"github.com/iamNilotpal/shmgds/internal/wire"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

// Publisher runs the registration pipeline described in the module's
// component design: Fetch, Estimate, Size, Create+attach, Lay out header,
// Populate, Publish.
type Publisher struct {
	registry *job.Registry
	fetcher  jobsource.Fetcher
	options  *options.Options
	log      *zap.SugaredLogger
	host     string
}

// New constructs a Publisher over the given registry and job-data fetcher.
func New(registry *job.Registry, fetcher jobsource.Fetcher, opts *options.Options, log *zap.SugaredLogger) *Publisher {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return &Publisher{registry: registry, fetcher: fetcher, options: opts, log: log, host: host}
}

// Register runs the registration pipeline for one local peer joining
// namespace, out of nLocalPeers total local peers expected. It returns the
// packed connection-info blob to append to that peer's reply.
//
// If a namespace already has a cached blob from an earlier local peer's
// registration, that blob is returned verbatim and the cache's remaining
// counter is decremented, without repeating any of the real work below.
func (p *Publisher) Register(namespace string, nLocalPeers int) ([]byte, error) {
	if cached, ok := p.registry.TakeCachedBlob(namespace); ok {
		return cached, nil
	}

	tr, err := p.registry.GetOrCreateTracker(namespace)
	if err != nil {
		return nil, err
	}

	if seg := tr.Segment(segment.RoleJob); seg != nil && tr.IsReady(segment.RoleJob) {
		blob := p.packBlob(namespace, seg)
		if nLocalPeers > 1 {
			p.registry.CacheBlob(namespace, blob, nLocalPeers-1)
		}
		return blob, nil
	}

	entries, err := p.fetcher.FetchNamespace(namespace)
	if err != nil {
		return nil, err
	}

	sizingEntries := make([]sizing.Entry, len(entries))
	for i, e := range entries {
		sizingEntries[i] = sizing.Entry{
			Key:              e.Key,
			Value:            e.Value.Bytes,
			IsProcessData:    e.Value.Category == jobsource.CategoryProcessData,
			ProcessDataCount: e.Value.ProcessDataCount,
		}
	}

	estimator := sizing.New(p.options.SizeMultiplier)
	size, htCapacity := estimator.EstimateJob(sizingEntries)

	path, err := segment.BuildPath(
		segment.ChooseBaseDir(p.options.NamespaceTmpDir, p.options.GeneralTmpDir),
		p.options.PackagePrefix, p.host, namespace, segment.RoleJob, os.Getpid(), p.options.PathMaxLen,
	)
	if err != nil {
		return nil, err
	}

	seg, err := segment.Create(namespace, segment.RoleJob, path, size)
	if err != nil {
		return nil, err
	}

	h, err := header.Init(seg.Data(), segment.RoleJob)
	if err != nil {
		seg.Destroy()
		return nil, err
	}

	a := arena.New(
		uintptr(unsafe.Pointer(&seg.Data()[0])), uintptr(len(seg.Data())),
		h.CursorPtr(), p.options.DebugZeroFill, namespace+"/"+segment.RoleJob.String(),
	)

	tbl := hashtable.New(a)
	if err := tbl.Init(htCapacity); err != nil {
		seg.Destroy()
		return nil, err
	}

	var sessionHead, jobHead, nodeHead, appHead arena.Addr
	var processDataEntries []joblist.Entry

	for _, e := range entries {
		switch e.Value.Category {
		case jobsource.CategorySessionInfo:
			if err := prependInto(a, &sessionHead, e.Key, e.Value.Bytes); err != nil {
				seg.Destroy()
				return nil, err
			}
		case jobsource.CategoryJobInfo:
			if err := prependInto(a, &jobHead, e.Key, e.Value.Bytes); err != nil {
				seg.Destroy()
				return nil, err
			}
		case jobsource.CategoryNodeInfo:
			if err := prependInto(a, &nodeHead, e.Key, e.Value.Bytes); err != nil {
				seg.Destroy()
				return nil, err
			}
		case jobsource.CategoryAppInfo:
			if err := prependInto(a, &appHead, e.Key, e.Value.Bytes); err != nil {
				seg.Destroy()
				return nil, err
			}
		case jobsource.CategoryProcessData:
			processDataEntries = append(processDataEntries, joblist.Entry{Key: e.Key, Value: e.Value.Bytes})
		default:
			valAddr, err := a.Memdup(e.Value.Bytes)
			if err != nil {
				seg.Destroy()
				return nil, err
			}
			if err := tbl.Insert(e.Key, valAddr, uint32(len(e.Value.Bytes))); err != nil {
				seg.Destroy()
				return nil, err
			}
		}
	}

	h.SetSessionRef(sessionHead)
	h.SetJobInfoList(jobHead)
	h.SetNodeInfoList(nodeHead)
	h.SetAppInfoList(appHead)

	if len(processDataEntries) > 0 {
		addr, n, err := joblist.BuildArray(a, processDataEntries)
		if err != nil {
			seg.Destroy()
			return nil, err
		}
		h.SetProcessData(addr, n)
	}

	h.SetLocalHashtab(tbl.BucketsAddr(), tbl.ActualCapacity(), tbl.Count())

	tr.Attach(segment.RoleJob, seg, h, a)
	tr.MarkReady(segment.RoleJob)

	if p.log != nil {
		p.log.Infow("published job segment",
			"namespace", namespace, "path", path, "size", seg.Size, "htCapacity", htCapacity)
	}

	blob := p.packBlob(namespace, seg)
	if nLocalPeers > 1 {
		p.registry.CacheBlob(namespace, blob, nLocalPeers-1)
	}
	return blob, nil
}

// prependInto links key/value in front of the list at *head and updates
// *head to the new node's address.
func prependInto(a *arena.Arena, head *arena.Addr, key string, value []byte) error {
	next, err := joblist.Prepend(a, *head, key, value)
	if err != nil {
		return err
	}
	*head = next
	return nil
}

func (p *Publisher) packBlob(namespace string, seg *segment.Segment) []byte {
	return wire.PackSegmentBlob(wire.SegmentBlob{
		NamespaceID: namespace,
		Role:        int(segment.RoleJob),
		Path:        seg.Path,
		Size:        seg.Size,
		Addr:        seg.BaseAddress,
	})
}
