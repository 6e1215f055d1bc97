// Package options provides functional-options configuration for the
// shared-memory GDS: the one operator-tunable size multiplier, the
// compile-time-equivalent disable switch, temp-directory search order,
// debug zero-fill, and the provisional modex hash-capacity heuristic.
package options

import (
	"strings"

	"github.com/iamNilotpal/shmgds/pkg/errors"
)

// Options holds every configurable parameter this module reads. Zero value
// is not meaningful on its own; always start from NewDefaultOptions() and
// apply OptionFuncs on top.
type Options struct {
	// SizeMultiplier scales every estimated segment size after the mandatory
	// 2.5 fluff factor has already been applied.
	//
	//  - Default: 1.0
	SizeMultiplier float64 `json:"sizeMultiplier"`

	// Disabled forces this module's priority negotiation to always return
	// zero, regardless of caller preference. Equivalent to the original's
	// compile-time disable switch, modeled here as a runtime flag because
	// assign_module only ever reads it as a boolean.
	Disabled bool `json:"disabled"`

	// DebugZeroFill causes every arena allocation to be zero-filled before
	// use, even allocations that calloc would not otherwise zero. Intended
	// for catching uninitialized-read bugs in development, never required
	// for correctness.
	DebugZeroFill bool `json:"debugZeroFill"`

	// ModexHashCapacityPerPeer is the per-peer multiplier in the provisional
	// modex hash-table sizing heuristic: ht_capacity = this * n_peers.
	//
	//  - Default: 256
	ModexHashCapacityPerPeer int `json:"modexHashCapacityPerPeer"`

	// NamespaceTmpDir, when non-empty, is tried first when choosing a
	// backing-file base directory for a given namespace.
	NamespaceTmpDir string `json:"namespaceTmpDir"`

	// GeneralTmpDir, when non-empty, is tried second.
	GeneralTmpDir string `json:"generalTmpDir"`

	// PathMaxLen bounds the total backing-file path length.
	//
	//  - Default: 255
	PathMaxLen int `json:"pathMaxLen"`

	// PackagePrefix names this module in backing-file paths.
	//
	//  - Default: "shmgds"
	PackagePrefix string `json:"packagePrefix"`

	// ClientReadOnlyProtect mprotects a client's attached mapping PROT_READ
	// after a successful attach. The spec leaves this commented out in the
	// original and says a reimplementation MAY enable it unconditionally;
	// this module does so by default.
	ClientReadOnlyProtect bool `json:"clientReadOnlyProtect"`

	// StaleCleanupOnStartup sweeps the configured base directory at startup
	// for backing files whose embedded pid is no longer live, unlinking
	// them. Best-effort; failures are logged, never fatal.
	StaleCleanupOnStartup bool `json:"staleCleanupOnStartup"`
}

// Validate reports whether o is safe to build a Module from. Every field has
// a clamping OptionFunc that silently ignores an out-of-range caller value,
// so the only way o reaches an invalid state is by being built directly
// (zero value, or hand-assigned fields) rather than through NewDefaultOptions
// and the With* functions.
func (o *Options) Validate() error {
	if o.SizeMultiplier <= 0 {
		return errors.NewFieldRangeError("sizeMultiplier", o.SizeMultiplier, 0, nil)
	}
	if o.ModexHashCapacityPerPeer <= 0 {
		return errors.NewFieldRangeError("modexHashCapacityPerPeer", o.ModexHashCapacityPerPeer, 0, nil)
	}
	if o.PathMaxLen <= 0 {
		return errors.NewFieldRangeError("pathMaxLen", o.PathMaxLen, 0, nil)
	}
	if strings.TrimSpace(o.PackagePrefix) == "" {
		return errors.NewRequiredFieldError("packagePrefix")
	}
	return nil
}

// OptionFunc is a function type that modifies the module's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies the module's baseline configuration. Useful
// when composing a caller's option list that starts from a clean slate.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		*o = defaults
	}
}

// WithSizeMultiplier sets the operator-tunable multiplier applied on top of
// the mandatory 2.5 fluff factor. Values at or below zero are ignored.
func WithSizeMultiplier(multiplier float64) OptionFunc {
	return func(o *Options) {
		if multiplier > 0 {
			o.SizeMultiplier = multiplier
		}
	}
}

// WithDisabled forces this module's priority negotiation to always return
// zero priority, regardless of caller preference.
func WithDisabled() OptionFunc {
	return func(o *Options) {
		o.Disabled = true
	}
}

// WithDebugZeroFill enables zero-filling every arena allocation before use.
func WithDebugZeroFill() OptionFunc {
	return func(o *Options) {
		o.DebugZeroFill = true
	}
}

// WithModexHashCapacityPerPeer overrides the per-peer modex hash-capacity
// heuristic. Values at or below zero are ignored.
func WithModexHashCapacityPerPeer(perPeer int) OptionFunc {
	return func(o *Options) {
		if perPeer > 0 {
			o.ModexHashCapacityPerPeer = perPeer
		}
	}
}

// WithNamespaceTmpDir sets the namespace-specific temp directory tried
// first when choosing a backing-file base directory.
func WithNamespaceTmpDir(dir string) OptionFunc {
	return func(o *Options) {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			o.NamespaceTmpDir = dir
		}
	}
}

// WithGeneralTmpDir sets the general temp directory tried second when
// choosing a backing-file base directory.
func WithGeneralTmpDir(dir string) OptionFunc {
	return func(o *Options) {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			o.GeneralTmpDir = dir
		}
	}
}

// WithPathMaxLen bounds the total backing-file path length.
func WithPathMaxLen(max int) OptionFunc {
	return func(o *Options) {
		if max > 0 {
			o.PathMaxLen = max
		}
	}
}

// WithPackagePrefix sets the prefix used to name backing files.
func WithPackagePrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.PackagePrefix = prefix
		}
	}
}

// WithClientReadOnlyProtect controls whether client-side attaches are
// mprotected PROT_READ after mapping.
func WithClientReadOnlyProtect(enabled bool) OptionFunc {
	return func(o *Options) {
		o.ClientReadOnlyProtect = enabled
	}
}

// WithStaleCleanupOnStartup controls whether the registry sweeps for and
// unlinks orphaned backing files from a crashed prior server at startup.
func WithStaleCleanupOnStartup(enabled bool) OptionFunc {
	return func(o *Options) {
		o.StaleCleanupOnStartup = enabled
	}
}
