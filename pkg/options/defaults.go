package options

const (
	// DefaultSizeMultiplier is the operator tunable applied on top of the
	// mandatory 2.5 "fluff" factor when sizing job and modex segments.
	DefaultSizeMultiplier = 1.0

	// DefaultModexHashCapacityPerPeer is the per-peer contribution to the
	// modex hash-table capacity heuristic (ht_capacity = per_peer * n_peers).
	// This constant is carried over from the original implementation, which
	// marks it as a provisional TODO; it is preserved here unchanged and
	// remains overridable via WithModexHashCapacityPerPeer.
	DefaultModexHashCapacityPerPeer = 256

	// SizingFluffFactor is the mandatory empirical safety margin applied to
	// every raw segment-size computation before the configured multiplier.
	// Unlike the multiplier, this is not operator-tunable.
	SizingFluffFactor = 2.5

	// DefaultPathMaxLen bounds the backing-file path length; construction
	// fails with IOFailure if exceeded.
	DefaultPathMaxLen = 255

	// DefaultPackagePrefix names this module in backing-file paths:
	// <basedir>/<prefix>-gds-shmem-<host>-<nsid>-<role>-<pid>.
	DefaultPackagePrefix = "shmgds"
)

// defaultOptions holds the baseline configuration applied before any
// caller-supplied OptionFunc runs.
var defaultOptions = Options{
	SizeMultiplier:           DefaultSizeMultiplier,
	ModexHashCapacityPerPeer: DefaultModexHashCapacityPerPeer,
	PathMaxLen:               DefaultPathMaxLen,
	PackagePrefix:            DefaultPackagePrefix,
	ClientReadOnlyProtect:    true,
	StaleCleanupOnStartup:    true,
}

// NewDefaultOptions returns a copy of the module's baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
