package segment

// Role distinguishes the two kinds of segment a JobTracker owns: the static
// JOB segment published at client connection, and the dynamically grown
// MODEX segment created lazily on first post-fence payload.
type Role int

const (
	// RoleInvalid is the zero value and terminates role iteration.
	RoleInvalid Role = iota

	// RoleJob is the static per-namespace job-metadata segment.
	RoleJob

	// RoleModex is the dynamically grown post-fence remote-process segment.
	RoleModex
)

// String renders the role the way it appears in backing-file paths and log
// fields: lowercase, matching the wire role-id's intent without leaking the
// integer encoding into human-readable output.
func (r Role) String() string {
	switch r {
	case RoleJob:
		return "job"
	case RoleModex:
		return "modex"
	default:
		return "invalid"
	}
}

// Roles lists both valid roles, in the order a JobTracker iterates them for
// teardown and for outbound blob packing.
func Roles() []Role {
	return []Role{RoleJob, RoleModex}
}
