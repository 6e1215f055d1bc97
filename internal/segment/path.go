package segment

import (
	"fmt"
	"os"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
	"github.com/iamNilotpal/shmgds/pkg/filesys"
)

// ChooseBaseDir picks the directory backing files are created under,
// following the priority order a namespace-specific temp directory beats a
// general configured temp directory beats the TMPDIR environment variable
// beats "/tmp".
func ChooseBaseDir(namespaceTmpDir, generalTmpDir string) string {
	if namespaceTmpDir != "" {
		return namespaceTmpDir
	}
	if generalTmpDir != "" {
		return generalTmpDir
	}
	if env := os.Getenv("TMPDIR"); env != "" {
		return env
	}
	return "/tmp"
}

// BuildPath ensures baseDir exists and constructs the backing-file path
// <basedir>/<prefix>-gds-shmem-<host>-<nsid>-<role>-<pid>, failing with
// IOFailureError if the result would exceed maxLen bytes.
func BuildPath(baseDir, prefix, host, namespace string, role Role, pid int, maxLen int) (string, error) {
	if err := filesys.CreateDir(baseDir, 0755, true); err != nil {
		return "", shmerrors.NewIOFailureError(err, "failed to create backing-file directory").WithPath(baseDir)
	}

	path := fmt.Sprintf("%s/%s-gds-shmem-%s-%s-%s-%d", baseDir, prefix, host, namespace, role, pid)
	if len(path) > maxLen {
		return "", shmerrors.NewIOFailureError(nil, "backing-file path exceeds maximum allowed length").
			WithPath(path).
			WithDetail("length", len(path)).
			WithDetail("maxLen", maxLen)
	}
	return path, nil
}
