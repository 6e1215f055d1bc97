package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/shmgds/internal/jobsource"
	"github.com/iamNilotpal/shmgds/pkg/logger"
	"github.com/iamNilotpal/shmgds/pkg/options"
)

func newTestServer(t *testing.T, disabled bool) *Module {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.NamespaceTmpDir = t.TempDir()
	opts.StaleCleanupOnStartup = false
	opts.Disabled = disabled

	m := NewServer(&ServerConfig{Options: &opts, Logger: logger.Noop(), Fetcher: jobsource.NewMapFetcher()})
	t.Cleanup(func() { m.Shutdown() })
	return m
}

func TestPriorityNamedExplicitlyIsMax(t *testing.T) {
	m := newTestServer(t, false)
	assert.Equal(t, PriorityMax, m.Priority([]string{"other", Name}))
}

func TestPriorityOthersNamedNotThisOneIsZero(t *testing.T) {
	m := newTestServer(t, false)
	assert.Equal(t, 0, m.Priority([]string{"other"}))
}

func TestPriorityNothingNamedIsDefault(t *testing.T) {
	m := newTestServer(t, false)
	assert.Equal(t, PriorityDefault, m.Priority(nil))
}

func TestPriorityDisabledAlwaysZeroEvenIfNamed(t *testing.T) {
	m := newTestServer(t, true)
	assert.Equal(t, PriorityDisabled, m.Priority([]string{Name}))
}

func TestIsThreadSafeIsFalse(t *testing.T) {
	m := newTestServer(t, false)
	assert.False(t, m.IsThreadSafe())
}

func TestAddAndDeleteNamespace(t *testing.T) {
	m := newTestServer(t, false)

	tr, err := m.AddNamespace("ns1")
	require.NoError(t, err)
	assert.Equal(t, "ns1", tr.Namespace)

	require.NoError(t, m.DeleteNamespace("ns1"))
	assert.Nil(t, m.Registry.Tracker("ns1"))
}
