package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

func TestSegmentBlobRoundTrips(t *testing.T) {
	original := SegmentBlob{
		NamespaceID: "ns1",
		Role:        1,
		Path:        "/tmp/shmgds-gds-shmem-host-ns1-job-42",
		Size:        4096,
		Addr:        0x7f0000000000,
	}

	packed := PackSegmentBlob(original)
	decoded, err := UnpackSegmentBlob(packed)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestUnpackSegmentBlobRejectsUnknownKey(t *testing.T) {
	buf := appendRecord(nil, "FOO", "bar")
	buf = appendRecord(buf, KeyNamespaceID, "ns1")

	_, err := UnpackSegmentBlob(buf)
	require.Error(t, err)
	assert.True(t, shmerrors.IsProtocolViolation(err))
}

func TestUnpackSegmentBlobTerminatesCleanlyOnTruncatedTail(t *testing.T) {
	buf := appendRecord(nil, KeyNamespaceID, "ns1")

	var lenField [4]byte
	binary.BigEndian.PutUint32(lenField[:], 99)
	buf = append(buf, lenField[:]...)
	buf = append(buf, "short"...)

	decoded, err := UnpackSegmentBlob(buf)
	require.NoError(t, err)
	assert.Equal(t, "ns1", decoded.NamespaceID)
}

func TestSegSizeAndAddrAreLowercaseHexNoPrefix(t *testing.T) {
	packed := PackSegmentBlob(SegmentBlob{Size: 255, Addr: 16})

	got, err := unpackRaw(packed)
	require.NoError(t, err)
	assert.Equal(t, "ff", got[KeySegSize])
	assert.Equal(t, "10", got[KeySegAddr])
}

func unpackRaw(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	err := unpackKV(data, func(key, value string) error {
		out[key] = value
		return nil
	})
	return out, err
}
