// Package wire implements the connection-info blob codec: the only
// on-the-wire representation of a segment, built on a small unexported
// tagged key/value packer. It also names the top-level reply-buffer keys,
// including the info-array keys; it has no encoder for info-array payloads.
// It deliberately does not implement a general-purpose pack/unpack type.
package wire

import (
	"encoding/binary"
	"strconv"

	shmerrors "github.com/iamNilotpal/shmgds/pkg/errors"
)

// Keys recognized inside a connection-info sub-buffer.
const (
	KeyNamespaceID = "PMIX_GDS_SHMEM_NSPACEID"
	KeySegmentID   = "PMIX_GDS_SHMEM_SMSEGID"
	KeySegPath     = "PMIX_GDS_SHMEM_SEG_PATH"
	KeySegSize     = "PMIX_GDS_SHMEM_SEG_SIZE"
	KeySegAddr     = "PMIX_GDS_SHMEM_SEG_ADDR"
)

// Top-level reply-buffer entry keys. SegBlob wraps a packed connection-info
// sub-buffer; the three info-array keys carry data the Attacher ignores
// because the server already stored it directly into the segment.
const (
	KeySegBlob          = "SEG_BLOB"
	KeySessionInfoArray = "SESSION_INFO_ARRAY"
	KeyNodeInfoArray    = "NODE_INFO_ARRAY"
	KeyAppInfoArray     = "APP_INFO_ARRAY"
)

// SegmentBlob is the decoded form of a connection-info sub-buffer.
type SegmentBlob struct {
	NamespaceID string
	Role        int
	Path        string
	Size        uintptr
	Addr        uintptr
}

// PackSegmentBlob encodes b's five fields as a tagged key/value buffer. The
// records come out in no fixed order; UnpackSegmentBlob accepts any order.
func PackSegmentBlob(b SegmentBlob) []byte {
	kv := map[string]string{
		KeyNamespaceID: b.NamespaceID,
		KeySegmentID:   strconv.Itoa(b.Role),
		KeySegPath:     b.Path,
		KeySegSize:     strconv.FormatUint(uint64(b.Size), 16),
		KeySegAddr:     strconv.FormatUint(uint64(b.Addr), 16),
	}
	return packKV(kv)
}

// UnpackSegmentBlob decodes a connection-info sub-buffer. Any key other
// than the five recognized ones is a hard ProtocolViolation; running out of
// buffer mid-record, once at least zero records have been read, is not an
// error — it is simply the end of the buffer.
func UnpackSegmentBlob(data []byte) (SegmentBlob, error) {
	var blob SegmentBlob

	err := unpackKV(data, func(key, value string) error {
		switch key {
		case KeyNamespaceID:
			blob.NamespaceID = value
		case KeySegmentID:
			n, err := strconv.Atoi(value)
			if err != nil {
				return shmerrors.NewProtocolViolationError(err, "segment role field is not a decimal integer").
					WithKey(key).
					WithValue(value)
			}
			blob.Role = n
		case KeySegPath:
			blob.Path = value
		case KeySegSize:
			n, err := strconv.ParseUint(value, 16, 64)
			if err != nil {
				return shmerrors.NewProtocolViolationError(err, "segment size field is not valid hex").
					WithKey(key).
					WithValue(value)
			}
			blob.Size = uintptr(n)
		case KeySegAddr:
			n, err := strconv.ParseUint(value, 16, 64)
			if err != nil {
				return shmerrors.NewProtocolViolationError(err, "segment address field is not valid hex").
					WithKey(key).
					WithValue(value)
			}
			blob.Addr = uintptr(n)
		default:
			return shmerrors.NewProtocolViolationError(nil, "unrecognized key in connection-info blob").
				WithKey(key)
		}
		return nil
	})

	return blob, err
}

// packKV encodes an unordered key/value map as a sequence of
// length-prefixed records: uint32 key length, key bytes, uint32 value
// length, value bytes.
func packKV(kv map[string]string) []byte {
	var buf []byte
	for k, v := range kv {
		buf = appendRecord(buf, k, v)
	}
	return buf
}

func appendRecord(buf []byte, key, value string) []byte {
	var lenField [4]byte

	binary.BigEndian.PutUint32(lenField[:], uint32(len(key)))
	buf = append(buf, lenField[:]...)
	buf = append(buf, key...)

	binary.BigEndian.PutUint32(lenField[:], uint32(len(value)))
	buf = append(buf, lenField[:]...)
	buf = append(buf, value...)

	return buf
}

// unpackKV decodes records written by packKV/appendRecord, invoking visit
// for each. A truncated final record is treated as a clean end of buffer,
// not an error — the original protocol's unpack loop terminates successfully
// on "read past end of buffer".
func unpackKV(data []byte, visit func(key, value string) error) error {
	offset := 0
	for offset < len(data) {
		key, next, ok := readField(data, offset)
		if !ok {
			return nil
		}
		offset = next

		value, next, ok := readField(data, offset)
		if !ok {
			return nil
		}
		offset = next

		if err := visit(key, value); err != nil {
			return err
		}
	}
	return nil
}

func readField(data []byte, offset int) (field string, next int, ok bool) {
	if offset+4 > len(data) {
		return "", offset, false
	}
	n := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	if n < 0 || offset+n > len(data) {
		return "", offset, false
	}
	return string(data[offset : offset+n]), offset + n, true
}
