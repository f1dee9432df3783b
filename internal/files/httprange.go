package files

import (
	"strconv"
	"strings"
)

// MaxChunkBytes caps a single range response. Serving video in 8 MiB
// chunks keeps per-request memory bounded while staying large enough
// for smooth scrubbing; clients issue follow-up range requests for the
// remainder.
const MaxChunkBytes = 8 << 20

// ByteRange is a resolved, clamped byte range over a payload of Length
// bytes. Start and End are inclusive, matching Content-Range semantics.
type ByteRange struct {
	Start  int64
	End    int64
	Length int64
}

// ContentRange renders the Content-Range header value for a 206 response.
func (r ByteRange) ContentRange() string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) + "/" + strconv.FormatInt(r.Length, 10)
}

// Size returns the number of bytes the range covers.
func (r ByteRange) Size() int64 { return r.End - r.Start + 1 }

// Slice returns the served window as a read-only view over the payload.
func (r ByteRange) Slice(data []byte) []byte {
	return data[r.Start : r.End+1]
}

// ParseRange resolves a `Range: bytes=start[-end]` header against a
// payload length. It returns (nil, nil) when no range was requested, a
// *RangeError when the range cannot be satisfied, and otherwise a range
// clamped to MaxChunkBytes by shrinking End.
func ParseRange(header string, length int64) (*ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" || !strings.HasPrefix(header, "bytes=") {
		return nil, nil
	}

	spec := strings.TrimPrefix(header, "bytes=")
	// Only the first range of a multi-range request is honored.
	if idx := strings.Index(spec, ","); idx >= 0 {
		spec = spec[:idx]
	}
	dash := strings.Index(spec, "-")
	if dash < 0 {
		return nil, &RangeError{Length: length}
	}

	startRaw := strings.TrimSpace(spec[:dash])
	endRaw := strings.TrimSpace(spec[dash+1:])

	start, err := strconv.ParseInt(startRaw, 10, 64)
	if err != nil {
		return nil, &RangeError{Length: length}
	}

	end := length - 1
	if endRaw != "" {
		end, err = strconv.ParseInt(endRaw, 10, 64)
		if err != nil {
			return nil, &RangeError{Length: length}
		}
	}

	if start > end || start < 0 || end >= length {
		return nil, &RangeError{Length: length}
	}

	if end-start+1 > MaxChunkBytes {
		end = start + MaxChunkBytes - 1
	}

	return &ByteRange{Start: start, End: end, Length: length}, nil
}
