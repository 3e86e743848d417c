// Package streaming implements HTTP Range parsing and chunked file
// serving for the audio endpoint. Malformed and inverted ranges degrade
// to a full 200 response rather than erroring, which is not how the
// stdlib's http.ServeContent behaves, so the protocol is handled here
// instead of delegated.
package streaming

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// chunkSize is the 1 MiB read unit for streamed responses.
const chunkSize = 1 << 20

// contentTypeByExt covers the audio container formats the service
// accepts; anything else falls back to application/octet-stream.
var contentTypeByExt = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

// ContentType infers Content-Type from a file extension, defaulting to
// application/octet-stream for unrecognized types.
func ContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct, ok := contentTypeByExt[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Range is a resolved, clamped byte range [Start, End] (inclusive).
type Range struct {
	Start int64
	End   int64
}

// Length returns the number of bytes in the range.
func (r Range) Length() int64 { return r.End - r.Start + 1 }

// ParseRange parses a "Range: bytes=..." header value against a file of
// size, returning (range, true) on a well-formed, in-order range, or
// (zero, false) to signal "degrade to 200 full content" for malformed
// or inverted ranges.
func ParseRange(header string, size int64) (Range, bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return Range{}, false
	}
	spec := strings.TrimPrefix(header, prefix)
	// Multi-range requests degrade to full content; only single ranges
	// are honored.
	if strings.Contains(spec, ",") {
		return Range{}, false
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return Range{}, false
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	var start, end int64
	switch {
	case startStr == "" && endStr != "":
		// Suffix range: bytes=-N
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n < 0 {
			return Range{}, false
		}
		start = size - n
		if start < 0 {
			start = 0
		}
		end = size - 1
	case startStr != "" && endStr == "":
		// Open range: bytes=N-
		n, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil || n < 0 {
			return Range{}, false
		}
		start = n
		end = size - 1
	case startStr != "" && endStr != "":
		s, err1 := strconv.ParseInt(startStr, 10, 64)
		e, err2 := strconv.ParseInt(endStr, 10, 64)
		if err1 != nil || err2 != nil || s < 0 || e < 0 {
			return Range{}, false
		}
		start, end = s, e
	default:
		return Range{}, false
	}

	if start < 0 {
		start = 0
	}
	if end > size-1 {
		end = size - 1
	}
	if start > end {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// CopyRange streams [r.Start, r.End] of f to w in chunkSize chunks.
// CopyRange seeks to r.Start itself, so f's current position does not
// matter.
func CopyRange(w io.Writer, f *os.File, r Range) error {
	if _, err := f.Seek(r.Start, io.SeekStart); err != nil {
		return err
	}
	remaining := r.Length()
	buf := make([]byte, chunkSize)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := f.Read(buf[:n])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CopyFull streams the entire file to w in chunkSize chunks, from its
// current position (callers seek first if needed).
func CopyFull(w io.Writer, f *os.File) error {
	buf := make([]byte, chunkSize)
	_, err := io.CopyBuffer(w, f, buf)
	return err
}
