// Package entry defines the unit of work passed from the reader pool to
// the tar writer: one tagged variant per filesystem object kind, plus the
// split chunk variants a large file is streamed as.
package entry

import (
	"errors"

	"github.com/nullpointer-dev/zstar/internal/filemeta"
)

// Kind identifies which variant an Entry carries.
type Kind int

const (
	// KindDir is a directory; only RelPath and Meta are populated.
	KindDir Kind = iota
	// KindSmallFile carries a whole file's contents in Buf.
	KindSmallFile
	// KindLargeFileStart announces a streamed file's total Size; no body.
	KindLargeFileStart
	// KindLargeFileChunk carries one slice of a streamed file's content in Buf.
	KindLargeFileChunk
	// KindLargeFileEnd closes a streamed file; no body.
	KindLargeFileEnd
	// KindSymlink carries the link's raw target in Target.
	KindSymlink
	// KindHardLink carries the relative path of the first-seen sibling in Target.
	KindHardLink
	// KindError carries a fatal error encountered while producing entries.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindSmallFile:
		return "small-file"
	case KindLargeFileStart:
		return "large-file-start"
	case KindLargeFileChunk:
		return "large-file-chunk"
	case KindLargeFileEnd:
		return "large-file-end"
	case KindSymlink:
		return "symlink"
	case KindHardLink:
		return "hardlink"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is the single type carried on both the metadata channel and the
// chunk channel; which fields are meaningful depends on Kind.
type Entry struct {
	Kind    Kind
	RelPath string
	Target  string
	Buf     []byte
	Size    int64
	Meta    filemeta.Metadata
	Err     error
}

// ErrProtocolViolation is returned when a chunk-only Kind is observed on
// the metadata channel. A non-chunk Kind on the chunk channel is reported
// by streamreader.ErrInvalidChunk instead.
var ErrProtocolViolation = errors.New("entry: protocol violation")

// IsChunkKind reports whether k belongs on the chunk channel rather than
// the metadata channel.
func IsChunkKind(k Kind) bool {
	return k == KindLargeFileChunk || k == KindLargeFileEnd
}
