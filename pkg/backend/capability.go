package backend

import "strings"

// Capability is a declarable operation kind a backend may support.
//
// Capabilities are an explicit declaration queried before dispatch, never
// inferred from method presence: every backend implements the full
// Backend interface and answers Unimplemented for operations outside its
// declared set.
type Capability uint

const (
	CapList Capability = iota
	CapRead
	CapWrite
	CapDelete
	CapMkdir
	CapCopy
	CapMove
	CapDownload
	CapUpload
	CapContainers
	CapVersioning
	CapMetadata
	CapPermissions
	CapSymlinks
	CapServerSideCopy
	CapFileLocking
	CapDelegations
	CapPresignedURLs
	CapBulkDelete
	CapMultipartUpload

	capCount // keep last
)

var capabilityNames = [capCount]string{
	"list", "read", "write", "delete", "mkdir", "copy", "move",
	"download", "upload", "containers", "versioning", "metadata",
	"permissions", "symlinks", "server_side_copy", "file_locking",
	"delegations", "presigned_urls", "bulk_delete", "multipart_upload",
}

func (c Capability) String() string {
	if c < capCount {
		return capabilityNames[c]
	}
	return "unknown"
}

// Set is a bitset of capabilities declared by a backend.
type Set uint64

// NewSet builds a set from the given capabilities.
func NewSet(caps ...Capability) Set {
	var s Set
	return s.With(caps...)
}

// With returns the set extended by the given capabilities.
func (s Set) With(caps ...Capability) Set {
	for _, c := range caps {
		s |= 1 << c
	}
	return s
}

// Has reports whether the capability is declared.
func (s Set) Has(c Capability) bool {
	return s&(1<<c) != 0
}

// HasAll reports whether every given capability is declared.
func (s Set) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Slice returns the declared capabilities in declaration order.
func (s Set) Slice() []Capability {
	var out []Capability
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, capCount)
	for _, c := range s.Slice() {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}
