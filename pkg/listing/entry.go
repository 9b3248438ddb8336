// Package listing defines the entry model for an editable directory
// listing: entries, their stable identities, and the snapshots a commit
// reconciles.
//
// Identity is the backbone of reconciliation. Every entry materialized by
// a backend listing receives an opaque ID from a Registry; the ID follows
// the entry through renames and moves inside one edit session, which is
// what lets the change detector tell a move from a delete-plus-create.
package listing

import (
	"encoding/json"
	"fmt"
	"path"
	"time"

	"gopkg.in/yaml.v3"
)

// ID is the opaque, session-stable identity of a listing entry.
//
// IDs are monotonic and carry no semantic meaning; in particular they are
// never derived from paths. Two entries with the same ID are the same
// logical object regardless of path or name differences between snapshots.
type ID uint64

// Kind classifies what a listing entry points at.
type Kind int

const (
	// KindFile is a regular file.
	KindFile Kind = iota

	// KindDirectory is a directory.
	KindDirectory

	// KindContainer is a backend top-level container (S3 bucket, SMB
	// share). Containers list like directories but cannot be moved.
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

func (k *Kind) parse(name string) error {
	switch name {
	case "file":
		*k = KindFile
	case "directory":
		*k = KindDirectory
	case "container":
		*k = KindContainer
	default:
		return fmt.Errorf("unknown entry kind %q", name)
	}
	return nil
}

// Kinds serialize by name: snapshot files are edited by hand, and a bare
// integer would make them unreadable.

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	return k.parse(name)
}

func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return k.parse(name)
}

// Entry is one row of an editable listing.
type Entry struct {
	// ID is the session-stable identity assigned by the Registry.
	ID ID `json:"id" yaml:"id"`

	// Name is the final path segment.
	Name string `json:"name" yaml:"name"`

	// Path is the canonical backend-addressable location.
	Path string `json:"path" yaml:"path"`

	// Kind classifies the entry.
	Kind Kind `json:"kind" yaml:"kind"`

	// Size is the entry size in bytes. Zero for directories and for
	// backends that do not report sizes.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`

	// ModifiedAt is the last modification time, zero when unknown.
	ModifiedAt time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`

	// Metadata carries backend-specific attributes (mode strings, owner,
	// storage class). Optional.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// WithPath returns a copy of the entry relocated to newPath, with Name
// kept consistent with the final path segment.
func (e Entry) WithPath(newPath string) Entry {
	e.Path = newPath
	e.Name = path.Base(newPath)
	return e
}

// IsDir reports whether the entry lists children (directory or container).
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory || e.Kind == KindContainer
}
