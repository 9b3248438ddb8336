// Package plan turns a classified change set into an ordered, executable
// operation plan.
//
// The ordering contract is load-bearing: non-destructive operations
// (creates and copies) commit before moves, and moves before deletes. A
// plan interrupted at any point therefore never leaves the backend in a
// state where data reachable from either snapshot has been lost, and a
// delete can never remove a path that a pending move still needs as its
// copy-then-delete source.
package plan

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/edfm/edfm/pkg/listing"
)

// Kind discriminates the operation union.
type Kind int

const (
	KindCreate Kind = iota
	KindCopy
	KindMove
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindCopy:
		return "copy"
	case KindMove:
		return "move"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

func (k *Kind) parse(name string) error {
	switch name {
	case "create":
		*k = KindCreate
	case "copy":
		*k = KindCopy
	case "move":
		*k = KindMove
	case "delete":
		*k = KindDelete
	default:
		return fmt.Errorf("unknown operation kind %q", name)
	}
	return nil
}

// Kinds serialize by name so rendered plans are readable and editable.

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

// Operation is one executable step of a plan.
//
// Field usage by kind:
//
//	Create: Entry is the entry to materialize; To equals Entry.Path.
//	Copy:   Entry is the source; To is the destination path.
//	Move:   ID identifies the moving entry; From and To are its paths.
//	Delete: Entry is the entry to remove; From equals Entry.Path.
type Operation struct {
	Kind  Kind          `json:"kind" yaml:"kind"`
	Entry listing.Entry `json:"entry,omitempty" yaml:"entry,omitempty"`
	ID    listing.ID    `json:"id,omitempty" yaml:"id,omitempty"`
	From  string        `json:"from,omitempty" yaml:"from,omitempty"`
	To    string        `json:"to,omitempty" yaml:"to,omitempty"`
}

// Create builds a create operation for the entry.
func Create(e listing.Entry) Operation {
	return Operation{Kind: KindCreate, Entry: e, ID: e.ID, To: e.Path}
}

// CopyOf builds a copy of source to the destination path.
func CopyOf(source listing.Entry, to string) Operation {
	return Operation{Kind: KindCopy, Entry: source, ID: source.ID, From: source.Path, To: to}
}

// Move builds a move of the identified entry between paths.
func Move(id listing.ID, from, to string) Operation {
	return Operation{Kind: KindMove, ID: id, From: from, To: to}
}

// Delete builds a delete operation for the entry.
func Delete(e listing.Entry) Operation {
	return Operation{Kind: KindDelete, Entry: e, ID: e.ID, From: e.Path}
}

// Target returns the path the operation acts on, for progress display.
func (o Operation) Target() string {
	if o.Kind == KindDelete {
		return o.From
	}
	return o.To
}

func (o Operation) String() string {
	switch o.Kind {
	case KindCreate:
		return fmt.Sprintf("create %s", o.To)
	case KindCopy:
		return fmt.Sprintf("copy %s -> %s", o.From, o.To)
	case KindMove:
		return fmt.Sprintf("move %s -> %s", o.From, o.To)
	case KindDelete:
		return fmt.Sprintf("delete %s", o.From)
	default:
		return "unknown operation"
	}
}
