package plan

import (
	"sort"

	"github.com/edfm/edfm/pkg/diff"
	"github.com/edfm/edfm/pkg/listing"
)

// Summary tallies a plan by operation kind. Total counts operations, not
// affected entries: a copy counts once regardless of fan-out.
type Summary struct {
	Creates int `json:"creates" yaml:"creates"`
	Copies  int `json:"copies" yaml:"copies"`
	Moves   int `json:"moves" yaml:"moves"`
	Deletes int `json:"deletes" yaml:"deletes"`
	Total   int `json:"total" yaml:"total"`
}

// Plan is an ordered sequence of operations derived from a change set.
//
// Operations are grouped creates+copies, then moves, then deletes, with
// discovery order preserved inside each group. The executor treats the
// group boundaries as hard barriers.
type Plan struct {
	Operations []Operation `json:"operations" yaml:"operations"`
	Summary    Summary     `json:"summary" yaml:"summary"`
}

// Empty reports whether the plan has no operations.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// Groups splits the operations at the two ordering barriers: the
// non-destructive group (creates and copies), the move group, and the
// delete group. Slices share the plan's backing array.
func (p *Plan) Groups() (nonDestructive, moves, deletes []Operation) {
	firstMove := len(p.Operations)
	firstDelete := len(p.Operations)

	for i, op := range p.Operations {
		if op.Kind == KindMove && i < firstMove {
			firstMove = i
		}
		if op.Kind == KindDelete {
			firstDelete = i
			break
		}
	}
	if firstMove > firstDelete {
		firstMove = firstDelete
	}

	return p.Operations[:firstMove], p.Operations[firstMove:firstDelete], p.Operations[firstDelete:]
}

// Build converts a change set into an ordered plan.
//
// The original snapshot resolves the source path of each move. Moves are
// emitted in ascending ID order, which is monotonic with the discovery
// order of the underlying listing and keeps plans deterministic despite
// the map-typed Moves field.
func Build(original *listing.Snapshot, cs *diff.ChangeSet) *Plan {
	p := &Plan{}

	for _, e := range cs.Creates {
		p.Operations = append(p.Operations, Create(e))
	}
	for _, c := range cs.Copies {
		p.Operations = append(p.Operations, CopyOf(c.Source, c.To))
	}

	moveIDs := make([]listing.ID, 0, len(cs.Moves))
	for id := range cs.Moves {
		moveIDs = append(moveIDs, id)
	}
	sort.Slice(moveIDs, func(i, j int) bool { return moveIDs[i] < moveIDs[j] })

	for _, id := range moveIDs {
		from := ""
		if orig, ok := original.Get(id); ok {
			from = orig.Path
		}
		p.Operations = append(p.Operations, Move(id, from, cs.Moves[id]))
	}

	for _, e := range cs.Deletes {
		p.Operations = append(p.Operations, Delete(e))
	}

	p.Summary = Summary{
		Creates: len(cs.Creates),
		Copies:  len(cs.Copies),
		Moves:   len(cs.Moves),
		Deletes: len(cs.Deletes),
		Total:   len(p.Operations),
	}

	return p
}
