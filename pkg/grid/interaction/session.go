package interaction

import "github.com/matzehuels/gridboard/pkg/grid"

// Mode identifies what a session is editing.
type Mode int

const (
	// ModeMove repositions a block, keeping its size.
	ModeMove Mode = iota
	// ModeResize changes a block's size, keeping its top-left corner.
	ModeResize
)

// String returns the mode's name.
func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeResize:
		return "resize"
	default:
		return "unknown"
	}
}

// State is the controller's position in the interaction state machine.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateDragging means a pointer move session is in progress.
	StateDragging
	// StateResizing means a pointer resize session is in progress.
	StateResizing
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Session is the transient state of one in-progress interaction. It is
// created at session start, destroyed at commit, revert, or cancel, and
// never persisted.
type Session struct {
	BlockID string
	Mode    Mode

	// Original is the block's rectangle snapshotted at session start, the
	// target of a hard revert.
	Original grid.Rect

	// Candidate is the latest applied candidate rectangle. It starts equal
	// to Original and trails one frame behind raw pointer input.
	Candidate grid.Rect
}

// pointerSample is the most recent pointer position, in local container
// pixels, awaiting the next frame tick.
type pointerSample struct {
	x, y int
}
