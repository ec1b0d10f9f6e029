// Package interaction drives pointer and keyboard editing sessions over a
// grid model: the state machine that turns raw input into validated,
// committed geometry.
//
// # State machine
//
// Pointer sessions move through
//
//	Idle -> Dragging -> {committed, reverted} -> Idle
//
// and the same shape for Resizing. Keyboard steps are a single synchronous
// transition with no intermediate state: a step either commits immediately
// or is silently ignored, so there is never anything to revert.
//
// # Frame coalescing
//
// Pointer input arrives at device rate but is applied at most once per
// animation frame: PointerMoved only records the latest sample, and the
// host calls FrameTick once per frame to process it. This bounds update
// frequency independent of input rate.
//
// # Preview vs. direct mode
//
// With live preview enabled, each frame's candidate runs through a
// preview-mode reflow on a detached copy of the model; committed state is
// untouched until the pointer is released. Without it, candidates that
// pass collision checks move the block in the model immediately, and an
// invalid drop reverts to the rectangle snapshotted at session start.
//
// A session whose block disappears from the model mid-drag (removed by an
// external collaborator) is discarded silently: there is no prior state
// left to restore.
package interaction
