package interaction

import (
	"context"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/events"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Persister receives committed position batches. Writes are fire-and-forget
// from the controller's point of view: it neither awaits success nor
// retries, and every Result carries the complete batch so a caller can
// replay it idempotently.
type Persister interface {
	SavePositions(ctx context.Context, gridID string, updates []layout.Position) error
}

// Config wires a controller's collaborators. Geometry values come from the
// policy layer; Sink and Persister are optional.
type Config struct {
	// GridID namespaces persisted batches.
	GridID string

	// ContainerWidth is the grid container's width in pixels, used with
	// the model's column count for pointer-to-cell conversion.
	ContainerWidth int

	// RowHeight and Gap, in pixels, define the cell height:
	// cellHeight = RowHeight + Gap.
	RowHeight int
	Gap       int

	// LivePreview routes drag candidates through preview-mode reflow
	// instead of gating them on collision checks.
	LivePreview bool

	// ReflowEnabled runs commit-mode reflow after a successful drop and
	// relaxes drop validation to the boundary check (overlaps are the
	// reflow's job to resolve).
	ReflowEnabled bool

	// Reflow is required when LivePreview or ReflowEnabled is set.
	Reflow *reflow.Engine

	// Sink receives interaction events; nil defaults to a no-op sink.
	Sink events.Sink

	// Persister receives committed batches; nil disables persistence.
	Persister Persister
}

// Result reports how a pointer session ended or what a keyboard step did.
type Result struct {
	BlockID string
	From    grid.Rect
	To      grid.Rect

	// Committed is false when the session reverted or the step was a no-op.
	Committed bool

	// Cancelled is true when the session's block had disappeared from the
	// model and the session was discarded without a revert.
	Cancelled bool

	// Displaced lists blocks moved by commit-mode reflow.
	Displaced []grid.Block

	// Positions is the complete batch handed to the persister: the edited
	// block plus every displaced one.
	Positions []layout.Position
}

// Controller is the interaction state machine for one grid model. It is
// the model's single logical owner and, like the model, is driven by one
// goroutine (the host's event loop).
type Controller struct {
	model *grid.Model
	cfg   Config
	sink  events.Sink

	state   State
	session *Session
	pending *pointerSample
	preview *reflow.Preview
	blocked bool
}

// New creates a controller over model.
func New(model *grid.Model, cfg Config) (*Controller, error) {
	if cfg.ContainerWidth < 1 {
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "container width must be >= 1, got %d", cfg.ContainerWidth)
	}
	if cfg.RowHeight < 1 {
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "row height must be >= 1, got %d", cfg.RowHeight)
	}
	if (cfg.LivePreview || cfg.ReflowEnabled) && cfg.Reflow == nil {
		return nil, errors.New(errors.ErrCodeInvalidPolicy, "reflow engine required when live preview or reflow is enabled")
	}
	if cfg.Sink == nil {
		cfg.Sink = events.NoopSink{}
	}
	return &Controller{model: model, cfg: cfg, sink: cfg.Sink, state: StateIdle}, nil
}

// State returns the controller's current state.
func (c *Controller) State() State { return c.state }

// Blocked reports whether the latest processed candidate was rejected,
// for transient "can't drop here" feedback.
func (c *Controller) Blocked() bool { return c.blocked }

// Session returns a copy of the active session, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// ViewRects returns the rectangles the host should draw this frame: the
// live preview layout while one is active, the committed model otherwise.
func (c *Controller) ViewRects() map[string]grid.Rect {
	if c.preview != nil {
		return c.preview.Rects
	}
	out := make(map[string]grid.Rect, c.model.Len())
	for _, b := range c.model.Blocks() {
		out[b.ID] = b.Rect
	}
	return out
}

// =============================================================================
// Pointer sessions
// =============================================================================

// StartDrag begins a move session for the given block.
func (c *Controller) StartDrag(id string) error {
	return c.start(id, ModeMove)
}

// StartResize begins a resize session for the given block.
func (c *Controller) StartResize(id string) error {
	return c.start(id, ModeResize)
}

func (c *Controller) start(id string, mode Mode) error {
	if c.session != nil {
		return errors.New(errors.ErrCodeSessionActive, "a %s session for block %q is active", c.session.Mode, c.session.BlockID)
	}
	b, ok := c.model.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}

	c.session = &Session{
		BlockID:   id,
		Mode:      mode,
		Original:  b.Rect,
		Candidate: b.Rect,
	}
	c.blocked = false

	if mode == ModeMove {
		c.state = StateDragging
		c.sink.OnDragStart(id, b.Rect)
	} else {
		c.state = StateResizing
		c.sink.OnResizeStart(id, b.Rect)
	}
	return nil
}

// PointerMoved records a pointer position in local container pixels.
// Samples overwrite each other; only the latest is applied, by the next
// FrameTick. A sample outside any session is dropped.
func (c *Controller) PointerMoved(x, y int) {
	if c.session == nil {
		return
	}
	c.pending = &pointerSample{x: x, y: y}
}

// FrameTick processes the pending pointer sample, if any. The host calls
// this once per animation frame.
func (c *Controller) FrameTick() {
	if c.session == nil || c.pending == nil {
		return
	}
	sample := *c.pending
	c.pending = nil

	// Session block removed mid-drag: discard silently.
	if !c.model.Contains(c.session.BlockID) {
		c.reset()
		return
	}

	candidate := c.candidateFor(sample)
	if candidate == c.session.Candidate && !c.blocked {
		return
	}

	if c.cfg.LivePreview {
		c.applyPreview(candidate)
		return
	}
	c.applyDirect(candidate)
}

// candidateFor converts a pointer sample to a candidate rectangle for the
// active session. Cell coordinates floor-divide the pixel position and
// clamp at zero; the right boundary is left to placement validation.
func (c *Controller) candidateFor(s pointerSample) grid.Rect {
	cellW := c.cfg.ContainerWidth / c.model.Columns()
	if cellW < 1 {
		cellW = 1
	}
	cellH := c.cfg.RowHeight + c.cfg.Gap

	gx := s.x / cellW
	gy := s.y / cellH
	if gx < 0 {
		gx = 0
	}
	if gy < 0 {
		gy = 0
	}

	orig := c.session.Original
	if c.session.Mode == ModeMove {
		return grid.Rect{X: gx, Y: gy, W: orig.W, H: orig.H}
	}

	// Resize: the pointer cell becomes the bottom-right cell.
	b, _ := c.model.Get(c.session.BlockID)
	r := orig
	r.W = gx - orig.X + 1
	r.H = gy - orig.Y + 1
	return b.Constraints.ClampSize(r)
}

// applyPreview runs the candidate through preview-mode reflow. Committed
// state stays untouched; each frame recomputes from it, which implicitly
// resets the previous frame's preview displacement.
func (c *Controller) applyPreview(candidate grid.Rect) {
	p, err := c.cfg.Reflow.Preview(c.model, c.session.BlockID, candidate)
	if err != nil {
		c.blocked = true
		c.sink.OnBlockedPlacement(c.session.BlockID, candidate)
		return
	}
	c.preview = &p
	c.session.Candidate = candidate
	c.blocked = false
}

// applyDirect gates the candidate on CanPlace and moves the block in the
// model immediately.
func (c *Controller) applyDirect(candidate grid.Rect) {
	if !c.model.CanPlace(c.session.BlockID, candidate) {
		c.blocked = true
		c.sink.OnBlockedPlacement(c.session.BlockID, candidate)
		return
	}
	if err := c.model.Place(c.session.BlockID, candidate); err != nil {
		c.blocked = true
		return
	}
	c.session.Candidate = candidate
	c.blocked = false
}

// End finishes the active pointer session, validating the final candidate
// and either committing it (with commit-mode reflow when enabled) or
// reverting to the session's original rectangle.
func (c *Controller) End(ctx context.Context) (Result, error) {
	if c.session == nil {
		return Result{}, errors.New(errors.ErrCodeNoSession, "no active session")
	}
	sess := *c.session

	// Block removed mid-session: nothing to commit or revert.
	if !c.model.Contains(sess.BlockID) {
		c.reset()
		return Result{BlockID: sess.BlockID, Cancelled: true}, nil
	}

	final := sess.Candidate
	if c.valid(sess.BlockID, final) {
		return c.commit(ctx, sess, final)
	}
	return c.revert(sess), nil
}

// valid is the drop-time check: full CanPlace normally, boundary-only when
// reflow is enabled, since the reflow resolves overlaps after the drop.
func (c *Controller) valid(id string, r grid.Rect) bool {
	if c.cfg.ReflowEnabled {
		return r.InBounds(c.model.Columns())
	}
	return c.model.CanPlace(id, r)
}

func (c *Controller) commit(ctx context.Context, sess Session, final grid.Rect) (Result, error) {
	if err := c.model.Apply(sess.BlockID, final); err != nil {
		return Result{}, err
	}

	res := Result{
		BlockID:   sess.BlockID,
		From:      sess.Original,
		To:        final,
		Committed: true,
	}

	if c.cfg.ReflowEnabled {
		displaced, err := c.cfg.Reflow.Commit(c.model, sess.BlockID)
		if err != nil {
			return Result{}, err
		}
		res.Displaced = displaced
		if len(displaced) > 0 {
			c.sink.OnReflowApplied(sess.BlockID, displaced)
		}
	}

	moved, _ := c.model.Get(sess.BlockID)
	res.Positions = append([]layout.Position{layout.PositionOf(moved)}, layout.PositionsOf(res.Displaced)...)

	if sess.Mode == ModeMove {
		c.sink.OnDragEnd(sess.BlockID, sess.Original, final, true)
	} else {
		c.sink.OnResizeEnd(sess.BlockID, sess.Original, final, true)
	}

	c.persist(ctx, res.Positions)
	c.reset()
	return res, nil
}

func (c *Controller) revert(sess Session) Result {
	// The direct path may have moved the block during the drag; restore
	// the snapshot unconditionally.
	_ = c.model.Apply(sess.BlockID, sess.Original)

	if sess.Mode == ModeMove {
		c.sink.OnDragEnd(sess.BlockID, sess.Original, sess.Original, false)
	} else {
		c.sink.OnResizeEnd(sess.BlockID, sess.Original, sess.Original, false)
	}

	c.reset()
	return Result{
		BlockID: sess.BlockID,
		From:    sess.Original,
		To:      sess.Original,
	}
}

// Cancel aborts the active session. If the block still exists its original
// rectangle is restored; a session whose block disappeared is discarded
// with no further action.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	if c.model.Contains(c.session.BlockID) {
		_ = c.model.Apply(c.session.BlockID, c.session.Original)
	}
	c.reset()
}

func (c *Controller) reset() {
	c.session = nil
	c.pending = nil
	c.preview = nil
	c.blocked = false
	c.state = StateIdle
}

// =============================================================================
// Keyboard steps
// =============================================================================

// KeyboardMove shifts a block by (dx, dy) grid cells as one synchronous
// step. A step that would leave the grid or collide is silently ignored:
// nothing was tentatively committed, so there is nothing to revert.
func (c *Controller) KeyboardMove(ctx context.Context, id string, dx, dy int) (Result, error) {
	b, ok := c.model.Get(id)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}

	target := b.Rect
	target.X += dx
	target.Y += dy

	if target == b.Rect || !c.model.CanPlace(id, target) {
		return Result{BlockID: id, From: b.Rect, To: b.Rect}, nil
	}

	if err := c.model.Place(id, target); err != nil {
		return Result{}, err
	}
	c.sink.OnKeyboardMove(id, b.Rect, target)

	res := Result{
		BlockID:   id,
		From:      b.Rect,
		To:        target,
		Committed: true,
		Positions: []layout.Position{layout.PositionOf(grid.Block{ID: id, Rect: target})},
	}
	c.persist(ctx, res.Positions)
	return res, nil
}

// KeyboardResize grows or shrinks a block by (dw, dh) grid cells as one
// synchronous step. The delta is clamped to the block's size constraints
// before validation; a no-op or colliding step is silently ignored.
func (c *Controller) KeyboardResize(ctx context.Context, id string, dw, dh int) (Result, error) {
	b, ok := c.model.Get(id)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeUnknownBlock, "no block %q", id)
	}

	target := b.Rect
	target.W += dw
	target.H += dh
	target = b.Constraints.ClampSize(target)

	if target == b.Rect || !c.model.CanPlace(id, target) {
		return Result{BlockID: id, From: b.Rect, To: b.Rect}, nil
	}

	if err := c.model.Place(id, target); err != nil {
		return Result{}, err
	}
	c.sink.OnKeyboardResize(id, b.Rect, target)

	res := Result{
		BlockID:   id,
		From:      b.Rect,
		To:        target,
		Committed: true,
		Positions: []layout.Position{layout.PositionOf(grid.Block{ID: id, Rect: target})},
	}
	c.persist(ctx, res.Positions)
	return res, nil
}

// =============================================================================
// Column changes
// =============================================================================

// SetColumns re-clamps the grid to n columns, emits the columns-changed
// event, and persists the full updated layout. It returns the updated
// block list and how many blocks required clamping.
func (c *Controller) SetColumns(ctx context.Context, n int) ([]grid.Block, int, error) {
	blocks, clamped, err := c.model.SetColumns(n)
	if err != nil {
		return nil, 0, err
	}
	c.sink.OnColumnsChanged(n, clamped)
	c.persist(ctx, layout.PositionsOf(blocks))
	return blocks, clamped, nil
}

// persist hands a batch to the persister, if configured. Errors are
// dropped: batches carry complete rectangles, so an outer layer can
// replay them, and an interaction never blocks on storage.
func (c *Controller) persist(ctx context.Context, positions []layout.Position) {
	if c.cfg.Persister == nil || len(positions) == 0 {
		return
	}
	_ = c.cfg.Persister.SavePositions(ctx, c.cfg.GridID, positions)
}
