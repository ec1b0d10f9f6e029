package interaction

import (
	"context"
	"testing"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/events"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Test geometry: 400px container over 4 columns -> 100px cells; 80px rows
// with a 20px gap -> 100px cell height. Pixel (x,y) = cell (x/100, y/100).
func testConfig(t *testing.T, live, reflowEnabled bool) Config {
	t.Helper()
	e, err := reflow.New(reflow.StrategyPushDown, 0)
	if err != nil {
		t.Fatalf("reflow.New: %v", err)
	}
	return Config{
		GridID:         "dash",
		ContainerWidth: 400,
		RowHeight:      80,
		Gap:            20,
		LivePreview:    live,
		ReflowEnabled:  reflowEnabled,
		Reflow:         e,
	}
}

func testModel(t *testing.T) *grid.Model {
	t.Helper()
	m, err := grid.NewModel(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range []grid.Block{
		{ID: "a", Rect: grid.Rect{X: 0, Y: 0, W: 2, H: 2}},
		{ID: "b", Rect: grid.Rect{X: 2, Y: 0, W: 2, H: 2}},
	} {
		if err := m.Add(b); err != nil {
			t.Fatalf("Add(%s): %v", b.ID, err)
		}
	}
	return m
}

func mustController(t *testing.T, m *grid.Model, cfg Config) *Controller {
	t.Helper()
	c, err := New(m, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// sinkRecorder counts blocked placements and captures session ends.
type sinkRecorder struct {
	events.NoopSink
	blocked   int
	dragEnds  []bool
	reflowed  int
	colEvents [][2]int
}

func (s *sinkRecorder) OnBlockedPlacement(string, grid.Rect) { s.blocked++ }
func (s *sinkRecorder) OnDragEnd(_ string, _, _ grid.Rect, committed bool) {
	s.dragEnds = append(s.dragEnds, committed)
}
func (s *sinkRecorder) OnReflowApplied(string, []grid.Block) { s.reflowed++ }
func (s *sinkRecorder) OnColumnsChanged(cols, clamped int) {
	s.colEvents = append(s.colEvents, [2]int{cols, clamped})
}

// batchRecorder captures persisted batches.
type batchRecorder struct {
	batches [][]layout.Position
}

func (r *batchRecorder) SavePositions(_ context.Context, _ string, updates []layout.Position) error {
	r.batches = append(r.batches, updates)
	return nil
}

func TestDragBlockedWithoutReflow(t *testing.T) {
	// Reflow disabled: dragging a onto b is rejected and the layout is
	// unchanged.
	m := testModel(t)
	sink := &sinkRecorder{}
	cfg := testConfig(t, false, false)
	cfg.Sink = sink
	c := mustController(t, m, cfg)

	if err := c.StartDrag("a"); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	if c.State() != StateDragging {
		t.Errorf("State = %v, want dragging", c.State())
	}

	c.PointerMoved(150, 0) // cell (1,0), overlapping b
	c.FrameTick()

	if !c.Blocked() {
		t.Error("Blocked = false after colliding candidate")
	}
	if sink.blocked != 1 {
		t.Errorf("blocked events = %d, want 1", sink.blocked)
	}

	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if res.To != (grid.Rect{X: 0, Y: 0, W: 2, H: 2}) {
		t.Errorf("ended at %s, want original", res.To)
	}
	a, _ := m.Get("a")
	b, _ := m.Get("b")
	if a.Rect != (grid.Rect{X: 0, Y: 0, W: 2, H: 2}) || b.Rect != (grid.Rect{X: 2, Y: 0, W: 2, H: 2}) {
		t.Errorf("layout changed: a=%s b=%s", a.Rect, b.Rect)
	}
	if c.State() != StateIdle {
		t.Errorf("State = %v after End, want idle", c.State())
	}
}

func TestDragCommitsWithReflow(t *testing.T) {
	// Reflow enabled: dropping a at (1,0) commits it and pushes b down.
	m := testModel(t)
	sink := &sinkRecorder{}
	cfg := testConfig(t, true, true)
	cfg.Sink = sink
	rec := &batchRecorder{}
	cfg.Persister = rec
	c := mustController(t, m, cfg)

	if err := c.StartDrag("a"); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	c.PointerMoved(150, 0)
	c.FrameTick()

	// Live preview shows the push without touching the model.
	view := c.ViewRects()
	if view["a"] != (grid.Rect{X: 1, Y: 0, W: 2, H: 2}) || view["b"] != (grid.Rect{X: 2, Y: 2, W: 2, H: 2}) {
		t.Errorf("preview = %v", view)
	}
	committed, _ := m.Get("b")
	if committed.Rect != (grid.Rect{X: 2, Y: 0, W: 2, H: 2}) {
		t.Errorf("preview mutated model: b=%s", committed.Rect)
	}

	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !res.Committed {
		t.Fatal("Committed = false")
	}
	a, _ := m.Get("a")
	b, _ := m.Get("b")
	if a.Rect != (grid.Rect{X: 1, Y: 0, W: 2, H: 2}) {
		t.Errorf("a = %s, want (1,0 2x2)", a.Rect)
	}
	if b.Rect != (grid.Rect{X: 2, Y: 2, W: 2, H: 2}) {
		t.Errorf("b = %s, want (2,2 2x2)", b.Rect)
	}
	if sink.reflowed != 1 {
		t.Errorf("reflow events = %d, want 1", sink.reflowed)
	}

	// The persisted batch carries the moved block plus the displaced one.
	if len(rec.batches) != 1 || len(rec.batches[0]) != 2 {
		t.Fatalf("batches = %+v", rec.batches)
	}
	if rec.batches[0][0].BlockID != "a" || rec.batches[0][1].BlockID != "b" {
		t.Errorf("batch = %+v", rec.batches[0])
	}
}

func TestPointerCoalescing(t *testing.T) {
	// Only the latest sample per frame tick is processed.
	m := testModel(t)
	c := mustController(t, m, testConfig(t, false, false))

	if err := c.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	c.PointerMoved(150, 0)   // would be blocked
	c.PointerMoved(50, 250)  // cell (0,2), free
	c.FrameTick()

	if c.Blocked() {
		t.Error("Blocked = true; stale sample was processed")
	}
	sess, _ := c.Session()
	if sess.Candidate != (grid.Rect{X: 0, Y: 2, W: 2, H: 2}) {
		t.Errorf("Candidate = %s, want (0,2 2x2)", sess.Candidate)
	}

	// Without a new sample a tick is a no-op.
	c.FrameTick()
	sess, _ = c.Session()
	if sess.Candidate != (grid.Rect{X: 0, Y: 2, W: 2, H: 2}) {
		t.Errorf("Candidate drifted: %s", sess.Candidate)
	}
}

func TestLivePreviewRevert(t *testing.T) {
	// Live preview without commit reflow: an overlapping final candidate
	// fails drop validation and hard-reverts.
	m := testModel(t)
	cfg := testConfig(t, true, false)
	c := mustController(t, m, cfg)

	if err := c.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	c.PointerMoved(150, 0)
	c.FrameTick()

	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if res.Committed {
		t.Error("Committed = true for overlapping drop without reflow")
	}
	a, _ := m.Get("a")
	if a.Rect != (grid.Rect{X: 0, Y: 0, W: 2, H: 2}) {
		t.Errorf("a = %s, want reverted original", a.Rect)
	}
}

func TestSessionCancelledWhenBlockRemoved(t *testing.T) {
	m := testModel(t)
	c := mustController(t, m, testConfig(t, false, false))

	if err := c.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	m.Remove("a")
	c.PointerMoved(50, 250)
	c.FrameTick()

	if c.State() != StateIdle {
		t.Errorf("State = %v, want idle after silent cancellation", c.State())
	}

	// Ending after removal also cancels, never errors.
	if err := c.StartDrag("b"); err != nil {
		t.Fatal(err)
	}
	m.Remove("b")
	res, err := c.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !res.Cancelled {
		t.Error("Cancelled = false")
	}
}

func TestStartDragErrors(t *testing.T) {
	m := testModel(t)
	c := mustController(t, m, testConfig(t, false, false))

	if err := c.StartDrag("zz"); !errors.Is(err, errors.ErrCodeUnknownBlock) {
		t.Errorf("StartDrag(zz) error = %v, want UNKNOWN_BLOCK", err)
	}
	if err := c.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	if err := c.StartDrag("b"); !errors.Is(err, errors.ErrCodeSessionActive) {
		t.Errorf("second StartDrag error = %v, want SESSION_ACTIVE", err)
	}
}

func TestCancelRestoresOriginal(t *testing.T) {
	m := testModel(t)
	c := mustController(t, m, testConfig(t, false, false))

	if err := c.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	c.PointerMoved(50, 250)
	c.FrameTick() // direct mode moves the block live

	a, _ := m.Get("a")
	if a.Rect != (grid.Rect{X: 0, Y: 2, W: 2, H: 2}) {
		t.Fatalf("block not moved live: %s", a.Rect)
	}

	c.Cancel()
	a, _ = m.Get("a")
	if a.Rect != (grid.Rect{X: 0, Y: 0, W: 2, H: 2}) {
		t.Errorf("Cancel left a = %s, want original", a.Rect)
	}
	if c.State() != StateIdle {
		t.Errorf("State = %v, want idle", c.State())
	}
}

func TestKeyboardMove(t *testing.T) {
	m := testModel(t)
	rec := &batchRecorder{}
	cfg := testConfig(t, false, false)
	cfg.Persister = rec
	c := mustController(t, m, cfg)
	ctx := context.Background()

	// One cell down into free space commits.
	res, err := c.KeyboardMove(ctx, "a", 0, 1)
	if err != nil {
		t.Fatalf("KeyboardMove: %v", err)
	}
	if !res.Committed || res.To != (grid.Rect{X: 0, Y: 1, W: 2, H: 2}) {
		t.Errorf("result = %+v", res)
	}
	if len(rec.batches) != 1 {
		t.Errorf("batches = %d, want 1", len(rec.batches))
	}

	// One cell right collides with b: silently ignored, no persistence.
	res, err = c.KeyboardMove(ctx, "a", 1, 0)
	if err != nil {
		t.Fatalf("KeyboardMove: %v", err)
	}
	if res.Committed {
		t.Error("colliding step committed")
	}
	if len(rec.batches) != 1 {
		t.Errorf("no-op step persisted a batch")
	}

	// Off the left edge: silently ignored.
	if res, _ = c.KeyboardMove(ctx, "a", -1, 0); res.Committed {
		t.Error("out-of-bounds step committed")
	}

	if _, err := c.KeyboardMove(ctx, "zz", 0, 1); !errors.Is(err, errors.ErrCodeUnknownBlock) {
		t.Errorf("KeyboardMove(zz) error = %v, want UNKNOWN_BLOCK", err)
	}
}

func TestKeyboardResizeClampsToConstraints(t *testing.T) {
	// Block (0,0,4,2) with minW=2, maxW=6 on an 8-column grid: +4 width
	// clamps to w=6.
	m, err := grid.NewModel(8)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Add(grid.Block{
		ID:          "a",
		Rect:        grid.Rect{X: 0, Y: 0, W: 4, H: 2},
		Constraints: grid.Constraints{MinW: 2, MaxW: 6},
	}); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, false, false)
	cfg.ContainerWidth = 800
	c := mustController(t, m, cfg)
	ctx := context.Background()

	res, err := c.KeyboardResize(ctx, "a", 4, 0)
	if err != nil {
		t.Fatalf("KeyboardResize: %v", err)
	}
	if res.To.W != 6 {
		t.Errorf("W = %d, want clamped 6", res.To.W)
	}

	// Shrinking below minW clamps to 2 over repeated steps.
	for i := 0; i < 10; i++ {
		if _, err := c.KeyboardResize(ctx, "a", -1, 0); err != nil {
			t.Fatal(err)
		}
	}
	a, _ := m.Get("a")
	if a.Rect.W != 2 {
		t.Errorf("W = %d, want floor 2", a.Rect.W)
	}

	// At the floor, a further shrink is a no-op.
	res, _ = c.KeyboardResize(ctx, "a", -1, 0)
	if res.Committed {
		t.Error("step at constraint floor committed")
	}
}

func TestSetColumnsEmitsAndPersists(t *testing.T) {
	m, err := grid.NewModel(8)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Add(grid.Block{ID: "a", Rect: grid.Rect{X: 4, Y: 0, W: 4, H: 2}}); err != nil {
		t.Fatal(err)
	}

	sink := &sinkRecorder{}
	rec := &batchRecorder{}
	cfg := testConfig(t, false, false)
	cfg.ContainerWidth = 800
	cfg.Sink = sink
	cfg.Persister = rec
	c := mustController(t, m, cfg)

	blocks, clamped, err := c.SetColumns(context.Background(), 6)
	if err != nil {
		t.Fatalf("SetColumns: %v", err)
	}
	if clamped != 1 || blocks[0].Rect != (grid.Rect{X: 2, Y: 0, W: 4, H: 2}) {
		t.Errorf("clamped=%d blocks=%+v", clamped, blocks)
	}
	if len(sink.colEvents) != 1 || sink.colEvents[0] != [2]int{6, 1} {
		t.Errorf("column events = %v", sink.colEvents)
	}
	if len(rec.batches) != 1 || len(rec.batches[0]) != 1 {
		t.Errorf("batches = %+v", rec.batches)
	}
}

func TestNewValidation(t *testing.T) {
	m := testModel(t)

	if _, err := New(m, Config{RowHeight: 80}); !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("missing container width error = %v", err)
	}
	if _, err := New(m, Config{ContainerWidth: 400}); !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("missing row height error = %v", err)
	}
	if _, err := New(m, Config{ContainerWidth: 400, RowHeight: 80, LivePreview: true}); !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("missing reflow engine error = %v", err)
	}
}
