package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/policy"
)

// newTestServer builds a layoutServer over a fresh in-memory store.
func newTestServer(t *testing.T) *layoutServer {
	t.Helper()
	pol := policy.Default()
	engine, err := reflow.New(pol.Reflow.Strategy, pol.Reflow.IterationCap)
	if err != nil {
		t.Fatalf("reflow.New() error = %v", err)
	}
	return &layoutServer{
		policy: pol,
		store:  layout.NewMemoryStore(),
		reflow: engine,
		cli:    New(io.Discard, LogInfo),
	}
}

// do runs one request against the server's router and returns the recorder.
func do(t *testing.T, srv *layoutServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func testLayout() layout.Layout {
	return layout.Layout{
		Columns: 12,
		Blocks: []layout.Position{
			{BlockID: "a", X: 0, Y: 0, W: 4, H: 2},
			{BlockID: "b", X: 0, Y: 2, W: 4, H: 2},
		},
	}
}

func TestServeLayoutRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", testLayout())
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/v1/grids/g1/layout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET layout status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decode[layout.Layout](t, rec)
	if got.Columns != 12 || len(got.Blocks) != 2 {
		t.Errorf("GET layout = %+v, want 12 columns and 2 blocks", got)
	}
}

func TestServeGetUnknownGrid(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/v1/grids/nope/layout", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown grid status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	resp := decode[errorResponse](t, rec)
	if resp.Code != "UNKNOWN_GRID" {
		t.Errorf("error code = %q, want UNKNOWN_GRID", resp.Code)
	}
}

func TestServePutOverlappingLayout(t *testing.T) {
	srv := newTestServer(t)

	bad := layout.Layout{
		Columns: 12,
		Blocks: []layout.Position{
			{BlockID: "a", X: 0, Y: 0, W: 4, H: 2},
			{BlockID: "b", X: 2, Y: 1, W: 4, H: 2},
		},
	}
	rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", bad)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT overlapping layout status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeAddBlockAutoPlacement(t *testing.T) {
	srv := newTestServer(t)

	if rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", testLayout()); rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d", rec.Code)
	}

	rec := do(t, srv, http.MethodPost, "/v1/grids/g1/blocks", addBlockRequest{W: 4, H: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST block status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	pos := decode[layout.Position](t, rec)
	if pos.BlockID == "" {
		t.Error("POST block should assign an ID")
	}
	// First free 4x2 slot sits beside block a.
	if pos.X != 4 || pos.Y != 0 {
		t.Errorf("auto placement = (%d,%d), want (4,0)", pos.X, pos.Y)
	}

	rec = do(t, srv, http.MethodGet, "/v1/grids/g1/layout", nil)
	got := decode[layout.Layout](t, rec)
	if len(got.Blocks) != 3 {
		t.Errorf("layout has %d blocks after add, want 3", len(got.Blocks))
	}
}

func TestServeAddBlockToEmptyGrid(t *testing.T) {
	srv := newTestServer(t)

	// A grid that was never saved starts empty at the policy column count.
	rec := do(t, srv, http.MethodPost, "/v1/grids/fresh/blocks", addBlockRequest{W: 2, H: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST block status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	pos := decode[layout.Position](t, rec)
	if pos.X != 0 || pos.Y != 0 {
		t.Errorf("placement on empty grid = (%d,%d), want (0,0)", pos.X, pos.Y)
	}
}

func TestServeDeleteBlock(t *testing.T) {
	srv := newTestServer(t)

	if rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", testLayout()); rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d", rec.Code)
	}

	rec := do(t, srv, http.MethodDelete, "/v1/grids/g1/blocks/a", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE block status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = do(t, srv, http.MethodDelete, "/v1/grids/g1/blocks/a", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE missing block status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeReflow(t *testing.T) {
	srv := newTestServer(t)

	if rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", testLayout()); rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d", rec.Code)
	}

	// Drop a onto b; b must be pushed below a's new extent.
	rec := do(t, srv, http.MethodPost, "/v1/grids/g1/reflow", reflowRequest{BlockID: "a", X: 0, Y: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST reflow status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	resp := decode[reflowResponse](t, rec)
	if len(resp.Displaced) != 1 || resp.Displaced[0] != "b" {
		t.Fatalf("displaced = %v, want [b]", resp.Displaced)
	}
	for _, p := range resp.Layout.Blocks {
		if p.BlockID == "b" && p.Y != 4 {
			t.Errorf("b.Y = %d, want 4", p.Y)
		}
	}
}

func TestServeSetColumns(t *testing.T) {
	srv := newTestServer(t)

	l := layout.Layout{
		Columns: 8,
		Blocks: []layout.Position{
			{BlockID: "wide", X: 4, Y: 0, W: 4, H: 2},
		},
	}
	if rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", l); rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d", rec.Code)
	}

	rec := do(t, srv, http.MethodPost, "/v1/grids/g1/columns", setColumnsRequest{Columns: 6})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST columns status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	resp := decode[setColumnsResponse](t, rec)
	if resp.Clamped != 1 {
		t.Errorf("clamped = %d, want 1", resp.Clamped)
	}
	if resp.Layout.Columns != 6 {
		t.Errorf("columns = %d, want 6", resp.Layout.Columns)
	}
	p := resp.Layout.Blocks[0]
	if p.X != 2 || p.W != 4 {
		t.Errorf("wide clamped to (%d, w=%d), want (2, w=4)", p.X, p.W)
	}
}

func TestServePatchPositions(t *testing.T) {
	srv := newTestServer(t)

	if rec := do(t, srv, http.MethodPut, "/v1/grids/g1/layout", testLayout()); rec.Code != http.StatusOK {
		t.Fatalf("PUT layout status = %d", rec.Code)
	}

	updates := []layout.Position{{BlockID: "a", X: 4, Y: 0, W: 4, H: 2}}
	rec := do(t, srv, http.MethodPatch, "/v1/grids/g1/positions", updates)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH positions status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	got := decode[layout.Layout](t, rec)
	for _, p := range got.Blocks {
		if p.BlockID == "a" && p.X != 4 {
			t.Errorf("a.X = %d, want 4", p.X)
		}
	}
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", rec.Code, http.StatusOK)
	}
}
