package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/grid/reflow"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/policy"
)

// serveCommand creates the serve command for the HTTP layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		store      storeFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout service",
		Long: `Run the HTTP layout service.

The service persists one layout per grid ID in the selected store and applies
the same placement rules as the interactive surfaces: blocks never overlap,
moves reflow collisions downward, and column changes clamp blocks into the
new grid.

Endpoints (all JSON):

  GET    /v1/grids/{gridID}/layout          fetch a layout
  PUT    /v1/grids/{gridID}/layout          replace a layout
  PATCH  /v1/grids/{gridID}/positions       merge a position batch
  POST   /v1/grids/{gridID}/blocks          add a block (ID assigned)
  DELETE /v1/grids/{gridID}/blocks/{id}     remove a block
  POST   /v1/grids/{gridID}/columns         change the column count
  POST   /v1/grids/{gridID}/reflow          move a block and resolve collisions
  GET    /health                            liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath, &store)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "policy file (TOML)")
	store.register(cmd)

	return cmd
}

// runServe opens the store, builds the router, and serves until ctx is done.
func (c *CLI) runServe(ctx context.Context, addr, configPath string, flags *storeFlags) error {
	pol, err := loadPolicy(configPath)
	if err != nil {
		return err
	}

	store, err := flags.open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := reflow.New(pol.Reflow.Strategy, pol.Reflow.IterationCap)
	if err != nil {
		return err
	}

	srv := &layoutServer{policy: pol, store: store, reflow: engine, cli: c}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("layout service listening", "addr", addr, "store", flags.backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.Logger.Info("layout service stopped")
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

// layoutServer handles the HTTP API over a layout store.
type layoutServer struct {
	policy policy.Policy
	store  layout.Store
	reflow *reflow.Engine
	cli    *CLI
}

// router builds the chi routing tree.
func (s *layoutServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	r.Route("/v1/grids/{gridID}", func(r chi.Router) {
		r.Get("/layout", s.getLayout)
		r.Put("/layout", s.putLayout)
		r.Patch("/positions", s.patchPositions)
		r.Post("/blocks", s.postBlock)
		r.Delete("/blocks/{blockID}", s.deleteBlock)
		r.Post("/columns", s.postColumns)
		r.Post("/reflow", s.postReflow)
	})

	return r
}

// logRequests logs each request at debug level.
func (s *layoutServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.cli.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *layoutServer) getLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Load(r.Context(), chi.URLParam(r, "gridID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *layoutServer) putLayout(w http.ResponseWriter, r *http.Request) {
	var l layout.Layout
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout"))
		return
	}

	// Reject layouts the engine itself would never produce.
	if _, err := layout.ToModel(l, s.policy.BlockConstraints()); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.store.SaveLayout(r.Context(), chi.URLParam(r, "gridID"), l); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *layoutServer) patchPositions(w http.ResponseWriter, r *http.Request) {
	var updates []layout.Position
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode positions"))
		return
	}

	gridID := chi.URLParam(r, "gridID")
	l, err := s.store.Load(r.Context(), gridID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	merged := l.Merge(updates)
	if _, err := layout.ToModel(merged, s.policy.BlockConstraints()); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.store.SaveLayout(r.Context(), gridID, merged); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, merged)
}

// addBlockRequest is the body of POST /blocks. W and H default to 1; X and Y
// are ignored unless Place is true, in which case the block must fit exactly.
type addBlockRequest struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	W     int  `json:"w"`
	H     int  `json:"h"`
	Place bool `json:"place"`
}

func (s *layoutServer) postBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidRect, err, "decode block"))
		return
	}
	if req.W < 1 {
		req.W = 1
	}
	if req.H < 1 {
		req.H = 1
	}

	gridID := chi.URLParam(r, "gridID")
	m, err := s.loadModel(r.Context(), gridID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	rect := grid.Rect{X: req.X, Y: req.Y, W: req.W, H: req.H}
	if !req.Place {
		var ok bool
		if rect, ok = firstFreeSlot(m, req.W, req.H); !ok {
			s.respondError(w, errors.New(errors.ErrCodeInvalidRect, "no free %dx%d slot", req.W, req.H))
			return
		}
	}

	block := grid.Block{
		ID:          uuid.NewString(),
		Rect:        rect,
		Constraints: s.policy.BlockConstraints(),
	}
	if err := m.Add(block); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.store.SaveLayout(r.Context(), gridID, layout.FromModel(m)); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, layout.PositionOf(block))
}

func (s *layoutServer) deleteBlock(w http.ResponseWriter, r *http.Request) {
	gridID := chi.URLParam(r, "gridID")
	m, err := s.loadModel(r.Context(), gridID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	blockID := chi.URLParam(r, "blockID")
	if !m.Remove(blockID) {
		s.respondError(w, errors.New(errors.ErrCodeUnknownBlock, "unknown block %q", blockID))
		return
	}

	if err := s.store.SaveLayout(r.Context(), gridID, layout.FromModel(m)); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setColumnsRequest is the body of POST /columns.
type setColumnsRequest struct {
	Columns int `json:"columns"`
}

// setColumnsResponse reports the clamped layout.
type setColumnsResponse struct {
	Layout  layout.Layout `json:"layout"`
	Clamped int           `json:"clamped"`
}

func (s *layoutServer) postColumns(w http.ResponseWriter, r *http.Request) {
	var req setColumnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidColumns, err, "decode columns"))
		return
	}

	gridID := chi.URLParam(r, "gridID")
	m, err := s.loadModel(r.Context(), gridID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	_, clamped, err := m.SetColumns(req.Columns)
	if err != nil {
		s.respondError(w, err)
		return
	}

	l := layout.FromModel(m)
	if err := s.store.SaveLayout(r.Context(), gridID, l); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, setColumnsResponse{Layout: l, Clamped: clamped})
}

// reflowRequest is the body of POST /reflow. W and H default to the block's
// current size.
type reflowRequest struct {
	BlockID string `json:"block_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w"`
	H       int    `json:"h"`
}

// reflowResponse reports the resolved layout and which blocks moved.
type reflowResponse struct {
	Layout    layout.Layout `json:"layout"`
	Displaced []string      `json:"displaced"`
}

func (s *layoutServer) postReflow(w http.ResponseWriter, r *http.Request) {
	var req reflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidRect, err, "decode reflow request"))
		return
	}

	gridID := chi.URLParam(r, "gridID")
	m, err := s.loadModel(r.Context(), gridID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	cur, ok := m.Get(req.BlockID)
	if !ok {
		s.respondError(w, errors.New(errors.ErrCodeUnknownBlock, "unknown block %q", req.BlockID))
		return
	}

	target := grid.Rect{X: req.X, Y: req.Y, W: cur.Rect.W, H: cur.Rect.H}
	if req.W > 0 {
		target.W = cur.Constraints.ClampW(req.W)
	}
	if req.H > 0 {
		target.H = cur.Constraints.ClampH(req.H)
	}

	if err := m.Apply(req.BlockID, target); err != nil {
		s.respondError(w, err)
		return
	}
	displaced, err := s.reflow.Commit(m, req.BlockID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	l := layout.FromModel(m)
	if err := s.store.SaveLayout(r.Context(), gridID, l); err != nil {
		s.respondError(w, err)
		return
	}

	ids := make([]string, len(displaced))
	for i, b := range displaced {
		ids[i] = b.ID
	}
	s.respondJSON(w, http.StatusOK, reflowResponse{Layout: l, Displaced: ids})
}

// =============================================================================
// Helpers
// =============================================================================

// loadModel loads a grid's layout and materializes it as a model. A grid
// that has never been saved starts empty at the policy's column count.
func (s *layoutServer) loadModel(ctx context.Context, gridID string) (*grid.Model, error) {
	l, err := s.store.Load(ctx, gridID)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknownGrid {
			return grid.NewModel(s.policy.Columns)
		}
		return nil, err
	}
	return layout.ToModel(l, s.policy.BlockConstraints())
}

// firstFreeSlot scans rows top to bottom for the first w-by-h placement
// that collides with no existing block. The probe rect belongs to no block
// yet, so the scan checks geometry directly instead of going through
// CanPlace. The row below the lowest block always fits, so ok is false
// only when w exceeds the column count.
func firstFreeSlot(m *grid.Model, w, h int) (grid.Rect, bool) {
	if w > m.Columns() {
		return grid.Rect{}, false
	}
	blocks := m.Blocks()
	maxY := 0
	for _, b := range blocks {
		if b.Rect.Bottom() > maxY {
			maxY = b.Rect.Bottom()
		}
	}
	for y := 0; y <= maxY; y++ {
		for x := 0; x+w <= m.Columns(); x++ {
			r := grid.Rect{X: x, Y: y, W: w, H: h}
			free := true
			for _, b := range blocks {
				if r.Overlaps(b.Rect) {
					free = false
					break
				}
			}
			if free {
				return r, true
			}
		}
	}
	return grid.Rect{X: 0, Y: maxY, W: w, H: h}, true
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response.
func (s *layoutServer) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cli.Logger.Error("encode response", "error", err)
	}
}

// respondError maps domain error codes to HTTP status codes.
func (s *layoutServer) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeUnknownGrid, errors.ErrCodeUnknownBlock:
		status = http.StatusNotFound
	case errors.ErrCodeDuplicateBlock:
		status = http.StatusConflict
	case errors.ErrCodeInvalidRect, errors.ErrCodeInvalidColumns, errors.ErrCodeInvalidLayout,
		errors.ErrCodeInvalidBlockID, errors.ErrCodeInvalidConstraints:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.cli.Logger.Error("request failed", "code", code, "error", err)
	}
	s.respondJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
