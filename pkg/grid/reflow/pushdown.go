package reflow

import "github.com/matzehuels/gridboard/pkg/grid"

// PushDown resolves each overlapping pair by moving the lower-priority
// block downward to the blocker's bottom edge. The moved block always has
// priority; between two non-moved blocks, the second in iteration order
// yields. No block's y ever decreases during resolution.
type PushDown struct{}

// Name returns "push_down".
func (PushDown) Name() string { return StrategyPushDown }

// Resolve repeatedly sweeps all ordered pairs of distinct blocks, pushing
// the target of each overlapping pair down to clear its blocker, until a
// sweep makes no change or iterationCap sweeps have run.
func (PushDown) Resolve(blocks []grid.Block, movedID string, iterationCap int) bool {
	for iter := 0; iter < iterationCap; iter++ {
		changed := false

		for i := range blocks {
			for j := range blocks {
				if i == j {
					continue
				}
				if !blocks[i].Rect.Overlaps(blocks[j].Rect) {
					continue
				}

				// Push the second of the pair unless it is the moved
				// block, which never yields.
				target, blocker := j, i
				if blocks[j].ID == movedID {
					target, blocker = i, j
				}

				newY := blocks[blocker].Rect.Bottom()
				if blocks[target].Rect.Y < newY {
					blocks[target].Rect.Y = newY
					changed = true
				}
			}
		}

		if !changed {
			return true
		}
	}
	return false
}
