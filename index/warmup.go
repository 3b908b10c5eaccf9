package index

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WarmupAll touches every posting list in parallel, matching the pack's use
// of golang.org/x/sync/errgroup for bounded concurrent fan-out (grounded on
// Adithya-.../internal/searcher/cache's errgroup usage). It returns early if
// ctx is cancelled.
func (idx *Index) WarmupAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < idx.size; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return idx.Warmup(i)
		})
	}
	return g.Wait()
}
