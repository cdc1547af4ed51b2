package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// bothOf runs a and b concurrently and waits for both to return. A failure
// in one does not cancel the other; the first error is returned alongside
// whatever both produced.
func bothOf[A, B any](
	ctx context.Context,
	a func(context.Context) (A, error),
	b func(context.Context) (B, error),
) (A, B, error) {
	var (
		g       errgroup.Group
		resultA A
		resultB B
	)

	g.Go(func() (err error) {
		resultA, err = a(ctx)
		return err
	})

	g.Go(func() (err error) {
		resultB, err = b(ctx)
		return err
	})

	return resultA, resultB, g.Wait()
}
