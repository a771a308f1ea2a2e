package sessionsdk

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// JoinAll runs every task concurrently and waits for all of them. A failing
// or panicking task never cancels its siblings: errs[i] holds the outcome of
// tasks[i].
func JoinAll(ctx context.Context, tasks ...func(context.Context) error) []error {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("task %d panicked: %v", i, r)
				}
			}()
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return errs
}
