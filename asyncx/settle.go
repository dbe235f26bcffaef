package asyncx

import "context"

// Settled holds the outcome of one item in a SettleAll call
type Settled[T any, R any] struct {
	Item   T
	Result R
	Err    error
}

// SettleAll runs fn concurrently for every item and waits for all of them.
// Unlike a fail-fast gather, one item's failure never cancels the others;
// every outcome is returned, in input order.
func SettleAll[T any, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) []Settled[T, R] {
	outcomes := make([]Settled[T, R], len(items))
	done := make(chan int, len(items))

	for i, item := range items {
		go func(idx int, it T) {
			result, err := fn(ctx, it)
			outcomes[idx] = Settled[T, R]{Item: it, Result: result, Err: err}
			done <- idx
		}(i, item)
	}

	for range items {
		<-done
	}

	return outcomes
}
