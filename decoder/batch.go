package decoder

import (
	"context"

	"github.com/nathanhack/threadpool"
)

// Result is one DecodeBatch outcome.
type Result struct {
	Success bool
	Out     []int
}

// DecodeBatch decodes every vector in inputs concurrently over a
// threadpool-backed worker pool, constructing a fresh Decoder per input via
// newDecoder. This matches the concurrency model in spec.md §5: the shared
// ctrlmat.CtrlMat a caller closes over inside newDecoder is read-only and
// safe to use from every worker, but a decoder's own scratch state is not
// thread-safe for reuse, so no Decoder instance is ever shared across calls.
// threads == 0 lets threadpool pick a default based on the number of CPUs.
func DecodeBatch(ctx context.Context, newDecoder func() Decoder, inputs [][]float64, threads int) []Result {
	results := make([]Result, len(inputs))

	pool := threadpool.NewFixedSize(ctx, threads, len(inputs))
	for idx := range inputs {
		i := idx
		pool.Add(func() {
			success, out := newDecoder().Decode(inputs[i])
			results[i] = Result{Success: success, Out: out}
		})
	}
	pool.Wait()

	return results
}
