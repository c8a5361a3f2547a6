package pool

// Indexed pairs a payload with a monotonically increasing sequence index
// assigned by a pipeline's reader stage. Across one pipeline run, indices
// form the sequence 0,1,2,... with no gaps and no duplicates.
type Indexed[T any] struct {
	Index int64
	Data  T
}
