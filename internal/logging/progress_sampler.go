package logging

// ProgressSampler decides when a long-running stage reports progress. It
// emits once every `every` processed items, counted from one.
type ProgressSampler struct {
	every int
}

// NewProgressSampler constructs a sampler that emits on multiples of every.
// Non-positive values fall back to 100.
func NewProgressSampler(every int) *ProgressSampler {
	if every <= 0 {
		every = 100
	}
	return &ProgressSampler{every: every}
}

// ShouldLog reports whether progress should be logged after count items.
func (s *ProgressSampler) ShouldLog(count int) bool {
	if s == nil || count <= 0 {
		return false
	}
	return count%s.every == 0
}

// Every returns the sampling interval.
func (s *ProgressSampler) Every() int {
	if s == nil {
		return 0
	}
	return s.every
}
