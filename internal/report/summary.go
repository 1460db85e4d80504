// Package report collects per-stage counters and renders them for the CLI.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Counter labels shared by the stages.
const (
	Processed    = "processed"
	Copied       = "copied"
	Converted    = "converted"
	Modified     = "modified"
	Replacements = "replacements"
	Generated    = "generated"
	Skipped      = "skipped"
	Failed       = "failed"
)

// Summary holds the ordered counters of one stage run.
type Summary struct {
	Stage   string
	Elapsed time.Duration
	order   []string
	counts  map[string]int
}

// NewSummary declares the counters a stage reports, in display order.
func NewSummary(stage string, labels ...string) *Summary {
	s := &Summary{Stage: stage, counts: make(map[string]int, len(labels))}
	for _, label := range labels {
		s.declare(label)
	}
	return s
}

func (s *Summary) declare(label string) {
	if _, ok := s.counts[label]; ok {
		return
	}
	s.order = append(s.order, label)
	s.counts[label] = 0
}

// Inc adds one to label.
func (s *Summary) Inc(label string) {
	s.Add(label, 1)
}

// Add adds n to label, declaring it if needed.
func (s *Summary) Add(label string, n int) {
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.declare(label)
	s.counts[label] += n
}

// Count returns the value of label.
func (s *Summary) Count(label string) int {
	if s == nil {
		return 0
	}
	return s.counts[label]
}

// Labels returns the declared counters in display order.
func (s *Summary) Labels() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Finish records the elapsed time since start.
func (s *Summary) Finish(start time.Time) {
	s.Elapsed = time.Since(start)
}

// String renders the counters on one line, e.g. "processed=3 skipped=1".
func (s *Summary) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.order))
	for _, label := range s.order {
		parts = append(parts, fmt.Sprintf("%s=%d", label, s.counts[label]))
	}
	return strings.Join(parts, " ")
}

// Attrs returns the counters as alternating key/value pairs for slog.
func (s *Summary) Attrs() []any {
	if s == nil {
		return nil
	}
	args := make([]any, 0, len(s.order)*2+2)
	for _, label := range s.order {
		args = append(args, label, s.counts[label])
	}
	return append(args, "elapsed", s.Elapsed)
}
