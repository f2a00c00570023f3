package codegen

import "fmt"

// LabelCounter allocates unique labels keyed by textual prefix: the first
// request for a prefix returns "<prefix>_0", subsequent requests "_1",
// "_2", etc. Counters are per-program, never reset between subroutines, so
// labels stay globally unique within one GENERATE run.
type LabelCounter struct {
	counts map[string]int
}

// NewLabelCounter creates an empty counter set.
func NewLabelCounter() *LabelCounter {
	return &LabelCounter{counts: make(map[string]int)}
}

// Next returns the next unique label for prefix.
func (l *LabelCounter) Next(prefix string) string {
	n := l.counts[prefix]
	l.counts[prefix] = n + 1
	return fmt.Sprintf("%s_%d", prefix, n)
}
