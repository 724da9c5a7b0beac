package analysis

import "github.com/zeu5/rl-gyms/core"

// NoOpComparator drops the datasets it is given. It pairs with analyzers whose
// output is a side effect, such as TraceRecorder.
type NoOpComparator struct{}

var (
	_ core.Comparator            = NoOpComparator{}
	_ core.ComparatorConstructor = NoOpComparator{}
)

func NewNoOpComparator() NoOpComparator {
	return NoOpComparator{}
}

func (NoOpComparator) Compare([]string, []core.DataSet) {}

// NewComparator lets the comparator serve as its own constructor in parallel comparisons
func (n NoOpComparator) NewComparator(int) core.Comparator {
	return n
}
