package resilience

// Budget counts session restarts consumed against a configured ceiling.
// One Budget belongs to exactly one session; the session controller
// consumes units, the run driver checks for exhaustion before asking for
// another restart. Not safe for concurrent use; a parallel run gives
// each session its own Budget.
type Budget struct {
	max  int
	used int
}

// NewBudget creates a budget allowing max restarts.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Consume records one restart and returns the total consumed so far.
func (b *Budget) Consume() int {
	b.used++
	return b.used
}

// Exhausted reports whether no restarts remain.
func (b *Budget) Exhausted() bool {
	return b.used >= b.max
}

// Used returns the number of restarts consumed.
func (b *Budget) Used() int {
	return b.used
}

// Max returns the restart ceiling.
func (b *Budget) Max() int {
	return b.max
}
