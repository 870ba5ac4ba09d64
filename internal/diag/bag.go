package diag

import "sort"

// Bag is a bounded list of diagnostics.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: max}
}

// Add appends d unless the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	_, ok := b.FirstError()
	return ok
}

// FirstError returns the earliest reported error-severity diagnostic.
func (b *Bag) FirstError() (Diagnostic, bool) {
	for _, d := range b.items {
		if d.Severity.IsFailure() {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// Sort orders by file, start, end, severity (errors first), then code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		switch {
		case di.Primary.File != dj.Primary.File:
			return di.Primary.File < dj.Primary.File
		case di.Primary.Start != dj.Primary.Start:
			return di.Primary.Start < dj.Primary.Start
		case di.Primary.End != dj.Primary.End:
			return di.Primary.End < dj.Primary.End
		case di.Severity != dj.Severity:
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
