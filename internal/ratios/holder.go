package ratios

import (
	"sync/atomic"
	"time"
)

// Loaded is a table together with where and when it was loaded.
type Loaded struct {
	Table    *Table
	Source   string
	LoadedAt time.Time
}

// Holder shares one table between concurrent readers. Swap replaces it wholesale;
// readers holding the previous table keep a consistent view.
type Holder struct {
	current atomic.Pointer[Loaded]
}

// NewHolder returns a holder seeded with t.
func NewHolder(t *Table, source string) *Holder {
	h := &Holder{}
	h.Swap(t, source)
	return h
}

// Table returns the current table, or nil if none has been loaded.
func (h *Holder) Table() *Table {
	if l := h.current.Load(); l != nil {
		return l.Table
	}
	return nil
}

// Current returns the current table and its provenance.
func (h *Holder) Current() Loaded {
	if l := h.current.Load(); l != nil {
		return *l
	}
	return Loaded{}
}

// Swap installs t and returns the table it replaced.
func (h *Holder) Swap(t *Table, source string) *Table {
	prev := h.current.Swap(&Loaded{Table: t, Source: source, LoadedAt: time.Now()})
	if prev == nil {
		return nil
	}
	return prev.Table
}
