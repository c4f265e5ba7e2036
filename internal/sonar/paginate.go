package sonar

import (
	"context"
	"iter"
)

const (
	// DefaultPageSize is the page size requested from every search endpoint.
	DefaultPageSize = 100

	// MaxPages bounds every aggregation even if the server misreports its total.
	MaxPages = 100
)

// StopRule selects how the aggregator decides that the total has been reached.
type StopRule int

const (
	// StopOnItemCount stops once the accumulated items cover the reported total.
	// Use it when every fetched record is kept.
	StopOnItemCount StopRule = iota

	// StopOnPageArithmetic stops once page*pageSize covers the reported total.
	// Use it when records are filtered out or merged after the fetch, so the
	// accumulated count no longer matches what the server returned.
	StopOnPageArithmetic
)

// Page is one fetched page of a resource.
type Page[T any] struct {
	Number int // 1-based, set by the page sequence
	Items  []T // records kept from this page
	Total  int // total reported by the server
	Size   int // records the server returned for this page, before filtering
}

// NewPage builds a page whose items were all kept.
func NewPage[T any](items []T, total int) Page[T] {
	return Page[T]{Items: items, Total: total, Size: len(items)}
}

// FetchFunc fetches a single page.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) (Page[T], error)

// MergeFunc folds the items of a new page into the accumulated items.
type MergeFunc[T any] func(acc, items []T) []T

// Pager describes how to aggregate one resource.
type Pager[T any] struct {
	Fetch    FetchFunc[T]
	Rule     StopRule
	Limit    int // 0 means no limit
	PageSize int // 0 means DefaultPageSize
	Merge    MergeFunc[T]
}

func (p Pager[T]) size() int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return DefaultPageSize
}

// Pages returns the lazy sequence of page fetches. It never yields more than
// MaxPages pages and ends after the first error. Ranging over it again
// starts from page 1.
func (p Pager[T]) Pages(ctx context.Context) iter.Seq2[Page[T], error] {
	return func(yield func(Page[T], error) bool) {
		size := p.size()
		for number := 1; number <= MaxPages; number++ {
			pg, err := p.Fetch(ctx, number, size)
			pg.Number = number
			if !yield(pg, err) || err != nil {
				return
			}
		}
	}
}

// foldState is the accumulator threaded through the page sequence.
type foldState[T any] struct {
	items []T
	done  bool
}

// accumulate folds one page into the state and decides whether to stop.
func (p Pager[T]) accumulate(st foldState[T], pg Page[T]) foldState[T] {
	var items []T
	if p.Merge != nil {
		items = p.Merge(st.items, pg.Items)
	} else {
		items = append(st.items, pg.Items...)
	}

	// The limit goes first so no extra page is requested once it is met.
	if p.Limit > 0 && len(items) >= p.Limit {
		return foldState[T]{items: items[:p.Limit], done: true}
	}

	size := p.size()
	done := pg.Size < size || pg.Number >= MaxPages
	switch p.Rule {
	case StopOnPageArithmetic:
		done = done || pg.Number*size >= pg.Total
	default:
		done = done || len(items) >= pg.Total
	}
	return foldState[T]{items: items, done: done}
}

// Collect runs the aggregation and returns every item, or the first error.
// Partial results are never returned alongside an error.
func Collect[T any](ctx context.Context, p Pager[T]) ([]T, error) {
	var st foldState[T]
	for pg, err := range p.Pages(ctx) {
		if err != nil {
			return nil, err
		}
		st = p.accumulate(st, pg)
		if st.done {
			break
		}
	}
	if st.items == nil {
		return []T{}, nil
	}
	return st.items, nil
}
