// Package selector picks priced, ranked candidates under a budget.
//
// The walk is greedy and favours admitting more items over maximizing the rank
// sum: a higher ranked candidate that no longer fits is skipped and the scan
// continues with the rest of the list.
package selector

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// RecommendationCap is the cap used for product recommendations.
const RecommendationCap = 8

// Candidate is one priced, ranked item. Item carries the caller's payload.
type Candidate[T any] struct {
	ID    string
	Price decimal.Decimal
	Rank  float64
	Item  T
}

// Result holds the admitted candidates in admission order.
type Result[T any] struct {
	Selected  []Candidate[T]
	TotalCost decimal.Decimal
}

// IDs returns the ids of the admitted candidates.
func (r Result[T]) IDs() []string {
	ids := make([]string, len(r.Selected))
	for i, c := range r.Selected {
		ids[i] = c.ID
	}
	return ids
}

// Items returns the payloads of the admitted candidates.
func (r Result[T]) Items() []T {
	items := make([]T, len(r.Selected))
	for i, c := range r.Selected {
		items[i] = c.Item
	}
	return items
}

type Options struct {
	MaxCount int // 0 means unbounded
}

type Option func(*Options)

// WithMaxCount caps the number of admitted candidates.
func WithMaxCount(n int) Option {
	return func(o *Options) {
		o.MaxCount = n
	}
}

// Select sorts by rank descending, then price ascending, and admits every
// candidate that still fits in the remaining budget. The input slice is not
// modified. Candidates with a negative price or a duplicate id are ignored.
func Select[T any](candidates []Candidate[T], budget decimal.Decimal, opts ...Option) Result[T] {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	result := Result[T]{TotalCost: decimal.Zero}
	if len(candidates) == 0 || !budget.IsPositive() {
		return result
	}

	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate[T]) int {
		if a.Rank != b.Rank {
			return cmp.Compare(b.Rank, a.Rank)
		}
		return a.Price.Cmp(b.Price)
	})

	seen := make(map[string]struct{}, len(sorted))
	for _, c := range sorted {
		if options.MaxCount > 0 && len(result.Selected) >= options.MaxCount {
			break
		}
		if c.Price.IsNegative() {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		next := result.TotalCost.Add(c.Price)
		if next.GreaterThan(budget) {
			continue
		}
		seen[c.ID] = struct{}{}
		result.Selected = append(result.Selected, c)
		result.TotalCost = next
	}

	return result
}
