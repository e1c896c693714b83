// Package pagination implements numbered pages: ?page=N over a counted list.
package pagination

import (
	"context"
	"strconv"
)

// Page is one page of T plus what a paginator template needs.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

func (p *Page[T]) Len() int            { return len(p.Items) }
func (p *Page[T]) HasPrevious() bool   { return p.Number > 1 }
func (p *Page[T]) HasNext() bool       { return p.Number < p.NumPages }
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }
func (p *Page[T]) NextNumber() int     { return p.Number + 1 }

// StartIndex is the 1-based position of the first item, 0 for an empty page.
func (p *Page[T]) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64(p.PerPage)*int64(p.Number-1) + 1
}

// PageRange lists every page number, for the paginator links.
func (p *Page[T]) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// NumPages of count items split perPage at a time. An empty list still has
// one (empty) page.
func NumPages(count int64, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// Resolve turns the raw ?page value into a valid page number: anything that is
// not an integer gives the first page, anything out of range the last one.
func Resolve(raw string, count int64, perPage int) int {
	last := NumPages(count, perPage)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > last {
		return last
	}
	return n
}

// Paginate counts, resolves the requested page and fetches its items.
func Paginate[T any](
	ctx context.Context,
	raw string,
	perPage int,
	count func(ctx context.Context) (int64, error),
	fetch func(ctx context.Context, offset, limit int) ([]T, error),
) (*Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	number := Resolve(raw, total, perPage)

	items, err := fetch(ctx, (number-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: NumPages(total, perPage),
		Count:    total,
		PerPage:  perPage,
	}, nil
}
