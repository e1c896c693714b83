package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumPages(t *testing.T) {
	tests := []struct {
		count   int64
		perPage int
		want    int
	}{
		{count: 0, perPage: 10, want: 1},
		{count: 1, perPage: 10, want: 1},
		{count: 10, perPage: 10, want: 1},
		{count: 11, perPage: 10, want: 2},
		{count: 15, perPage: 10, want: 2},
		{count: 21, perPage: 10, want: 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NumPages(tt.count, tt.perPage), "count=%d", tt.count)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "missing", raw: "", want: 1},
		{name: "not a number", raw: "abc", want: 1},
		{name: "first", raw: "1", want: 1},
		{name: "second", raw: "2", want: 2},
		{name: "past the end", raw: "9", want: 2},
		{name: "zero", raw: "0", want: 2},
		{name: "negative", raw: "-3", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Resolve(tt.raw, 15, 10))
		})
	}
}

func sliceSource(items []int) (func(context.Context) (int64, error), func(context.Context, int, int) ([]int, error)) {
	count := func(context.Context) (int64, error) { return int64(len(items)), nil }
	fetch := func(_ context.Context, offset, limit int) ([]int, error) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		if offset > end {
			offset = end
		}
		return items[offset:end], nil
	}
	return count, fetch
}

func TestPaginate(t *testing.T) {
	items := make([]int, 15)
	for i := range items {
		items[i] = i + 1
	}
	count, fetch := sliceSource(items)

	first, err := Paginate(context.Background(), "", 10, count, fetch)
	require.NoError(t, err)
	require.Equal(t, 10, first.Len())
	require.Equal(t, 1, first.Number)
	require.Equal(t, 2, first.NumPages)
	require.False(t, first.HasPrevious())
	require.True(t, first.HasNext())
	require.True(t, first.HasOtherPages())
	require.Equal(t, []int{1, 2}, first.PageRange())
	require.Equal(t, int64(1), first.StartIndex())

	second, err := Paginate(context.Background(), "2", 10, count, fetch)
	require.NoError(t, err)
	require.Equal(t, []int{11, 12, 13, 14, 15}, second.Items)
	require.True(t, second.HasPrevious())
	require.False(t, second.HasNext())
	require.Equal(t, 1, second.PreviousNumber())
	require.Equal(t, int64(11), second.StartIndex())
}

func TestPaginate_Empty(t *testing.T) {
	count, fetch := sliceSource(nil)
	page, err := Paginate(context.Background(), "3", 10, count, fetch)
	require.NoError(t, err)
	require.Equal(t, 0, page.Len())
	require.Equal(t, 1, page.Number)
	require.Equal(t, 1, page.NumPages)
	require.False(t, page.HasOtherPages())
	require.Equal(t, int64(0), page.StartIndex())
}

func TestPaginate_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate(context.Background(), "1", 10,
		func(context.Context) (int64, error) { return 0, boom },
		func(context.Context, int, int) ([]int, error) { return nil, nil })
	require.ErrorIs(t, err, boom)

	_, err = Paginate(context.Background(), "1", 10,
		func(context.Context) (int64, error) { return 3, nil },
		func(context.Context, int, int) ([]int, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}
