package main

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(items []int, size int) [][]int {
	var pages [][]int
	for len(items) > 0 {
		n := min(size, len(items))
		pages = append(pages, items[:n])
		items = items[n:]
	}
	return pages
}

func intPtr(n int) *int { return &n }

// countedServer serves pages by number and counts requests.
func countedServer(pages [][]int, total *int, calls *int) func(context.Context, int) (listResponse[int], error) {
	return func(_ context.Context, page int) (listResponse[int], error) {
		*calls++
		var resp listResponse[int]
		if page >= 1 && page <= len(pages) {
			resp.Items = pages[page-1]
		}
		resp.Pages.Total = total
		return resp, nil
	}
}

// keyedServer serves pages by key; the key of page i is its index.
func keyedServer(pages [][]int, calls *int) func(context.Context, string) (listResponse[int], error) {
	return func(_ context.Context, key string) (listResponse[int], error) {
		*calls++
		i := 0
		if key != "" {
			i, _ = strconv.Atoi(key)
		}
		var resp listResponse[int]
		if i < len(pages) {
			resp.Items = pages[i]
		}
		if i+1 < len(pages) {
			resp.Pages.NextKey = strconv.Itoa(i + 1)
		}
		return resp, nil
	}
}

func TestWalkPagesCounted(t *testing.T) {
	t.Run("walks every page", func(t *testing.T) {
		calls := 0
		pages := [][]int{{1, 2}, {3, 4}, {5}}
		got, err := walkPages(context.Background(), 1, countedPages(countedServer(pages, intPtr(3), &calls)))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops at an empty page before total", func(t *testing.T) {
		calls := 0
		pages := [][]int{{1, 2}, {}, {5}}
		got, err := walkPages(context.Background(), 1, countedPages(countedServer(pages, intPtr(3), &calls)))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("missing total means one page", func(t *testing.T) {
		calls := 0
		pages := [][]int{{1, 2}, {3}}
		got, err := walkPages(context.Background(), 1, countedPages(countedServer(pages, nil, &calls)))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, got)
		assert.Equal(t, 1, calls)
	})

	t.Run("no items", func(t *testing.T) {
		calls := 0
		got, err := walkPages(context.Background(), 1, countedPages(countedServer(nil, intPtr(0), &calls)))
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 1, calls)
	})
}

func TestWalkPagesKeyed(t *testing.T) {
	t.Run("follows next keys", func(t *testing.T) {
		calls := 0
		pages := [][]int{{1}, {2, 3}, {4}}
		got, err := walkPages(context.Background(), "", keyedPages(keyedServer(pages, &calls)))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("empty page ends the walk despite a key", func(t *testing.T) {
		calls := 0
		fetch := func(_ context.Context, key string) (listResponse[int], error) {
			calls++
			var resp listResponse[int]
			resp.Pages.NextKey = "again"
			if key == "" {
				resp.Items = []int{7}
			}
			return resp, nil
		}
		got, err := walkPages(context.Background(), "", keyedPages(fetch))
		require.NoError(t, err)
		assert.Equal(t, []int{7}, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("first request sends no key", func(t *testing.T) {
		var keys []string
		fetch := func(_ context.Context, key string) (listResponse[int], error) {
			keys = append(keys, key)
			return listResponse[int]{Items: []int{1}}, nil
		}
		_, err := walkPages(context.Background(), "", keyedPages(fetch))
		require.NoError(t, err)
		assert.Equal(t, []string{""}, keys)
	})
}

func TestWalkPagesErrors(t *testing.T) {
	t.Run("fetch error", func(t *testing.T) {
		boom := errors.New("boom")
		fetch := func(_ context.Context, page int) (listResponse[int], error) {
			if page == 2 {
				return listResponse[int]{}, boom
			}
			return listResponse[int]{Items: []int{page}, Pages: pageInfo{Total: intPtr(5)}}, nil
		}
		_, err := walkPages(context.Background(), 1, countedPages(fetch))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := walkPages(ctx, 1, countedPages(countedServer([][]int{{1}}, intPtr(1), &calls)))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}

func TestWalkPages_Concatenation_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	sameItems := func(a, b []int) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	properties.Property("both cursor styles return every item exactly once, in order", prop.ForAll(
		func(items []int, size int) bool {
			pages := chunk(items, size)
			wantCalls := max(1, len(pages))

			countedCalls := 0
			counted, err := walkPages(context.Background(), 1, countedPages(countedServer(pages, intPtr(len(pages)), &countedCalls)))
			if err != nil {
				return false
			}

			keyedCalls := 0
			keyed, err := walkPages(context.Background(), "", keyedPages(keyedServer(pages, &keyedCalls)))
			if err != nil {
				return false
			}

			return sameItems(counted, items) && sameItems(keyed, items) &&
				countedCalls == wantCalls && keyedCalls == wantCalls
		},
		gen.SliceOf(gen.Int()),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
