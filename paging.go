// ABOUTME: Generic page walker for Sophos list endpoints.
// ABOUTME: Supports page-number paging (tenants) and next-key paging (endpoints).

package main

import (
	"context"
)

// pageFunc fetches the page at cursor and reports the cursor of the next
// page. more is false when the server indicated there is nothing after it.
type pageFunc[C any, T any] func(ctx context.Context, cursor C) (items []T, next C, more bool, err error)

// walkPages concatenates pages starting at first until a page comes back
// empty or the server reports no further page. There is no page cap.
func walkPages[C any, T any](ctx context.Context, first C, fetch pageFunc[C, T]) ([]T, error) {
	var result []T

	cursor := first
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, next, more, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}

		result = append(result, items...)

		if !more {
			break
		}
		cursor = next
	}

	return result, nil
}

type pageInfo struct {
	Total   *int   `json:"total"`
	NextKey string `json:"nextKey"`
}

type listResponse[T any] struct {
	Items []T      `json:"items"`
	Pages pageInfo `json:"pages"`
}

// countedPages adapts a page-number request into a pageFunc. Pages start at
// 1 and a missing total is read as a single page.
func countedPages[T any](get func(ctx context.Context, page int) (listResponse[T], error)) pageFunc[int, T] {
	return func(ctx context.Context, page int) ([]T, int, bool, error) {
		resp, err := get(ctx, page)
		if err != nil {
			return nil, 0, false, err
		}

		total := 1
		if resp.Pages.Total != nil {
			total = *resp.Pages.Total
		}
		return resp.Items, page + 1, page < total, nil
	}
}

// keyedPages adapts a next-key request into a pageFunc. The first call gets
// an empty key.
func keyedPages[T any](get func(ctx context.Context, key string) (listResponse[T], error)) pageFunc[string, T] {
	return func(ctx context.Context, key string) ([]T, string, bool, error) {
		resp, err := get(ctx, key)
		if err != nil {
			return nil, "", false, err
		}
		return resp.Items, resp.Pages.NextKey, resp.Pages.NextKey != "", nil
	}
}
