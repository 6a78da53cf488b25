package services

import "context"

// Page is a single page of a paginated catalog response.
//
// Next is the continuation cursor for the following page; empty means the
// walk is exhausted.
type Page[T any] struct {
	Items []T
	Next  string
}

// PageFunc fetches one page for the given cursor. The first call receives
// an empty cursor.
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// CollectPages walks a paginated retrieval until exhausted, accumulating
// items in first-seen order.
//
// An empty first page yields an empty (nil) slice and no error. A mid-walk
// failure aborts the walk and returns the partial accumulation alongside
// the error; no retry is attempted.
func CollectPages[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var items []T
	cursor := ""

	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return items, err
		}

		items = append(items, page.Items...)

		if page.Next == "" {
			return items, nil
		}
		cursor = page.Next
	}
}
