package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCollectPages(t *testing.T) {
	t.Run("Accumulates All Pages In Order", func(t *testing.T) {
		pages := map[string]Page[int]{
			"":  {Items: []int{1, 2}, Next: "p2"},
			"p2": {Items: []int{3}, Next: "p3"},
			"p3": {Items: []int{4, 5}},
		}

		items, err := CollectPages(context.Background(), func(ctx context.Context, cursor string) (Page[int], error) {
			return pages[cursor], nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []int{1, 2, 3, 4, 5}
		if len(items) != len(want) {
			t.Fatalf("expected %d items, got %d", len(want), len(items))
		}
		for i, v := range want {
			if items[i] != v {
				t.Errorf("item %d: expected %d, got %d", i, v, items[i])
			}
		}
	})

	t.Run("Empty First Page", func(t *testing.T) {
		items, err := CollectPages(context.Background(), func(ctx context.Context, cursor string) (Page[string], error) {
			return Page[string]{}, nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected empty accumulation, got %d items", len(items))
		}
	})

	t.Run("Mid Walk Failure Surfaces Partial Accumulation", func(t *testing.T) {
		failure := fmt.Errorf("transport broke")
		calls := 0

		items, err := CollectPages(context.Background(), func(ctx context.Context, cursor string) (Page[int], error) {
			calls++
			if calls == 1 {
				return Page[int]{Items: []int{1, 2}, Next: "p2"}, nil
			}
			return Page[int]{}, failure
		})

		if !errors.Is(err, failure) {
			t.Fatalf("expected walk error, got %v", err)
		}
		if len(items) != 2 {
			t.Errorf("expected partial accumulation of 2 items, got %d", len(items))
		}
		if calls != 2 {
			t.Errorf("expected no retry after failure, got %d calls", calls)
		}
	})
}
