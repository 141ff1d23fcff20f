package processor

import (
	"context"
	"testing"
	"time"
)

func TestTimeSplitter(t *testing.T) {
	ts := NewTimeSplitter(context.Background(), 3, make(chan error, 1))
	ts.In <- &SearchRequest{
		Collection: "sentinel-2-l2a",
		StartTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	close(ts.In)
	go ts.Run()

	var reqs []*SearchRequest
	for r := range ts.Out {
		reqs = append(reqs, r)
	}
	if len(reqs) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(reqs))
	}
	if !reqs[1].StartTime.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected second window start %v", reqs[1].StartTime)
	}
	if !reqs[2].EndTime.Equal(time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last window should end at the request end, got %v", reqs[2].EndTime)
	}
	if reqs[0].Collection != "sentinel-2-l2a" {
		t.Errorf("request fields should be copied")
	}
}

func TestTimeSplitterPassThrough(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, step := range []int{0, 1} {
		ts := NewTimeSplitter(context.Background(), step, make(chan error, 1))
		ts.In <- &SearchRequest{StartTime: day, EndTime: day}
		close(ts.In)
		go ts.Run()

		n := 0
		for range ts.Out {
			n++
		}
		if n != 1 {
			t.Errorf("step %d: expected the request to pass through once, got %d", step, n)
		}
	}
}

type windowSearcher struct {
	calls int
}

func (w *windowSearcher) Search(ctx context.Context, req SearchRequest) ([]CatalogItem, error) {
	w.calls++
	// the boundary scene is returned by both adjacent windows
	return []CatalogItem{
		testItem("boundary", footprint(36, -2, 37, -1), cloud(1), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		testItem(req.StartTime.Format("2006-01"), footprint(36, -2, 37, -1), cloud(1), req.StartTime),
	}, nil
}

func TestSceneIndexerSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	errChan := make(chan error, 1)
	searcher := &windowSearcher{}
	splitter := NewTimeSplitter(ctx, 1, errChan)
	indexer := NewSceneIndexer(ctx, searcher, errChan)
	indexer.In = splitter.Out

	splitter.In <- &SearchRequest{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	close(splitter.In)
	go splitter.Run()
	go indexer.Run()

	var ids []string
	for item := range indexer.Out {
		ids = append(ids, item.ID)
	}
	if searcher.calls != 2 {
		t.Errorf("expected 2 searches, got %d", searcher.calls)
	}
	if len(ids) != 3 || indexer.NumFound != 3 {
		t.Errorf("expected 3 distinct items, got %v (found %d)", ids, indexer.NumFound)
	}
}
