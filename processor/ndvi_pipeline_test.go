package processor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nci/gsky-ndvi/metrics"
)

type fakeSearcher struct {
	items []CatalogItem
	err   error
	calls int
	last  SearchRequest
}

func (s *fakeSearcher) Search(ctx context.Context, req SearchRequest) ([]CatalogItem, error) {
	s.calls++
	s.last = req
	return s.items, s.err
}

type recordingSigner struct {
	signed []string
}

func (s *recordingSigner) Sign(ctx context.Context, item CatalogItem) (CatalogItem, error) {
	s.signed = append(s.signed, item.ID)
	out := item
	out.Assets = map[string]Asset{}
	for k, a := range item.Assets {
		a.Href += "?sig=1"
		out.Assets[k] = a
	}
	return out, nil
}

func testRequest() *NDVIRequest {
	return &NDVIRequest{
		AOI:           squareAOI(36.8, -1.3, 1000),
		StartTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxCloudCover: CloudLimit(10),
	}
}

func TestNDVIPipelineEndToEnd(t *testing.T) {
	req := testRequest()
	fp := footprint(36, -2, 37.5, -0.5)
	t0 := time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC)

	searcher := &fakeSearcher{items: []CatalogItem{
		testItem("S2A_cloudy", fp, cloud(20), t0),
		testItem("S2B_clear", fp, cloud(5), t0.Add(5*24*time.Hour)),
	}}
	signer := &recordingSigner{}
	reader := &constReader{values: map[string]float64{DefaultNIRBand: 200, DefaultRedBand: 100}}
	collector := metrics.NewMetricsCollector(nil)

	dp := InitNDVIPipeline(context.Background(), searcher, signer, reader, NewComputeScheduler(32, 4))
	dp.Metrics = collector
	res, err := dp.Process(req)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Status != StatusOK {
		t.Fatalf("expected status ok, got %s", res.Status)
	}
	if res.ScenesFound != 2 || res.ScenesUsed != 1 || res.SceneIDs[0] != "S2B_clear" {
		t.Errorf("expected only S2B_clear selected, got %v (found %d)", res.SceneIDs, res.ScenesFound)
	}
	if len(signer.signed) != 1 || signer.signed[0] != "S2B_clear" {
		t.Errorf("expected only the selected scene to be signed, got %v", signer.signed)
	}
	if searcher.last.MaxCloudCover == nil || *searcher.last.MaxCloudCover != 10 || searcher.last.Collection != "sentinel-2-l2a" {
		t.Errorf("unexpected search request %+v", searcher.last)
	}

	s := res.Statistics
	if s == nil {
		t.Fatalf("expected statistics")
	}
	if !almostEqual(s.Mean, 1.0/3) || !almostEqual(s.Min, 1.0/3) || !almostEqual(s.Max, 1.0/3) {
		t.Errorf("expected mean=min=max=1/3, got %+v", s)
	}

	// The AOI is a projected 1km square, i.e. 100x100 cells at 10m.
	if s.ValidCount < 99*99 || s.ValidCount > 101*101 {
		t.Errorf("expected about 10000 valid cells, got %d", s.ValidCount)
	}
	for i, v := range res.Composite.Data {
		if !math.IsNaN(v) && !almostEqual(v, 1.0/3) {
			t.Fatalf("composite cell %d: expected 1/3 or NaN, got %v", i, v)
		}
	}

	cs, ps := res.Composite.Spec(), res.Preview.Spec()
	if ps.Width != (cs.Width+3)/4 || ps.Height != (cs.Height+3)/4 {
		t.Errorf("preview %dx%d does not match composite %dx%d", ps.Width, ps.Height, cs.Width, cs.Height)
	}
	for i, v := range res.Preview.Data {
		if !math.IsNaN(v) && !almostEqual(v, 1.0/3) {
			t.Errorf("preview cell %d: expected 1/3, got %v", i, v)
		}
	}

	// Two bands per chunk; the preview must not trigger any extra reads.
	chunks := len(SplitWindows(cs, 32))
	if reader.count() != 2*chunks {
		t.Errorf("expected %d band reads, got %d", 2*chunks, reader.count())
	}

	info := collector.Info
	if info.Catalog.NumFound != 2 || info.Catalog.NumSelected != 1 || info.Compute.NumSlices != 1 {
		t.Errorf("unexpected metrics %+v %+v", info.Catalog, info.Compute)
	}
	if info.Catalog.Geometry == "" || res.AOI.WKT == "" {
		t.Errorf("expected AOI WKT to be recorded")
	}
}

func TestNDVIPipelineAreaExceeded(t *testing.T) {
	req := testRequest()
	req.AOI = squareAOI(36.8, -1.3, 30000)
	searcher := &fakeSearcher{}
	reader := &constReader{}

	dp := InitNDVIPipeline(context.Background(), searcher, nil, reader, nil)
	_, err := dp.Process(req)

	var exceeded *AreaExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected AreaExceededError, got %v", err)
	}
	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != StageValidate {
		t.Errorf("expected validate stage error, got %v", err)
	}
	if searcher.calls != 0 || reader.count() != 0 {
		t.Errorf("catalog or retrieval invoked after area check failed")
	}
}

func TestNDVIPipelineNoScenes(t *testing.T) {
	dp := InitNDVIPipeline(context.Background(), &fakeSearcher{}, nil, &constReader{}, nil)
	res, err := dp.Process(testRequest())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Status != StatusNoScenes || res.Statistics != nil {
		t.Errorf("expected no_scenes without statistics, got %+v", res)
	}
}

func TestNDVIPipelineCloudLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *float64
	}{
		{"cloud free only", CloudLimit(0)},
		{"no limit", nil},
	}
	for _, tc := range tests {
		searcher := &fakeSearcher{}
		req := testRequest()
		req.MaxCloudCover = tc.limit
		dp := InitNDVIPipeline(context.Background(), searcher, nil, &constReader{}, nil)
		if _, err := dp.Process(req); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		got := searcher.last.MaxCloudCover
		if (got == nil) != (tc.limit == nil) || (got != nil && *got != *tc.limit) {
			t.Errorf("%s: expected limit %v to reach the searcher, got %v", tc.name, tc.limit, got)
		}
	}
}

func TestNDVIPipelineNoValidData(t *testing.T) {
	fp := footprint(36, -2, 37.5, -0.5)
	searcher := &fakeSearcher{items: []CatalogItem{testItem("zero", fp, cloud(1), time.Now())}}
	reader := &constReader{values: map[string]float64{DefaultNIRBand: 0, DefaultRedBand: 0}}

	dp := InitNDVIPipeline(context.Background(), searcher, nil, reader, nil)
	res, err := dp.Process(testRequest())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Status != StatusNoValidData || res.Statistics != nil || res.Preview != nil {
		t.Errorf("expected no_valid_data, got %+v", res)
	}
}

func TestNDVIPipelineRetrievalFailure(t *testing.T) {
	fp := footprint(36, -2, 37.5, -0.5)
	searcher := &fakeSearcher{items: []CatalogItem{testItem("s1", fp, cloud(1), time.Now())}}
	timeout := errors.New("read timeout")
	reader := &constReader{fail: timeout}

	dp := InitNDVIPipeline(context.Background(), searcher, nil, reader, nil)
	res, err := dp.Process(testRequest())
	if res != nil {
		t.Errorf("expected no result on retrieval failure")
	}

	var retrieval *RetrievalError
	if !errors.As(err, &retrieval) || !errors.Is(err, timeout) {
		t.Fatalf("expected RetrievalError wrapping the reader error, got %v", err)
	}
	if retrieval.ItemID != "s1" {
		t.Errorf("unexpected item in retrieval error: %s", retrieval.ItemID)
	}
}

func TestNDVIPipelineSearchError(t *testing.T) {
	failure := errors.New("catalogue unavailable")
	dp := InitNDVIPipeline(context.Background(), &fakeSearcher{err: failure}, nil, &constReader{}, nil)
	_, err := dp.Process(testRequest())

	var stage *StageError
	if !errors.As(err, &stage) || stage.Stage != StageSearch || !errors.Is(err, failure) {
		t.Errorf("expected search stage error, got %v", err)
	}
}

func TestCompositeIdempotent(t *testing.T) {
	ctx := context.Background()
	fp := footprint(36, -2, 37.5, -0.5)
	items := []CatalogItem{
		testItem("a", fp, cloud(1), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		testItem("b", footprint(36, -2, 37.6, -0.5), cloud(1), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	reader := &constReader{values: map[string]float64{DefaultNIRBand: 0.31, DefaultRedBand: 0.07}}

	stack, err := NewStackAssembler(nil, reader).Assemble(ctx, items, squareAOI(36.8, -1.3, 2000))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	composite := MaxComposite(ComputeNDVI(stack))

	sched := NewComputeScheduler(64, 8)
	first, err := sched.Materialize(ctx, composite, "first")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second, err := sched.Materialize(ctx, composite, "second")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for i := range first.Data {
		if math.Float64bits(first.Data[i]) != math.Float64bits(second.Data[i]) {
			t.Fatalf("cell %d differs between materializations", i)
		}
	}
}
