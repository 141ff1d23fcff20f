package processor

import (
	"context"
	"log"
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/nci/gsky-ndvi/metrics"
)

type NDVIPipeline struct {
	Context       context.Context
	Searcher      Searcher
	Signer        AssetSigner
	Reader        BandReader
	Filter        func(CatalogItem) (bool, error)
	Collection    string
	MaxAreaKm2    float64
	Bands         BandNames
	EPSG          int
	Resolution    float64
	CoarsenFactor int
	SearchMonths  int
	Scheduler     *ComputeScheduler
	Metrics       *metrics.MetricsCollector
	Verbose       bool
}

func InitNDVIPipeline(ctx context.Context, searcher Searcher, signer AssetSigner, reader BandReader, scheduler *ComputeScheduler) *NDVIPipeline {
	if scheduler == nil {
		scheduler = NewComputeScheduler(DefaultChunkSize, 0)
	}
	return &NDVIPipeline{
		Context:       ctx,
		Searcher:      searcher,
		Signer:        signer,
		Reader:        reader,
		Collection:    "sentinel-2-l2a",
		MaxAreaKm2:    DefaultMaxAreaKm2,
		Bands:         BandNames{NIR: DefaultNIRBand, Red: DefaultRedBand},
		EPSG:          DefaultEPSG,
		Resolution:    DefaultResolution,
		CoarsenFactor: DefaultCoarsenFactor,
		Scheduler:     scheduler,
	}
}

// Process runs one request end to end. Finding no scenes or no valid
// pixels is reported through the result status, not as an error.
func (dp *NDVIPipeline) Process(req *NDVIRequest) (*NDVIResult, error) {
	start := time.Now()
	result := &NDVIResult{}

	area, err := ValidateArea(req.AOI, dp.MaxAreaKm2)
	if err != nil {
		return nil, stageError(StageValidate, err)
	}
	b := req.AOI.Bound()
	result.AOI = AOIInfo{
		WKT:  wkt.MarshalString(req.AOI),
		BBox: [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]},
		Area: area,
	}
	dp.Metrics.SetGeometry(req.AOI, area)
	if dp.Verbose {
		log.Printf("AOI loaded: %.2f km², bbox %v", area, result.AOI.BBox)
	}

	items, err := dp.search(req)
	if err != nil {
		return nil, stageError(StageSearch, err)
	}
	result.ScenesFound = len(items)
	if len(items) == 0 {
		result.Status = StatusNoScenes
		result.ComputeMillis = time.Since(start).Milliseconds()
		return result, nil
	}

	best, err := DedupScenes(items)
	if err != nil {
		return nil, stageError(StageDeduplicate, err)
	}
	result.ScenesUsed = len(best)
	for _, item := range best {
		result.SceneIDs = append(result.SceneIDs, item.ID)
	}
	dp.Metrics.Update(func(info *metrics.MetricsInfo) {
		info.Catalog.NumSelected = len(best)
	})
	if dp.Verbose {
		log.Printf("%d best scene(s) selected out of %d", len(best), len(items))
	}

	assembler := &StackAssembler{
		Signer:     dp.Signer,
		Reader:     dp.Reader,
		Bands:      dp.Bands,
		EPSG:       dp.EPSG,
		Resolution: dp.Resolution,
		Verbose:    dp.Verbose,
	}
	stack, err := assembler.Assemble(dp.Context, best, req.AOI)
	if err != nil {
		return nil, stageError(StageAssemble, err)
	}

	computeStart := time.Now()
	composite, err := dp.Scheduler.Materialize(dp.Context, MaxComposite(ComputeNDVI(stack)), "NDVI composite")
	if err != nil {
		return nil, stageError(StageMaterialize, err)
	}

	stats, ok := ComputeStatistics(composite)
	spec := composite.Spec()
	dp.Metrics.Update(func(info *metrics.MetricsInfo) {
		info.Compute.NumSlices = len(stack.Slices)
		info.Compute.Width = spec.Width
		info.Compute.Height = spec.Height
		info.Compute.NumChunks = len(SplitWindows(spec, dp.Scheduler.ChunkSize))
		info.Compute.ValidPixels = stats.ValidCount
	})
	result.Composite = composite
	if !ok {
		dp.observeCompute(computeStart)
		result.Status = StatusNoValidData
		result.ComputeMillis = time.Since(start).Milliseconds()
		return result, nil
	}
	result.Statistics = &stats

	// The preview is derived from the realized composite so bands are
	// never fetched twice.
	factor := dp.CoarsenFactor
	if factor <= 0 {
		factor = DefaultCoarsenFactor
	}
	preview, err := dp.Scheduler.Materialize(dp.Context, Coarsen(composite, factor), "NDVI preview")
	if err != nil {
		return nil, stageError(StageMaterialize, err)
	}
	dp.observeCompute(computeStart)

	result.Preview = preview
	result.Status = StatusOK
	result.ComputeMillis = time.Since(start).Milliseconds()
	return result, nil
}

func (dp *NDVIPipeline) observeCompute(start time.Time) {
	elapsed := time.Since(start)
	dp.Metrics.Update(func(info *metrics.MetricsInfo) {
		info.Compute.Duration = elapsed
	})
}

func (dp *NDVIPipeline) search(req *NDVIRequest) ([]CatalogItem, error) {
	ctx, cancel := context.WithCancel(dp.Context)
	defer cancel()

	errChan := make(chan error, 1)
	splitter := NewTimeSplitter(ctx, dp.SearchMonths, errChan)
	indexer := NewSceneIndexer(ctx, dp.Searcher, errChan)
	indexer.In = splitter.Out
	indexer.Filter = dp.Filter
	indexer.Verbose = dp.Verbose

	searchReq := &SearchRequest{
		Collection:    dp.Collection,
		BBox:          req.AOI.Bound(),
		Intersects:    req.AOI,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		MaxCloudCover: req.MaxCloudCover,
	}
	splitter.In <- searchReq
	close(splitter.In)

	go splitter.Run()
	go indexer.Run()

	var items []CatalogItem
	for item := range indexer.Out {
		items = append(items, item)
	}

	dp.Metrics.Update(func(info *metrics.MetricsInfo) {
		info.Catalog.Duration = indexer.Duration
		info.Catalog.Collection = dp.Collection
		info.Catalog.StartTime = req.StartTime.Format(ISOFormat)
		info.Catalog.EndTime = req.EndTime.Format(ISOFormat)
		info.Catalog.CloudCover = req.MaxCloudCover
		info.Catalog.NumFound = indexer.NumFound
	})

	select {
	case err := <-errChan:
		return nil, err
	default:
	}
	return items, nil
}
