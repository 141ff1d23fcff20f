package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nci/gsky-ndvi/catalog"
	"github.com/nci/gsky-ndvi/metrics"
	proc "github.com/nci/gsky-ndvi/processor"
	"github.com/nci/gsky-ndvi/utils"
	"github.com/nci/gsky-ndvi/worker/gdalwarp"
	"github.com/nci/gsky-ndvi/worker/warpservice"
)

// Components are the long-lived collaborators shared by every run.
type Components struct {
	Searcher proc.Searcher
	Signer   proc.AssetSigner
	Reader   proc.BandReader
	Filter   func(proc.CatalogItem) (bool, error)
	closers  []func()
}

// Build wires the catalogue, signer and band reader described by config.
func Build(ctx context.Context, config *utils.Config, verbose bool) (*Components, error) {
	c := &Components{}
	cc := config.Catalog

	if len(cc.PostgresDSN) > 0 {
		pg, err := catalog.NewPGCatalog(cc.PostgresDSN, cc.PostgresPoolSize)
		if err != nil {
			return nil, fmt.Errorf("postgres catalog: %v", err)
		}
		c.closers = append(c.closers, func() { pg.Close() })
		c.Searcher = pg
		if verbose {
			log.Printf("using postgres scene catalog")
		}
	} else {
		client := catalog.NewOAuth2Client(ctx, cc.OAuth2.ClientID, cc.OAuth2.ClientSecret, cc.OAuth2.TokenURL, cc.OAuth2.Scopes)
		stac := catalog.NewSTACSearcher(cc.STACURL, client)
		stac.Verbose = verbose
		c.Searcher = stac
		if verbose {
			log.Printf("using STAC catalog %s", cc.STACURL)
		}
	}

	if len(cc.MemcacheServers) > 0 {
		cached := catalog.NewCachedSearcher(c.Searcher, cc.MemcacheServers, time.Duration(cc.CacheExpiry)*time.Second)
		cached.Verbose = verbose
		c.Searcher = cached
	}

	switch cc.Signer {
	case utils.SignerPlanetaryComputer:
		signer := catalog.NewPlanetaryComputerSigner(cc.SignerURL)
		signer.Verbose = verbose
		c.Signer = signer
	default:
		c.Signer = catalog.NoopSigner{}
	}

	filter, err := catalog.ParseSceneFilter(cc.SceneFilter)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("scene filter: %v", err)
	}
	c.Filter = filter

	pc := config.Compute
	if len(pc.WarpWorkers) > 0 {
		reader, err := warpservice.NewClientReader(pc.WarpWorkers, pc.WarpConcLimit, pc.MaxGrpcRecvMsgSize)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, reader.Close)
		c.Reader = reader
	} else {
		reader := gdalwarp.NewWarpReader()
		reader.Verbose = verbose
		reader.MaskZero = pc.MaskZero
		c.Reader = reader
	}

	return c, nil
}

func (c *Components) Close() {
	for _, fn := range c.closers {
		fn()
	}
	c.closers = nil
}

// NewPipeline returns a pipeline for one run.
func (c *Components) NewPipeline(ctx context.Context, config *utils.Config, collector *metrics.MetricsCollector, verbose bool) *proc.NDVIPipeline {
	pc := config.Compute
	scheduler := proc.NewComputeScheduler(pc.ChunkSize, pc.Parallelism)
	scheduler.Verbose = verbose

	dp := proc.InitNDVIPipeline(ctx, c.Searcher, c.Signer, c.Reader, scheduler)
	dp.Filter = c.Filter
	dp.Collection = config.Catalog.Collection
	dp.SearchMonths = config.Catalog.SearchMonths
	dp.MaxAreaKm2 = pc.MaxAreaKm2
	dp.Bands = proc.BandNames{NIR: pc.NIRBand, Red: pc.RedBand}
	dp.EPSG = pc.EPSG
	dp.Resolution = pc.Resolution
	dp.CoarsenFactor = pc.CoarsenFactor
	dp.Metrics = collector
	dp.Verbose = verbose
	return dp
}
