package main

/* crawl harvests scene metadata from a STAC API into the Postgres scene
   index used by the NDVI server when postgres_dsn is configured. The
   search interval is walked in monthly windows so that each query stays
   well inside the API's paging limits. */

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/nci/gsky-ndvi/catalog"
	proc "github.com/nci/gsky-ndvi/processor"
	"github.com/nci/gsky-ndvi/utils"
)

func ensure(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be minx,miny,maxx,maxy: %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox: %v", err)
		}
		v[i] = f
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return orb.Bound{}, fmt.Errorf("bbox is empty: %q", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func main() {
	configFile := flag.String("conf", "", "YAML config file.")
	bboxStr := flag.String("bbox", "", "Harvest extent as minx,miny,maxx,maxy in degrees.")
	start := flag.String("start", "2024-01-01", "Start date.")
	end := flag.String("end", "2024-12-31", "End date.")
	cloudCover := flag.Float64("cloud", -1, "Maximum cloud cover to harvest. Negative harvests every scene.")
	months := flag.Int("months", 1, "Months per search window.")
	batch := flag.Int("batch", 500, "Rows per upsert transaction.")
	verbose := flag.Bool("v", false, "Verbose mode.")
	flag.Parse()

	ensure(utils.LoadEnvFiles(".env"))
	conf := &utils.Config{}
	ensure(conf.LoadConfigFile(*configFile))
	if len(conf.Catalog.PostgresDSN) == 0 {
		log.Fatal("postgres_dsn must be configured")
	}

	bbox, err := parseBBox(*bboxStr)
	ensure(err)
	startTime, err := utils.ParseISODate(*start)
	ensure(err)
	endTime, err := utils.ParseISODate(*end)
	ensure(err)
	cloudLimit, err := utils.CloudLimitFlag(*cloudCover)
	ensure(err)

	ctx := context.Background()
	pg, err := catalog.NewPGCatalog(conf.Catalog.PostgresDSN, conf.Catalog.PostgresPoolSize)
	ensure(err)
	defer pg.Close()
	ensure(pg.Migrate(ctx))

	cc := conf.Catalog
	client := catalog.NewOAuth2Client(ctx, cc.OAuth2.ClientID, cc.OAuth2.ClientSecret, cc.OAuth2.TokenURL, cc.OAuth2.Scopes)
	stac := catalog.NewSTACSearcher(cc.STACURL, client)
	stac.Verbose = *verbose

	filter, err := catalog.ParseSceneFilter(cc.SceneFilter)
	ensure(err)

	errChan := make(chan error, 1)
	splitter := proc.NewTimeSplitter(ctx, *months, errChan)
	indexer := proc.NewSceneIndexer(ctx, stac, errChan)
	indexer.In = splitter.Out
	indexer.Filter = filter
	indexer.Verbose = *verbose

	splitter.In <- &proc.SearchRequest{
		Collection:    cc.Collection,
		BBox:          bbox,
		StartTime:     startTime,
		EndTime:       endTime,
		MaxCloudCover: cloudLimit,
	}
	close(splitter.In)

	go splitter.Run()
	go indexer.Run()

	total := 0
	var pending []proc.CatalogItem
	flush := func() {
		if len(pending) == 0 {
			return
		}
		ensure(pg.Upsert(ctx, pending))
		total += len(pending)
		if *verbose {
			log.Printf("stored %d scenes", total)
		}
		pending = pending[:0]
	}
	for item := range indexer.Out {
		pending = append(pending, item)
		if len(pending) >= *batch {
			flush()
		}
	}

	select {
	case err := <-errChan:
		log.Printf("harvest stopped after %d scenes: %v", total+len(pending), err)
		flush()
		os.Exit(1)
	default:
	}
	flush()
	log.Printf("harvested %d scenes (%d filtered out)", total, indexer.NumDropped)
}
