package processor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// BatchSigner is implemented by signers that can resolve a whole scene
// list at once.
type BatchSigner interface {
	SignAll(ctx context.Context, items []CatalogItem) ([]CatalogItem, error)
}

type TimeSlice struct {
	ItemID   string
	Datetime time.Time
	Sources  []BandSource
}

// RasterStack is a lazy time × band × row × col grid. Pixels are only
// fetched when Block is called.
type RasterStack struct {
	grid   GridSpec
	Bands  []string
	Slices []TimeSlice
	mask   *ClipMask
	reader BandReader
}

func (s *RasterStack) Spec() GridSpec {
	return s.grid
}

// Shape returns the sizes of the time, band, row and col axes.
func (s *RasterStack) Shape() [4]int {
	return [4]int{len(s.Slices), len(s.Bands), s.grid.Height, s.grid.Width}
}

// Block reads window w of band b in time slice t, clipped to the AOI.
func (s *RasterStack) Block(ctx context.Context, t, b int, w Window) ([]float64, error) {
	if t < 0 || t >= len(s.Slices) || b < 0 || b >= len(s.Bands) {
		return nil, fmt.Errorf("stack index out of range: time=%d band=%d", t, b)
	}
	if !s.grid.Contains(w) {
		return nil, fmt.Errorf("window %v outside stack grid %dx%d", w, s.grid.Width, s.grid.Height)
	}

	src := s.Slices[t].Sources[b]
	data, err := s.reader.ReadBand(ctx, src, s.grid, w)
	if err != nil {
		return nil, &RetrievalError{ItemID: src.ItemID, Band: src.Band, Window: w, Err: err}
	}
	if len(data) != w.Size() {
		return nil, &RetrievalError{ItemID: src.ItemID, Band: src.Band, Window: w,
			Err: fmt.Errorf("expected %d values, got %d", w.Size(), len(data))}
	}

	if s.mask != nil {
		s.mask.Apply(w, data)
	}
	return data, nil
}

type StackAssembler struct {
	Signer     AssetSigner
	Reader     BandReader
	Bands      BandNames
	EPSG       int
	Resolution float64
	Verbose    bool
}

func NewStackAssembler(signer AssetSigner, reader BandReader) *StackAssembler {
	return &StackAssembler{
		Signer:     signer,
		Reader:     reader,
		Bands:      BandNames{NIR: DefaultNIRBand, Red: DefaultRedBand},
		EPSG:       DefaultEPSG,
		Resolution: DefaultResolution,
	}
}

// Assemble builds the lazy stack for items over aoi. Every item becomes one
// time slice on a common grid covering the projected AOI bounds.
func (a *StackAssembler) Assemble(ctx context.Context, items []CatalogItem, aoi orb.Geometry) (*RasterStack, error) {
	if len(items) == 0 {
		return nil, ErrEmptyStack
	}
	if err := ValidateAOI(aoi); err != nil {
		return nil, err
	}

	bands := a.Bands.withDefaults()
	bandOrder := []string{bands.NIR, bands.Red}

	for _, item := range items {
		if missing := missingAssets(item, bandOrder); len(missing) > 0 {
			return nil, &AssetResolutionError{ItemID: item.ID, Missing: missing}
		}
	}

	signed, err := a.sign(ctx, items)
	if err != nil {
		return nil, err
	}

	epsg := a.EPSG
	if epsg == 0 {
		epsg = DefaultEPSG
	}
	res := a.Resolution
	if res <= 0 {
		res = DefaultResolution
	}

	projected, err := ProjectGeometry(aoi, epsg)
	if err != nil {
		return nil, invalidGeometry("%v", err)
	}
	grid := GridFromBound(projected.Bound(), epsg, res)

	slices := make([]TimeSlice, 0, len(signed))
	for _, item := range signed {
		ts := TimeSlice{ItemID: item.ID, Datetime: item.Datetime}
		for _, band := range bandOrder {
			ts.Sources = append(ts.Sources, BandSource{
				ItemID:   item.ID,
				Band:     band,
				Href:     item.Assets[band].Href,
				Datetime: item.Datetime,
			})
		}
		slices = append(slices, ts)
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Datetime.Before(slices[j].Datetime)
	})

	if a.Verbose {
		log.Printf("stack: %d slices, grid %dx%d at %vm, origin (%v, %v) EPSG:%d",
			len(slices), grid.Width, grid.Height, grid.Resolution, grid.OriginX, grid.OriginY, grid.EPSG)
	}

	return &RasterStack{
		grid:   grid,
		Bands:  bandOrder,
		Slices: slices,
		mask:   NewClipMask(grid, projected),
		reader: a.Reader,
	}, nil
}

func (a *StackAssembler) sign(ctx context.Context, items []CatalogItem) ([]CatalogItem, error) {
	if a.Signer == nil {
		return items, nil
	}

	if bs, ok := a.Signer.(BatchSigner); ok {
		signed, err := bs.SignAll(ctx, items)
		if err != nil {
			return nil, err
		}
		return signed, a.checkSigned(signed)
	}

	signed := make([]CatalogItem, len(items))
	for i, item := range items {
		s, err := a.Signer.Sign(ctx, item)
		if err != nil {
			return nil, &AssetResolutionError{ItemID: item.ID, Err: err}
		}
		signed[i] = s
	}
	return signed, a.checkSigned(signed)
}

func (a *StackAssembler) checkSigned(items []CatalogItem) error {
	bands := a.Bands.withDefaults()
	for _, item := range items {
		if missing := missingAssets(item, []string{bands.NIR, bands.Red}); len(missing) > 0 {
			return &AssetResolutionError{ItemID: item.ID, Missing: missing}
		}
	}
	return nil
}

func missingAssets(item CatalogItem, bands []string) []string {
	var missing []string
	for _, band := range bands {
		if asset, found := item.Assets[band]; !found || asset.Href == "" {
			missing = append(missing, band)
		}
	}
	return missing
}
