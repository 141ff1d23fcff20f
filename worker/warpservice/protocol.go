package warpservice

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative warp.proto

import (
	"fmt"
	"time"

	proc "github.com/nci/gsky-ndvi/processor"
)

func newGranule(src proc.BandSource, grid proc.GridSpec, w proc.Window) *Granule {
	g := &Granule{
		ItemId:     src.ItemID,
		Band:       src.Band,
		Href:       src.Href,
		Epsg:       int32(grid.EPSG),
		Resolution: grid.Resolution,
		OriginX:    grid.OriginX,
		OriginY:    grid.OriginY,
		Width:      int32(grid.Width),
		Height:     int32(grid.Height),
		Row:        int32(w.Row),
		Col:        int32(w.Col),
		Rows:       int32(w.Rows),
		Cols:       int32(w.Cols),
	}
	if !src.Datetime.IsZero() {
		g.Datetime = src.Datetime.UTC().Format(proc.ISOFormat)
	}
	return g
}

// read unpacks a granule into the arguments of a BandReader call.
func (g *Granule) read() (proc.BandSource, proc.GridSpec, proc.Window, error) {
	src := proc.BandSource{ItemID: g.GetItemId(), Band: g.GetBand(), Href: g.GetHref()}
	grid := proc.GridSpec{
		EPSG:       int(g.GetEpsg()),
		Resolution: g.GetResolution(),
		OriginX:    g.GetOriginX(),
		OriginY:    g.GetOriginY(),
		Width:      int(g.GetWidth()),
		Height:     int(g.GetHeight()),
	}
	w := proc.Window{Row: int(g.GetRow()), Col: int(g.GetCol()), Rows: int(g.GetRows()), Cols: int(g.GetCols())}

	if src.Href == "" {
		return src, grid, w, fmt.Errorf("missing field href")
	}
	if w.Rows <= 0 || w.Cols <= 0 {
		return src, grid, w, fmt.Errorf("empty window %s", w)
	}
	if ts := g.GetDatetime(); ts != "" {
		t, err := time.Parse(proc.ISOFormat, ts)
		if err != nil {
			return src, grid, w, fmt.Errorf("datetime: %v", err)
		}
		src.Datetime = t
	}
	return src, grid, w, nil
}
