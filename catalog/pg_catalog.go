package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/paulmach/orb/encoding/wkb"

	proc "github.com/nci/gsky-ndvi/processor"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS scenes (
	id            TEXT PRIMARY KEY,
	collection    TEXT NOT NULL,
	platform      TEXT NOT NULL DEFAULT '',
	acquired      TIMESTAMPTZ NOT NULL,
	cloud_cover   DOUBLE PRECISION,
	footprint     BYTEA NOT NULL,
	min_lon       DOUBLE PRECISION NOT NULL,
	min_lat       DOUBLE PRECISION NOT NULL,
	max_lon       DOUBLE PRECISION NOT NULL,
	max_lat       DOUBLE PRECISION NOT NULL,
	assets        JSONB NOT NULL,
	properties    JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS scenes_collection_acquired_idx ON scenes (collection, acquired);
`

const pgSearch = `
SELECT id, collection, platform, acquired, cloud_cover, footprint, min_lon, min_lat, max_lon, max_lat, assets, properties
FROM scenes
WHERE collection = $1
  AND acquired >= $2 AND acquired <= $3
  AND ($4::double precision IS NULL OR cloud_cover < $4)
  AND max_lon >= $5 AND min_lon <= $6
  AND max_lat >= $7 AND min_lat <= $8
ORDER BY acquired, id
`

const pgUpsert = `
INSERT INTO scenes (id, collection, platform, acquired, cloud_cover, footprint, min_lon, min_lat, max_lon, max_lat, assets, properties)
VALUES (:id, :collection, :platform, :acquired, :cloud_cover, :footprint, :min_lon, :min_lat, :max_lon, :max_lat, :assets, :properties)
ON CONFLICT (id) DO UPDATE SET
	collection = EXCLUDED.collection,
	platform = EXCLUDED.platform,
	acquired = EXCLUDED.acquired,
	cloud_cover = EXCLUDED.cloud_cover,
	footprint = EXCLUDED.footprint,
	min_lon = EXCLUDED.min_lon,
	min_lat = EXCLUDED.min_lat,
	max_lon = EXCLUDED.max_lon,
	max_lat = EXCLUDED.max_lat,
	assets = EXCLUDED.assets,
	properties = EXCLUDED.properties
`

type sceneRow struct {
	ID         string          `db:"id"`
	Collection string          `db:"collection"`
	Platform   string          `db:"platform"`
	Acquired   time.Time       `db:"acquired"`
	CloudCover sql.NullFloat64 `db:"cloud_cover"`
	Footprint  []byte          `db:"footprint"`
	MinLon     float64         `db:"min_lon"`
	MinLat     float64         `db:"min_lat"`
	MaxLon     float64         `db:"max_lon"`
	MaxLat     float64         `db:"max_lat"`
	Assets     []byte          `db:"assets"`
	Properties []byte          `db:"properties"`
}

// PGCatalog is a local scene index in Postgres. It serves the same search
// contract as the STAC API so the pipeline can run against a harvested
// copy of the catalogue.
type PGCatalog struct {
	db *sqlx.DB
}

func NewPGCatalog(dsn string, poolSize int) (*PGCatalog, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		db.SetMaxOpenConns(poolSize)
		db.SetMaxIdleConns(poolSize)
	}
	return &PGCatalog{db: db}, nil
}

func (c *PGCatalog) Close() error {
	return c.db.Close()
}

func (c *PGCatalog) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, pgSchema)
	return err
}

func (c *PGCatalog) Search(ctx context.Context, req proc.SearchRequest) ([]proc.CatalogItem, error) {
	var rows []sceneRow
	err := c.db.SelectContext(ctx, &rows, pgSearch,
		req.Collection, req.StartTime, req.EndTime, req.MaxCloudCover,
		req.BBox.Min[0], req.BBox.Max[0], req.BBox.Min[1], req.BBox.Max[1])
	if err != nil {
		return nil, fmt.Errorf("scene query failed: %v", err)
	}

	items := make([]proc.CatalogItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Upsert stores items, replacing existing rows with the same ID.
func (c *PGCatalog) Upsert(ctx context.Context, items []proc.CatalogItem) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		row, err := newSceneRow(item)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, pgUpsert, row); err != nil {
			return fmt.Errorf("upsert %s: %v", item.ID, err)
		}
	}
	return tx.Commit()
}

func newSceneRow(item proc.CatalogItem) (*sceneRow, error) {
	if item.Footprint == nil {
		return nil, fmt.Errorf("item %s has no footprint", item.ID)
	}
	footprint, err := wkb.Marshal(item.Footprint, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("item %s footprint: %v", item.ID, err)
	}
	assets, err := json.Marshal(item.Assets)
	if err != nil {
		return nil, err
	}
	props := item.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	properties, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}

	b := item.Footprint.Bound()
	row := &sceneRow{
		ID:         item.ID,
		Collection: item.Collection,
		Platform:   item.Platform,
		Acquired:   item.Datetime,
		Footprint:  footprint,
		MinLon:     b.Min[0],
		MinLat:     b.Min[1],
		MaxLon:     b.Max[0],
		MaxLat:     b.Max[1],
		Assets:     assets,
		Properties: properties,
	}
	if item.CloudCover != nil {
		row.CloudCover = sql.NullFloat64{Float64: *item.CloudCover, Valid: true}
	}
	return row, nil
}

func (r *sceneRow) toItem() (proc.CatalogItem, error) {
	footprint, err := wkb.Unmarshal(r.Footprint)
	if err != nil {
		return proc.CatalogItem{}, fmt.Errorf("item %s footprint: %v", r.ID, err)
	}

	item := proc.CatalogItem{
		ID:         r.ID,
		Collection: r.Collection,
		Platform:   r.Platform,
		Datetime:   r.Acquired,
		Footprint:  footprint,
	}
	if r.CloudCover.Valid {
		cc := r.CloudCover.Float64
		item.CloudCover = &cc
	}
	if err := json.Unmarshal(r.Assets, &item.Assets); err != nil {
		return item, fmt.Errorf("item %s assets: %v", r.ID, err)
	}
	if len(r.Properties) > 0 {
		if err := json.Unmarshal(r.Properties, &item.Properties); err != nil {
			return item, fmt.Errorf("item %s properties: %v", r.ID, err)
		}
	}
	return item, nil
}
