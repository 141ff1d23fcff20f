package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/paulmach/orb/geojson"

	proc "github.com/nci/gsky-ndvi/processor"
)

const (
	PlanetaryComputerSTAC = "https://planetarycomputer.microsoft.com/api/stac/v1"
	defaultPageSize       = 100
	defaultMaxPages       = 50
)

// STACSearcher queries a STAC API item search endpoint and follows its
// "next" links until the result set is exhausted.
type STACSearcher struct {
	client   *resty.Client
	BaseURL  string
	PageSize int
	MaxPages int
	Verbose  bool
}

// NewSTACSearcher creates a searcher for baseURL. A nil httpClient uses a
// plain client; pass an oauth2 client for authenticated catalogues.
func NewSTACSearcher(baseURL string, httpClient *http.Client) *STACSearcher {
	var client *resty.Client
	if httpClient != nil {
		client = resty.NewWithClient(httpClient)
	} else {
		client = resty.New()
	}
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetHeader("Accept", "application/geo+json")

	return &STACSearcher{
		client:   client,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		PageSize: defaultPageSize,
		MaxPages: defaultMaxPages,
	}
}

type stacLink struct {
	Rel    string                 `json:"rel"`
	Href   string                 `json:"href"`
	Method string                 `json:"method,omitempty"`
	Body   map[string]interface{} `json:"body,omitempty"`
	Merge  bool                   `json:"merge,omitempty"`
}

type stacFeature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Collection string                 `json:"collection"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	Assets     map[string]proc.Asset  `json:"assets"`
}

type stacItemCollection struct {
	Type     string        `json:"type"`
	Features []stacFeature `json:"features"`
	Links    []stacLink    `json:"links"`
}

func (s *STACSearcher) searchBody(req proc.SearchRequest) map[string]interface{} {
	body := map[string]interface{}{
		"collections": []string{req.Collection},
		"bbox":        []float64{req.BBox.Min[0], req.BBox.Min[1], req.BBox.Max[0], req.BBox.Max[1]},
		"datetime":    req.DateRange(),
		"limit":       s.PageSize,
	}
	if req.MaxCloudCover != nil {
		body["query"] = map[string]interface{}{
			"eo:cloud_cover": map[string]interface{}{"lt": *req.MaxCloudCover},
		}
	}
	return body
}

func (s *STACSearcher) Search(ctx context.Context, req proc.SearchRequest) ([]proc.CatalogItem, error) {
	method := http.MethodPost
	url := s.BaseURL + "/search"
	body := s.searchBody(req)

	var items []proc.CatalogItem
	for page := 0; ; page++ {
		if s.MaxPages > 0 && page >= s.MaxPages {
			log.Printf("STAC search stopped after %d pages", page)
			break
		}

		var fc stacItemCollection
		r := s.client.R().SetContext(ctx).SetResult(&fc)
		var resp *resty.Response
		var err error
		if method == http.MethodGet {
			resp, err = r.Get(url)
		} else {
			resp, err = r.SetBody(body).Post(url)
		}
		if err != nil {
			return nil, fmt.Errorf("STAC search request to %s failed: %w", url, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("STAC search returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
		}

		for _, f := range fc.Features {
			item, err := toCatalogItem(f)
			if err != nil {
				return nil, err
			}
			if item.Collection == "" {
				item.Collection = req.Collection
			}
			items = append(items, item)
		}
		if s.Verbose {
			log.Printf("STAC search page %d: %d items", page, len(fc.Features))
		}

		next := nextLink(fc.Links)
		if next == nil || len(fc.Features) == 0 {
			break
		}
		url = next.Href
		if strings.EqualFold(next.Method, http.MethodPost) {
			method = http.MethodPost
			if next.Merge {
				for k, v := range next.Body {
					body[k] = v
				}
			} else if next.Body != nil {
				body = next.Body
			}
		} else {
			method = http.MethodGet
		}
	}
	return items, nil
}

func nextLink(links []stacLink) *stacLink {
	for i := range links {
		if links[i].Rel == "next" && links[i].Href != "" {
			return &links[i]
		}
	}
	return nil
}

func toCatalogItem(f stacFeature) (proc.CatalogItem, error) {
	item := proc.CatalogItem{
		ID:         f.ID,
		Collection: f.Collection,
		Assets:     f.Assets,
		Properties: f.Properties,
	}
	if f.Geometry != nil {
		item.Footprint = f.Geometry.Geometry()
	}

	if dt, ok := f.Properties["datetime"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, dt)
		if err != nil {
			return item, fmt.Errorf("item %s: invalid datetime %q: %v", f.ID, dt, err)
		}
		item.Datetime = t
	}
	if cc, ok := f.Properties["eo:cloud_cover"].(float64); ok {
		item.CloudCover = &cc
	}
	if platform, ok := f.Properties["platform"].(string); ok {
		item.Platform = platform
	}
	return item, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// encodeItemCollection renders items as a STAC ItemCollection.
func encodeItemCollection(items []proc.CatalogItem) ([]byte, error) {
	fc := stacItemCollection{Type: "FeatureCollection", Features: make([]stacFeature, 0, len(items))}
	for _, item := range items {
		props := map[string]interface{}{}
		for k, v := range item.Properties {
			props[k] = v
		}
		props["datetime"] = item.Datetime.UTC().Format(time.RFC3339Nano)
		if item.CloudCover != nil {
			props["eo:cloud_cover"] = *item.CloudCover
		} else {
			delete(props, "eo:cloud_cover")
		}
		if item.Platform != "" {
			props["platform"] = item.Platform
		}

		f := stacFeature{
			Type:       "Feature",
			ID:         item.ID,
			Collection: item.Collection,
			Properties: props,
			Assets:     item.Assets,
		}
		if item.Footprint != nil {
			f.Geometry = geojson.NewGeometry(item.Footprint)
		}
		fc.Features = append(fc.Features, f)
	}
	return json.Marshal(fc)
}

// decodeItemCollection parses a STAC ItemCollection document.
func decodeItemCollection(data []byte) ([]proc.CatalogItem, error) {
	var fc stacItemCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	items := make([]proc.CatalogItem, 0, len(fc.Features))
	for _, f := range fc.Features {
		item, err := toCatalogItem(f)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
