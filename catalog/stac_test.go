package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"

	proc "github.com/nci/gsky-ndvi/processor"
)

func stacFeatureJSON(id string, cloud float64, lon float64) string {
	return fmt.Sprintf(`{
		"type": "Feature",
		"id": %q,
		"collection": "sentinel-2-l2a",
		"geometry": {"type": "Polygon", "coordinates": [[[%v, -2], [%v, -2], [%v, -1], [%v, -1], [%v, -2]]]},
		"properties": {"datetime": "2024-03-0%dT07:45:12.024Z", "eo:cloud_cover": %v, "platform": "Sentinel-2A"},
		"assets": {
			"B04": {"href": "https://sentinel2l2a01.blob.core.windows.net/sentinel2-l2/%s/B04.tif", "type": "image/tiff; application=geotiff"},
			"B08": {"href": "https://sentinel2l2a01.blob.core.windows.net/sentinel2-l2/%s/B08.tif", "type": "image/tiff; application=geotiff"}
		}
	}`, id, lon, lon+1, lon+1, lon, lon, len(id)%9+1, cloud, id, id)
}

func searchRequest() proc.SearchRequest {
	return proc.SearchRequest{
		Collection:    "sentinel-2-l2a",
		BBox:          orb.Bound{Min: orb.Point{36.7, -1.4}, Max: orb.Point{36.9, -1.2}},
		StartTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxCloudCover: proc.CloudLimit(10),
	}
}

func TestSTACSearchPagination(t *testing.T) {
	var bodies []map[string]interface{}
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := ioutil.ReadAll(r.Body)
		var body map[string]interface{}
		json.Unmarshal(raw, &body)
		bodies = append(bodies, body)

		w.Header().Set("Content-Type", "application/geo+json")
		if _, found := body["token"]; !found {
			fmt.Fprintf(w, `{"type": "FeatureCollection", "features": [%s, %s],
				"links": [{"rel": "next", "href": "%s/search", "method": "POST", "body": {"token": "next:abc"}, "merge": true}]}`,
				stacFeatureJSON("S2A_1", 3.5, 36), stacFeatureJSON("S2A_22", 8, 36), server.URL)
			return
		}
		fmt.Fprintf(w, `{"type": "FeatureCollection", "features": [%s], "links": []}`, stacFeatureJSON("S2B_333", 1, 37))
	}))
	defer server.Close()

	s := NewSTACSearcher(server.URL, nil)
	items, err := s.Search(context.Background(), searchRequest())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items over two pages, got %d", len(items))
	}
	if items[0].ID != "S2A_1" || items[2].ID != "S2B_333" {
		t.Errorf("unexpected item order %s, %s", items[0].ID, items[2].ID)
	}
	if items[0].CloudCover == nil || *items[0].CloudCover != 3.5 {
		t.Errorf("unexpected cloud cover %v", items[0].CloudCover)
	}
	if items[0].Platform != "Sentinel-2A" || items[0].Datetime.IsZero() {
		t.Errorf("unexpected item properties %+v", items[0])
	}
	if _, ok := items[0].Footprint.(orb.Polygon); !ok {
		t.Errorf("expected polygon footprint, got %T", items[0].Footprint)
	}
	if !strings.HasSuffix(items[1].Assets["B08"].Href, "/S2A_22/B08.tif") {
		t.Errorf("unexpected asset href %s", items[1].Assets["B08"].Href)
	}

	if len(bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(bodies))
	}
	first := bodies[0]
	if first["datetime"] != "2024-01-01T00:00:00Z/2024-12-31T00:00:00Z" {
		t.Errorf("unexpected datetime %v", first["datetime"])
	}
	query, _ := first["query"].(map[string]interface{})
	cc, _ := query["eo:cloud_cover"].(map[string]interface{})
	if cc["lt"] != 10.0 {
		t.Errorf("expected cloud cover lt 10, got %v", first["query"])
	}
	if bodies[1]["token"] != "next:abc" || bodies[1]["datetime"] == nil {
		t.Errorf("expected merged next body, got %v", bodies[1])
	}
}

func TestSTACSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": "BadRequest"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	s := NewSTACSearcher(server.URL, nil)
	if _, err := s.Search(context.Background(), searchRequest()); err == nil {
		t.Errorf("expected error for status 400")
	}
}

func TestSTACSearchCloudQuery(t *testing.T) {
	s := NewSTACSearcher("https://example.com", nil)
	cloudLimit := func(body map[string]interface{}) (float64, bool) {
		query, ok := body["query"].(map[string]interface{})
		if !ok {
			return 0, false
		}
		cc, ok := query["eo:cloud_cover"].(map[string]interface{})
		if !ok {
			return 0, false
		}
		lt, ok := cc["lt"].(float64)
		return lt, ok
	}

	req := searchRequest()
	req.MaxCloudCover = proc.CloudLimit(0)
	if lt, ok := cloudLimit(s.searchBody(req)); !ok || lt != 0 {
		t.Errorf("a zero cloud limit should be sent as lt 0, got %v %v", lt, ok)
	}

	req.MaxCloudCover = nil
	if _, ok := cloudLimit(s.searchBody(req)); ok {
		t.Errorf("no cloud limit should send no cloud query")
	}
}

func TestItemCollectionRoundTrip(t *testing.T) {
	cc := 12.5
	items := []proc.CatalogItem{{
		ID:         "S2A_X",
		Collection: "sentinel-2-l2a",
		Platform:   "Sentinel-2A",
		Datetime:   time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC),
		CloudCover: &cc,
		Footprint:  orb.Polygon{orb.Ring{{1, 1}, {2, 1}, {2, 2}, {1, 1}}},
		Assets:     map[string]proc.Asset{"B04": {Href: "https://x/B04.tif"}},
	}}

	raw, err := encodeItemCollection(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := decodeItemCollection(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	k1, _ := proc.FootprintKey(items[0].Footprint)
	k2, _ := proc.FootprintKey(back[0].Footprint)
	if k1 != k2 {
		t.Errorf("footprint changed across the cache encoding")
	}
	if !back[0].Datetime.Equal(items[0].Datetime) || *back[0].CloudCover != cc || back[0].Platform != "Sentinel-2A" {
		t.Errorf("unexpected decoded item %+v", back[0])
	}
}

func TestPlanetaryComputerSigner(t *testing.T) {
	var tokenCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		if r.URL.Path != "/token/sentinel-2-l2a" {
			t.Errorf("unexpected token path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"msft:expiry": %q, "token": "st=2024&se=2024&sig=abc"}`, time.Now().Add(time.Hour).UTC().Format(time.RFC3339))
	}))
	defer server.Close()

	signer := NewPlanetaryComputerSigner(server.URL + "/token")
	var items []proc.CatalogItem
	for i := 0; i < 6; i++ {
		items = append(items, proc.CatalogItem{
			ID:         fmt.Sprintf("S2_%d", i),
			Collection: "sentinel-2-l2a",
			Assets: map[string]proc.Asset{
				"B04":      {Href: fmt.Sprintf("https://sentinel2l2a01.blob.core.windows.net/c/%d/B04.tif", i)},
				"B08":      {Href: fmt.Sprintf("https://sentinel2l2a01.blob.core.windows.net/c/%d/B08.tif", i)},
				"rendered": {Href: "https://planetarycomputer.microsoft.com/api/data/v1/item/preview.png"},
			},
		})
	}

	signed, err := signer.SignAll(context.Background(), items)
	if err != nil {
		t.Fatalf("SignAll: %v", err)
	}
	if len(signed) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(signed))
	}
	for i, item := range signed {
		if item.ID != items[i].ID {
			t.Errorf("order changed at %d", i)
		}
		if !strings.HasSuffix(item.Assets["B08"].Href, "B08.tif?st=2024&se=2024&sig=abc") {
			t.Errorf("unsigned blob href %s", item.Assets["B08"].Href)
		}
		if strings.Contains(item.Assets["rendered"].Href, "sig=") {
			t.Errorf("non-blob href should not be signed: %s", item.Assets["rendered"].Href)
		}
		if strings.Contains(items[i].Assets["B08"].Href, "sig=") {
			t.Errorf("input item mutated")
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("expected the token to be cached, got %d token requests", n)
	}
}

func TestSceneFilter(t *testing.T) {
	cc := 4.0
	item := proc.CatalogItem{
		ID:         "S2B_1",
		Platform:   "Sentinel-2B",
		CloudCover: &cc,
		Datetime:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"platform == 'Sentinel-2B'", true},
		{"platform == 'Sentinel-2A'", false},
		{"cloud_cover < 5 && month >= 6", true},
		{"year == 2023", false},
	}
	for _, tc := range tests {
		f, err := ParseSceneFilter(tc.expr)
		if err != nil {
			t.Errorf("%s: %v", tc.expr, err)
			continue
		}
		got, err := f(item)
		if err != nil || got != tc.want {
			t.Errorf("%s: expected %v, got %v (%v)", tc.expr, tc.want, got, err)
		}
	}

	if f, err := ParseSceneFilter("  "); f != nil || err != nil {
		t.Errorf("empty expression should yield no filter")
	}
	if _, err := ParseSceneFilter("path == 'x'"); err == nil {
		t.Errorf("expected unsupported variable error")
	}
}
