package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

type URLInfo struct {
	RawURL string            `json:"raw_url"`
	Host   string            `json:"host"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query"`
}

type CatalogInfo struct {
	Duration     time.Duration `json:"duration"`
	URL          URLInfo       `json:"url"`
	Collection   string        `json:"collection"`
	Geometry     string        `json:"geometry"`
	BBox         [4]float64    `json:"bbox"`
	GeometryArea float64       `json:"geometry_area"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	CloudCover   *float64      `json:"cloud_cover"`
	NumFound     int           `json:"num_found"`
	NumSelected  int           `json:"num_selected"`
}

type ComputeInfo struct {
	Duration    time.Duration `json:"duration"`
	NumSlices   int           `json:"num_slices"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	NumChunks   int           `json:"num_chunks"`
	ValidPixels int           `json:"valid_pixels"`
}

type MetricsInfo struct {
	ReqTime     string        `json:"req_time"`
	ReqDuration time.Duration `json:"req_duration"`
	URL         URLInfo       `json:"url"`
	RemoteAddr  string        `json:"remote_addr"`
	RemoteHost  string        `json:"remote_host"`
	RemotePort  string        `json:"remote_port"`
	HTTPStatus  int           `json:"http_status"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Catalog     *CatalogInfo  `json:"catalog"`
	Compute     *ComputeInfo  `json:"compute"`
}

// MetricsCollector accumulates the MetricsInfo of a single run. The pipeline
// and the HTTP handler may update it from different goroutines.
type MetricsCollector struct {
	Info   *MetricsInfo
	logger Logger
	mu     sync.Mutex
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info: &MetricsInfo{
			Catalog: &CatalogInfo{},
			Compute: &ComputeInfo{},
		},
		logger: logger,
	}
}

// Update runs fn with exclusive access to the collected info.
func (m *MetricsCollector) Update(fn func(info *MetricsInfo)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.Info)
}

// SetGeometry records the AOI as WKT together with its bounding box.
func (m *MetricsCollector) SetGeometry(g orb.Geometry, areaKm2 float64) {
	m.Update(func(info *MetricsInfo) {
		if g == nil {
			return
		}
		b := g.Bound()
		info.Catalog.Geometry = wkt.MarshalString(g)
		info.Catalog.BBox = [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
		info.Catalog.GeometryArea = areaKm2
	})
}

func (m *MetricsCollector) Log() {
	if m == nil || m.logger == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Log(m.Info)
}

func (i *MetricsInfo) ToJSON() (string, error) {
	i.normaliseNetworkAddr(i.RemoteAddr)
	i.normaliseURLs()
	if i.Catalog != nil && len(i.Catalog.Geometry) == 0 {
		i.Catalog.Geometry = "POLYGON EMPTY"
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (i *MetricsInfo) normaliseNetworkAddr(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		i.RemoteHost = host
		i.RemotePort = port
	} else {
		i.RemoteHost = addr
	}
}

func (i *MetricsInfo) normaliseURLs() {
	normaliseURL(&i.URL)
	if i.Catalog != nil {
		normaliseURL(&i.Catalog.URL)
	}
}

func normaliseURL(u *URLInfo) {
	if len(u.RawURL) == 0 {
		return
	}
	r, err := url.Parse(u.RawURL)
	if err != nil {
		return
	}

	u.Host = r.Host
	u.Path = r.Path
	if u.Query == nil {
		u.Query = make(map[string]string)
	}
	for k, v := range r.Query() {
		switch len(v) {
		case 0:
			u.Query[k] = ""
		case 1:
			u.Query[k] = v[0]
		default:
			u.Query[k] = fmt.Sprintf("%v", v)
		}
	}
}
