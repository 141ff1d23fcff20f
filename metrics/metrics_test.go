package metrics

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInfoToJSON(t *testing.T) {
	c := NewMetricsCollector(nil)
	c.SetGeometry(orb.Polygon{orb.Ring{{36.8, -1.3}, {36.9, -1.3}, {36.9, -1.2}, {36.8, -1.3}}}, 61.5)
	c.Update(func(info *MetricsInfo) {
		info.RemoteAddr = "10.0.0.7:51234"
		info.URL.RawURL = "/ndvi?format=png"
		info.Catalog.NumFound = 12
	})

	out, err := c.Info.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["remote_host"] != "10.0.0.7" || decoded["remote_port"] != "51234" {
		t.Errorf("unexpected remote address fields: %v", decoded)
	}
	u := decoded["url"].(map[string]interface{})
	if u["path"] != "/ndvi" || u["query"].(map[string]interface{})["format"] != "png" {
		t.Errorf("unexpected url info %v", u)
	}
	catalog := decoded["catalog"].(map[string]interface{})
	if !strings.HasPrefix(catalog["geometry"].(string), "POLYGON((36.8 -1.3") {
		t.Errorf("unexpected geometry %v", catalog["geometry"])
	}
	if catalog["bbox"].([]interface{})[2] != 36.9 {
		t.Errorf("unexpected bbox %v", catalog["bbox"])
	}
}

func TestNilCollectors(t *testing.T) {
	var c *MetricsCollector
	c.Update(func(info *MetricsInfo) { t.Errorf("update on nil collector") })
	c.Log()

	var p *Collector
	p.RunStarted()
	p.RunFinished()
	p.RecordError("search")
	p.ObserveRun(&MetricsInfo{})
}

func TestFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metrics")
	l, err := NewFileLogger(dir, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		c := NewMetricsCollector(l)
		c.Update(func(info *MetricsInfo) { info.Status = "ok" })
		c.Log()
	}
	l.Close()

	lines := 0
	for i := 0; i < defaultLogWriters; i++ {
		raw, err := ioutil.ReadFile(l.logFilePath(i))
		if err != nil {
			continue
		}
		lines += strings.Count(string(raw), "\n")
	}
	if lines != 10 {
		t.Errorf("expected 10 logged runs, got %d", lines)
	}
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("ndvi", reg)

	c.RecordRequest("ndvi", "200", 2*time.Second)
	c.RecordRequest("ndvi", "200", time.Second)
	c.RecordError("materialize")
	c.RunStarted()
	c.RunStarted()
	c.RunFinished()

	if v := testutil.ToFloat64(c.RequestsTotal.WithLabelValues("ndvi", "200")); v != 2 {
		t.Errorf("expected 2 requests, got %v", v)
	}
	if v := testutil.ToFloat64(c.ErrorsTotal.WithLabelValues("materialize")); v != 1 {
		t.Errorf("expected 1 error, got %v", v)
	}
	if v := testutil.ToFloat64(c.ActiveRuns); v != 1 {
		t.Errorf("expected 1 active run, got %v", v)
	}
}
