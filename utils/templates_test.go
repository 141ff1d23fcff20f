package utils

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	proc "github.com/nci/gsky-ndvi/processor"
)

func testResult() *proc.NDVIResult {
	return &proc.NDVIResult{
		Status:      proc.StatusOK,
		AOI:         proc.AOIInfo{WKT: "POLYGON((36.8 -1.3,36.85 -1.3,36.85 -1.25,36.8 -1.25,36.8 -1.3))", BBox: [4]float64{36.8, -1.3, 36.85, -1.25}, Area: 30.9},
		ScenesFound: 12,
		ScenesUsed:  2,
		SceneIDs:    []string{"S2A_1", "S2B_2"},
		Statistics:  &proc.Statistics{Mean: 0.41, Min: -0.12, Max: 0.88},
		Composite:   testRaster(),
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, testResult(), ""); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Status:          ok", "Scenes found:    12", "  - S2B_2", "Mean NDVI:       0.4100", "3x2 cells at 40m (EPSG:6933)", "Area:            30.90 km²"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	res := testResult()
	res.Status = proc.StatusNoScenes
	res.Statistics = nil
	res.Composite = nil
	buf.Reset()
	if err := RenderReport(&buf, res, ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Mean NDVI") {
		t.Errorf("statistics should be omitted without data:\n%s", buf.String())
	}
}

func TestRenderReportFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := ioutil.WriteFile(filepath.Join(dir, "short.jet"), []byte("{{ .Status }}/{{ .ScenesUsed }}"), 0644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, testResult(), filepath.Join(dir, "short.jet")); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	if buf.String() != "ok/2" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
