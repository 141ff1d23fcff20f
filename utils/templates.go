package utils

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/edisonguo/jet"

	proc "github.com/nci/gsky-ndvi/processor"
)

const reportTemplateName = "ndvi_report.jet"

const defaultReportTemplate = `NDVI composite report
=====================
Status:          {{ .Status }}
AOI:             {{ .WKT }}
Bounding box:    {{ .BBox }}
Area:            {{ .Area }} km²
Scenes found:    {{ .ScenesFound }}
Scenes selected: {{ .ScenesUsed }}
{{ range .SceneIDs }}  - {{ . }}
{{ end }}{{ if .HasStats }}Mean NDVI:       {{ .Mean }}
Min NDVI:        {{ .Min }}
Max NDVI:        {{ .Max }}
{{ end }}{{ if .Grid != "" }}Composite grid:  {{ .Grid }}
{{ end }}Compute time:    {{ .ComputeMillis }} ms
`

// reportView holds preformatted fields so templates need no helpers.
type reportView struct {
	Status        string
	WKT           string
	BBox          string
	Area          string
	ScenesFound   int
	ScenesUsed    int
	SceneIDs      []string
	HasStats      bool
	Mean          string
	Min           string
	Max           string
	Grid          string
	ComputeMillis int64
}

func newReportView(res *proc.NDVIResult) *reportView {
	v := &reportView{
		Status:        string(res.Status),
		WKT:           res.AOI.WKT,
		BBox:          fmt.Sprintf("%.6f, %.6f, %.6f, %.6f", res.AOI.BBox[0], res.AOI.BBox[1], res.AOI.BBox[2], res.AOI.BBox[3]),
		Area:          fmt.Sprintf("%.2f", res.AOI.Area),
		ScenesFound:   res.ScenesFound,
		ScenesUsed:    res.ScenesUsed,
		SceneIDs:      res.SceneIDs,
		ComputeMillis: res.ComputeMillis,
	}
	if res.Statistics != nil {
		v.HasStats = true
		v.Mean = fmt.Sprintf("%.4f", res.Statistics.Mean)
		v.Min = fmt.Sprintf("%.4f", res.Statistics.Min)
		v.Max = fmt.Sprintf("%.4f", res.Statistics.Max)
	}
	if res.Composite != nil {
		g := res.Composite.GridSpec
		v.Grid = fmt.Sprintf("%dx%d cells at %gm (EPSG:%d)", g.Width, g.Height, g.Resolution, g.EPSG)
	}
	return v
}

// RenderReport writes a text summary of res. templatePath names a jet
// template on disk; when empty the built-in report is used.
func RenderReport(w io.Writer, res *proc.NDVIResult, templatePath string) error {
	if res == nil {
		return fmt.Errorf("no result to report")
	}

	var template *jet.Template
	var err error
	if len(templatePath) == 0 {
		view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
			w.Write(b)
		}))
		template, err = view.LoadTemplate(reportTemplateName, defaultReportTemplate)
	} else {
		view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
			w.Write(b)
		}), filepath.Dir(templatePath))
		template, err = view.GetTemplate(filepath.Base(templatePath))
	}
	if err != nil {
		return fmt.Errorf("report template error: %v", err)
	}

	vars := make(jet.VarMap)
	if err := template.Execute(w, vars, newReportView(res)); err != nil {
		return fmt.Errorf("report template error: %v", err)
	}
	return nil
}
