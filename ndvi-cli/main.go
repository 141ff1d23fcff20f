package main

/* ndvi-cli computes an NDVI composite for the AOI in a GeoJSON file and
   writes the statistics, a PNG preview, the composite as CSV and a text
   report into the output directory. */

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/nci/gsky-ndvi/metrics"
	"github.com/nci/gsky-ndvi/pipeline"
	proc "github.com/nci/gsky-ndvi/processor"
	"github.com/nci/gsky-ndvi/utils"
)

var (
	Error = log.New(os.Stderr, "NDVI: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info  = log.New(os.Stdout, "NDVI: ", log.Ldate|log.Ltime|log.Lshortfile)
)

type options struct {
	aoiFile    string
	configFile string
	outDir     string
	start      string
	end        string
	cloud      float64
	report     string
	progress   bool
	verbose    bool
}

func parseFlags() *options {
	o := &options{}
	flag.StringVar(&o.aoiFile, "aoi", "", "GeoJSON file with the area of interest.")
	flag.StringVar(&o.configFile, "conf", "", "YAML config file.")
	flag.StringVar(&o.outDir, "out", ".", "Output directory.")
	flag.StringVar(&o.start, "start", "2024-01-01", "Start date.")
	flag.StringVar(&o.end, "end", "2024-12-31", "End date.")
	flag.Float64Var(&o.cloud, "cloud", -1, "Maximum cloud cover in percent. Negative uses the config value.")
	flag.StringVar(&o.report, "report", "", "Jet template for the text report.")
	flag.BoolVar(&o.progress, "progress", true, "Show a progress bar.")
	flag.BoolVar(&o.verbose, "v", false, "Verbose mode.")
	flag.Parse()
	return o
}

func buildRequest(o *options, conf *utils.Config) (*proc.NDVIRequest, error) {
	raw, err := ioutil.ReadFile(o.aoiFile)
	if err != nil {
		return nil, err
	}
	aoi, err := utils.ParseAOI(raw)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseISODate(o.start)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseISODate(o.end)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", o.end, o.start)
	}
	cloud, err := utils.CloudLimitFlag(o.cloud)
	if err != nil {
		return nil, err
	}
	if cloud == nil {
		cloud = conf.Compute.MaxCloudCover
	}
	return &proc.NDVIRequest{AOI: aoi, StartTime: start, EndTime: end, MaxCloudCover: cloud}, nil
}

// writeOutputs stores the artefacts of res under dir and returns the
// written paths.
func writeOutputs(dir string, res *proc.NDVIResult, reportTemplate string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var written []string
	create := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %v", name, err)
		}
		written = append(written, path)
		return f.Close()
	}

	err := create("ndvi_stats.json", func(f *os.File) error {
		summary := *res
		summary.Composite = nil
		summary.Preview = nil
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(&summary)
	})
	if err != nil {
		return written, err
	}

	if res.Preview != nil {
		ramp, err := utils.GradientRGBAPalette(utils.YlGn)
		if err != nil {
			return written, err
		}
		err = create("ndvi_preview.png", func(f *os.File) error {
			return utils.EncodePNG(f, res.Preview, ramp, -1, 1)
		})
		if err != nil {
			return written, err
		}
	}

	if res.Composite != nil {
		err = create("ndvi_composite.csv", func(f *os.File) error {
			return utils.EncodeCSV(f, res.Composite)
		})
		if err != nil {
			return written, err
		}
	}

	err = create("ndvi_report.txt", func(f *os.File) error {
		return utils.RenderReport(f, res, reportTemplate)
	})
	return written, err
}

func main() {
	o := parseFlags()
	if len(o.aoiFile) == 0 {
		Error.Fatal("-aoi is required")
	}

	if err := utils.LoadEnvFiles(".env"); err != nil {
		Error.Fatal(err)
	}
	conf := &utils.Config{}
	if err := conf.LoadConfigFile(o.configFile); err != nil {
		Error.Fatalf("Error in loading config file: %v", err)
	}

	req, err := buildRequest(o, conf)
	if err != nil {
		Error.Fatal(err)
	}

	ctx := context.Background()
	components, err := pipeline.Build(ctx, conf, o.verbose)
	if err != nil {
		Error.Fatal(err)
	}
	defer components.Close()

	var metricsLogger metrics.Logger
	if o.verbose {
		metricsLogger = metrics.NewStdoutLogger()
	}
	collector := metrics.NewMetricsCollector(metricsLogger)
	dp := components.NewPipeline(ctx, conf, collector, o.verbose)
	dp.Scheduler.Progress = o.progress

	res, err := dp.Process(req)
	collector.Log()
	if err != nil {
		Error.Fatal(err)
	}

	Info.Printf("AOI: %s", res.AOI.WKT)
	Info.Printf("bbox: %v, area: %.2f km²", res.AOI.BBox, res.AOI.Area)
	Info.Printf("scenes found: %d, best scenes selected: %d", res.ScenesFound, res.ScenesUsed)
	switch res.Status {
	case proc.StatusNoScenes:
		Info.Printf("no scenes match the request")
	case proc.StatusNoValidData:
		Info.Printf("no valid NDVI pixels over the AOI")
	default:
		Info.Printf("NDVI mean: %.4f, min: %.4f, max: %.4f", res.Statistics.Mean, res.Statistics.Min, res.Statistics.Max)
	}

	report := o.report
	if len(report) == 0 {
		report = conf.ServiceConfig.ReportPath
	}
	written, err := writeOutputs(o.outDir, res, report)
	if err != nil {
		Error.Fatal(err)
	}
	for _, path := range written {
		Info.Printf("wrote %s", path)
	}
}
