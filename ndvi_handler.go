package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nci/gsky-ndvi/metrics"
	"github.com/nci/gsky-ndvi/pipeline"
	proc "github.com/nci/gsky-ndvi/processor"
	"github.com/nci/gsky-ndvi/utils"
)

const maxRequestBody = 4 << 20

// minRetireDelay bounds how soon replaced components are closed after a
// config reload.
const minRetireDelay = time.Minute

type buildFunc func(ctx context.Context, config *utils.Config, verbose bool) (*pipeline.Components, error)

// ndviServer serves NDVI composites over HTTP.
type ndviServer struct {
	config     *utils.ConfigHolder
	mu         sync.RWMutex
	components *pipeline.Components
	build      buildFunc
	logger     metrics.Logger
	prom       *metrics.Collector
	gatherer   prometheus.Gatherer
	timeout    time.Duration
	verbose    bool
}

func (s *ndviServer) currentComponents() *pipeline.Components {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.components
}

// reloadComponents rebuilds the catalogue, signer and reader for config
// and swaps them in. Runs in flight keep the previous set, which is closed
// once they have had time to finish.
func (s *ndviServer) reloadComponents(ctx context.Context, config *utils.Config) error {
	build := s.build
	if build == nil {
		build = pipeline.Build
	}
	components, err := build(ctx, config, s.verbose)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.components
	s.components = components
	s.mu.Unlock()

	if old != nil {
		delay := s.timeout
		if delay < minRetireDelay {
			delay = minRetireDelay
		}
		time.AfterFunc(delay, old.Close)
	}
	return nil
}

func (s *ndviServer) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ndvi", s.ndviHandler).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	} else {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	return router
}

func (s *ndviServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// httpStatus maps a pipeline error to the HTTP status reported to clients.
func httpStatus(err error) int {
	var ige *proc.InvalidGeometryError
	var aee *proc.AreaExceededError
	var are *proc.AssetResolutionError
	var rte *proc.RetrievalError
	switch {
	case errors.As(err, &ige), errors.As(err, &aee):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &are), errors.As(err, &rte):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorStage(err error) string {
	var se *proc.StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "request"
}

func writeJSONError(w http.ResponseWriter, status int, stage string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "stage": stage})
}

func (s *ndviServer) ndviHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	if s.verbose {
		Info.Printf("%s %s\n", r.Method, r.URL.String())
	}
	conf := s.config.Get()

	collector := metrics.NewMetricsCollector(s.logger)
	t0 := time.Now()
	status := http.StatusOK
	defer func() {
		collector.Update(func(info *metrics.MetricsInfo) {
			info.ReqDuration = time.Since(t0)
			info.HTTPStatus = status
		})
		collector.Log()
		s.prom.ObserveRun(collector.Info)
		s.prom.RecordRequest("ndvi", fmt.Sprintf("%d", status), time.Since(t0))
	}()

	collector.Update(func(info *metrics.MetricsInfo) {
		info.ReqTime = t0.Format(utils.ISOFormat)
		if reqURL, e := url.QueryUnescape(r.URL.String()); e == nil {
			info.URL.RawURL = reqURL
		} else {
			info.URL.RawURL = r.URL.String()
		}
		info.RemoteAddr = remoteAddr(r)
		info.Catalog.URL.RawURL = conf.Catalog.STACURL
	})

	fail := func(code int, stage string, err error) {
		status = code
		collector.Update(func(info *metrics.MetricsInfo) {
			info.Status = "error"
			info.Error = err.Error()
		})
		s.prom.RecordError(stage)
		Error.Printf("NDVI request failed at %s: %v\n", stage, err)
		writeJSONError(w, code, stage, err)
	}

	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		fail(http.StatusBadRequest, "request", err)
		return
	}
	req, includeComposite, err := utils.ParseNDVIRequest(body, *conf.Compute.MaxCloudCover)
	if err != nil {
		fail(http.StatusBadRequest, "request", err)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.prom.RunStarted()
	dp := s.currentComponents().NewPipeline(ctx, conf, collector, s.verbose)
	res, err := dp.Process(req)
	s.prom.RunFinished()
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%v: %w", err, ctx.Err())
		}
		fail(httpStatus(err), errorStage(err), err)
		return
	}
	collector.Update(func(info *metrics.MetricsInfo) {
		info.Status = string(res.Status)
	})

	switch r.URL.Query().Get("format") {
	case "png":
		if res.Preview == nil {
			status = http.StatusNoContent
			w.WriteHeader(status)
			return
		}
		ramp, _ := utils.GradientRGBAPalette(utils.YlGn)
		var buf bytes.Buffer
		if err := utils.EncodePNG(&buf, res.Preview, ramp, -1, 1); err != nil {
			fail(http.StatusInternalServerError, "encode", err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	case "csv":
		if res.Composite == nil {
			status = http.StatusNoContent
			w.WriteHeader(status)
			return
		}
		var buf bytes.Buffer
		if err := utils.EncodeCSV(&buf, res.Composite); err != nil {
			fail(http.StatusInternalServerError, "encode", err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write(buf.Bytes())
	default:
		if !includeComposite {
			res.Composite = nil
		}
		out, err := json.Marshal(res)
		if err != nil {
			fail(http.StatusInternalServerError, "encode", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	}
}

func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); len(fwd) > 0 {
		return fwd
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
