package main

/* ndvi is a web server computing cloud-filtered NDVI composites over a
   user supplied area of interest. A request names an AOI and a date
   range; the server searches the scene catalogue, keeps the clearest
   scene per footprint, reads the red and near infrared bands onto a
   common equal-area grid and returns the per-pixel maximum NDVI with
   summary statistics and a coarse preview.
   Band reads run either in-process through GDAL or on remote warp
   workers (see warp-server). */

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"golang.org/x/net/netutil"
	"gopkg.in/yaml.v2"

	"github.com/nci/gsky-ndvi/metrics"
	"github.com/nci/gsky-ndvi/pipeline"
	"github.com/nci/gsky-ndvi/utils"
)

var (
	port           = flag.Int("p", 0, "Server listening port. Overrides the config file.")
	configFile     = flag.String("conf", "", "YAML config file.")
	envFile        = flag.String("env", ".env", "Env file loaded before reading the config.")
	serverLogDir   = flag.String("log_dir", "", "Metrics log directory, '-' for stdout.")
	requestTimeout = flag.Int("timeout", 300, "Per-request timeout in seconds.")
	validateConfig = flag.Bool("check_conf", false, "Validate server config file.")
	dumpConfig     = flag.Bool("dump_conf", false, "Dump server config file.")
	verbose        = flag.Bool("v", false, "Verbose mode for more server outputs.")
)

var (
	Error = log.New(os.Stderr, "NDVI: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info  = log.New(os.Stdout, "NDVI: ", log.Ldate|log.Ltime|log.Lshortfile)
)

func newMetricsLogger(conf *utils.Config) (metrics.Logger, func(), error) {
	logDir := *serverLogDir
	if len(logDir) == 0 {
		logDir = conf.ServiceConfig.MetricsLogDir
	}
	switch logDir {
	case "":
		return nil, func() {}, nil
	case "-":
		return metrics.NewStdoutLogger(), func() {}, nil
	default:
		l, err := metrics.NewFileLogger(logDir, conf.ServiceConfig.MaxLogSize, conf.ServiceConfig.MaxLogFiles, *verbose)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
}

func listen(conf *utils.Config) (net.Listener, error) {
	addr := fmt.Sprintf("0.0.0.0:%d", conf.ServiceConfig.Port)
	var l net.Listener
	var err error
	if conf.ServiceConfig.ReusePort {
		l, err = reuseport.Listen("tcp", addr)
	} else {
		l, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	return netutil.LimitListener(l, conf.ServiceConfig.MaxConns), nil
}

func main() {
	flag.Parse()

	if err := utils.LoadEnvFiles(*envFile); err != nil {
		Error.Printf("%v\n", err)
		os.Exit(1)
	}

	conf := &utils.Config{}
	if err := conf.LoadConfigFile(*configFile); err != nil {
		Error.Printf("Error in loading config file: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		conf.ServiceConfig.Port = *port
	}

	if *validateConfig {
		os.Exit(0)
	}
	if *dumpConfig {
		out, err := yaml.Marshal(conf)
		if err != nil {
			Error.Printf("Error in dumping config: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}

	holder := utils.NewConfigHolder(conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := pipeline.Build(ctx, conf, *verbose)
	if err != nil {
		Error.Printf("Error in building pipeline components: %v\n", err)
		os.Exit(1)
	}

	metricsLogger, closeLogger, err := newMetricsLogger(conf)
	if err != nil {
		Error.Printf("Error in creating metrics logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	s := &ndviServer{
		config:     holder,
		components: components,
		logger:     metricsLogger,
		prom:       metrics.NewCollector("ndvi", nil),
		timeout:    time.Duration(*requestTimeout) * time.Second,
		verbose:    *verbose,
	}
	defer func() { s.currentComponents().Close() }()

	utils.WatchConfig(Info, Error, *configFile, holder, func(c *utils.Config) error {
		return s.reloadComponents(ctx, c)
	})

	lis, err := listen(conf)
	if err != nil {
		Error.Printf("failed to listen: %v\n", err)
		os.Exit(1)
	}

	srv := &http.Server{Handler: s.router()}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		Info.Printf("Shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	Info.Printf("NDVI server is ready on port %d", conf.ServiceConfig.Port)
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		Error.Printf("failed to serve: %v\n", err)
	}
}
