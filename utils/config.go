package utils

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v2"

	proc "github.com/nci/gsky-ndvi/processor"
)

type ServiceConfig struct {
	Port          int    `yaml:"port" env:"NDVI_PORT,overwrite"`
	MaxConns      int    `yaml:"max_conns" env:"NDVI_MAX_CONNS,overwrite"`
	ReusePort     bool   `yaml:"reuse_port" env:"NDVI_REUSE_PORT,overwrite"`
	MetricsLogDir string `yaml:"metrics_log_dir" env:"NDVI_METRICS_LOG_DIR,overwrite"`
	MaxLogSize    int64  `yaml:"max_log_size" env:"NDVI_MAX_LOG_SIZE,overwrite"`
	MaxLogFiles   int    `yaml:"max_log_files" env:"NDVI_MAX_LOG_FILES,overwrite"`
	ReportPath    string `yaml:"report_template" env:"NDVI_REPORT_TEMPLATE,overwrite"`
}

type OAuth2Config struct {
	ClientID     string   `yaml:"client_id" env:"NDVI_OAUTH2_CLIENT_ID,overwrite"`
	ClientSecret string   `yaml:"client_secret" env:"NDVI_OAUTH2_CLIENT_SECRET,overwrite"`
	TokenURL     string   `yaml:"token_url" env:"NDVI_OAUTH2_TOKEN_URL,overwrite"`
	Scopes       []string `yaml:"scopes" env:"NDVI_OAUTH2_SCOPES,overwrite"`
}

type CatalogConfig struct {
	STACURL          string       `yaml:"stac_url" env:"NDVI_STAC_URL,overwrite"`
	Collection       string       `yaml:"collection" env:"NDVI_COLLECTION,overwrite"`
	Signer           string       `yaml:"signer" env:"NDVI_SIGNER,overwrite"`
	SignerURL        string       `yaml:"signer_url" env:"NDVI_SIGNER_URL,overwrite"`
	OAuth2           OAuth2Config `yaml:"oauth2"`
	PostgresDSN      string       `yaml:"postgres_dsn" env:"NDVI_POSTGRES_DSN,overwrite"`
	PostgresPoolSize int          `yaml:"postgres_pool_size" env:"NDVI_POSTGRES_POOL_SIZE,overwrite"`
	MemcacheServers  []string     `yaml:"memcache_servers" env:"NDVI_MEMCACHE_SERVERS,overwrite"`
	CacheExpiry      int          `yaml:"cache_expiry_secs" env:"NDVI_CACHE_EXPIRY_SECS,overwrite"`
	SceneFilter      string       `yaml:"scene_filter" env:"NDVI_SCENE_FILTER,overwrite"`
	SearchMonths     int          `yaml:"search_months" env:"NDVI_SEARCH_MONTHS,overwrite"`
}

type ComputeConfig struct {
	EPSG               int      `yaml:"epsg" env:"NDVI_EPSG,overwrite"`
	Resolution         float64  `yaml:"resolution" env:"NDVI_RESOLUTION,overwrite"`
	NIRBand            string   `yaml:"nir_band" env:"NDVI_NIR_BAND,overwrite"`
	RedBand            string   `yaml:"red_band" env:"NDVI_RED_BAND,overwrite"`
	CoarsenFactor      int      `yaml:"coarsen_factor" env:"NDVI_COARSEN_FACTOR,overwrite"`
	ChunkSize          int      `yaml:"chunk_size" env:"NDVI_CHUNK_SIZE,overwrite"`
	Parallelism        int      `yaml:"parallelism" env:"NDVI_PARALLELISM,overwrite"`
	MaxAreaKm2         float64  `yaml:"max_area_km2" env:"NDVI_MAX_AREA_KM2,overwrite"`
	MaxCloudCover      *float64 `yaml:"max_cloud_cover" env:"NDVI_MAX_CLOUD_COVER,overwrite"`
	MaskZero           bool     `yaml:"mask_zero" env:"NDVI_MASK_ZERO,overwrite"`
	WarpWorkers        []string `yaml:"warp_workers" env:"NDVI_WARP_WORKERS,overwrite"`
	WarpConcLimit      int      `yaml:"warp_conc_limit" env:"NDVI_WARP_CONC_LIMIT,overwrite"`
	MaxGrpcRecvMsgSize int      `yaml:"max_grpc_recv_msg_size" env:"NDVI_MAX_GRPC_RECV_MSG_SIZE,overwrite"`
}

// Config is the configuration of the NDVI service and CLI. Values are
// read from a YAML document, then overridden by the environment.
type Config struct {
	ServiceConfig ServiceConfig `yaml:"service_config"`
	Catalog       CatalogConfig `yaml:"catalog"`
	Compute       ComputeConfig `yaml:"compute"`
}

// string used to format Go ISO times
const ISOFormat = proc.ISOFormat

const DefaultRecvMsgSize = 10 * 1024 * 1024

const (
	SignerPlanetaryComputer = "planetary_computer"
	SignerNone              = "none"
)

// LoadConfigFile parses the YAML config document, applies environment
// overrides and fills defaults. An empty path yields a config built from
// the environment and defaults only.
func (config *Config) LoadConfigFile(configFile string) error {
	*config = Config{}
	if len(configFile) > 0 {
		cfg, err := ioutil.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
		}

		err = yaml.Unmarshal(cfg, config)
		if err != nil {
			return fmt.Errorf("Error at YAML parsing config document: %s. Error: %v", configFile, err)
		}
	}

	if err := envconfig.Process(context.Background(), config); err != nil {
		return fmt.Errorf("Error processing environment overrides: %v", err)
	}

	config.applyDefaults()
	return config.Validate()
}

// LoadEnvFiles loads .env files into the process environment. Missing
// files are skipped; variables already set are left untouched.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("Error loading env file %s: %v", f, err)
		}
	}
	return nil
}

func (config *Config) applyDefaults() {
	s := &config.ServiceConfig
	if s.Port <= 0 {
		s.Port = 8080
	}
	if s.MaxConns <= 0 {
		s.MaxConns = 64
	}
	if s.MaxLogSize <= 0 {
		s.MaxLogSize = 100 * 1024 * 1024
	}
	if s.MaxLogFiles <= 0 {
		s.MaxLogFiles = 10
	}

	c := &config.Catalog
	if c.STACURL == "" {
		c.STACURL = "https://planetarycomputer.microsoft.com/api/stac/v1"
	}
	if c.Collection == "" {
		c.Collection = "sentinel-2-l2a"
	}
	if c.Signer == "" {
		c.Signer = SignerPlanetaryComputer
	}
	if c.CacheExpiry <= 0 {
		c.CacheExpiry = 3600
	}

	p := &config.Compute
	if p.EPSG == 0 {
		p.EPSG = proc.DefaultEPSG
	}
	if p.Resolution <= 0 {
		p.Resolution = proc.DefaultResolution
	}
	if p.NIRBand == "" {
		p.NIRBand = proc.DefaultNIRBand
	}
	if p.RedBand == "" {
		p.RedBand = proc.DefaultRedBand
	}
	if p.CoarsenFactor <= 0 {
		p.CoarsenFactor = proc.DefaultCoarsenFactor
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = proc.DefaultChunkSize
	}
	if p.Parallelism <= 0 {
		p.Parallelism = 4
	}
	if p.MaxAreaKm2 <= 0 {
		p.MaxAreaKm2 = proc.DefaultMaxAreaKm2
	}
	if p.MaxCloudCover == nil {
		p.MaxCloudCover = proc.CloudLimit(10)
	}
	if p.WarpConcLimit <= 0 {
		p.WarpConcLimit = 16
	}
	if p.MaxGrpcRecvMsgSize <= 0 {
		p.MaxGrpcRecvMsgSize = DefaultRecvMsgSize
	}
}

func (config *Config) Validate() error {
	switch config.Catalog.Signer {
	case SignerPlanetaryComputer, SignerNone:
	default:
		return fmt.Errorf("Unknown signer %q, expected %s or %s", config.Catalog.Signer, SignerPlanetaryComputer, SignerNone)
	}
	if config.Compute.EPSG != proc.DefaultEPSG {
		return fmt.Errorf("Unsupported EPSG:%d, only EPSG:%d is supported", config.Compute.EPSG, proc.DefaultEPSG)
	}
	if err := checkCloudCover(*config.Compute.MaxCloudCover); err != nil {
		return err
	}
	if strings.TrimSpace(config.Catalog.STACURL) == "" && config.Catalog.PostgresDSN == "" {
		return fmt.Errorf("Either stac_url or postgres_dsn must be configured")
	}
	return nil
}

// ConfigHolder guards a config that may be swapped at runtime.
type ConfigHolder struct {
	mu     sync.RWMutex
	config *Config
}

func NewConfigHolder(config *Config) *ConfigHolder {
	return &ConfigHolder{config: config}
}

func (h *ConfigHolder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *ConfigHolder) Set(config *Config) {
	h.mu.Lock()
	h.config = config
	h.mu.Unlock()
}

// Reload reads configFile and, once onReload accepts it, makes it the
// current config. On any error the current config is kept.
func (h *ConfigHolder) Reload(configFile string, onReload func(*Config) error) error {
	config := &Config{}
	if err := config.LoadConfigFile(configFile); err != nil {
		return err
	}
	if onReload != nil {
		if err := onReload(config); err != nil {
			return err
		}
	}
	h.Set(config)
	return nil
}

// WatchConfig reloads configFile into holder on SIGHUP. onReload, if set,
// is called with the new config before it is published.
func WatchConfig(infoLog, errLog *log.Logger, configFile string, holder *ConfigHolder, onReload func(*Config) error) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			infoLog.Println("Caught SIGHUP, reloading config...")
			if err := holder.Reload(configFile, onReload); err != nil {
				errLog.Printf("Error in reloading config: %v\n", err)
				continue
			}
			infoLog.Println("Config reloaded")
		}
	}()
}

// ParseISODate accepts either a full ISO timestamp or a plain date.
func ParseISODate(s string) (time.Time, error) {
	for _, layout := range []string{ISOFormat, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
