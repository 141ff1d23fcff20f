package catalog

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-resty/resty/v2"

	proc "github.com/nci/gsky-ndvi/processor"
)

const (
	PlanetaryComputerSAS = "https://planetarycomputer.microsoft.com/api/sas/v1/token"
	tokenExpiryMargin    = 5 * time.Minute
	defaultSignWorkers   = 8
)

type sasToken struct {
	Expiry time.Time `json:"msft:expiry"`
	Token  string    `json:"token"`
}

// PlanetaryComputerSigner appends Planetary Computer SAS tokens to Azure
// blob asset hrefs. Tokens are cached per collection until shortly before
// they expire.
type PlanetaryComputerSigner struct {
	client   *resty.Client
	TokenURL string
	Workers  int
	Verbose  bool

	mu     sync.Mutex
	tokens map[string]sasToken
	now    func() time.Time
}

func NewPlanetaryComputerSigner(tokenURL string) *PlanetaryComputerSigner {
	if tokenURL == "" {
		tokenURL = PlanetaryComputerSAS
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(time.Second)

	return &PlanetaryComputerSigner{
		client:   client,
		TokenURL: strings.TrimRight(tokenURL, "/"),
		Workers:  defaultSignWorkers,
		tokens:   make(map[string]sasToken),
		now:      time.Now,
	}
}

func (s *PlanetaryComputerSigner) token(ctx context.Context, collection string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, found := s.tokens[collection]; found && s.now().Add(tokenExpiryMargin).Before(tok.Expiry) {
		return tok.Token, nil
	}

	var tok sasToken
	resp, err := s.client.R().SetContext(ctx).SetResult(&tok).Get(s.TokenURL + "/" + collection)
	if err != nil {
		return "", fmt.Errorf("SAS token request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("SAS token endpoint returned status %d", resp.StatusCode())
	}
	if tok.Token == "" {
		return "", fmt.Errorf("SAS token endpoint returned an empty token for %s", collection)
	}

	s.tokens[collection] = tok
	if s.Verbose {
		log.Printf("signer: new SAS token for %s, expires %v", collection, tok.Expiry)
	}
	return tok.Token, nil
}

func (s *PlanetaryComputerSigner) Sign(ctx context.Context, item proc.CatalogItem) (proc.CatalogItem, error) {
	signed := item
	signed.Assets = make(map[string]proc.Asset, len(item.Assets))

	var token string
	for name, asset := range item.Assets {
		href, err := url.Parse(asset.Href)
		if err != nil {
			return item, &proc.AssetResolutionError{ItemID: item.ID, Err: fmt.Errorf("asset %s: %v", name, err)}
		}

		if isAzureBlob(href) && href.RawQuery == "" {
			if token == "" {
				token, err = s.token(ctx, item.Collection)
				if err != nil {
					return item, &proc.AssetResolutionError{ItemID: item.ID, Err: err}
				}
			}
			href.RawQuery = token
			asset.Href = href.String()
		}
		signed.Assets[name] = asset
	}
	return signed, nil
}

// SignAll signs items concurrently and returns them in input order.
func (s *PlanetaryComputerSigner) SignAll(ctx context.Context, items []proc.CatalogItem) ([]proc.CatalogItem, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = defaultSignWorkers
	}

	out := make([]proc.CatalogItem, len(items))
	errs := make([]error, len(items))
	wp := workerpool.New(workers)
	for i := range items {
		i := i
		wp.Submit(func() {
			out[i], errs[i] = s.Sign(ctx, items[i])
		})
	}
	wp.StopWait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isAzureBlob(u *url.URL) bool {
	return strings.HasSuffix(u.Hostname(), ".blob.core.windows.net")
}

// NoopSigner passes items through unchanged, for catalogues with public
// asset hrefs.
type NoopSigner struct{}

func (NoopSigner) Sign(ctx context.Context, item proc.CatalogItem) (proc.CatalogItem, error) {
	return item, nil
}
