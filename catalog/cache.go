package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/nci/gomemcache/memcache"

	proc "github.com/nci/gsky-ndvi/processor"
)

// CachedSearcher memoises search results in memcached, keyed by the md5
// of the normalised request.
type CachedSearcher struct {
	Searcher   proc.Searcher
	Expiration time.Duration
	Verbose    bool
	mc         *memcache.Client
}

func NewCachedSearcher(searcher proc.Searcher, servers []string, expiration time.Duration) *CachedSearcher {
	return &CachedSearcher{
		Searcher:   searcher,
		Expiration: expiration,
		mc:         memcache.New(servers...),
	}
}

func searchCacheKey(req proc.SearchRequest) string {
	cloud := "none"
	if req.MaxCloudCover != nil {
		cloud = fmt.Sprintf("%g", *req.MaxCloudCover)
	}
	raw := fmt.Sprintf("%s|%.6f,%.6f,%.6f,%.6f|%s|%s|%d",
		req.Collection, req.BBox.Min[0], req.BBox.Min[1], req.BBox.Max[0], req.BBox.Max[1],
		req.DateRange(), cloud, req.Limit)
	sum := md5.Sum([]byte(raw))
	return "ndvi-search-" + hex.EncodeToString(sum[:])
}

func (c *CachedSearcher) Search(ctx context.Context, req proc.SearchRequest) ([]proc.CatalogItem, error) {
	key := searchCacheKey(req)

	it, err := c.mc.Get(key)
	if err == nil {
		items, err := decodeItemCollection(it.Value)
		if err == nil {
			if c.Verbose {
				log.Printf("search cache hit: %s (%d items)", key, len(items))
			}
			return items, nil
		}
		log.Printf("search cache: discarding undecodable entry %s: %v", key, err)
	} else if err != memcache.ErrCacheMiss {
		log.Printf("search cache get error: %v", err)
	}

	items, err := c.Searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, err := encodeItemCollection(items)
	if err != nil {
		log.Printf("search cache encode error: %v", err)
		return items, nil
	}
	err = c.mc.Set(&memcache.Item{Key: key, Value: payload, Expiration: int32(c.Expiration / time.Second)})
	if err != nil {
		log.Printf("search cache set error: %v", err)
	}
	return items, nil
}
