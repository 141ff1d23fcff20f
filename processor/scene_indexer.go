package processor

import (
	"context"
	"fmt"
	"log"
	"time"
)

// SceneIndexer is the catalogue stage of the pipeline. Each request read
// from In is searched and the matching items are streamed to Out. An item
// returned by more than one request is emitted once.
type SceneIndexer struct {
	Context    context.Context
	In         chan *SearchRequest
	Out        chan CatalogItem
	Error      chan error
	Searcher   Searcher
	Filter     func(CatalogItem) (bool, error)
	Verbose    bool
	NumFound   int
	NumDropped int
	Duration   time.Duration
}

func NewSceneIndexer(ctx context.Context, searcher Searcher, errChan chan error) *SceneIndexer {
	return &SceneIndexer{
		Context:  ctx,
		In:       make(chan *SearchRequest, 1),
		Out:      make(chan CatalogItem, 100),
		Error:    errChan,
		Searcher: searcher,
	}
}

func (p *SceneIndexer) Run() {
	defer close(p.Out)
	start := time.Now()
	defer func() { p.Duration = time.Since(start) }()
	seen := make(map[string]struct{})

	for req := range p.In {
		select {
		case <-p.Context.Done():
			p.Error <- fmt.Errorf("Scene indexer context has been cancelled: %v", p.Context.Err())
			return
		default:
			items, err := p.Searcher.Search(p.Context, *req)
			if err != nil {
				p.Error <- err
				return
			}
			for _, item := range items {
				if _, dup := seen[item.ID]; dup {
					continue
				}
				seen[item.ID] = struct{}{}
				p.NumFound++

				if p.Filter != nil {
					keep, err := p.Filter(item)
					if err != nil {
						p.Error <- fmt.Errorf("scene filter on %s: %v", item.ID, err)
						return
					}
					if !keep {
						p.NumDropped++
						continue
					}
				}
				p.Out <- item
			}

			if p.Verbose {
				log.Printf("indexer: %s %v found %d items, %d filtered out", req.Collection, req.DateRange(), len(items), p.NumDropped)
			}
		}
	}
}
