package processor

import "context"

// TimeSplitter breaks a search interval into windows of MonthStep months
// so that long ranges stay within the catalogue's paging limits.
type TimeSplitter struct {
	Context   context.Context
	In        chan *SearchRequest
	Out       chan *SearchRequest
	Error     chan error
	MonthStep int
}

func NewTimeSplitter(ctx context.Context, monthStep int, errChan chan error) *TimeSplitter {
	return &TimeSplitter{
		Context:   ctx,
		In:        make(chan *SearchRequest, 1),
		Out:       make(chan *SearchRequest, 100),
		Error:     errChan,
		MonthStep: monthStep,
	}
}

func (ts *TimeSplitter) Run() {
	defer close(ts.Out)
	for req := range ts.In {
		if ts.MonthStep <= 0 || !req.StartTime.Before(req.EndTime) {
			if !ts.send(req) {
				return
			}
			continue
		}
		for t := req.StartTime; t.Before(req.EndTime); t = t.AddDate(0, ts.MonthStep, 0) {
			end := t.AddDate(0, ts.MonthStep, 0)
			if end.After(req.EndTime) {
				end = req.EndTime
			}
			sub := *req
			sub.StartTime = t
			sub.EndTime = end
			if !ts.send(&sub) {
				return
			}
		}
	}
}

func (ts *TimeSplitter) send(req *SearchRequest) bool {
	select {
	case ts.Out <- req:
		return true
	case <-ts.Context.Done():
		return false
	}
}
