package warpservice

import (
	"context"
	"fmt"
)

type Server struct {
	UnimplementedWarpServer
	Pool *ProcessPool
}

func (s *Server) ReadBand(ctx context.Context, in *Granule) (*Result, error) {
	if _, _, _, err := in.read(); err != nil {
		return nil, fmt.Errorf("invalid granule: %v", err)
	}

	// Buffered so a worker never blocks on a caller that has gone away.
	rChan := make(chan *Result, 1)
	errChan := make(chan error, 1)

	s.Pool.AddQueue(&Task{Context: ctx, Payload: in, Resp: rChan, Error: errChan})

	select {
	case out := <-rChan:
		return out, nil
	case err := <-errChan:
		return nil, fmt.Errorf("Error in ops: %v", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
