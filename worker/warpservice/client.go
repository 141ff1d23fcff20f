package warpservice

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"

	"google.golang.org/grpc"

	proc "github.com/nci/gsky-ndvi/processor"
)

// ClientReader is a BandReader backed by a set of remote warp workers.
// Reads of the same asset are pinned to the same worker so its GDAL
// block cache is reused.
type ClientReader struct {
	conns   []*grpc.ClientConn
	clients []WarpClient
	limiter *proc.ConcLimiter
}

func NewClientReader(addrs []string, concLimit int, maxRecvMsgSize int) (*ClientReader, error) {
	opts := []grpc.DialOption{
		grpc.WithInsecure(),
	}
	if maxRecvMsgSize > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)))
	}

	idx := rand.Perm(len(addrs))
	c := &ClientReader{}
	for _, i := range idx {
		conn, err := grpc.Dial(addrs[i], opts...)
		if err != nil {
			log.Printf("gRPC connection problem: %v", err)
			continue
		}
		c.conns = append(c.conns, conn)
		c.clients = append(c.clients, NewWarpClient(conn))
	}
	if len(c.conns) == 0 {
		return nil, fmt.Errorf("All gRPC servers offline")
	}
	if concLimit <= 0 {
		concLimit = 16
	}
	c.limiter = proc.NewConcLimiter(concLimit * len(c.conns))
	return c, nil
}

func (c *ClientReader) Close() {
	for _, conn := range c.conns {
		conn.Close()
	}
}

func (c *ClientReader) shard(href string) WarpClient {
	h := fnv.New32a()
	h.Write([]byte(href))
	return c.clients[int(h.Sum32()%uint32(len(c.clients)))]
}

func (c *ClientReader) ReadBand(ctx context.Context, src proc.BandSource, grid proc.GridSpec, w proc.Window) ([]float64, error) {
	if err := c.limiter.Increase(ctx); err != nil {
		return nil, err
	}
	defer c.limiter.Decrease()

	out, err := c.shard(src.Href).ReadBand(ctx, newGranule(src, grid, w))
	if err != nil {
		return nil, err
	}
	if n := len(out.GetData()); n != w.Size() {
		return nil, fmt.Errorf("expected %d pixels, got %d", w.Size(), n)
	}
	return out.GetData(), nil
}
