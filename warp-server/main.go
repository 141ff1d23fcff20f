package main

/* warp-server reads band windows reprojected onto the NDVI grid on
   behalf of the ndvi server. Requests are queued onto a fixed pool of
   GDAL warp workers. */

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	reuseport "github.com/kavu/go_reuseport"
	"google.golang.org/grpc"

	"github.com/nci/gsky-ndvi/utils"
	"github.com/nci/gsky-ndvi/worker/gdalwarp"
	"github.com/nci/gsky-ndvi/worker/warpservice"
)

func main() {
	port := flag.Int("p", 6000, "gRPC server listening port.")
	poolSize := flag.Int("n", 8, "Maximum number of requests handled concurrently.")
	queueSize := flag.Int("q", 256, "Maximum number of queued requests.")
	resampling := flag.String("r", "near", "GDAL resampling method.")
	maskZero := flag.Bool("mask_zero", false, "Read 0 as nodata when the source declares none.")
	maxMsgSize := flag.Int("max_msg_size", utils.DefaultRecvMsgSize, "Maximum gRPC message size in bytes.")
	useReusePort := flag.Bool("reuseport", false, "Listen with SO_REUSEPORT.")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	reader := gdalwarp.NewWarpReader()
	reader.Resampling = *resampling
	reader.MaskZero = *maskZero
	reader.Verbose = *debug

	p := warpservice.CreateProcessPool(*poolSize, *queueSize, reader, *debug)

	s := grpc.NewServer(grpc.MaxSendMsgSize(*maxMsgSize), grpc.MaxRecvMsgSize(*maxMsgSize))
	warpservice.RegisterWarpServer(s, &warpservice.Server{Pool: p})

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-signals
		s.GracefulStop()
		p.DeleteProcessPool()
		os.Exit(1)
	}()

	addr := fmt.Sprintf(":%d", *port)
	var lis net.Listener
	var err error
	if *useReusePort {
		lis, err = reuseport.Listen("tcp", addr)
	} else {
		lis, err = net.Listen("tcp", addr)
	}
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	log.Printf("warp server listening on %s with %d workers", addr, *poolSize)
	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
