package warpservice

import (
	"context"
	"fmt"
	"log"

	proc "github.com/nci/gsky-ndvi/processor"
)

type Task struct {
	Context context.Context
	Payload *Granule
	Resp    chan *Result
	Error   chan error
}

// ProcessPool runs band reads on a fixed number of workers fed from a
// bounded queue.
type ProcessPool struct {
	TaskQueue chan *Task
	Reader    proc.BandReader
	Size      int
	debug     bool
	quit      chan struct{}
}

func (p *ProcessPool) AddQueue(task *Task) {
	select {
	case p.TaskQueue <- task:
	default:
		task.Error <- fmt.Errorf("Pool TaskQueue is full")
	}
}

func (p *ProcessPool) worker(id int) {
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.TaskQueue:
			if err := task.Context.Err(); err != nil {
				task.Error <- err
				continue
			}
			src, grid, w, err := task.Payload.read()
			if err != nil {
				task.Error <- err
				continue
			}
			data, err := p.Reader.ReadBand(task.Context, src, grid, w)
			if err != nil {
				if p.debug {
					log.Printf("worker %d: %s %s %s: %v", id, src.ItemID, src.Band, w, err)
				}
				task.Error <- err
				continue
			}
			task.Resp <- &Result{Data: data}
		}
	}
}

func (p *ProcessPool) DeleteProcessPool() {
	close(p.quit)
}

func CreateProcessPool(n, queueSize int, reader proc.BandReader, debug bool) *ProcessPool {
	if n < 1 {
		n = 1
	}
	if queueSize < n {
		queueSize = n
	}
	p := &ProcessPool{
		TaskQueue: make(chan *Task, queueSize),
		Reader:    reader,
		Size:      n,
		debug:     debug,
		quit:      make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}
