package chart

import (
	"context"
	"runtime"
	"sync"
)

// Request carries one render job's inputs.
type Request struct {
	Symbol string
	Closes []float64
	Fast   []float64
	Slow   []float64
	Dates  []string
}

type renderResult struct {
	png []byte
	err error
}

type renderJob struct {
	req   Request
	reply chan renderResult
}

// Pool runs chart encoding on a fixed set of workers so that CPU-heavy PNG
// generation never executes on a goroutine doing network I/O.
type Pool struct {
	jobs chan renderJob
	wg   sync.WaitGroup
}

// NewPool starts the render workers. workers <= 0 uses NumCPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan renderJob)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		png, err := Render(j.req.Symbol, j.req.Closes, j.req.Fast, j.req.Slow, j.req.Dates)
		j.reply <- renderResult{png: png, err: err}
	}
}

// Render submits a job and blocks until a worker has produced the image
// or ctx is cancelled.
func (p *Pool) Render(ctx context.Context, req Request) ([]byte, error) {
	reply := make(chan renderResult, 1)
	select {
	case p.jobs <- renderJob{req: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.png, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the workers after in-flight jobs finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
