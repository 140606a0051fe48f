package tracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/log"
)

type subsurfaceTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device device.Backend

	// The tracer id.
	id string

	// The job traced by this tracer.
	job *Job

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last traced block.
	stats *Stats
}

// Create a new tracer that runs subsurface sampling kernels on dev.
func NewSubsurfaceTracer(id string, dev device.Backend) Tracer {
	loggerName := fmt.Sprintf("subsurface tracer (%s)", dev.Name())

	return &subsurfaceTracer{
		logger:       log.New(loggerName),
		device:       dev,
		id:           id,
		blockReqChan: make(chan BlockRequest),
		stats:        &Stats{},
	}
}

// Get tracer id.
func (tr *subsurfaceTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *subsurfaceTracer) SpeedEstimate() float32 {
	return float32(tr.device.Speed())
}

// Attach a job to the tracer and start its worker.
func (tr *subsurfaceTracer) Setup(job *Job) error {
	tr.Lock()
	defer tr.Unlock()

	if job == nil {
		return ErrNoJob
	}
	if err := job.Validate(); err != nil {
		return err
	}
	tr.job = job

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	tr.logger.Debugf("tracing material %q with %s", job.Material.Name, job.Material.Method)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *subsurfaceTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	tr.job = nil
}

// Enqueue block request. The request fails if the worker is not running.
func (tr *subsurfaceTracer) Enqueue(blockReq BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()

	if !running {
		tr.logger.Error("request processor is not running")
		blockReq.ErrChan <- ErrTracerShutdown
		return
	}
	tr.blockReqChan <- blockReq
}

// Retrieve last block statistics.
func (tr *subsurfaceTracer) Stats() *Stats {
	return tr.stats
}

// Spawn a go-routine to process block requests.
func (tr *subsurfaceTracer) startWorker() {
	tr.closeChan = make(chan struct{})
	closeChan := tr.closeChan

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Trace block and reply with our completion status
				err = tr.traceBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockSize = blockReq.SampleCount
				tr.stats.BlockTime = time.Since(startTime)
				tr.logger.Debugf("traced %d samples in %s", blockReq.SampleCount, tr.stats.BlockTime)

				blockReq.DoneChan <- blockReq.SampleCount
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Trace block.
func (tr *subsurfaceTracer) traceBlock(blockReq *BlockRequest) error {
	job := tr.job
	if job == nil {
		return ErrNoJob
	}

	ctx := blockReq.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	shaders := sync.Pool{
		New: func() any {
			return closure.NewShaderData(job.P, job.N, job.I, job.ArenaCapacity)
		},
	}
	err := tr.device.Launch(ctx, int(blockReq.SampleCount), func(lane int) error {
		sd := shaders.Get().(*closure.ShaderData)
		traceSample(tr.device, job, sd, blockReq.Seed, blockReq.SampleOffset+uint32(lane))
		shaders.Put(sd)
		return nil
	})
	if err != nil {
		return err
	}

	job.Film.AddSamples(blockReq.SampleCount)
	return nil
}
