package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/UPBGE/upbge-sub036/bssrdf"
	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/film"
	"github.com/UPBGE/upbge-sub036/log"
	"github.com/UPBGE/upbge-sub036/tracer"
	"github.com/UPBGE/upbge-sub036/types"
)

type Renderer interface {
	// Trace all samples of the job and collect statistics.
	Render(ctx context.Context) error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// The default renderer splits the samples of a job across a set of tracers,
// one per device.
type defaultRenderer struct {
	sync.Mutex

	logger log.Logger

	options   Options
	scheduler tracer.BlockScheduler
	job       *tracer.Job

	devices          []device.Backend
	tracers          []tracer.Tracer
	blockAssignments []uint32

	// Mean free path of the job's subsurface closure; used to derive the
	// expected radius histogram.
	radius        types.Vec3
	hasSubsurface bool

	stats  FrameStats
	closed bool
}

// Create a new renderer that traces job on the given devices. Devices whose
// name matches an entry of the options blacklist are skipped. The renderer
// attaches a new film to the job.
func NewDefault(job *tracer.Job, scheduler tracer.BlockScheduler, devices []device.Backend, opts Options) (Renderer, error) {
	opts.applyDefaults()
	if opts.Samples == 0 {
		return nil, ErrNoSamples
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scheduler: scheduler,
		job:       job,
	}

	// Size the radius histogram after the truncation radius of the widest
	// channel. The material must be valid for that radius to be finite.
	if err := job.Material.Validate(); err != nil {
		return nil, err
	}
	r.radius, r.hasSubsurface = job.SampledRadius()
	histogramRange := float32(1.0)
	if r.hasSubsurface {
		histogramRange = bssrdf.Truncate * r.radius.MaxComponent()
	} else {
		r.logger.Warningf("material %q emits no subsurface closure; radius histogram disabled", job.Material.Name)
	}

	var err error
	job.Film, err = film.New(opts.HistogramBins, histogramRange)
	if err != nil {
		return nil, err
	}
	if err = job.Validate(); err != nil {
		return nil, err
	}

	for _, dev := range FilterDevices(devices, opts.BlackListedDevices) {
		id := fmt.Sprintf("%s (%s)", dev.Type(), dev.Name())
		tr := tracer.NewSubsurfaceTracer(id, dev)
		if err = tr.Setup(job); err != nil {
			tr.Close()
			r.logger.Warningf("skipping device %s due to setup error: %s", dev.Name(), err.Error())
			continue
		}

		r.logger.Infof(`attaching tracer for device "%s"`, dev.Name())
		r.devices = append(r.devices, dev)
		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	return r, nil
}

// Remove devices whose name contains any of the blacklisted values.
func FilterDevices(devices []device.Backend, blackList []string) []device.Backend {
	filteredList := make([]device.Backend, 0, len(devices))
	for _, dev := range devices {
		keep := true
		for _, text := range blackList {
			if text != "" && strings.Contains(dev.Name(), text) {
				keep = false
				break
			}
		}
		if keep {
			filteredList = append(filteredList, dev)
		}
	}
	return filteredList
}

func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
	r.devices = nil
	r.closed = true
}

func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()
	return r.stats
}

func (r *defaultRenderer) Render(ctx context.Context) error {
	r.Lock()
	defer r.Unlock()

	if r.closed {
		return ErrRendererClose
	}

	start := time.Now()
	r.job.Film.Reset()

	batches := r.options.Batches
	batchSize := r.options.Samples / batches
	var offset uint32
	for batch := uint32(0); batch < batches; batch++ {
		size := batchSize
		if batch == batches-1 {
			size = r.options.Samples - offset
		}

		if err := r.renderBatch(ctx, offset, size); err != nil {
			return err
		}
		offset += size
		r.logger.Debugf("batch %d/%d: block assignment %v", batch+1, batches, r.blockAssignments)
	}

	// Make sure all film writes have landed before reading it back
	for _, dev := range r.devices {
		dev.Barrier()
	}

	r.collectStats(time.Since(start))
	return nil
}

// Split a batch across tracers and wait for all blocks to complete.
func (r *defaultRenderer) renderBatch(ctx context.Context, offset, size uint32) error {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, size)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	pending := 0
	for idx, tr := range r.tracers {
		blockSize := r.blockAssignments[idx]
		if blockSize == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			Ctx:          ctx,
			SampleOffset: offset,
			SampleCount:  blockSize,
			Seed:         r.options.Seed,
			DoneChan:     doneChan,
			ErrChan:      errChan,
		})
		offset += blockSize
		pending++
	}

	var firstErr error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		if errors.Is(firstErr, context.Canceled) || errors.Is(firstErr, context.DeadlineExceeded) {
			return ErrInterrupted
		}
		return firstErr
	}
	return nil
}

func (r *defaultRenderer) collectStats(renderTime time.Duration) {
	var batchSize uint32
	for _, size := range r.blockAssignments {
		batchSize += size
	}

	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		Film:       r.job.Film.Snapshot(),
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		stat := TracerStat{
			Id:        tr.Id(),
			IsPrimary: idx == 0,
			BlockSize: r.blockAssignments[idx],
		}
		if batchSize > 0 {
			stat.BatchPercent = 100.0 * float32(stat.BlockSize) / float32(batchSize)
		}
		if stat.BlockSize > 0 {
			stat.BlockTime = tr.Stats().BlockTime
		}
		r.stats.Tracers[idx] = stat
	}

	if !r.hasSubsurface {
		return
	}

	var probes uint32
	for _, c := range r.stats.Film.Bins {
		probes += c
	}
	expected := r.job.Film.Histogram().Expected(func(radius float32) float32 {
		return bssrdf.CDFSpectrum(r.radius, radius)
	}, probes)
	r.stats.Histogram = analyseHistogram(r.stats.Film.Bins, expected)
}
