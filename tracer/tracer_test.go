package tracer

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/UPBGE/upbge-sub036/bssrdf"
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/device"
	"github.com/UPBGE/upbge-sub036/film"
	"github.com/UPBGE/upbge-sub036/material"
	"github.com/UPBGE/upbge-sub036/types"
	"github.com/chewxy/math32"
)

func testJob(t *testing.T, radius types.Vec3) *Job {
	m := material.Default("test")
	m.Method = closure.MethodBurley
	m.Color = types.Splat(0.5)
	m.Radius = radius
	m.Scale = 1

	f, err := film.New(32, bssrdf.Truncate*radius.MaxComponent())
	if err != nil {
		t.Fatal(err)
	}

	return &Job{
		N:             types.XYZ(0, 0, 1),
		Material:      m,
		MixWeight:     1,
		ArenaCapacity: closure.MaxClosures,
		Film:          f,
	}
}

// Trace samples on tr in a single block and wait for completion.
func traceBlock(t *testing.T, tr Tracer, samples uint32, seed uint64) error {
	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{
		Ctx:         context.Background(),
		SampleCount: samples,
		Seed:        seed,
		DoneChan:    doneChan,
		ErrChan:     errChan,
	})

	select {
	case n := <-doneChan:
		if n != samples {
			t.Fatalf("expected %d traced samples; got %d", samples, n)
		}
		return nil
	case err := <-errChan:
		return err
	}
}

func TestSubsurfaceEstimate(t *testing.T) {
	const samples = 20000
	job := testJob(t, types.Splat(1))

	tr := NewSubsurfaceTracer("serial", device.NewSerialDevice())
	defer tr.Close()
	if err := tr.Setup(job); err != nil {
		t.Fatal(err)
	}
	if err := traceBlock(t, tr, samples, 1); err != nil {
		t.Fatal(err)
	}

	s := job.Film.Snapshot()
	if s.Samples != samples {
		t.Fatalf("expected %d samples; got %d", samples, s.Samples)
	}
	if got := s.Channels[0] + s.Channels[1] + s.Channels[2]; got != samples {
		t.Fatalf("expected %d channel selections; got %d", samples, got)
	}

	// Probes along the tangents never reach the shading plane.
	if d := math.Abs(float64(s.Misses) - samples/2); d > 5*70.8 {
		t.Fatalf("expected about %d misses; got %d", samples/2, s.Misses)
	}

	// The plane receives all of the diffused energy.
	mean := s.Mean(film.PassSubsurface)
	for i := 0; i < types.SpectrumChannels; i++ {
		if math32.Abs(mean[i]-0.5) > 0.02 {
			t.Fatalf("channel %d: expected subsurface mean 0.5; got %f", i, mean[i])
		}
	}
	if s.Sums[film.PassDiffuse] != (types.Vec3{}) {
		t.Fatalf("expected an empty diffuse pass; got %v", s.Sums[film.PassDiffuse])
	}

	if stats := tr.Stats(); stats.BlockSize != samples || stats.BlockTime <= 0 {
		t.Fatalf("expected block stats for %d samples; got %+v", samples, *stats)
	}
}

func TestSubsurfaceEstimateWithFallback(t *testing.T) {
	const samples = 40000
	job := testJob(t, types.XYZ(1e-9, 1, 1))

	tr := NewSubsurfaceTracer("cpu", device.NewCpuDevice(4))
	defer tr.Close()
	if err := tr.Setup(job); err != nil {
		t.Fatal(err)
	}
	if err := traceBlock(t, tr, samples, 7); err != nil {
		t.Fatal(err)
	}

	s := job.Film.Snapshot()
	diffuse := s.Mean(film.PassDiffuse)
	subsurface := s.Mean(film.PassSubsurface)

	if math32.Abs(diffuse[0]-0.5) > 0.03 || diffuse[1] != 0 || diffuse[2] != 0 {
		t.Fatalf("expected diffuse mean (0.5, 0, 0); got %v", diffuse)
	}
	if subsurface[0] != 0 || math32.Abs(subsurface[1]-0.5) > 0.03 || math32.Abs(subsurface[2]-0.5) > 0.03 {
		t.Fatalf("expected subsurface mean (0, 0.5, 0.5); got %v", subsurface)
	}
	if s.Channels[0] != 0 {
		t.Fatalf("expected disabled channel to never be sampled; got %d selections", s.Channels[0])
	}

	if combined := s.Mean(film.PassCombined); math32.Abs(combined[0]-0.5) > 0.03 {
		t.Fatalf("expected combined mean 0.5 for the fallback channel; got %f", combined[0])
	}
}

func TestBackendsAgree(t *testing.T) {
	const samples = 5000
	var snapshots []film.Snapshot
	for _, dev := range []device.Backend{device.NewSerialDevice(), device.NewCpuDevice(8)} {
		job := testJob(t, types.XYZ(0.5, 0.25, 1))
		tr := NewSubsurfaceTracer(dev.Name(), dev)
		if err := tr.Setup(job); err != nil {
			t.Fatal(err)
		}
		if err := traceBlock(t, tr, samples, 42); err != nil {
			t.Fatal(err)
		}
		tr.Close()
		snapshots = append(snapshots, job.Film.Snapshot())
	}

	serial, cpu := snapshots[0], snapshots[1]
	if !reflect.DeepEqual(serial.Bins, cpu.Bins) {
		t.Fatalf("expected identical histograms; got %v and %v", serial.Bins, cpu.Bins)
	}
	if serial.Channels != cpu.Channels || serial.Misses != cpu.Misses || serial.MaxRadius != cpu.MaxRadius {
		t.Fatalf("expected identical counters; got %+v and %+v", serial, cpu)
	}
	for i := 0; i < types.SpectrumChannels; i++ {
		exp, got := serial.Sums[film.PassCombined][i], cpu.Sums[film.PassCombined][i]
		if math32.Abs(exp-got) > 1e-4*math32.Abs(exp) {
			t.Fatalf("channel %d: expected combined sum %f; got %f", i, exp, got)
		}
	}
}

func TestTracerSetupErrors(t *testing.T) {
	tr := NewSubsurfaceTracer("serial", device.NewSerialDevice())
	defer tr.Close()

	type spec struct {
		mutate func(*Job)
		expErr error
	}
	specs := []spec{
		{func(j *Job) { j.Film = nil }, ErrNoFilm},
		{func(j *Job) { j.N = types.Vec3{} }, ErrInvalidNormal},
		{func(j *Job) { j.ArenaCapacity = -1 }, ErrInvalidArena},
		{func(j *Job) { j.Material.Color = types.Splat(1.5) }, nil},
		{func(j *Job) { j.Material.Radius = types.XYZ(math32.NaN(), 1, 1) }, nil},
		{func(j *Job) { j.Material.Radius = types.XYZ(math32.Inf(1), 1, 1) }, nil},
		{func(j *Job) { j.Material.Radius, j.Material.Scale = types.XYZ(10, 1, 1), 1e38 }, nil},
	}

	if err := tr.Setup(nil); err != ErrNoJob {
		t.Fatalf("expected ErrNoJob; got %v", err)
	}
	for index, s := range specs {
		job := testJob(t, types.Splat(1))
		s.mutate(job)

		err := tr.Setup(job)
		if err == nil {
			t.Fatalf("[spec %d] expected an error", index)
		}
		if s.expErr != nil && err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestTraceNonFiniteRadius(t *testing.T) {
	type spec struct {
		radius types.Vec3
		scale  float32
	}
	specs := []spec{
		{types.XYZ(math32.NaN(), 1, 1), 1},
		{types.XYZ(math32.Inf(1), 1, 1), 1},
		{types.XYZ(10, 1, 1), 1e38},
	}

	dev := device.NewSerialDevice()
	for index, s := range specs {
		// Skip validation so the kernel sees the raw parameters.
		job := testJob(t, types.Splat(1))
		job.I = job.N
		job.Material.Radius = s.radius
		job.Material.Scale = s.scale

		sd := closure.NewShaderData(job.P, job.N, job.I, job.ArenaCapacity)
		for i := uint32(0); i < 500; i++ {
			traceSample(dev, job, sd, 3, i)
		}

		snapshot := job.Film.Snapshot()
		for _, pass := range film.Passes {
			if !snapshot.Sums[pass].IsFinite() {
				t.Fatalf("[spec %d] expected finite %s sums; got %v", index, pass, snapshot.Sums[pass])
			}
		}
		if snapshot.Misses == 0 {
			t.Fatalf("[spec %d] expected non-finite probes to be counted as misses", index)
		}
	}
}

func TestShaderDataReuse(t *testing.T) {
	job := testJob(t, types.Splat(1))
	if err := job.Validate(); err != nil {
		t.Fatal(err)
	}

	sd := closure.NewShaderData(types.Vec3{}, types.XYZ(1, 0, 0), types.XYZ(1, 0, 0), job.ArenaCapacity)
	for i := 0; i < 3; i++ {
		job.ShadeInto(sd)
		exp := job.Shade()
		if sd.Closures.Len() != exp.Closures.Len() || sd.Flag != exp.Flag {
			t.Fatalf("pass %d: expected %d closures with flags %s; got %d with %s", i, exp.Closures.Len(), exp.Flag, sd.Closures.Len(), sd.Flag)
		}
		if sd.N != job.N || sd.I != job.I {
			t.Fatalf("pass %d: expected shading frame of the job; got N %v, I %v", i, sd.N, sd.I)
		}
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	tr := NewSubsurfaceTracer("serial", device.NewSerialDevice())
	if err := tr.Setup(testJob(t, types.Splat(1))); err != nil {
		t.Fatal(err)
	}
	tr.Close()

	if err := traceBlock(t, tr, 10, 1); err != ErrTracerShutdown {
		t.Fatalf("expected ErrTracerShutdown; got %v", err)
	}
}

func TestCancelledBlock(t *testing.T) {
	tr := NewSubsurfaceTracer("cpu", device.NewCpuDevice(2))
	defer tr.Close()
	job := testJob(t, types.Splat(1))
	if err := tr.Setup(job); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	tr.Enqueue(BlockRequest{Ctx: ctx, SampleCount: 1000, DoneChan: doneChan, ErrChan: errChan})
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}
	if n := job.Film.Snapshot().Samples; n != 0 {
		t.Fatalf("expected no samples for a cancelled block; got %d", n)
	}
}

func TestJobSampledRadius(t *testing.T) {
	job := testJob(t, types.XYZ(1e-9, 2, 0))
	if err := job.Validate(); err != nil {
		t.Fatal(err)
	}

	radius, ok := job.SampledRadius()
	if !ok {
		t.Fatal("expected a subsurface closure")
	}
	if radius[0] != 0 || radius[2] != 0 || math32.Abs(radius[1]-2*0.25/math32.Pi) > 1e-5 {
		t.Fatalf("expected sampled radius (0, %f, 0); got %v", 2*0.25/math32.Pi, radius)
	}

	job = testJob(t, types.Splat(1e-9))
	if _, ok = job.SampledRadius(); ok {
		t.Fatal("expected no subsurface closure when all channels are disabled")
	}
}

func TestIntersectShadingPlane(t *testing.T) {
	N := types.XYZ(0, 0, 1)
	type spec struct {
		ray    bssrdf.ProbeRay
		expHit bool
		expP   types.Vec3
	}
	specs := []spec{
		{bssrdf.ProbeRay{Origin: types.XYZ(1, 0, 2), Dir: types.XYZ(0, 0, -1), TMax: 4}, true, types.XYZ(1, 0, 0)},
		// Segment ends above the plane.
		{bssrdf.ProbeRay{Origin: types.XYZ(1, 0, 2), Dir: types.XYZ(0, 0, -1), TMax: 1}, false, types.Vec3{}},
		// Parallel to the plane.
		{bssrdf.ProbeRay{Origin: types.XYZ(0, 0, 1), Dir: types.XYZ(1, 0, 0), TMax: 4}, false, types.Vec3{}},
		// Pointing away from the plane.
		{bssrdf.ProbeRay{Origin: types.XYZ(0, 0, 1), Dir: types.XYZ(0, 0, 1), TMax: 4}, false, types.Vec3{}},
	}

	for index, s := range specs {
		p, hit := intersectShadingPlane(s.ray, types.Vec3{}, N)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if hit && !types.ApproxEqual(p, s.expP, 1e-6) {
			t.Fatalf("[spec %d] expected hit at %v; got %v", index, s.expP, p)
		}
	}
}
