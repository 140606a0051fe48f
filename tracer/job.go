package tracer

import (
	"errors"

	"github.com/UPBGE/upbge-sub036/bssrdf"
	"github.com/UPBGE/upbge-sub036/closure"
	"github.com/UPBGE/upbge-sub036/film"
	"github.com/UPBGE/upbge-sub036/material"
	"github.com/UPBGE/upbge-sub036/types"
)

var (
	ErrNoJob          = errors.New("tracer: no job set up")
	ErrNoFilm         = errors.New("tracer: job has no film attached")
	ErrInvalidNormal  = errors.New("tracer: shading normal must be non-zero")
	ErrInvalidArena   = errors.New("tracer: closure arena capacity must be >= 0")
	ErrTracerShutdown = errors.New("tracer: tracer is shut down")
)

// Job describes a shading point and the subsurface material evaluated at it.
// Every sample of a job rebuilds the closures of the shading point from
// scratch, picks one of them and accumulates its estimate into Film.
type Job struct {
	// Shading position, normal and view direction.
	P types.Vec3
	N types.Vec3
	I types.Vec3

	Material  material.Subsurface
	MixWeight float32

	// Capacity of the per-sample closure arena.
	ArenaCapacity int

	Film *film.Film
}

// Validate the job parameters and normalize its directions.
func (j *Job) Validate() error {
	if j.Film == nil {
		return ErrNoFilm
	}
	if j.N.Len() == 0 {
		return ErrInvalidNormal
	}
	if j.ArenaCapacity < 0 {
		return ErrInvalidArena
	}
	if j.I.Len() == 0 {
		j.I = j.N
	}
	j.N = j.N.Normalize()
	j.I = j.I.Normalize()

	return j.Material.Validate()
}

// Shade creates the shader data for the job's shading point and emits the
// material closures into it.
func (j *Job) Shade() *closure.ShaderData {
	sd := closure.NewShaderData(j.P, j.N, j.I, j.ArenaCapacity)
	j.ShadeInto(sd)
	return sd
}

// ShadeInto clears sd and re-emits the material closures of the job's
// shading point into it. The arena of sd keeps its own capacity.
func (j *Job) ShadeInto(sd *closure.ShaderData) {
	sd.Reset()
	sd.P, sd.N, sd.I = j.P, j.N, j.I
	bssrdf.SetupFromMaterial(sd, j.Material, j.MixWeight)
}

// SampledRadius returns the per-channel mean free path sampled by the
// job's subsurface closure. ok is false when no subsurface closure survives
// setup.
func (j *Job) SampledRadius() (types.Vec3, bool) {
	b, ok := bssrdf.Find(j.Shade())
	if !ok || b.SampleWeight == 0 {
		return types.Vec3{}, false
	}
	return b.Radius, true
}
