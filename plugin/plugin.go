// Package plugin implements the plugin hook registry (C8): ordered
// callback lists keyed by pipeline stage, invoked before built-in stage
// logic, plus a parallel texture-decoder registry.
//
// Grounded on _examples/original_source/src/extensions/gl_extensions.c's
// name+function-pointer registration tables (SPEC_FULL.md §6), translated
// to Go slices of named closures; gogpu-gg has no plugin/extension
// registry of its own (it ships its functionality as ordinary exported
// Go packages), so this component has no direct teacher analogue beyond
// the general "small registry guarded by a mutex" shape shared with
// recording.Register (recording/registry.go).
package plugin

import (
	"sync"

	"github.com/gogpu/microgles/scheduler"
)

// MaxHooksPerStage bounds the number of callbacks registered per stage
// (spec.md §4.8: "up to four callbacks each").
const MaxHooksPerStage = 4

// Helper is the narrow submission surface a hook may use to enqueue
// additional tasks, delegating to the scheduler without exposing the
// scheduler's full API.
type Helper interface {
	Submit(workerID int, t scheduler.Task)
}

// Hook is a registered stage callback. Job is the stage's job pointer
// (e.g. *pipeline.VertexJob); hooks receive it as `any` since plugin
// cannot import pipeline without creating an import cycle (pipeline
// invokes plugin.Invoke on its job types).
type Hook func(job any, helper Helper)

type registration struct {
	name string
	fn   Hook
}

// Registry holds the five stage slots plus the texture-decoder table.
//
// Registry is safe for concurrent use: all mutation is serialized by one
// mutex, matching the teacher's registry.go pattern.
type Registry struct {
	mu    sync.RWMutex
	hooks [scheduler.Count][]registration

	decoders []decoderRegistration
}

// Decoder resolves a file's bytes to a texture id, or 0 if it cannot
// decode the file (spec.md §4.8: "decoders register through a parallel
// registry and resolve to (file) -> texture id or 0").
type Decoder func(file string) uint32

type decoderRegistration struct {
	name string
	fn   Decoder
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends fn to stage's ordered callback list under name. It is
// a no-op (and returns false) once the stage already holds
// MaxHooksPerStage callbacks, matching spec.md's "up to four" bound.
func (r *Registry) Register(stage scheduler.Stage, name string, fn Hook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hooks[stage]) >= MaxHooksPerStage {
		return false
	}
	r.hooks[stage] = append(r.hooks[stage], registration{name: name, fn: fn})
	return true
}

// Invoke calls every hook registered for stage, in registration order,
// before the caller runs its own built-in stage logic (spec.md §4.8).
func (r *Registry) Invoke(stage scheduler.Stage, job any, helper Helper) {
	r.mu.RLock()
	hooks := r.hooks[stage]
	r.mu.RUnlock()
	for _, h := range hooks {
		h.fn(job, helper)
	}
}

// Names returns the registered hook names for stage, in registration
// order (diagnostic/testing use).
func (r *Registry) Names(stage scheduler.Stage) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.hooks[stage]))
	for i, h := range r.hooks[stage] {
		names[i] = h.name
	}
	return names
}

// RegisterDecoder adds a texture-file decoder under name. Decoders are
// tried in registration order by ResolveTexture.
func (r *Registry) RegisterDecoder(name string, fn Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders = append(r.decoders, decoderRegistration{name: name, fn: fn})
}

// ResolveTexture tries each registered decoder in order, returning the
// first non-zero id. Returns 0 if no decoder claims the file.
func (r *Registry) ResolveTexture(file string) uint32 {
	r.mu.RLock()
	decoders := r.decoders
	r.mu.RUnlock()
	for _, d := range decoders {
		if id := d.fn(file); id != 0 {
			return id
		}
	}
	return 0
}
