// Package gles exposes Context: the narrow internal command surface the
// pipeline core is driven through. A real OpenGL ES 1.1 client library
// (entry-point dispatch, enum validation on the wire, EGL/window-system
// binding) is the out-of-scope collaborator spec.md §1 describes; Context
// is what that collaborator calls into after translating GL calls to
// already-validated Go values.
//
// Grounded on gogpu-gg's Context (context.go) for the "one struct owns
// every subsystem, constructed once via functional options" shape,
// generalized from gg's single-threaded 2D canvas to the multi-worker
// pipeline this core drives.
package gles

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/gogpu/microgles"
	"github.com/gogpu/microgles/cmdring"
	"github.com/gogpu/microgles/draw"
	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/internal/memtrack"
	"github.com/gogpu/microgles/matrix"
	"github.com/gogpu/microgles/pipeline"
	"github.com/gogpu/microgles/plugin"
	"github.com/gogpu/microgles/rcontext"
	"github.com/gogpu/microgles/scheduler"
)

// apiWorker is the sentinel worker id meaning "the API (recording) thread",
// matching scheduler.Submit's "negative falls back to worker 0" convention.
const apiWorker = -1

// config holds NewContext's resolved settings before construction. Each
// field defaults from the environment variable spec.md §6 names, then
// Option values override it.
type config struct {
	threads   int
	tileSize  int
	colorSpec glenum.ColorSpec
	logLevel  slog.Level
	profile   bool
}

func defaultConfig() config {
	c := config{
		threads:   0, // 0 -> scheduler.New uses GOMAXPROCS
		tileSize:  framebuffer.DefaultTileSize,
		colorSpec: glenum.ARGB8888,
		logLevel:  slog.LevelInfo,
	}
	if v, ok := os.LookupEnv("MICROGLES_THREADS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.threads = n
		}
	}
	if v, ok := os.LookupEnv("MICROGLES_TILE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.tileSize = n
		}
	}
	if v, ok := os.LookupEnv("MICROGLES_COLOR_SPEC"); ok {
		if v == "XRGB8888" {
			c.colorSpec = glenum.XRGB8888
		}
	}
	if v, ok := os.LookupEnv("MICROGLES_LOG_LEVEL"); ok {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			c.logLevel = lvl
		}
	}
	if v, ok := os.LookupEnv("MICROGLES_PROFILE"); ok {
		c.profile = v == "1" || v == "true"
	}
	return c
}

// Option configures a Context at construction time (spec.md §6's
// environment-variable-backed configuration surface, overridable per call).
type Option func(*config)

// WithThreads overrides the worker thread count (0 selects GOMAXPROCS).
func WithThreads(n int) Option {
	return func(c *config) { c.threads = n }
}

// WithTileSize overrides the framebuffer tile edge in pixels.
func WithTileSize(n int) Option {
	return func(c *config) { c.tileSize = n }
}

// WithColorSpec overrides the framebuffer color plane interpretation.
func WithColorSpec(spec glenum.ColorSpec) Option {
	return func(c *config) { c.colorSpec = spec }
}

// WithLogLevel overrides the minimum log severity emitted by the module
// logger (applied process-wide via microgles.SetLogger).
func WithLogLevel(lvl slog.Level) Option {
	return func(c *config) { c.logLevel = lvl }
}

// WithProfile enables the scheduler's per-stage task/steal/cycle counters.
func WithProfile(enabled bool) Option {
	return func(c *config) { c.profile = enabled }
}

// Context is the distilled internal command set's receiver: every
// component the pipeline needs (rendering context, scheduler, pipeline,
// plugin registry, draw front-end, command ring, default framebuffer),
// wired together and exposed as the GL ES 1.1 entry points spec.md §6
// lists.
type Context struct {
	RC       *rcontext.RenderContext
	Sched    *scheduler.Scheduler
	Pipeline *pipeline.Pipeline
	Plugins  *plugin.Registry
	Draw     *draw.FrontEnd
	Tracker  *memtrack.Tracker

	defaultFB *framebuffer.Framebuffer
	ring      *cmdring.Ring

	clientActiveTexture int
}

// NewContext creates a Context rendering into a newly allocated default
// framebuffer of the given dimensions. Options override the environment
// variable defaults of spec.md §6's configuration table.
//
// A negative return in the original C API ("logger/memory init failures
// surface as negative values", spec.md §6) is this function's error
// return in Go's idiom.
func NewContext(width, height int, opts ...Option) (*Context, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.threads < 0 {
		return nil, ErrInvalidThreadCount
	}
	if cfg.tileSize <= 0 {
		return nil, ErrInvalidTileSize
	}

	microgles.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel})))

	sched := scheduler.New(cfg.threads, cfg.profile)
	rc := rcontext.New(sched.Workers())
	rc.Viewport.Width, rc.Viewport.Height = width, height
	tracker := memtrack.New(nil)
	plugins := plugin.New()
	p := pipeline.New(rc, sched, plugins, tracker)
	fb := framebuffer.New(width, height, cfg.tileSize, cfg.colorSpec)
	d := draw.New(rc, p, fb)

	ctx := &Context{
		RC:        rc,
		Sched:     sched,
		Pipeline:  p,
		Plugins:   plugins,
		Draw:      d,
		Tracker:   tracker,
		defaultFB: fb,
		ring:      cmdring.New(),
	}
	microgles.Logger().Info("context created", "width", width, "height", height, "workers", sched.Workers(), "tile_size", cfg.tileSize)
	return ctx, nil
}

// Destroy waits for all in-flight work to complete and releases the
// default framebuffer (spec.md §7: "shutdown waits for all in-flight work
// before freeing the context").
func (c *Context) Destroy() {
	c.Finish()
	c.defaultFB.Release()
	c.Sched.Close()
	leaks := c.Tracker.Shutdown()
	microgles.Logger().Info("context destroyed", "net_allocated", c.Tracker.Current(), "leaks", len(leaks))
}

// DefaultFramebuffer returns the framebuffer created with this context.
func (c *Context) DefaultFramebuffer() *framebuffer.Framebuffer {
	return c.defaultFB
}

// RegisterHook exposes the plugin registry's stage-hook registration
// (spec.md §4.8) on Context so a caller need not reach into c.Plugins.
func (c *Context) RegisterHook(stage scheduler.Stage, name string, fn plugin.Hook) bool {
	return c.Plugins.Register(stage, name, fn)
}

// RegisterDecoder exposes the plugin registry's texture-decoder
// registration (spec.md §4.8).
func (c *Context) RegisterDecoder(name string, fn plugin.Decoder) {
	c.Plugins.RegisterDecoder(name, fn)
}

// --- Capabilities (Enable/Disable/IsEnabled) ---

// Capability enumerates the Enable/Disable/IsEnabled tokens the core
// backs with real state (spec.md §6). Capabilities without backing state
// in rcontext (e.g. GL_COLOR_MATERIAL) are out of the core's scope.
type Capability uint8

const (
	CapAlphaTest Capability = iota
	CapBlend
	CapCullFace
	CapDepthTest
	CapDither
	CapFog
	CapLighting
	CapNormalize
	CapScissorTest
	CapStencilTest
	CapTexture2D
	CapLight0
	CapLight1
	CapLight2
	CapLight3
	CapLight4
	CapLight5
	CapLight6
	CapLight7
)

// Enable turns cap on.
func (c *Context) Enable(cap Capability) { c.setCapability(cap, true) }

// Disable turns cap off.
func (c *Context) Disable(cap Capability) { c.setCapability(cap, false) }

func (c *Context) setCapability(cap Capability, on bool) {
	rc := c.RC
	switch {
	case cap == CapAlphaTest:
		rc.AlphaTest.Enabled.Set(on)
		rc.AlphaTest.Touch()
	case cap == CapBlend:
		rc.Blend.Enabled.Set(on)
		rc.Blend.Touch()
	case cap == CapCullFace:
		rc.Cull.Enabled.Set(on)
		rc.Cull.Touch()
	case cap == CapDepthTest:
		rc.Depth.TestEnabled.Set(on)
		rc.Depth.Touch()
	case cap == CapDither:
		rc.Dither.Set(on)
	case cap == CapFog:
		rc.Fog.Enabled.Set(on)
		rc.Fog.Touch()
	case cap == CapLighting:
		rc.Lighting.Set(on)
	case cap == CapNormalize:
		rc.Normalize.Set(on)
	case cap == CapScissorTest:
		rc.Scissor.Enabled.Set(on)
	case cap == CapStencilTest:
		rc.Stencil[0].Enabled.Set(on)
		rc.Stencil[0].Touch()
		rc.Stencil[1].Enabled.Set(on)
		rc.Stencil[1].Touch()
	case cap == CapTexture2D:
		rc.Texture2D.Set(on)
	case cap >= CapLight0 && cap <= CapLight7:
		i := int(cap - CapLight0)
		rc.Lights[i].Enabled.Set(on)
		rc.Lights[i].Touch()
	}
}

// IsEnabled reports cap's current state.
func (c *Context) IsEnabled(cap Capability) bool {
	rc := c.RC
	switch {
	case cap == CapAlphaTest:
		v, _ := rc.AlphaTest.Enabled.Get()
		return v
	case cap == CapBlend:
		v, _ := rc.Blend.Enabled.Get()
		return v
	case cap == CapCullFace:
		v, _ := rc.Cull.Enabled.Get()
		return v
	case cap == CapDepthTest:
		v, _ := rc.Depth.TestEnabled.Get()
		return v
	case cap == CapDither:
		v, _ := rc.Dither.Get()
		return v
	case cap == CapFog:
		v, _ := rc.Fog.Enabled.Get()
		return v
	case cap == CapLighting:
		v, _ := rc.Lighting.Get()
		return v
	case cap == CapNormalize:
		v, _ := rc.Normalize.Get()
		return v
	case cap == CapScissorTest:
		v, _ := rc.Scissor.Enabled.Get()
		return v
	case cap == CapStencilTest:
		v, _ := rc.Stencil[0].Enabled.Get()
		return v
	case cap == CapTexture2D:
		v, _ := rc.Texture2D.Get()
		return v
	case cap >= CapLight0 && cap <= CapLight7:
		v, _ := rc.Lights[cap-CapLight0].Enabled.Get()
		return v
	}
	return false
}

// --- Matrix stack ---

// MatrixMode selects the matrix group subsequent matrix calls apply to.
func (c *Context) MatrixMode(mode glenum.MatrixMode) {
	c.RC.CurrentMatrixMode = mode
}

func (c *Context) activeGroup() *rcontext.MatrixGroup {
	switch c.RC.CurrentMatrixMode {
	case glenum.ProjectionMode:
		return c.RC.Projection
	case glenum.TextureMode:
		return c.RC.TextureMat
	default:
		return c.RC.Modelview
	}
}

// LoadIdentity replaces the current matrix with the identity.
func (c *Context) LoadIdentity() {
	g := c.activeGroup()
	g.Stack.Load(matrix.Identity())
	g.Touch()
}

// LoadMatrix replaces the current matrix with m.
func (c *Context) LoadMatrix(m matrix.Mat4) {
	g := c.activeGroup()
	g.Stack.Load(m)
	g.Touch()
}

// MultMatrix post-multiplies the current matrix by m.
func (c *Context) MultMatrix(m matrix.Mat4) {
	g := c.activeGroup()
	g.Stack.Mult(m)
	g.Touch()
}

// Translate post-multiplies the current matrix by a translation.
func (c *Context) Translate(x, y, z float32) { c.MultMatrix(matrix.Translate(x, y, z)) }

// Scale post-multiplies the current matrix by a scale.
func (c *Context) Scale(x, y, z float32) { c.MultMatrix(matrix.Scale(x, y, z)) }

// Rotate post-multiplies the current matrix by a rotation of angleDeg
// degrees about (x,y,z).
func (c *Context) Rotate(angleDeg, x, y, z float32) { c.MultMatrix(matrix.Rotate(angleDeg, x, y, z)) }

// Frustum post-multiplies the current matrix by a perspective projection.
func (c *Context) Frustum(left, right, bottom, top, near, far float32) {
	c.MultMatrix(matrix.Frustum(left, right, bottom, top, near, far))
}

// Ortho post-multiplies the current matrix by an orthographic projection.
func (c *Context) Ortho(left, right, bottom, top, near, far float32) {
	c.MultMatrix(matrix.Ortho(left, right, bottom, top, near, far))
}

// PushMatrix duplicates the current matrix onto a new stack level.
// StackOverflow is recorded via SetError and the stack is left unchanged
// if the group is already at its configured depth (spec.md §4.4).
func (c *Context) PushMatrix() {
	g := c.activeGroup()
	if err := g.Stack.Push(); err != nil {
		c.RC.SetError(apiWorker, glenum.StackOverflow)
	}
}

// PopMatrix discards the top stack level. StackUnderflow is recorded via
// SetError if only the base entry remains.
func (c *Context) PopMatrix() {
	g := c.activeGroup()
	if err := g.Stack.Pop(); err != nil {
		c.RC.SetError(apiWorker, glenum.StackUnderflow)
		return
	}
	g.Touch()
}

// --- Vertex attribute "current" state and simple scalar/struct setters ---

// Color4 sets the current color used for vertices with the color array
// disabled.
func (c *Context) Color4(r, g, b, a float32) {
	c.Draw.CurrentColor = [4]float32{r, g, b, a}
}

// Normal3 sets the current normal used for vertices with the normal array
// disabled.
func (c *Context) Normal3(x, y, z float32) {
	c.Draw.CurrentNormal = [3]float32{x, y, z}
}

// MultiTexCoord4 sets the current texture coordinate for unit (only unit 0
// feeds the core's single-texture fragment path; others are accepted and
// stored only).
func (c *Context) MultiTexCoord4(unit int, s, t, r, q float32) {
	if unit == 0 {
		c.Draw.CurrentTexCoord = [4]float32{s, t, r, q}
	}
}

// PointSize sets the current point size used when the point-size array is
// absent.
func (c *Context) PointSize(size float32) {
	c.RC.PointSize = size
	c.Draw.CurrentPointSize = size
}

// LineWidth sets the rasterized line width (stored; the core's Triangles
// path does not consume it).
func (c *Context) LineWidth(width float32) {
	c.RC.LineWidth = width
}

// Viewport sets the viewport transform rectangle.
func (c *Context) Viewport(x, y, width, height int) {
	c.RC.Viewport.X, c.RC.Viewport.Y = x, y
	c.RC.Viewport.Width, c.RC.Viewport.Height = width, height
}

// DepthRange sets the viewport's near/far depth-range mapping.
func (c *Context) DepthRange(near, far float32) {
	c.RC.Viewport.Near, c.RC.Viewport.Far = near, far
}

// Scissor sets the scissor test rectangle.
func (c *Context) Scissor(x, y, width, height int) {
	c.RC.Scissor.X, c.RC.Scissor.Y = x, y
	c.RC.Scissor.Width, c.RC.Scissor.Height = width, height
}

// AlphaFunc sets the alpha test function and reference value.
func (c *Context) AlphaFunc(fn glenum.CompareFunc, ref float32) {
	c.RC.AlphaTest.Func = fn
	c.RC.AlphaTest.Ref = ref
	c.RC.AlphaTest.Touch()
}

// BlendFunc sets the source/destination blend factors.
func (c *Context) BlendFunc(src, dst glenum.BlendFactor) {
	c.RC.Blend.Src, c.RC.Blend.Dst = src, dst
	c.RC.Blend.Touch()
}

// DepthFunc sets the depth comparison function.
func (c *Context) DepthFunc(fn glenum.CompareFunc) {
	c.RC.Depth.Func = fn
	c.RC.Depth.Touch()
}

// DepthMask enables or disables depth-plane writes.
func (c *Context) DepthMask(enabled bool) {
	c.RC.Masks.Depth = enabled
}

// StencilFunc sets both stencil faces' comparison function, reference and
// read mask (spec.md's core does not separate front/back functions).
func (c *Context) StencilFunc(fn glenum.CompareFunc, ref int32, mask uint32) {
	for i := range c.RC.Stencil {
		c.RC.Stencil[i].Func = fn
		c.RC.Stencil[i].Ref = ref
		c.RC.Stencil[i].ReadMask = mask
		c.RC.Stencil[i].Touch()
	}
}

// StencilOp sets both stencil faces' fail/zfail/zpass update operations.
func (c *Context) StencilOp(fail, zfail, zpass glenum.StencilOp) {
	for i := range c.RC.Stencil {
		c.RC.Stencil[i].Fail, c.RC.Stencil[i].ZFail, c.RC.Stencil[i].ZPass = fail, zfail, zpass
		c.RC.Stencil[i].Touch()
	}
}

// StencilMask sets both stencil faces' write mask.
func (c *Context) StencilMask(mask uint32) {
	for i := range c.RC.Stencil {
		c.RC.Stencil[i].WriteMask = mask
		c.RC.Stencil[i].Touch()
	}
}

// ColorMask sets the per-channel color write mask.
func (c *Context) ColorMask(r, g, b, a bool) {
	c.RC.Masks.Red, c.RC.Masks.Green, c.RC.Masks.Blue, c.RC.Masks.Alpha = r, g, b, a
}

// CullFace selects which winding-ordered faces are discarded.
func (c *Context) CullFace(face glenum.CullFace) {
	c.RC.Cull.Face = face
	c.RC.Cull.Touch()
}

// FrontFace selects which vertex winding is front-facing.
func (c *Context) FrontFace(front glenum.FrontFace) {
	c.RC.Cull.Front = front
	c.RC.Cull.Touch()
}

// ShadeModel selects flat or smooth shading (stored only; see
// glenum.ShadeModel).
func (c *Context) ShadeModel(model glenum.ShadeModel) {
	c.RC.ShadeModelMode = model
}

// Hint sets one of the Hint() targets.
func (c *Context) Hint(target HintTarget, mode glenum.HintMode) {
	switch target {
	case HintPerspectiveCorrection:
		c.RC.Hints.PerspectiveCorrection = mode
		c.Pipeline.PerspectiveCorrect = mode == glenum.HintNicest
	case HintPointSmooth:
		c.RC.Hints.PointSmooth = mode
	case HintLineSmooth:
		c.RC.Hints.LineSmooth = mode
	case HintFog:
		c.RC.Hints.Fog = mode
	}
}

// HintTarget enumerates the Hint() targets rcontext.Hints models.
type HintTarget uint8

const (
	HintPerspectiveCorrection HintTarget = iota
	HintPointSmooth
	HintLineSmooth
	HintFog
)

// Fog sets the fog equation's scalar parameters or color, per pname.
func (c *Context) Fog(pname FogParam, v [4]float32) {
	f := &c.RC.Fog
	switch pname {
	case FogMode:
		f.Mode = glenum.FogMode(v[0])
	case FogDensity:
		f.Density = v[0]
	case FogStart:
		f.Start = v[0]
	case FogEnd:
		f.End = v[0]
	case FogColor:
		f.Color = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
	}
	f.Touch()
}

// FogParam enumerates Fog()'s parameter name (spec.md §6's Fog entry
// point, which in the original C API multiplexes several GLfloat/GLenum
// parameters behind one function and a pname token).
type FogParam uint8

const (
	FogMode FogParam = iota
	FogDensity
	FogStart
	FogEnd
	FogColor
)

// Material sets one material parameter on face (front, back, or both via
// CullFrontAndBack).
func (c *Context) Material(face glenum.CullFace, pname MaterialParam, v [4]float32) {
	set := func(m *rcontext.MaterialFace) {
		switch pname {
		case MaterialAmbient:
			m.Ambient = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
		case MaterialDiffuse:
			m.Diffuse = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
		case MaterialSpecular:
			m.Specular = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
		case MaterialEmission:
			m.Emission = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
		case MaterialShininess:
			m.Shininess = v[0]
		}
	}
	if face != glenum.CullFront {
		set(&c.RC.Material.Front)
	}
	if face == glenum.CullFront || face == glenum.CullFrontAndBack {
		set(&c.RC.Material.Back)
	}
	c.RC.Material.Touch()
}

// MaterialParam enumerates Material()'s parameter name.
type MaterialParam uint8

const (
	MaterialAmbient MaterialParam = iota
	MaterialDiffuse
	MaterialSpecular
	MaterialEmission
	MaterialShininess
)

// Light sets one parameter of light index (0..rcontext.MaxLights-1).
// Out-of-range indices are ignored (the caller's validation layer is
// expected to have already rejected them with InvalidValue).
func (c *Context) Light(index int, pname LightParam, v [4]float32) {
	if index < 0 || index >= rcontext.MaxLights {
		return
	}
	l := &c.RC.Lights[index]
	switch pname {
	case LightAmbient:
		l.Ambient = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
	case LightDiffuse:
		l.Diffuse = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
	case LightSpecular:
		l.Specular = rcontext.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
	case LightPosition:
		l.Position = matrix.Vec4{v[0], v[1], v[2], v[3]}
	case LightSpotDirection:
		l.SpotDirection = matrix.Vec3{v[0], v[1], v[2]}
	case LightSpotExponent:
		l.SpotExponent = v[0]
	case LightSpotCutoff:
		l.SpotCutoff = v[0]
	case LightConstantAttenuation:
		l.ConstantAtten = v[0]
	case LightLinearAttenuation:
		l.LinearAtten = v[0]
	case LightQuadraticAttenuation:
		l.QuadraticAtten = v[0]
	}
	l.Touch()
}

// LightParam enumerates Light()'s parameter name.
type LightParam uint8

const (
	LightAmbient LightParam = iota
	LightDiffuse
	LightSpecular
	LightPosition
	LightSpotDirection
	LightSpotExponent
	LightSpotCutoff
	LightConstantAttenuation
	LightLinearAttenuation
	LightQuadraticAttenuation
)

// LightModelAmbient sets the scene-wide ambient term (stored; see
// rcontext.RenderContext.GlobalAmbient's doc comment).
func (c *Context) LightModelAmbient(r, g, b, a float32) {
	c.RC.GlobalAmbient = rcontext.Color{R: r, G: g, B: b, A: a}
}

// PolygonOffset is accepted for API compatibility; the core's Raster stage
// does not implement depth-offset (no polygon-offset fill path exists in a
// pure-triangle-fill core).
func (c *Context) PolygonOffset(factor, units float32) {}

// SampleCoverage is accepted for API compatibility; the core implements no
// multisample path (spec.md §1 Non-goals: "multisample anti-aliasing
// beyond a single-sample fallback").
func (c *Context) SampleCoverage(value float32, invert bool) {}
