// Package rcontext implements the versioned rendering context (C4): the
// authoritative state record for matrices, lights, material, blend, fog,
// texture environment, arrays and the miscellaneous boolean capabilities,
// each group carrying its own atomic version counter so worker goroutines
// can snapshot only the state a job actually consumes.
//
// Grounded on gogpu-gg/matrix.go for the matrix-group shape (generalized
// from a 2D affine Matrix to the homogeneous matrix/stack package), and
// field-for-field on _examples/original_source/src/gl_context.h's
// RenderContext struct for the rest of the state groups, per SPEC_FULL.md
// §4/§5.
package rcontext

import (
	"sync/atomic"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/matrix"
)

// MaxLights is the fixed light count (spec.md §4.4, Open Question #4's
// sibling constant for lights — GL ES 1.1 mandates 8).
const MaxLights = 8

// MaxTextureUnits is the core's fixed texture unit count, resolved per
// spec.md §9 Open Question 4.
const MaxTextureUnits = 2

const (
	modelviewStackDepth  = 32
	projectionStackDepth = 2
	textureStackDepth    = 32
)

// versionedBool pairs a boolean capability with its own version counter,
// per SPEC_FULL.md §5's conformance/src/tests/state_flag_version.c note.
type versionedBool struct {
	value   atomic.Bool
	version atomic.Uint32
}

func (v *versionedBool) Set(b bool) {
	v.value.Store(b)
	v.version.Add(1)
}

func (v *versionedBool) Get() (bool, uint32) {
	return v.value.Load(), v.version.Load()
}

// MatrixGroup is one of the three matrix stacks plus its version counter.
type MatrixGroup struct {
	Stack   *matrix.Stack
	version atomic.Uint32
}

func newMatrixGroup(maxDepth int) *MatrixGroup {
	return &MatrixGroup{Stack: matrix.NewStack(maxDepth)}
}

// Touch bumps the group's version after a caller has mutated Stack
// directly (load/mult/push/pop), per the writer protocol in spec.md §4.4:
// update fields first, then fetch_add(version, 1, relaxed).
func (g *MatrixGroup) Touch() {
	g.version.Add(1)
}

// Version returns the group's current version.
func (g *MatrixGroup) Version() uint32 {
	return g.version.Load()
}

// Color is a straight (non-premultiplied) float RGBA color.
type Color struct {
	R, G, B, A float32
}

// Blend holds the active blend function, versioned.
type Blend struct {
	Enabled  versionedBool
	Src, Dst glenum.BlendFactor
	version  atomic.Uint32
}

func (b *Blend) Touch() { b.version.Add(1) }
func (b *Blend) Version() uint32 { return b.version.Load() }

// Depth holds the active depth comparison function, versioned.
type Depth struct {
	TestEnabled versionedBool
	Func        glenum.CompareFunc
	version     atomic.Uint32
}

func (d *Depth) Touch() { d.version.Add(1) }
func (d *Depth) Version() uint32 { return d.version.Load() }

// Stencil holds the stencil test/update state for one face, versioned.
type Stencil struct {
	Enabled            versionedBool
	Func               glenum.CompareFunc
	Ref                int32
	ReadMask, WriteMask uint32
	Fail, ZFail, ZPass glenum.StencilOp
	version            atomic.Uint32
}

func (s *Stencil) Touch() { s.version.Add(1) }
func (s *Stencil) Version() uint32 { return s.version.Load() }

// Fog holds the fog equation parameters, versioned.
type Fog struct {
	Enabled          versionedBool
	Mode             glenum.FogMode
	Density, Start, End float32
	Color            Color
	version          atomic.Uint32
}

func (f *Fog) Touch() { f.version.Add(1) }
func (f *Fog) Version() uint32 { return f.version.Load() }

// AlphaTest holds the alpha-test function/reference, versioned.
type AlphaTest struct {
	Enabled versionedBool
	Func    glenum.CompareFunc
	Ref     float32
	version atomic.Uint32
}

func (a *AlphaTest) Touch() { a.version.Add(1) }
func (a *AlphaTest) Version() uint32 { return a.version.Load() }

// Cull holds the face-culling mode and winding convention, versioned.
type Cull struct {
	Enabled   versionedBool
	Face      glenum.CullFace
	Front     glenum.FrontFace
	version   atomic.Uint32
}

func (c *Cull) Touch() { c.version.Add(1) }
func (c *Cull) Version() uint32 { return c.version.Load() }

// TextureEnv is one texture unit's environment state.
type TextureEnv struct {
	Mode         glenum.TexEnvMode
	EnvColor     Color
	BoundTexture uint32 // 0 means unbound
	WrapS, WrapT glenum.TextureWrap
	MinFilter    glenum.TextureFilter
	MagFilter    glenum.TextureFilter
	version      atomic.Uint32
}

func (t *TextureEnv) Touch() { t.version.Add(1) }
func (t *TextureEnv) Version() uint32 { return t.version.Load() }

// Light is one of the 8 fixed light slots.
type Light struct {
	Enabled                          versionedBool
	Ambient, Diffuse, Specular       Color
	Position                         matrix.Vec4 // w=0 directional, w=1 positional
	SpotDirection                    matrix.Vec3
	SpotExponent, SpotCutoff         float32
	ConstantAtten, LinearAtten, QuadraticAtten float32
	version                          atomic.Uint32
}

func (l *Light) Touch() { l.version.Add(1) }
func (l *Light) Version() uint32 { return l.version.Load() }

// MaterialFace holds the one-sided material parameters (spec.md §4.4:
// "one material pair" — front and back, each a MaterialFace).
type MaterialFace struct {
	Ambient, Diffuse, Specular, Emission Color
	Shininess                            float32
}

// Material is the front/back material pair, versioned as a unit.
type Material struct {
	Front, Back MaterialFace
	version     atomic.Uint32
}

func (m *Material) Touch() { m.version.Add(1) }
func (m *Material) Version() uint32 { return m.version.Load() }

// ArrayType enumerates the client array element types.
type ArrayType uint8

const (
	Float32Type ArrayType = iota
	UByteType
	ShortType
	FixedType
)

// ClientArray describes one bound vertex attribute array (vertex, color,
// normal, texcoord), versioned individually per spec.md §4.4.
//
// When BufferID is 0, Pointer holds the client-memory backing bytes
// directly. When BufferID is non-zero (an ARRAY_BUFFER was bound at the
// time the *Pointer call was made), Offset is a byte offset into that
// buffer's storage and Pointer is unused — spec.md §4.9: "when an array
// buffer is bound, pointers are byte offsets into that buffer's storage;
// resolve before copying."
type ClientArray struct {
	Enabled  bool
	Pointer  []byte
	BufferID uint32
	Offset   int
	Size     int // components per vertex (2,3,4; ignored for normal = always 3)
	Type     ArrayType
	Stride   int
	version  atomic.Uint32
}

func (a *ClientArray) Touch() { a.version.Add(1) }
func (a *ClientArray) Version() uint32 { return a.version.Load() }

// Arrays groups the four client arrays spec.md §4.4 names.
type Arrays struct {
	Vertex, Color, Normal, TexCoord ClientArray
}

// WriteMask models ColorMask/DepthMask/StencilMask (SPEC_FULL.md §5,
// grounded on original_source/src/gl_api_state.c), consumed by the
// fragment stage's final write step.
type WriteMask struct {
	Red, Green, Blue, Alpha bool
	Depth                   bool
	Stencil                 uint32
}

// Hints models the per-context Hint() targets (SPEC_FULL.md §5, grounded
// on original_source/src/gl_api_misc.c). The hints are stored only: no
// Get* call returns them and none changes rendering (PerspectiveCorrection
// also sets pipeline.Pipeline.PerspectiveCorrect, which the fragment stage
// does not read).
type Hints struct {
	PerspectiveCorrection glenum.HintMode
	PointSmooth           glenum.HintMode
	LineSmooth            glenum.HintMode
	Fog                   glenum.HintMode
}

// Viewport and depth-range state.
type Viewport struct {
	X, Y, Width, Height int
	Near, Far           float32
}

// Scissor holds the scissor test rectangle and enable flag.
type Scissor struct {
	Enabled             versionedBool
	X, Y, Width, Height int
}

// errorSlots is a small fixed-size table of thread-local-style GL error
// state, one slot per worker id. Go has no native TLS; spec.md §4.4 says
// "GL errors are thread-local" and the scheduler identifies workers by a
// small dense integer id (0..Workers()-1), so a slot-per-worker-id array
// gives each scheduler worker (and the API thread at a reserved extra
// slot) its own error cell without a map or per-call allocation.
const apiThreadSlot = 0

type errorSlots struct {
	slots []atomic.Uint32 // glenum.ErrorKind, stored as uint32
}

func newErrorSlots(workerCount int) *errorSlots {
	// Slot 0 is reserved for the API thread; worker ids shift by one.
	return &errorSlots{slots: make([]atomic.Uint32, workerCount+1)}
}

func (e *errorSlots) slotFor(workerID int) int {
	if workerID < 0 {
		return apiThreadSlot
	}
	return workerID + 1
}

// SetError stores kind in workerID's slot only if it currently holds
// NoError, matching spec.md §4.4's set_error semantics (first error wins
// until polled).
func (e *errorSlots) SetError(workerID int, kind glenum.ErrorKind) {
	s := &e.slots[e.slotFor(workerID)]
	s.CompareAndSwap(uint32(glenum.NoError), uint32(kind))
}

// GetError returns and clears workerID's current error.
func (e *errorSlots) GetError(workerID int) glenum.ErrorKind {
	s := &e.slots[e.slotFor(workerID)]
	return glenum.ErrorKind(s.Swap(uint32(glenum.NoError)))
}

// RenderContext is the process-wide authoritative state record (spec.md
// §3's Lifecycles: "RenderContext is process-wide, created at init and
// torn down at shutdown").
//
// RenderContext is safe for concurrent use under the single-writer
// (API-thread), many-reader (workers) discipline spec.md §5 describes:
// concurrent reads of any group are safe at any time; concurrent writes
// to the *same* group are not serialized by RenderContext itself (the API
// surface above it is expected to serialize writers, matching spec.md's
// "single writer per group at any time").
type RenderContext struct {
	Modelview  *MatrixGroup
	Projection *MatrixGroup
	TextureMat *MatrixGroup

	TextureEnv [MaxTextureUnits]TextureEnv
	ActiveUnit int

	Lights   [MaxLights]Light
	Material Material

	Blend     Blend
	Depth     Depth
	Stencil   [2]Stencil // front, back
	Fog       Fog
	AlphaTest AlphaTest
	Cull      Cull
	Scissor   Scissor

	Dither    versionedBool
	Normalize versionedBool
	Lighting  versionedBool
	Texture2D versionedBool

	Masks     WriteMask
	Hints     Hints
	Viewport  Viewport

	LineWidth  float32
	PointSize  float32
	ClearColor Color
	ClearDepth float32
	ClearStencil uint32

	// CurrentMatrixMode selects which matrix group the MatrixMode/
	// LoadIdentity/LoadMatrix/MultMatrix/Translate/Rotate/Scale/Push/Pop
	// entry points apply to (spec.md §6). API-thread-only state: no
	// worker reads it, so it carries no version counter.
	CurrentMatrixMode glenum.MatrixMode

	// ShadeModelMode round-trips through GetIntegerv (spec.md §6's
	// ShadeModel entry point); GlobalAmbient is stored by LightModelAmbient
	// and no Get* call returns it. Neither affects the fixed fragment path,
	// per glenum.ShadeModel's doc comment.
	ShadeModelMode glenum.ShadeModel
	GlobalAmbient  Color

	Arrays Arrays

	// Textures is the per-context texture table indexed by small integer
	// ids (spec.md §3), consulted by the fragment stage via the id bound
	// in each TextureEnv unit.
	Textures *Table

	// Buffers is the per-context vertex/element buffer object table
	// (spec.md §6), consulted by the draw front-end to resolve array
	// pointers that are byte offsets into a bound buffer's storage.
	Buffers       *BufferTable
	BufferBinding BufferBindings

	errors *errorSlots
}

// New creates a RenderContext with spec.md §4.4's default matrix stack
// depths (modelview 32, projection 2, texture 32) and workerCount+1 error
// slots (one per scheduler worker plus the API thread).
func New(workerCount int) *RenderContext {
	rc := &RenderContext{
		Modelview:  newMatrixGroup(modelviewStackDepth),
		Projection: newMatrixGroup(projectionStackDepth),
		TextureMat: newMatrixGroup(textureStackDepth),
		LineWidth:  1,
		PointSize:  1,
		ClearDepth: 1,
		GlobalAmbient: Color{R: 0.2, G: 0.2, B: 0.2, A: 1},
		Textures:   NewTable(),
		Buffers:    NewBufferTable(),
		errors:     newErrorSlots(workerCount),
	}
	for i := range rc.TextureEnv {
		rc.TextureEnv[i].Mode = glenum.Modulate
		rc.TextureEnv[i].WrapS = glenum.Repeat
		rc.TextureEnv[i].WrapT = glenum.Repeat
		rc.TextureEnv[i].MinFilter = glenum.NearestMipmapLinear
		rc.TextureEnv[i].MagFilter = glenum.Linear
	}
	rc.Masks = WriteMask{Red: true, Green: true, Blue: true, Alpha: true, Depth: true, Stencil: 0xFFFFFFFF}
	rc.Depth.Func = glenum.Less
	rc.AlphaTest.Func = glenum.Always
	for i := range rc.Stencil {
		rc.Stencil[i].Func = glenum.Always
		rc.Stencil[i].ReadMask = 0xFFFFFFFF
		rc.Stencil[i].WriteMask = 0xFFFFFFFF
		rc.Stencil[i].Fail, rc.Stencil[i].ZFail, rc.Stencil[i].ZPass = glenum.OpKeep, glenum.OpKeep, glenum.OpKeep
	}
	rc.Cull.Face = glenum.CullBack
	rc.Cull.Front = glenum.CCW
	return rc
}

// SetError records kind for workerID (negative for the API thread) if no
// error is currently pending for that slot.
func (rc *RenderContext) SetError(workerID int, kind glenum.ErrorKind) {
	rc.errors.SetError(workerID, kind)
}

// GetError returns and clears workerID's pending error.
func (rc *RenderContext) GetError(workerID int) glenum.ErrorKind {
	return rc.errors.GetError(workerID)
}

// PushMatrix pushes the active group's current matrix. On overflow it sets
// StackOverflow on workerID's error slot and leaves the stack unchanged,
// per spec.md §4.4's "push beyond capacity fails with StackOverflow".
func (g *MatrixGroup) PushMatrix(rc *RenderContext, workerID int) {
	if err := g.Stack.Push(); err != nil {
		rc.SetError(workerID, glenum.StackOverflow)
		return
	}
	g.Touch()
}

// PopMatrix pops the active group's current matrix. On underflow it sets
// StackUnderflow and leaves the stack unchanged.
func (g *MatrixGroup) PopMatrix(rc *RenderContext, workerID int) {
	if err := g.Stack.Pop(); err != nil {
		rc.SetError(workerID, glenum.StackUnderflow)
		return
	}
	g.Touch()
}
