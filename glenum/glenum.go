// Package glenum holds the small closed enumerations shared by the
// rendering context, framebuffer and pipeline packages (comparison
// functions, blend factors, stencil ops, texture wrap/filter modes, texture
// environment modes and fog modes) so none of those packages needs to
// import another just for a shared vocabulary type.
package glenum

// CompareFunc is used by depth test, alpha test and stencil test.
type CompareFunc uint8

const (
	Never CompareFunc = iota
	Less
	Equal
	LEqual
	Greater
	NotEqual
	GEqual
	Always
)

// Compare evaluates ref <op> against per the OpenGL convention that the
// *incoming* value is compared against the *reference*/stored value, i.e.
// Compare(Less, incoming, reference) is true when incoming < reference.
func Compare(f CompareFunc, incoming, reference float32) bool {
	switch f {
	case Never:
		return false
	case Less:
		return incoming < reference
	case Equal:
		return incoming == reference
	case LEqual:
		return incoming <= reference
	case Greater:
		return incoming > reference
	case NotEqual:
		return incoming != reference
	case GEqual:
		return incoming >= reference
	case Always:
		return true
	default:
		return false
	}
}

// BlendFactor enumerates the ES 1.1 blend factor set (spec.md §4.7 step 8).
type BlendFactor uint8

const (
	Zero BlendFactor = iota
	One
	SrcColor
	OneMinusSrcColor
	DstColor
	OneMinusDstColor
	SrcAlpha
	OneMinusSrcAlpha
	DstAlpha
	OneMinusDstAlpha
	SrcAlphaSaturate
)

// StencilOp enumerates the stencil update operations.
type StencilOp uint8

const (
	OpKeep StencilOp = iota
	OpZero
	OpReplace
	OpIncr
	OpDecr
	OpInvert
	OpIncrWrap
	OpDecrWrap
)

// TextureWrap controls texture coordinate wrapping.
type TextureWrap uint8

const (
	Repeat TextureWrap = iota
	ClampToEdge
)

// TextureFilter controls minification/magnification filtering.
type TextureFilter uint8

const (
	Nearest TextureFilter = iota
	Linear
	NearestMipmapNearest
	LinearMipmapNearest
	NearestMipmapLinear
	LinearMipmapLinear
)

// IsMipmap reports whether f selects one of the mipmap minification modes.
func (f TextureFilter) IsMipmap() bool {
	switch f {
	case NearestMipmapNearest, LinearMipmapNearest, NearestMipmapLinear, LinearMipmapLinear:
		return true
	default:
		return false
	}
}

// IsLinear reports whether the *effective* filter (once a mip level is
// selected) samples bilinearly rather than picking a single nearest texel.
func (f TextureFilter) IsLinear() bool {
	switch f {
	case Linear, LinearMipmapNearest, LinearMipmapLinear:
		return true
	default:
		return false
	}
}

// TexEnvMode enumerates the texture environment functions the core
// implements (spec.md §4.7 step 5: Replace and Modulate; Add and Combine
// are a documented refinement knob).
type TexEnvMode uint8

const (
	Replace TexEnvMode = iota
	Modulate
	Add
	Combine
)

// FogMode enumerates the fog equations (spec.md §4.7 step 6).
type FogMode uint8

const (
	FogLinear FogMode = iota
	FogExp
	FogExp2
)

// CullFace enumerates which winding-ordered faces are discarded.
type CullFace uint8

const (
	CullBack CullFace = iota
	CullFront
	CullFrontAndBack
)

// FrontFace selects which vertex winding is considered front-facing.
type FrontFace uint8

const (
	CCW FrontFace = iota
	CW
)

// ColorSpec selects the framebuffer's color plane interpretation.
type ColorSpec uint8

const (
	ARGB8888 ColorSpec = iota
	XRGB8888
)

// ErrorKind is the GL ES 1.1 error taxonomy (spec.md §7). It is a status
// code polled via GetError, never a Go error value returned from a call.
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	InvalidEnum
	InvalidValue
	InvalidOperation
	OutOfMemory
	StackOverflow
	StackUnderflow
	FramebufferIncompleteAttachment
	FramebufferIncompleteDimensions
	FramebufferIncompleteMissingAttachment
	FramebufferUnsupported
)

func (e ErrorKind) String() string {
	switch e {
	case NoError:
		return "NoError"
	case InvalidEnum:
		return "InvalidEnum"
	case InvalidValue:
		return "InvalidValue"
	case InvalidOperation:
		return "InvalidOperation"
	case OutOfMemory:
		return "OutOfMemory"
	case StackOverflow:
		return "StackOverflow"
	case StackUnderflow:
		return "StackUnderflow"
	case FramebufferIncompleteAttachment:
		return "FramebufferIncompleteAttachment"
	case FramebufferIncompleteDimensions:
		return "FramebufferIncompleteDimensions"
	case FramebufferIncompleteMissingAttachment:
		return "FramebufferIncompleteMissingAttachment"
	case FramebufferUnsupported:
		return "FramebufferUnsupported"
	default:
		return "Unknown"
	}
}

// PrimitiveMode enumerates the draw_arrays/draw_elements primitive modes
// (spec.md §4.9). The core ships Triangles; the others are accepted for
// validation but their expansion into triangles is the documented
// strips/fans refinement.
type PrimitiveMode uint8

const (
	Points PrimitiveMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// HintMode enumerates the Hint() targets read from original_source's
// gl_api_misc.c (SPEC_FULL.md §5): perspective correction, point/line
// smoothing, and fog quality. PerspectiveCorrection also sets the
// pipeline's PerspectiveCorrect toggle, which the fragment stage does not
// read; every hint is stored on the context, no Get* call returns it, and
// none changes rendering.
type HintMode uint8

const (
	HintDontCare HintMode = iota
	HintFastest
	HintNicest
)

// MatrixMode selects which of the three matrix groups subsequent
// LoadIdentity/LoadMatrix/MultMatrix/Translate/Rotate/Scale/Push/Pop calls
// apply to (spec.md §6's MatrixMode entry point).
type MatrixMode uint8

const (
	ModelviewMode MatrixMode = iota
	ProjectionMode
	TextureMode
)

// ShadeModel selects flat or smooth (Gouraud) shading. The core always
// fills a triangle with the single color of its first vertex; ShadeModel is
// accepted and stored for GetIntegerv round-tripping but does not change
// fragment output (a documented refinement knob, matching the texture
// environment Add/Combine and strip/fan primitive modes).
type ShadeModel uint8

const (
	ShadeSmooth ShadeModel = iota
	ShadeFlat
)
