package gles

import "github.com/gogpu/microgles/glenum"

// GetError returns and clears the calling thread's first-recorded error
// kind (spec.md §7's "get_error consumes and returns the first-recorded
// kind for the calling thread"). workerID should be the scheduler worker
// id issuing the call, or a negative value from the API thread.
func (c *Context) GetError(workerID int) glenum.ErrorKind {
	return c.RC.GetError(workerID)
}

// GetString returns static build/vendor identification strings. The core
// has no wire-level GL_VENDOR/GL_VERSION/GL_EXTENSIONS surface of its
// own (that belongs to the out-of-scope API collaborator); StringName's
// values are the subset meaningful to a caller introspecting the core
// directly.
func (c *Context) GetString(name StringName) string {
	switch name {
	case StringVendor:
		return "gogpu"
	case StringRenderer:
		return "microgles software rasterizer"
	case StringVersion:
		return "OpenGL ES-CM 1.1 (microgles core)"
	case StringExtensions:
		return ""
	default:
		return ""
	}
}

// StringName enumerates GetString's targets.
type StringName uint8

const (
	StringVendor StringName = iota
	StringRenderer
	StringVersion
	StringExtensions
)

// GetBooleanv reads one capability's enabled flag.
func (c *Context) GetBooleanv(cap Capability) bool {
	return c.IsEnabled(cap)
}

// GetIntegerv reads one integer-valued parameter.
func (c *Context) GetIntegerv(pname IntegerParam) int {
	switch pname {
	case ParamMaxTextureUnits:
		return len(c.RC.TextureEnv)
	case ParamMaxLights:
		return len(c.RC.Lights)
	case ParamMatrixMode:
		return int(c.RC.CurrentMatrixMode)
	case ParamShadeModel:
		return int(c.RC.ShadeModelMode)
	case ParamCullFaceMode:
		return int(c.RC.Cull.Face)
	case ParamFrontFace:
		return int(c.RC.Cull.Front)
	case ParamModelviewStackDepth:
		return c.RC.Modelview.Stack.Depth()
	case ParamProjectionStackDepth:
		return c.RC.Projection.Stack.Depth()
	case ParamTextureStackDepth:
		return c.RC.TextureMat.Stack.Depth()
	case ParamViewportX:
		return c.RC.Viewport.X
	case ParamViewportY:
		return c.RC.Viewport.Y
	case ParamViewportWidth:
		return c.RC.Viewport.Width
	case ParamViewportHeight:
		return c.RC.Viewport.Height
	default:
		return 0
	}
}

// IntegerParam enumerates GetIntegerv's targets.
type IntegerParam uint8

const (
	ParamMaxTextureUnits IntegerParam = iota
	ParamMaxLights
	ParamMatrixMode
	ParamShadeModel
	ParamCullFaceMode
	ParamFrontFace
	ParamModelviewStackDepth
	ParamProjectionStackDepth
	ParamTextureStackDepth
	ParamViewportX
	ParamViewportY
	ParamViewportWidth
	ParamViewportHeight
)

// GetFloatv reads one float-valued parameter.
func (c *Context) GetFloatv(pname FloatParam) float32 {
	switch pname {
	case ParamLineWidth:
		return c.RC.LineWidth
	case ParamPointSize:
		return c.RC.PointSize
	case ParamDepthClearValue:
		return c.RC.ClearDepth
	case ParamAlphaTestRef:
		return c.RC.AlphaTest.Ref
	}
	return 0
}

// FloatParam enumerates GetFloatv's targets.
type FloatParam uint8

const (
	ParamLineWidth FloatParam = iota
	ParamPointSize
	ParamDepthClearValue
	ParamAlphaTestRef
)
