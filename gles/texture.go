package gles

import (
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/rcontext"
)

// ActiveTexture selects the texture unit subsequent BindTexture/TexEnv/
// TexParameter calls (and MultiTexCoord4's unit argument) address.
// Out-of-range units beyond rcontext.MaxTextureUnits record InvalidValue
// and leave the active unit unchanged.
func (c *Context) ActiveTexture(unit int) {
	if unit < 0 || unit >= len(c.RC.TextureEnv) {
		c.RC.SetError(apiWorker, glenum.InvalidValue)
		return
	}
	c.RC.ActiveUnit = unit
}

// ClientActiveTexture selects the unit VertexPointer/TexCoordPointer's
// client-side texture coordinate array addresses (the core's single
// texcoord array always feeds unit 0's sampling, so only unit 0's array
// affects rendering; other units are accepted and stored for symmetry
// with the real API).
func (c *Context) ClientActiveTexture(unit int) {
	c.clientActiveTexture = unit
}

// GenTextures allocates n texture ids.
func (c *Context) GenTextures(n int) []uint32 {
	return c.RC.Textures.Gen(n)
}

// DeleteTextures frees the given texture ids.
func (c *Context) DeleteTextures(ids []uint32) {
	for _, id := range ids {
		c.RC.Textures.Delete(id)
	}
}

// BindTexture records id as the active unit's bound texture (0 unbinds).
func (c *Context) BindTexture(id uint32) {
	env := &c.RC.TextureEnv[c.RC.ActiveUnit]
	env.BoundTexture = id
	env.Touch()
}

// TexEnv sets the active unit's texture environment parameter.
func (c *Context) TexEnv(pname TexEnvParam, v [4]float32) {
	env := &c.RC.TextureEnv[c.RC.ActiveUnit]
	switch pname {
	case TexEnvModeParam:
		env.Mode = glenum.TexEnvMode(v[0])
	case TexEnvColorParam:
		env.EnvColor.R, env.EnvColor.G, env.EnvColor.B, env.EnvColor.A = v[0], v[1], v[2], v[3]
	}
	env.Touch()
}

// TexEnvParam enumerates TexEnv()'s parameter name.
type TexEnvParam uint8

const (
	TexEnvModeParam TexEnvParam = iota
	TexEnvColorParam
)

// TexParameter sets one texture object's sampling parameter. The
// parameter applies to the texture bound at the active unit.
func (c *Context) TexParameter(pname TexParam, value int) {
	tex := c.boundTexture()
	if tex == nil {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
		return
	}
	switch pname {
	case TexParamMinFilter:
		tex.MinFilter = glenum.TextureFilter(value)
	case TexParamMagFilter:
		tex.MagFilter = glenum.TextureFilter(value)
	case TexParamWrapS:
		tex.WrapS = glenum.TextureWrap(value)
	case TexParamWrapT:
		tex.WrapT = glenum.TextureWrap(value)
	}
	tex.Version++
}

// TexParam enumerates TexParameter()'s parameter name.
type TexParam uint8

const (
	TexParamMinFilter TexParam = iota
	TexParamMagFilter
	TexParamWrapS
	TexParamWrapT
)

func (c *Context) boundTexture() *rcontext.Texture {
	id := c.RC.TextureEnv[c.RC.ActiveUnit].BoundTexture
	if id == 0 {
		return nil
	}
	return c.RC.Textures.Get(id)
}

// TexImage2D reallocates level 0 (or the given level) of the active unit's
// bound texture.
func (c *Context) TexImage2D(level, width, height int, pixels []byte) {
	id := c.RC.TextureEnv[c.RC.ActiveUnit].BoundTexture
	if id == 0 {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
		return
	}
	if width <= 0 || height <= 0 {
		c.RC.SetError(apiWorker, glenum.InvalidValue)
		return
	}
	c.RC.Textures.TexImage2D(id, level, width, height, pixels)
}

// TexSubImage2D overwrites a subrect of an existing level of the active
// unit's bound texture.
func (c *Context) TexSubImage2D(level, x, y, w, h int, pixels []byte) {
	id := c.RC.TextureEnv[c.RC.ActiveUnit].BoundTexture
	if id == 0 {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
		return
	}
	if err := c.RC.Textures.TexSubImage2D(id, level, x, y, w, h, pixels); err != nil {
		c.RC.SetError(apiWorker, glenum.InvalidOperation)
	}
}
