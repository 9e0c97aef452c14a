package pipeline

import (
	"math"

	"github.com/gogpu/microgles/framebuffer"
	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/rcontext"
	"github.com/gogpu/microgles/scheduler"
	"github.com/gogpu/microgles/texcache"
)

// submitFragmentTile enqueues job as a Fragment-tagged scheduler task.
func (p *Pipeline) submitFragmentTile(workerID int, job *FragmentTileJob) {
	p.Sched.Submit(workerID, scheduler.Task{
		Stage: scheduler.Fragment,
		Fn:    func() { p.runFragmentTile(workerID, job) },
	})
}

// runFragmentTile implements the Fragment-tile stage (spec.md §4.7):
// acquire the tile lock, copy planes to scratch, shade every pixel in
// job.Rect through the fixed-function fragment path, copy scratch back,
// and release the tile and framebuffer reference. This is the bottom of
// the stage chain: it submits nothing further.
func (p *Pipeline) runFragmentTile(workerID int, job *FragmentTileJob) {
	p.Plugins.Invoke(scheduler.Fragment, job, helperFor(p, workerID))

	fb := job.FB
	tile := job.Tile
	color, depth, stencil := fb.EnterTile(tile)

	cache := p.texCaches[p.workerSlot(workerID)]

	for y := job.Rect.Y0; y < job.Rect.Y1; y++ {
		for x := job.Rect.X0; x < job.Rect.X1; x++ {
			p.shadePixel(job, fb, tile, color, depth, stencil, cache, x, y)
		}
	}

	fb.LeaveTile(tile)
	fb.Release()
	p.releaseFragmentTileJob(job)
}

// shadePixel runs one pixel through spec.md §4.7 steps 1-9 against the
// tile's scratch buffers.
func (p *Pipeline) shadePixel(job *FragmentTileJob, fb *framebuffer.Framebuffer, tile *framebuffer.Tile, color []uint32, depth []float32, stencil []uint8, cache *texcache.Cache, x, y int) {
	idx := (y-tile.Y0)*tile.W + (x - tile.X0)

	// Step 1-2: UV coordinates + wrap.
	var u, v float32
	if job.Sprite {
		u = (float32(x-job.Rect.X0) + 0.5) / float32(job.Rect.X1-job.Rect.X0)
		v = (float32(y-job.Rect.Y0) + 0.5) / float32(job.Rect.Y1-job.Rect.Y0)
	} else {
		u = float32(x) / float32(fb.Width())
		v = float32(y) / float32(fb.Height())
	}

	env := job.Shading.TexEnv[0]
	u = applyWrap(env.WrapS, u)
	v = applyWrap(env.WrapT, v)

	fragColor := job.Color

	if tex := p.RC.Textures.Get(job.TextureID); tex != nil && tex.Active {
		texel := p.sampleTexture(cache, tex, job.TextureID, job.TextureVersion, env, u, v, job.Bilinear, fb.Width(), fb.Height())
		fragColor = applyTexEnv(env.Mode, fragColor, texel)
	}

	// Step 6: fog.
	if on, _ := job.Shading.Fog.Enabled.Get(); on {
		fragColor = applyFog(job.Shading.Fog, fragColor, job.MinDepth)
	}

	// Step 7: alpha test.
	if on, _ := job.Shading.AlphaTest.Enabled.Get(); on {
		if !glenum.Compare(job.Shading.AlphaTest.Func, fragColor[3], job.Shading.AlphaTest.Ref) {
			return // fragment discarded
		}
	}

	packed := packRGBA(fragColor)

	// Step 8: blend.
	if on, _ := job.Shading.Blend.Enabled.Get(); on {
		dst := unpackRGBA(color[idx])
		blended := applyBlend(job.Shading.Blend, fragColor, dst)
		packed = packRGBA(blended)
	}

	// Depth test + write: a plain compare and store on the tile's scratch
	// depth, with no CAS, since the tile lock already serializes access.
	depthOK := glenum.Compare(job.Shading.Depth.Func, job.MinDepth, depth[idx])
	if on, _ := job.Shading.Depth.TestEnabled.Get(); on && !depthOK {
		return
	}

	// Step 9: masks.
	if job.Shading.Masks.Depth {
		depth[idx] = job.MinDepth
	}
	if job.Shading.Masks.Red || job.Shading.Masks.Green || job.Shading.Masks.Blue || job.Shading.Masks.Alpha {
		color[idx] = maskColor(color[idx], packed, job.Shading.Masks)
	}
	stencil[idx] = uint8(job.Shading.Masks.Stencil) & stencil[idx]
}

func applyWrap(w glenum.TextureWrap, c float32) float32 {
	switch w {
	case glenum.ClampToEdge:
		if c < 0 {
			return 0
		}
		if c > 1 {
			return 1
		}
		return c
	default: // Repeat
		f := c - float32(math.Floor(float64(c)))
		return f
	}
}

// sampleTexture selects a mip level and samples through the texel block
// cache, bilinear-blending four neighbors when the effective filter is
// linear (spec.md §4.7 steps 3-4).
func (p *Pipeline) sampleTexture(cache *texcache.Cache, tex *rcontext.Texture, texID, texVersion uint32, env rcontext.TextureEnv, u, v float32, bilinear bool, fbW, fbH int) [4]float32 {
	level := 0
	if env.MinFilter.IsMipmap() && tex.Width > 0 && tex.Height > 0 && fbW > 0 && fbH > 0 {
		// spec.md §4.7 step 3: lod = clamp(log2(max(tex.w/fb.w, tex.h/fb.h)), 0, current_level).
		ratio := math.Max(float64(tex.Width)/float64(fbW), float64(tex.Height)/float64(fbH))
		lod := math.Log2(ratio)
		if lod < 0 {
			lod = 0
		}
		level = int(lod)
		if level > tex.CurrentLevel {
			level = tex.CurrentLevel
		}
	}

	w := tex.MipWidth[level]
	h := tex.MipHeight[level]
	if w == 0 || h == 0 {
		return [4]float32{0, 0, 0, 0}
	}

	fx := u * float32(w)
	fy := v * float32(h)

	if !bilinear || !env.MagFilter.IsLinear() {
		return fetchTexel(cache, tex, texID, texVersion, level, w, h, int(fx), int(fy))
	}

	x0, y0 := int(fx), int(fy)
	tx, ty := fx-float32(x0), fy-float32(y0)

	c00 := fetchTexel(cache, tex, texID, texVersion, level, w, h, x0, y0)
	c10 := fetchTexel(cache, tex, texID, texVersion, level, w, h, x0+1, y0)
	c01 := fetchTexel(cache, tex, texID, texVersion, level, w, h, x0, y0+1)
	c11 := fetchTexel(cache, tex, texID, texVersion, level, w, h, x0+1, y0+1)

	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i]*(1-tx) + c10[i]*tx
		bot := c01[i]*(1-tx) + c11[i]*tx
		out[i] = top*(1-ty) + bot*ty
	}
	return out
}

func fetchTexel(cache *texcache.Cache, tex *rcontext.Texture, texID, texVersion uint32, level, w, h, px, py int) [4]float32 {
	if px < 0 || py < 0 || px >= w || py >= h {
		return [4]float32{0, 0, 0, 0}
	}
	bx, by := int32(px/texcache.BlockDim), int32(py/texcache.BlockDim)
	key := texcache.Key{TextureID: texID, Version: texVersion, Level: uint8(level), BlockX: bx, BlockY: by}

	block := cache.Lookup(key, func(k texcache.Key, out *[texcache.BlockTexels]texcache.RGBA) {
		fillBlock(tex, int(k.Level), int(k.BlockX), int(k.BlockY), out)
	})

	lx, ly := px%texcache.BlockDim, py%texcache.BlockDim
	t := block[ly*texcache.BlockDim+lx]
	return [4]float32{float32(t[0]) / 255, float32(t[1]) / 255, float32(t[2]) / 255, float32(t[3]) / 255}
}

// fillBlock reads a 4x4 texel block from tex's tightly packed RGBA8
// level data, yielding zero (transparent black) for any texel that falls
// outside the level's dimensions (spec.md §4.3).
func fillBlock(tex *rcontext.Texture, level, bx, by int, out *[texcache.BlockTexels]texcache.RGBA) {
	w := tex.MipWidth[level]
	h := tex.MipHeight[level]
	data := tex.Levels[level]
	for row := 0; row < texcache.BlockDim; row++ {
		py := by*texcache.BlockDim + row
		for col := 0; col < texcache.BlockDim; col++ {
			px := bx*texcache.BlockDim + col
			i := row*texcache.BlockDim + col
			if px < 0 || py < 0 || px >= w || py >= h || data == nil {
				out[i] = texcache.RGBA{0, 0, 0, 0}
				continue
			}
			off := (py*w + px) * 4
			if off+4 > len(data) {
				out[i] = texcache.RGBA{0, 0, 0, 0}
				continue
			}
			out[i] = texcache.RGBA{data[off], data[off+1], data[off+2], data[off+3]}
		}
	}
}

// applyTexEnv implements spec.md §4.7 step 5's core subset (Replace,
// Modulate); Add and Combine are a documented refinement knob.
func applyTexEnv(mode glenum.TexEnvMode, frag, texel [4]float32) [4]float32 {
	switch mode {
	case glenum.Replace:
		return texel
	default: // Modulate
		return [4]float32{frag[0] * texel[0], frag[1] * texel[1], frag[2] * texel[2], frag[3] * texel[3]}
	}
}

// applyFog implements spec.md §4.7 step 6.
func applyFog(fog rcontext.Fog, c [4]float32, z float32) [4]float32 {
	var factor float32
	switch fog.Mode {
	case glenum.FogExp:
		factor = float32(math.Exp(float64(-fog.Density * z)))
	case glenum.FogExp2:
		dz := fog.Density * z
		factor = float32(math.Exp(float64(-(dz * dz))))
	default: // FogLinear
		if fog.End == fog.Start {
			factor = 1
		} else {
			factor = (fog.End - z) / (fog.End - fog.Start)
		}
	}
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return [4]float32{
		c[0]*factor + fog.Color.R*(1-factor),
		c[1]*factor + fog.Color.G*(1-factor),
		c[2]*factor + fog.Color.B*(1-factor),
		c[3],
	}
}

// blendFactorValue resolves f against src/dst colors per the full ES 1.1
// blend factor set (spec.md §4.7 step 8).
func blendFactorValue(f glenum.BlendFactor, src, dst [4]float32, channel int) float32 {
	switch f {
	case glenum.Zero:
		return 0
	case glenum.One:
		return 1
	case glenum.SrcColor:
		return src[channel]
	case glenum.OneMinusSrcColor:
		return 1 - src[channel]
	case glenum.DstColor:
		return dst[channel]
	case glenum.OneMinusDstColor:
		return 1 - dst[channel]
	case glenum.SrcAlpha:
		return src[3]
	case glenum.OneMinusSrcAlpha:
		return 1 - src[3]
	case glenum.DstAlpha:
		return dst[3]
	case glenum.OneMinusDstAlpha:
		return 1 - dst[3]
	case glenum.SrcAlphaSaturate:
		a := src[3]
		da := 1 - dst[3]
		if a < da {
			return a
		}
		return da
	default:
		return 0
	}
}

func applyBlend(b rcontext.Blend, src, dst [4]float32) [4]float32 {
	var out [4]float32
	for ch := 0; ch < 4; ch++ {
		sf := blendFactorValue(b.Src, src, dst, ch)
		df := blendFactorValue(b.Dst, src, dst, ch)
		v := src[ch]*sf + dst[ch]*df
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[ch] = v
	}
	return out
}

func packRGBA(c [4]float32) uint32 {
	r := uint32(clamp01(c[0]) * 255)
	g := uint32(clamp01(c[1]) * 255)
	b := uint32(clamp01(c[2]) * 255)
	a := uint32(clamp01(c[3]) * 255)
	return a<<24 | r<<16 | g<<8 | b
}

func unpackRGBA(p uint32) [4]float32 {
	a := float32(p>>24&0xFF) / 255
	r := float32(p>>16&0xFF) / 255
	g := float32(p>>8&0xFF) / 255
	b := float32(p&0xFF) / 255
	return [4]float32{r, g, b, a}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// maskColor applies the per-channel color write mask, leaving masked-off
// channels at their existing value (spec.md §4.7 step 9).
func maskColor(existing, incoming uint32, mask rcontext.WriteMask) uint32 {
	r, g, b, a := existing>>16&0xFF, existing>>8&0xFF, existing&0xFF, existing>>24&0xFF
	nr, ng, nb, na := incoming>>16&0xFF, incoming>>8&0xFF, incoming&0xFF, incoming>>24&0xFF
	if mask.Red {
		r = nr
	}
	if mask.Green {
		g = ng
	}
	if mask.Blue {
		b = nb
	}
	if mask.Alpha {
		a = na
	}
	return a<<24 | r<<16 | g<<8 | b
}
