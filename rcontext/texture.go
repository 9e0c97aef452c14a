package rcontext

import (
	"errors"

	"github.com/gogpu/microgles/glenum"
)

// MaxMipLevels is the highest mip level index a Texture can populate
// (spec.md §3: "per-level mip dimensions (up to 12)").
const MaxMipLevels = 12

// ErrFormatMismatch is returned by TexSubImage2D when the subrect's format
// does not match the texture's stored format (spec.md §4.4: "format
// mismatch fails with InvalidOperation" — surfaced here as a Go error so
// the caller can translate it into that RenderContext error kind).
var ErrFormatMismatch = errors.New("rcontext: tex_sub_image format mismatch")

// Texture is one entry in a context's texture table (spec.md §3's Texture
// data model). Level 0 holds the base image; Levels[1:] are populated only
// once mipmapping is requested and MipmapSupported is true.
type Texture struct {
	ID       uint32
	Target   uint32 // opaque target enum, validated by the out-of-scope API layer
	Format   uint32 // opaque internal/user format enum
	Width, Height int

	MipWidth, MipHeight [MaxMipLevels]int
	Levels              [MaxMipLevels][]byte // tightly packed RGBA8 per level

	MinFilter, MagFilter glenum.TextureFilter
	WrapS, WrapT         glenum.TextureWrap
	CropX, CropY, CropW, CropH int

	MipmapSupported bool
	CurrentLevel    int // highest populated level

	// RequiresPOT, when false, relaxes the power-of-two invariant for
	// level 0 (SPEC_FULL.md §5: required_internalformat extension).
	RequiresPOT bool

	Version uint32 // bumped on tex_image_2d/tex_sub_image_2d; texcache keys on this
	Active  bool
}

// Table is a per-context texture table indexed by small integer ids
// (spec.md §3: "Textures live in a per-context table indexed by small
// integer ids; deletions null the slot and drop all level allocations").
//
// Table is not safe for concurrent use; texture gen/bind/delete/tex_image
// calls are serialized on the API thread like all other RenderContext
// writes (spec.md §5).
type Table struct {
	slots []*Texture
	next  uint32
}

// NewTable creates an empty texture table. Id 0 is reserved (meaning
// "unbound"), matching GL ES's convention.
func NewTable() *Table {
	return &Table{slots: make([]*Texture, 1), next: 1}
}

// Gen allocates n sequential ids and reserves empty (inactive) slots for
// them, per spec.md §4.4's gen_textures.
func (t *Table) Gen(n int) []uint32 {
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id := t.next
		t.next++
		ids[i] = id
		t.slots = append(t.slots, &Texture{ID: id, RequiresPOT: true})
	}
	return ids
}

// Get returns the texture for id, or nil if id is 0, out of range, or was
// deleted.
func (t *Table) Get(id uint32) *Texture {
	if id == 0 || int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

// Delete nulls id's slot and drops its level allocations.
func (t *Table) Delete(id uint32) {
	if id == 0 || int(id) >= len(t.slots) {
		return
	}
	t.slots[id] = nil
}

// TexImage2D reallocates level 0 (or the given level) of id's texture,
// resetting its dimensions. If mipmapping is enabled (MipmapSupported),
// later levels are invalidated per spec.md §4.4.
func (t *Table) TexImage2D(id uint32, level, width, height int, pixels []byte) {
	tex := t.Get(id)
	if tex == nil || level < 0 || level >= MaxMipLevels {
		return
	}
	tex.Levels[level] = pixels
	tex.MipWidth[level] = width
	tex.MipHeight[level] = height
	if level == 0 {
		tex.Width, tex.Height = width, height
		if tex.MipmapSupported {
			for l := 1; l < MaxMipLevels; l++ {
				tex.Levels[l] = nil
				tex.MipWidth[l] = 0
				tex.MipHeight[l] = 0
			}
		}
	}
	if level > tex.CurrentLevel {
		tex.CurrentLevel = level
	}
	tex.Active = true
	tex.Version++
}

// TexSubImage2D overwrites a subrect of an existing level within the same
// format. subPixels must already be tightly packed RGBA8 for the subrect
// (w*h*4 bytes); ErrFormatMismatch if len(subPixels) doesn't match.
func (t *Table) TexSubImage2D(id uint32, level, x, y, w, h int, subPixels []byte) error {
	tex := t.Get(id)
	if tex == nil || level < 0 || level >= MaxMipLevels {
		return ErrFormatMismatch
	}
	if len(subPixels) != w*h*4 {
		return ErrFormatMismatch
	}
	dst := tex.Levels[level]
	lw := tex.MipWidth[level]
	for row := 0; row < h; row++ {
		srcOff := row * w * 4
		dstOff := ((y+row)*lw + x) * 4
		copy(dst[dstOff:dstOff+w*4], subPixels[srcOff:srcOff+w*4])
	}
	tex.Version++
	return nil
}
