package gles

// Fixed is a 16.16 fixed-point value, the wire representation the `x`-
// suffixed GL ES 1.1 entry points use (spec.md §6: "Fixed-point variants
// (suffix x) convert between 16.16 fixed and float via fixed/65536 and
// float*65536; semantics otherwise match").
type Fixed int32

const fixedScale = 65536

// ToFloat32 converts a 16.16 fixed-point value to float32.
func (f Fixed) ToFloat32() float32 {
	return float32(f) / fixedScale
}

// FloatToFixed converts a float32 to a 16.16 fixed-point value.
func FloatToFixed(v float32) Fixed {
	return Fixed(v * fixedScale)
}

// Translatex is LoadMatrix-path Translate's fixed-point variant.
func (c *Context) Translatex(x, y, z Fixed) {
	c.Translate(x.ToFloat32(), y.ToFloat32(), z.ToFloat32())
}

// Scalex is Scale's fixed-point variant.
func (c *Context) Scalex(x, y, z Fixed) {
	c.Scale(x.ToFloat32(), y.ToFloat32(), z.ToFloat32())
}

// Rotatex is Rotate's fixed-point variant.
func (c *Context) Rotatex(angle, x, y, z Fixed) {
	c.Rotate(angle.ToFloat32(), x.ToFloat32(), y.ToFloat32(), z.ToFloat32())
}

// Frustumx is Frustum's fixed-point variant.
func (c *Context) Frustumx(left, right, bottom, top, near, far Fixed) {
	c.Frustum(left.ToFloat32(), right.ToFloat32(), bottom.ToFloat32(), top.ToFloat32(), near.ToFloat32(), far.ToFloat32())
}

// Orthox is Ortho's fixed-point variant.
func (c *Context) Orthox(left, right, bottom, top, near, far Fixed) {
	c.Ortho(left.ToFloat32(), right.ToFloat32(), bottom.ToFloat32(), top.ToFloat32(), near.ToFloat32(), far.ToFloat32())
}

// Color4x is Color4's fixed-point variant.
func (c *Context) Color4x(r, g, b, a Fixed) {
	c.Color4(r.ToFloat32(), g.ToFloat32(), b.ToFloat32(), a.ToFloat32())
}

// Normal3x is Normal3's fixed-point variant.
func (c *Context) Normal3x(x, y, z Fixed) {
	c.Normal3(x.ToFloat32(), y.ToFloat32(), z.ToFloat32())
}

// PointSizex is PointSize's fixed-point variant.
func (c *Context) PointSizex(size Fixed) {
	c.PointSize(size.ToFloat32())
}

// LineWidthx is LineWidth's fixed-point variant.
func (c *Context) LineWidthx(width Fixed) {
	c.LineWidth(width.ToFloat32())
}
