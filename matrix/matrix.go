// Package matrix implements the 4x4 homogeneous matrices and vectors the
// rendering context's transform stacks (modelview, projection, texture)
// operate on.
//
// Mat4 follows the column-major convention used throughout the reference
// 3D-engine corpus (column i is Mat4[i]), so Mat4{{1,0,0,0},{0,1,0,0},
// {0,0,1,0},{tx,ty,tz,1}} is a translation by (tx,ty,tz) — the translation
// components live in column 3, matching OpenGL's column-major layout.
package matrix

import "math"

// Vec4 is a homogeneous 4-component vector (x, y, z, w).
type Vec4 [4]float32

// Vec3 is a 3-component vector, used for normals and light directions.
type Vec3 [3]float32

// Mat4 is a column-major 4x4 matrix of float32: Mat4[col][row].
type Mat4 [4]Vec4

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns l * r (apply r first, then l — matches OpenGL's
// post-multiply convention for MultMatrix).
func Mul(l, r Mat4) Mat4 {
	var m Mat4
	for i := range m {
		for j := range m {
			var sum float32
			for k := range m {
				sum += l[k][j] * r[i][k]
			}
			m[i][j] = sum
		}
	}
	return m
}

// MulVec4 returns m * v.
func MulVec4(m Mat4, v Vec4) Vec4 {
	var out Vec4
	for j := 0; j < 4; j++ {
		out[j] = m[0][j]*v[0] + m[1][j]*v[1] + m[2][j]*v[2] + m[3][j]*v[3]
	}
	return out
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[3] = Vec4{x, y, z, 1}
	return m
}

// Scale returns a scaling matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// Rotate returns a rotation matrix of angleDeg degrees about the axis
// (x, y, z), matching glRotatef's semantics. The axis is normalized; a
// zero-length axis yields the identity matrix.
func Rotate(angleDeg, x, y, z float32) Mat4 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return Identity()
	}
	x, y, z = x/length, y/length, z/length

	rad := float64(angleDeg) * math.Pi / 180
	c := float32(math.Cos(rad))
	s := float32(math.Sin(rad))
	ic := 1 - c

	return Mat4{
		{x*x*ic + c, y*x*ic + z*s, z*x*ic - y*s, 0},
		{x*y*ic - z*s, y*y*ic + c, z*y*ic + x*s, 0},
		{x*z*ic + y*s, y*z*ic - x*s, z*z*ic + c, 0},
		{0, 0, 0, 1},
	}
}

// Frustum returns a perspective projection matrix matching glFrustumf.
func Frustum(left, right, bottom, top, near, far float32) Mat4 {
	var m Mat4
	m[0][0] = (2 * near) / (right - left)
	m[1][1] = (2 * near) / (top - bottom)
	m[2][0] = (right + left) / (right - left)
	m[2][1] = (top + bottom) / (top - bottom)
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

// Ortho returns an orthographic projection matrix matching glOrthof.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = -2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}

// Transpose returns the transpose of m.
func Transpose(m Mat4) Mat4 {
	var out Mat4
	for i := range m {
		for j := range m {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Upper3x3 extracts the upper-left 3x3 (rotation/scale) block, used to
// transform normals (ignoring translation).
func Upper3x3(m Mat4) [3]Vec3 {
	var out [3]Vec3
	for i := 0; i < 3; i++ {
		out[i] = Vec3{m[i][0], m[i][1], m[i][2]}
	}
	return out
}

// TransformNormal applies the upper 3x3 block of m to n without translation.
func TransformNormal(m Mat4, n Vec3) Vec3 {
	u := Upper3x3(m)
	return Vec3{
		u[0][0]*n[0] + u[1][0]*n[1] + u[2][0]*n[2],
		u[0][1]*n[0] + u[1][1]*n[1] + u[2][1]*n[2],
		u[0][2]*n[0] + u[1][2]*n[1] + u[2][2]*n[2],
	}
}

// Normalize returns n scaled to unit length. A zero-length vector is
// returned unchanged.
func Normalize(n Vec3) Vec3 {
	l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	if l == 0 {
		return n
	}
	return Vec3{n[0] / l, n[1] / l, n[2] / l}
}

// Dot3 returns the dot product of two Vec3.
func Dot3(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
