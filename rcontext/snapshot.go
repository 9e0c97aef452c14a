package rcontext

import "github.com/gogpu/microgles/matrix"

// snapshotVersioned implements spec.md §4.4's reader protocol: load the
// version with acquire ordering, copy the group, load the version again;
// if unchanged the copy is a consistent snapshot, otherwise retry. The
// "simpler variant" spec.md allows (workers tolerate a one-step-stale
// snapshot since mismatches are rechecked on the next job) is not taken
// here — every snapshot method below retries until consistent, since the
// retry loop is cheap (no allocation, no syscall) and removes any need for
// the pipeline to re-validate staleness downstream.
func snapshotVersioned[T any](copyFn func() T, versionFn func() uint32) (T, uint32) {
	for {
		before := versionFn()
		v := copyFn()
		after := versionFn()
		if before == after {
			return v, before
		}
	}
}

// MatrixSnapshot is a consistent point-in-time read of a matrix group.
type MatrixSnapshot struct {
	Top     matrix.Mat4
	Depth   int
	Version uint32
}

type matrixTopDepth struct {
	top   matrix.Mat4
	depth int
}

// Snapshot returns a consistent read of g.
func (g *MatrixGroup) Snapshot() MatrixSnapshot {
	v, version := snapshotVersioned(func() matrixTopDepth {
		return matrixTopDepth{top: g.Stack.Top(), depth: g.Stack.Depth()}
	}, g.Version)
	return MatrixSnapshot{Top: v.top, Depth: v.depth, Version: version}
}

// Snapshot returns a consistent copy of b.
func (b *Blend) Snapshot() (Blend, uint32) {
	return snapshotVersioned(func() Blend {
		var out Blend
		enabled, _ := b.Enabled.Get()
		out.Enabled.Set(enabled)
		out.Src, out.Dst = b.Src, b.Dst
		return out
	}, b.Version)
}

// Snapshot returns a consistent copy of d.
func (d *Depth) Snapshot() (Depth, uint32) {
	return snapshotVersioned(func() Depth {
		var out Depth
		enabled, _ := d.TestEnabled.Get()
		out.TestEnabled.Set(enabled)
		out.Func = d.Func
		return out
	}, d.Version)
}

// Snapshot returns a consistent copy of f.
func (f *Fog) Snapshot() (Fog, uint32) {
	return snapshotVersioned(func() Fog {
		var out Fog
		enabled, _ := f.Enabled.Get()
		out.Enabled.Set(enabled)
		out.Mode, out.Density, out.Start, out.End, out.Color = f.Mode, f.Density, f.Start, f.End, f.Color
		return out
	}, f.Version)
}

// Snapshot returns a consistent copy of a.
func (a *AlphaTest) Snapshot() (AlphaTest, uint32) {
	return snapshotVersioned(func() AlphaTest {
		var out AlphaTest
		enabled, _ := a.Enabled.Get()
		out.Enabled.Set(enabled)
		out.Func, out.Ref = a.Func, a.Ref
		return out
	}, a.Version)
}

// Snapshot returns a consistent copy of c.
func (c *Cull) Snapshot() (Cull, uint32) {
	return snapshotVersioned(func() Cull {
		var out Cull
		enabled, _ := c.Enabled.Get()
		out.Enabled.Set(enabled)
		out.Face, out.Front = c.Face, c.Front
		return out
	}, c.Version)
}

// Snapshot returns a consistent copy of t.
func (t *TextureEnv) Snapshot() (TextureEnv, uint32) {
	return snapshotVersioned(func() TextureEnv {
		return TextureEnv{
			Mode: t.Mode, EnvColor: t.EnvColor, BoundTexture: t.BoundTexture,
			WrapS: t.WrapS, WrapT: t.WrapT, MinFilter: t.MinFilter, MagFilter: t.MagFilter,
		}
	}, t.Version)
}

// Snapshot returns a consistent copy of l.
func (l *Light) Snapshot() (Light, uint32) {
	return snapshotVersioned(func() Light {
		var out Light
		enabled, _ := l.Enabled.Get()
		out.Enabled.Set(enabled)
		out.Ambient, out.Diffuse, out.Specular = l.Ambient, l.Diffuse, l.Specular
		out.Position, out.SpotDirection = l.Position, l.SpotDirection
		out.SpotExponent, out.SpotCutoff = l.SpotExponent, l.SpotCutoff
		out.ConstantAtten, out.LinearAtten, out.QuadraticAtten = l.ConstantAtten, l.LinearAtten, l.QuadraticAtten
		return out
	}, l.Version)
}

// Snapshot returns a consistent copy of m.
func (m *Material) Snapshot() (Material, uint32) {
	return snapshotVersioned(func() Material {
		return Material{Front: m.Front, Back: m.Back}
	}, m.Version)
}
