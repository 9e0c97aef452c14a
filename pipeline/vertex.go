package pipeline

import (
	"github.com/gogpu/microgles/matrix"
	"github.com/gogpu/microgles/scheduler"
)

// runVertex implements the Vertex stage (spec.md §4.7). It snapshots the
// modelview/projection versions, recomputes mvp only when either changed
// (a per-worker memo), transforms the three input vertices, applies
// single-light Lambertian lighting when enabled, snapshots the rest of
// the fragment-relevant state into a ShadingState, and submits a
// PrimitiveJob as its final action.
func (p *Pipeline) runVertex(workerID int, job *VertexJob) {
	p.Plugins.Invoke(scheduler.Vertex, job, helperFor(p, workerID))

	slot := p.workerSlot(workerID)
	mvp := p.mvpFor(slot)

	out := job.Input
	for i := range out {
		out[i].Position = matrix.MulVec4(mvp, out[i].Position)
	}

	if lit, _ := p.RC.Lighting.Get(); lit {
		p.applyLighting(&out)
	}

	shading := snapshotShadingState(p.RC, p.PerspectiveCorrect)

	prim := &PrimitiveJob{Triangle: out, FB: job.FB, Shading: shading}
	p.releaseVertexJob(job)
	p.submitPrimitive(workerID, prim)
}

// mvpFor returns the memoized projection*modelview matrix for worker
// slot, recomputing it only if either matrix group's version changed
// since the last call from this worker (spec.md §4.7).
func (p *Pipeline) mvpFor(slot int) matrix.Mat4 {
	c := &p.mvp[slot]
	mvSnap := p.RC.Modelview.Snapshot()
	projSnap := p.RC.Projection.Snapshot()

	if c.valid && c.modelviewVer == mvSnap.Version && c.projVer == projSnap.Version {
		return c.mvp
	}

	c.mvp = matrix.Mul(projSnap.Top, mvSnap.Top)
	c.modelviewVer = mvSnap.Version
	c.projVer = projSnap.Version
	c.valid = true
	return c.mvp
}

// applyLighting shades tri in place using light 0 and the front material,
// per spec.md §4.7: "compute normalized light direction, Lambertian dot
// max(0, n.l), and produce per-component color mat.ambient*light.ambient
// + mat.diffuse*light.diffuse*dot, preserving material alpha."
//
// The normal is transformed by the modelview's upper 3x3 block (ignoring
// translation) and renormalized; the light direction is the light's
// position treated as a direction for a directional light (w==0) or as
// the vector from the vertex toward the light for a positional one
// (w==1). For a positional light the vertex position used is the one the
// mvp transform above already produced, and the light position is used
// untransformed — a simplification consistent with the core shipping only light 0 and
// skipping a dedicated eye-space transform (spec.md §4.7 describes the
// math but not the exact space; see DESIGN.md Open Question decisions).
func (p *Pipeline) applyLighting(tri *Triangle) {
	light, _ := p.RC.Lights[0].Snapshot()
	if on, _ := light.Enabled.Get(); !on {
		return
	}
	mat, _ := p.RC.Material.Snapshot()
	mv := p.RC.Modelview.Snapshot()

	for i := range tri {
		v := &tri[i]
		n := matrix.Normalize(matrix.TransformNormal(mv.Top, v.Normal))

		var lightDir matrix.Vec3
		if light.Position[3] == 0 {
			lightDir = matrix.Normalize(matrix.Vec3{light.Position[0], light.Position[1], light.Position[2]})
		} else {
			pos := matrix.Vec3{v.Position[0], v.Position[1], v.Position[2]}
			lightDir = matrix.Normalize(matrix.Vec3{
				light.Position[0] - pos[0],
				light.Position[1] - pos[1],
				light.Position[2] - pos[2],
			})
		}

		dot := matrix.Dot3(n, lightDir)
		if dot < 0 {
			dot = 0
		}

		v.Color = [4]float32{
			mat.Front.Ambient.R*light.Ambient.R + mat.Front.Diffuse.R*light.Diffuse.R*dot,
			mat.Front.Ambient.G*light.Ambient.G + mat.Front.Diffuse.G*light.Diffuse.G*dot,
			mat.Front.Ambient.B*light.Ambient.B + mat.Front.Diffuse.B*light.Diffuse.B*dot,
			mat.Front.Diffuse.A,
		}
	}
}
