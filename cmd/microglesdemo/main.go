// Command microglesdemo exercises the microgles software OpenGL ES 1.1
// core end-to-end: it creates a context, issues a handful of state and
// draw calls, and dumps the resulting framebuffer as a PPM image. PNG/BMP
// encoding and window-system presentation are the out-of-scope API
// collaborator's job (spec.md §1); this demo only drives the core.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/gogpu/microgles/glenum"
	"github.com/gogpu/microgles/gles"
	"github.com/gogpu/microgles/rcontext"
)

func main() {
	var (
		width   = flag.Int("width", 256, "framebuffer width")
		height  = flag.Int("height", 256, "framebuffer height")
		output  = flag.String("output", "demo.ppm", "output file")
		threads = flag.Int("threads", 0, "worker thread count (0 = GOMAXPROCS)")
	)
	flag.Parse()

	ctx, err := gles.NewContext(*width, *height, gles.WithThreads(*threads))
	if err != nil {
		log.Fatalf("NewContext: %v", err)
	}
	defer ctx.Destroy()

	ctx.ClearColorf(0.05, 0.05, 0.1, 1)
	ctx.ClearDepthf(1)
	ctx.Clear()

	ctx.Enable(gles.CapDepthTest)
	ctx.DepthFunc(glenum.LEqual)
	ctx.Viewport(0, 0, *width, *height)

	ctx.MatrixMode(glenum.ProjectionMode)
	ctx.LoadIdentity()
	aspect := float32(*width) / float32(*height)
	ctx.Frustum(-aspect, aspect, -1, 1, 1, 100)

	ctx.MatrixMode(glenum.ModelviewMode)
	ctx.LoadIdentity()
	ctx.Translate(0, 0, -4)

	ctx.Enable(gles.CapLighting)
	ctx.Enable(gles.CapLight0)
	ctx.Light(0, gles.LightPosition, [4]float32{0, 0, 1, 0})
	ctx.Light(0, gles.LightDiffuse, [4]float32{1, 1, 1, 1})
	ctx.Material(glenum.CullFrontAndBack, gles.MaterialDiffuse, [4]float32{0.8, 0.3, 0.3, 1})
	ctx.Material(glenum.CullFrontAndBack, gles.MaterialAmbient, [4]float32{0.2, 0.1, 0.1, 1})

	drawSpinningTriangleFan(ctx)

	pixels := make([]byte, (*width)*(*height)*4)
	ctx.ReadPixels(0, 0, *width, *height, pixels)

	if err := writePPM(*output, *width, *height, pixels); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %s (%dx%d)", *output, *width, *height)
}

// drawSpinningTriangleFan submits a small ring of triangles around the
// origin, each with its own vertex color, to exercise the vertex/
// primitive/raster/fragment stages together with per-vertex lighting.
func drawSpinningTriangleFan(ctx *gles.Context) {
	const n = 8
	type vtx struct {
		pos, normal [3]float32
		color       [4]float32
	}
	verts := make([]vtx, 0, n*3)
	for i := 0; i < n; i++ {
		a0 := float64(i) / n * 2 * math.Pi
		a1 := float64(i+1) / n * 2 * math.Pi
		hue := float32(i) / n
		verts = append(verts,
			vtx{pos: [3]float32{0, 0, 0}, normal: [3]float32{0, 0, 1}, color: [4]float32{1, 1, 1, 1}},
			vtx{pos: [3]float32{float32(math.Cos(a0)), float32(math.Sin(a0)), 0}, normal: [3]float32{0, 0, 1}, color: [4]float32{hue, 1 - hue, 0.5, 1}},
			vtx{pos: [3]float32{float32(math.Cos(a1)), float32(math.Sin(a1)), 0}, normal: [3]float32{0, 0, 1}, color: [4]float32{1 - hue, hue, 0.5, 1}},
		)
	}

	posBytes := make([]byte, 0, len(verts)*3*4)
	colorBytes := make([]byte, 0, len(verts)*4*4)
	for _, v := range verts {
		posBytes = appendFloat32s(posBytes, v.pos[0], v.pos[1], v.pos[2])
		colorBytes = appendFloat32s(colorBytes, v.color[0], v.color[1], v.color[2], v.color[3])
	}

	ctx.EnableClientState(gles.VertexArray)
	ctx.EnableClientState(gles.ColorArray)
	ctx.VertexPointer(3, rcontext.Float32Type, 0, posBytes, 0)
	ctx.ColorPointer(4, rcontext.Float32Type, 0, colorBytes, 0)

	ctx.DrawArrays(glenum.Triangles, 0, len(verts))
	ctx.Finish()
}

func appendFloat32s(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		bits := math.Float32bits(v)
		dst = append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return dst
}

// writePPM writes pixels (tightly packed RGBA8, row-major top-to-bottom)
// as a binary PPM (P6), dropping the alpha channel.
func writePPM(path string, w, h int, pixels []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P6\n%d %d\n255\n", w, h); err != nil {
		return err
	}
	row := make([]byte, w*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			row[x*3+0] = pixels[off+0]
			row[x*3+1] = pixels[off+1]
			row[x*3+2] = pixels[off+2]
		}
		if _, err := f.Write(row); err != nil {
			return err
		}
	}
	return nil
}
