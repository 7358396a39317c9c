package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func (r *renderer) Draw(now time.Duration) error {
	r.clock.Tick(now)
	r.frame.TimeDelta = r.clock.DeltaSeconds()
	r.frame.TotalTime = r.clock.TotalSeconds()

	var errs []error
	for _, p := range r.programs {
		if err := r.drawProgram(p); err != nil {
			logger().Warn("program skipped", zap.String("program", p.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("program %q: %w", p.Name, err))
		}
	}

	for _, sim := range r.simulators {
		sim.AdvanceFrame()
	}
	return errors.Join(errs...)
}

func (r *renderer) drawProgram(p *program.Program) error {
	if p.Routine != nil {
		if err := r.runRoutine(p); err != nil {
			return err
		}
	}
	p.Params.Apply(r.backend, r.width, r.height)

	attachments := p.Attachments()
	if len(attachments) == 0 || !p.Valid() {
		return nil
	}

	r.backend.UseProgram(p.Handle)
	for _, ub := range p.Buffers {
		ub.Bind(r.backend)
	}
	if p.NeedsUpdate {
		p.Uniforms.Resolve()
	}
	p.Uniforms.Upload(r.backend)

	target := p.Target()
	var errs []error
	for _, a := range attachments {
		g := a.Geometry
		if target.Feedback {
			sim, ok := g.(geometry.Simulator)
			if !ok {
				continue
			}
			// The update shader may read per-geometry uniforms such as the model matrix.
			r.uploadGeometryUniforms(a)
			if err := sim.Step(r.backend, target, r.frame.TimeDelta); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		g.Bind(r.backend, target)
		r.uploadGeometryUniforms(a)

		// Point programs draw one point per vertex, even for indexed meshes.
		if n := g.IndexCount(); n > 0 && p.Mode != backend.DrawPoints {
			r.backend.DrawElements(p.Mode, n)
		} else {
			r.backend.DrawArrays(p.Mode, 0, g.VertexCount())
		}
	}

	r.backend.BindVertexArray(0)
	r.backend.BindBuffer(backend.BufferArray, 0)
	r.backend.BindBuffer(backend.BufferElementArray, 0)
	return errors.Join(errs...)
}

func (r *renderer) uploadGeometryUniforms(a *program.Attachment) {
	if a.Geometry.NeedsUpdate() {
		a.Uniforms.Resolve()
	}
	a.Uniforms.Upload(r.backend)
}

func (r *renderer) Frame() uniform.Frame { return r.frame }

func (r *renderer) Resolution() (width, height int32) { return r.width, r.height }

func (r *renderer) SetResolution(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.frame.Resolution = mgl32.Vec2{float32(width), float32(height)}
	r.camera.SetAspect(float32(width) / float32(height))
	r.CameraChanged()
}

func (r *renderer) SetCursor(x, y float64) {
	r.frame.Mouse = mgl32.Vec2{
		float32(2*x/float64(r.width) - 1),
		float32(1 - 2*y/float64(r.height)),
	}
}

func (r *renderer) SetClick(down bool) { r.frame.Click = down }

func (r *renderer) SetCameraPosition(p mgl32.Vec3) {
	r.camera.SetPosition(p)
	r.CameraChanged()
}

func (r *renderer) SetCameraTarget(t mgl32.Vec3) {
	r.camera.SetTarget(t)
	r.CameraChanged()
}

func (r *renderer) SetFOV(fov float32) {
	r.camera.SetFov(fov)
	r.CameraChanged()
}

func (r *renderer) CameraChanged() {
	r.syncCamera()
	for _, p := range r.programs {
		p.Uniforms.Resolve()
	}
}

func (r *renderer) syncCamera() {
	r.frame.Projection = r.camera.ProjectionMatrix()
	r.frame.View = r.camera.ViewMatrix()
}
