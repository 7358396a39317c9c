package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"go.uber.org/zap"
)

func (r *renderer) CreateFramebuffer(name string) {
	if _, ok := r.framebuffers[name]; ok {
		return
	}
	r.framebuffers[name] = r.backend.CreateFramebuffer()
	logger().Debug("framebuffer created", zap.String("framebuffer", name))
}

// texture resolves a routine reference to the texture its sampler currently holds.
func (r *renderer) texture(ref *program.TextureRef) (*uniform.Texture, error) {
	if ref == nil {
		return nil, nil
	}
	u, err := r.sampler(*ref)
	if err != nil {
		return nil, err
	}
	return u.Texture, nil
}

// runRoutine executes a program's framebuffer routine: the pre hook, then the
// framebuffer binding, then the color target attachment, then the source binding.
// References are resolved after the hook so a swap in the hook takes effect this frame.
func (r *renderer) runRoutine(p *program.Program) error {
	rt := p.Routine
	if rt.Pre != nil {
		if err := rt.Pre(); err != nil {
			return fmt.Errorf("pre hook: %w", err)
		}
	}

	var fb uint32
	if rt.Framebuffer != "" {
		var ok bool
		if fb, ok = r.framebuffers[rt.Framebuffer]; !ok {
			return fmt.Errorf("%w: %q", ErrFramebufferNotFound, rt.Framebuffer)
		}
	}
	target, err := r.texture(rt.Target)
	if err != nil {
		return fmt.Errorf("routine target: %w", err)
	}
	source, err := r.texture(rt.Source)
	if err != nil {
		return fmt.Errorf("routine source: %w", err)
	}
	if target != nil && target == source {
		return fmt.Errorf("%w: %s.%s", ErrTextureHazard, rt.Target.Program, rt.Target.Uniform)
	}

	r.backend.BindFramebuffer(fb)
	if target != nil && fb != 0 {
		r.backend.FramebufferTexture2D(target.Handle)
	}
	if source != nil {
		r.backend.BindTexture(source.Unit, source.Target(), source.Handle)
	}
	return nil
}
