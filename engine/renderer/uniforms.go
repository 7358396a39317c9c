package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"go.uber.org/zap"
)

func (r *renderer) InitProgramUniforms(name string, uniforms ...string) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	for _, un := range uniforms {
		rule, ok := uniform.LookupProgram(un)
		if !ok {
			logger().Warn("unknown program uniform", zap.String("program", name), zap.String("uniform", un))
			continue
		}
		resolve := rule.Resolve
		u := uniform.New(un, rule.Kind, r.backend.UniformLocation(p.Handle, un)).
			WithResolver(func() []float32 { return resolve(&r.frame) })
		p.Uniforms.Put(u)
		if rule.Varying {
			p.NeedsUpdate = true
		}
	}
	return nil
}

func (r *renderer) InitGeometryUniforms(name string, uniforms ...string) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	for _, un := range uniforms {
		rule, ok := uniform.LookupGeometry(un)
		if !ok {
			logger().Warn("unknown geometry uniform", zap.String("program", name), zap.String("uniform", un))
			continue
		}
		r.addGeometryUniform(p, program.GeometryUniform{Name: un, Kind: rule.Kind})
	}
	return nil
}

// addGeometryUniform records gu on the program, replacing a previous registration of the
// same name, and instantiates it on every attachment.
func (r *renderer) addGeometryUniform(p *program.Program, gu program.GeometryUniform) {
	replaced := false
	for i := range p.GeometryUniforms {
		if p.GeometryUniforms[i].Name == gu.Name {
			p.GeometryUniforms[i] = gu
			replaced = true
		}
	}
	if !replaced {
		p.GeometryUniforms = append(p.GeometryUniforms, gu)
	}
	for _, a := range p.Attachments() {
		r.instantiate(p, a, gu)
	}
}

// instantiate creates the uniform of gu for one attachment. Well-known uniforms resolve
// from the attachment's geometry at the current total time.
func (r *renderer) instantiate(p *program.Program, a *program.Attachment, gu program.GeometryUniform) {
	u := uniform.New(gu.Name, gu.Kind, r.backend.UniformLocation(p.Handle, gu.Name))
	if rule, ok := uniform.LookupGeometry(gu.Name); ok {
		g := a.Geometry
		resolve := rule.Resolve
		u.WithResolver(func() []float32 { return resolve(g.ModelMatrix(r.clock.TotalMillis())) })
	} else if gu.Value != nil {
		u.SetFloats(gu.Value)
	}
	a.Uniforms.Put(u)
}

func (r *renderer) AddProgramUniform(name, uniformName string, kind uniform.Kind, value []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	u := uniform.New(uniformName, kind, r.backend.UniformLocation(p.Handle, uniformName))
	if value != nil {
		u.SetFloats(value)
	}
	p.Uniforms.Put(u)
	return nil
}

func (r *renderer) AddGeometryUniform(name, uniformName string, kind uniform.Kind, value []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	r.addGeometryUniform(p, program.GeometryUniform{
		Name:  uniformName,
		Kind:  kind,
		Value: append([]float32(nil), value...),
	})
	return nil
}

func (r *renderer) UpdateProgramUniform(name, uniformName string, value []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	u, ok := p.Uniform(uniformName)
	if !ok {
		return fmt.Errorf("%w: %q in program %q", ErrUniformNotFound, uniformName, name)
	}
	u.SetFloats(value)
	return nil
}

func (r *renderer) UpdateGeometryUniform(name string, g geometry.Geometry, uniformName string, value []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	a, ok := p.Attachment(g)
	if !ok {
		return fmt.Errorf("%w: geometry is not attached to %q", ErrUniformNotFound, name)
	}
	u, ok := a.Uniforms.Get(uniformName)
	if !ok {
		return fmt.Errorf("%w: %q in program %q", ErrUniformNotFound, uniformName, name)
	}
	u.SetFloats(value)
	return nil
}

func (r *renderer) AddUniformBuffer(name, block string, binding uint32, values []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	ub, err := uniform.NewBuffer(r.backend, p.Handle, block, binding, values)
	if err != nil {
		logger().Error("uniform buffer unusable", zap.String("program", name), zap.String("block", block), zap.Error(err))
		return fmt.Errorf("program %q: %w", name, err)
	}
	for i, existing := range p.Buffers {
		if existing.Name == block {
			existing.Release(r.backend)
			p.Buffers[i] = ub
			return nil
		}
	}
	p.Buffers = append(p.Buffers, ub)
	return nil
}

func (r *renderer) UpdateUniformBuffer(name, block string, offset int, values []float32) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	for _, ub := range p.Buffers {
		if ub.Name == block {
			if err := ub.Update(r.backend, offset, values); err != nil {
				return fmt.Errorf("program %q: %w", name, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q in program %q", ErrBlockNotFound, block, name)
}

func (r *renderer) DataTexture(name, uniformName string, unit uint32, spec backend.TextureSpec) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	tex := uniform.NewTexture(r.backend, unit, spec)
	if old, ok := p.Uniform(uniformName); ok && old.Texture != nil && !r.textureShared(old.Texture, old) {
		old.Texture.Release(r.backend)
	}
	p.Uniforms.Put(uniform.NewSampler(uniformName, r.backend.UniformLocation(p.Handle, uniformName), tex))
	logger().Debug("texture created",
		zap.String("program", name),
		zap.String("uniform", uniformName),
		zap.Uint32("unit", unit),
		zap.Int32("width", spec.Width),
		zap.Int32("height", spec.Height),
	)
	return nil
}

// textureShared reports whether any sampler other than owner references tex.
func (r *renderer) textureShared(tex *uniform.Texture, owner *uniform.Uniform) bool {
	for _, p := range r.programs {
		for _, u := range p.Uniforms.All() {
			if u != owner && u.Texture == tex {
				return true
			}
		}
	}
	return false
}

func (r *renderer) LoadTexture(name, uniformName string, unit uint32, src common.ImageSource) error {
	staging, err := src.Decode()
	if err != nil {
		return fmt.Errorf("load texture %q: %w", uniformName, err)
	}
	return r.DataTexture(name, uniformName, unit, backend.TextureSpec{
		Target: backend.Texture2D,
		Format: backend.FormatRGBA8,
		Width:  int32(staging.Width),
		Height: int32(staging.Height),
		Wrap:   backend.WrapClampToEdge,
		Filter: backend.FilterLinear,
		Data:   staging.Pixels,
	})
}

// sampler returns the sampler uniform a TextureRef names.
func (r *renderer) sampler(ref program.TextureRef) (*uniform.Uniform, error) {
	p, err := r.Program(ref.Program)
	if err != nil {
		return nil, err
	}
	u, ok := p.Uniform(ref.Uniform)
	if !ok || u.Kind != uniform.Sampler {
		return nil, fmt.Errorf("%w: sampler %q in program %q", ErrUniformNotFound, ref.Uniform, ref.Program)
	}
	return u, nil
}

func (r *renderer) SwapTextures(a, b program.TextureRef) error {
	ua, err := r.sampler(a)
	if err != nil {
		return err
	}
	ub, err := r.sampler(b)
	if err != nil {
		return err
	}
	ua.Texture, ub.Texture = ub.Texture, ua.Texture
	return nil
}

func (r *renderer) SwapTexturesHook(a, b program.TextureRef) func() error {
	return func() error {
		return r.SwapTextures(a, b)
	}
}
