// pre_processor.go implements the GLSL pre-processor. It scans shader source for @oxy:
// annotations, replaces include annotations with registered chunks and uniform annotations
// with generated declarations, and collects the declared engine uniforms so programs can
// be wired without repeating uniform names in Go.
package shader

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

// HashSource defines vec3 hash3(float), a cheap pseudo-random vector in [-1, 1].
//
//go:embed assets/hash.glsl
var HashSource string

// UserIntersectsSource declares the u_UserIntersectsBuffer block holding one vec4 per
// room member, plus the u_NumUsers count filled in by the presence client.
//
//go:embed assets/user_intersects.glsl
var UserIntersectsSource string

// FullscreenQuadSource declares the vertex inputs and texture coordinate varying of a
// full-screen quad pass.
//
//go:embed assets/fullscreen_quad.glsl
var FullscreenQuadSource string

// MaxUserIntersects is the array length of the u_UserIntersectsBuffer block.
const MaxUserIntersects = 8

// Built-in chunk names.
const (
	ChunkHash           = "hash"
	ChunkUserIntersects = "user_intersects"
	ChunkFullscreenQuad = "fullscreen_quad"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	chunks map[string]string

	// declarations holds the uniform annotations of the last Process call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in GLSL source. It is not safe for concurrent use.
type PreProcessor interface {
	// Process expands the annotations of a shader source. Include annotations are
	// replaced with the chunk text, uniform annotations with a uniform declaration.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the annotated GLSL source
	//
	// Returns:
	//   - string: the expanded GLSL source
	//   - error: an error naming the line of a malformed or unknown annotation
	Process(source string) (string, error)

	// Declarations returns the uniform annotations of the most recent Process call in
	// source order.
	//
	// Returns:
	//   - []Annotation: the declared engine uniforms
	Declarations() []Annotation

	// Register adds or replaces a chunk available to include annotations.
	//
	// Parameters:
	//   - name: the chunk name used in the annotation
	//   - source: the GLSL text injected in place of the annotation
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the built-in chunks registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		chunks: map[string]string{
			ChunkHash:           HashSource,
			ChunkUserIntersects: UserIntersectsSource,
			ChunkFullscreenQuad: FullscreenQuadSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			chunk, ok := p.chunks[a.Arg]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include chunk %q", a.Line, a.Arg)
			}
			out = append(out, strings.TrimRight(chunk, "\n"))
		case AnnotationTypeUniform:
			kind, ok := wellKnownKind(a.Arg)
			if !ok {
				return "", fmt.Errorf("line %d: %q is not a well-known uniform", a.Line, a.Arg)
			}
			out = append(out, fmt.Sprintf("uniform %s %s;", kind, a.Arg))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) Register(name, source string) {
	p.chunks[name] = source
}

// wellKnownKind looks a name up in the program rules first, then the geometry rules.
func wellKnownKind(name string) (uniform.Kind, bool) {
	if rule, ok := uniform.LookupProgram(name); ok {
		return rule.Kind, true
	}
	if rule, ok := uniform.LookupGeometry(name); ok {
		return rule.Kind, true
	}
	return 0, false
}

// Load reads a shader file and expands its annotations.
//
// Parameters:
//   - pp: the pre-processor to expand with
//   - path: the GLSL file path
//
// Returns:
//   - string: the expanded source
//   - error: error if the file cannot be read or expanded
func Load(pp PreProcessor, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	src, err := pp.Process(string(data))
	if err != nil {
		return "", fmt.Errorf("shader %s: %w", path, err)
	}
	return src, nil
}

// SplitUniforms sorts declared uniforms into program-level and per-geometry names, in
// the form InitProgramUniforms and InitGeometryUniforms take them. Duplicates are dropped.
//
// Parameters:
//   - decls: declarations from one or more Process calls
//
// Returns:
//   - []string: well-known program uniform names
//   - []string: well-known geometry uniform names
func SplitUniforms(decls ...[]Annotation) (programUniforms, geometryUniforms []string) {
	seen := make(map[string]bool)
	for _, list := range decls {
		for _, d := range list {
			if d.Type != AnnotationTypeUniform || seen[d.Arg] {
				continue
			}
			seen[d.Arg] = true
			if _, ok := uniform.LookupGeometry(d.Arg); ok {
				geometryUniforms = append(geometryUniforms, d.Arg)
			} else {
				programUniforms = append(programUniforms, d.Arg)
			}
		}
	}
	return programUniforms, geometryUniforms
}
