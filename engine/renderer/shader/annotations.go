// annotations.go defines the @oxy: annotations understood by the GLSL pre-processor.
// Annotations are single-line GLSL comments. They either inject a registered source
// chunk or declare a well-known engine uniform, which the engine then resolves every frame.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks an annotation inside a GLSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude replaces the annotation line with a registered chunk.
	//
	// Syntax: // @oxy:include <chunk>
	//
	// Example: // @oxy:include user_intersects
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform emits the declaration of a well-known engine uniform and
	// records it, so the caller can register it with the renderer without repeating
	// the name.
	//
	// Syntax: // @oxy:uniform <name>
	//
	// Example: // @oxy:uniform u_TimeDelta
	AnnotationTypeUniform AnnotationType = "uniform"
)

// Annotation is a single parsed annotation.
type Annotation struct {
	Type AnnotationType

	// Arg is the chunk name for include annotations and the uniform name for uniform
	// annotations.
	Arg string

	// Line is the 1-based source line of the annotation.
	Line int
}

// parseAnnotation parses one source line. It returns nil for lines that carry no annotation.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude, AnnotationTypeUniform:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:%s annotation requires exactly one argument", lineNum, args[0])
		}
		return &Annotation{Type: AnnotationType(args[0]), Arg: args[1], Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}
