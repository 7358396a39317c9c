package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotated = `#version 410 core
// @oxy:include user_intersects
// @oxy:uniform u_TimeDelta
//   @oxy:uniform u_ModelMatrix
// an ordinary comment
void main() {}
`

func TestProcessExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(annotated)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#version 410 core\n"), "version line stays first")
	assert.Contains(t, out, "uniform u_UserIntersectsBuffer {")
	assert.Contains(t, out, "uniform int u_NumUsers;")
	assert.Contains(t, out, "uniform float u_TimeDelta;")
	assert.Contains(t, out, "uniform mat4 u_ModelMatrix;")
	assert.Contains(t, out, "// an ordinary comment")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, Annotation{Type: AnnotationTypeUniform, Arg: uniform.TimeDelta, Line: 3}, decls[0])
	assert.Equal(t, uniform.ModelMatrix, decls[1].Arg)
	assert.Equal(t, 4, decls[1].Line)
}

func TestUserIntersectsMatchesArrayLength(t *testing.T) {
	assert.Contains(t, UserIntersectsSource, "#define OXY_MAX_USERS 8")
	assert.Equal(t, 8, MaxUserIntersects)
}

func TestProcessErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown chunk", "void main() {}\n// @oxy:include nope", `line 2: unknown @oxy:include chunk "nope"`},
		{"unknown uniform", "// @oxy:uniform u_Whatever", `line 1: "u_Whatever" is not a well-known uniform`},
		{"unknown type", "// @oxy:define X", `line 1: unknown annotation type "define"`},
		{"missing argument", "// @oxy:include", "line 1: @oxy:include annotation requires exactly one argument"},
		{"empty", "// @oxy:", "line 1: empty @oxy annotation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(tc.src)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestAnnotationOutsideCommentIsIgnored(t *testing.T) {
	src := `const char* s = "@oxy:include hash";`
	out, err := NewPreProcessor().Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestDeclarationsResetBetweenCalls(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("// @oxy:uniform u_TotalTime")
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 1)

	_, err = pp.Process("void main() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestRegister(t *testing.T) {
	pp := NewPreProcessor()
	pp.Register("tint", "uniform vec3 u_Tint;\n")
	out, err := pp.Process("// @oxy:include tint\nvoid main() {}")
	require.NoError(t, err)
	assert.Equal(t, "uniform vec3 u_Tint;\nvoid main() {}", out)

	pp.Register(ChunkHash, "// replaced")
	out, err = pp.Process("// @oxy:include hash")
	require.NoError(t, err)
	assert.Equal(t, "// replaced", out)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "update.vert")
	require.NoError(t, os.WriteFile(path, []byte("// @oxy:include hash\n"), 0o600))

	src, err := Load(NewPreProcessor(), path)
	require.NoError(t, err)
	assert.Contains(t, src, "vec3 hash3(float n)")

	bad := filepath.Join(dir, "bad.vert")
	require.NoError(t, os.WriteFile(bad, []byte("// @oxy:include nope\n"), 0o600))
	_, err = Load(NewPreProcessor(), bad)
	assert.ErrorContains(t, err, "bad.vert")

	_, err = Load(NewPreProcessor(), filepath.Join(dir, "missing.vert"))
	assert.Error(t, err)
}

func TestSplitUniforms(t *testing.T) {
	vert := []Annotation{
		{Type: AnnotationTypeUniform, Arg: uniform.ProjectionMatrix},
		{Type: AnnotationTypeUniform, Arg: uniform.ModelMatrix},
		{Type: AnnotationTypeInclude, Arg: ChunkHash},
	}
	frag := []Annotation{
		{Type: AnnotationTypeUniform, Arg: uniform.ProjectionMatrix},
		{Type: AnnotationTypeUniform, Arg: uniform.Resolution},
	}
	programUniforms, geometryUniforms := SplitUniforms(vert, frag)
	assert.Equal(t, []string{uniform.ProjectionMatrix, uniform.Resolution}, programUniforms)
	assert.Equal(t, []string{uniform.ModelMatrix}, geometryUniforms)
}
