package presence

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
)

const (
	// IntersectsBlock is the uniform block holding one vec4 hit point per room member.
	IntersectsBlock = "u_UserIntersectsBuffer"
	// NumUsersUniform is the int uniform holding the number of valid hit points.
	NumUsersUniform = "u_NumUsers"
)

// ApplyRoomUpdate writes the hit points of a data message into the program's
// IntersectsBlock, user i at float offset 4*i, and sets NumUsersUniform to the member
// count. Other message types are ignored. Must be called on the render thread.
//
// Parameters:
//   - r: the renderer owning the program
//   - program: the program declaring the block and the uniform
//   - msg: a server message
//
// Returns:
//   - error: joined lookup and range errors; a member past the end of the block stops
//     the buffer writes
func ApplyRoomUpdate(r renderer.Renderer, program string, msg Message) error {
	if msg.Type != TypeData {
		return nil
	}
	var errs []error
	for i, u := range msg.Users {
		if err := r.UpdateUniformBuffer(program, IntersectsBlock, i*4, u.Intersect[:]); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if err := r.UpdateProgramUniform(program, NumUsersUniform, []float32{float32(len(msg.Users))}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
