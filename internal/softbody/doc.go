// Package softbody implements meshless shape-matching deformation of a
// triangulated surface.
//
// Each frame a [Body] fits a transform of its rest shape to the current
// shape and pulls every vertex toward the fitted ("goal") position:
//
//   - [ShapeMatching]: best-fit rotation, the default
//   - [RigidBody]: best-fit rotation with full stiffness
//   - [Linear]: rotation blended with the volume-normalised affine fit
//   - [Quadratic]: rotation blended with a nine-parameter quadratic fit
//
// Velocities are integrated with a semi-implicit Euler step, and vertices
// that leave the wall box receive spring and damper penalty forces.
//
// # Example
//
//	m, _ := mesh.Primitive("sphere")
//	b, err := softbody.New(m, softbody.DefaultParams())
//	if err != nil {
//		return err
//	}
//	for i := 0; i < 600; i++ {
//		if err := b.Advance(); err != nil {
//			return err
//		}
//	}
//
// # Thread Safety
//
// A Body is not safe for concurrent use. Parameters may be changed between
// calls to Advance.
package softbody
