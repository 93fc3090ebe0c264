package softbody_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/shapesim/internal/linalg"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/softbody"
)

const tol = 1e-9

func expectVec(got, want mgl64.Vec3, eps float64) {
	GinkgoHelper()
	for k := 0; k < 3; k++ {
		Expect(got[k]).To(BeNumerically("~", want[k], eps), "component %d of %v vs %v", k, got, want)
	}
}

func expectMat(got, want mgl64.Mat3, eps float64) {
	GinkgoHelper()
	for k := range want {
		Expect(got[k]).To(BeNumerically("~", want[k], eps), "entry %d of %v vs %v", k, got, want)
	}
}

func rotation(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	return mgl64.HomogRotate3D(angle, axis.Normalize()).Mat3()
}

func newBody(m *mesh.Mesh, mutate func(*softbody.Params)) *softbody.Body {
	GinkgoHelper()
	p := softbody.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	b, err := softbody.New(m, p)
	Expect(err).NotTo(HaveOccurred())
	return b
}

// deform applies t about the rest centroid and then translates by offset.
func deform(b *softbody.Body, t mgl64.Mat3, offset mgl64.Vec3) {
	for i, q := range b.RelRest {
		b.Mesh.Vertices[i] = t.Mul3x1(q).Add(b.CMRest).Add(offset)
	}
}

var _ = DescribeTable("MassScale",
	func(n int, want float64) {
		Expect(softbody.MassScale(n)).To(BeNumerically("~", want, 1e-12))
	},
	Entry("tetrahedron", 4, 0.1),
	Entry("cube", 8, 0.1),
	Entry("twelve", 12, 1.0),
	Entry("icosphere", 42, 1.0),
	Entry("hundred", 100, 1.0),
	Entry("fine icosphere", 162, 10.0),
)

var _ = Describe("Body initialization", func() {
	DescribeTable("lumped mass sums to the total",
		func(name string) {
			m, err := mesh.Primitive(name)
			Expect(err).NotTo(HaveOccurred())
			b := newBody(m, nil)

			var sum float64
			for _, mv := range b.Mass {
				Expect(mv).To(BeNumerically(">", 0))
				sum += mv
			}
			Expect(sum).To(BeNumerically("~", b.TotalMass, 1e-12))
			Expect(b.TotalMass).To(BeNumerically("~", softbody.MassScale(m.NumVertices()), 1e-12))
		},
		Entry("tetrahedron", "tetrahedron"),
		Entry("cube", "cube"),
		Entry("sphere", "sphere"),
		Entry("ball", "ball"),
	)

	It("gives a regular tetrahedron uniform mass", func() {
		b := newBody(mesh.Tetrahedron(0.25), nil)
		for _, mv := range b.Mass {
			Expect(mv).To(BeNumerically("~", 0.025, 1e-12))
		}
		Expect(b.Neighbors).To(HaveLen(4))
		for _, nb := range b.Neighbors {
			Expect(nb).To(HaveLen(3))
		}
	})

	It("inverts the rest shape matrix", func() {
		b := newBody(mesh.Icosphere(1, 0.3), nil)
		var sum mgl64.Mat3
		for i, q := range b.RelRest {
			sum = sum.Add(linalg.Outer(q, q).Mul(b.Mass[i]))
		}
		expectMat(b.Aqq.Mul3(sum), mgl64.Ident3(), 1e-9)
	})

	It("computes relative rest positions about the rest centre of mass", func() {
		m := mesh.Tetrahedron(0.25)
		m.Translate(mgl64.Vec3{0.3, -0.2, 0.1})
		b := newBody(m, nil)
		expectVec(b.CMRest, mgl64.Vec3{0.3, -0.2, 0.1}, 1e-12)
		var first mgl64.Vec3
		for i, q := range b.RelRest {
			first = first.Add(q.Mul(b.Mass[i]))
		}
		expectVec(first, mgl64.Vec3{}, 1e-12)
	})

	It("starts at rest under gravity", func() {
		b := newBody(mesh.Tetrahedron(0.25), nil)
		for i := range b.Velocity {
			Expect(b.Velocity[i]).To(Equal(mgl64.Vec3{}))
			Expect(b.Force[i]).To(Equal(mgl64.Vec3{0, -0.7, 0}))
		}
	})

	It("rejects quadratic mode on meshes with too few vertices", func() {
		b := newBody(mesh.Tetrahedron(0.25), nil)
		Expect(b.SupportsQuadratic()).To(BeFalse())
		Expect(b.SetMode(softbody.Quadratic)).To(HaveOccurred())
		Expect(b.Params.Mode).To(Equal(softbody.ShapeMatching))

		_, err := softbody.New(mesh.Tetrahedron(0.25), softbody.Params{Mode: softbody.Quadratic})
		Expect(err).To(HaveOccurred())
		Expect(linalg.IsDegenerate(err)).To(BeTrue())

		Expect(newBody(mesh.Icosphere(1, 0.3), nil).SupportsQuadratic()).To(BeTrue())
	})

	It("fails on a flat mesh", func() {
		m, err := mesh.New("flat", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, [][3]int{{0, 1, 2}, {1, 3, 2}})
		Expect(err).NotTo(HaveOccurred())
		_, err = softbody.New(m, softbody.DefaultParams())
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})

	It("fails when a vertex has no incident triangle", func() {
		t := mesh.Tetrahedron(0.25)
		m, err := mesh.New("stray", append(t.Vertices, mgl64.Vec3{0.5, 0.5, 0.5}), t.Triangles)
		Expect(err).NotTo(HaveOccurred())
		_, err = softbody.New(m, softbody.DefaultParams())
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})
})

var _ = Describe("UpdateShape", func() {
	var b *softbody.Body

	BeforeEach(func() {
		b = newBody(mesh.Icosphere(1, 0.3), nil)
	})

	DescribeTable("a pure translation yields the identity rotation",
		func(mode softbody.Mode) {
			Expect(b.SetMode(mode)).To(Succeed())
			offset := mgl64.Vec3{0.4, 1, -0.3}
			deform(b, mgl64.Ident3(), offset)

			Expect(b.UpdateShape()).To(Succeed())
			expectMat(b.Rotation, mgl64.Ident3(), 1e-9)
			expectVec(b.CMCurrent, b.CMRest.Add(offset), 1e-12)
			for i := range b.Goal {
				expectVec(b.Goal[i], b.Mesh.Vertices[i], 1e-9)
			}
		},
		Entry("shape matching", softbody.ShapeMatching),
		Entry("rigid", softbody.RigidBody),
		Entry("linear", softbody.Linear),
		Entry("quadratic", softbody.Quadratic),
	)

	It("recovers a rigid rotation about the centroid", func() {
		q := rotation(mgl64.Vec3{1, 2, 3}, 0.9)
		offset := mgl64.Vec3{0, 0.5, 0}
		deform(b, q, offset)

		Expect(b.UpdateShape()).To(Succeed())
		expectMat(b.Rotation, q, 1e-9)
		Expect(linalg.IsRotation(b.Rotation, 1e-9)).To(BeTrue())
		for i, r := range b.RelRest {
			expectVec(b.Goal[i], q.Mul3x1(r).Add(b.CMCurrent), 1e-9)
			expectVec(b.Goal[i], b.Mesh.Vertices[i], 1e-9)
		}
	})

	It("extracts the rotation from a stretched shape", func() {
		q := rotation(mgl64.Vec3{0, 1, 0}, 0.4)
		stretch := mgl64.Mat3FromRows(
			mgl64.Vec3{1.3, 0, 0},
			mgl64.Vec3{0, 0.8, 0},
			mgl64.Vec3{0, 0, 1},
		)
		deform(b, q.Mul3(stretch), mgl64.Vec3{})
		Expect(b.UpdateShape()).To(Succeed())
		Expect(linalg.IsRotation(b.Rotation, 1e-9)).To(BeTrue())
		expectMat(b.Rotation, q, 1e-9)
	})

	It("ignores the linear blend in rigid mode", func() {
		shear := mgl64.Mat3FromRows(
			mgl64.Vec3{1.2, 0.3, 0},
			mgl64.Vec3{0, 0.9, 0.1},
			mgl64.Vec3{0, 0, 1.05},
		)
		goals := func(beta float64, mode softbody.Mode) []mgl64.Vec3 {
			body := newBody(mesh.Icosphere(1, 0.3), func(p *softbody.Params) {
				p.LinearBlend = beta
				p.Mode = mode
			})
			deform(body, shear, mgl64.Vec3{0.1, 0, 0})
			Expect(body.UpdateShape()).To(Succeed())
			return append([]mgl64.Vec3(nil), body.Goal...)
		}

		Expect(goals(0.1, softbody.RigidBody)).To(Equal(goals(0.9, softbody.RigidBody)))
		Expect(goals(0.1, softbody.Linear)).NotTo(Equal(goals(0.9, softbody.Linear)))
	})

	It("removes volume change in linear mode", func() {
		Expect(b.SetParams(softbody.Params{Mode: softbody.Linear, LinearBlend: 1, Timestep: 0.002})).To(Succeed())
		deform(b, mgl64.Ident3().Mul(1.5), mgl64.Vec3{})
		Expect(b.UpdateShape()).To(Succeed())
		for i, q := range b.RelRest {
			expectVec(b.Goal[i], q.Add(b.CMCurrent), 1e-9)
		}
	})

	It("keeps the shear of a volume-preserving linear deformation", func() {
		shear := mgl64.Mat3FromRows(
			mgl64.Vec3{1, 0.4, 0},
			mgl64.Vec3{0, 1, 0},
			mgl64.Vec3{0, 0, 1},
		)
		Expect(b.SetParams(softbody.Params{Mode: softbody.Linear, LinearBlend: 1, Timestep: 0.002})).To(Succeed())
		deform(b, shear, mgl64.Vec3{})
		Expect(b.UpdateShape()).To(Succeed())
		for i := range b.Goal {
			expectVec(b.Goal[i], b.Mesh.Vertices[i], 1e-9)
		}
	})

	It("matches shape matching when the quadratic blend is zero", func() {
		q := rotation(mgl64.Vec3{0, 0, 1}, 0.3)
		squash := mgl64.Mat3FromRows(
			mgl64.Vec3{1.1, 0, 0},
			mgl64.Vec3{0, 0.9, 0},
			mgl64.Vec3{0, 0, 1},
		)
		deform(b, q.Mul3(squash), mgl64.Vec3{})

		Expect(b.UpdateShape()).To(Succeed())
		want := append([]mgl64.Vec3(nil), b.Goal...)

		Expect(b.SetParams(softbody.Params{Mode: softbody.Quadratic, LinearBlend: 0, Timestep: 0.002})).To(Succeed())
		Expect(b.UpdateShape()).To(Succeed())
		for i := range want {
			expectVec(b.Goal[i], want[i], 1e-9)
		}
	})

	It("reproduces a quadratic bend with full quadratic blend", func() {
		Expect(b.SetParams(softbody.Params{Mode: softbody.Quadratic, LinearBlend: 1, Timestep: 0.002})).To(Succeed())
		for i, q := range b.RelRest {
			b.Mesh.Vertices[i] = b.CMRest.Add(q).Add(mgl64.Vec3{0, 0.5 * q[0] * q[2], 0})
		}
		Expect(b.UpdateShape()).To(Succeed())
		for i := range b.Goal {
			expectVec(b.Goal[i], b.Mesh.Vertices[i], 1e-8)
		}
	})

	It("fails fast on a collapsed shape", func() {
		for i := range b.Mesh.Vertices {
			b.Mesh.Vertices[i] = mgl64.Vec3{0.2, 0.2, 0.2}
		}
		err := b.UpdateShape()
		Expect(err).To(HaveOccurred())
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})
})

var _ = Describe("Integrate", func() {
	It("leaves a vertex at its goal untouched without forces", func() {
		b := newBody(mesh.Icosphere(1, 0.3), func(p *softbody.Params) {
			p.Stiffness = 0
			p.VelocityDamping = 0
			p.Gravity = 0
		})
		before := append([]mgl64.Vec3(nil), b.Mesh.Vertices...)
		Expect(b.Advance()).To(Succeed())
		for i := range before {
			expectVec(b.Mesh.Vertices[i], before[i], 1e-15)
			expectVec(b.Velocity[i], mgl64.Vec3{}, 1e-15)
		}
	})

	It("drops a translated tetrahedron under gravity alone", func() {
		b := newBody(mesh.Tetrahedron(0.25), func(p *softbody.Params) {
			p.Stiffness = 1
			p.LinearBlend = 0
			p.VelocityDamping = 0
		})
		deform(b, mgl64.Ident3(), mgl64.Vec3{0, 1, 0})
		start := append([]mgl64.Vec3(nil), b.Mesh.Vertices...)

		Expect(b.UpdateShape()).To(Succeed())
		for i, q := range b.RelRest {
			expectVec(b.Goal[i], q.Add(b.CMCurrent), tol)
		}
		Expect(b.Integrate()).To(Succeed())

		h := b.Params.Timestep
		vy := b.Params.Gravity * h / 0.025
		for i := range b.Velocity {
			expectVec(b.Velocity[i], mgl64.Vec3{0, vy, 0}, 1e-6)
			expectVec(b.Mesh.Vertices[i], start[i].Add(mgl64.Vec3{0, h * vy, 0}), 1e-8)
		}
		expectVec(b.AverageVelocity, mgl64.Vec3{0, vy, 0}, 1e-6)
	})

	It("applies the user force to free vertices", func() {
		b := newBody(mesh.Tetrahedron(0.25), func(p *softbody.Params) {
			p.Stiffness = 0
			p.VelocityDamping = 0
			p.Gravity = 0
		})
		b.SetUserForce(mgl64.Vec3{1, 0, 0})
		Expect(b.Advance()).To(Succeed())
		for i := range b.Velocity {
			Expect(b.Velocity[i][0]).To(BeNumerically("~", b.Params.Timestep/b.Mass[i], 1e-12))
		}
		_, on := b.UserForce()
		Expect(on).To(BeTrue())
		b.ClearUserForce()
		_, on = b.UserForce()
		Expect(on).To(BeFalse())
	})

	It("freezes vertices on a sticky floor", func() {
		m := mesh.Tetrahedron(0.25)
		m.Translate(mgl64.Vec3{0, -1.9, 0})
		b := newBody(m, func(p *softbody.Params) { p.StickyFloor = true })
		low := 0
		for i, x := range b.Mesh.Vertices {
			if x[1] < b.Mesh.Vertices[low][1] {
				low = i
			}
		}
		b.Mesh.Vertices[low][1] = -b.Params.WallDist - 0.01
		pinned := b.Mesh.Vertices[low]

		Expect(b.Advance()).To(Succeed())
		Expect(b.Mesh.Vertices[low]).To(Equal(pinned))
		Expect(b.Velocity[low]).To(Equal(mgl64.Vec3{}))
	})

	It("discards forces accumulated on pinned vertices", func() {
		m := mesh.Tetrahedron(0.25)
		m.Translate(mgl64.Vec3{0, -1.9, 0})
		b := newBody(m, func(p *softbody.Params) { p.StickyFloor = true })
		low := 0
		for i, x := range b.Mesh.Vertices {
			if x[1] < b.Mesh.Vertices[low][1] {
				low = i
			}
		}
		b.Mesh.Vertices[low][1] = -b.Params.WallDist - 0.01

		for i := 0; i < 5; i++ {
			b.Force[low] = b.Force[low].Add(mgl64.Vec3{3, 4, 5})
			Expect(b.Advance()).To(Succeed())
		}
		expectVec(b.Force[low], mgl64.Vec3{0, b.Params.Gravity, 0}, tol)
	})

	It("restores the rest state on reset", func() {
		b := newBody(mesh.Icosphere(1, 0.3), nil)
		for i := 0; i < 20; i++ {
			Expect(b.Advance()).To(Succeed())
		}
		Expect(b.KineticEnergy()).To(BeNumerically(">", 0))

		Expect(b.Reset()).To(Succeed())
		Expect(b.Mesh.Vertices).To(Equal(b.Mesh.Rest))
		Expect(b.KineticEnergy()).To(BeZero())
		Expect(b.AverageVelocity).To(Equal(mgl64.Vec3{}))
	})

	It("stays finite while falling onto the floor", func() {
		b := newBody(mesh.Icosphere(1, 0.25), nil)
		startY := b.CMRest[1]
		for i := 0; i < 2000; i++ {
			Expect(b.Advance()).To(Succeed())
		}
		c, _ := b.Mesh.BoundingSphere()
		Expect(c[1]).To(BeNumerically("<", startY))
		Expect(c[1]).To(BeNumerically(">", -4))
		Expect(math.IsNaN(b.KineticEnergy())).To(BeFalse())
	})
})

var _ = Describe("CheckWallCollision", func() {
	var b *softbody.Body

	BeforeEach(func() {
		b = newBody(mesh.Tetrahedron(0.25), nil)
	})

	It("pushes a vertex past the right wall back inward", func() {
		b.Mesh.Vertices[0] = mgl64.Vec3{b.Params.WallDist + 0.01, 0, 0}
		b.CheckWallCollision(0)
		Expect(b.Force[0][0]).To(BeNumerically("<", 0))
		Expect(b.Force[0][0]).To(BeNumerically("~", -b.Params.WallSpring*0.01*b.Mass[0], 1e-12))
		Expect(b.Force[0][1]).To(BeNumerically("~", b.Params.Gravity, 1e-12))
	})

	It("damps the velocity of a penetrating vertex", func() {
		b.Mesh.Vertices[0] = mgl64.Vec3{0, 0, -b.Params.WallDist - 0.02}
		b.Velocity[0] = mgl64.Vec3{0, 0, -1}
		b.CheckWallCollision(0)
		want := b.Params.WallSpring*0.02*b.Mass[0] + b.Params.WallDamping*b.Mass[0]
		Expect(b.Force[0][2]).To(BeNumerically("~", want, 1e-12))
	})

	It("composes forces at a corner", func() {
		w := b.Params.WallDist
		b.Mesh.Vertices[0] = mgl64.Vec3{w + 0.01, w + 0.01, 0}
		b.CheckWallCollision(0)
		Expect(b.Force[0][0]).To(BeNumerically("<", 0))
		Expect(b.Force[0][1]).To(BeNumerically("<", b.Params.Gravity))
		Expect(b.OutsideWalls()).To(Equal(1))
	})

	It("resets the force to gravity inside the box", func() {
		b.Force[1] = mgl64.Vec3{5, 5, 5}
		b.CheckWallCollision(1)
		Expect(b.Force[1]).To(Equal(mgl64.Vec3{0, b.Params.Gravity, 0}))
	})
})

var _ = Describe("Params", func() {
	It("clamps configuration mistakes", func() {
		p := softbody.Params{Timestep: -1, Stiffness: 2, LinearBlend: -0.5, VelocityDamping: math.NaN(), WallSpring: -3, Mode: 9}.Clamp()
		Expect(p.Timestep).To(Equal(softbody.MinTimestep))
		Expect(p.Stiffness).To(Equal(1.0))
		Expect(p.LinearBlend).To(BeZero())
		Expect(p.VelocityDamping).To(BeZero())
		Expect(p.WallSpring).To(BeZero())
		Expect(p.WallDist).To(Equal(softbody.DefaultWallDist))
		Expect(p.Mode).To(Equal(softbody.ShapeMatching))
	})

	DescribeTable("parses mode names",
		func(in string, want softbody.Mode) {
			m, err := softbody.ParseMode(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(want))
			Expect(m.String()).NotTo(BeEmpty())
		},
		Entry("default", "", softbody.ShapeMatching),
		Entry("rigid", "RigidBody", softbody.RigidBody),
		Entry("linear", "linear", softbody.Linear),
		Entry("quadratic", "quadratic", softbody.Quadratic),
	)

	It("cycles modes", func() {
		Expect(softbody.Quadratic.Next()).To(Equal(softbody.ShapeMatching))
		_, err := softbody.ParseMode("cubic")
		Expect(err).To(HaveOccurred())
	})
})
