package scene_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/shapesim/internal/linalg"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/softbody"
)

func sphereAt(x, y, z float64, mutate func(*softbody.Params)) *softbody.Body {
	GinkgoHelper()
	m := mesh.Icosphere(1, 0.25)
	m.Translate(mgl64.Vec3{x, y, z})
	p := softbody.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	b, err := softbody.New(m, p)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func weightless(p *softbody.Params) { p.Gravity = 0 }

var _ = Describe("Registry", func() {
	var s *scene.Scene

	BeforeEach(func() {
		s = scene.New(4)
	})

	It("assigns increasing ids and looks bodies up", func() {
		a := s.Add("a", sphereAt(-0.5, 0, 0, nil))
		b := s.Add("b", sphereAt(0.5, 0, 0, nil))
		Expect(a.ID).To(Equal(0))
		Expect(b.ID).To(Equal(1))
		Expect(s.Len()).To(Equal(2))

		got, err := s.Get(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("b"))

		Expect(s.Remove(0)).To(Succeed())
		Expect(s.Len()).To(Equal(1))
		_, err = s.Get(0)
		Expect(errors.Is(err, scene.ErrUnknownBody)).To(BeTrue())
		Expect(errors.Is(s.Remove(7), scene.ErrUnknownBody)).To(BeTrue())

		c := s.Add("c", sphereAt(0, 0, 0, nil))
		Expect(c.ID).To(Equal(2))
	})

	It("computes the bounding sphere on registration", func() {
		e := s.Add("a", sphereAt(0.3, -0.2, 0.1, nil))
		Expect(e.Center[0]).To(BeNumerically("~", 0.3, 1e-9))
		Expect(e.Center[1]).To(BeNumerically("~", -0.2, 1e-9))
		Expect(e.Radius).To(BeNumerically("~", 0.25, 1e-9))
		Expect(e.TouchesWalls()).To(BeFalse())

		w := s.Add("w", sphereAt(1.9, 0, 0, nil))
		Expect(w.TouchesWalls()).To(BeTrue())
	})

	It("clamps the substep count", func() {
		s.SetSubsteps(0)
		Expect(s.Substeps()).To(Equal(1))
		s.SetSubsteps(8)
		Expect(s.Substeps()).To(Equal(8))
		Expect(scene.New(-3).Substeps()).To(Equal(1))
	})

	It("applies parameter changes to every body", func() {
		s.Add("a", sphereAt(-0.5, 0, 0, nil))
		s.Add("b", sphereAt(0.5, 0, 0, nil))
		Expect(s.Apply(func(p *softbody.Params) { p.Stiffness = 5 })).To(Succeed())
		for _, e := range s.Entries() {
			Expect(e.Body.Params.Stiffness).To(Equal(1.0))
		}
	})

	It("reports bodies that cannot switch to quadratic mode", func() {
		t, err := softbody.New(mesh.Tetrahedron(0.25), softbody.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		s.Add("tet", t)
		s.Add("ball", sphereAt(0.5, 0, 0, nil))
		Expect(s.Apply(func(p *softbody.Params) { p.Mode = softbody.Quadratic })).To(HaveOccurred())
		Expect(s.Entries()[0].Body.Params.Mode).To(Equal(softbody.ShapeMatching))
		Expect(s.Entries()[1].Body.Params.Mode).To(Equal(softbody.Quadratic))
	})
})

var _ = Describe("Sphere contact", func() {
	It("detects overlap including touching spheres", func() {
		Expect(scene.Overlaps(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 0.5, 0.5)).To(BeTrue())
		Expect(scene.Overlaps(mgl64.Vec3{}, mgl64.Vec3{1.01, 0, 0}, 0.5, 0.5)).To(BeFalse())
	})

	It("places a contact point on each sphere facing the other", func() {
		p1, p2, n, err := scene.ContactPoints(mgl64.Vec3{0.4, 0, 0}, mgl64.Vec3{-0.4, 0, 0}, 0.5, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(n[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(p1[0]).To(BeNumerically("~", -0.1, 1e-12))
		Expect(p2[0]).To(BeNumerically("~", 0.1, 1e-12))

		_, _, _, err = scene.ContactPoints(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, 0.2, 0.2)
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})

	It("pushes overlapping bodies apart", func() {
		s := scene.New(1)
		right := s.Add("right", sphereAt(0.2, 0, 0, weightless))
		left := s.Add("left", sphereAt(-0.2, 0, 0, weightless))

		n, err := s.Collide()
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		var fr, fl mgl64.Vec3
		for i := range right.Body.Force {
			fr = fr.Add(right.Body.Force[i])
			fl = fl.Add(left.Body.Force[i])
		}
		Expect(fr[0]).To(BeNumerically(">", 0))
		Expect(fl[0]).To(BeNumerically("<", 0))
		Expect(fr[0]).To(BeNumerically("~", -fl[0], 1e-6))
		for i := range right.Body.Force {
			Expect(right.Body.Force[i][0]).To(BeNumerically(">=", 0))
		}
	})

	It("leaves separated bodies alone", func() {
		s := scene.New(1)
		a := s.Add("a", sphereAt(-1, 0, 0, weightless))
		s.Add("b", sphereAt(1, 0, 0, weightless))
		n, err := s.Collide()
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
		for _, f := range a.Body.Force {
			Expect(f).To(Equal(mgl64.Vec3{}))
		}
	})

	It("fails on bodies sharing a centre", func() {
		s := scene.New(1)
		s.Add("a", sphereAt(0, 0, 0, nil))
		s.Add("b", sphereAt(0, 0, 0, nil))
		_, err := s.Collide()
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})

	It("separates two bodies over a few frames", func() {
		s := scene.New(4)
		a := s.Add("a", sphereAt(0.2, 0, 0, weightless))
		b := s.Add("b", sphereAt(-0.2, 0, 0, weightless))
		gap := a.Center.Sub(b.Center).Len()
		for i := 0; i < 25; i++ {
			Expect(s.Frame()).To(Succeed())
		}
		Expect(a.Center.Sub(b.Center).Len()).To(BeNumerically(">", gap))
		Expect(s.Frames).To(Equal(25))
		Expect(s.Passes).To(Equal(100))
		Expect(s.Time).To(BeNumerically("~", 100*0.002, 1e-9))
	})
})

var _ = Describe("Advance", func() {
	It("moves every body and refreshes its sphere", func() {
		s := scene.New(2)
		a := s.Add("a", sphereAt(-1, 0, 0, nil))
		b := s.Add("b", sphereAt(1, 0, 0, nil))
		ya, yb := a.Center[1], b.Center[1]

		for i := 0; i < 10; i++ {
			Expect(s.Frame()).To(Succeed())
		}
		Expect(a.Center[1]).To(BeNumerically("<", ya))
		Expect(b.Center[1]).To(BeNumerically("<", yb))
		Expect(s.KineticEnergy()).To(BeNumerically(">", 0))

		Expect(s.Reset()).To(Succeed())
		Expect(a.Center[1]).To(BeNumerically("~", ya, 1e-12))
		Expect(s.Time).To(BeZero())
		Expect(s.KineticEnergy()).To(BeZero())
	})

	It("wraps body errors with the body name", func() {
		s := scene.New(1)
		e := s.Add("broken", sphereAt(0, 0, 0, nil))
		for i := range e.Body.Mesh.Vertices {
			e.Body.Mesh.Vertices[i] = mgl64.Vec3{}
		}
		err := s.Advance()
		Expect(err).To(MatchError(ContainSubstring("broken")))
		Expect(linalg.IsDegenerate(err)).To(BeTrue())
	})
})
