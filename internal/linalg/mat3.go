package linalg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// detEpsilon is the relative threshold below which a 3x3 determinant is
// treated as zero. It is scaled by the cube of the largest entry.
const detEpsilon = 1e-12

// Outer returns a·bᵀ.
func Outer(a, b mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(b.Mul(a[0]), b.Mul(a[1]), b.Mul(a[2]))
}

// MaxAbs returns the largest absolute entry of m.
func MaxAbs(m mgl64.Mat3) float64 {
	var s float64
	for _, v := range m {
		if a := math.Abs(v); a > s {
			s = a
		}
	}
	return s
}

// Finite3 reports whether every entry of m is finite.
func Finite3(m mgl64.Mat3) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FiniteVec3 reports whether every component of v is finite.
func FiniteVec3(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Det3 is the closed-form cofactor determinant.
func Det3(m mgl64.Mat3) float64 {
	return m.Det()
}

// Inverse3 returns the cofactor-transpose inverse of m. A determinant that
// is zero relative to the magnitude of m is reported as degenerate instead
// of dividing through.
func Inverse3(m mgl64.Mat3) (mgl64.Mat3, error) {
	if !Finite3(m) {
		return mgl64.Mat3{}, Degenerate("inverse3x3", "non-finite input %v", m)
	}
	scale := MaxAbs(m)
	if scale == 0 {
		return mgl64.Mat3{}, Degenerate("inverse3x3", "zero matrix")
	}
	det := m.Det()
	if math.Abs(det) <= detEpsilon*scale*scale*scale {
		return mgl64.Mat3{}, Degenerate("inverse3x3", "singular matrix (det=%g)", det)
	}
	return m.Inv(), nil
}

// SymSqrt3 returns V·diag(√λ)·Vᵀ for a symmetric positive semi-definite m.
// The input is symmetrized first; eigenvalues that come back slightly
// negative from round-off are clamped to zero.
func SymSqrt3(m mgl64.Mat3) (mgl64.Mat3, error) {
	if !Finite3(m) {
		return mgl64.Mat3{}, Degenerate("sqrt3x3", "non-finite input %v", m)
	}
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[i*3+j] = 0.5 * (m.At(i, j) + m.At(j, i))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(mat.NewSymDense(3, data), true); !ok {
		return mgl64.Mat3{}, Degenerate("sqrt3x3", "eigen decomposition did not converge")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	var out mgl64.Mat3
	for k := 0; k < 3; k++ {
		l := vals[k]
		if l < 0 {
			l = 0
		}
		s := math.Sqrt(l)
		col := mgl64.Vec3{vecs.At(0, k), vecs.At(1, k), vecs.At(2, k)}
		out = out.Add(Outer(col, col).Mul(s))
	}
	return out, nil
}

// Polar extracts the rotation R of A = R·S, with S = sqrt(AᵀA).
func Polar(a mgl64.Mat3) (mgl64.Mat3, error) {
	s, err := SymSqrt3(a.Transpose().Mul3(a))
	if err != nil {
		return mgl64.Mat3{}, err
	}
	sInv, err := Inverse3(s)
	if err != nil {
		return mgl64.Mat3{}, Degenerate("polar", "stretch matrix is singular: %v", err)
	}
	return a.Mul3(sInv), nil
}

// IsRotation reports whether m is orthonormal with determinant +1 within tol.
func IsRotation(m mgl64.Mat3, tol float64) bool {
	if math.Abs(m.Det()-1) > tol {
		return false
	}
	return MaxAbs(m.Transpose().Mul3(m).Sub(mgl64.Ident3())) <= tol
}
