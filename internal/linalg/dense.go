package linalg

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Mul returns a·b. a.cols must equal b.rows.
func Mul(a, b mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, mismatch("multiply", ar, ac, br, bc)
	}
	out := mat.NewDense(ar, bc, nil)
	out.Mul(a, b)
	return out, nil
}

// Add returns a+b for equally shaped operands.
func Add(a, b mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, mismatch("add", ar, ac, br, bc)
	}
	out := mat.NewDense(ar, ac, nil)
	out.Add(a, b)
	return out, nil
}

// Sub returns a-b for equally shaped operands.
func Sub(a, b mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, mismatch("subtract", ar, ac, br, bc)
	}
	out := mat.NewDense(ar, ac, nil)
	out.Sub(a, b)
	return out, nil
}

// Scale returns f·a.
func Scale(f float64, a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(f, a)
	return out
}

// Transpose returns a copy of aᵀ.
func Transpose(a mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(a.T())
}

// Inverse computes the LU-based inverse of a square matrix. Singular and
// ill-conditioned input is reported as degenerate.
func Inverse(a mat.Matrix) (*mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, mismatch("inverse", r, c, c, r)
	}
	out := mat.NewDense(r, c, nil)
	if err := out.Inverse(a); err != nil {
		return nil, Degenerate("inverse", "%dx%d matrix: %v", r, c, err)
	}
	return out, nil
}

// FromMat3 converts a fixed 3x3 matrix into the generic dense type.
func FromMat3(m mgl64.Mat3) *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// ToMat3 converts a 3x3 generic matrix into the fixed type.
func ToMat3(a mat.Matrix) (mgl64.Mat3, error) {
	r, c := a.Dims()
	if r != 3 || c != 3 {
		return mgl64.Mat3{}, mismatch("convert", r, c, 3, 3)
	}
	var m mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, a.At(i, j))
		}
	}
	return m, nil
}

// Embed3x9 places m in the leading 3x3 block of a zero 3x9 matrix.
func Embed3x9(m mgl64.Mat3) *mat.Dense {
	out := mat.NewDense(3, 9, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Quadratic returns the nine-component feature vector
// [x, y, z, x², y², z², xy, yz, zx] of q.
func Quadratic(q mgl64.Vec3) *mat.VecDense {
	x, y, z := q[0], q[1], q[2]
	return mat.NewVecDense(9, []float64{x, y, z, x * x, y * y, z * z, x * y, y * z, z * x})
}
