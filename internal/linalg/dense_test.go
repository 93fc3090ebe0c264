package linalg

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDenseShapeChecks(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	tests := []struct {
		name string
		op   func() error
	}{
		{"multiply", func() error { _, err := Mul(a, b); return err }},
		{"add", func() error { _, err := Add(a, b); return err }},
		{"subtract", func() error { _, err := Sub(a, b); return err }},
		{"inverse", func() error { _, err := Inverse(a); return err }},
		{"to mat3", func() error { _, err := ToMat3(a); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDimensionMismatch))
		})
	}
}

func TestDenseArithmetic(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})

	p, err := Mul(a, b)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(p, mat.NewDense(2, 2, []float64{4, 5, 10, 11}), 1e-12))

	s, err := Add(a, a)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(s, Scale(2, a), 1e-12))

	z, err := Sub(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mat.Norm(z, 1))

	tr := Transpose(a)
	r, c := tr.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 6.0, tr.At(2, 1))
}

func TestInverseNineByNine(t *testing.T) {
	data := make([]float64, 81)
	for i := 0; i < 9; i++ {
		data[i*9+i] = float64(i + 2)
		if i+1 < 9 {
			data[i*9+i+1] = 0.5
			data[(i+1)*9+i] = 0.5
		}
	}
	m := mat.NewDense(9, 9, data)
	inv, err := Inverse(m)
	require.NoError(t, err)

	var id mat.Dense
	id.Mul(m, inv)
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, id.At(i, j), 1e-10)
		}
	}
}

func TestInverseSingular(t *testing.T) {
	_, err := Inverse(mat.NewDense(2, 2, []float64{1, 2, 2, 4}))
	require.Error(t, err)
	assert.True(t, IsDegenerate(err))
}

func TestMat3RoundTrip(t *testing.T) {
	m := mgl64.Mat3FromRows(
		mgl64.Vec3{1, 2, 3},
		mgl64.Vec3{4, 5, 6},
		mgl64.Vec3{7, 8, 9},
	)
	d := FromMat3(m)
	assert.Equal(t, 6.0, d.At(1, 2))
	back, err := ToMat3(d)
	require.NoError(t, err)
	assert.Equal(t, m, back)

	e := Embed3x9(m)
	assert.Equal(t, 8.0, e.At(2, 1))
	assert.Equal(t, 0.0, e.At(2, 8))
}

func TestQuadratic(t *testing.T) {
	q := Quadratic(mgl64.Vec3{1, 2, 3})
	want := []float64{1, 2, 3, 1, 4, 9, 2, 6, 3}
	for i, w := range want {
		assert.Equal(t, w, q.AtVec(i))
	}
}
