package matrix

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"go.viam.com/test"
)

func randomSystem(rng *rand.Rand) (*mat.Dense, []float64) {
	data := make([]float64, Order*Order)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	// diagonal dominance keeps the random system well conditioned
	for i := 0; i < Order; i++ {
		data[i*Order+i] += float64(Order)
	}
	b := make([]float64, Order)
	for i := range b {
		b[i] = rng.Float64()*10 - 5
	}
	return mat.NewDense(Order, Order, data), b
}

func TestSolve6RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		a, b := randomSystem(rng)
		orig := mat.DenseCopyOf(a)

		x, err := Solve6(a, b)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(x), test.ShouldEqual, Order)

		var got mat.VecDense
		got.MulVec(a, mat.NewVecDense(Order, x))
		test.That(t, floats.EqualApprox(got.RawVector().Data, b, 1e-9), test.ShouldBeTrue)

		// agrees with gonum's LU based solver
		var want mat.VecDense
		test.That(t, want.SolveVec(a, mat.NewVecDense(Order, b)), test.ShouldBeNil)
		test.That(t, floats.EqualApprox(want.RawVector().Data, x, 1e-9), test.ShouldBeTrue)

		// the input is left alone
		test.That(t, mat.Equal(a, orig), test.ShouldBeTrue)
	}
}

func TestSolve6NeedsPivoting(t *testing.T) {
	// zero on the leading diagonal entry is only solvable with a row swap
	a := mat.NewDense(Order, Order, nil)
	for i := 0; i < Order; i++ {
		a.Set(i, (i+1)%Order, 1)
	}
	b := []float64{1, 2, 3, 4, 5, 6}
	x, err := Solve6(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, x, test.ShouldResemble, []float64{6, 1, 2, 3, 4, 5})
}

func TestSolve6Singular(t *testing.T) {
	// upper triangular with an empty last column
	a := mat.NewDense(Order, Order, nil)
	for r := 0; r < Order; r++ {
		for c := r; c < Order-1; c++ {
			a.Set(r, c, float64(r+c+1))
		}
	}

	_, err := Solve6(a, make([]float64, Order))
	test.That(t, err, test.ShouldNotBeNil)
	var singular *SingularSystemError
	test.That(t, errors.As(err, &singular), test.ShouldBeTrue)
	test.That(t, singular.Column, test.ShouldEqual, Order-1)

	_, err = Solve6(mat.NewDense(Order, Order, nil), make([]float64, Order))
	test.That(t, errors.As(err, &singular), test.ShouldBeTrue)
	test.That(t, singular.Column, test.ShouldEqual, 0)
}

func TestSolve6NaN(t *testing.T) {
	a := mat.NewDense(Order, Order, nil)
	for i := 0; i < Order; i++ {
		a.Set(i, i, math.NaN())
	}
	_, err := Solve6(a, make([]float64, Order))
	var singular *SingularSystemError
	test.That(t, errors.As(err, &singular), test.ShouldBeTrue)
}

func TestSolve6Dimensions(t *testing.T) {
	var dimErr *DimensionError

	_, err := Solve6(mat.NewDense(5, 5, nil), make([]float64, 5))
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	test.That(t, dimErr.Rows, test.ShouldEqual, 5)

	_, err = Solve6(mat.NewDense(Order, 5, nil), make([]float64, Order))
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)

	a, _ := randomSystem(rand.New(rand.NewSource(2)))
	_, err = Solve6(a, make([]float64, 7))
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	test.That(t, dimErr.RHS, test.ShouldEqual, 7)

	_, err = Solve6(nil, nil)
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)

	var nilDense *mat.Dense
	_, err = Solve6(nilDense, make([]float64, Order))
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	test.That(t, dimErr.Rows, test.ShouldEqual, 0)

	var nilSym *mat.SymDense
	_, err = Solve6(nilSym, make([]float64, Order))
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
}
