// Some helpers using closures to generate operand matrices
package valgen

import "math/rand"

func MakeConstGen(constant int32) func() int32 {
	return func() int32 {
		return constant
	}
}

func MakeIncreasingGen(start int32) func() int32 {
	current := start
	return func() int32 {
		current++
		return current
	}
}

// MakeInt8Gen returns a generator of values in the int8 operand range.
func MakeInt8Gen(r *rand.Rand) func() int32 {
	return func() int32 {
		return int32(int8(r.Intn(256)))
	}
}

// Matrix fills a rows-by-cols matrix from a generator.
func Matrix(rows, cols int, gen func() int32) [][]int32 {
	mat := make([][]int32, rows)
	for i := range mat {
		mat[i] = make([]int32, cols)
		for j := range mat[i] {
			mat[i][j] = gen()
		}
	}

	return mat
}

// Identity builds an n-by-n identity matrix.
func Identity(n int) [][]int32 {
	mat := make([][]int32, n)
	for i := range mat {
		mat[i] = make([]int32, n)
		mat[i][i] = 1
	}

	return mat
}
