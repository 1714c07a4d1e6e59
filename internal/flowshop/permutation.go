package flowshop

import "fmt"

func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: permutation length must be %d (got %d)", ErrValidation, n, len(perm))
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: perm[%d]=%d out of range [0,%d)", ErrValidation, i, v, n)
		}
		if seen[v] {
			return fmt.Errorf("%w: duplicate job id %d in permutation", ErrValidation, v)
		}
		seen[v] = true
	}
	return nil
}
