package calc

import "errors"

var errDivideByZero = errors.New("divide by zero")

// Add returns the sum of a and b.
func Add(a, b int) int { return a + b }

// Divide returns a divided by b.
func Divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}
