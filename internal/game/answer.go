// Package game implements the arithmetic drill engine.
package game

import (
	"fmt"
	"strings"
)

// Operation selects the arithmetic applied to each digit.
type Operation int

const (
	// Subtract takes the difficulty away from the digit.
	Subtract Operation = iota
	// Add adds the difficulty to the digit.
	Add
)

// String returns the lowercase operation name.
func (o Operation) String() string {
	switch o {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ParseOperation maps "add"/"subtract" (any case) to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+":
		return Add, nil
	case "subtract", "sub", "-":
		return Subtract, nil
	default:
		return Subtract, fmt.Errorf("unknown operation %q (use add or subtract)", s)
	}
}

func normalize(v int) int {
	return ((v % 10) + 10) % 10
}

// CorrectAnswer returns the digit expected for test under the settings.
func CorrectAnswer(test, difficulty int, op Operation) int {
	switch op {
	case Add:
		return normalize(test + difficulty)
	case Subtract:
		return normalize(test - difficulty)
	default:
		return 0
	}
}

// Validate reports whether attempt is the right answer for test and
// returns the expected digit. attempt must already be a digit 0-9.
func Validate(test, attempt, difficulty int, op Operation) (bool, int) {
	correct := CorrectAnswer(test, difficulty, op)
	return attempt == correct, correct
}

// IsDigit reports whether v can be submitted as an answer.
func IsDigit(v int) bool {
	return v >= 0 && v <= 9
}
