package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned when a value object invariant is violated.
var ErrValidation = errors.New("validation failed")

// Description is the trimmed, non-empty text of a transaction.
type Description struct {
	value string
}

// NewDescription trims value and rejects it if nothing is left.
func NewDescription(value string) (Description, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Description{}, fmt.Errorf("%w: description cannot be empty", ErrValidation)
	}
	return Description{value: trimmed}, nil
}

// MustDescription is like NewDescription but panics on invalid input.
// It is meant for fixtures and literals.
func MustDescription(value string) Description {
	d, err := NewDescription(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Description) String() string {
	return d.value
}
