package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescription(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "Coffee Shop", want: "Coffee Shop"},
		{name: "trims surrounding whitespace", input: "  Coffee   Shop  ", want: "Coffee   Shop"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: " \t\n ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDescription(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestMustDescriptionPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { MustDescription("   ") })
	assert.NotPanics(t, func() { MustDescription("ok") })
}
