package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	t.Parallel()
	v := NewValidator()

	type params struct {
		Kind string `param:"kind" validate:"required,chatkind"`
		ID   string `param:"id" validate:"required"`
	}

	t.Run("valid kinds", func(t *testing.T) {
		assert.NoError(t, v.Validate(params{Kind: "channel", ID: "general"}))
		assert.NoError(t, v.Validate(params{Kind: "dm", ID: "u42"}))
	})

	t.Run("unknown kind", func(t *testing.T) {
		assert.Error(t, v.Validate(params{Kind: "group", ID: "general"}))
	})

	t.Run("missing id", func(t *testing.T) {
		assert.Error(t, v.Validate(params{Kind: "channel"}))
	})
}
