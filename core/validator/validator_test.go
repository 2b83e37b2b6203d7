package validator_test

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/validator"
)

type applyRequest struct {
	Email     string   `json:"email" validate:"required;email"`
	FirstName string   `json:"first_name" validate:"required;max:10"`
	Portfolio string   `json:"portfolio_url" validate:"url"`
	Styles    []string `json:"styles" validate:"required;in:minimal,bold,playful"`
	Years     int      `json:"years_experience" validate:"min:0;max:60"`
	Rate      int      `json:"hourly_rate" validate:"positive"`
	Internal  string   `validate:"-"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	valid := applyRequest{
		Email:     "jane@studio.com",
		FirstName: "Jane",
		Styles:    []string{"minimal"},
		Years:     5,
		Rate:      80,
	}
	require.NoError(t, validator.ValidateStruct(&valid))

	tests := []struct {
		name   string
		mutate func(*applyRequest)
		fields []string
	}{
		{"missing email", func(r *applyRequest) { r.Email = "" }, []string{"email"}},
		{"bad email", func(r *applyRequest) { r.Email = "jane" }, []string{"email"}},
		{"name too long", func(r *applyRequest) { r.FirstName = "Bartholomew-Jane" }, []string{"first_name"}},
		{"bad url", func(r *applyRequest) { r.Portfolio = "not a url" }, []string{"portfolio_url"}},
		{"unknown style", func(r *applyRequest) { r.Styles = []string{"minimal", "grunge"} }, []string{"styles"}},
		{"negative rate", func(r *applyRequest) { r.Rate = -1 }, []string{"hourly_rate"}},
		{"too many years", func(r *applyRequest) { r.Years = 61 }, []string{"years_experience"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid
			req.Styles = append([]string(nil), valid.Styles...)
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			for _, f := range tt.fields {
				assert.True(t, verrs.Has(f), "expected error for %s, got %v", f, verrs)
			}
			assert.Len(t, verrs, len(tt.fields))
		})
	}
}

func TestValidateStruct_InvalidTarget(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, validator.ValidateStruct(applyRequest{}), validator.ErrInvalidTarget)
}

func TestValidateStruct_Nested(t *testing.T) {
	t.Parallel()

	type contact struct {
		Email string `json:"email" validate:"required;email"`
	}
	type req struct {
		Contact contact `json:"contact"`
	}

	err := validator.ValidateStruct(&req{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("contact.email"))
}

func TestValidationErrors_HTTP(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.Required("message", " "),
		validator.LessOrEqual("budget_min", 5000, 1000),
		validator.OneOf("timeline", "asap", "1-2 weeks", "flexible"),
		validator.RangeInt("score", 50, 0, 100),
	)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, fmt.Errorf("submit: %w", err), &verrs)

	assert.Equal(t, http.StatusUnprocessableEntity, verrs.StatusCode())
	assert.Equal(t, map[string]any{
		"message":    "field is required",
		"budget_min": "minimum must not exceed maximum",
		"timeline":   "must be one of: 1-2 weeks, flexible",
	}, verrs.Details())
	assert.True(t, validator.IsValidationError(err))
	assert.NoError(t, validator.Apply(validator.Email("email", "a@b.co")))
}

func TestRegisterValidator(t *testing.T) {
	validator.RegisterValidator("even", func(v reflect.Value, _ []string) (bool, string) {
		return v.Int()%2 == 0, "must be even"
	})

	type req struct {
		N int `json:"n" validate:"even"`
	}
	assert.NoError(t, validator.ValidateStruct(&req{N: 4}))
	assert.Error(t, validator.ValidateStruct(&req{N: 3}))
}

func TestIsEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.IsEmail("jane@studio.com"))
	assert.False(t, validator.IsEmail("Jane <jane@studio.com>"))
	assert.False(t, validator.IsEmail("jane@localhost"))
	assert.False(t, validator.IsEmail(""))
}
