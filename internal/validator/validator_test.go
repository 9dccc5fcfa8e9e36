package validator

import (
	"testing"

	"homefix_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	WorkerID      string                 `json:"worker_id" validate:"required"`
	Description   string                 `json:"description" validate:"required,max=20"`
	ServiceType   models.ServiceCategory `json:"service_type" validate:"omitempty,is-service-category"`
	PaymentMethod models.PaymentMethod   `json:"payment_method" validate:"omitempty,is-payment-method"`
	Rating        int                    `json:"rating" validate:"required,min=1,max=5"`
	Latitude      *float64               `form:"latitude" validate:"omitempty,latitude"`
}

func TestValidateReportsEveryField(t *testing.T) {
	v := New()
	bad := 200.0

	err := v.Validate(&sampleRequest{
		Description:   "a very long description that exceeds the limit",
		ServiceType:   "astronaut",
		PaymentMethod: "bitcoin",
		Rating:        9,
		Latitude:      &bad,
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 6)
	assert.Equal(t, "This field is required", vErr.Errors["worker_id"])
	assert.Contains(t, vErr.Errors["service_type"], "painter")
	assert.Equal(t, "Must be one of: none, upi, mock, cash", vErr.Errors["payment_method"])
	assert.Equal(t, "Must be at most 5", vErr.Errors["rating"])
	assert.Equal(t, "Must be a valid latitude", vErr.Errors["latitude"])
	assert.Contains(t, vErr.Errors["description"], "at most 20")
}

func TestValidatePassesAndSkipsEmptyEnums(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{WorkerID: "w-1", Description: "fix sink", Rating: 5})
	assert.NoError(t, err)
}

func TestValidationErrorMessageIsDeterministic(t *testing.T) {
	e := &ValidationError{}
	e.Add("b", "second")
	e.Add("a", "first")

	assert.True(t, e.HasErrors())
	assert.Equal(t, "Validation failed: field 'a': first; field 'b': second", e.Error())
}
