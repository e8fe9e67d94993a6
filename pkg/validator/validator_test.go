package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issueRequest struct {
	UserID         string    `json:"userId" validate:"uuid_required"`
	RawMaterialID  uuid.UUID `json:"rawMaterialId" validate:"uuid_required"`
	QuantityIssued int       `json:"quantityIssued" validate:"gt=0"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(&issueRequest{UserID: uuid.NewString(), RawMaterialID: uuid.New()})
	require.Len(t, errs, 1)
	assert.Equal(t, "quantityIssued", errs[0].FailedField)
	assert.Equal(t, "gt", errs[0].Tag)
	assert.Equal(t, "Validation failed: field 'quantityIssued' failed on tag 'gt=0'", Message(errs))
}

func TestUUIDRequired(t *testing.T) {
	errs := ValidateStruct(&issueRequest{UserID: "nope", RawMaterialID: uuid.Nil, QuantityIssued: 1})
	require.Len(t, errs, 2)
	assert.Equal(t, "userId", errs[0].FailedField)
	assert.Equal(t, "rawMaterialId", errs[1].FailedField)

	assert.Empty(t, ValidateStruct(&issueRequest{UserID: uuid.NewString(), RawMaterialID: uuid.New(), QuantityIssued: 3}))
	assert.Equal(t, "", Message(nil))
}
