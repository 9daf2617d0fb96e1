package validator_test

import (
	"testing"

	"fabrication-workflow/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageInput struct {
	Amount   decimal.Decimal `validate:"decimal_positive"`
	Percent  decimal.Decimal `validate:"gte=0,lte=100"`
	Date     string          `validate:"required,datetime=2006-01-02"`
	Latitude float64         `validate:"latitude"`
	Method   string          `validate:"oneof=cash bank_transfer"`
}

func TestValidator_Decimals(t *testing.T) {
	v := validator.NewValidator()

	valid := stageInput{
		Amount:   decimal.RequireFromString("0.01"),
		Percent:  decimal.NewFromInt(100),
		Date:     "2026-10-20",
		Latitude: 14.55,
		Method:   "cash",
	}
	require.NoError(t, v.Validate(valid))

	invalid := stageInput{
		Amount:   decimal.Zero,
		Percent:  decimal.RequireFromString("100.5"),
		Date:     "20/10/2026",
		Latitude: 91,
		Method:   "cheque",
	}
	err := v.Validate(invalid)
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"Amount":   "Amount must be greater than zero",
		"Percent":  "Percent must be less than or equal to 100",
		"Date":     "Date must match the format 2006-01-02",
		"Latitude": "Latitude must be a valid latitude",
		"Method":   "Method must be one of: cash bank_transfer",
	}, v.FormatValidationErrors(err))
}

func TestFormatValidationErrors_IgnoresOtherErrors(t *testing.T) {
	v := validator.NewValidator()
	assert.Empty(t, v.FormatValidationErrors(assert.AnError))
}
