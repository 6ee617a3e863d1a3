package utils

import (
	"testing"
	"time"

	appErrors "moodi-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleLink struct {
	Type  string `json:"type" validate:"oneof=thought emotion"`
	Order int    `json:"order" validate:"gte=0"`
}

type sample struct {
	Title     string       `json:"title" validate:"required"`
	Intensity *int         `json:"emotionalIntensity" validate:"required,min=1,max=10"`
	Links     []sampleLink `json:"chainLinks" validate:"dive"`
}

func TestValidateStruct(t *testing.T) {
	eleven := 11
	five := 5

	tests := []struct {
		name        string
		input       sample
		wantDetails map[string]interface{}
	}{
		{
			name:  "valid",
			input: sample{Title: "ok", Intensity: &five},
		},
		{
			name:  "missing fields use json names",
			input: sample{},
			wantDetails: map[string]interface{}{
				"title":              "title is required",
				"emotionalIntensity": "emotionalIntensity is required",
			},
		},
		{
			name:  "numeric range",
			input: sample{Title: "ok", Intensity: &eleven},
			wantDetails: map[string]interface{}{
				"emotionalIntensity": "emotionalIntensity must be at most 10",
			},
		},
		{
			name:  "nested slice elements",
			input: sample{Title: "ok", Intensity: &five, Links: []sampleLink{{Type: "smell", Order: -1}}},
			wantDetails: map[string]interface{}{
				"chainLinks[0].type":  "chainLinks[0].type must be one of: thought emotion",
				"chainLinks[0].order": "chainLinks[0].order must be greater than or equal to 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantDetails == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := appErrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, appErrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.wantDetails, appErr.Details)
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("month", 5, "min=1,max=12"))

	err := ValidateVar("month", 13, "min=1,max=12")
	require.Error(t, err)
	assert.Equal(t, "month must be at most 12", appErrors.GetAppError(err).Details["month"])
}

func TestMergeValidation(t *testing.T) {
	assert.NoError(t, MergeValidation(nil, nil))

	merged := MergeValidation(FieldError("a", "a is bad"), nil, FieldError("b", "b is bad"))
	appErr := appErrors.GetAppError(merged)
	require.NotNil(t, appErr)
	assert.Equal(t, map[string]interface{}{"a": "a is bad", "b": "b is bad"}, appErr.Details)
	assert.Equal(t, "a is bad; b is bad", appErr.Message)

	internal := appErrors.NewInternalError("boom")
	assert.Equal(t, error(internal), MergeValidation(FieldError("a", "x"), internal))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
}
