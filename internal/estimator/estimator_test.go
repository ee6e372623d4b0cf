package estimator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkaya/meallogger/internal/apperrors"
)

func TestParseEstimate_bareJSON(t *testing.T) {
	est, err := parseEstimate(`{"name":"Chicken salad","protein":32,"carbs":12,"fat":18,"sugar":4,"confidence":"high","notes":"Dressing assumed olive oil based."}`)
	require.NoError(t, err)
	assert.Equal(t, "Chicken salad", est.Name)
	assert.Equal(t, 32, est.Protein)
	assert.Equal(t, 12, est.Carbs)
	assert.Equal(t, 18, est.Fat)
	assert.Equal(t, 4, est.Sugar)
	assert.Equal(t, "high", est.Confidence)
}

func TestParseEstimate_codeFencedJSON(t *testing.T) {
	out := "Here is the estimate:\n```json\n{\"name\":\"Oatmeal\",\"protein\":5,\"carbs\":27,\"fat\":3,\"sugar\":1,\"confidence\":\"medium\",\"notes\":\"\"}\n```\n"
	est, err := parseEstimate(out)
	require.NoError(t, err)
	assert.Equal(t, "Oatmeal", est.Name)
	assert.Equal(t, 27, est.Carbs)
}

func TestParseEstimate_noJSON(t *testing.T) {
	_, err := parseEstimate("I cannot identify the meal in this image.")
	assert.True(t, apperrors.Is(err, apperrors.ErrEstimationFailed))
}

func TestParseEstimate_malformedJSON(t *testing.T) {
	_, err := parseEstimate(`{"name": "Soup", "protein": "lots"}`)
	assert.True(t, apperrors.Is(err, apperrors.ErrEstimationFailed))
}

func TestParseEstimate_missingName(t *testing.T) {
	_, err := parseEstimate(`{"protein": 10, "carbs": 20}`)
	assert.True(t, apperrors.Is(err, apperrors.ErrEstimationFailed))
}

func TestNewGemini_requiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "")
	assert.True(t, apperrors.Is(err, apperrors.ErrEstimationFailed))
}
