package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

func TestClassify_KnownTypes(t *testing.T) {
	cases := map[models.ViolationType]models.ViolationCategory{
		models.ViolationMultipleFaces:      models.CategoryCamera,
		models.ViolationProxySuspected:     models.CategoryCamera,
		models.ViolationBackgroundPerson:   models.CategoryCamera,
		models.ViolationTabSwitch:          models.CategoryScreen,
		models.ViolationFullscreenExit:     models.CategoryScreen,
		models.ViolationVirtualMachine:     models.CategoryScreen,
		models.ViolationCoaching:           models.CategoryAudio,
		models.ViolationBackgroundVoice:    models.CategoryAudio,
		models.ViolationAnswerPlayback:     models.CategoryAudio,
		models.ViolationPhoneDetected:      models.CategoryActivity,
		models.ViolationExternalMaterial:   models.CategoryActivity,
		models.ViolationUnexplainedSilence: models.CategoryActivity,
	}

	for violationType, expected := range cases {
		category, err := Classify(violationType)
		assert.NoError(t, err, "type %s", violationType)
		assert.Equal(t, expected, category, "type %s", violationType)
	}
}

func TestClassify_EveryListedTypeResolves(t *testing.T) {
	types := KnownViolationTypes()
	assert.Len(t, types, 29)

	for _, violationType := range types {
		category, err := Classify(violationType)
		assert.NoError(t, err)
		assert.Contains(t, []models.ViolationCategory{
			models.CategoryCamera,
			models.CategoryScreen,
			models.CategoryAudio,
			models.CategoryActivity,
		}, category)
	}
}

func TestClassify_UnknownTypeFails(t *testing.T) {
	_, err := Classify("weather_anomaly")
	assert.ErrorIs(t, err, ErrInvalidViolationType)

	_, err = Classify("")
	assert.ErrorIs(t, err, ErrInvalidViolationType)

	// Near-misses must not pass either.
	_, err = Classify("tab_switching")
	assert.ErrorIs(t, err, ErrInvalidViolationType)
}
