package services

import (
	"fmt"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
)

// violationCategories is the closed taxonomy mapping. Every supported violation
// type appears here exactly once; Classify never defaults a category for an
// unknown type.
var violationCategories = map[models.ViolationType]models.ViolationCategory{
	// Camera
	models.ViolationMultipleFaces:    models.CategoryCamera,
	models.ViolationNoFaceDetected:   models.CategoryCamera,
	models.ViolationFaceMismatch:     models.CategoryCamera,
	models.ViolationSuspiciousGaze:   models.CategoryCamera,
	models.ViolationHeadMovement:     models.CategoryCamera,
	models.ViolationPostureShift:     models.CategoryCamera,
	models.ViolationMouthMovement:    models.CategoryCamera,
	models.ViolationBackgroundPerson: models.CategoryCamera,
	models.ViolationProxySuspected:   models.CategoryCamera,

	// Screen
	models.ViolationFullscreenExit:    models.CategoryScreen,
	models.ViolationTabSwitch:         models.CategoryScreen,
	models.ViolationRestrictedApp:     models.CategoryScreen,
	models.ViolationRestrictedWebsite: models.CategoryScreen,
	models.ViolationCopyPaste:         models.CategoryScreen,
	models.ViolationScreenShare:       models.CategoryScreen,
	models.ViolationRemoteDesktop:     models.CategoryScreen,
	models.ViolationVirtualMachine:    models.CategoryScreen,
	models.ViolationOverlayDetected:   models.CategoryScreen,
	models.ViolationSecondaryDevice:   models.CategoryScreen,

	// Audio
	models.ViolationBackgroundVoice: models.CategoryAudio,
	models.ViolationCoaching:        models.CategoryAudio,
	models.ViolationVoiceMismatch:   models.CategoryAudio,
	models.ViolationScriptedReading: models.CategoryAudio,
	models.ViolationAnswerPlayback:  models.CategoryAudio,

	// Activity
	models.ViolationPhoneDetected:      models.CategoryActivity,
	models.ViolationExternalMaterial:   models.CategoryActivity,
	models.ViolationMutedWithMovement:  models.CategoryActivity,
	models.ViolationUnexplainedSilence: models.CategoryActivity,
	models.ViolationSpeakerMismatch:    models.CategoryActivity,
}

// Classify maps a violation type to its fixed category. Unknown types fail
// with ErrInvalidViolationType.
func Classify(t models.ViolationType) (models.ViolationCategory, error) {
	category, ok := violationCategories[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidViolationType, t)
	}
	return category, nil
}

// KnownViolationTypes returns the closed set of supported violation types.
// Used by the request validator.
func KnownViolationTypes() []models.ViolationType {
	types := make([]models.ViolationType, 0, len(violationCategories))
	for t := range violationCategories {
		types = append(types, t)
	}
	return types
}
