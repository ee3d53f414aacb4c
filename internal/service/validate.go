package service

import (
	"fmt"

	"trade-service/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateVehicleInfo checks the vehicle schema at the create/update
// boundary and collects every violation, not just the first.
func validateVehicleInfo(vi models.VehicleInfo) error {
	verr := &models.ValidationError{}

	if err := validate.Struct(vi); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				verr.Add(fe.Field(), describeRule(fe))
			}
		} else {
			verr.Add("vehicle_info", err.Error())
		}
	}

	return verr.OrNil()
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Field() == "VIN" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateInspectionItems re-enforces the checklist invariant for item
// updates arriving from an external source: a Fail result must carry notes
// and a failure photo reference.
func validateInspectionItems(items []models.InspectionItem) error {
	verr := &models.ValidationError{}

	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		switch item.Status {
		case models.ItemStatusPass, models.ItemStatusNotChecked:
			// nothing extra required
		case models.ItemStatusFail:
			if item.Notes == "" {
				verr.Add(field+".notes", "notes are required for a failed item")
			}
			if item.FailurePhotoURL == "" {
				verr.Add(field+".failure_photo_url", "a failure photo is required for a failed item")
			}
		default:
			verr.Add(field+".status", fmt.Sprintf("unknown item status %q", item.Status))
		}
	}

	return verr.OrNil()
}
