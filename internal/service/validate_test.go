package service

import (
	"testing"

	"trade-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVehicleInfoAccepts(t *testing.T) {
	assert.NoError(t, validateVehicleInfo(validVehicle()))

	// Zero mileage is legal; zero year is not.
	vi := validVehicle()
	vi.Mileage = 0
	assert.NoError(t, validateVehicleInfo(vi))
}

func TestValidateVehicleInfoCollectsEveryViolation(t *testing.T) {
	err := validateVehicleInfo(models.VehicleInfo{})
	require.Error(t, err)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	// VIN, Make, Model, Year, RegNumber and Color are all required; a zero
	// mileage is fine.
	assert.Len(t, verr.Violations, 6)
}

func TestValidateVehicleInfoVINLength(t *testing.T) {
	vi := validVehicle()
	vi.VIN = "1HGCM82633A00435" // 16 chars, one short

	err := validateVehicleInfo(vi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIN")
}

func TestValidateInspectionItems(t *testing.T) {
	pass := models.InspectionItem{ID: "i-1", Category: "Engine", Name: "Oil level", Status: models.ItemStatusPass}
	unchecked := models.InspectionItem{ID: "i-2", Category: "Engine", Name: "Coolant", Status: models.ItemStatusNotChecked}
	assert.NoError(t, validateInspectionItems([]models.InspectionItem{pass, unchecked}))

	fail := models.InspectionItem{ID: "i-3", Category: "Body", Name: "Windshield", Status: models.ItemStatusFail}
	err := validateInspectionItems([]models.InspectionItem{fail})
	require.Error(t, err)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2) // missing notes and missing photo

	fail.Notes = "cracked across driver side"
	fail.FailurePhotoURL = "https://cdn.example.com/crack.jpg"
	assert.NoError(t, validateInspectionItems([]models.InspectionItem{fail}))
}

func TestValidateInspectionItemsUnknownStatus(t *testing.T) {
	item := models.InspectionItem{ID: "i-1", Category: "Body", Name: "Paint", Status: "Maybe"}
	err := validateInspectionItems([]models.InspectionItem{item})
	assert.True(t, models.IsValidation(err))
}

func TestValidateInspectionItemsEmptyList(t *testing.T) {
	assert.NoError(t, validateInspectionItems(nil))
}
