package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func basePatchRequest() TradeRequest {
	return TradeRequest{
		ID:       "req-1",
		DealerID: "dealer-1",
		VehicleInfo: VehicleInfo{
			VIN:       "1HGCM82633A004352",
			Make:      "Scania",
			Model:     "R450",
			Year:      2019,
			RegNumber: "XYZ-987",
			Mileage:   120000,
			Color:     "Blue",
		},
		TradeType: TradeTypeTradeIn,
		Status:    RequestSubmitted,
		Inspection: Inspection{
			ID:     "insp-1",
			Status: InspectionPending,
			Notes:  "initial walkaround done",
			Photos: []string{"https://cdn.example.com/a.jpg"},
		},
		Notes:   "arrived on transporter",
		Version: 3,
	}
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, TradeRequestPatch{}.IsEmpty())

	notes := "x"
	assert.False(t, TradeRequestPatch{Notes: &notes}.IsEmpty())
	assert.False(t, TradeRequestPatch{VehicleInfo: &VehicleInfoPatch{}}.IsEmpty())
	assert.False(t, TradeRequestPatch{Inspection: &InspectionPatch{}}.IsEmpty())
}

func TestPatchApplyTopLevel(t *testing.T) {
	base := basePatchRequest()

	tt := TradeTypeBuyBack
	notes := "rekeyed by sales"
	price := int64(2_750_000)
	out := TradeRequestPatch{TradeType: &tt, Notes: &notes, SellingPrice: &price}.Apply(base)

	assert.Equal(t, TradeTypeBuyBack, out.TradeType)
	assert.Equal(t, notes, out.Notes)
	assert.Equal(t, price, out.SellingPrice)

	// Untouched fields and the base itself stay as they were.
	assert.Equal(t, base.VehicleInfo, out.VehicleInfo)
	assert.Equal(t, base.Version, out.Version)
	assert.Equal(t, "arrived on transporter", base.Notes)
}

func TestPatchApplyMergesVehicleInfo(t *testing.T) {
	base := basePatchRequest()

	color := "Green"
	mileage := 125000
	out := TradeRequestPatch{
		VehicleInfo: &VehicleInfoPatch{Color: &color, Mileage: &mileage},
	}.Apply(base)

	assert.Equal(t, "Green", out.VehicleInfo.Color)
	assert.Equal(t, 125000, out.VehicleInfo.Mileage)
	// Omitted keys survive the merge.
	assert.Equal(t, base.VehicleInfo.VIN, out.VehicleInfo.VIN)
	assert.Equal(t, base.VehicleInfo.Make, out.VehicleInfo.Make)
	assert.Equal(t, base.VehicleInfo.Year, out.VehicleInfo.Year)
}

func TestPatchApplyMergesInspection(t *testing.T) {
	base := basePatchRequest()

	notes := "brakes need a second look"
	items := []InspectionItem{{ID: "i-1", Category: "Brakes", Name: "Pads", Status: ItemStatusPass}}
	out := TradeRequestPatch{
		Inspection: &InspectionPatch{Notes: &notes, Items: &items},
	}.Apply(base)

	assert.Equal(t, notes, out.Inspection.Notes)
	assert.Equal(t, items, out.Inspection.Items)
	// Photos were not in the patch and the status never moves via patch.
	assert.Equal(t, base.Inspection.Photos, out.Inspection.Photos)
	assert.Equal(t, InspectionPending, out.Inspection.Status)
	assert.Equal(t, "insp-1", out.Inspection.ID)
}

func TestPatchApplyPhotosReplaceSlice(t *testing.T) {
	base := basePatchRequest()

	photos := []string{"https://cdn.example.com/b.jpg", "https://cdn.example.com/c.jpg"}
	out := TradeRequestPatch{
		Inspection: &InspectionPatch{Photos: &photos},
	}.Apply(base)

	assert.Equal(t, photos, out.Inspection.Photos)
}

func TestPatchApplyCreatesInvoiceDetails(t *testing.T) {
	base := basePatchRequest()
	assert.Nil(t, base.InvoiceDetails)

	number := "INV-42"
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := TradeRequestPatch{
		InvoiceDetails: &InvoiceDetailsPatch{InvoiceNumber: &number, RequestedAt: &at},
	}.Apply(base)

	assert.Nil(t, base.InvoiceDetails)
	assert.NotNil(t, out.InvoiceDetails)
	assert.Equal(t, "INV-42", out.InvoiceDetails.InvoiceNumber)
	assert.Equal(t, at, *out.InvoiceDetails.RequestedAt)
}

func TestPatchApplyMergesExistingInvoiceDetails(t *testing.T) {
	base := basePatchRequest()
	base.InvoiceDetails = &InvoiceDetails{InvoiceNumber: "INV-42", Amount: 900}

	ref := "PAY-7"
	out := TradeRequestPatch{
		InvoiceDetails: &InvoiceDetailsPatch{PaymentReference: &ref},
	}.Apply(base)

	assert.Equal(t, "PAY-7", out.InvoiceDetails.PaymentReference)
	assert.Equal(t, "INV-42", out.InvoiceDetails.InvoiceNumber)
	assert.Equal(t, int64(900), out.InvoiceDetails.Amount)
	// The base's details are not aliased by the merged copy.
	assert.Empty(t, base.InvoiceDetails.PaymentReference)
}
