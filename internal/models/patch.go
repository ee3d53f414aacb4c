package models

import "time"

// TradeRequestPatch carries a partial update. Nil fields keep the previous
// value; the inspection, vehicle_info and invoice_details sub-objects are
// merged field by field, never replaced wholesale. Status fields are absent
// on purpose: inspection status only moves through the transition engine.
type TradeRequestPatch struct {
	TradeType      *TradeType           `json:"trade_type,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	SellingPrice   *int64               `json:"selling_price,omitempty"`
	VehicleInfo    *VehicleInfoPatch    `json:"vehicle_info,omitempty"`
	Inspection     *InspectionPatch     `json:"inspection,omitempty"`
	InvoiceDetails *InvoiceDetailsPatch `json:"invoice_details,omitempty"`
}

// VehicleInfoPatch merges into the owned VehicleInfo value object.
type VehicleInfoPatch struct {
	VIN         *string `json:"vin,omitempty"`
	Make        *string `json:"make,omitempty"`
	Model       *string `json:"model,omitempty"`
	Year        *int    `json:"year,omitempty"`
	RegNumber   *string `json:"reg_number,omitempty"`
	Mileage     *int    `json:"mileage,omitempty"`
	Color       *string `json:"color,omitempty"`
	EngineHours *int    `json:"engine_hours,omitempty"`
}

// InspectionPatch merges into the owned Inspection. Items and Photos replace
// the whole slice when present.
type InspectionPatch struct {
	CompletedBy *string           `json:"completed_by,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
	Items       *[]InspectionItem `json:"items,omitempty"`
	Photos      *[]string         `json:"photos,omitempty"`
}

// InvoiceDetailsPatch merges into the owned InvoiceDetails.
type InvoiceDetailsPatch struct {
	InvoiceNumber      *string    `json:"invoice_number,omitempty"`
	Amount             *int64     `json:"amount,omitempty"`
	InvoiceDocumentURL *string    `json:"invoice_document_url,omitempty"`
	PaymentReference   *string    `json:"payment_reference,omitempty"`
	PaymentProofURL    *string    `json:"payment_proof_url,omitempty"`
	RequestedBy        *string    `json:"requested_by,omitempty"`
	RequestedAt        *time.Time `json:"requested_at,omitempty"`
}

// IsEmpty reports whether the patch carries no changes at all.
func (p TradeRequestPatch) IsEmpty() bool {
	return p.TradeType == nil && p.Notes == nil && p.SellingPrice == nil &&
		p.VehicleInfo == nil && p.Inspection == nil && p.InvoiceDetails == nil
}

// Apply merges the patch into a copy of base and returns it. Omitted keys
// retain their previous values.
func (p TradeRequestPatch) Apply(base TradeRequest) TradeRequest {
	out := base

	if p.TradeType != nil {
		out.TradeType = *p.TradeType
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.SellingPrice != nil {
		out.SellingPrice = *p.SellingPrice
	}

	if vp := p.VehicleInfo; vp != nil {
		vi := out.VehicleInfo
		if vp.VIN != nil {
			vi.VIN = *vp.VIN
		}
		if vp.Make != nil {
			vi.Make = *vp.Make
		}
		if vp.Model != nil {
			vi.Model = *vp.Model
		}
		if vp.Year != nil {
			vi.Year = *vp.Year
		}
		if vp.RegNumber != nil {
			vi.RegNumber = *vp.RegNumber
		}
		if vp.Mileage != nil {
			vi.Mileage = *vp.Mileage
		}
		if vp.Color != nil {
			vi.Color = *vp.Color
		}
		if vp.EngineHours != nil {
			vi.EngineHours = *vp.EngineHours
		}
		out.VehicleInfo = vi
	}

	if ip := p.Inspection; ip != nil {
		ins := out.Inspection
		if ip.CompletedBy != nil {
			ins.CompletedBy = *ip.CompletedBy
		}
		if ip.CompletedAt != nil {
			ins.CompletedAt = *ip.CompletedAt
		}
		if ip.Notes != nil {
			ins.Notes = *ip.Notes
		}
		if ip.Items != nil {
			ins.Items = *ip.Items
		}
		if ip.Photos != nil {
			ins.Photos = *ip.Photos
		}
		out.Inspection = ins
	}

	if dp := p.InvoiceDetails; dp != nil {
		var det InvoiceDetails
		if out.InvoiceDetails != nil {
			det = *out.InvoiceDetails
		}
		if dp.InvoiceNumber != nil {
			det.InvoiceNumber = *dp.InvoiceNumber
		}
		if dp.Amount != nil {
			det.Amount = *dp.Amount
		}
		if dp.InvoiceDocumentURL != nil {
			det.InvoiceDocumentURL = *dp.InvoiceDocumentURL
		}
		if dp.PaymentReference != nil {
			det.PaymentReference = *dp.PaymentReference
		}
		if dp.PaymentProofURL != nil {
			det.PaymentProofURL = *dp.PaymentProofURL
		}
		if dp.RequestedBy != nil {
			det.RequestedBy = *dp.RequestedBy
		}
		if dp.RequestedAt != nil {
			det.RequestedAt = dp.RequestedAt
		}
		out.InvoiceDetails = &det
	}

	return out
}
