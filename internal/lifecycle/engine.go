// Package lifecycle is the vehicle inspection status transition engine: a
// pure function set with no dependencies on storage or transport. Given the
// current status, a requested status and a pre-validated context it decides
// legality and computes the derived fields each transition must write.
package lifecycle

import (
	"time"

	"trade-service/internal/models"
)

// allowedTransitions defines the valid lifecycle transitions. The key is the
// current status, the value the set of statuses reachable from it. Statuses
// absent from the map (including the legacy inProgress/completed/failed
// values) can neither be entered nor left.
var allowedTransitions = map[models.InspectionStatus][]models.InspectionStatus{
	models.InspectionPending:      {models.InspectionFAWApproved, models.InspectionFAWRejected},
	models.InspectionFAWApproved:  {models.InspectionBAReceived},
	models.InspectionBAReceived:   {models.InspectionBAInspected},
	models.InspectionBAInspected:  {models.InspectionBAApproved, models.InspectionBARejected},
	models.InspectionBAApproved:   {models.InspectionReadyForSale},
	models.InspectionReadyForSale: {models.InspectionConsigned},
	models.InspectionConsigned:    {models.InspectionReadyForSale},
	models.InspectionFAWRejected:  {},
	models.InspectionBARejected:   {},
}

// Reviewer role names stamped into the per-stage actor fields when the
// context carries no explicit actor.
const (
	fawReviewerRole = "FAW Reviewer"
	baReviewerRole  = "BA Used Reviewer"
)

// Context carries the pre-validated facts a transition may need. Evidence
// checks happen at the caller (photo storage is external); the engine only
// sees the resulting booleans and fails closed.
type Context struct {
	// Actor is attributed on the stage's reviewed-by field. Empty means
	// the stage's default reviewer role.
	Actor string
	// Now is the transition clock; the zero value means time.Now.
	Now time.Time

	// HasReceptionEvidence must be true to enter BA_RECEIVED: at least one
	// reception photo has been uploaded.
	HasReceptionEvidence bool

	// Consignment facts, required to enter CONSIGNED.
	ConsigneeDealerID   string
	ConsigneeDealerName string
	// OriginDealerID is the request's own dealer. Consigning back to it is
	// blocked unless AllowConsignToOrigin is set.
	OriginDealerID       string
	AllowConsignToOrigin bool
}

// Result is a legal transition's outcome: the next status plus every derived
// field to write. Apply merges it into an inspection.
type Result struct {
	Next models.InspectionStatus
	At   time.Time

	FAWReviewedBy string
	BAReceivedBy  string
	BAReviewedBy  string

	ConsignedDealerID   string
	ConsignedDealerName string
	// ClearConsignment is set on un-consign: all consignment fields reset.
	ClearConsignment bool
}

// CanTransition reports whether the table allows from → to.
func CanTransition(from, to models.InspectionStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AttemptTransition decides whether current → requested is legal under ctx
// and computes the derived fields. It returns a TransitionError naming both
// statuses on any refusal; it never mutates anything.
func AttemptTransition(current, requested models.InspectionStatus, ctx Context) (*Result, error) {
	if !requested.IsValid() {
		return nil, &models.TransitionError{
			Current:   current.String(),
			Requested: requested.String(),
			Reason:    "unknown target status",
		}
	}
	if !CanTransition(current, requested) {
		return nil, &models.TransitionError{
			Current:   current.String(),
			Requested: requested.String(),
		}
	}

	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	res := &Result{Next: requested, At: now}

	switch requested {
	case models.InspectionFAWApproved, models.InspectionFAWRejected:
		res.FAWReviewedBy = actorOr(ctx.Actor, fawReviewerRole)

	case models.InspectionBAReceived:
		if !ctx.HasReceptionEvidence {
			return nil, &models.TransitionError{
				Current:   current.String(),
				Requested: requested.String(),
				Reason:    "reception requires at least one uploaded photo",
			}
		}
		res.BAReceivedBy = actorOr(ctx.Actor, baReviewerRole)

	case models.InspectionBAApproved, models.InspectionBARejected:
		res.BAReviewedBy = actorOr(ctx.Actor, baReviewerRole)

	case models.InspectionConsigned:
		if ctx.ConsigneeDealerID == "" {
			return nil, &models.TransitionError{
				Current:   current.String(),
				Requested: requested.String(),
				Reason:    "consignment requires a dealer id",
			}
		}
		if ctx.ConsigneeDealerID == ctx.OriginDealerID && !ctx.AllowConsignToOrigin {
			return nil, &models.TransitionError{
				Current:   current.String(),
				Requested: requested.String(),
				Reason:    "cannot consign to the originating dealer",
			}
		}
		res.ConsignedDealerID = ctx.ConsigneeDealerID
		res.ConsignedDealerName = ctx.ConsigneeDealerName

	case models.InspectionReadyForSale:
		if current == models.InspectionConsigned {
			res.ClearConsignment = true
		}
	}

	return res, nil
}

// Apply writes the transition outcome into the inspection.
func (r *Result) Apply(ins *models.Inspection) {
	ins.Status = r.Next
	at := r.At

	if r.FAWReviewedBy != "" {
		ins.FAWReviewedBy = r.FAWReviewedBy
		ins.FAWReviewedAt = &at
	}
	if r.BAReceivedBy != "" {
		ins.BAReceivedBy = r.BAReceivedBy
		ins.BAReceivedAt = &at
	}
	if r.BAReviewedBy != "" {
		ins.BAReviewedBy = r.BAReviewedBy
		ins.BAReviewedAt = &at
	}
	if r.ConsignedDealerID != "" {
		ins.ConsignedDealerID = r.ConsignedDealerID
		ins.ConsignedDealerName = r.ConsignedDealerName
		ins.ConsignedAt = &at
	}
	if r.ClearConsignment {
		ins.ConsignedDealerID = ""
		ins.ConsignedDealerName = ""
		ins.ConsignedAt = nil
	}
}

// MirrorRequestStatus returns the request status implied by an inspection
// status: FAW approval/rejection flips the request to approved/rejected,
// every other inspection status leaves it untouched.
func MirrorRequestStatus(to models.InspectionStatus, current models.RequestStatus) models.RequestStatus {
	switch to {
	case models.InspectionFAWApproved:
		return models.RequestApproved
	case models.InspectionFAWRejected:
		return models.RequestRejected
	default:
		return current
	}
}

func actorOr(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	return fallback
}
