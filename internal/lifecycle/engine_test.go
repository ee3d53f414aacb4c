package lifecycle

import (
	"testing"
	"time"

	"trade-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []models.InspectionStatus{
	models.InspectionPending,
	models.InspectionInProgress,
	models.InspectionCompleted,
	models.InspectionFailed,
	models.InspectionFAWApproved,
	models.InspectionFAWRejected,
	models.InspectionBAReceived,
	models.InspectionBAInspected,
	models.InspectionBAApproved,
	models.InspectionBARejected,
	models.InspectionReadyForSale,
	models.InspectionConsigned,
}

// passingContext satisfies every guard so only the table decides legality.
func passingContext() Context {
	return Context{
		Actor:                "tester",
		Now:                  time.Now(),
		HasReceptionEvidence: true,
		ConsigneeDealerID:    "dealer-2",
		ConsigneeDealerName:  "Vancouver Auto Gallery",
		OriginDealerID:       "dealer-1",
	}
}

func TestIllegalPairsAreRejected(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if CanTransition(from, to) {
				continue
			}
			res, err := AttemptTransition(from, to, passingContext())
			assert.Nil(t, res, "%s -> %s", from, to)
			require.Error(t, err, "%s -> %s", from, to)

			var te *models.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, from.String(), te.Current)
			assert.Equal(t, to.String(), te.Requested)
		}
	}
}

func TestLegacyStatusesUnreachable(t *testing.T) {
	for _, legacy := range []models.InspectionStatus{
		models.InspectionInProgress, models.InspectionCompleted, models.InspectionFailed,
	} {
		for _, from := range allStatuses {
			assert.False(t, CanTransition(from, legacy), "%s -> %s", from, legacy)
			assert.False(t, CanTransition(legacy, from), "%s -> %s", legacy, from)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, terminal := range []models.InspectionStatus{
		models.InspectionFAWRejected, models.InspectionBARejected,
	} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range allStatuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestFAWReviewStampsActorAndTime(t *testing.T) {
	ctx := passingContext()
	ctx.Now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	res, err := AttemptTransition(models.InspectionPending, models.InspectionFAWApproved, ctx)
	require.NoError(t, err)

	ins := models.Inspection{Status: models.InspectionPending}
	res.Apply(&ins)

	assert.Equal(t, models.InspectionFAWApproved, ins.Status)
	assert.Equal(t, "tester", ins.FAWReviewedBy)
	require.NotNil(t, ins.FAWReviewedAt)
	assert.Equal(t, ctx.Now, *ins.FAWReviewedAt)
	assert.Nil(t, ins.BAReceivedAt)
}

func TestFAWReviewDefaultsToRoleActor(t *testing.T) {
	ctx := passingContext()
	ctx.Actor = ""

	res, err := AttemptTransition(models.InspectionPending, models.InspectionFAWRejected, ctx)
	require.NoError(t, err)

	ins := models.Inspection{Status: models.InspectionPending}
	res.Apply(&ins)
	assert.Equal(t, "FAW Reviewer", ins.FAWReviewedBy)
}

func TestReceptionFailsClosedWithoutEvidence(t *testing.T) {
	ctx := passingContext()
	ctx.HasReceptionEvidence = false

	_, err := AttemptTransition(models.InspectionFAWApproved, models.InspectionBAReceived, ctx)
	var te *models.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Reason, "photo")
}

func TestReceptionStampsBAReceived(t *testing.T) {
	res, err := AttemptTransition(models.InspectionFAWApproved, models.InspectionBAReceived, passingContext())
	require.NoError(t, err)

	ins := models.Inspection{Status: models.InspectionFAWApproved}
	res.Apply(&ins)
	assert.Equal(t, models.InspectionBAReceived, ins.Status)
	assert.Equal(t, "tester", ins.BAReceivedBy)
	require.NotNil(t, ins.BAReceivedAt)
}

func TestBAReviewStamps(t *testing.T) {
	res, err := AttemptTransition(models.InspectionBAInspected, models.InspectionBAApproved, passingContext())
	require.NoError(t, err)

	ins := models.Inspection{Status: models.InspectionBAInspected}
	res.Apply(&ins)
	assert.Equal(t, "tester", ins.BAReviewedBy)
	require.NotNil(t, ins.BAReviewedAt)
}

func TestConsignRequiresDealerID(t *testing.T) {
	ctx := passingContext()
	ctx.ConsigneeDealerID = ""

	_, err := AttemptTransition(models.InspectionReadyForSale, models.InspectionConsigned, ctx)
	var te *models.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Reason, "dealer id")
}

func TestConsignToOriginBlockedByDefault(t *testing.T) {
	ctx := passingContext()
	ctx.ConsigneeDealerID = ctx.OriginDealerID

	_, err := AttemptTransition(models.InspectionReadyForSale, models.InspectionConsigned, ctx)
	require.Error(t, err)

	ctx.AllowConsignToOrigin = true
	res, err := AttemptTransition(models.InspectionReadyForSale, models.InspectionConsigned, ctx)
	require.NoError(t, err)
	assert.Equal(t, ctx.OriginDealerID, res.ConsignedDealerID)
}

func TestConsignAndUnconsign(t *testing.T) {
	ctx := passingContext()

	res, err := AttemptTransition(models.InspectionReadyForSale, models.InspectionConsigned, ctx)
	require.NoError(t, err)

	ins := models.Inspection{Status: models.InspectionReadyForSale}
	res.Apply(&ins)
	assert.Equal(t, models.InspectionConsigned, ins.Status)
	assert.Equal(t, "dealer-2", ins.ConsignedDealerID)
	assert.Equal(t, "Vancouver Auto Gallery", ins.ConsignedDealerName)
	require.NotNil(t, ins.ConsignedAt)

	back, err := AttemptTransition(models.InspectionConsigned, models.InspectionReadyForSale, ctx)
	require.NoError(t, err)
	back.Apply(&ins)
	assert.Equal(t, models.InspectionReadyForSale, ins.Status)
	assert.Empty(t, ins.ConsignedDealerID)
	assert.Empty(t, ins.ConsignedDealerName)
	assert.Nil(t, ins.ConsignedAt)
}

func TestUnknownTargetStatus(t *testing.T) {
	_, err := AttemptTransition(models.InspectionPending, models.InspectionStatus("bogus"), passingContext())
	var te *models.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Reason, "unknown")
}

func TestMirrorRequestStatus(t *testing.T) {
	cases := []struct {
		to   models.InspectionStatus
		want models.RequestStatus
	}{
		{models.InspectionFAWApproved, models.RequestApproved},
		{models.InspectionFAWRejected, models.RequestRejected},
		{models.InspectionBAReceived, models.RequestSubmitted},
		{models.InspectionBAInspected, models.RequestSubmitted},
		{models.InspectionBAApproved, models.RequestSubmitted},
		{models.InspectionReadyForSale, models.RequestSubmitted},
		{models.InspectionConsigned, models.RequestSubmitted},
	}
	for _, tc := range cases {
		got := MirrorRequestStatus(tc.to, models.RequestSubmitted)
		assert.Equal(t, tc.want, got, "to=%s", tc.to)
	}
}

func TestHappyPathEndToEnd(t *testing.T) {
	ctx := passingContext()
	path := []models.InspectionStatus{
		models.InspectionFAWApproved,
		models.InspectionBAReceived,
		models.InspectionBAInspected,
		models.InspectionBAApproved,
		models.InspectionReadyForSale,
	}

	ins := models.Inspection{Status: models.InspectionPending}
	for _, next := range path {
		res, err := AttemptTransition(ins.Status, next, ctx)
		require.NoError(t, err, "-> %s", next)
		res.Apply(&ins)
	}
	assert.Equal(t, models.InspectionReadyForSale, ins.Status)
	assert.NotNil(t, ins.FAWReviewedAt)
	assert.NotNil(t, ins.BAReceivedAt)
	assert.NotNil(t, ins.BAReviewedAt)
}
