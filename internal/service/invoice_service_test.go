package service

import (
	"context"
	"testing"

	"trade-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceFixture(t *testing.T) (*fixture, *models.TradeRequest) {
	t.Helper()
	f := newFixture(t, Guards{RequireReadyForInvoice: true})
	req := f.createRequest(t)
	f.driveTo(t, req.ID, models.InspectionReadyForSale)
	return f, req
}

func TestInvoiceHappyPath(t *testing.T) {
	f, req := invoiceFixture(t)
	ctx := context.Background()

	step1, err := f.invoices.RequestInvoice(ctx, req.ID, InvoiceRequestInput{
		InvoiceNumber: "INV-2026-001",
		Amount:        4_500_000,
		RequestedBy:   "ba-sales",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceRequested, step1.InvoiceStatus)
	require.NotNil(t, step1.InvoiceDetails)
	assert.Equal(t, "INV-2026-001", step1.InvoiceDetails.InvoiceNumber)
	assert.NotNil(t, step1.InvoiceDetails.RequestedAt)

	step2, err := f.invoices.MarkInvoiceReceived(ctx, req.ID, "https://docs.example.com/inv-001.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceReceived, step2.InvoiceStatus)
	assert.NotNil(t, step2.InvoiceDetails.InvoiceReceivedAt)

	step3, err := f.invoices.RecordPayment(ctx, req.ID, "PAY-789", "https://docs.example.com/proof.png")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, step3.InvoiceStatus)
	assert.Equal(t, "PAY-789", step3.InvoiceDetails.PaymentReference)

	step4, err := f.invoices.ConfirmDocuments(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCompleted, step4.InvoiceStatus)
	assert.NotNil(t, step4.InvoiceDetails.DocumentsReceivedAt)

	// One event per advance.
	assert.Len(t, f.pub.invoice, 4)

	// Terminal: restarting the workflow is rejected.
	_, err = f.invoices.RequestInvoice(ctx, req.ID, InvoiceRequestInput{InvoiceNumber: "INV-2026-002", Amount: 1})
	assert.True(t, models.IsTransition(err))
}

func TestInvoiceStepsAreSequential(t *testing.T) {
	f, req := invoiceFixture(t)
	ctx := context.Background()

	// Payment before the invoice was even requested.
	_, err := f.invoices.RecordPayment(ctx, req.ID, "PAY-1", "https://docs.example.com/p.png")
	require.Error(t, err)
	assert.True(t, models.IsTransition(err))

	_, err = f.invoices.RequestInvoice(ctx, req.ID, InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	require.NoError(t, err)

	// Skipping invoiceReceived.
	_, err = f.invoices.RecordPayment(ctx, req.ID, "PAY-1", "https://docs.example.com/p.png")
	assert.True(t, models.IsTransition(err))

	// Repeating the current step is a no-go as well.
	_, err = f.invoices.RequestInvoice(ctx, req.ID, InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	assert.True(t, models.IsTransition(err))
}

func TestInvoiceRequiresReadyVehicle(t *testing.T) {
	f := newFixture(t, Guards{RequireReadyForInvoice: true})
	req := f.createRequest(t)

	_, err := f.invoices.RequestInvoice(context.Background(), req.ID,
		InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	require.Error(t, err)
	assert.True(t, models.IsTransition(err))

	// Guard off: invoicing a pending vehicle is allowed.
	relaxed := newFixture(t, Guards{RequireReadyForInvoice: false})
	req2 := relaxed.createRequest(t)

	got, err := relaxed.invoices.RequestInvoice(context.Background(), req2.ID,
		InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceRequested, got.InvoiceStatus)
}

func TestInvoiceOnConsignedVehicle(t *testing.T) {
	f := newFixture(t, Guards{RequireReadyForInvoice: true})
	req := f.createRequest(t)
	f.driveTo(t, req.ID, models.InspectionReadyForSale)

	_, err := f.trades.UpdateInspectionStatus(context.Background(), req.ID,
		models.InspectionConsigned, TransitionInput{ConsigneeDealerID: "dealer-2"})
	require.NoError(t, err)

	got, err := f.invoices.RequestInvoice(context.Background(), req.ID,
		InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceRequested, got.InvoiceStatus)
}

func TestInvoiceInputValidation(t *testing.T) {
	f, req := invoiceFixture(t)
	ctx := context.Background()

	_, err := f.invoices.RequestInvoice(ctx, req.ID, InvoiceRequestInput{Amount: -1})
	require.Error(t, err)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 2)

	_, err = f.invoices.MarkInvoiceReceived(ctx, req.ID, "")
	assert.True(t, models.IsValidation(err))

	_, err = f.invoices.RecordPayment(ctx, req.ID, "", "")
	assert.True(t, models.IsValidation(err))
}

func TestSetSaleTypeWithPrice(t *testing.T) {
	f, req := invoiceFixture(t)

	price := int64(3_200_000)
	got, err := f.invoices.SetSaleType(context.Background(), req.ID, models.SaleTypeCash, &price)
	require.NoError(t, err)
	assert.Equal(t, models.SaleTypeCash, got.SaleType)
	assert.Equal(t, price, got.SellingPrice)
}

func TestSetSaleTypeCTPLiveClearsPrice(t *testing.T) {
	f, req := invoiceFixture(t)
	ctx := context.Background()

	price := int64(3_200_000)
	_, err := f.invoices.SetSaleType(ctx, req.ID, models.SaleTypeCash, &price)
	require.NoError(t, err)

	// Moving to the auction channel drops the fixed price.
	got, err := f.invoices.SetSaleType(ctx, req.ID, models.SaleTypeCTPLive, &price)
	require.NoError(t, err)
	assert.Equal(t, models.SaleTypeCTPLive, got.SaleType)
	assert.Zero(t, got.SellingPrice)
}

func TestSetSaleTypeRejectsUnknown(t *testing.T) {
	f, req := invoiceFixture(t)

	_, err := f.invoices.SetSaleType(context.Background(), req.ID, models.SaleType("barter"), nil)
	assert.True(t, models.IsValidation(err))
}

func TestInvoiceUnknownRequest(t *testing.T) {
	f := newFixture(t, Guards{})

	_, err := f.invoices.RequestInvoice(context.Background(), "missing",
		InvoiceRequestInput{InvoiceNumber: "INV-1", Amount: 100})
	assert.True(t, models.IsNotFound(err))
}
