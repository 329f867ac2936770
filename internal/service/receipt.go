package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// ReceiptService builds receipts for settled rides.
type ReceiptService struct {
	store               repository.Store
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store repository.Store, notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		store:               store,
		notificationService: notificationService,
	}
}

// Generate assembles the receipt of a settled ride owned by userID.
func (s *ReceiptService) Generate(ctx context.Context, userID, rideID string) (*domain.Receipt, error) {
	if err := validateIDs(userID, rideID); err != nil {
		return nil, err
	}

	repos := s.store.Repositories()
	ride, err := ownedRide(ctx, repos.Rides.GetByID, userID, rideID)
	if err != nil {
		return nil, err
	}
	if !ride.IsSettled() {
		return nil, fmt.Errorf("%w: ride %s has not been paid", ErrInvalidState, ride.ID)
	}

	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	receipt := &domain.Receipt{
		ID:            uuid.New().String(),
		RideID:        ride.ID,
		UserID:        user.ID,
		UserName:      user.Name,
		Pickup:        ride.Pickup,
		Dropoff:       ride.Dropoff,
		Type:          ride.Type,
		DriverName:    ride.DriverName,
		DriverPhone:   ride.DriverPhone,
		Fare:          ride.Fare,
		PaymentMethod: ride.PaymentMethod,
		BookedAt:      ride.CreatedAt,
		SettledAt:     ride.UpdatedAt,
		IssuedAt:      time.Now().UTC(),
	}

	if ride.PaymentMethod == domain.PaymentMethodWallet {
		txn, err := repos.Ledger.GetRideDebit(ctx, ride.ID)
		switch {
		case err == nil:
			receipt.TransactionID = txn.ID
		case !errors.Is(err, repository.ErrNotFound): // zero-fare wallet rides have no debit
			return nil, fmt.Errorf("failed to load ride payment: %w", err)
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}

// RenderPDF lays the receipt out on a single A4 page.
func (s *ReceiptService) RenderPDF(receipt *domain.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "RIDE RECEIPT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Receipt "+receipt.ID, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	section("Trip")
	row("Ride", receipt.RideID)
	row("Rider", receipt.UserName)
	row("Pickup", receipt.Pickup)
	row("Dropoff", receipt.Dropoff)
	row("Vehicle", string(receipt.Type))
	row("Driver", fmt.Sprintf("%s (%s)", receipt.DriverName, receipt.DriverPhone))
	row("Booked", receipt.BookedAt.Format("Jan 02, 2006 3:04 PM"))
	pdf.Ln(4)

	section("Payment")
	row("Method", string(receipt.PaymentMethod))
	if receipt.TransactionID != "" {
		row("Transaction", receipt.TransactionID)
	}
	row("Paid", receipt.SettledAt.Format("Jan 02, 2006 3:04 PM"))
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(45, 10, "TOTAL", "T", 0, "L", false, 0, "")
	// the core fonts have no rupee glyph
	pdf.CellFormat(0, 10, "INR "+receipt.Fare.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for riding with us!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
