package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideBooked     NotificationType = "RIDE_BOOKED"
	NotificationRideStarted    NotificationType = "RIDE_STARTED"
	NotificationRideCompleted  NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
	NotificationCreditsAdded   NotificationType = "CREDITS_ADDED"
	NotificationReceiptReady   NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService delivers rider notifications. Delivery is logged only.
type NotificationService struct {
	logf func(format string, args ...any)
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{logf: log.Printf}
}

// NotifyRideBooked tells the rider who is coming and the code to start the ride.
func (s *NotificationService) NotifyRideBooked(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideBooked,
		RecipientID: ride.UserID,
		Title:       "Ride Booked",
		Message:     fmt.Sprintf("%s (%s) is on the way. Share OTP %s to start your ride", ride.DriverName, ride.DriverPhone, ride.OTP),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"fare":    ride.Fare.StringFixed(2),
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideStarted notifies the rider that the ride is under way.
func (s *NotificationService) NotifyRideStarted(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideStarted,
		RecipientID: ride.UserID,
		Title:       "Ride Started",
		Message:     fmt.Sprintf("Your ride to %s has started", ride.Dropoff),
		Data:        map[string]interface{}{"ride_id": ride.ID},
		CreatedAt:   time.Now(),
	})
}

// NotifyRideCompleted asks the rider to pay.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideCompleted,
		RecipientID: ride.UserID,
		Title:       "Ride Completed",
		Message:     fmt.Sprintf("You have arrived. Please pay ₹%s", ride.Fare.StringFixed(2)),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"fare":    ride.Fare.StringFixed(2),
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCancelled notifies the rider about a cancellation.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideCancelled,
		RecipientID: ride.UserID,
		Title:       "Ride Cancelled",
		Message:     "Your ride has been cancelled",
		Data:        map[string]interface{}{"ride_id": ride.ID},
		CreatedAt:   time.Now(),
	})
}

// NotifyPaymentSuccess confirms a settled ride.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: ride.UserID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Paid ₹%s by %s", ride.Fare.StringFixed(2), ride.PaymentMethod),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"method":  ride.PaymentMethod,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed tells the rider a payment did not go through.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, userID, rideID string, method domain.PaymentMethod, reason error) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: userID,
		Title:       "Payment Failed",
		Message:     "Payment failed, check your balance or pay by cash",
		Data: map[string]interface{}{
			"ride_id": rideID,
			"method":  method,
			"reason":  reason.Error(),
		},
		CreatedAt: time.Now(),
	})
}

// NotifyCreditsAdded confirms a wallet top-up.
func (s *NotificationService) NotifyCreditsAdded(ctx context.Context, userID string, amount, balance decimal.Decimal) error {
	return s.send(ctx, Notification{
		Type:        NotificationCreditsAdded,
		RecipientID: userID,
		Title:       "Credits Added",
		Message:     fmt.Sprintf("₹%s added to your wallet. Balance: ₹%s", amount.StringFixed(2), balance.StringFixed(2)),
		CreatedAt:   time.Now(),
	})
}

// NotifyReceiptReady notifies the rider that the receipt is ready.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.UserID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Your receipt for ₹%s is ready", receipt.Fare.StringFixed(2)),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"ride_id":    receipt.RideID,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (log only).
func (s *NotificationService) send(_ context.Context, notification Notification) error {
	s.logf("[notify] type=%s recipient=%s title=%q message=%q",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)
	return nil
}
