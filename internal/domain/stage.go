package domain

// Stage is the user-facing booking stage derived from a ride.
type Stage string

const (
	StageIdle      Stage = "IDLE"
	StageBooked    Stage = "BOOKED"
	StageRiding    Stage = "RIDING"
	StagePayment   Stage = "PAYMENT"
	StageReview    Stage = "REVIEW"
	StageCompleted Stage = "COMPLETED"
	StageCancelled Stage = "CANCELLED"
)

// StageOf derives the booking stage for a ride. A nil ride is IDLE.
func StageOf(ride *Ride, reviewed bool) Stage {
	if ride == nil {
		return StageIdle
	}
	switch ride.Status {
	case RideStatusPending:
		return StageBooked
	case RideStatusOngoing:
		return StageRiding
	case RideStatusCancelled:
		return StageCancelled
	case RideStatusCompleted:
		if !ride.IsSettled() {
			return StagePayment
		}
		if !reviewed {
			return StageReview
		}
		return StageCompleted
	}
	return StageIdle
}
