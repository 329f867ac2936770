package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPTTL bounds how long a code stays reserved if its ride never ends.
const OTPTTL = 24 * time.Hour

const otpKeyPrefix = "otp:active:"

// releaseScript deletes the reservation only while it still names the ride,
// so a ride outliving OTPTTL cannot free a code re-reserved by another ride.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPStore reserves ride OTPs in Redis so concurrent API instances never
// hand the same code to two active rides.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates a new OTPStore.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client, ttl: OTPTTL}
}

// Reserve claims otp for rideID.
// Returns true if the code was free, false if another ride holds it.
func (s *OTPStore) Reserve(ctx context.Context, otp, rideID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, otpKeyPrefix+otp, rideID, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release frees otp if rideID still holds it.
func (s *OTPStore) Release(ctx context.Context, otp, rideID string) error {
	return releaseScript.Run(ctx, s.client, []string{otpKeyPrefix + otp}, rideID).Err()
}
