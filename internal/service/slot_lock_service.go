package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Errors
// =============================================================================

// ErrSlotLocked is returned when another request holds the reservation.
var ErrSlotLocked = errors.New("slot is being booked by another request")

// reserveSlotScript takes the reservation only when nobody holds it.
// Returns 1 when acquired, 0 when the key already exists.
var reserveSlotScript = redis.NewScript(`
	if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
		return 1
	end
	return 0
`)

// releaseSlotScript deletes the reservation only if the caller still owns it,
// so an expired holder cannot release a newer reservation.
var releaseSlotScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// =============================================================================
// Constants
// =============================================================================

const (
	RedisSlotLockKeyPrefix = "slot:lock:"

	// Floor for the reservation TTL; the DB insert must finish within it.
	minSlotLockTTL = time.Second
)

// =============================================================================
// Types
// =============================================================================

// SlotLockService serializes booking attempts for the same virtual slot
// across API instances. The partial unique index on appointments stays the
// final guard; the reservation keeps losers from reaching the database.
type SlotLockService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

// Reservation identifies a held slot. Token proves ownership on release.
type Reservation struct {
	Key   string
	Token string
}

func NewSlotLockService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotLockService {
	if ttl < minSlotLockTTL {
		ttl = minSlotLockTTL
	}
	return &SlotLockService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// SlotLockKey is the Redis key for one doctor, date and start time.
func SlotLockKey(doctorID uuid.UUID, date time.Time, start entity.TimeOfDay) string {
	return RedisSlotLockKeyPrefix + entity.SlotID(doctorID, date, start)
}

// =============================================================================
// Operations
// =============================================================================

// Reserve holds the slot for the configured TTL.
func (s *SlotLockService) Reserve(ctx context.Context, doctorID uuid.UUID, date time.Time, start entity.TimeOfDay) (*Reservation, error) {
	key := SlotLockKey(doctorID, date, start)
	token := uuid.NewString()

	acquired, err := reserveSlotScript.Run(ctx, s.redisClient, []string{key}, token, s.ttl.Milliseconds()).Int()
	if err != nil {
		s.log.Warnf("Failed Lua script ReserveSlot for %s: %+v", key, err)
		return nil, fmt.Errorf("lua reserve_slot for %s: %w", key, err)
	}
	if acquired == 0 {
		return nil, ErrSlotLocked
	}

	s.log.Debugf("Reserved slot %s for %v", key, s.ttl)
	return &Reservation{Key: key, Token: token}, nil
}

// Release gives the slot back. Releasing an expired or foreign reservation
// is a no-op.
func (s *SlotLockService) Release(ctx context.Context, r *Reservation) error {
	if r == nil {
		return nil
	}

	deleted, err := releaseSlotScript.Run(ctx, s.redisClient, []string{r.Key}, r.Token).Int()
	if err != nil {
		s.log.Warnf("Failed Lua script ReleaseSlot for %s: %+v", r.Key, err)
		return fmt.Errorf("lua release_slot for %s: %w", r.Key, err)
	}

	if deleted == 0 {
		s.log.Debugf("Reservation %s already expired or taken over", r.Key)
	}
	return nil
}
