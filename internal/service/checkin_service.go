package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/events"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCheckInCode = errors.New("invalid code")
	ErrAlreadyCheckedIn   = errors.New("already checked in today")
)

// checkInCost is the number of credits one gym visit costs.
const checkInCost = 1

type CheckInService interface {
	// CheckIn validates a scanned QR code and charges one visit for today.
	CheckIn(ctx context.Context, userID primitive.ObjectID, code string) (*domain.CheckIn, error)
	History(ctx context.Context, userID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.CheckIn], error)
}

type checkInService struct {
	checkInRepo repository.CheckInRepository
	userRepo    repository.UserRepository
	tx          repository.Transactor
	publisher   events.EventPublisher
	codePrefix  string
	location    *time.Location
	now         func() time.Time
}

// NewCheckInService creates the check-in service. The calendar day of a visit
// is taken in location.
func NewCheckInService(
	checkInRepo repository.CheckInRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	publisher events.EventPublisher,
	codePrefix string,
	location *time.Location,
) CheckInService {
	if location == nil {
		location = time.UTC
	}
	return &checkInService{
		checkInRepo: checkInRepo,
		userRepo:    userRepo,
		tx:          tx,
		publisher:   publisher,
		codePrefix:  codePrefix,
		location:    location,
		now:         time.Now,
	}
}

func (s *checkInService) CheckIn(ctx context.Context, userID primitive.ObjectID, code string) (*domain.CheckIn, error) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, s.codePrefix) {
		metrics.ObserveCheckIn(metrics.ResultRejected)
		return nil, ErrInvalidCheckInCode
	}

	now := s.now()
	checkIn := &domain.CheckIn{
		UserID: userID,
		Date:   now.In(s.location).Format(domain.CheckInDateLayout),
		Code:   code,
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if !user.HasAccess() {
			return ErrAccessSuspended
		}
		if user.Credits < checkInCost {
			return ErrInsufficientCredits
		}

		exists, err := s.checkInRepo.ExistsForDate(txCtx, userID, checkIn.Date)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyCheckedIn
		}

		checkIn.CreditsAfter = user.Credits - checkInCost
		id, err := s.checkInRepo.Create(txCtx, checkIn)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyCheckedIn
			}
			return err
		}
		checkIn.ID = id

		if err := s.userRepo.DeductCredits(txCtx, userID, checkInCost); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrInsufficientCredits
			}
			return notFound(err, ErrUserNotFound)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrInsufficientCredits),
			errors.Is(err, ErrAccessSuspended), errors.Is(err, ErrUserNotFound):
			metrics.ObserveCheckIn(metrics.ResultRejected)
		default:
			metrics.ObserveCheckIn(metrics.ResultError)
			log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Check-in failed")
		}
		return nil, err
	}

	metrics.ObserveCheckIn(metrics.ResultSuccess)
	log.Info().Str("user_id", userID.Hex()).Str("date", checkIn.Date).Int("credits_after", checkIn.CreditsAfter).Msg("Member checked in")

	if err := s.publisher.PublishCheckInRecorded(events.CheckInRecordedEvent{
		CheckInID:    checkIn.ID.Hex(),
		UserID:       userID.Hex(),
		Date:         checkIn.Date,
		CreditsAfter: checkIn.CreditsAfter,
		CheckedInAt:  now.UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("user_id", userID.Hex()).Msg("Failed to publish checkin.recorded")
	}
	return checkIn, nil
}

func (s *checkInService) History(ctx context.Context, userID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.CheckIn], error) {
	result, err := s.checkInRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}
