package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/events"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/validation"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFull         = errors.New("session full")
	ErrAlreadyJoined       = errors.New("already joined")
	ErrSessionStarted      = errors.New("session has already started")
	ErrAccessSuspended     = errors.New("access suspended")
	ErrCapacityBelowBooked = errors.New("capacity cannot be lower than the number of booked participants")
)

type SessionInput struct {
	ActivityID     string    `json:"activityId" validate:"required,mongodb"`
	Title          string    `json:"title" validate:"max=100"`
	Description    string    `json:"description" validate:"max=2000"`
	StartTime      time.Time `json:"startTime" validate:"required"`
	EndTime        time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Capacity       int       `json:"capacity" validate:"gte=1,lte=1000"`
	Location       string    `json:"location" validate:"max=100"`
	InstructorName string    `json:"instructorName" validate:"max=100"`
}

type ListSessionsInput struct {
	ActivityID string     `form:"activityId" validate:"omitempty,mongodb"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	// Upcoming hides sessions that already started; it overrides From.
	Upcoming bool `form:"upcoming"`
}

// JoinResult is what a member sees after booking.
type JoinResult struct {
	Session     *domain.Session `json:"session"`
	CreditsLeft int             `json:"creditsLeft"`
}

type SessionService interface {
	CreateSession(ctx context.Context, input SessionInput) (*domain.Session, error)
	GetSession(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	ListSessions(ctx context.Context, input ListSessionsInput, page repository.PageRequest) (*repository.Page[domain.Session], error)
	UpdateSession(ctx context.Context, id primitive.ObjectID, input SessionInput) (*domain.Session, error)
	DeleteSession(ctx context.Context, id primitive.ObjectID) error
	ListParticipants(ctx context.Context, id primitive.ObjectID) ([]domain.User, error)

	// JoinSession books a spot and pays the activity's credit value in one transaction.
	JoinSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*JoinResult, error)
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	tx           repository.Transactor
	publisher    events.EventPublisher
	now          func() time.Time
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	publisher events.EventPublisher,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		tx:           tx,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, input SessionInput) (*domain.Session, error) {
	session, err := s.buildSession(ctx, input)
	if err != nil {
		return nil, err
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, id)
}

// buildSession validates input and denormalizes the activity name.
func (s *sessionService) buildSession(ctx context.Context, input SessionInput) (*domain.Session, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	activityID, err := parseID(input.ActivityID)
	if err != nil {
		return nil, err
	}
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return nil, notFound(err, ErrActivityNotFound)
	}
	return &domain.Session{
		ActivityID:     activity.ID,
		ActivityName:   activity.Name,
		Title:          input.Title,
		Description:    input.Description,
		StartTime:      input.StartTime.UTC(),
		EndTime:        input.EndTime.UTC(),
		Capacity:       input.Capacity,
		Location:       input.Location,
		InstructorName: input.InstructorName,
	}, nil
}

func (s *sessionService) GetSession(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, input ListSessionsInput, page repository.PageRequest) (*repository.Page[domain.Session], error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	filter := repository.SessionFilter{From: input.From, To: input.To}
	if input.ActivityID != "" {
		id, err := parseID(input.ActivityID)
		if err != nil {
			return nil, err
		}
		filter.ActivityID = &id
	}
	if input.Upcoming {
		now := s.now().UTC()
		filter.From = &now
	}
	result, err := s.sessionRepo.List(ctx, filter, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, id primitive.ObjectID, input SessionInput) (*domain.Session, error) {
	session, err := s.buildSession(ctx, input)
	if err != nil {
		return nil, err
	}
	session.ID = id
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCapacityBelowBooked
		}
		return nil, notFound(err, ErrSessionNotFound)
	}
	return s.GetSession(ctx, id)
}

func (s *sessionService) DeleteSession(ctx context.Context, id primitive.ObjectID) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrSessionNotFound)
	}
	return nil
}

func (s *sessionService) ListParticipants(ctx context.Context, id primitive.ObjectID) ([]domain.User, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, session.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *sessionService) JoinSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*JoinResult, error) {
	var (
		result   *JoinResult
		activity *domain.Activity
	)
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		session, err := s.sessionRepo.GetByID(txCtx, sessionID)
		if err != nil {
			return notFound(err, ErrSessionNotFound)
		}
		if session.HasParticipant(userID) {
			return ErrAlreadyJoined
		}
		if !session.StartTime.After(s.now()) {
			return ErrSessionStarted
		}
		if session.IsFull() {
			return ErrSessionFull
		}

		activity, err = s.activityRepo.GetByID(txCtx, session.ActivityID)
		if err != nil {
			return notFound(err, ErrActivityNotFound)
		}

		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if !user.HasAccess() {
			return ErrAccessSuspended
		}
		if user.Credits < activity.CreditValue {
			return ErrInsufficientCredits
		}

		// Both writes re-check their guard server-side.
		if err := s.sessionRepo.AddParticipant(txCtx, sessionID, userID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSessionFull
			}
			return notFound(err, ErrSessionNotFound)
		}
		if activity.CreditValue > 0 {
			if err := s.userRepo.DeductCredits(txCtx, userID, activity.CreditValue); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return ErrInsufficientCredits
				}
				return notFound(err, ErrUserNotFound)
			}
		}

		session.ParticipantIDs = append(session.ParticipantIDs, userID)
		session.BookedCount++
		result = &JoinResult{Session: session, CreditsLeft: user.Credits - activity.CreditValue}
		return nil
	})
	if err != nil {
		metrics.ObserveSessionJoin(joinOutcome(err), 0)
		if joinOutcome(err) == metrics.ResultError {
			log.Error().Err(err).Str("session_id", sessionID.Hex()).Str("user_id", userID.Hex()).Msg("Session join failed")
		}
		return nil, err
	}

	metrics.ObserveSessionJoin(metrics.ResultSuccess, activity.CreditValue)
	log.Info().Str("session_id", sessionID.Hex()).Str("user_id", userID.Hex()).Int("credits", activity.CreditValue).Msg("Member joined session")

	if err := s.publisher.PublishSessionJoined(events.SessionJoinedEvent{
		SessionID:       sessionID.Hex(),
		ActivityID:      activity.ID.Hex(),
		UserID:          userID.Hex(),
		CreditsSpent:    activity.CreditValue,
		CreditsLeft:     result.CreditsLeft,
		SessionStartsAt: result.Session.StartTime,
		JoinedAt:        s.now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.Hex()).Msg("Failed to publish session.joined")
	}
	return result, nil
}

// joinOutcome labels a failed join for metrics.
func joinOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSessionFull),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrSessionStarted),
		errors.Is(err, ErrInsufficientCredits),
		errors.Is(err, ErrAccessSuspended),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrActivityNotFound),
		errors.Is(err, ErrUserNotFound):
		return metrics.ResultRejected
	}
	return metrics.ResultError
}
