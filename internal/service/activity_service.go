package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/validation"
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrActivityNotFound = errors.New("activity not found")

type ActivityInput struct {
	Name        string              `json:"name" validate:"required,max=100"`
	Description string              `json:"description" validate:"max=2000"`
	Type        domain.ActivityType `json:"type" validate:"required,activitytype"`
	CreditValue int                 `json:"creditValue" validate:"gte=0,lte=100"`
	ImageURL    string              `json:"imageUrl" validate:"omitempty,url"`
}

type ActivityService interface {
	CreateActivity(ctx context.Context, input ActivityInput) (*domain.Activity, error)
	GetActivity(ctx context.Context, id primitive.ObjectID) (*domain.Activity, error)
	ListActivities(ctx context.Context, activityType domain.ActivityType, page repository.PageRequest) (*repository.Page[domain.Activity], error)
	// UpdateActivity propagates a rename to the sessions of the activity.
	UpdateActivity(ctx context.Context, id primitive.ObjectID, input ActivityInput) (*domain.Activity, error)
	// DeleteActivity does not touch sessions that still reference it.
	DeleteActivity(ctx context.Context, id primitive.ObjectID) error
}

type activityService struct {
	activityRepo repository.ActivityRepository
	sessionRepo  repository.SessionRepository
	tx           repository.Transactor
}

func NewActivityService(activityRepo repository.ActivityRepository, sessionRepo repository.SessionRepository, tx repository.Transactor) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		sessionRepo:  sessionRepo,
		tx:           tx,
	}
}

func (s *activityService) CreateActivity(ctx context.Context, input ActivityInput) (*domain.Activity, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	activity := &domain.Activity{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Type:        input.Type,
		CreditValue: input.CreditValue,
		ImageURL:    input.ImageURL,
	}
	id, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	return s.GetActivity(ctx, id)
}

func (s *activityService) GetActivity(ctx context.Context, id primitive.ObjectID) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrActivityNotFound)
	}
	return activity, nil
}

func (s *activityService) ListActivities(ctx context.Context, activityType domain.ActivityType, page repository.PageRequest) (*repository.Page[domain.Activity], error) {
	if err := validation.Var("type", string(activityType), "activitytype"); err != nil {
		return nil, err
	}
	result, err := s.activityRepo.List(ctx, repository.ActivityFilter{Type: activityType}, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *activityService) UpdateActivity(ctx context.Context, id primitive.ObjectID, input ActivityInput) (*domain.Activity, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	activity := &domain.Activity{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Type:        input.Type,
		CreditValue: input.CreditValue,
		ImageURL:    input.ImageURL,
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.activityRepo.GetByID(txCtx, id)
		if err != nil {
			return notFound(err, ErrActivityNotFound)
		}
		if err := s.activityRepo.Update(txCtx, activity); err != nil {
			return notFound(err, ErrActivityNotFound)
		}
		if current.Name != activity.Name {
			return s.sessionRepo.RenameActivity(txCtx, id, activity.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetActivity(ctx, id)
}

func (s *activityService) DeleteActivity(ctx context.Context, id primitive.ObjectID) error {
	orphans, err := s.sessionRepo.CountByActivity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.activityRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrActivityNotFound)
	}
	if orphans > 0 {
		// Joining one of these sessions now fails with ErrActivityNotFound.
		log.Warn().Str("activity_id", id.Hex()).Int64("sessions", orphans).Msg("Deleted activity still referenced by sessions")
	}
	return nil
}
