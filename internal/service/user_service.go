package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/validation"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCannotDeleteSelf    = errors.New("administrators cannot delete their own account")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAccessStatusBusy    = errors.New("access status keeps changing, try again")
)

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"required,role"`
	Credits  int         `json:"credits" validate:"gte=0"`
}

// UpdateUserInput replaces every admin-editable field.
type UpdateUserInput struct {
	Name         string      `json:"name" validate:"required,max=100"`
	Role         domain.Role `json:"role" validate:"required,role"`
	Credits      int         `json:"credits" validate:"gte=0"`
	Height       float64     `json:"height" validate:"gte=0,lte=300"`
	Weight       float64     `json:"weight" validate:"gte=0,lte=500"`
	Birthday     *time.Time  `json:"birthday"`
	Sex          domain.Sex  `json:"sex" validate:"sex"`
	Observations string      `json:"observations" validate:"max=2000"`
}

// ProfileInput is what members fill in during onboarding.
type ProfileInput struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Height   float64    `json:"height" validate:"gte=0,lte=300"`
	Weight   float64    `json:"weight" validate:"gte=0,lte=500"`
	Birthday *time.Time `json:"birthday"`
	Sex      domain.Sex `json:"sex" validate:"sex"`
}

type ListUsersInput struct {
	Role         domain.Role         `form:"role" json:"role" validate:"role"`
	AccessStatus domain.AccessStatus `form:"accessStatus" json:"accessStatus" validate:"accessstatus"`
	Search       string              `form:"q" json:"q" validate:"max=100"`
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListUsers(ctx context.Context, input ListUsersInput, page repository.PageRequest) (*repository.Page[domain.User], error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor Actor, id primitive.ObjectID) error

	SetAccessStatus(ctx context.Context, id primitive.ObjectID, status domain.AccessStatus) (*domain.User, error)
	ToggleAccessStatus(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// AdjustCredits adds delta (negative removes). The balance never drops below zero.
	AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int) (*domain.User, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, input ProfileInput) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	user, err := createAccount(ctx, s.userRepo, &domain.User{
		Name:    strings.TrimSpace(input.Name),
		Email:   input.Email,
		Role:    input.Role,
		Credits: input.Credits,
	}, input.Password)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("User created by admin")
	return s.GetUser(ctx, user.ID)
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, input ListUsersInput, page repository.PageRequest) (*repository.Page[domain.User], error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	result, err := s.userRepo.List(ctx, repository.UserFilter{
		Role:         input.Role,
		AccessStatus: input.AccessStatus,
		Search:       strings.TrimSpace(input.Search),
	}, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *userService) UpdateUser(ctx context.Context, id primitive.ObjectID, input UpdateUserInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		Credits:      input.Credits,
		Height:       input.Height,
		Weight:       input.Weight,
		Birthday:     input.Birthday,
		Sex:          input.Sex,
		Observations: input.Observations,
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	log.Info().Str("user_id", id.Hex()).Str("by", actor.ID.Hex()).Msg("User deleted")
	return nil
}

func (s *userService) SetAccessStatus(ctx context.Context, id primitive.ObjectID, status domain.AccessStatus) (*domain.User, error) {
	if err := validation.Var("accessStatus", string(status), "required,accessstatus"); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetAccessStatus(ctx, id, status); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.GetUser(ctx, id)
}

// toggleAttempts bounds the retries when another writer changes the status
// between our read and our conditional write.
const toggleAttempts = 3

func (s *userService) ToggleAccessStatus(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		user, err := s.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		from := user.AccessStatus
		if from == "" {
			from = domain.AccessGreen
		}
		err = s.userRepo.SwapAccessStatus(ctx, id, from, from.Toggled())
		if err == nil {
			return s.GetUser(ctx, id)
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, notFound(err, ErrUserNotFound)
		}
		log.Debug().Str("user_id", id.Hex()).Int("attempt", attempt+1).Msg("Access status changed concurrently, retrying toggle")
	}
	return nil, ErrAccessStatusBusy
}

func (s *userService) AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int) (*domain.User, error) {
	if delta == 0 {
		return nil, &validation.Error{Fields: map[string]string{"delta": "must not be zero"}}
	}

	var err error
	if delta > 0 {
		err = s.userRepo.AddCredits(ctx, id, delta)
	} else {
		err = s.userRepo.DeductCredits(ctx, id, -delta)
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInsufficientCredits
		}
		return nil, notFound(err, ErrUserNotFound)
	}
	log.Info().Str("user_id", id.Hex()).Int("delta", delta).Msg("Credits adjusted")
	return s.GetUser(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input ProfileInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:       id,
		Name:     strings.TrimSpace(input.Name),
		Height:   input.Height,
		Weight:   input.Weight,
		Birthday: input.Birthday,
		Sex:      input.Sex,
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.GetUser(ctx, id)
}
