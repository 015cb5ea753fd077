package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Errors shared by every service ---
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidCursor    = errors.New("invalid pagination cursor")
	ErrInvalidID        = errors.New("invalid id")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) IsStaff() bool {
	return a.Role == domain.RoleAdmin || a.Role == domain.RoleTrainer
}

// canModify reports whether the actor may edit content authored by ownerID.
func (a Actor) canModify(ownerID primitive.ObjectID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

// listError converts a repository list failure into a service error.
func listError(err error) error {
	if errors.Is(err, repository.ErrInvalidCursor) {
		return ErrInvalidCursor
	}
	return err
}

// notFound maps repository.ErrNotFound to target, passing other errors through.
func notFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
