package repository

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConflict means a conditional write matched nothing: a guard
	// (capacity, balance, version) no longer held when the write ran.
	ErrConflict = RepositoryError("write condition not met")
	// ErrInvalidCursor is returned for a pagination cursor we did not issue.
	ErrInvalidCursor = RepositoryError("invalid pagination cursor")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn inside a multi-document transaction. Repository calls
// made with the ctx passed to fn take part in it. If fn returns an error the
// transaction is aborted and the error is returned unchanged.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// --- Pagination ---

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest asks for at most Limit items following Cursor (empty = first page).
type PageRequest struct {
	Limit  int
	Cursor string
}

// Normalized clamps Limit into [1, MaxPageLimit].
func (p PageRequest) Normalized() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Page is one slice of a list query. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// --- Filters ---

type UserFilter struct {
	Role         domain.Role
	AccessStatus domain.AccessStatus
	Search       string // Case-insensitive match on name or email
}

type ActivityFilter struct {
	Type domain.ActivityType
}

type SessionFilter struct {
	ActivityID *primitive.ObjectID
	From       *time.Time // startTime >= From
	To         *time.Time // startTime < To
}

type TutorialFilter struct {
	Section domain.Section
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs skips ids that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	List(ctx context.Context, filter UserFilter, page PageRequest) (*Page[domain.User], error)
	// Update writes the admin-editable fields (name, role, credits, profile, observations).
	Update(ctx context.Context, user *domain.User) error
	// UpdateProfile writes the member-editable onboarding fields only.
	UpdateProfile(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetAccessStatus touches accessStatus and nothing else.
	SetAccessStatus(ctx context.Context, id primitive.ObjectID, status domain.AccessStatus) error
	// SwapAccessStatus sets to only while the stored status is still from;
	// otherwise ErrConflict.
	SwapAccessStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AccessStatus) error
	// DeductCredits fails with ErrConflict when the balance is below amount.
	DeductCredits(ctx context.Context, id primitive.ObjectID, amount int) error
	AddCredits(ctx context.Context, id primitive.ObjectID, amount int) error
	TouchLastActive(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// ActivityRepository defines the interface for interacting with activity data.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Activity, error)
	List(ctx context.Context, filter ActivityFilter, page PageRequest) (*Page[domain.Activity], error)
	Update(ctx context.Context, activity *domain.Activity) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	List(ctx context.Context, filter SessionFilter, page PageRequest) (*Page[domain.Session], error)
	// Update writes schedule/metadata fields. It fails with ErrConflict when the
	// new capacity is below the current bookedCount.
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddParticipant appends userID only if absent and a spot is left; otherwise ErrConflict.
	AddParticipant(ctx context.Context, sessionID, userID primitive.ObjectID) error
	CountByActivity(ctx context.Context, activityID primitive.ObjectID) (int64, error)
	RenameActivity(ctx context.Context, activityID primitive.ObjectID, name string) error
}

// TutorialRepository defines the interface for interacting with tutorial data.
// Every write matches on expectedVersion and increments it; a stale version
// yields ErrConflict.
type TutorialRepository interface {
	Create(ctx context.Context, tutorial *domain.Tutorial) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Tutorial, error)
	List(ctx context.Context, filter TutorialFilter, page PageRequest) (*Page[domain.Tutorial], error)
	Update(ctx context.Context, tutorial *domain.Tutorial, expectedVersion int64) error
	ReplaceExercises(ctx context.Context, id primitive.ObjectID, expectedVersion int64, exercises []domain.Exercise) error
	ReplaceDietPlans(ctx context.Context, id primitive.ObjectID, expectedVersion int64, plans []domain.DietPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CheckInRepository defines the interface for interacting with check-in records.
type CheckInRepository interface {
	// Create fails with ErrDuplicate if the user already checked in on that date.
	Create(ctx context.Context, checkIn *domain.CheckIn) (primitive.ObjectID, error)
	ExistsForDate(ctx context.Context, userID primitive.ObjectID, date string) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page PageRequest) (*Page[domain.CheckIn], error)
}

// ForumPostRepository defines the interface for interacting with forum posts.
type ForumPostRepository interface {
	Create(ctx context.Context, post *domain.ForumPost) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ForumPost, error)
	List(ctx context.Context, page PageRequest) (*Page[domain.ForumPost], error)
	Update(ctx context.Context, post *domain.ForumPost) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int) error
	IncrementComments(ctx context.Context, id primitive.ObjectID, delta int) error
}

// ForumCommentRepository defines the interface for interacting with forum comments.
type ForumCommentRepository interface {
	Create(ctx context.Context, comment *domain.ForumComment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ForumComment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID, page PageRequest) (*Page[domain.ForumComment], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

// ForumLikeRepository defines the interface for interacting with like records.
type ForumLikeRepository interface {
	// Create fails with ErrDuplicate when the user already likes the post.
	Create(ctx context.Context, like *domain.ForumLike) error
	// Delete fails with ErrNotFound when there is nothing to remove.
	Delete(ctx context.Context, postID, userID primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
	// LikedPostIDs returns the subset of postIDs liked by userID.
	LikedPostIDs(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	ListByFolder(ctx context.Context, folder string, page PageRequest) (*Page[domain.Upload], error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TokenRepository tracks signed-out JWT ids.
type TokenRepository interface {
	Revoke(ctx context.Context, token *domain.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
