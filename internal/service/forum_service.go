package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/events"
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
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Abort a like/unlike transaction that has nothing to write.
var (
	errAlreadyLiked = errors.New("already liked")
	errNotLiked     = errors.New("not liked")
)

type PostInput struct {
	Title    string `json:"title" validate:"max=200"`
	Content  string `json:"content" validate:"required,max=10000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// PostView is a post as seen by one member.
type PostView struct {
	domain.ForumPost
	LikedByMe bool `json:"likedByMe"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type ForumService interface {
	ListPosts(ctx context.Context, viewerID primitive.ObjectID, page repository.PageRequest) (*repository.Page[PostView], error)
	GetPost(ctx context.Context, viewerID, postID primitive.ObjectID) (*PostView, error)
	CreatePost(ctx context.Context, actor Actor, input PostInput) (*domain.ForumPost, error)
	UpdatePost(ctx context.Context, actor Actor, postID primitive.ObjectID, input PostInput) (*domain.ForumPost, error)
	// DeletePost removes the post with its comments and likes.
	DeletePost(ctx context.Context, actor Actor, postID primitive.ObjectID) error

	ListComments(ctx context.Context, postID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.ForumComment], error)
	AddComment(ctx context.Context, actor Actor, postID primitive.ObjectID, input CommentInput) (*domain.ForumComment, error)
	DeleteComment(ctx context.Context, actor Actor, commentID primitive.ObjectID) error

	// Like and Unlike are idempotent.
	Like(ctx context.Context, userID, postID primitive.ObjectID) (*LikeResult, error)
	Unlike(ctx context.Context, userID, postID primitive.ObjectID) (*LikeResult, error)
}

type forumService struct {
	postRepo    repository.ForumPostRepository
	commentRepo repository.ForumCommentRepository
	likeRepo    repository.ForumLikeRepository
	userRepo    repository.UserRepository
	tx          repository.Transactor
	publisher   events.EventPublisher
}

func NewForumService(
	postRepo repository.ForumPostRepository,
	commentRepo repository.ForumCommentRepository,
	likeRepo repository.ForumLikeRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	publisher events.EventPublisher,
) ForumService {
	return &forumService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		tx:          tx,
		publisher:   publisher,
	}
}

// --- Posts ---

func (s *forumService) ListPosts(ctx context.Context, viewerID primitive.ObjectID, page repository.PageRequest) (*repository.Page[PostView], error) {
	posts, err := s.postRepo.List(ctx, page)
	if err != nil {
		return nil, listError(err)
	}

	ids := make([]primitive.ObjectID, len(posts.Items))
	for i := range posts.Items {
		ids[i] = posts.Items[i].ID
	}
	liked, err := s.likeRepo.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, len(posts.Items))
	for i, p := range posts.Items {
		views[i] = PostView{ForumPost: p, LikedByMe: liked[p.ID]}
	}
	return &repository.Page[PostView]{Items: views, NextCursor: posts.NextCursor}, nil
}

func (s *forumService) GetPost(ctx context.Context, viewerID, postID primitive.ObjectID) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	liked, err := s.likeRepo.LikedPostIDs(ctx, viewerID, []primitive.ObjectID{postID})
	if err != nil {
		return nil, err
	}
	return &PostView{ForumPost: *post, LikedByMe: liked[postID]}, nil
}

func (s *forumService) CreatePost(ctx context.Context, actor Actor, input PostInput) (*domain.ForumPost, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	post := &domain.ForumPost{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      strings.TrimSpace(input.Title),
		Content:    strings.TrimSpace(input.Content),
		ImageURL:   input.ImageURL,
	}
	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	return s.getPost(ctx, id)
}

func (s *forumService) UpdatePost(ctx context.Context, actor Actor, postID primitive.ObjectID, input PostInput) (*domain.ForumPost, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(post.AuthorID) {
		return nil, ErrPermissionDenied
	}
	post.Title = strings.TrimSpace(input.Title)
	post.Content = strings.TrimSpace(input.Content)
	post.ImageURL = input.ImageURL
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return s.getPost(ctx, postID)
}

func (s *forumService) DeletePost(ctx context.Context, actor Actor, postID primitive.ObjectID) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if !actor.canModify(post.AuthorID) {
		return ErrPermissionDenied
	}
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.commentRepo.DeleteByPost(txCtx, postID); err != nil {
			return err
		}
		if err := s.likeRepo.DeleteByPost(txCtx, postID); err != nil {
			return err
		}
		return notFound(s.postRepo.Delete(txCtx, postID), ErrPostNotFound)
	})
}

func (s *forumService) getPost(ctx context.Context, id primitive.ObjectID) (*domain.ForumPost, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return post, nil
}

// --- Comments ---

func (s *forumService) ListComments(ctx context.Context, postID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.ForumComment], error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}
	result, err := s.commentRepo.ListByPost(ctx, postID, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *forumService) AddComment(ctx context.Context, actor Actor, postID primitive.ObjectID, input CommentInput) (*domain.ForumComment, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	comment := &domain.ForumComment{
		PostID:     postID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    strings.TrimSpace(input.Content),
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.postRepo.GetByID(txCtx, postID); err != nil {
			return notFound(err, ErrPostNotFound)
		}
		id, err := s.commentRepo.Create(txCtx, comment)
		if err != nil {
			return err
		}
		comment.ID = id
		return s.postRepo.IncrementComments(txCtx, postID, 1)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *forumService) DeleteComment(ctx context.Context, actor Actor, commentID primitive.ObjectID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return notFound(err, ErrCommentNotFound)
	}
	if !actor.canModify(comment.AuthorID) {
		return ErrPermissionDenied
	}
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.commentRepo.Delete(txCtx, commentID); err != nil {
			return notFound(err, ErrCommentNotFound)
		}
		err := s.postRepo.IncrementComments(txCtx, comment.PostID, -1)
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) {
			// The post is gone or its counter already reads zero.
			return nil
		}
		return err
	})
}

// --- Likes ---

func (s *forumService) Like(ctx context.Context, userID, postID primitive.ObjectID) (*LikeResult, error) {
	var post *domain.ForumPost
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		post, err = s.postRepo.GetByID(txCtx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		liked, err := s.likeRepo.LikedPostIDs(txCtx, userID, []primitive.ObjectID{postID})
		if err != nil {
			return err
		}
		if liked[postID] {
			return errAlreadyLiked
		}
		if err := s.likeRepo.Create(txCtx, &domain.ForumLike{PostID: postID, UserID: userID}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errAlreadyLiked
			}
			return err
		}
		if err := s.postRepo.IncrementLikes(txCtx, postID, 1); err != nil {
			return err
		}
		post.LikeCount++
		return nil
	})
	if errors.Is(err, errAlreadyLiked) {
		return s.likeState(ctx, postID, true)
	}
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPostLiked(events.PostLikedEvent{
		PostID:    postID.Hex(),
		AuthorID:  post.AuthorID.Hex(),
		UserID:    userID.Hex(),
		LikeCount: post.LikeCount,
		LikedAt:   time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Str("post_id", postID.Hex()).Msg("Failed to publish forum.post.liked")
	}
	return &LikeResult{Liked: true, LikeCount: post.LikeCount}, nil
}

func (s *forumService) Unlike(ctx context.Context, userID, postID primitive.ObjectID) (*LikeResult, error) {
	var post *domain.ForumPost
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		post, err = s.postRepo.GetByID(txCtx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		if err := s.likeRepo.Delete(txCtx, postID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errNotLiked
			}
			return err
		}
		err = s.postRepo.IncrementLikes(txCtx, postID, -1)
		if errors.Is(err, repository.ErrConflict) {
			// Counter already at zero; the like record was the source of truth.
			return nil
		}
		if err != nil {
			return err
		}
		post.LikeCount--
		return nil
	})
	if errors.Is(err, errNotLiked) {
		return s.likeState(ctx, postID, false)
	}
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: false, LikeCount: post.LikeCount}, nil
}

// likeState answers a no-op like/unlike with the current counter.
func (s *forumService) likeState(ctx context.Context, postID primitive.ObjectID, liked bool) (*LikeResult, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: post.LikeCount}, nil
}
