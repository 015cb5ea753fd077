package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/storage"
	"alcyxob/gym-app/internal/validation"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrFileTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrObjectMissing  = errors.New("no object was uploaded under this key")
	ErrStorageFailure = errors.New("failed to store file")
)

// UploadInput describes a file streamed through the API.
type UploadInput struct {
	Folder      string    `json:"folder" validate:"required,folder,max=100"`
	FileName    string    `json:"fileName" validate:"required,max=255"`
	ContentType string    `json:"contentType" validate:"required,mediatype"`
	Size        int64     `json:"size" validate:"gt=0"`
	Body        io.Reader `json:"-" validate:"required"`
}

type PresignInput struct {
	Folder      string `json:"folder" validate:"required,folder,max=100"`
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,mediatype"`
	Size        int64  `json:"size" validate:"gt=0"`
}

type PresignResult struct {
	ObjectKey string    `json:"objectKey"`
	UploadURL string    `json:"uploadUrl"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConfirmInput registers an object the client uploaded with a presigned URL.
type ConfirmInput struct {
	ObjectKey string `json:"objectKey" validate:"required,max=400"`
	FileName  string `json:"fileName" validate:"required,max=255"`
}

type MediaService interface {
	Upload(ctx context.Context, actor Actor, input UploadInput) (*domain.Upload, error)
	PresignUpload(ctx context.Context, input PresignInput) (*PresignResult, error)
	ConfirmUpload(ctx context.Context, actor Actor, input ConfirmInput) (*domain.Upload, error)
	GetUpload(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	ListUploads(ctx context.Context, folder string, page repository.PageRequest) (*repository.Page[domain.Upload], error)
	// DeleteUpload removes the stored object and its metadata.
	DeleteUpload(ctx context.Context, id primitive.ObjectID) error
}

type mediaService struct {
	uploadRepo     repository.UploadRepository
	fileStorage    storage.FileStorage
	maxUploadBytes int64
	presignExpiry  time.Duration
}

func NewMediaService(uploadRepo repository.UploadRepository, fileStorage storage.FileStorage, maxUploadBytes int64) MediaService {
	return &mediaService{
		uploadRepo:     uploadRepo,
		fileStorage:    fileStorage,
		maxUploadBytes: maxUploadBytes,
		presignExpiry:  storage.DefaultPresignedURLExpiry,
	}
}

func (s *mediaService) Upload(ctx context.Context, actor Actor, input UploadInput) (*domain.Upload, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	key := storage.NewObjectKey(input.Folder, input.FileName)
	if err := s.fileStorage.PutObject(ctx, key, input.ContentType, input.Body, input.Size); err != nil {
		return nil, ErrStorageFailure
	}

	upload, err := s.record(ctx, actor, input.Folder, key, input.FileName, input.ContentType, input.Size)
	if err != nil {
		// Do not leave an object nobody references.
		if delErr := s.fileStorage.DeleteObject(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove object after metadata error")
		}
		return nil, err
	}
	return upload, nil
}

func (s *mediaService) PresignUpload(ctx context.Context, input PresignInput) (*PresignResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	key := storage.NewObjectKey(input.Folder, input.FileName)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, input.ContentType, s.presignExpiry)
	if err != nil {
		return nil, ErrStorageFailure
	}
	return &PresignResult{
		ObjectKey: key,
		UploadURL: uploadURL,
		URL:       s.fileStorage.ObjectURL(key),
		ExpiresAt: time.Now().Add(s.presignExpiry).UTC(),
	}, nil
}

func (s *mediaService) ConfirmUpload(ctx context.Context, actor Actor, input ConfirmInput) (*domain.Upload, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	slash := strings.LastIndex(input.ObjectKey, "/")
	if slash <= 0 {
		return nil, &validation.Error{Fields: map[string]string{"objectKey": "must be a key returned by presign"}}
	}
	folder := input.ObjectKey[:slash]
	if err := validation.Var("objectKey", folder, "folder"); err != nil {
		return nil, err
	}

	info, err := s.fileStorage.StatObject(ctx, input.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrObjectMissing
		}
		return nil, ErrStorageFailure
	}
	if info.Size > s.maxUploadBytes {
		if delErr := s.fileStorage.DeleteObject(ctx, input.ObjectKey); delErr != nil {
			log.Warn().Err(delErr).Str("key", input.ObjectKey).Msg("Failed to remove oversized object")
		}
		return nil, ErrFileTooLarge
	}
	if err := validation.Var("contentType", info.ContentType, "required,mediatype"); err != nil {
		return nil, err
	}

	return s.record(ctx, actor, folder, input.ObjectKey, input.FileName, info.ContentType, info.Size)
}

func (s *mediaService) record(ctx context.Context, actor Actor, folder, key, fileName, contentType string, size int64) (*domain.Upload, error) {
	upload := &domain.Upload{
		Folder:      folder,
		ObjectKey:   key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		URL:         s.fileStorage.ObjectURL(key),
		UploaderID:  actor.ID,
	}
	id, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &validation.Error{Fields: map[string]string{"objectKey": "is already registered"}}
		}
		return nil, err
	}
	upload.ID = id
	log.Info().Str("key", key).Int64("size", size).Str("by", actor.ID.Hex()).Msg("Upload recorded")
	return upload, nil
}

func (s *mediaService) GetUpload(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	upload, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUploadNotFound)
	}
	return upload, nil
}

func (s *mediaService) ListUploads(ctx context.Context, folder string, page repository.PageRequest) (*repository.Page[domain.Upload], error) {
	if folder != "" {
		if err := validation.Var("folder", folder, "folder"); err != nil {
			return nil, err
		}
	}
	result, err := s.uploadRepo.ListByFolder(ctx, folder, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *mediaService) DeleteUpload(ctx context.Context, id primitive.ObjectID) error {
	upload, err := s.GetUpload(ctx, id)
	if err != nil {
		return err
	}
	if err := s.fileStorage.DeleteObject(ctx, upload.ObjectKey); err != nil {
		return ErrStorageFailure
	}
	return notFound(s.uploadRepo.Delete(ctx, id), ErrUploadNotFound)
}
