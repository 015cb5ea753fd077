package storage

import (
	"alcyxob/gym-app/internal/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("/tutorials/exercises/", `C:\Users\me\Squat.MP4`)
	assert.True(t, strings.HasPrefix(key, "tutorials/exercises/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)

	other := NewObjectKey("tutorials/exercises", "Squat.mp4")
	assert.NotEqual(t, key, other)

	assert.False(t, strings.Contains(NewObjectKey("activities", "weird.ext with space"), " "))
	assert.Len(t, NewObjectKey("activities", "noext"), len("activities/")+36)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.gym.test",
		publicBaseURL(config.S3Config{PublicBaseURL: "https://cdn.gym.test", BucketName: "b"}))
	assert.Equal(t, "http://minio:9000/media",
		publicBaseURL(config.S3Config{Endpoint: "http://minio:9000/", BucketName: "media"}))
	assert.Equal(t, "https://media.s3.eu-west-3.amazonaws.com",
		publicBaseURL(config.S3Config{BucketName: "media", Region: "eu-west-3"}))
}

func TestS3Storage_ObjectURLAndPresign(t *testing.T) {
	st, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "media",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/media/activities/a.png", st.ObjectURL("activities/a.png"))

	// Presigning is a local computation; no server is contacted.
	url, err := st.GeneratePresignedUploadURL(context.Background(), "videos/v.mp4", "video/mp4", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/media/videos/v.mp4?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
