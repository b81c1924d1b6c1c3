package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"gollama/gollama/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}

	bucket := cfg.MinIOBucket
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// UploadAvatar stores a profile picture under profile_pics/ and returns the
// object key. The key is random so re-uploads never collide.
func (m *MinIOClient) UploadAvatar(ctx context.Context, userID int, ext string, body io.Reader, size int64, contentType string) (string, error) {
	key := path.Join("profile_pics", fmt.Sprintf("%d-%s%s", userID, uuid.New().String(), ext))
	_, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MinIOClient) AvatarURL(key string) string {
	return fmt.Sprintf("/%s/%s", m.bucket, key)
}
