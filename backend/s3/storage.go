package s3

import (
	"bytes"
	"context"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/vfile/backend"
)

func (sb *S3Backend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	// Reads that may create or truncate the object must not race with writers
	sb.mu.Lock()
	defer sb.mu.Unlock()

	key := objectKey(name)

	existing, exists, err := sb.get(ctx, key)
	if err != nil {
		return nil, err
	}

	content, persist, err := backend.PrepareRead(name, existing, exists, flag)
	if err != nil {
		return nil, err
	}

	if persist {
		if err := sb.put(ctx, key, content); err != nil {
			return nil, err
		}
	}

	return content, nil
}

func (sb *S3Backend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	key := objectKey(name)

	existing, exists, err := sb.get(ctx, key)
	if err != nil {
		return err
	}

	content, err := backend.PrepareWrite(name, existing, exists, data, flag)
	if err != nil {
		return err
	}

	return sb.put(ctx, key, content)
}

func (sb *S3Backend) get(ctx context.Context, key string) ([]byte, bool, error) {
	if _, err := sb.client.StatObject(ctx, sb.bucketName, key, minio.StatObjectOptions{}); err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, err
	}

	object, err := sb.client.GetObject(ctx, sb.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		return nil, false, err
	}

	return content, true, nil
}

func (sb *S3Backend) put(ctx context.Context, key string, content []byte) error {
	_, err := sb.client.PutObject(ctx, sb.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}
