package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"akiya-share/pkg/logger"
	"akiya-share/pkg/queue"
	"akiya-share/pkg/s3"
)

type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string, upsert bool) (string, error)
	Remove(ctx context.Context, bucket string, keys []string) ([]string, error)
	Get(ctx context.Context, bucket, key string) (*s3.Object, error)
}

type CleanupQueue interface {
	PublishCleanupTask(ctx context.Context, task queue.CleanupTask) error
}

type RemoveResult struct {
	Removed []string `json:"removed"`
	Failed  []string `json:"failed"`
}

type StorageUseCase interface {
	Upload(ctx context.Context, userID, bucket, objectPath string, body io.ReadSeeker, contentType string, upsert bool) (string, error)
	Remove(ctx context.Context, userID, bucket string, paths []string) (*RemoveResult, error)
	Open(ctx context.Context, bucket, objectPath string) (*s3.Object, error)
	// RetryCleanup is the queue consumer for removals that failed earlier.
	RetryCleanup(ctx context.Context, task queue.CleanupTask) error
}

type storageUseCase struct {
	store   ObjectStore
	cleanup CleanupQueue
	buckets map[string]bool
	logger  *logger.Logger
}

func NewStorageUseCase(store ObjectStore, cleanup CleanupQueue, buckets []string, logger *logger.Logger) StorageUseCase {
	allowed := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		allowed[b] = true
	}
	return &storageUseCase{store: store, cleanup: cleanup, buckets: allowed, logger: logger}
}

// cleanPath normalizes p and rejects anything that escapes the bucket.
func cleanPath(p string) (string, bool) {
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", false
	}
	cleaned := path.Clean(p)
	if cleaned != p || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return cleaned, true
}

func (uc *storageUseCase) ownedPath(userID, bucket, p string) (string, error) {
	if !uc.buckets[bucket] {
		return "", ErrUnknownBucket
	}
	cleaned, ok := cleanPath(p)
	if !ok || !strings.HasPrefix(cleaned, userID+"/") {
		return "", ErrForeignPath
	}
	return cleaned, nil
}

func (uc *storageUseCase) Upload(ctx context.Context, userID, bucket, objectPath string, body io.ReadSeeker, contentType string, upsert bool) (string, error) {
	key, err := uc.ownedPath(userID, bucket, objectPath)
	if err != nil {
		return "", err
	}

	url, err := uc.store.Upload(ctx, bucket, key, body, contentType, upsert)
	if err != nil {
		if errors.Is(err, s3.ErrObjectExists) {
			return "", ErrObjectExists
		}
		uc.logger.Error("Failed to upload %s/%s: %v", bucket, key, err)
		return "", fmt.Errorf("failed to upload file")
	}
	return url, nil
}

// Remove deletes the caller's objects. Paths the store refuses are
// reported back and queued for another attempt.
func (uc *storageUseCase) Remove(ctx context.Context, userID, bucket string, paths []string) (*RemoveResult, error) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key, err := uc.ownedPath(userID, bucket, p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	failed, err := uc.store.Remove(ctx, bucket, keys)
	if err != nil {
		uc.logger.Warn("[CLEANUP] Removal from %s failed: %v", bucket, err)
	}

	result := &RemoveResult{Removed: []string{}, Failed: []string{}}
	failedSet := make(map[string]bool, len(failed))
	for _, f := range failed {
		failedSet[f] = true
		result.Failed = append(result.Failed, f)
	}
	for _, k := range keys {
		if !failedSet[k] {
			result.Removed = append(result.Removed, k)
		}
	}

	if len(failed) > 0 && uc.cleanup != nil {
		if err := uc.cleanup.PublishCleanupTask(ctx, queue.CleanupTask{Bucket: bucket, Paths: failed}); err != nil {
			uc.logger.Error("[CLEANUP] Could not queue %d orphaned object(s): %v", len(failed), err)
		}
	}
	return result, nil
}

func (uc *storageUseCase) Open(ctx context.Context, bucket, objectPath string) (*s3.Object, error) {
	if !uc.buckets[bucket] {
		return nil, ErrUnknownBucket
	}
	key, ok := cleanPath(objectPath)
	if !ok {
		return nil, ErrObjectNotFound
	}

	obj, err := uc.store.Get(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return obj, nil
}

func (uc *storageUseCase) RetryCleanup(ctx context.Context, task queue.CleanupTask) error {
	failed, err := uc.store.Remove(ctx, task.Bucket, task.Paths)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d object(s) still not removed", len(failed))
	}
	uc.logger.Info("[CLEANUP] Removed %d orphaned object(s) from %s", len(task.Paths), task.Bucket)
	return nil
}
