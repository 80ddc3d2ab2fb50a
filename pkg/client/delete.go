package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type DeleteOptions struct {
	// Confirm asks the user. Deletion only proceeds when it returns true.
	Confirm      func(*Post) bool
	ImagesBucket string
	// OnDeleted runs after the record is gone.
	OnDeleted    func(postID string)
	Logger       Logger
}

// StoragePath recovers the object path from a public URL of bucket.
func StoragePath(publicURL, bucket string) (string, bool) {
	marker := "/object/public/" + bucket + "/"
	i := strings.Index(publicURL, marker)
	if i < 0 {
		return "", false
	}
	p := publicURL[i+len(marker):]
	if j := strings.IndexAny(p, "?#"); j >= 0 {
		p = p[:j]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return p, p != ""
}

// DeletePost removes one of the user's posts. Image removal is best effort;
// only a failed record delete is reported.
func DeletePost(ctx context.Context, backend Backend, userID string, post *Post, opts DeleteOptions) error {
	if userID == "" {
		return ErrLoginRequired
	}
	if post.OwnerID() != userID {
		return ErrNotOwner
	}
	if opts.Confirm == nil || !opts.Confirm(post) {
		return ErrCancelled
	}
	log := defaultLogger(opts.Logger)

	bucket := opts.ImagesBucket
	if bucket == "" {
		bucket = "images"
	}
	var paths []string
	for _, u := range post.Images() {
		if p, ok := StoragePath(u, bucket); ok {
			paths = append(paths, p)
		}
	}
	if len(paths) > 0 {
		if err := backend.Storage.Remove(ctx, bucket, paths); err != nil {
			log.Warn("[DELETE] Leaving %d image(s) of post %s behind: %v", len(paths), post.ID, err)
		}
	}

	if err := backend.Records.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if opts.OnDeleted != nil {
		opts.OnDeleted(post.ID)
	}
	return nil
}
