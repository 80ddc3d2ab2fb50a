package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"akiya-share/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
)

type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type Client struct {
	s3Client  s3iface.S3API
	publicURL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := NewWithAPI(s3.New(sess), cfg.StoragePublicURL)
	for _, bucket := range []string{cfg.ImagesBucket, cfg.AvatarsBucket} {
		client.ensureBucket(bucket)
	}
	return client, nil
}

func NewWithAPI(api s3iface.S3API, publicURL string) *Client {
	return &Client{s3Client: api, publicURL: strings.TrimRight(publicURL, "/")}
}

// ensureBucket creates the bucket on MinIO when it is missing.
func (c *Client) ensureBucket(bucket string) {
	_, err := c.s3Client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return
	}
	// Ignore error if bucket already exists
	_, _ = c.s3Client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(bucket)})
}

// Upload stores body under bucket/key. Without upsert an existing object
// is left alone and ErrObjectExists is returned.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string, upsert bool) (string, error) {
	if !upsert {
		_, err := c.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return "", ErrObjectExists
		}
		if !isNotFound(err) {
			return "", fmt.Errorf("failed to check object: %w", err)
		}
	}

	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return c.PublicURL(bucket, key), nil
}

func (c *Client) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.publicURL, bucket, strings.TrimLeft(key, "/"))
}

// Remove deletes keys and returns the ones the store refused.
func (c *Client) Remove(ctx context.Context, bucket string, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	objects := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := c.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return keys, fmt.Errorf("failed to delete files from S3: %w", err)
	}

	var failed []string
	for _, e := range out.Errors {
		failed = append(failed, aws.StringValue(e.Key))
	}
	return failed, nil
}

func (c *Client) Get(ctx context.Context, bucket, key string) (*Object, error) {
	out, err := c.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}

	return &Object{
		Body:          out.Body,
		ContentType:   aws.StringValue(out.ContentType),
		ContentLength: aws.Int64Value(out.ContentLength),
	}, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
