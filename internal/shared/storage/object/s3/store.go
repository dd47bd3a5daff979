// Package s3 keeps exports in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-builder/internal/shared/storage/object"
)

// maxExportBytes bounds one export held in memory before upload.
const maxExportBytes = 20 << 20

// api is the part of the S3 client the store uses.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client   api
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates an S3-backed store from the default AWS credential chain.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID), nil
}

func newStore(client api, bucket, prefix, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

var _ object.ObjectStore = (*Store)(nil)

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put uploads an export. Exports are small, so the body is buffered to give
// S3 a content length and a seekable body for retries.
func (s *Store) Put(ctx context.Context, owner, fileName, contentType string, r io.Reader) (object.Object, error) {
	key, err := object.ExportKey(owner, fileName)
	if err != nil {
		return object.Object{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, maxExportBytes+1))
	if err != nil {
		return object.Object{}, fmt.Errorf("read export: %w", err)
	}
	if len(data) > maxExportBytes {
		return object.Object{}, fmt.Errorf("export exceeds %d bytes", maxExportBytes)
	}
	if contentType == "" {
		contentType = object.ContentTypeFor(key)
	}
	name := object.FileName(key)

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(s.objectKey(key)),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": name})),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return object.Object{}, fmt.Errorf("s3 put bucket=%s key=%s: %w", s.bucket, *input.Key, err)
	}
	return object.Object{Key: key, FileName: name, Size: int64(len(data)), ContentType: contentType}, nil
}

// Open streams a stored export.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, object.Object, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return nil, object.Object{}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(clean)),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, object.Object{}, fmt.Errorf("%w: %s", object.ErrNotFound, clean)
		}
		return nil, object.Object{}, fmt.Errorf("s3 get bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	meta := object.Object{
		Key:         clean,
		FileName:    object.FileName(clean),
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength == nil {
		meta.Size = -1
	}
	if meta.ContentType == "" {
		meta.ContentType = object.ContentTypeFor(clean)
	}
	return out.Body, meta, nil
}

// Delete removes a stored export. S3 does not report missing keys on delete.
func (s *Store) Delete(ctx context.Context, key string) error {
	clean, err := object.CleanKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(clean)),
	}); err != nil {
		return fmt.Errorf("s3 delete bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	return nil
}
