package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxDeleteObjects is the S3 limit on keys per DeleteObjects request.
const maxDeleteObjects = 1000

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
}

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint, e.g. MinIO. Empty uses AWS.
	AccessKey string
	SecretKey string
	BaseURL   string // public URL prefix for object paths
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		cred := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(cred))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return NewS3StoreWithClient(client, opts.Bucket, baseURL), nil
}

func NewS3StoreWithClient(client S3API, bucket, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, baseURL: baseURL}
}

func (s *S3Store) Upload(ctx context.Context, data []byte, folder, ext string) (UploadResult, error) {
	key, err := newKey(folder, ext)
	if err != nil {
		return UploadResult{}, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(ext)),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return UploadResult{FileID: key, FilePath: s.baseURL + "/" + key}, nil
}

func (s *S3Store) Delete(ctx context.Context, fileID string) error {
	if err := checkKey(fileID); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", fileID, err)
	}
	return nil
}

// BulkDelete removes ids in batches of maxDeleteObjects. Every batch is
// attempted even when an earlier one fails.
func (s *S3Store) BulkDelete(ctx context.Context, fileIDs []string) error {
	var errs []error
	for start := 0; start < len(fileIDs); start += maxDeleteObjects {
		end := min(start+maxDeleteObjects, len(fileIDs))
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, id := range fileIDs[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(id)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete objects [%d:%d]: %w", start, end, err))
			continue
		}
		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("delete object %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
	}
	return errors.Join(errs...)
}
