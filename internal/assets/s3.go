package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API - часть клиента S3, которой пользуется хранилище
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string // для minio/localstack
	KeyPrefix     string
	PublicBaseURL string
}

// S3Store хранит изображения в бакете S3
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
	policy  Policy
}

func NewS3Store(ctx context.Context, opts S3Options, policy Policy) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("assets.NewS3Store: bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("assets.NewS3Store: failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, opts, policy), nil
}

func NewS3StoreWithClient(client S3API, opts S3Options, policy Policy) *S3Store {
	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		if opts.Endpoint != "" {
			baseURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}
	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  opts.KeyPrefix,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
	}
}

func (s *S3Store) Save(ctx context.Context, upload Upload) (string, error) {
	const op = "assets.S3Store.Save"

	r, contentType, err := s.policy.prepare(upload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// S3 требует длину тела, поэтому файл читается целиком (размер ограничен политикой)
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read upload: %w", op, err)
	}
	if s.policy.MaxBytes > 0 && int64(len(body)) > s.policy.MaxBytes {
		return "", fmt.Errorf("%s: %w", op, ErrTooLarge)
	}

	key := s.prefix + newName(upload.Filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to put object: %w", op, err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete удаляет объект. S3 не считает удаление несуществующего ключа ошибкой.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || key == "" || !strings.HasPrefix(key, s.prefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("assets.S3Store.Delete: %w", err)
	}
	return nil
}
