package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/archdrive/internal/logging"
)

// s3API is the subset of *s3.Client the store calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config holds what is needed to reach the bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Timeout bounds one put and the wait for response headers of every
	// other call. Downloads are not cut off while the body streams. Zero
	// means no client-side limit.
	Timeout time.Duration
}

// S3Store is a Store backed by an S3-compatible bucket. It holds one
// immutable client and is safe for concurrent use.
type S3Store struct {
	client     s3API
	bucket     string
	putTimeout time.Duration
	logger     logging.Logger
}

// NewS3Store builds the client once. R2 needs path-style addressing and
// rejects the SDK's default flexible checksums, so both are adjusted; SDK
// level retries are disabled because uploads are retried by the caller and
// other operations are not retried at all.
func NewS3Store(ctx context.Context, cfg S3Config, logger logging.Logger) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	// LoadDefaultConfig applies AWS_CA_BUNDLE through WithTransportOptions,
	// which only a BuildableClient offers.
	httpClient := awshttp.NewBuildableClient()
	if cfg.Timeout > 0 {
		httpClient = httpClient.WithTransportOptions(func(tr *http.Transport) {
			tr.ResponseHeaderTimeout = cfg.Timeout
		})
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(region),
		config.WithHTTPClient(httpClient),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(strings.TrimSpace(cfg.Endpoint))
		o.UsePathStyle = true
		o.RetryMaxAttempts = 1
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		putTimeout: cfg.Timeout,
		logger:     logger.With("module", "s3_store", "bucket", cfg.Bucket),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, in PutInput) error {
	body := in.Body
	if body == nil {
		body = bytes.NewReader(nil)
	}

	putCtx := ctx
	if s.putTimeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeout(ctx, s.putTimeout)
		defer cancel()
	}

	start := time.Now()
	_, err := s.client.PutObject(putCtx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(in.Key),
		Body:          body,
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(in.ContentLength),
	})
	if err != nil {
		s.logger.Debug(ctx, "put_object failed", "key", in.Key, "error", err)
		return translate(ctx, err, "put", in.Key)
	}

	s.logger.Debug(ctx, "put_object ok", "key", in.Key, "size", in.ContentLength, "elapsed", time.Since(start))
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, translate(ctx, err, "get", key)
	}

	info := ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}
	return out.Body, info, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, translate(ctx, err, "head", key)
	}

	return ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// List follows continuation tokens until the bucket reports the listing
// complete.
func (s *S3Store) List(ctx context.Context, in ListInput) (Listing, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if in.Prefix != "" {
		input.Prefix = aws.String(in.Prefix)
	}
	if in.Delimiter != "" {
		input.Delimiter = aws.String(in.Delimiter)
	}

	var listing Listing
	pages := 0
	p := s3.NewListObjectsV2Paginator(s.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return Listing{}, translate(ctx, err, "list", in.Prefix)
		}
		pages++
		for _, obj := range page.Contents {
			listing.Objects = append(listing.Objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		for _, cp := range page.CommonPrefixes {
			listing.CommonPrefixes = append(listing.CommonPrefixes, aws.ToString(cp.Prefix))
		}
	}

	s.logger.Debug(ctx, "list_objects_v2 ok", "prefix", in.Prefix, "delimiter", in.Delimiter,
		"pages", pages, "objects", len(listing.Objects), "prefixes", len(listing.CommonPrefixes))
	return listing, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return translate(ctx, err, "delete", key)
	}
	return nil
}
