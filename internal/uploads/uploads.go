// Package uploads issues presigned S3 URLs for wizard attachments (residence
// card, visa document, education certificate).
package uploads

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Kind names an attachment slot in the form.
type Kind string

const (
	KindARC         Kind = "arc"
	KindVisa        Kind = "visa"
	KindCertificate Kind = "certificate"
)

var kindFields = map[Kind]string{
	KindARC:         "arcFile",
	KindVisa:        "visaFile",
	KindCertificate: "certificateFile",
}

// AllowedContentTypes lists the accepted attachment media types.
var AllowedContentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

var (
	ErrUnknownKind        = errors.New("unknown upload kind")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// ParseKind validates an upload kind from a URL segment.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if _, ok := kindFields[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Field is the form field that stores the object key of this kind.
func (k Kind) Field() string {
	return kindFields[k]
}

// Request describes the file the client is about to upload.
type Request struct {
	OwnerID     uuid.UUID
	SessionID   uuid.UUID
	Kind        Kind
	FileName    string
	ContentType string
}

// Upload is a presigned PUT target.
type Upload struct {
	ObjectKey string
	URL       string
	ExpiresAt time.Time
}

// Uploader issues presigned upload targets.
type Uploader interface {
	Presign(ctx context.Context, req Request) (Upload, error)
}

// Presigner is the part of *s3.PresignClient used here.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadError wraps a failure to presign an upload.
type UploadError struct {
	Kind  Kind
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to presign %s upload: %v", e.Kind, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// S3Config configures the S3 uploader.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Expires   time.Duration
}

// S3Uploader presigns PUT requests against a bucket.
type S3Uploader struct {
	presigner Presigner
	bucket    string
	expires   time.Duration
	now       func() time.Time
}

// NewS3Uploader builds an S3 client from cfg. A custom endpoint (MinIO,
// LocalStack) requires static credentials and path-style addressing.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3UploaderWithPresigner(s3.NewPresignClient(client), cfg.Bucket, cfg.Expires), nil
}

// NewS3UploaderWithPresigner wires an uploader to an existing presigner.
func NewS3UploaderWithPresigner(p Presigner, bucket string, expires time.Duration) *S3Uploader {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3Uploader{presigner: p, bucket: bucket, expires: expires, now: time.Now}
}

// Presign validates req and returns a presigned PUT URL.
func (u *S3Uploader) Presign(ctx context.Context, req Request) (Upload, error) {
	if _, ok := kindFields[req.Kind]; !ok {
		return Upload{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	if !slices.Contains(AllowedContentTypes, req.ContentType) {
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedContent, req.ContentType)
	}

	key := ObjectKey(req.OwnerID, req.Kind, req.FileName)
	presigned, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
		Metadata: map[string]string{
			"session-id": req.SessionID.String(),
		},
	}, func(opts *s3.PresignOptions) {
		opts.Expires = u.expires
	})
	if err != nil {
		return Upload{}, &UploadError{Kind: req.Kind, Cause: err}
	}

	return Upload{
		ObjectKey: key,
		URL:       presigned.URL,
		ExpiresAt: u.now().Add(u.expires),
	}, nil
}

// ObjectKey builds the storage key for an attachment.
// Format: profiles/{ownerId}/{kind}/{uuid}{ext}
func ObjectKey(ownerID uuid.UUID, kind Kind, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("profiles/%s/%s/%s%s", ownerID, kind, uuid.New(), ext)
}
