package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input   *s3.PutObjectInput
	expires time.Duration
	err     error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + *params.Key, Method: "PUT"}, nil
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("ARC")
	require.NoError(t, err)
	assert.Equal(t, KindARC, k)
	assert.Equal(t, "arcFile", k.Field())

	assert.Equal(t, "visaFile", KindVisa.Field())
	assert.Equal(t, "certificateFile", KindCertificate.Field())

	_, err = ParseKind("passport")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestS3Uploader_Presign(t *testing.T) {
	fake := &fakePresigner{}
	u := NewS3UploaderWithPresigner(fake, "profiles-bucket", 10*time.Minute)
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return now }

	owner := uuid.New()
	up, err := u.Presign(context.Background(), Request{
		OwnerID:     owner,
		SessionID:   uuid.New(),
		Kind:        KindVisa,
		FileName:    "Visa Scan.PDF",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.ObjectKey, "profiles/"+owner.String()+"/visa/"))
	assert.True(t, strings.HasSuffix(up.ObjectKey, ".pdf"))
	assert.Equal(t, "https://bucket.example/"+up.ObjectKey, up.URL)
	assert.Equal(t, now.Add(10*time.Minute), up.ExpiresAt)

	assert.Equal(t, "profiles-bucket", *fake.input.Bucket)
	assert.Equal(t, "application/pdf", *fake.input.ContentType)
	assert.Equal(t, 10*time.Minute, fake.expires)
}

func TestS3Uploader_Rejects(t *testing.T) {
	u := NewS3UploaderWithPresigner(&fakePresigner{}, "b", 0)
	assert.Equal(t, 15*time.Minute, u.expires)

	_, err := u.Presign(context.Background(), Request{Kind: KindARC, ContentType: "text/html"})
	assert.ErrorIs(t, err, ErrUnsupportedContent)

	_, err = u.Presign(context.Background(), Request{Kind: "selfie", ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestS3Uploader_PresignFailure(t *testing.T) {
	cause := errors.New("signing failed")
	u := NewS3UploaderWithPresigner(&fakePresigner{err: cause}, "b", time.Minute)

	_, err := u.Presign(context.Background(), Request{Kind: KindARC, ContentType: "image/png"})
	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, KindARC, upErr.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestNewS3Uploader_ConfigErrors(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Region: "ap-northeast-2"})
	assert.ErrorContains(t, err, "bucket")

	_, err = NewS3Uploader(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "region")

	_, err = NewS3Uploader(context.Background(), S3Config{Bucket: "b", Region: "ap-northeast-2", Endpoint: "http://localhost:9000"})
	assert.ErrorContains(t, err, "access key")
}

func TestNewS3Uploader_CustomEndpoint(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Config{
		Bucket:    "b",
		Region:    "ap-northeast-2",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Expires:   time.Minute,
	})
	require.NoError(t, err)

	up, err := u.Presign(context.Background(), Request{OwnerID: uuid.New(), Kind: KindCertificate, FileName: "c.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URL, "http://localhost:9000/b/profiles/"))
}
