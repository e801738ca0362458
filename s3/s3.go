// Package s3 reads DataCite documents from and writes exports to
// S3-compatible object storage, addressed as s3://bucket/key.
package s3

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

const scheme = "s3"

// ObjectStorage is a S3-compatible storage interface.
type ObjectStorage interface {
	Fetch(ctx context.Context, URI string) ([]byte, error)
	Upload(ctx context.Context, r io.Reader, URI, contentType string) error
}

type objectStorageImpl struct {
	client     s3iface.S3API
	downloader *s3manager.Downloader
	uploader   *s3manager.Uploader
}

var _ ObjectStorage = (*objectStorageImpl)(nil)

func New(sess *session.Session) *objectStorageImpl {
	return newWithClient(s3.New(sess))
}

func newWithClient(client s3iface.S3API) *objectStorageImpl {
	return &objectStorageImpl{
		client:     client,
		downloader: s3manager.NewDownloaderWithClient(client),
		uploader:   s3manager.NewUploaderWithClient(client),
	}
}

// IsObjectURI reports whether location uses the s3:// scheme.
func IsObjectURI(location string) bool {
	return strings.HasPrefix(strings.ToLower(location), scheme+"://")
}

// Fetch returns the contents of a remote object.
func (s *objectStorageImpl) Fetch(ctx context.Context, URI string) ([]byte, error) {
	bucket, key, err := getBucketAndKey(URI)
	if err != nil {
		return nil, err
	}
	buf := aws.NewWriteAtBuffer([]byte{})
	_, err = s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error downloading %s", URI)
	}
	return buf.Bytes(), nil
}

// Upload stores the contents of r as a remote object.
func (s *objectStorageImpl) Upload(ctx context.Context, r io.Reader, URI, contentType string) error {
	bucket, key, err := getBucketAndKey(URI)
	if err != nil {
		return err
	}
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	return errors.Wrapf(err, "error uploading %s", URI)
}

func getBucketAndKey(URI string) (bucket string, key string, err error) {
	u, err := url.Parse(URI)
	if err != nil {
		return "", "", errors.Wrap(err, "invalid object URI")
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return "", "", errors.Errorf("invalid object URI %q: scheme must be %s", URI, scheme)
	}
	bucket, key = u.Hostname(), strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.Errorf("invalid object URI %q: bucket and key are required", URI)
	}
	return bucket, key, nil
}
