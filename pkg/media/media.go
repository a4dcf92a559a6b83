package media

import (
	"context"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// uploadAPI and deleteAPI are the slices of the AWS SDK the store uses,
// split out so tests can substitute fakes.
type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type deleteAPI interface {
	DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
}

// Store uploads media files to S3 and deletes the objects of replaced or
// removed media. Encoding and delivery stay with the media host.
type Store struct {
	uploader uploadAPI
	objects  deleteAPI
	bucket   string
}

func NewStore(region, bucket string) *Store {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))
	return &Store{
		uploader: s3manager.NewUploader(sess),
		objects:  s3.New(sess),
		bucket:   bucket,
	}
}

// Upload stores the file under a fresh uuid prefix and returns its public
// URL. The prefix keeps concurrent uploads of identically named files
// from clobbering each other.
func (s *Store) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	key := uuid.New().String() + "/" + path.Base(filepath.ToSlash(filename))
	contentType := mime.TypeByExtension(filepath.Ext(filename))

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Delete removes the object behind a URL Upload returned. Unknown URLs
// are ignored so stale references never block the calling handler.
func (s *Store) Delete(ctx context.Context, fileURL string) error {
	key := s.keyFromURL(fileURL)
	if key == "" {
		return nil
	}
	_, err := s.objects.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// keyFromURL recovers the object key from both virtual-hosted and
// path-style S3 URLs. URLs pointing anywhere but this store's bucket
// yield "".
func (s *Store) keyFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	key := strings.TrimPrefix(u.Path, "/")
	switch {
	case strings.HasPrefix(u.Host, s.bucket+".s3"):
		return key
	case strings.HasPrefix(u.Host, "s3.") || strings.HasPrefix(u.Host, "s3-"):
		if rest, ok := strings.CutPrefix(key, s.bucket+"/"); ok {
			return rest
		}
	}
	return ""
}
