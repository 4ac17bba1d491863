package services

import (
	ctx "context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinioService stores achievement badge images and quiz cover images. Like
// redis, it degrades gracefully: without configuration the API runs with
// empty asset URLs.
type MinioService struct {
	context.DefaultService
	client *minio.Client

	endpoint  string
	accessKey string
	secretKey string
	bucket    string
	useSSL    bool
	publicURL string
}

const MINIO_SVC = "minio_svc"

func (svc MinioService) Id() string {
	return MINIO_SVC
}

func (svc *MinioService) Configure(c *context.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucket = os.Getenv("MINIO_BUCKET")
	if svc.bucket == "" {
		svc.bucket = "quiz-assets"
	}

	svc.publicURL = os.Getenv("MINIO_PUBLIC_URL")
	if svc.publicURL == "" && svc.endpoint != "" {
		scheme := "http"
		if svc.useSSL {
			scheme = "https"
		}
		svc.publicURL = fmt.Sprintf("%s://%s", scheme, svc.endpoint)
	}

	return svc.DefaultService.Configure(c)
}

func (svc *MinioService) Start() error {
	if svc.endpoint == "" {
		log.Warn("MINIO_ENDPOINT not set, object storage disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to initialize object storage, continuing without it")
		return nil
	}

	c, cancel := ctx.WithTimeout(ctx.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(c, svc.bucket)
	if err != nil {
		log.WithError(err).Warn("Object storage unreachable, continuing without it")
		return nil
	}
	if !exists {
		if err := client.MakeBucket(c, svc.bucket, minio.MakeBucketOptions{}); err != nil {
			log.WithError(err).Warn("Failed to create asset bucket, continuing without it")
			return nil
		}
	}

	svc.client = client
	log.Println("Connected to object storage")
	return nil
}

func (svc *MinioService) Available() bool {
	return svc.client != nil
}

func (svc *MinioService) UploadBadge(code string, reader io.Reader, size int64, contentType string) (string, error) {
	return svc.upload(badgeObjectName(code), reader, size, contentType)
}

func (svc *MinioService) UploadQuizCover(quizID string, reader io.Reader, size int64, contentType string) (string, error) {
	return svc.upload(fmt.Sprintf("covers/%s.png", quizID), reader, size, contentType)
}

func (svc *MinioService) upload(objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if svc.client == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	c, cancel := ctx.WithTimeout(ctx.Background(), 30*time.Second)
	defer cancel()

	_, err := svc.client.PutObject(c, svc.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return svc.objectURL(objectName), nil
}

// BadgeURL returns the public URL for a badge asset, empty when storage is
// not configured. The asset may not exist yet; badges are uploaded out of
// band by admins.
func (svc *MinioService) BadgeURL(code string) string {
	if svc.client == nil {
		return ""
	}
	return svc.objectURL(badgeObjectName(code))
}

func (svc *MinioService) objectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", svc.publicURL, svc.bucket, objectName)
}

func badgeObjectName(code string) string {
	return fmt.Sprintf("badges/%s.png", code)
}
