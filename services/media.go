package services

import (
	"mime/multipart"

	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
)

// MediaService accepts multipart uploads for badge and quiz cover images and
// hands them to object storage.
type MediaService struct {
	context.DefaultService

	postgres *PostgresService
	minio    *MinioService
}

const MEDIA_SVC = "media_svc"

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minio = svc.Service(MINIO_SVC).(*MinioService)
	return nil
}

func (svc *MediaService) UploadBadge(code string, file *multipart.FileHeader) (string, error) {
	if !svc.minio.Available() {
		return "", shared.NewInternalError(nil, "Object storage not configured")
	}

	src, err := file.Open()
	if err != nil {
		return "", shared.NewBadRequestError(err, "Failed to read uploaded file")
	}
	defer src.Close()

	url, err := svc.minio.UploadBadge(code, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", shared.NewInternalError(err, "Failed to store badge image")
	}
	return url, nil
}

func (svc *MediaService) UploadQuizCover(quizID string, file *multipart.FileHeader) (string, error) {
	if !svc.minio.Available() {
		return "", shared.NewInternalError(nil, "Object storage not configured")
	}

	if _, err := svc.postgres.GetQuiz(quizID); err != nil {
		return "", shared.NewNotFoundError(err, "Quiz not found")
	}

	src, err := file.Open()
	if err != nil {
		return "", shared.NewBadRequestError(err, "Failed to read uploaded file")
	}
	defer src.Close()

	url, err := svc.minio.UploadQuizCover(quizID, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", shared.NewInternalError(err, "Failed to store cover image")
	}

	if err := svc.postgres.UpdateQuizCover(quizID, url); err != nil {
		return "", shared.NewInternalError(err, "Failed to save cover URL")
	}
	return url, nil
}
