package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidUploadPurpose = apperror.Validation("invalid_upload_purpose", "Unknown upload purpose")
	ErrInvalidObjectKey     = apperror.Validation("invalid_object_key", "Unknown file reference")
	ErrStorageUnavailable   = apperror.New(apperror.KindConflict, "storage_unavailable", "File storage is not configured")
)

const DefaultPresignExpiry = 15 * time.Minute

// Upload purposes double as the first segment of every object key
const (
	UploadPurposeDesign          = "design"
	UploadPurposePaymentProof    = "payment_proof"
	UploadPurposeProductionPhoto = "production_photo"
	UploadPurposeSitePhoto       = "site_photo"
)

type UploadUsecase interface {
	PresignUpload(ctx context.Context, actor entity.Actor, req *dto.PresignUploadRequest) (*dto.PresignResponse, error)
	PresignDownload(ctx context.Context, actor entity.Actor, req *dto.PresignDownloadRequest) (*dto.PresignResponse, error)
}

type uploadUsecase struct {
	log     *logrus.Logger
	storage ObjectStorage
	now     func() time.Time
	expiry  time.Duration
}

// NewUploadUsecase accepts a nil storage; every call then fails with ErrStorageUnavailable
func NewUploadUsecase(log *logrus.Logger, storage ObjectStorage, expiry time.Duration) UploadUsecase {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &uploadUsecase{
		log:     log,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
		expiry:  expiry,
	}
}

func (u *uploadUsecase) PresignUpload(ctx context.Context, actor entity.Actor, req *dto.PresignUploadRequest) (*dto.PresignResponse, error) {
	if u.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if !canUpload(actor, req.Purpose) {
		return nil, ErrForbidden
	}

	now := u.now()
	key := ObjectKey(req.Purpose, req.Filename, now, uuid.New())

	url, err := u.storage.PresignPut(ctx, key, req.ContentType, u.expiry)
	if err != nil {
		u.log.Errorf("Failed to presign upload of %s: %+v", key, err)
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &dto.PresignResponse{
		Key:       key,
		URL:       url,
		Method:    "PUT",
		ExpiresAt: now.Add(u.expiry),
	}, nil
}

func (u *uploadUsecase) PresignDownload(ctx context.Context, actor entity.Actor, req *dto.PresignDownloadRequest) (*dto.PresignResponse, error) {
	if u.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if !isValidKey(req.Key) {
		return nil, ErrInvalidObjectKey
	}

	url, err := u.storage.PresignGet(ctx, req.Key, u.expiry)
	if err != nil {
		u.log.Errorf("Failed to presign download of %s: %+v", req.Key, err)
		return nil, fmt.Errorf("presign download: %w", err)
	}

	return &dto.PresignResponse{
		Key:       req.Key,
		URL:       url,
		Method:    "GET",
		ExpiresAt: u.now().Add(u.expiry),
	}, nil
}

// ObjectKey builds <purpose>/<yyyy>/<mm>/<id><ext>; the original filename only contributes its extension
func ObjectKey(purpose, filename string, now time.Time, id uuid.UUID) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 || ext == "." {
		ext = ""
	}
	return fmt.Sprintf("%s/%04d/%02d/%s%s", purpose, now.Year(), int(now.Month()), id, ext)
}

// isValidKey accepts only keys shaped like the ones ObjectKey hands out
func isValidKey(key string) bool {
	purpose, rest, ok := strings.Cut(key, "/")
	return ok && rest != "" && isKnownPurpose(purpose) && !strings.Contains(key, "..")
}

func isKnownPurpose(purpose string) bool {
	switch purpose {
	case UploadPurposeDesign, UploadPurposePaymentProof, UploadPurposeProductionPhoto, UploadPurposeSitePhoto:
		return true
	}
	return false
}

func canUpload(actor entity.Actor, purpose string) bool {
	switch purpose {
	case UploadPurposeDesign:
		return actor.Is(entity.RoleEngineer, entity.RoleAdmin)
	case UploadPurposePaymentProof:
		return actor.Is(entity.RoleCustomer) || actor.IsBackOffice()
	case UploadPurposeProductionPhoto:
		return actor.Is(entity.RoleEngineer, entity.RoleStaff, entity.RoleAdmin)
	case UploadPurposeSitePhoto:
		return actor.Is(entity.RoleStaff) || actor.IsBackOffice()
	}
	return false
}
