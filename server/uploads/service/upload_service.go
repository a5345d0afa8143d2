package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	commonlog "reno_server/server/common/log"
	projectdomain "reno_server/server/projects/domain"
	projectsvc "reno_server/server/projects/service"
	"reno_server/server/uploads/domain"
)

const GrantTTL = 15 * time.Minute

var (
	ErrInvalidCategory = projectsvc.ErrInvalidCategory
	ErrProjectNotFound = projectsvc.ErrNotFound
	ErrForeignImageURL = errors.New("imageUrl does not belong to this storage")
	ErrGrantNotFound   = errors.New("no outstanding upload grant for this object")
	ErrObjectMissing   = errors.New("object has not been uploaded")
)

type ValidationError = projectsvc.ValidationError

// objectStore is the slice of *minio.Client the orchestrator needs.
type objectStore interface {
	PresignedPutObject(ctx context.Context, bucket, objectKey string, expires time.Duration) (*url.URL, error)
	StatObject(ctx context.Context, bucket, objectKey string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type projectRecorder interface {
	ProjectExists(ctx context.Context, ownerID, projectID string) error
	RecordPhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID, imageURL string) error
}

type grantTracker interface {
	Record(ctx context.Context, grant domain.Grant) error
	Consume(ctx context.Context, ownerID, objectKey string) (domain.Grant, bool, error)
}

type Config struct {
	Bucket        string
	PublicBaseURL string
	// RequireGrant rejects commits whose object key has no outstanding
	// grant. Off by default: historically the commit step trusted the
	// client's report.
	RequireGrant bool
	// VerifyObject stats the object before committing its reference.
	VerifyObject bool
}

type UploadService struct {
	store    objectStore
	projects projectRecorder
	grants   grantTracker
	cfg      Config
}

func NewUploadService(store objectStore, projects projectRecorder, grants grantTracker, cfg Config) *UploadService {
	cfg.PublicBaseURL = strings.TrimSuffix(cfg.PublicBaseURL, "/") + "/"
	return &UploadService{store: store, projects: projects, grants: grants, cfg: cfg}
}

var contentTypeExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// CreateGrant derives a write-once object key and presigns a PUT for it.
// The grant authorizes writing that one key; it does not verify that a
// write ever happens.
func (s *UploadService) CreateGrant(ctx context.Context, ownerID, projectID, category, spaceID, shotID, contentType string) (domain.Grant, error) {
	if !projectdomain.ValidCategory(category) {
		return domain.Grant{}, ErrInvalidCategory
	}
	if spaceID == "" || shotID == "" {
		return domain.Grant{}, &ValidationError{Message: "spaceId and shotId are required"}
	}
	if err := s.projects.ProjectExists(ctx, ownerID, projectID); err != nil {
		return domain.Grant{}, err
	}

	ext, ok := contentTypeExt[contentType]
	if !ok {
		ext = "jpg"
	}
	objectKey := fmt.Sprintf("projects/%s/%s/%s/%s/%s_%d.%s",
		ownerID, projectID, category, spaceID, shotID, time.Now().UnixMilli(), ext)

	uploadURL, err := s.store.PresignedPutObject(ctx, s.cfg.Bucket, objectKey, GrantTTL)
	if err != nil {
		return domain.Grant{}, fmt.Errorf("presign upload for %s: %w", objectKey, err)
	}

	grant := domain.Grant{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ProjectID: projectID,
		Category:  category,
		SpaceID:   spaceID,
		ShotID:    shotID,
		ObjectKey: objectKey,
		UploadURL: uploadURL.String(),
		ImageURL:  s.cfg.PublicBaseURL + objectKey,
		ExpiresAt: time.Now().Add(GrantTTL),
	}
	if err := s.grants.Record(ctx, grant); err != nil {
		return domain.Grant{}, fmt.Errorf("record grant %s: %w", grant.ID, err)
	}
	return grant, nil
}

// Commit records the uploaded object's URL into the project metadata.
// It runs strictly after the transfer; a failed commit leaves at worst an
// orphaned object, never a dangling reference.
func (s *UploadService) Commit(ctx context.Context, ownerID, projectID string, req domain.CommitRequest) (string, error) {
	if !projectdomain.ValidCategory(req.Category) {
		return "", ErrInvalidCategory
	}
	if req.ImageURL == "" || req.SpaceID == "" || req.ShotID == "" {
		return "", &ValidationError{Message: "imageUrl, type, spaceId and shotId are required"}
	}
	if !strings.HasPrefix(req.ImageURL, s.cfg.PublicBaseURL) {
		return "", ErrForeignImageURL
	}
	objectKey := strings.TrimPrefix(req.ImageURL, s.cfg.PublicBaseURL)

	_, found, err := s.grants.Consume(ctx, ownerID, objectKey)
	if err != nil {
		return "", fmt.Errorf("consume grant for %s: %w", objectKey, err)
	}
	if !found {
		if s.cfg.RequireGrant {
			return "", ErrGrantNotFound
		}
		commonlog.Debugf("commit without outstanding grant for %s", objectKey)
	}

	if s.cfg.VerifyObject {
		if _, err := s.store.StatObject(ctx, s.cfg.Bucket, objectKey, minio.StatObjectOptions{}); err != nil {
			return "", ErrObjectMissing
		}
	}

	if err := s.projects.RecordPhotoReference(ctx, ownerID, projectID, req.Category, req.SpaceID, req.ShotID, req.ImageURL); err != nil {
		return "", err
	}
	return req.ImageURL, nil
}
