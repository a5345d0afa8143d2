package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"reno_server/server/projects/domain"
	"reno_server/server/projects/repository"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrInvalidCategory = errors.New("type must be 'before' or 'after'")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type projectStore interface {
	Create(ctx context.Context, p domain.Project) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Get(ctx context.Context, ownerID, projectID string) (domain.Project, error)
	Exists(ctx context.Context, ownerID, projectID string) error
	SetPhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID, url string, now time.Time) error
	DeletePhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID string, now time.Time) error
	SetStylingPhoto(ctx context.Context, ownerID, projectID, photoID string, record domain.StylingRecord, now time.Time) error
}

type CreateProjectRequest struct {
	ProjectName string `json:"projectName"`
	Location    string `json:"location"`
	Area        string `json:"area"`
	Rooms       string `json:"rooms"`
	Bathrooms   string `json:"bathrooms"`
}

type ProjectService struct {
	repo projectStore
}

func NewProjectService(repo projectStore) *ProjectService {
	return &ProjectService{repo: repo}
}

// CreateProject generates the id server-side and stamps createdAt and
// updatedAt with the same instant.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req CreateProjectRequest) (domain.Project, error) {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(req.ProjectName) == "" {
		missing = append(missing, "projectName")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return domain.Project{}, &ValidationError{Message: strings.Join(missing, " and ") + " are required"}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	p := domain.Project{
		OwnerID:     ownerID,
		ProjectID:   domain.NewProjectID(),
		ProjectName: req.ProjectName,
		Location:    req.Location,
		Area:        req.Area,
		Rooms:       req.Rooms,
		Bathrooms:   req.Bathrooms,
		Status:      domain.StatusPlanning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) GetProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	return s.repo.Get(ctx, ownerID, projectID)
}

func (s *ProjectService) ProjectExists(ctx context.Context, ownerID, projectID string) error {
	return s.repo.Exists(ctx, ownerID, projectID)
}

// RecordPhotoReference upserts the reference; committing the same
// reference twice leaves the map unchanged after the first commit.
func (s *ProjectService) RecordPhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID, imageURL string) error {
	if !domain.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if spaceID == "" || shotID == "" || imageURL == "" {
		return &ValidationError{Message: "imageUrl, spaceId and shotId are required"}
	}
	return s.repo.SetPhotoReference(ctx, ownerID, projectID, category, spaceID, shotID, imageURL, time.Now().UTC())
}

func (s *ProjectService) DeletePhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID string) error {
	if !domain.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if spaceID == "" || shotID == "" {
		return &ValidationError{Message: "spaceId and shotId are required"}
	}
	return s.repo.DeletePhotoReference(ctx, ownerID, projectID, category, spaceID, shotID, time.Now().UTC())
}

func (s *ProjectService) RecordStylingPhoto(ctx context.Context, ownerID, projectID, photoID string, record domain.StylingRecord) error {
	if photoID == "" {
		return &ValidationError{Message: "photoId is required"}
	}
	if record.Kind == "" {
		record.Kind = domain.StylingKindStyled
	}
	if record.Kind == domain.StylingKindStyled && record.CreatedAt == "" {
		record.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return s.repo.SetStylingPhoto(ctx, ownerID, projectID, photoID, record, time.Now().UTC())
}
