package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reno_server/server/projects/domain"
)

var ErrNotFound = errors.New("project not found")

// ProjectRepository stores projects keyed (owner_id, project_id). Every
// statement carries owner_id in its WHERE clause or key; the owner always
// comes from the authenticated principal, never from a payload.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p domain.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects(owner_id, project_id, project_name, location, area, rooms, bathrooms, status, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.OwnerID, p.ProjectID, p.ProjectName, p.Location, p.Area, p.Rooms, p.Bathrooms, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

// ListByOwner returns the owner's projects newest first. Photo and styling
// maps are not loaded for listings.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT project_id, project_name, location, area, rooms, bathrooms, status, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC, project_id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Project, 0)
	for rows.Next() {
		p := domain.Project{OwnerID: ownerID}
		if err := rows.Scan(&p.ProjectID, &p.ProjectName, &p.Location, &p.Area,
			&p.Rooms, &p.Bathrooms, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *ProjectRepository) Get(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	p := domain.Project{OwnerID: ownerID}
	var photosRaw, stylingRaw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT project_id, project_name, location, area, rooms, bathrooms, status, photos, styling, created_at, updated_at
		FROM projects
		WHERE owner_id = $1 AND project_id = $2
	`, ownerID, projectID).Scan(&p.ProjectID, &p.ProjectName, &p.Location, &p.Area,
		&p.Rooms, &p.Bathrooms, &p.Status, &photosRaw, &stylingRaw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, ErrNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	if err := json.Unmarshal(photosRaw, &p.Photos); err != nil {
		return domain.Project{}, err
	}
	if err := json.Unmarshal(stylingRaw, &p.Styling); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (r *ProjectRepository) Exists(ctx context.Context, ownerID, projectID string) error {
	var one int
	err := r.pool.QueryRow(ctx, `
		SELECT 1 FROM projects WHERE owner_id = $1 AND project_id = $2
	`, ownerID, projectID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SetPhotoReference upserts photos[category][spaceId][shotId] = url in one
// statement. Concurrent writers to the same key are last-write-wins; there
// is deliberately no version check.
func (r *ProjectRepository) SetPhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID, url string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET photos = jsonb_set(
				jsonb_set(
					jsonb_set(photos, ARRAY[$3], COALESCE(photos->$3, '{}'::jsonb), true),
					ARRAY[$3, $4], COALESCE(photos->$3->$4, '{}'::jsonb), true),
				ARRAY[$3, $4, $5], to_jsonb($6::text), true),
			updated_at = $7
		WHERE owner_id = $1 AND project_id = $2
	`, ownerID, projectID, category, spaceID, shotID, url, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePhotoReference removes the key outright; there are no tombstones.
func (r *ProjectRepository) DeletePhotoReference(ctx context.Context, ownerID, projectID, category, spaceID, shotID string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET photos = photos #- ARRAY[$3, $4, $5],
			updated_at = $6
		WHERE owner_id = $1 AND project_id = $2
	`, ownerID, projectID, category, spaceID, shotID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) SetStylingPhoto(ctx context.Context, ownerID, projectID, photoID string, record domain.StylingRecord, now time.Time) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET styling = jsonb_set(styling, ARRAY[$3], $4::jsonb, true),
			updated_at = $5
		WHERE owner_id = $1 AND project_id = $2
	`, ownerID, projectID, photoID, string(encoded), now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
