package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// ProjectRepo implements ports.ProjectRepository with pgx. The engine
// only reads; the admin panel that writes these tables is a separate
// system sharing the database.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `
	p.id, p.slug, p.name, p.building_name,
	ST_X(p.building_location::geometry), ST_Y(p.building_location::geometry),
	COALESCE(p.intro_audio_url, ''), COALESCE(p.map_style_url, ''), p.created_at`

// GetProject returns a project by UUID.
func (r *ProjectRepo) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return r.scanProject(r.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
}

// GetProjectBySlug returns a project by its URL slug.
func (r *ProjectRepo) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	return r.scanProject(r.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.slug = $1`, slug))
}

func (r *ProjectRepo) scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Building.Name,
		&p.Building.Location.Lon, &p.Building.Location.Lat,
		&p.IntroAudioURL, &p.MapStyleURL, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Building.ID = p.ID
	return &p, nil
}

// ListLandmarks returns all landmarks of a project ordered by title.
func (r *ProjectRepo) ListLandmarks(ctx context.Context, projectID string) ([]domain.Landmark, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, project_id, title,
		       ST_X(location::geometry), ST_Y(location::geometry),
		       COALESCE(description, ''), COALESCE(icon_url, ''), COALESCE(category, ''),
		       created_at
		FROM landmarks
		WHERE project_id = $1
		ORDER BY title
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query landmarks: %w", err)
	}
	defer rows.Close()

	var out []domain.Landmark
	for rows.Next() {
		var lm domain.Landmark
		if err := rows.Scan(
			&lm.ID, &lm.ProjectID, &lm.Title,
			&lm.Location.Lon, &lm.Location.Lat,
			&lm.Description, &lm.IconURL, &lm.Category,
			&lm.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan landmark: %w", err)
		}
		out = append(out, lm)
	}
	return out, rows.Err()
}

// GetLandmark returns a landmark by UUID, or nil when absent.
func (r *ProjectRepo) GetLandmark(ctx context.Context, id string) (*domain.Landmark, error) {
	var lm domain.Landmark
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, project_id, title,
		       ST_X(location::geometry), ST_Y(location::geometry),
		       COALESCE(description, ''), COALESCE(icon_url, ''), COALESCE(category, ''),
		       created_at
		FROM landmarks WHERE id = $1
	`, id).Scan(
		&lm.ID, &lm.ProjectID, &lm.Title,
		&lm.Location.Lon, &lm.Location.Lat,
		&lm.Description, &lm.IconURL, &lm.Category,
		&lm.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan landmark: %w", err)
	}
	return &lm, nil
}
