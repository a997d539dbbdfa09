package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// GetProjectHandler returns a single project by UUID or slug.
func GetProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "project id is required")
		}

		project, err := lookupProject(c, deps, id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if project == nil {
			return errNotFound(c, "project not found: "+id)
		}

		return c.JSON(project)
	}
}

// ListLandmarksHandler returns the landmarks of a project.
func ListLandmarksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		project, err := lookupProject(c, deps, id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if project == nil {
			return errNotFound(c, "project not found: "+id)
		}

		landmarks, err := deps.Projects.ListLandmarks(c.Context(), project.ID)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(landmarks)
		if offset >= total {
			landmarks = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			landmarks = landmarks[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: landmarks, Pagination: pg})
	}
}

// GetLandmarkHandler returns a single landmark by ID.
func GetLandmarkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return errBadRequest(c, "landmark id must be a UUID")
		}

		landmark, err := deps.Projects.GetLandmark(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if landmark == nil {
			return errNotFound(c, "landmark not found: "+id)
		}

		return c.JSON(landmark)
	}
}

// lookupProject resolves a path parameter that may be a UUID or a slug.
func lookupProject(c *fiber.Ctx, deps *Dependencies, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err == nil {
		return deps.Projects.GetProject(c.Context(), id)
	}
	return deps.Projects.GetProjectBySlug(c.Context(), id)
}
