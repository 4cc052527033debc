package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type createProjectRequest struct {
	Name      string     `json:"name"      validate:"required"`
	Location  string     `json:"location"  validate:"required"`
	Phone     string     `json:"phone"     validate:"required"`
	Email     string     `json:"email"     validate:"required,email"`
	StartDate *dateValue `json:"startDate" validate:"required" swaggertype:"string" example:"2026-01-15"`
	EndDate   *dateValue `json:"endDate"   validate:"required" swaggertype:"string" example:"2026-06-30"`
}

type updateProjectRequest struct {
	Name      *string    `json:"name,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"     validate:"omitempty,email"`
	StartDate *dateValue `json:"startDate,omitempty" swaggertype:"string"`
	EndDate   *dateValue `json:"endDate,omitempty"   swaggertype:"string"`
}

// List returns every project to admins and the granted ones to clients.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Success      200  {object}  projectsResponse
// @Failure      401  {object}  errorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.ListProjects(c.Request().Context(), ctxSession(c))
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return c.JSON(http.StatusOK, projectsResponse{
		messageResponse: ok(fetched(len(projects), "projects")),
		Projects:        projects,
		Count:           len(projects),
	})
}

// ListForRequestAccess returns the projection clients choose from.
//
// @Summary      Projects available for access requests
// @Tags         projects
// @Produce      json
// @Success      200  {object}  projectViewsResponse
// @Failure      401  {object}  errorResponse
// @Router       /projects/all-for-request-access [get]
func (h *ProjectHandler) ListForRequestAccess(c echo.Context) error {
	views, err := h.service.ListForRequestAccess(c.Request().Context(), ctxSession(c))
	if err != nil {
		return err
	}
	if views == nil {
		views = []*domain.ProjectAccessView{}
	}
	return c.JSON(http.StatusOK, projectViewsResponse{
		messageResponse: ok(fetched(len(views), "projects")),
		Projects:        views,
		Count:           len(views),
	})
}

// Create adds a project.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return domain.Validation("startDate and endDate are required")
	}

	project, err := h.service.CreateProject(c.Request().Context(), ctxSession(c), ports.CreateProjectInput{
		Name:      req.Name,
		Location:  req.Location,
		Phone:     req.Phone,
		Email:     req.Email,
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.Time,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, projectResponse{messageResponse: ok("Project created"), Project: project})
}

// Update changes only the supplied fields.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Project id"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.UpdateProject(c.Request().Context(), ctxSession(c), c.Param("id"), domain.ProjectUpdate{
		Name:      req.Name,
		Location:  req.Location,
		Phone:     req.Phone,
		Email:     req.Email,
		StartDate: req.StartDate.ptr(),
		EndDate:   req.EndDate.ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectResponse{messageResponse: ok("Project updated successfully"), Project: project})
}

// Delete removes a project and returns it.
//
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  projectResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	project, err := h.service.DeleteProject(c.Request().Context(), ctxSession(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projectResponse{messageResponse: ok("Project deleted successfully"), Project: project})
}
