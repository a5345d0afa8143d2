package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	commonlog "reno_server/server/common/log"
	"reno_server/server/common/middleware"
	"reno_server/server/common/transport/httpresp"
	"reno_server/server/projects/domain"
	"reno_server/server/projects/service"
)

type Handler struct {
	projects *service.ProjectService
}

func NewHandler(projects *service.ProjectService) *Handler {
	return &Handler{projects: projects}
}

func (h *Handler) RegisterRoutes(authed gin.IRoutes) {
	authed.POST("/projects", h.createProject)
	authed.GET("/projects", h.listProjects)
	authed.GET("/projects/:projectId", h.getProject)
	authed.DELETE("/projects/:projectId/photos", h.deletePhoto)
	authed.POST("/projects/:projectId/styling", h.recordStyling)
}

func (h *Handler) createProject(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpresp.Validation("Invalid JSON in request body"))
		return
	}
	project, err := h.projects.CreateProject(c.Request.Context(), ownerID, req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, httpresp.Validation(verr.Message))
			return
		}
		commonlog.Errorf("create project for %s: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

func (h *Handler) listProjects(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projects, err := h.projects.ListProjects(c.Request.Context(), ownerID)
	if err != nil {
		commonlog.Errorf("list projects for %s: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
	})
}

func (h *Handler) getProject(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projectID := c.Param("projectId")
	project, err := h.projects.GetProject(c.Request.Context(), ownerID, projectID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpresp.NotFound(httpresp.ErrProjectNotFound))
			return
		}
		commonlog.Errorf("get project %s for %s: %v", projectID, ownerID, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) deletePhoto(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projectID := c.Param("projectId")
	err := h.projects.DeletePhotoReference(c.Request.Context(), ownerID, projectID,
		c.Query("type"), c.Query("spaceId"), c.Query("shotId"))
	if err != nil {
		h.writeMutationError(c, ownerID, projectID, err)
		return
	}
	c.JSON(http.StatusOK, httpresp.MessageResponse{Message: "Photo deleted successfully"})
}

func (h *Handler) recordStyling(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projectID := c.Param("projectId")
	var req struct {
		PhotoID       string `json:"photoId"`
		OriginalPhoto string `json:"originalPhoto"`
		StyledPhoto   string `json:"styledPhoto"`
		Style         string `json:"style"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpresp.Validation("Invalid JSON in request body"))
		return
	}
	record := domain.StylingRecord{
		Kind:     domain.StylingKindStyled,
		Original: req.OriginalPhoto,
		Styled:   req.StyledPhoto,
		Style:    req.Style,
	}
	if err := h.projects.RecordStylingPhoto(c.Request.Context(), ownerID, projectID, req.PhotoID, record); err != nil {
		h.writeMutationError(c, ownerID, projectID, err)
		return
	}
	c.JSON(http.StatusOK, httpresp.MessageResponse{Message: "Styling photo saved"})
}

func (h *Handler) writeMutationError(c *gin.Context, ownerID, projectID string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, httpresp.Validation(verr.Message))
	case errors.Is(err, service.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, httpresp.Validation(service.ErrInvalidCategory.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, httpresp.NotFound(httpresp.ErrProjectNotFound))
	default:
		commonlog.Errorf("project mutation %s for %s: %v", projectID, ownerID, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
	}
}
