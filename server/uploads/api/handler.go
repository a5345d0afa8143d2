package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	commonlog "reno_server/server/common/log"
	"reno_server/server/common/middleware"
	"reno_server/server/common/transport/httpresp"
	"reno_server/server/uploads/domain"
	"reno_server/server/uploads/service"
)

type Handler struct {
	uploads *service.UploadService
}

func NewHandler(uploads *service.UploadService) *Handler {
	return &Handler{uploads: uploads}
}

func (h *Handler) RegisterRoutes(authed gin.IRoutes) {
	authed.GET("/projects/:projectId/photos", h.createGrant)
	authed.POST("/projects/:projectId/photos", h.commit)
}

// Step 1 of the workflow: hand the client a presigned PUT URL plus the
// read URL the commit step will report back.
func (h *Handler) createGrant(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projectID := c.Param("projectId")
	contentType := c.DefaultQuery("contentType", "image/jpeg")

	grant, err := h.uploads.CreateGrant(c.Request.Context(), ownerID, projectID,
		c.Query("type"), c.Query("spaceId"), c.Query("shotId"), contentType)
	if err != nil {
		h.writeError(c, ownerID, projectID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uploadUrl": grant.UploadURL,
		"imageUrl":  grant.ImageURL,
		"s3Key":     grant.ObjectKey,
	})
}

// Step 3: the transfer itself (step 2) goes straight to the object store,
// this service only records the result.
func (h *Handler) commit(c *gin.Context) {
	ownerID, _, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
		return
	}
	projectID := c.Param("projectId")
	var req domain.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpresp.Validation("Invalid JSON in request body"))
		return
	}
	imageURL, err := h.uploads.Commit(c.Request.Context(), ownerID, projectID, req)
	if err != nil {
		h.writeError(c, ownerID, projectID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Photo upload completed",
		"imageUrl": imageURL,
	})
}

func (h *Handler) writeError(c *gin.Context, ownerID, projectID string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, httpresp.Validation(verr.Message))
	case errors.Is(err, service.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, httpresp.Validation(service.ErrInvalidCategory.Error()))
	case errors.Is(err, service.ErrForeignImageURL),
		errors.Is(err, service.ErrGrantNotFound),
		errors.Is(err, service.ErrObjectMissing):
		c.JSON(http.StatusBadRequest, httpresp.Validation(err.Error()))
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, httpresp.NotFound(httpresp.ErrProjectNotFound))
	default:
		commonlog.Errorf("upload workflow %s for %s: %v", projectID, ownerID, err)
		c.JSON(http.StatusInternalServerError, httpresp.ServerError())
	}
}
