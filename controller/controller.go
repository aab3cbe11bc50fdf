// Package controller holds the gin handlers for the owner API and the
// public menu.
package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"menufic/apperr"
	"menufic/reorder"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	svc       *service.Service
	maxUpload int64
	logger    *slog.Logger
}

func New(svc *service.Service, maxUpload int64, logger *slog.Logger) *Controller {
	return &Controller{svc: svc, maxUpload: maxUpload, logger: logger.With("component", "controller")}
}

// positionsRequest is the body of every positions endpoint.
type positionsRequest struct {
	Items []reorder.PositionUpdate `json:"items" binding:"required,dive"`
}

func ownerID(c *gin.Context) (string, bool) {
	id, ok := utils.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Unauthorized access",
		})
	}
	return id, ok
}

// readImage returns the uploaded file in field, or nil when the request has
// none. Size and type are checked by the service.
func (ctl *Controller) readImage(c *gin.Context, field string) (*service.ImageInput, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("Failed to read uploaded file")
	}
	if file.Size > ctl.maxUpload {
		return nil, apperr.Validation("Image exceeds the %d byte limit", ctl.maxUpload)
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperr.Internal("Failed to read uploaded file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, ctl.maxUpload+1))
	if err != nil {
		return nil, apperr.Internal("Failed to read uploaded file", err)
	}

	return &service.ImageInput{
		Data:     data,
		Ext:      strings.ToLower(filepath.Ext(file.Filename)),
		BlurHash: c.PostForm("blur_hash"),
		Color:    c.PostForm("color"),
	}, nil
}

func bindPositions(c *gin.Context) ([]reorder.PositionUpdate, bool) {
	var req positionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid positions payload: %v", err))
		return nil, false
	}
	return req.Items, true
}
