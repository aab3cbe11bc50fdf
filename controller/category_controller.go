package controller

import (
	"net/http"

	"menufic/apperr"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (ctl *Controller) GetCategories(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	categories, err := ctl.svc.ListCategories(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched categories successfully", categories)
}

func (ctl *Controller) AddCategory(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Category name is required"))
		return
	}

	category, err := ctl.svc.CreateCategory(c.Request.Context(), userID, c.Param("id"), service.CategoryInput{Name: req.Name})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Category created successfully", category)
}

func (ctl *Controller) UpdateCategory(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Category name is required"))
		return
	}

	category, err := ctl.svc.UpdateCategory(c.Request.Context(), userID, c.Param("id"), service.CategoryInput{Name: req.Name})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory removes the category with its items and their images.
func (ctl *Controller) DeleteCategory(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	category, err := ctl.svc.DeleteCategory(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Category deleted successfully", category)
}

func (ctl *Controller) UpdateCategoryPositions(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	updates, ok := bindPositions(c)
	if !ok {
		return
	}
	categories, err := ctl.svc.UpdateCategoryPositions(c.Request.Context(), userID, updates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Category positions updated successfully", categories)
}
