package controller

import (
	"net/http"

	"menufic/apperr"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

type menuRequest struct {
	Name          string `json:"name" binding:"required"`
	AvailableTime string `json:"available_time"`
}

func (ctl *Controller) GetMenus(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	menus, err := ctl.svc.ListMenus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched menus successfully", menus)
}

func (ctl *Controller) AddMenu(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Menu name is required"))
		return
	}

	menu, err := ctl.svc.CreateMenu(c.Request.Context(), userID, c.Param("id"),
		service.MenuInput{Name: req.Name, AvailableTime: req.AvailableTime})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Menu created successfully", menu)
}

func (ctl *Controller) UpdateMenu(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Menu name is required"))
		return
	}

	menu, err := ctl.svc.UpdateMenu(c.Request.Context(), userID, c.Param("id"),
		service.MenuInput{Name: req.Name, AvailableTime: req.AvailableTime})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Menu updated successfully", menu)
}

func (ctl *Controller) DeleteMenu(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	menu, err := ctl.svc.DeleteMenu(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Menu deleted successfully", menu)
}

func (ctl *Controller) UpdateMenuPositions(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	updates, ok := bindPositions(c)
	if !ok {
		return
	}
	menus, err := ctl.svc.UpdateMenuPositions(c.Request.Context(), userID, updates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Menu positions updated successfully", menus)
}
