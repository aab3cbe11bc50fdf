package controller

import (
	"net/http"
	"strings"

	"menufic/apperr"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

type restaurantForm struct {
	Name      string `form:"name"`
	Location  string `form:"location"`
	ContactNo string `form:"contact_no"`
}

func (f restaurantForm) input() service.RestaurantInput {
	in := service.RestaurantInput{Name: f.Name, Location: f.Location}
	if f.ContactNo != "" {
		contact := f.ContactNo
		in.ContactNo = &contact
	}
	return in
}

func (ctl *Controller) GetMyRestaurants(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	restaurants, err := ctl.svc.ListRestaurants(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched restaurants successfully", restaurants)
}

// GetRestaurant returns the full tree, including unpublished content.
func (ctl *Controller) GetRestaurant(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	restaurant, err := ctl.svc.GetRestaurantTree(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched restaurant successfully", restaurant)
}

func (ctl *Controller) CreateRestaurant(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid restaurant form"))
		return
	}
	img, err := ctl.readImage(c, "image")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	restaurant, err := ctl.svc.CreateRestaurant(c.Request.Context(), userID, form.input(), img)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

func (ctl *Controller) UpdateRestaurant(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid restaurant form"))
		return
	}
	img, err := ctl.readImage(c, "image")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	restaurant, err := ctl.svc.UpdateRestaurant(c.Request.Context(), userID, c.Param("id"), form.input(), img)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Restaurant updated successfully", restaurant)
}

func (ctl *Controller) PublishRestaurant(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req struct {
		IsPublished *bool `json:"is_published" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("is_published is required"))
		return
	}

	restaurant, err := ctl.svc.SetRestaurantPublished(c.Request.Context(), userID, c.Param("id"), *req.IsPublished)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Restaurant updated successfully", restaurant)
}

func (ctl *Controller) DeleteRestaurant(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	restaurant, err := ctl.svc.DeleteRestaurant(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Restaurant deleted successfully", restaurant)
}

func (ctl *Controller) AddBanner(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	img, err := ctl.readImage(c, "image")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	banner, err := ctl.svc.AddBanner(c.Request.Context(), userID, c.Param("id"), img)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Banner added successfully", banner)
}

// DeleteBanner is routed with a catch-all parameter since image ids are
// storage keys and contain slashes.
func (ctl *Controller) DeleteBanner(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	imageID := strings.TrimPrefix(c.Param("imageId"), "/")
	if imageID == "" {
		utils.RespondError(c, apperr.Validation("Image id is required"))
		return
	}

	banner, err := ctl.svc.DeleteBanner(c.Request.Context(), userID, c.Param("id"), imageID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Banner deleted successfully", banner)
}

// GetPublishedMenu is served without authentication.
func (ctl *Controller) GetPublishedMenu(c *gin.Context) {
	restaurant, err := ctl.svc.GetPublishedMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched menu successfully", restaurant)
}
