package controller

import (
	"net/http"

	"menufic/apperr"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type itemForm struct {
	Name        string `form:"name"`
	Price       string `form:"price"`
	Description string `form:"description"`
}

func (f itemForm) input() service.ItemInput {
	return service.ItemInput{Name: f.Name, Price: f.Price, Description: f.Description}
}

func (ctl *Controller) GetItems(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	items, err := ctl.svc.ListItems(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Fetched items successfully", items)
}

func (ctl *Controller) AddItem(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var form itemForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid item form"))
		return
	}
	img, err := ctl.readImage(c, "image")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	item, err := ctl.svc.CreateItem(c.Request.Context(), userID, c.Param("id"), form.input(), img)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Item created successfully", item)
}

func (ctl *Controller) UpdateItem(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var form itemForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, apperr.Validation("Invalid item form"))
		return
	}
	img, err := ctl.readImage(c, "image")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	item, err := ctl.svc.UpdateItem(c.Request.Context(), userID, c.Param("id"), form.input(), img)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Item updated successfully", item)
}

func (ctl *Controller) DeleteItem(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	item, err := ctl.svc.DeleteItem(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Item deleted successfully", item)
}

func (ctl *Controller) UpdateItemPositions(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	updates, ok := bindPositions(c)
	if !ok {
		return
	}
	items, err := ctl.svc.UpdateItemPositions(c.Request.Context(), userID, updates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, "Item positions updated successfully", items)
}

// ImportItems reads an xlsx workbook from the "file" form field.
func (ctl *Controller) ImportItems(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, apperr.Validation("Excel file is required"))
		return
	}
	f, err := file.Open()
	if err != nil {
		utils.RespondError(c, apperr.Internal("Failed to open Excel file", err))
		return
	}
	defer f.Close()

	items, err := ctl.svc.ImportItems(c.Request.Context(), userID, c.Param("id"), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, "Items imported successfully", items)
}

// ImportTemplate serves an empty workbook in the import layout.
func (ctl *Controller) ImportTemplate(c *gin.Context) {
	sheet, err := service.ItemSheet(nil)
	if err != nil {
		utils.RespondError(c, apperr.Internal("Failed to build template", err))
		return
	}
	defer sheet.Close()

	c.Header("Content-Disposition", `attachment; filename="items.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := sheet.Write(c.Writer); err != nil {
		ctl.logger.ErrorContext(c.Request.Context(), "failed to write template", "error", err)
	}
}
