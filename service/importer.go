package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"menufic/apperr"
	"menufic/model"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportItems creates items in a category from the first sheet of an xlsx
// workbook. The first row is a header; columns are name, price and
// description. Either every row is imported or none is.
func (s *Service) ImportItems(ctx context.Context, userID, categoryID string, r io.Reader) ([]model.MenuItem, error) {
	category, err := findOwned[model.Category](ctx, s.db, userID, categoryID, "Category")
	if err != nil {
		return nil, err
	}

	inputs, err := readItemSheet(r)
	if err != nil {
		return nil, err
	}

	items := make([]model.MenuItem, len(inputs))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.MenuItem{}).Where("category_id = ?", categoryID).Count(&existing).Error; err != nil {
			return err
		}
		if int(existing)+len(inputs) > s.quotas.ItemsPerCategory {
			return apperr.Quota(s.quotas.ItemsPerCategory, "items", "category")
		}
		next, err := nextPosition(tx, &model.MenuItem{}, "category_id", categoryID)
		if err != nil {
			return err
		}
		for i, in := range inputs {
			items[i] = model.MenuItem{
				Name:        in.Name,
				Price:       in.Price,
				Description: in.Description,
				Position:    next + i,
				CategoryID:  categoryID,
				MenuID:      category.MenuID,
				UserID:      userID,
			}
		}
		return tx.Omit("Image").Create(&items).Error
	})
	if err != nil {
		return nil, s.wrapWriteErr(ctx, err, "Failed to import items", "category_id", categoryID)
	}

	s.logger.InfoContext(ctx, "items imported", "category_id", categoryID, "count", len(items))
	return items, nil
}

func readItemSheet(r io.Reader) ([]ItemInput, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("Failed to parse Excel file")
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("Excel file has no sheets")
	}
	rows, err := xl.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return nil, apperr.Validation("Excel must have at least one row of data")
	}

	var inputs []ItemInput
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		in := ItemInput{Name: cell(row, 0), Price: cell(row, 1), Description: cell(row, 2)}
		if err := in.validate(); err != nil {
			return nil, apperr.Validation("Row %d: %s", i+2, apperr.Message(err))
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, apperr.Validation("No valid rows found")
	}
	return inputs, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ItemSheet builds a workbook in the import layout. It is used to offer a
// template download.
func ItemSheet(items []ItemInput) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{{"Name", "Price", "Description"}}
	for _, it := range items {
		rows = append(rows, []any{it.Name, it.Price, it.Description})
	}
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f, nil
}
