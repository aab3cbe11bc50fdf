// Package cascade deletes an entity together with its descendants and their
// stored images. A delete is described by a Plan: an ordered list of row
// deletions, leaf tables first, ending with the image rows, plus the image
// ids to remove from object storage.
package cascade

import (
	"fmt"
	"strings"

	"menufic/model"
)

// Kind names the entity a plan deletes.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindMenu       Kind = "menu"
	KindCategory   Kind = "category"
	KindMenuItem   Kind = "menu_item"
)

type OpKind int

const (
	OpDeleteRows OpKind = iota + 1
	OpDeleteImages
)

func (k OpKind) String() string {
	switch k {
	case OpDeleteRows:
		return "DeleteRows"
	case OpDeleteImages:
		return "DeleteImages"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op deletes the rows of Table whose Column is in IDs. Owned tables are
// additionally filtered by OwnerID. A Required op must remove at least one
// row or the whole plan is rolled back.
type Op struct {
	Kind     OpKind
	Table    string
	Column   string
	IDs      []string
	OwnerID  string
	Required bool
	model    any
}

// Empty ops are kept in the plan and skipped at execution.
func (o Op) Empty() bool { return len(o.IDs) == 0 }

func (o Op) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s WHERE %s IN (%s)", o.Kind, o.Table, o.Column, strings.Join(o.IDs, ","))
	if o.OwnerID != "" {
		fmt.Fprintf(&b, " AND user_id = %s", o.OwnerID)
	}
	return b.String()
}

// Builder accumulates ops in execution order.
type Builder struct {
	ownerID string
	ops     []Op
}

func NewBuilder(ownerID string) *Builder {
	return &Builder{ownerID: ownerID}
}

func (b *Builder) deleteRows(m any, table, column string, ids []string, required bool) *Builder {
	b.ops = append(b.ops, Op{
		Kind:     OpDeleteRows,
		Table:    table,
		Column:   column,
		IDs:      ids,
		OwnerID:  b.ownerID,
		Required: required,
		model:    m,
	})
	return b
}

// DeleteRows appends a deletion of owned rows.
func (b *Builder) DeleteRows(m any, table, column string, ids []string) *Builder {
	return b.deleteRows(m, table, column, ids, false)
}

// DeleteTarget appends the deletion of the plan's root row.
func (b *Builder) DeleteTarget(m any, table, id string) *Builder {
	return b.deleteRows(m, table, "id", []string{id}, true)
}

// DeleteImages appends the deletion of image rows. Images are not owned
// rows, so no owner filter applies.
func (b *Builder) DeleteImages(ids []string) *Builder {
	b.ops = append(b.ops, Op{
		Kind:   OpDeleteImages,
		Table:  "images",
		Column: "id",
		IDs:    ids,
		model:  &model.Image{},
	})
	return b
}

func (b *Builder) Ops() []Op { return b.ops }

type Plan struct {
	Kind     Kind
	TargetID string
	OwnerID  string
	Ops      []Op
	ImageIDs []string
}

// ForMenuItem deletes one item and its image.
func ForMenuItem(item *model.MenuItem) Plan {
	images := NewImageSet()
	images.Add(item.ImageID)

	b := NewBuilder(item.UserID).
		DeleteTarget(&model.MenuItem{}, "menu_items", item.ID).
		DeleteImages(images.IDs())
	return Plan{Kind: KindMenuItem, TargetID: item.ID, OwnerID: item.UserID, Ops: b.Ops(), ImageIDs: images.IDs()}
}

// ForCategory expects Items to be loaded.
func ForCategory(category *model.Category) Plan {
	images := NewImageSet()
	for _, item := range category.Items {
		images.Add(item.ImageID)
	}

	b := NewBuilder(category.UserID).
		DeleteRows(&model.MenuItem{}, "menu_items", "category_id", []string{category.ID}).
		DeleteTarget(&model.Category{}, "categories", category.ID).
		DeleteImages(images.IDs())
	return Plan{Kind: KindCategory, TargetID: category.ID, OwnerID: category.UserID, Ops: b.Ops(), ImageIDs: images.IDs()}
}

// ForMenu expects Categories.Items to be loaded.
func ForMenu(menu *model.Menu) Plan {
	images := NewImageSet()
	var categoryIDs []string
	for _, c := range menu.Categories {
		categoryIDs = append(categoryIDs, c.ID)
		for _, item := range c.Items {
			images.Add(item.ImageID)
		}
	}

	b := NewBuilder(menu.UserID).
		DeleteRows(&model.MenuItem{}, "menu_items", "category_id", categoryIDs).
		DeleteRows(&model.Category{}, "categories", "id", categoryIDs).
		DeleteTarget(&model.Menu{}, "menus", menu.ID).
		DeleteImages(images.IDs())
	return Plan{Kind: KindMenu, TargetID: menu.ID, OwnerID: menu.UserID, Ops: b.Ops(), ImageIDs: images.IDs()}
}

// ForRestaurant expects Image, Banners and Menus.Categories.Items to be
// loaded.
func ForRestaurant(r *model.Restaurant) Plan {
	images := NewImageSet()
	images.Add(r.ImageID)
	for _, banner := range r.Banners {
		images.Add(&banner.ID)
	}

	var menuIDs, categoryIDs []string
	for _, m := range r.Menus {
		menuIDs = append(menuIDs, m.ID)
		for _, c := range m.Categories {
			categoryIDs = append(categoryIDs, c.ID)
			for _, item := range c.Items {
				images.Add(item.ImageID)
			}
		}
	}

	b := NewBuilder(r.UserID).
		DeleteRows(&model.MenuItem{}, "menu_items", "category_id", categoryIDs).
		DeleteRows(&model.Category{}, "categories", "id", categoryIDs).
		DeleteRows(&model.Menu{}, "menus", "id", menuIDs).
		DeleteTarget(&model.Restaurant{}, "restaurants", r.ID).
		DeleteImages(images.IDs())
	return Plan{Kind: KindRestaurant, TargetID: r.ID, OwnerID: r.UserID, Ops: b.Ops(), ImageIDs: images.IDs()}
}
