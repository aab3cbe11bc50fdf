package service_test

import (
	"testing"

	"menufic/apperr"
	"menufic/model"
	"menufic/reorder"
	"menufic/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reorderPayload assigns positions 0..n-1 to ids in the given order.
func reorderPayload(ids ...string) []reorder.PositionUpdate {
	out := make([]reorder.PositionUpdate, len(ids))
	for i, id := range ids {
		out[i] = reorder.PositionUpdate{ID: id, NewPosition: i}
	}
	return out
}

func menuNames(menus []model.Menu) []string {
	out := make([]string, len(menus))
	for i, m := range menus {
		out[i] = m.Name
	}
	return out
}

func TestCreateAssignsNextPosition(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)

	a := f.menu(t, r.ID, "A")
	b := f.menu(t, r.ID, "B")
	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)

	_, err := f.svc.DeleteMenu(f.ctx, f.user.ID, a.ID)
	require.NoError(t, err)
	c := f.menu(t, r.ID, "C")
	assert.Equal(t, 2, c.Position, "positions continue after the max, gaps are not reused")
}

func TestUpdateMenuPositionsMovesFirstToThird(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)
	a := f.menu(t, r.ID, "A")
	b := f.menu(t, r.ID, "B")
	c := f.menu(t, r.ID, "C")

	dst := 2
	plan, err := reorder.Plan([]model.Menu{*a, *b, *c}, 0, &dst)
	require.NoError(t, err)

	saved, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, plan.Updates)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, menuNames(saved))

	list, err := f.svc.ListMenus(f.ctx, f.user.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, menuNames(list))
	for i, m := range list {
		assert.Equal(t, i, m.Position)
	}
}

func TestUpdatePositionsSkipsUnknownIDs(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)
	a := f.menu(t, r.ID, "A")
	b := f.menu(t, r.ID, "B")

	saved, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, reorderPayload(b.ID, "01HZZZZZZZZZZZZZZZZZZZZZZZ", a.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, menuNames(saved))
	assert.Equal(t, 0, saved[0].Position)
	assert.Equal(t, 2, saved[1].Position)
}

func TestUpdatePositionsIgnoresOtherOwners(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)
	a := f.menu(t, r.ID, "A")
	b := f.menu(t, r.ID, "B")
	other := testutil.User(t, f.db, "other@example.com")

	saved, err := f.svc.UpdateMenuPositions(f.ctx, other.ID, reorderPayload(b.ID, a.ID))
	require.NoError(t, err)
	assert.Empty(t, saved)

	list, err := f.svc.ListMenus(f.ctx, f.user.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, menuNames(list))
}

func TestUpdatePositionsRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)
	a := f.menu(t, r.ID, "A")

	_, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, []reorder.PositionUpdate{
		{ID: a.ID, NewPosition: 0},
		{ID: a.ID, NewPosition: 1},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdatePositionsRejectsClashWithSiblings(t *testing.T) {
	f := newFixture(t)
	r := f.restaurant(t)
	a := f.menu(t, r.ID, "A")
	b := f.menu(t, r.ID, "B")

	_, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, []reorder.PositionUpdate{{ID: a.ID, NewPosition: 1}})
	require.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	list, err := f.svc.ListMenus(f.ctx, f.user.ID, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, 1, list[1].Position)
}

func TestUpdatePositionsChecksEveryScopeInBatch(t *testing.T) {
	f := newFixture(t)
	r1 := f.restaurant(t)
	r2 := f.restaurant(t)
	a := f.menu(t, r1.ID, "A")
	f.menu(t, r1.ID, "B")
	c := f.menu(t, r2.ID, "C")
	d := f.menu(t, r2.ID, "D")

	// r1 stays unique, r2 ends with C and D both on 0.
	_, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, []reorder.PositionUpdate{
		{ID: a.ID, NewPosition: 2},
		{ID: d.ID, NewPosition: 0},
	})
	require.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	list, err := f.svc.ListMenus(f.ctx, f.user.ID, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, menuNames(list), "rolled back in every scope")
	assert.Equal(t, 0, list[0].Position)

	saved, err := f.svc.UpdateMenuPositions(f.ctx, f.user.ID, []reorder.PositionUpdate{
		{ID: a.ID, NewPosition: 2},
		{ID: c.ID, NewPosition: 5},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	list, err = f.svc.ListMenus(f.ctx, f.user.ID, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C"}, menuNames(list))
}

func TestUpdateCategoryAndItemPositions(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, f.restaurant(t).ID, "Menu")
	c1 := f.category(t, m.ID, "One")
	c2 := f.category(t, m.ID, "Two")

	cats, err := f.svc.UpdateCategoryPositions(f.ctx, f.user.ID, reorderPayload(c2.ID, c1.ID))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, c2.ID, cats[0].ID)

	i1 := f.item(t, c1.ID, "x", png())
	i2 := f.item(t, c1.ID, "y", nil)
	items, err := f.svc.UpdateItemPositions(f.ctx, f.user.ID, reorderPayload(i2.ID, i1.ID))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, i2.ID, items[0].ID)
	require.NotNil(t, items[1].Image, "item images are loaded")
}
