package services

import (
	"context"
	"testing"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/handlers/slogdiscard"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*FilterService, *repository.OptionStore) {
	store := repository.NewOptionStore(repository.NewMemoryRepo(memory.New()))
	return NewFilterService(slogdiscard.NewDiscardLogger(), store), store
}

func mustAdd(t *testing.T, s *FilterService, name, parent string) models.Filter {
	t.Helper()
	f, err := s.Add(context.Background(), name, parent, "")
	require.NoError(t, err)
	return f
}

func byID(t *testing.T, s *FilterService, id string) models.Filter {
	t.Helper()
	filters, err := s.List(context.Background())
	require.NoError(t, err)
	for _, f := range filters {
		if f.ID == id {
			return f
		}
	}
	t.Fatalf("filter %s not found", id)
	return models.Filter{}
}

func TestFilterService_Add_SlugUniqueness(t *testing.T) {
	s, _ := newService()

	first := mustAdd(t, s, "Nature", "")
	second := mustAdd(t, s, "nature!", "")
	third := mustAdd(t, s, "NATURE", "")

	assert.Equal(t, "nature", first.Slug)
	assert.Equal(t, "nature-2", second.Slug)
	assert.Equal(t, "nature-3", third.Slug)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []int{0, 1, 2}, []int{first.Order, second.Order, third.Order})
}

func TestFilterService_Add_UnicodeNames(t *testing.T) {
	s, _ := newService()

	cjk := mustAdd(t, s, "日本語", "")
	emoji := mustAdd(t, s, "🎉🎉", "")

	assert.Equal(t, "日本語", cjk.Slug)
	assert.Regexp(t, `^filter-[0-9a-f]{8}$`, emoji.Slug)
	assert.NotEmpty(t, cjk.ID)
}

func TestFilterService_Add_Validation(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	_, err := s.Add(ctx, "  <b></b> ", "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = s.Add(ctx, "City", "missing", "")
	assert.ErrorIs(t, err, models.ErrFilterNotFound)

	_, err = s.Add(ctx, "City", "", "blue")
	assert.ErrorIs(t, err, models.ErrValidation)

	f, err := s.Add(ctx, "City", "", "#abc")
	require.NoError(t, err)
	assert.Equal(t, "#abc", f.Color)
}

func TestFilterService_LegacyMirror(t *testing.T) {
	s, store := newService()
	ctx := context.Background()

	a := mustAdd(t, s, "Animals", "")
	b := mustAdd(t, s, "Birds", "")

	name := "Wildlife"
	_, err := s.Update(ctx, a.ID, models.FilterUpdate{Name: &name})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, b.ID))

	names, err := store.LegacyFilterMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{a.ID: "Wildlife"}, names)

	// переименование не меняет slug
	assert.Equal(t, "animals", byID(t, s, a.ID).Slug)
}

func TestFilterService_Delete_ReparentsAndDensifies(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	root1 := mustAdd(t, s, "Root one", "")
	root2 := mustAdd(t, s, "Root two", "")
	root3 := mustAdd(t, s, "Root three", "")
	childA := mustAdd(t, s, "Child A", root2.ID)
	childB := mustAdd(t, s, "Child B", root2.ID)

	require.NoError(t, s.Delete(ctx, root2.ID))

	assert.Equal(t, 0, byID(t, s, root1.ID).Order)
	assert.Equal(t, 1, byID(t, s, root3.ID).Order)

	a := byID(t, s, childA.ID)
	b := byID(t, s, childB.ID)
	assert.Equal(t, "", a.Parent)
	assert.Equal(t, "", b.Parent)
	assert.Equal(t, 2, a.Order)
	assert.Equal(t, 3, b.Order)

	assert.ErrorIs(t, s.Delete(ctx, root2.ID), models.ErrFilterNotFound)
}

func TestFilterService_Delete_NestedChildMovesToGrandparent(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	top := mustAdd(t, s, "Top", "")
	mid := mustAdd(t, s, "Mid", top.ID)
	leaf := mustAdd(t, s, "Leaf", mid.ID)

	require.NoError(t, s.Delete(ctx, mid.ID))

	got := byID(t, s, leaf.ID)
	assert.Equal(t, top.ID, got.Parent)
	assert.Equal(t, 0, got.Order)
}

func TestFilterService_SetParent(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	a := mustAdd(t, s, "A", "")
	b := mustAdd(t, s, "B", "")
	c := mustAdd(t, s, "C", "")

	moved, err := s.SetParent(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.Parent)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, 1, byID(t, s, c.ID).Order)

	_, err = s.SetParent(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, models.ErrFilterCycle)

	_, err = s.SetParent(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, models.ErrFilterCycle)

	_, err = s.SetParent(ctx, a.ID, "ghost")
	assert.ErrorIs(t, err, models.ErrFilterNotFound)

	_, err = s.SetParent(ctx, "ghost", a.ID)
	assert.ErrorIs(t, err, models.ErrFilterNotFound)
}

func TestFilterService_SetSlugAndColor(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	a := mustAdd(t, s, "A", "")
	b := mustAdd(t, s, "B", "")

	f, err := s.SetSlug(ctx, a.ID, "Landscapes")
	require.NoError(t, err)
	assert.Equal(t, "landscapes", f.Slug)

	_, err = s.SetSlug(ctx, b.ID, "landscapes")
	assert.ErrorIs(t, err, models.ErrSlugTaken)

	_, err = s.SetSlug(ctx, b.ID, " ")
	assert.ErrorIs(t, err, models.ErrValidation)

	f, err = s.SetColor(ctx, b.ID, "#112233")
	require.NoError(t, err)
	assert.Equal(t, "#112233", f.Color)

	_, err = s.SetColor(ctx, b.ID, "not-a-color")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestFilterService_Reorder(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	a := mustAdd(t, s, "A", "")
	b := mustAdd(t, s, "B", "")
	c := mustAdd(t, s, "C", "")

	_, err := s.Reorder(ctx, []string{c.ID, a.ID, "unknown"})
	require.NoError(t, err)

	assert.Equal(t, 0, byID(t, s, c.ID).Order)
	assert.Equal(t, 1, byID(t, s, a.ID).Order)
	// не переданный фильтр сохраняет прежний порядок
	assert.Equal(t, 1, byID(t, s, b.ID).Order)
}

func TestFilterService_TreeAndDeleteAll(t *testing.T) {
	s, store := newService()
	ctx := context.Background()

	a := mustAdd(t, s, "A", "")
	b := mustAdd(t, s, "B", "")
	mustAdd(t, s, "A1", a.ID)
	mustAdd(t, s, "A2", a.ID)

	_, err := s.Reorder(ctx, []string{b.ID, a.ID})
	require.NoError(t, err)

	tree, err := s.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "B", tree[0].Name)
	assert.Equal(t, "A", tree[1].Name)
	require.Len(t, tree[1].Children, 2)
	assert.Equal(t, "A1", tree[1].Children[0].Name)

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	filters, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, filters)
	names, err := store.LegacyFilterMap(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBuildTree_BrokenCycle(t *testing.T) {
	filters := []models.Filter{
		{ID: "x", Name: "X", Parent: "y"},
		{ID: "y", Name: "Y", Parent: "x"},
		{ID: "z", Name: "Z", Parent: "gone"},
	}

	tree := BuildTree(filters)

	require.Len(t, tree, 2)
	assert.Equal(t, "z", tree[0].ID)
	assert.Equal(t, "x", tree[1].ID)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "y", tree[1].Children[0].ID)
	assert.Empty(t, tree[1].Children[0].Children)
}
