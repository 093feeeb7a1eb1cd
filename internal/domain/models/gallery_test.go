package models

import (
	"testing"

	"portfolio_gallery/internal/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func galleryWith(ids ...int64) *Gallery {
	g := NewGallery(1)
	for _, id := range ids {
		g.AddImages(Image{ID: id})
	}
	return g
}

func TestGallery_AddImages_RejectsDuplicates(t *testing.T) {
	g := galleryWith(10, 20)

	added := g.AddImages(Image{ID: 20, Title: "again"}, Image{ID: 30}, Image{ID: 0})

	assert.Equal(t, 1, added)
	assert.Equal(t, []int64{10, 20, 30}, g.ImageIDs())
	assert.Equal(t, "", g.Images[1].Title)
}

func TestGallery_AddImages_Normalizes(t *testing.T) {
	g := NewGallery(1)

	g.AddImages(Image{ID: 5, Title: "<i>Sunset</i>", Type: "gif", Filters: []string{"nature", " nature ", ""}})

	img := g.Images[0]
	assert.Equal(t, "Sunset", img.Title)
	assert.Equal(t, ImageTypeImage, img.Type)
	assert.Equal(t, int64(5), img.OriginalID)
	assert.Equal(t, []string{"nature"}, img.Filters)
}

func TestGallery_ReorderImages(t *testing.T) {
	tests := []struct {
		name  string
		start []int64
		order []int64
		want  []int64
	}{
		{name: "full order", start: []int64{1, 2, 3}, order: []int64{3, 1, 2}, want: []int64{3, 1, 2}},
		{name: "omitted appended", start: []int64{1, 2, 3, 4}, order: []int64{4, 2}, want: []int64{4, 2, 1, 3}},
		{name: "unknown ids ignored", start: []int64{1, 2}, order: []int64{9, 2}, want: []int64{2, 1}},
		{name: "repeated id placed once", start: []int64{1, 2}, order: []int64{2, 2, 1}, want: []int64{2, 1}},
		{name: "empty order", start: []int64{1, 2}, order: nil, want: []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := galleryWith(tt.start...)
			g.ReorderImages(tt.order)
			assert.Equal(t, tt.want, g.ImageIDs())
		})
	}
}

func TestGallery_RemoveImages(t *testing.T) {
	g := galleryWith(1, 2, 3)

	removed := g.RemoveImages(2, 7)

	assert.Equal(t, 1, removed)
	assert.Equal(t, []int64{1, 3}, g.ImageIDs())
}

func TestGallery_UpdateImage(t *testing.T) {
	g := galleryWith(1, 2)
	title := "  New <b>title</b> "
	link := "javascript:void(0)"

	img, err := g.UpdateImage(2, ImagePatch{Title: &title, Link: &link})
	require.NoError(t, err)

	assert.Equal(t, "New title", img.Title)
	assert.Equal(t, "", img.Link)
	assert.Equal(t, img, g.Images[1])

	_, err = g.UpdateImage(99, ImagePatch{Title: &title})
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestGallery_SetSetting(t *testing.T) {
	g := NewGallery(1)

	require.NoError(t, g.SetSetting("columns_lg", "4"))
	assert.Equal(t, 4, g.Setting("columns_lg"))

	err := g.SetSetting("lightbox", "nope")
	var cerr *schema.CoercionError
	assert.ErrorAs(t, err, &cerr)
	assert.Equal(t, "built-in", g.Setting("lightbox"))

	err = g.SetSetting("unknown", 1)
	assert.ErrorIs(t, err, schema.ErrUnknownKey)
	_, ok := g.Settings["unknown"]
	assert.False(t, ok)
}

func TestGallery_Clone(t *testing.T) {
	g := galleryWith(1)
	g.Images[0].Filters = []string{"a"}

	c := g.Clone(2)
	c.Images[0].Filters[0] = "b"
	c.Settings["gap"] = 99

	assert.Equal(t, int64(2), c.ID)
	assert.Equal(t, "a", g.Images[0].Filters[0])
	assert.Equal(t, 15, g.Settings["gap"])
}

func TestUser_CanEditGallery(t *testing.T) {
	own := GalleryRecord{ID: 1, Author: "ann"}

	assert.True(t, User{Name: "root", Role: RoleAdministrator}.CanEditGallery(own))
	assert.True(t, User{Name: "ed", Role: RoleEditor}.CanEditGallery(own))
	assert.True(t, User{Name: "ann", Role: RoleAuthor}.CanEditGallery(own))
	assert.False(t, User{Name: "bob", Role: RoleAuthor}.CanEditGallery(own))
	assert.False(t, User{Name: "ann", Role: "subscriber"}.CanEditGallery(own))
}
