package models

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
)

// User пользователь админки. Хранится в сессии после входа.
type User struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// CanManageGalleries создание галерей, фильтры, миграция.
func (u User) CanManageGalleries() bool {
	return u.Role == RoleAdministrator || u.Role == RoleEditor
}

func (u User) CanDeleteGalleries() bool {
	return u.Role == RoleAdministrator || u.Role == RoleEditor
}

// CanEditGallery автор может редактировать только свои галереи.
func (u User) CanEditGallery(g GalleryRecord) bool {
	switch u.Role {
	case RoleAdministrator, RoleEditor:
		return true
	case RoleAuthor:
		return g.Author != "" && g.Author == u.Name
	}
	return false
}
