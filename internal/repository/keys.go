package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// Ключи мета-полей галереи.
const (
	MetaSettings = "_pfg_v2_settings"
	MetaImages   = "_pfg_v2_images"
	MetaLegacy   = "awl_filterable_gallery_settings"
)

// Имена глобальных опций.
const (
	OptionFilters        = "pfg_filters"
	OptionLegacyFilters  = "awl_portfolio_filter_gallery_categories"
	OptionPluginSettings = "pfg_plugin_settings"
	OptionBackupPrefix   = "pfg_backup_"
)

const transientChunksPrefix = "pfg_chunks_"

func ChunksKey(galleryID int64) string {
	return transientChunksPrefix + strconv.FormatInt(galleryID, 10)
}

func BackupKey(galleryID int64, unixNano int64) string {
	return fmt.Sprintf("%s%d_%d", OptionBackupPrefix, galleryID, unixNano)
}

// BackupGalleryID достаёт id галереи из ключа резервной копии.
func BackupGalleryID(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, OptionBackupPrefix)
	if !ok {
		return 0, false
	}
	idPart, _, ok := strings.Cut(rest, "_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
