package repository

import (
	"context"
	"errors"
	"fmt"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

const galleriesTable = "galleries"

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateGallery создает новую галерею и возвращает её ID
func (r *GalleryRepo) CreateGallery(ctx context.Context, rec models.GalleryRecord) (int64, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	query, args, err := r.sb.Insert(galleriesTable).
		Columns("title", "status", "author").
		Values(rec.Title, rec.Status, rec.Author).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// GetGallery возвращает галерею по ID
func (r *GalleryRepo) GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error) {
	const op = "repository.GalleryRepo.GetGallery"

	query, args, err := r.sb.Select("id", "title", "status", "author", "created_at", "updated_at").
		From(galleriesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	var rec models.GalleryRecord
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.Title,
		&rec.Status,
		&rec.Author,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// ListGalleries постраничный список. Пустой statuses означает все статусы.
func (r *GalleryRepo) ListGalleries(ctx context.Context, statuses []string, page, perPage int) ([]models.GalleryRecord, int, error) {
	const op = "repository.GalleryRepo.ListGalleries"

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	where := squirrel.And{}
	if len(statuses) > 0 {
		where = append(where, squirrel.Expr("status = ANY(?)", pq.Array(statuses)))
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From(galleriesTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	query, args, err := r.sb.Select("id", "title", "status", "author", "created_at", "updated_at").
		From(galleriesTable).
		Where(where).
		OrderBy("id DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.GalleryRecord
	for rows.Next() {
		var rec models.GalleryRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Status, &rec.Author, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return out, total, nil
}

// GalleryIDs все id по возрастанию, для пакетной миграции.
func (r *GalleryRepo) GalleryIDs(ctx context.Context) ([]int64, error) {
	const op = "repository.GalleryRepo.GalleryIDs"

	query, args, err := r.sb.Select("id").From(galleriesTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteGallery удаляет галерею вместе с мета-полями (ON DELETE CASCADE)
func (r *GalleryRepo) DeleteGallery(ctx context.Context, id int64) error {
	const op = "repository.GalleryRepo.DeleteGallery"

	query, args, err := r.sb.Delete(galleriesTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}
