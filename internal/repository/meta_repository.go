package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio_gallery/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	metaTable    = "gallery_meta"
	optionsTable = "options"
)

// MetaRepo мета-поля галерей в Postgres. Каждое значение пишется целиком.
type MetaRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewMetaRepo(db *pgxpool.Pool) *MetaRepo {
	return &MetaRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MetaRepo) GetMeta(ctx context.Context, galleryID int64, key string) ([]byte, error) {
	const op = "repository.MetaRepo.GetMeta"

	query, args, err := r.sb.Select("meta_value").
		From(metaTable).
		Where(squirrel.Eq{"gallery_id": galleryID, "meta_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var value []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (r *MetaRepo) SetMeta(ctx context.Context, galleryID int64, key string, value []byte) error {
	const op = "repository.MetaRepo.SetMeta"

	query, args, err := r.sb.Insert(metaTable).
		Columns("gallery_id", "meta_key", "meta_value").
		Values(galleryID, key, string(value)).
		Suffix("ON CONFLICT (gallery_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *MetaRepo) DeleteMeta(ctx context.Context, galleryID int64, key string) error {
	const op = "repository.MetaRepo.DeleteMeta"

	query, args, err := r.sb.Delete(metaTable).
		Where(squirrel.Eq{"gallery_id": galleryID, "meta_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OptionRepo глобальные опции в Postgres.
type OptionRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewOptionRepo(db *pgxpool.Pool) *OptionRepo {
	return &OptionRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *OptionRepo) GetOption(ctx context.Context, name string) ([]byte, error) {
	const op = "repository.OptionRepo.GetOption"

	query, args, err := r.sb.Select("value").From(optionsTable).Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var value []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (r *OptionRepo) SetOption(ctx context.Context, name string, value []byte) error {
	const op = "repository.OptionRepo.SetOption"

	query, args, err := r.sb.Insert(optionsTable).
		Columns("name", "value").
		Values(name, string(value)).
		Suffix("ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *OptionRepo) DeleteOption(ctx context.Context, name string) error {
	const op = "repository.OptionRepo.DeleteOption"

	query, args, err := r.sb.Delete(optionsTable).Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OptionNames имена опций с данным префиксом, по возрастанию.
func (r *OptionRepo) OptionNames(ctx context.Context, prefix string) ([]string, error) {
	const op = "repository.OptionRepo.OptionNames"

	query, args, err := r.sb.Select("name").
		From(optionsTable).
		Where(squirrel.Like{"name": escapeLike(prefix) + "%"}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
