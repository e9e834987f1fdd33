package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// Page selects one page of a list query (1-based)
type Page struct {
	Page int
	Size int
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// paginate applies LIMIT/OFFSET for a 1-based page
func paginate(b squirrel.SelectBuilder, p Page) squirrel.SelectBuilder {
	w := helpers.NewWindow(p.Page, p.Size)
	return b.Limit(w.Limit()).Offset(w.Offset())
}

// count runs a COUNT(*) query built by the caller
func count(ctx context.Context, q db.Querier, b squirrel.SelectBuilder, what string) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error building count SQL")
		return 0, fmt.Errorf("failed to build count %s query: %w", what, err)
	}

	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error executing count query")
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return total, nil
}

// exists runs SELECT EXISTS(<subquery>)
func exists(ctx context.Context, q db.Querier, sub squirrel.SelectBuilder, what string) (bool, error) {
	sql, args, err := sub.Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build %s exists query: %w", what, err)
	}

	var found bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		logger.Error().Err(err).Str("entity", what).Msg("Error executing exists query")
		return false, fmt.Errorf("failed to check %s: %w", what, err)
	}
	return found, nil
}

// exec runs a built statement and returns the affected row count
func exec(ctx context.Context, q db.Querier, b squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("operation", what).Msg("Error building SQL")
		return 0, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// softDelete marks an active row as deleted. It returns notFound when no active row matched.
func softDelete(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, table string, id, deletedBy int64, notFound error) error {
	n, err := exec(ctx, q, sb.Update(table).
		Set("deleted_at", time.Now()).
		Set("deleted_by_id", deletedBy).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}), "soft delete "+table)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Int64("id", id).Msg("Error executing soft delete")
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// queryRow builds and runs a single-row query, mapping pgx.ErrNoRows to notFound
func queryRow(ctx context.Context, q db.Querier, b squirrel.SelectBuilder, notFound error, scan func(pgx.Row) error) error {
	sql, args, err := b.Limit(1).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := scan(q.QueryRow(ctx, sql, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return err
	}
	return nil
}

// queryRows builds and runs a multi-row query, calling scan for every row
func queryRows(ctx context.Context, q db.Querier, b squirrel.SelectBuilder, scan func(pgx.Rows) error) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
