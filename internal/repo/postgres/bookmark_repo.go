package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

var (
	ErrBookmarkExists   = errors.New("bookmark already exists")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// BookmarkRepo is a unique-pair set over (user, course). The unique index
// on (user_id, course_kind, course_id) arbitrates concurrent adds.
type BookmarkRepo struct {
	pool *pgxpool.Pool
}

func NewBookmarkRepo(pool *pgxpool.Pool) *BookmarkRepo {
	return &BookmarkRepo{pool: pool}
}

func (r *BookmarkRepo) Create(ctx context.Context, userID int64, course model.CourseRef) (model.Bookmark, error) {
	if r.pool == nil {
		return model.Bookmark{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || course.ID <= 0 {
		return model.Bookmark{}, fmt.Errorf("invalid bookmark payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO bookmarks (
	user_id,
	course_kind,
	course_id,
	created_at
) VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id, course_kind, course_id) DO NOTHING
RETURNING id, user_id, course_kind, course_id, created_at
`, userID, course.Kind, course.ID)

	bookmark, err := scanBookmark(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bookmark{}, ErrBookmarkExists
		}
		return model.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	return bookmark, nil
}

func (r *BookmarkRepo) Delete(ctx context.Context, userID int64, course model.CourseRef) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || course.ID <= 0 {
		return fmt.Errorf("invalid bookmark payload")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM bookmarks
WHERE user_id = $1
  AND course_kind = $2
  AND course_id = $3
`, userID, course.Kind, course.ID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookmarkNotFound
	}

	return nil
}

func (r *BookmarkRepo) ListByUser(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, course_kind, course_id, created_at
FROM bookmarks
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		bookmark, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark row: %w", err)
		}
		bookmarks = append(bookmarks, bookmark)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmark rows: %w", err)
	}

	return bookmarks, nil
}

func scanBookmark(row pgx.Row) (model.Bookmark, error) {
	var (
		bookmark model.Bookmark
		kind     string
	)
	if err := row.Scan(
		&bookmark.ID,
		&bookmark.UserID,
		&kind,
		&bookmark.Course.ID,
		&bookmark.CreatedAt,
	); err != nil {
		return model.Bookmark{}, err
	}
	bookmark.Course.Kind = enums.CourseKind(kind)
	return bookmark, nil
}
