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
	ErrCourseNotFound = errors.New("course not found")
	ErrTopicNotFound  = errors.New("topic not found")
)

// CatalogRepo reads the course catalog. The two course branches live in
// separate tables (programs, advanced_programs) with identical columns;
// syllabus modules and topics are shared tables tagged with course_kind.
// The catalog is read-only from the core's perspective: the admin dashboard
// writes it through its own excluded surface.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

const courseColumns = `id, category_id, title, subtitle, description, duration, batch_starts, available_slots, rating, is_best_seller, icon, price_cents, discount_percentage, created_at`

func courseTable(kind enums.CourseKind) string {
	if kind == enums.CourseKindAdvanced {
		return "advanced_programs"
	}
	return "programs"
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name, description, icon
FROM categories
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.Icon); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

func (r *CatalogRepo) ListCourses(ctx context.Context, kind enums.CourseKind, categoryID *int64) ([]model.Course, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	query := `
SELECT ` + courseColumns + `
FROM ` + courseTable(kind) + `
`
	args := []any{}
	if categoryID != nil {
		query += "WHERE category_id = $1\n"
		args = append(args, *categoryID)
	}
	query += "ORDER BY is_best_seller DESC, rating DESC, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		course, err := scanCourse(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course rows: %w", err)
	}

	return courses, nil
}

func (r *CatalogRepo) GetCourse(ctx context.Context, ref model.CourseRef) (model.Course, error) {
	if r.pool == nil {
		return model.Course{}, fmt.Errorf("postgres pool is nil")
	}
	if ref.ID <= 0 {
		return model.Course{}, ErrCourseNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+courseColumns+`
FROM `+courseTable(ref.Kind)+`
WHERE id = $1
LIMIT 1
`, ref.ID)

	course, err := scanCourse(row, ref.Kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Course{}, ErrCourseNotFound
		}
		return model.Course{}, fmt.Errorf("get course: %w", err)
	}

	return course, nil
}

func (r *CatalogRepo) GetSyllabus(ctx context.Context, ref model.CourseRef) ([]model.SyllabusModule, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if ref.ID <= 0 {
		return nil, ErrCourseNotFound
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	m.module_title,
	t.id,
	t.syllabus_id,
	t.title,
	t.is_free_trial,
	t.is_intro,
	t.video_object_key,
	t.duration_seconds
FROM syllabus_modules m
LEFT JOIN topics t ON t.syllabus_id = m.id
WHERE m.course_kind = $1
  AND m.course_id = $2
ORDER BY m.position, m.id, t.position, t.id
`, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("get syllabus: %w", err)
	}
	defer rows.Close()

	var modules []model.SyllabusModule
	index := map[int64]int{}
	for rows.Next() {
		var (
			moduleID    int64
			moduleTitle string
			topicID     *int64
			syllabusID  *int64
			title       *string
			isFreeTrial *bool
			isIntro     *bool
			objectKey   *string
			duration    *int64
		)
		if err := rows.Scan(&moduleID, &moduleTitle, &topicID, &syllabusID, &title, &isFreeTrial, &isIntro, &objectKey, &duration); err != nil {
			return nil, fmt.Errorf("scan syllabus row: %w", err)
		}

		pos, ok := index[moduleID]
		if !ok {
			modules = append(modules, model.SyllabusModule{ID: moduleID, ModuleTitle: moduleTitle})
			pos = len(modules) - 1
			index[moduleID] = pos
		}

		if topicID == nil {
			continue
		}
		topic := model.Topic{
			Ref:             model.TopicRef{Kind: ref.Kind, ID: *topicID},
			SyllabusID:      *syllabusID,
			DurationSeconds: duration,
		}
		if title != nil {
			topic.Title = *title
		}
		if isFreeTrial != nil {
			topic.IsFreeTrial = *isFreeTrial
		}
		if isIntro != nil {
			topic.IsIntro = *isIntro
		}
		if objectKey != nil {
			topic.VideoObjectKey = *objectKey
		}
		modules[pos].Topics = append(modules[pos].Topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate syllabus rows: %w", err)
	}

	return modules, nil
}

// GetTopic resolves a topic and the course that owns it
// (topic -> syllabus module -> course).
func (r *CatalogRepo) GetTopic(ctx context.Context, ref model.TopicRef) (model.Topic, model.CourseRef, error) {
	if r.pool == nil {
		return model.Topic{}, model.CourseRef{}, fmt.Errorf("postgres pool is nil")
	}
	if ref.ID <= 0 {
		return model.Topic{}, model.CourseRef{}, ErrTopicNotFound
	}

	var (
		topic    model.Topic
		courseID int64
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	t.id,
	t.syllabus_id,
	t.title,
	t.is_free_trial,
	t.is_intro,
	t.video_object_key,
	t.duration_seconds,
	m.course_id
FROM topics t
JOIN syllabus_modules m ON m.id = t.syllabus_id
WHERE t.id = $1
  AND m.course_kind = $2
LIMIT 1
`, ref.ID, ref.Kind).Scan(
		&topic.Ref.ID,
		&topic.SyllabusID,
		&topic.Title,
		&topic.IsFreeTrial,
		&topic.IsIntro,
		&topic.VideoObjectKey,
		&topic.DurationSeconds,
		&courseID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Topic{}, model.CourseRef{}, ErrTopicNotFound
		}
		return model.Topic{}, model.CourseRef{}, fmt.Errorf("get topic: %w", err)
	}

	topic.Ref.Kind = ref.Kind
	return topic, model.CourseRef{Kind: ref.Kind, ID: courseID}, nil
}

func (r *CatalogRepo) GetSnapshot(ctx context.Context, ref model.CourseRef) (model.CourseSnapshot, error) {
	course, err := r.GetCourse(ctx, ref)
	if err != nil {
		return model.CourseSnapshot{}, err
	}

	return model.CourseSnapshot{
		Ref:                  course.Ref,
		Title:                course.Title,
		Subtitle:             course.Subtitle,
		Icon:                 course.Icon,
		PriceCents:           course.PriceCents,
		DiscountPercentage:   course.DiscountPercentage,
		DiscountedPriceCents: course.DiscountedPriceCents(),
	}, nil
}

func scanCourse(row pgx.Row, kind enums.CourseKind) (model.Course, error) {
	var course model.Course
	if err := row.Scan(
		&course.Ref.ID,
		&course.CategoryID,
		&course.Title,
		&course.Subtitle,
		&course.Description,
		&course.Duration,
		&course.BatchStarts,
		&course.AvailableSlots,
		&course.Rating,
		&course.IsBestSeller,
		&course.Icon,
		&course.PriceCents,
		&course.DiscountPercentage,
		&course.CreatedAt,
	); err != nil {
		return model.Course{}, err
	}
	course.Ref.Kind = kind
	return course, nil
}
