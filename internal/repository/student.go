package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/model"
)

// StudentUpdate carries a partial update: nil fields are left unchanged.
// created_at is immutable and deliberately absent.
type StudentUpdate struct {
	Name  *string
	Age   *int
	Grade *string
	Email *string
}

// ListStudents returns one page of students plus the total match count.
// An empty search returns all students; otherwise it is a
// case-insensitive substring match against name OR email.
// Results are newest-first by creation time.
func (r *Repository) ListStudents(ctx context.Context, search string, page, limit int) ([]*model.Student, int64, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	offset := (page - 1) * limit
	pattern := "%" + escapeLike(search) + "%"

	query := `
		SELECT id::text, name, age, grade, email, created_at
		FROM students
		WHERE ($1 = '' OR name ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, search, pattern, limit, offset)
	if err != nil {
		return nil, 0, classifyTimeout(fmt.Errorf("failed to list students: %w", err))
	}
	defer rows.Close()

	students := make([]*model.Student, 0, limit)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classifyTimeout(fmt.Errorf("failed to read students: %w", err))
	}

	countQuery := `
		SELECT COUNT(*)
		FROM students
		WHERE ($1 = '' OR name ILIKE $2 OR email ILIKE $2)
	`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, search, pattern).Scan(&total); err != nil {
		return nil, 0, classifyTimeout(fmt.Errorf("failed to count students: %w", err))
	}

	return students, total, nil
}

// GetStudent retrieves a single student by id.
func (r *Repository) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	query := `
		SELECT id::text, name, age, grade, email, created_at
		FROM students
		WHERE id = $1::uuid
	`

	var student model.Student
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.Age,
		&student.Grade,
		&student.Email,
		&student.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "Student not found")
		}
		return nil, classifyTimeout(fmt.Errorf("failed to get student: %w", err))
	}

	return &student, nil
}

// CreateStudent inserts a new student. The id and created_at come from
// the store; the email is stored lowercased. A unique-index collision
// on the email surfaces as a duplicate error, never a generic failure.
func (r *Repository) CreateStudent(ctx context.Context, student *model.Student) (*model.Student, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	query := `
		INSERT INTO students (name, age, grade, email)
		VALUES ($1, $2, $3, lower($4))
		RETURNING id::text, name, age, grade, email, created_at
	`

	var created model.Student
	err := r.pool.QueryRow(ctx, query,
		student.Name,
		student.Age,
		student.Grade,
		student.Email,
	).Scan(
		&created.ID,
		&created.Name,
		&created.Age,
		&created.Grade,
		&created.Email,
		&created.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindDuplicate, "Email already exists", err)
		}
		return nil, classifyTimeout(fmt.Errorf("failed to create student: %w", err))
	}

	return &created, nil
}

// UpdateStudent applies a partial update and returns the updated record.
func (r *Repository) UpdateStudent(ctx context.Context, id string, update StudentUpdate) (*model.Student, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if update.Email != nil {
		lowered := strings.ToLower(*update.Email)
		update.Email = &lowered
	}

	query := `
		UPDATE students
		SET name  = COALESCE($2, name),
		    age   = COALESCE($3, age),
		    grade = COALESCE($4, grade),
		    email = COALESCE($5, email)
		WHERE id = $1::uuid
		RETURNING id::text, name, age, grade, email, created_at
	`

	var updated model.Student
	err := r.pool.QueryRow(ctx, query,
		id,
		update.Name,
		update.Age,
		update.Grade,
		update.Email,
	).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Age,
		&updated.Grade,
		&updated.Email,
		&updated.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "Student not found")
		}
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindDuplicate, "Email already exists", err)
		}
		return nil, classifyTimeout(fmt.Errorf("failed to update student: %w", err))
	}

	return &updated, nil
}

// DeleteStudent removes a student by id.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1::uuid`, id)
	if err != nil {
		return classifyTimeout(fmt.Errorf("failed to delete student: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "Student not found")
	}

	return nil
}

// validateID rejects ids that are not in the store's expected format
// before any query runs.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Wrap(apperr.KindMalformedID, "Invalid ID format", err)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// scanStudent scans a row from pgx.Rows into a Student model.
func scanStudent(rows pgx.Rows) (*model.Student, error) {
	var student model.Student
	err := rows.Scan(
		&student.ID,
		&student.Name,
		&student.Age,
		&student.Grade,
		&student.Email,
		&student.CreatedAt,
	)
	return &student, err
}
