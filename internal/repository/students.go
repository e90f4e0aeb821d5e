package repository

import (
	"context"
	"database/sql"

	"boxoffice/internal/database"
	"boxoffice/internal/models"
)

type StudentRepository struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `
		SELECT id, student_name, responsible_name, phone, created_at, updated_at
		FROM students
		ORDER BY student_name`

	rows, err := r.db.QueryWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.StudentName, &s.ResponsibleName, &s.Phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	s := &models.Student{}
	query := `
		SELECT id, student_name, responsible_name, phone, created_at, updated_at
		FROM students
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.StudentName, &s.ResponsibleName, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return s, err
}

func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	query := `
		INSERT INTO students (student_name, responsible_name, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query, s.StudentName, s.ResponsibleName, s.Phone).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update writes all fields; returns false when the student does not exist
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) (bool, error) {
	query := `
		UPDATE students
		SET student_name = $1, responsible_name = $2, phone = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, s.StudentName, s.ResponsibleName, s.Phone, s.ID).Scan(&s.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Delete keeps existing sales; their student_id is nulled by the foreign key
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
