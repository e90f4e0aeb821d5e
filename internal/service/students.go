package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

type StudentService struct {
	students StudentStore
}

func NewStudentService(students StudentStore) *StudentService {
	return &StudentService{students: students}
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *StudentService) Create(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	student := &models.Student{
		StudentName:     strings.TrimSpace(req.StudentName),
		ResponsibleName: strings.TrimSpace(req.ResponsibleName),
		Phone:           strings.TrimSpace(req.Phone),
	}
	if err := validateStudent(student); err != nil {
		return nil, err
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return student, nil
}

// Update applies only the fields present in the request
func (s *StudentService) Update(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrNotFound
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, apperrors.ErrNotFound
	}

	if req.StudentName != nil {
		student.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.ResponsibleName != nil {
		student.ResponsibleName = strings.TrimSpace(*req.ResponsibleName)
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := validateStudent(student); err != nil {
		return nil, err
	}

	updated, err := s.students.Update(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	if !updated {
		return nil, apperrors.ErrNotFound
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrNotFound
	}

	deleted, err := s.students.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

func validateStudent(s *models.Student) error {
	if s.StudentName == "" || s.ResponsibleName == "" || s.Phone == "" {
		return fmt.Errorf("%w: student_name, responsible_name and phone are required", apperrors.ErrInvalidInput)
	}
	return nil
}
