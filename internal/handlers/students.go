package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boxoffice/internal/models"
)

// ListStudents - GET /api/students
func (h *Handlers) ListStudents(c *gin.Context) {
	students, err := h.services.Students.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list students")
		return
	}

	c.JSON(http.StatusOK, students)
}

// CreateStudent - POST /api/students
// Добавить ученика-шаблон покупателя
func (h *Handlers) CreateStudent(c *gin.Context) {
	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.services.Students.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create student")
		return
	}

	c.JSON(http.StatusCreated, student)
}

// UpdateStudent - PUT /api/students/:id
func (h *Handlers) UpdateStudent(c *gin.Context) {
	var req models.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.services.Students.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update student")
		return
	}

	c.JSON(http.StatusOK, student)
}

// DeleteStudent - DELETE /api/students/:id
// Продажи ученика сохраняются без ссылки на него
func (h *Handlers) DeleteStudent(c *gin.Context) {
	if err := h.services.Students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete student")
		return
	}

	c.Status(http.StatusNoContent)
}
