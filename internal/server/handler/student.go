package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/password"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/logger"
	"github.com/kbukum/studentms/internal/server"
	"github.com/kbukum/studentms/internal/user"
	"github.com/kbukum/studentms/internal/validation"
)

// StudentHandler implements the admin-only student record endpoints.
// The router mounts it behind Auth + RequireRole(admin).
type StudentHandler struct {
	store  RecordStore
	hasher password.Hasher
	log    *logger.Logger
}

// NewStudentHandler creates the student records handler.
func NewStudentHandler(store RecordStore, hasher password.Hasher) *StudentHandler {
	return &StudentHandler{
		store:  store,
		hasher: hasher,
		log:    logger.WithComponent("students"),
	}
}

// CreateStudentRequest is the admin student-creation payload.
// Role is not accepted: admin-created accounts are always students.
type CreateStudentRequest struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"max=32"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	CourseOfStudy  string `json:"course_of_study" validate:"max=255"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1900,lte=2200"`
}

// UpdateStudentRequest is the admin student-update payload.
type UpdateStudentRequest struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"max=32"`
	CourseOfStudy  string `json:"course_of_study" validate:"max=255"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1900,lte=2200"`
	Status         string `json:"status" validate:"omitempty,max=32"`
}

// ChangeRoleRequest is the role-change payload.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student admin"`
}

// List returns all student records, newest first.
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.store.ListStudents(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, students, &server.Meta{Count: len(students)})
}

// Get returns a single student record.
func (h *StudentHandler) Get(c *gin.Context) {
	u, ok := h.lookupStudent(c)
	if !ok {
		return
	}
	server.RespondOK(c, u)
}

// Create inserts a new student record. No token is issued; the student
// logs in with the credentials the admin set.
func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	if existing, err := h.store.FindByEmail(ctx, req.Email); err != nil {
		server.RespondWithError(c, err)
		return
	} else if existing != nil {
		server.RespondWithError(c, apperrors.AlreadyExists("user").WithDetail("field", "email"))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	u := &user.User{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		PasswordHash:   hash,
		Role:           auth.RoleStudent,
		CourseOfStudy:  req.CourseOfStudy,
		EnrollmentYear: req.EnrollmentYear,
		Status:         "active",
	}
	if err := h.store.Create(ctx, u); err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.log.Info("Student created", map[string]interface{}{
		logger.FieldUserID: u.ID.String(),
	})
	server.RespondCreated(c, u)
}

// Update replaces a student record's profile fields and, when provided,
// its status.
func (h *StudentHandler) Update(c *gin.Context) {
	existing, ok := h.lookupStudent(c)
	if !ok {
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	if req.Email != existing.Email {
		other, err := h.store.FindByEmail(ctx, req.Email)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		if other != nil {
			server.RespondWithError(c, apperrors.Conflict("Email already taken."))
			return
		}
	}

	updated, err := h.store.Update(ctx, existing.ID, user.Update{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		CourseOfStudy:  req.CourseOfStudy,
		EnrollmentYear: req.EnrollmentYear,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if req.Status != "" {
		updated, err = h.store.UpdateStatus(ctx, existing.ID, req.Status)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
	}
	server.RespondOK(c, updated)
}

// Delete removes a student record. Outstanding tokens for the account stay
// cryptographically valid until expiry, but record lookups will 404.
func (h *StudentHandler) Delete(c *gin.Context) {
	existing, ok := h.lookupStudent(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), existing.ID); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.Info("Student deleted", map[string]interface{}{
		logger.FieldUserID: existing.ID.String(),
	})
	server.RespondNoContent(c)
}

// ChangeRole switches an account between the student and admin roles.
func (h *StudentHandler) ChangeRole(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("role", "must be one of: student admin"))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.FindByID(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if existing == nil {
		server.RespondWithError(c, apperrors.NotFound("user", id.String()))
		return
	}

	updated, err := h.store.UpdateRole(ctx, id, role)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.log.Info("User role changed", map[string]interface{}{
		logger.FieldUserID: id.String(),
		"role":             role.String(),
	})
	server.RespondOK(c, updated.Summary())
}

// parseID extracts and validates the :id route parameter.
func (h *StudentHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("id", "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// lookupStudent resolves :id to an existing student record, responding with
// the appropriate error when it is missing or not a student.
func (h *StudentHandler) lookupStudent(c *gin.Context) (*user.User, bool) {
	id, ok := h.parseID(c)
	if !ok {
		return nil, false
	}
	u, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	if u == nil {
		server.RespondWithError(c, apperrors.NotFound("student", id.String()))
		return nil, false
	}
	if u.Role != auth.RoleStudent {
		server.RespondWithError(c, apperrors.Validation("User is not a student"))
		return nil, false
	}
	return u, true
}
