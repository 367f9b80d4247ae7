package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/studentms/internal/auth/authctx"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/server"
	"github.com/kbukum/studentms/internal/user"
	"github.com/kbukum/studentms/internal/validation"
)

// ProfileHandler implements the authenticated self-service endpoints.
type ProfileHandler struct {
	store RecordStore
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(store RecordStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// UpdateProfileRequest is the profile update payload.
type UpdateProfileRequest struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"max=32"`
	CourseOfStudy  string `json:"course_of_study" validate:"max=255"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1900,lte=2200"`
}

// GetProfile returns the current account's record.
//
// The identity comes from the token; the record is looked up fresh, so a
// deleted account gets a 404 here even while its token is still valid.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	identity := authctx.MustGet(c.Request.Context())

	id, err := uuid.Parse(identity.ID)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	u, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if u == nil {
		server.RespondWithError(c, apperrors.NotFound("user", identity.ID))
		return
	}
	server.RespondOK(c, u)
}

// UpdateProfile replaces the current account's profile fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity := authctx.MustGet(c.Request.Context())

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	// Email-taken fast path when changing address; the unique constraint
	// still decides races.
	if req.Email != identity.Email {
		existing, err := h.store.FindByEmail(ctx, req.Email)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		if existing != nil {
			server.RespondWithError(c, apperrors.Conflict("Email already taken."))
			return
		}
	}

	id, err := uuid.Parse(identity.ID)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	updated, err := h.store.Update(ctx, id, user.Update{
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
	if updated == nil {
		server.RespondWithError(c, apperrors.NotFound("user", identity.ID))
		return
	}
	server.RespondOK(c, updated)
}
