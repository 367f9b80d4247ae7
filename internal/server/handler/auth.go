package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/password"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/logger"
	"github.com/kbukum/studentms/internal/server"
	"github.com/kbukum/studentms/internal/user"
	"github.com/kbukum/studentms/internal/validation"
)

// AuthHandler implements registration, login, and logout.
type AuthHandler struct {
	store  CredentialStore
	hasher password.Hasher
	tokens auth.TokenIssuer
	log    *logger.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(store CredentialStore, hasher password.Hasher, tokens auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    logger.WithComponent("auth"),
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"max=32"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	Role           string `json:"role" validate:"omitempty,oneof=student admin"`
	CourseOfStudy  string `json:"course_of_study" validate:"max=255"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1900,lte=2200"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned by successful registration and login.
type SessionResponse struct {
	Token string       `json:"token"`
	User  user.Summary `json:"user"`
}

// Register creates an account and issues a token for it.
//
// Either the record is created and a token issued, or neither: a store
// failure means no token, and a (practically unreachable) signing failure
// rolls the freshly created record back.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	role := auth.RoleStudent
	if req.Role != "" {
		role, _ = auth.ParseRole(req.Role) // validator already constrained it
	}

	ctx := c.Request.Context()

	// Fast-path duplicate check; the unique constraint in Create remains
	// the authority under concurrent registration.
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
		Role:           role,
		CourseOfStudy:  req.CourseOfStudy,
		EnrollmentYear: req.EnrollmentYear,
		Status:         "active",
	}
	if err := h.store.Create(ctx, u); err != nil {
		server.RespondWithError(c, err)
		return
	}

	tok, err := h.tokens.IssueToken(u.Identity())
	if err != nil {
		if derr := h.store.Delete(ctx, u.ID); derr != nil {
			h.log.Error("Rollback of registered user failed", map[string]interface{}{
				"user_id": u.ID.String(),
				"error":   derr.Error(),
			})
		}
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	h.log.Info("User registered", map[string]interface{}{
		logger.FieldUserID: u.ID.String(),
		"role":             u.Role.String(),
	})
	server.RespondCreated(c, SessionResponse{Token: tok, User: u.Summary()})
}

// Login verifies credentials and issues a fresh token.
//
// Unknown email and wrong password produce the same "Invalid credentials"
// response so account existence is not leaked.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()

	u, err := h.store.FindByEmail(ctx, req.Email)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if u == nil {
		server.RespondWithError(c, apperrors.InvalidCredentials())
		return
	}

	if err := h.hasher.Verify(req.Password, u.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMalformedHash) {
			// Corrupted stored hash is a server problem, not a bad login.
			h.log.Error("Stored password hash is malformed", map[string]interface{}{
				logger.FieldUserID: u.ID.String(),
			})
			server.RespondWithError(c, apperrors.Internal(err))
			return
		}
		server.RespondWithError(c, apperrors.InvalidCredentials())
		return
	}

	tok, err := h.tokens.IssueToken(u.Identity())
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	h.log.Info("User logged in", map[string]interface{}{
		logger.FieldUserID: u.ID.String(),
	})
	server.RespondOK(c, SessionResponse{Token: tok, User: u.Summary()})
}

// Logout acknowledges the request. Tokens are self-contained and cannot be
// revoked server-side; the client simply discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	server.RespondOK(c, gin.H{"message": "Logout successful"})
}
