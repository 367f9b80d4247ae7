// Package handler implements the HTTP API: registration/login, the
// authenticated profile endpoints, and the admin-only student records
// endpoints.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/password"
	"github.com/kbukum/studentms/internal/server/middleware"
	"github.com/kbukum/studentms/internal/user"
)

// CredentialStore is the slice of the record store the auth flow needs.
//
// FindByEmail before Create is a fast-path check only: two concurrent
// registrations can both pass it, and the store's unique constraint decides
// the race by failing the later Create with ALREADY_EXISTS.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecordStore is the full store surface used by the profile and student
// handlers. *user.Store satisfies it.
type RecordStore interface {
	CredentialStore
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, upd user.Update) (*user.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) (*user.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*user.User, error)
	ListStudents(ctx context.Context) ([]user.User, error)
}

// TokenService issues and verifies bearer tokens. *token.Service satisfies it.
type TokenService interface {
	auth.TokenIssuer
	auth.TokenVerifier
}

// Deps bundles what the handlers need.
type Deps struct {
	Store  RecordStore
	Hasher password.Hasher
	Tokens TokenService
}

// Mount registers all API routes on the engine.
func Mount(r *gin.Engine, d Deps) {
	authn := middleware.Auth(d.Tokens)

	api := r.Group("/api")

	ah := NewAuthHandler(d.Store, d.Hasher, d.Tokens)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", ah.Register)
	authGroup.POST("/login", ah.Login)
	authGroup.POST("/logout", ah.Logout)

	ph := NewProfileHandler(d.Store)
	users := api.Group("/users", authn)
	users.GET("/profile", ph.GetProfile)
	users.PUT("/profile", ph.UpdateProfile)

	sh := NewStudentHandler(d.Store, d.Hasher)
	students := api.Group("/students", authn, middleware.RequireRole(auth.RoleAdmin))
	students.GET("", sh.List)
	students.GET("/:id", sh.Get)
	students.POST("", sh.Create)
	students.PUT("/:id", sh.Update)
	students.DELETE("/:id", sh.Delete)
	students.PUT("/:id/role", sh.ChangeRole)
}
