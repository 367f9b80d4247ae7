package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/authctx"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// acceptOnly returns a verifier that accepts exactly one token string.
func acceptOnly(valid string, id *auth.Identity) auth.TokenVerifier {
	return auth.TokenVerifierFunc(func(token string) (*auth.Identity, error) {
		if token == valid {
			return id, nil
		}
		return nil, errors.New("token rejected")
	})
}

func authRouter(verifier auth.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(verifier), func(c *gin.Context) {
		id := authctx.MustGet(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subject": id.ID, "role": string(id.Role)})
	})
	return r
}

func decodeErrorCode(t *testing.T, body []byte) apperrors.ErrorCode {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("response is not a valid error envelope: %v", err)
	}
	return resp.Error.Code
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestAuth_MissingHeader(t *testing.T) {
	r := authRouter(acceptOnly("good", &auth.Identity{ID: "u-1", Role: auth.RoleStudent}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/protected", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr.Body.Bytes()); code != apperrors.ErrCodeUnauthorized {
		t.Fatalf("error code = %s, want %s", code, apperrors.ErrCodeUnauthorized)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	r := authRouter(acceptOnly("good", &auth.Identity{ID: "u-1", Role: auth.RoleStudent}))

	for _, header := range []string{"good", "Bearer", "Token good", "bearer good"} {
		req := httptest.NewRequest("GET", "/protected", http.NoBody)
		req.Header.Set("Authorization", header)

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rr.Code)
		}
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	r := authRouter(acceptOnly("good", &auth.Identity{ID: "u-1", Role: auth.RoleStudent}))

	req := httptest.NewRequest("GET", "/protected", http.NoBody)
	req.Header.Set("Authorization", "Bearer forged")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	// The body must not leak why the token was rejected.
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a valid error envelope: %v", err)
	}
	if resp.Error.Message != apperrors.Unauthorized("").Message {
		t.Fatalf("unexpected message %q", resp.Error.Message)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	r := authRouter(acceptOnly("good", &auth.Identity{ID: "u-1", Email: "a@b.c", Role: auth.RoleAdmin}))

	req := httptest.NewRequest("GET", "/protected", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["subject"] != "u-1" || body["role"] != "admin" {
		t.Fatalf("handler saw wrong identity: %v", body)
	}
}

// ---------------------------------------------------------------------------
// RequireRole
// ---------------------------------------------------------------------------

func roleRouter(verifier auth.TokenVerifier, required auth.Role) *gin.Engine {
	r := gin.New()
	r.GET("/guarded", middleware.Auth(verifier), middleware.RequireRole(required), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRole_NoIdentity(t *testing.T) {
	r := gin.New()
	// Guard mounted without Auth in front: must refuse, not panic.
	r.GET("/guarded", middleware.RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/guarded", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireRole_ExactMatchOnly(t *testing.T) {
	tests := []struct {
		name     string
		role     auth.Role
		required auth.Role
		want     int
	}{
		{"admin on admin route", auth.RoleAdmin, auth.RoleAdmin, http.StatusOK},
		{"student on student route", auth.RoleStudent, auth.RoleStudent, http.StatusOK},
		{"student on admin route", auth.RoleStudent, auth.RoleAdmin, http.StatusForbidden},
		{"admin on student route", auth.RoleAdmin, auth.RoleStudent, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := roleRouter(acceptOnly("tok", &auth.Identity{ID: "u-1", Role: tt.role}), tt.required)

			req := httptest.NewRequest("GET", "/guarded", http.NoBody)
			req.Header.Set("Authorization", "Bearer tok")

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want == http.StatusForbidden {
				if code := decodeErrorCode(t, rr.Body.Bytes()); code != apperrors.ErrCodeForbidden {
					t.Fatalf("error code = %s, want %s", code, apperrors.ErrCodeForbidden)
				}
			}
		})
	}
}
