package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kbukum/studentms/internal/auth"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/user"
)

type userEnvelope struct {
	Data user.User `json:"data"`
}

type listEnvelope struct {
	Data []user.User `json:"data"`
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
}

func decodeUser(t *testing.T, body []byte) user.User {
	t.Helper()
	var env userEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decoding user response: %v", err)
	}
	return env.Data
}

func studentPayload(email string) map[string]any {
	return map[string]any{
		"full_name":       "Sam Student",
		"email":           email,
		"password":        "s3cret-pw-123",
		"course_of_study": "Physics",
		"enrollment_year": 2026,
	}
}

// ---------------------------------------------------------------------------
// Access control
// ---------------------------------------------------------------------------

func TestStudents_RequireAdminToken(t *testing.T) {
	env := newTestEnv(t)
	_, studentTok := env.seedUser(t, "student@example.com", "s3cret-pw-123", auth.RoleStudent)

	// No token.
	if rr := env.do(t, "GET", "/api/students", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rr.Code)
	}
	// Valid token, wrong role.
	rr := env.do(t, "GET", "/api/students", studentTok, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("student token: expected 403, got %d", rr.Code)
	}
	if e := decodeError(t, rr.Body.Bytes()); e.Code != apperrors.ErrCodeForbidden {
		t.Fatalf("error code = %s, want %s", e.Code, apperrors.ErrCodeForbidden)
	}
}

// ---------------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------------

func TestStudents_CreateListGet(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.seedUser(t, "admin@example.com", "s3cret-pw-123", auth.RoleAdmin)

	created := env.do(t, "POST", "/api/students", adminTok, studentPayload("sam@example.com"))
	if created.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", created.Code, created.Body.String())
	}
	sam := decodeUser(t, created.Body.Bytes())
	if sam.Role != auth.RoleStudent {
		t.Fatalf("admin-created account role = %q, want student", sam.Role)
	}
	// The response must not leak the stored hash.
	if created.Body.String() != "" && json.Valid(created.Body.Bytes()) {
		var raw map[string]map[string]any
		_ = json.Unmarshal(created.Body.Bytes(), &raw)
		if _, leaked := raw["data"]["password_hash"]; leaked {
			t.Fatal("password hash leaked in response")
		}
	}

	env.do(t, "POST", "/api/students", adminTok, studentPayload("ada@example.com"))

	list := env.do(t, "GET", "/api/students", adminTok, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	var env2 listEnvelope
	if err := json.Unmarshal(list.Body.Bytes(), &env2); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if env2.Meta.Count != 2 || len(env2.Data) != 2 {
		t.Fatalf("list count = %d/%d, want 2", env2.Meta.Count, len(env2.Data))
	}
	// Newest first; admins are not listed.
	if env2.Data[0].Email != "ada@example.com" {
		t.Fatalf("expected newest first, got %q", env2.Data[0].Email)
	}

	got := env.do(t, "GET", "/api/students/"+sam.ID.String(), adminTok, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", got.Code)
	}
	if u := decodeUser(t, got.Body.Bytes()); u.Email != "sam@example.com" {
		t.Fatalf("get returned %q", u.Email)
	}
}

func TestStudents_GetRejectsBadIDs(t *testing.T) {
	env := newTestEnv(t)
	admin, adminTok := env.seedUser(t, "admin@example.com", "s3cret-pw-123", auth.RoleAdmin)

	if rr := env.do(t, "GET", "/api/students/not-a-uuid", adminTok, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rr.Code)
	}
	if rr := env.do(t, "GET", "/api/students/8a1d2f34-0000-4000-8000-000000000000", adminTok, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rr.Code)
	}
	// An existing record that is not a student is refused, not returned.
	if rr := env.do(t, "GET", "/api/students/"+admin.ID.String(), adminTok, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("admin id: expected 400, got %d", rr.Code)
	}
}

func TestStudents_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.seedUser(t, "admin@example.com", "s3cret-pw-123", auth.RoleAdmin)

	created := env.do(t, "POST", "/api/students", adminTok, studentPayload("sam@example.com"))
	sam := decodeUser(t, created.Body.Bytes())

	updated := env.do(t, "PUT", "/api/students/"+sam.ID.String(), adminTok, map[string]any{
		"full_name":       "Sam Q. Student",
		"email":           "sam@example.com",
		"course_of_study": "Mathematics",
		"enrollment_year": 2027,
		"status":          "inactive",
	})
	if updated.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", updated.Code, updated.Body.String())
	}
	u := decodeUser(t, updated.Body.Bytes())
	if u.FullName != "Sam Q. Student" || u.CourseOfStudy != "Mathematics" || u.Status != "inactive" {
		t.Fatalf("update not applied: %+v", u)
	}

	deleted := env.do(t, "DELETE", "/api/students/"+sam.ID.String(), adminTok, nil)
	if deleted.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", deleted.Code)
	}
	if rr := env.do(t, "GET", "/api/students/"+sam.ID.String(), adminTok, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestStudents_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.seedUser(t, "admin@example.com", "s3cret-pw-123", auth.RoleAdmin)

	created := env.do(t, "POST", "/api/students", adminTok, studentPayload("sam@example.com"))
	sam := decodeUser(t, created.Body.Bytes())

	rr := env.do(t, "PUT", "/api/students/"+sam.ID.String()+"/role", adminTok, map[string]any{"role": "admin"})
	if rr.Code != http.StatusOK {
		t.Fatalf("change role: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	stored, err := env.store.FindByID(context.Background(), sam.ID)
	if err != nil || stored == nil {
		t.Fatalf("lookup after role change: %v", err)
	}
	if stored.Role != auth.RoleAdmin {
		t.Fatalf("stored role = %q, want admin", stored.Role)
	}

	// Unknown roles are refused.
	if rr := env.do(t, "PUT", "/api/students/"+sam.ID.String()+"/role", adminTok, map[string]any{"role": "superuser"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad role: expected 400, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestProfile_GetAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	seeded, tok := env.seedUser(t, "jane@example.com", "s3cret-pw-123", auth.RoleStudent)

	got := env.do(t, "GET", "/api/users/profile", tok, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", got.Code)
	}
	if u := decodeUser(t, got.Body.Bytes()); u.ID != seeded.ID {
		t.Fatalf("profile returned wrong record: %s", u.ID)
	}

	updated := env.do(t, "PUT", "/api/users/profile", tok, map[string]any{
		"full_name":       "Jane Q. Doe",
		"email":           "jane@example.com",
		"course_of_study": "Chemistry",
	})
	if updated.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d: %s", updated.Code, updated.Body.String())
	}
	if u := decodeUser(t, updated.Body.Bytes()); u.FullName != "Jane Q. Doe" {
		t.Fatalf("update not applied: %+v", u)
	}
}

func TestProfile_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, "GET", "/api/users/profile", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestProfile_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "other@example.com", "s3cret-pw-123", auth.RoleStudent)
	_, tok := env.seedUser(t, "jane@example.com", "s3cret-pw-123", auth.RoleStudent)

	rr := env.do(t, "PUT", "/api/users/profile", tok, map[string]any{
		"full_name": "Jane Doe",
		"email":     "other@example.com",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProfile_DeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	seeded, tok := env.seedUser(t, "jane@example.com", "s3cret-pw-123", auth.RoleStudent)

	if err := env.store.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The token is still cryptographically valid, but the record is gone.
	rr := env.do(t, "GET", "/api/users/profile", tok, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
