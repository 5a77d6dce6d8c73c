package holder

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryRepository())
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Username != "alice" {
		t.Fatalf("expected username alice, got %s", view.Username)
	}

	h, err := svc.Authenticate(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if h.ID != view.ID {
		t.Fatalf("authenticated wrong holder: %s != %s", h.ID, view.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "other"}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestAddRoleConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddRole(ctx, "ADMIN"); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if err := svc.AddRole(ctx, "ADMIN"); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
}

func TestCreateDropsUnknownRoles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddRole(ctx, "ADMIN"); err != nil {
		t.Fatalf("add role: %v", err)
	}
	view, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret", Roles: []string{"ADMIN", "WIZARD"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(view.Roles) != 1 || view.Roles[0] != "ADMIN" {
		t.Fatalf("unregistered roles must be dropped, got %v", view.Roles)
	}
}

func TestUpdateReassignsRoles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, role := range []string{"ADMIN", "AUDIT"} {
		if err := svc.AddRole(ctx, role); err != nil {
			t.Fatalf("add role: %v", err)
		}
	}
	view, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret", Roles: []string{"ADMIN"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, view.ID, UpdateInput{Roles: []string{"AUDIT"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Roles) != 1 || updated.Roles[0] != "AUDIT" {
		t.Fatalf("expected roles [AUDIT], got %v", updated.Roles)
	}
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newPass := "changed"
	if _, err := svc.Update(ctx, view.ID, UpdateInput{Password: &newPass}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "changed"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestListFiltersByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddRole(ctx, "ADMIN"); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "alice", Password: "secret", Roles: []string{"ADMIN"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "bob", Password: "secret"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	admins, err := svc.List(ctx, Filter{Roles: []string{"ADMIN"}}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(admins) != 1 || admins[0].Username != "alice" {
		t.Fatalf("expected only alice, got %+v", admins)
	}

	all, err := svc.List(ctx, Filter{}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("empty filter must return everyone, got %d", len(all))
	}
}

func TestListFiltersByUsernameSubstring(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "alicia", "bob"} {
		if _, err := svc.Create(ctx, CreateInput{Username: name, Password: "secret"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	views, err := svc.List(ctx, Filter{Username: "ali"}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected alice and alicia, got %+v", views)
	}
}

func TestGetByUsernameNotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
