package auth

import (
	"context"
	"testing"
)

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	if got := PrincipalFromContext(ctx); got != nil {
		t.Errorf("PrincipalFromContext() on empty context = %v, want nil", got)
	}
	if got := IdentifierFromContext(ctx); got != "" {
		t.Errorf("IdentifierFromContext() = %q, want empty", got)
	}
	if got := SubjectIDFromContext(ctx); got != 0 {
		t.Errorf("SubjectIDFromContext() = %d, want 0", got)
	}
	if got := RoleFromContext(ctx); got != "" {
		t.Errorf("RoleFromContext() = %q, want empty", got)
	}

	p := &Principal{SubjectID: 3, Identifier: "viewer@example.com", Role: RoleViewer}
	ctx = WithPrincipal(ctx, p)

	if got := PrincipalFromContext(ctx); got != p {
		t.Errorf("PrincipalFromContext() = %v, want %v", got, p)
	}
	if got := IdentifierFromContext(ctx); got != "viewer@example.com" {
		t.Errorf("IdentifierFromContext() = %q, want viewer@example.com", got)
	}
	if got := SubjectIDFromContext(ctx); got != 3 {
		t.Errorf("SubjectIDFromContext() = %d, want 3", got)
	}
	if got := RoleFromContext(ctx); got != RoleViewer {
		t.Errorf("RoleFromContext() = %q, want viewer", got)
	}
}

func TestPrincipal_HasRole(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.HasRole(RoleAdmin) {
		t.Error("nil principal HasRole() = true")
	}
	p := &Principal{Role: RoleEditor}
	if !p.HasRole(RoleEditor) || p.HasRole(RoleAdmin) {
		t.Errorf("HasRole() mismatch for %+v", p)
	}
}
