package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRoleAuthorizer_Authorize(t *testing.T) {
	a := NewRoleAuthorizer()

	tests := []struct {
		name    string
		subject *Principal
		req     Requirement
		wantErr bool
	}{
		{"admin on admin-only", &Principal{Role: RoleAdmin}, RequireRoles(RoleAdmin), false},
		{"editor on admin-only", &Principal{Role: RoleEditor}, RequireRoles(RoleAdmin), true},
		{"viewer on open", &Principal{Role: RoleViewer}, AnyAuthenticated(), false},
		{"viewer on undeclared", &Principal{Role: RoleViewer}, Inherit(), false},
		{"editor on admin|editor", &Principal{Role: RoleEditor}, RequireRoles(RoleAdmin, RoleEditor), false},
		{"no subject", nil, AnyAuthenticated(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authorize(context.Background(), &AuthzRequest{
				Subject:   tt.subject,
				Resource:  "books",
				Operation: "op",
				Required:  tt.req,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInsufficientPermissions) {
				t.Errorf("Authorize() error = %v, want %v", err, ErrInsufficientPermissions)
			}
		})
	}

	if a.Name() != "role" {
		t.Errorf("Name() = %q, want role", a.Name())
	}
}
