package registry

import (
	"errors"
	"testing"

	"github.com/dbu-union/portal-server/internal/models"
)

func TestValidateCredential(t *testing.T) {
	r := New()

	tests := []struct {
		name    string
		email   string
		role    models.Role
		wantErr bool
	}{
		{
			name:  "exact match",
			email: "clubs@dbu.edu.et",
			role:  models.RoleClubsAssociations,
		},
		{
			name:  "email is case-insensitive",
			email: "CLUBS@DBU.EDU.ET",
			role:  models.RoleClubsAssociations,
		},
		{
			name:    "role mismatch fails",
			email:   "clubs@dbu.edu.et",
			role:    models.RolePresident,
			wantErr: true,
		},
		{
			name:    "unknown email fails",
			email:   "someone@dbu.edu.et",
			role:    models.RolePresident,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := r.ValidateCredential(tt.email, tt.role)
			if tt.wantErr {
				if !errors.Is(err, models.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cred.Role != tt.role {
				t.Errorf("role = %q, want %q", cred.Role, tt.role)
			}
		})
	}
}

func TestFindByEmail(t *testing.T) {
	r := New()

	cred, err := r.FindByEmail("President@dbu.edu.et")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Name != "Bekele Mekonnen" {
		t.Errorf("name = %q, want Bekele Mekonnen", cred.Name)
	}

	if _, err := r.FindByEmail("student@dbu.edu.et"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-admin email, got %v", err)
	}
}

func TestHasPermission(t *testing.T) {
	r := New()

	president, _ := r.FindByEmail("president@dbu.edu.et")
	dining, _ := r.FindByEmail("dining@dbu.edu.et")

	tests := []struct {
		name       string
		cred       *models.AdminCredential
		permission string
		want       bool
	}{
		{"wildcard matches listed permission", president, "user_management", true},
		{"wildcard matches permission never listed", president, "close_university", true},
		{"literal match", dining, "food_quality", true},
		{"no match", dining, "user_management", false},
		{"nil credential", nil, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.cred, tt.permission); got != tt.want {
				t.Errorf("HasPermission(%q) = %v, want %v", tt.permission, got, tt.want)
			}
		})
	}
}

func TestBranchPermissions(t *testing.T) {
	for _, branch := range []string{
		"academic_affairs", "general_service", "dining_services",
		"sports_culture", "clubs_associations",
	} {
		if perms := BranchPermissions[branch]; len(perms) == 0 {
			t.Errorf("branch %q has no scoped permissions", branch)
		}
	}
}

func TestRegistryImmutability(t *testing.T) {
	r := New()

	cred, _ := r.FindByEmail("dining@dbu.edu.et")
	cred.Name = "tampered"

	again, _ := r.FindByEmail("dining@dbu.edu.et")
	if again.Name != "Almaz Bekele" {
		t.Errorf("registry entry mutated through returned copy")
	}
}
