// Package registry holds the static admin credential table. Only the emails
// listed here can hold administrative roles. The table is loaded once at
// process start and never reloaded or mutated.
package registry

import (
	"strings"

	"github.com/dbu-union/portal-server/internal/models"
)

// Registry answers credential lookups against the fixed admin table.
type Registry struct {
	creds []models.AdminCredential
}

// New returns a registry over the default credential table.
func New() *Registry {
	return &Registry{creds: defaultCredentials}
}

// NewWithCredentials returns a registry over a caller-supplied table.
// Used by tests; production always runs on the default table.
func NewWithCredentials(creds []models.AdminCredential) *Registry {
	return &Registry{creds: creds}
}

// ValidateCredential matches email (case-insensitive) and role (exact).
// Returns models.ErrNotFound when no entry matches both.
func (r *Registry) ValidateCredential(email string, role models.Role) (*models.AdminCredential, error) {
	for i := range r.creds {
		if strings.EqualFold(r.creds[i].Email, email) && r.creds[i].Role == role {
			cred := r.creds[i]
			return &cred, nil
		}
	}
	return nil, models.ErrNotFound
}

// FindByEmail matches email case-insensitively, regardless of role.
func (r *Registry) FindByEmail(email string) (*models.AdminCredential, error) {
	for i := range r.creds {
		if strings.EqualFold(r.creds[i].Email, email) {
			cred := r.creds[i]
			return &cred, nil
		}
	}
	return nil, models.ErrNotFound
}

// HasPermission reports whether the credential carries the literal
// permission or the "all" wildcard.
func HasPermission(cred *models.AdminCredential, permission string) bool {
	if cred == nil {
		return false
	}
	for _, p := range cred.Permissions {
		if p == "all" || p == permission {
			return true
		}
	}
	return false
}

// BranchPermissions maps each service branch to its scoped permissions.
var BranchPermissions = map[string][]string{
	"academic_affairs":   {"academic_complaints", "grade_appeals", "exam_issues"},
	"general_service":    {"facilities", "logistics", "maintenance"},
	"dining_services":    {"food_complaints", "cafeteria_management", "hygiene"},
	"sports_culture":     {"sports_events", "cultural_activities", "equipment"},
	"clubs_associations": {"club_registration", "document_approval", "event_validation"},
}

// defaultCredentials is the production admin table. Exactly these emails can
// access admin roles; everything else routes through the student entry point.
var defaultCredentials = []models.AdminCredential{
	// Executive leadership
	{
		Email:       "president@dbu.edu.et",
		Role:        models.RolePresident,
		Name:        "Bekele Mekonnen",
		Permissions: []string{"all", "emergency_override", "system_admin", "force_approve", "user_management"},
	},
	{
		Email:       "studentdin@dbu.edu.et",
		Role:        models.RoleStudentDin,
		Name:        "Alemnesh Tadesse",
		Permissions: []string{"all", "mediation", "university_liaison", "override_decisions", "audit_all"},
	},
	{
		Email:       "vicepresident@dbu.edu.et",
		Role:        models.RoleVicePresident,
		Name:        "Dawit Alemayehu",
		Permissions: []string{"coordination", "daily_operations", "branch_oversight"},
	},

	// Operational leadership
	{
		Email:       "secretary@dbu.edu.et",
		Role:        models.RoleSecretary,
		Name:        "Meron Tesfaye",
		Permissions: []string{"documentation", "records_management", "correspondence"},
	},
	{
		Email:       "speaker@dbu.edu.et",
		Role:        models.RoleSpeaker,
		Name:        "Yohannes Kebede",
		Permissions: []string{"assemblies", "discussions", "student_voice"},
	},

	// Service branches
	{
		Email:       "academic@dbu.edu.et",
		Role:        models.RoleAcademicAffairs,
		Name:        "Dr. Hanna Getachew",
		Branch:      "academic_affairs",
		Permissions: []string{"academic_complaints", "grade_appeals", "faculty_liaison"},
	},
	{
		Email:       "service@dbu.edu.et",
		Role:        models.RoleGeneralService,
		Name:        "Tadesse Worku",
		Branch:      "general_service",
		Permissions: []string{"facilities", "logistics", "lost_found"},
	},
	{
		Email:       "dining@dbu.edu.et",
		Role:        models.RoleDiningServices,
		Name:        "Almaz Bekele",
		Branch:      "dining_services",
		Permissions: []string{"food_quality", "cafeteria_issues", "meal_plans"},
	},
	{
		Email:       "sports@dbu.edu.et",
		Role:        models.RoleSportsCulture,
		Name:        "Getnet Assefa",
		Branch:      "sports_culture",
		Permissions: []string{"tournaments", "cultural_events", "equipment_management"},
	},
	{
		Email:       "clubs@dbu.edu.et",
		Role:        models.RoleClubsAssociations,
		Name:        "Hewan Tadesse",
		Branch:      "clubs_associations",
		Permissions: []string{"club_approval", "document_validation", "event_proposals", "budget_oversight"},
	},
}
