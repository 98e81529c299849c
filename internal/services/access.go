package services

import (
	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/registry"
)

// allRoles is every role that can hold a session.
var allRoles = append([]models.Role{models.RoleStudent, models.RoleBranchLeader}, models.AdminRoles...)

// navigation is the static navigation table. Declaration order is the
// display order.
var navigation = []models.NavItem{
	{Name: "Dashboard", Href: "/dashboard", Roles: allRoles},
	{Name: "Admin Panel", Href: "/admin", Roles: models.AdminRoles},
	{Name: "Elections", Href: "/elections", Roles: allRoles},
	{Name: "Clubs & Associations", Href: "/clubs", Roles: allRoles},
	{Name: "Complaints", Href: "/complaints", Roles: allRoles},
	{Name: "Branches", Href: "/branches", Roles: append([]models.Role{models.RoleBranchLeader}, models.AdminRoles...)},
	{Name: "Analytics", Href: "/analytics", Roles: []models.Role{models.RolePresident, models.RoleStudentDin}},
}

// AccessController derives capabilities from the current session. It only
// reads session state; ownership stays with the SessionManager.
type AccessController struct{}

// NewAccessController returns a stateless controller.
func NewAccessController() *AccessController {
	return &AccessController{}
}

// CanAccess reports whether the session's admin credential carries the
// permission. It returns false, never an error, for anonymous or
// student sessions, and for sessions that claim an admin role without a
// matching credential.
func (a *AccessController) CanAccess(sess *models.Session, permission string) bool {
	if !sess.Valid() || sess.Credential == nil {
		return false
	}
	return registry.HasPermission(sess.Credential, permission)
}

// VisibleNavItems filters the navigation table by the user's role,
// preserving declaration order.
func (a *AccessController) VisibleNavItems(user *models.User) []models.NavItem {
	if user == nil {
		return nil
	}
	items := make([]models.NavItem, 0, len(navigation))
	for _, item := range navigation {
		for _, role := range item.Roles {
			if role == user.Role {
				items = append(items, item)
				break
			}
		}
	}
	return items
}

// Dashboard describes the landing surface for a role.
type Dashboard struct {
	Route string `json:"route"`
	Title string `json:"title"`
}

// DashboardFor is the single dispatch point mapping a role to its
// dashboard. The switch is exhaustive over the closed role set; an unknown
// role falls back to the student surface rather than elevating.
func DashboardFor(role models.Role) Dashboard {
	switch role {
	case models.RoleStudent:
		return Dashboard{Route: "/dashboard", Title: "Student Dashboard"}
	case models.RoleBranchLeader:
		return Dashboard{Route: "/dashboard/branch", Title: "Branch Leader Dashboard"}
	case models.RolePresident:
		return Dashboard{Route: "/admin/president", Title: "President Dashboard"}
	case models.RoleStudentDin:
		return Dashboard{Route: "/admin/student-din", Title: "Student Din Dashboard"}
	case models.RoleVicePresident:
		return Dashboard{Route: "/admin/vice-president", Title: "Vice President Dashboard"}
	case models.RoleSecretary:
		return Dashboard{Route: "/admin/secretary", Title: "Secretary Dashboard"}
	case models.RoleSpeaker:
		return Dashboard{Route: "/admin/speaker", Title: "Speaker Dashboard"}
	case models.RoleAcademicAffairs:
		return Dashboard{Route: "/admin/academic-affairs", Title: "Academic Affairs Dashboard"}
	case models.RoleGeneralService:
		return Dashboard{Route: "/admin/general-service", Title: "General Service Dashboard"}
	case models.RoleDiningServices:
		return Dashboard{Route: "/admin/dining-services", Title: "Dining Services Dashboard"}
	case models.RoleSportsCulture:
		return Dashboard{Route: "/admin/sports-culture", Title: "Sports & Culture Dashboard"}
	case models.RoleClubsAssociations:
		return Dashboard{Route: "/admin/clubs-associations", Title: "Clubs & Associations Dashboard"}
	default:
		return Dashboard{Route: "/dashboard", Title: "Student Dashboard"}
	}
}
