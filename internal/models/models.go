// Package models defines the data structures used across the application.
// These map to the portal PostgreSQL schema and the Redis session layout.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of portal roles. Rendering and authorization
// dispatch on this type exhaustively; unknown strings never become roles.
type Role string

const (
	RoleStudent           Role = "student"
	RoleBranchLeader      Role = "branch_leader"
	RolePresident         Role = "president"
	RoleStudentDin        Role = "student_din"
	RoleVicePresident     Role = "vice_president"
	RoleSecretary         Role = "secretary"
	RoleSpeaker           Role = "speaker"
	RoleAcademicAffairs   Role = "academic_affairs"
	RoleGeneralService    Role = "general_service"
	RoleDiningServices    Role = "dining_services"
	RoleSportsCulture     Role = "sports_culture"
	RoleClubsAssociations Role = "clubs_associations"
)

// AdminRoles lists every role backed by a credential registry entry.
var AdminRoles = []Role{
	RolePresident, RoleStudentDin, RoleVicePresident, RoleSecretary,
	RoleSpeaker, RoleAcademicAffairs, RoleGeneralService,
	RoleDiningServices, RoleSportsCulture, RoleClubsAssociations,
}

// IsAdmin reports whether the role requires a registry credential.
func (r Role) IsAdmin() bool {
	for _, a := range AdminRoles {
		if r == a {
			return true
		}
	}
	return false
}

// ParseRole maps a wire string to a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleBranchLeader:
		return Role(s), true
	}
	for _, a := range AdminRoles {
		if Role(s) == a {
			return a, true
		}
	}
	return "", false
}

// AdminCredential is a registry entry binding an email address to one
// administrative role and a permission set. Immutable after process start.
type AdminCredential struct {
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Name        string   `json:"name"`
	Branch      string   `json:"branch,omitempty"`
	Permissions []string `json:"permissions"`
}

// User is the authenticated portal identity. Created on login, persisted in
// the session store, destroyed on logout.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StudentID  string `json:"studentId,omitempty"`
	Role       Role   `json:"role"`
	Branch     string `json:"branch,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// Session combines the current user with their admin credential, if any.
// A session carrying an admin role without a matching credential is invalid
// and must not grant elevated access.
type Session struct {
	ID         string           `json:"id"`
	User       *User            `json:"user,omitempty"`
	Credential *AdminCredential `json:"credential,omitempty"`
}

// Valid reports whether the session satisfies the role/credential invariant.
func (s *Session) Valid() bool {
	if s == nil || s.User == nil {
		return false
	}
	if s.User.Role.IsAdmin() && s.Credential == nil {
		return false
	}
	return true
}

// AdminAccessLogEntry records a successful admin login. Entries are
// append-only; the store keeps a bounded window of the most recent ones.
type AdminAccessLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	AdminEmail  string    `json:"adminEmail"`
	AdminName   string    `json:"adminName"`
	Role        Role      `json:"role"`
	Action      string    `json:"action"`
	IPAddress   string    `json:"ipAddress"`
	Permissions []string  `json:"permissions"`
}

// ElectionStatus is the election lifecycle phase.
type ElectionStatus string

const (
	ElectionUpcoming  ElectionStatus = "upcoming"
	ElectionActive    ElectionStatus = "active"
	ElectionCompleted ElectionStatus = "completed"
)

// Election is a ballot with its candidates. TotalVotes always equals the sum
// of candidate votes; the repositories maintain this under CastVote.
type Election struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Status         ElectionStatus `json:"status"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        time.Time      `json:"endDate"`
	Candidates     []Candidate    `json:"candidates"`
	TotalVotes     int            `json:"totalVotes"`
	EligibleVoters int            `json:"eligibleVoters"`
}

// Candidate belongs to exactly one election.
type Candidate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Votes    int      `json:"votes"`
	Platform []string `json:"platform"`
}

// Vote is the server-side record enforcing one vote per (election, voter).
type Vote struct {
	ID          uuid.UUID `json:"id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"voter_id"`
	CastAt      time.Time `json:"cast_at"`
}

// VoteReceipt is returned to the voter and feeds the integrity ledger.
type VoteReceipt struct {
	VoteID      uuid.UUID `json:"vote_id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
	LeafHash    string    `json:"leaf_hash"`
}

// ComplaintStatus is the manual, admin-driven complaint lifecycle.
type ComplaintStatus string

const (
	ComplaintSubmitted   ComplaintStatus = "submitted"
	ComplaintUnderReview ComplaintStatus = "under_review"
	ComplaintResolved    ComplaintStatus = "resolved"
	ComplaintClosed      ComplaintStatus = "closed"
)

// ComplaintPriority levels.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
)

// Complaint is a filed case, identified by its COMP-<year>-<nnn> case ID.
type Complaint struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Status      ComplaintStatus     `json:"status"`
	Priority    ComplaintPriority   `json:"priority"`
	SubmittedBy string              `json:"submittedBy"`
	AssignedTo  string              `json:"assignedTo,omitempty"`
	SubmittedAt time.Time           `json:"submittedAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Evidence    []Evidence          `json:"evidence"`
	Responses   []ComplaintResponse `json:"responses"`
	Branch      string              `json:"branch,omitempty"`
}

// Evidence is an uploaded attachment on a complaint.
type Evidence struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // "image" | "pdf" | "document"
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ComplaintResponse is a message on a complaint thread.
type ComplaintResponse struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	Timestamp  time.Time `json:"timestamp"`
	IsOfficial bool      `json:"isOfficial"`
}

// ClubStatus is the club registration lifecycle.
type ClubStatus string

const (
	ClubActive    ClubStatus = "active"
	ClubPending   ClubStatus = "pending"
	ClubSuspended ClubStatus = "suspended"
)

// Club is a registered student club or association.
type Club struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Members         int        `json:"members"`
	Status          ClubStatus `json:"status"`
	AdvisorEmail    string     `json:"advisorEmail"`
	FoundingMembers []string   `json:"foundingMembers"`
	Constitution    string     `json:"constitution"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// NavItem is one entry of the static navigation table. Visibility is
// filtered per role, in declaration order.
type NavItem struct {
	Name  string `json:"name"`
	Href  string `json:"href"`
	Roles []Role `json:"roles"`
}

// CategoryCount aggregates complaints per category for the stats endpoints.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatusCount aggregates complaints per status.
type StatusCount struct {
	Status ComplaintStatus `json:"status"`
	Count  int             `json:"count"`
}

// LedgerProof contains the inclusion proof for a vote receipt.
type LedgerProof struct {
	LeafHash string      `json:"leaf_hash"`
	Root     string      `json:"root"`
	Proof    []ProofStep `json:"proof"`
	Index    int         `json:"index"`
	Verified bool        `json:"verified"`
}

// ProofStep is a single step in a ledger inclusion proof path.
type ProofStep struct {
	Hash     string `json:"hash"`
	Position string `json:"position"` // "left" | "right"
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
}
