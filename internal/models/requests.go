package models

// LoginRequest is the body for POST /api/v1/auth/login. AdminRole selects
// the admin entry point; students leave it empty.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	OTP       string `json:"otp,omitempty"`
	AdminRole string `json:"admin_role,omitempty"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token      string           `json:"token"`
	User       *User            `json:"user"`
	Credential *AdminCredential `json:"credential,omitempty"`
}

// CastVoteRequest is the body for casting a ballot from the confirm step.
type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// StudentIDRequest carries the ID entered in the verification workflow.
type StudentIDRequest struct {
	StudentID string `json:"student_id"`
}

// DocumentRequest references the uploaded identity document.
type DocumentRequest struct {
	FileName string `json:"file_name"`
}

// ComplaintSubmission is the request body for filing a new complaint.
type ComplaintSubmission struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Priority    ComplaintPriority `json:"priority,omitempty"`
	Branch      string            `json:"branch,omitempty"`
	Evidence    []Evidence        `json:"evidence,omitempty"`
}

// ComplaintStatusUpdate moves a complaint through its lifecycle.
type ComplaintStatusUpdate struct {
	Status ComplaintStatus `json:"status"`
}

// ComplaintResponseRequest appends a message to a complaint thread.
type ComplaintResponseRequest struct {
	Message string `json:"message"`
}

// ClubRegistration is the request body for registering a new club.
type ClubRegistration struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	AdvisorEmail    string   `json:"advisor_email"`
	FoundingMembers []string `json:"founding_members"`
	Constitution    string   `json:"constitution"`
}
