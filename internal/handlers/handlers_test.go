package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/handlers"
	"github.com/dbu-union/portal-server/internal/middleware"
	"github.com/dbu-union/portal-server/internal/registry"
	"github.com/dbu-union/portal-server/internal/services"
	"github.com/dbu-union/portal-server/internal/session"
	"github.com/dbu-union/portal-server/internal/storage/memory"
)

// newTestServer wires the real services against in-memory storage, the same
// shape the dev server runs with.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sugar := zap.NewNop().Sugar()

	store := session.NewMemoryStore(100)
	sessions := services.NewSessionManager(registry.New(), store, &services.MockVerifier{},
		&services.MockGoogleProvider{}, "dbu.edu.et", "test-secret", sugar)
	access := services.NewAccessController()
	workflows := services.NewWorkflowSet("DBU")

	electionRepo := memory.NewElectionRepo()
	memory.SeedElections(electionRepo)
	ledger := services.NewLedgerService(sugar)
	elections := services.NewElectionService(electionRepo, ledger, sugar)

	clubRepo := memory.NewClubRepo()
	memory.SeedClubs(clubRepo)
	clubs := services.NewClubService(clubRepo, access, sugar)

	authHandler := handlers.NewAuthHandler(sessions, access, workflows, sugar)
	electionHandler := handlers.NewElectionHandler(elections, workflows, sugar)
	clubHandler := handlers.NewClubHandler(clubs, sugar)
	adminHandler := handlers.NewAdminHandler(store, sugar)
	integrityHandler := handlers.NewIntegrityHandler(ledger, sugar)

	requireSession := middleware.RequireSession(sessions)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)
		})

		r.Route("/elections", func(r chi.Router) {
			r.Get("/", electionHandler.List)
			r.Get("/{id}", electionHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/{id}/verification", electionHandler.StartVerification)
				r.Post("/{id}/verification/student-id", electionHandler.SubmitStudentID)
				r.Post("/{id}/verification/document", electionHandler.AttachDocument)
				r.Post("/{id}/verification/advance", electionHandler.AdvanceVerification)
				r.Post("/{id}/vote", electionHandler.CastVote)
			})
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", clubHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", clubHandler.Register)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession)
			r.Use(middleware.RequirePermission(access, "audit_all"))
			r.Get("/access-log", adminHandler.AccessLog)
		})

		r.Get("/integrity/root", integrityHandler.Root)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func login(t *testing.T, srv *httptest.Server, email, adminRole string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":      email,
		"password":   "secret",
		"admin_role": adminRole,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d (%v)", email, resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token", email)
	}
	return token
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":      "clubs@dbu.edu.et",
		"password":   "secret",
		"admin_role": "clubs_associations",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	cred, ok := body["credential"].(map[string]interface{})
	if !ok {
		t.Fatalf("no credential in response: %v", body)
	}
	if cred["name"] != "Hewan Tadesse" {
		t.Errorf("credential name = %v", cred["name"])
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":      "clubs@dbu.edu.et",
		"password":   "secret",
		"admin_role": "president",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("role-mismatch login status = %d, want 401", resp.StatusCode)
	}
}

func TestSessionEndpointComposesUI(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "president@dbu.edu.et", "president")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/session", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	nav, ok := body["nav"].([]interface{})
	if !ok || len(nav) != 7 {
		t.Errorf("president nav items = %v", body["nav"])
	}
	dashboard, ok := body["dashboard"].(map[string]interface{})
	if !ok || dashboard["route"] != "/admin/president" {
		t.Errorf("dashboard = %v", body["dashboard"])
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv := newTestServer(t)

	for _, url := range []string{
		srv.URL + "/api/v1/auth/session",
		srv.URL + "/api/v1/admin/access-log",
	} {
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("GET %s: %v", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", url, resp.StatusCode)
		}
	}
}

func TestVotingFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "student@dbu.edu.et", "")
	base := srv.URL + "/api/v1/elections/election-001"

	resp, _ := doJSON(t, http.MethodPost, base+"/verification", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start verification status = %d", resp.StatusCode)
	}

	// A malformed ID keeps the workflow at step 1.
	resp, _ = doJSON(t, http.MethodPost, base+"/verification/student-id", token,
		map[string]string{"student_id": "12345"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad student ID status = %d, want 400", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, base+"/verification/student-id", token,
		map[string]string{"student_id": "dbu1500962"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("student ID status = %d (%v)", resp.StatusCode, body)
	}
	if body["step"] != float64(2) {
		t.Errorf("step = %v, want 2", body["step"])
	}

	// Advancing without a document fails.
	resp, _ = doJSON(t, http.MethodPost, base+"/verification/advance", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("advance without document status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/verification/document", token,
		map[string]string{"file_name": "id-card.jpg"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("attach document status = %d", resp.StatusCode)
	}
	resp, body = doJSON(t, http.MethodPost, base+"/verification/advance", token, nil)
	if resp.StatusCode != http.StatusOK || body["step"] != float64(3) {
		t.Fatalf("advance status = %d, step = %v", resp.StatusCode, body["step"])
	}

	resp, body = doJSON(t, http.MethodPost, base+"/vote", token,
		map[string]string{"candidate_id": "candidate-001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("vote status = %d (%v)", resp.StatusCode, body)
	}
	receipt, ok := body["receipt"].(map[string]interface{})
	if !ok || receipt["leaf_hash"] == "" {
		t.Errorf("receipt = %v", body["receipt"])
	}

	// The accepted vote is visible at the integrity root.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/integrity/root", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("integrity root status = %d", resp.StatusCode)
	}
	if body["leaf_count"] != float64(1) {
		t.Errorf("leaf_count = %v, want 1", body["leaf_count"])
	}
}

func TestDuplicateVoteOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "student@dbu.edu.et", "")
	base := srv.URL + "/api/v1/elections/election-001"

	vote := func() *http.Response {
		doJSON(t, http.MethodPost, base+"/verification", token, nil)
		doJSON(t, http.MethodPost, base+"/verification/student-id", token,
			map[string]string{"student_id": "DBU1500962"})
		doJSON(t, http.MethodPost, base+"/verification/document", token,
			map[string]string{"file_name": "id-card.jpg"})
		doJSON(t, http.MethodPost, base+"/verification/advance", token, nil)
		resp, _ := doJSON(t, http.MethodPost, base+"/vote", token,
			map[string]string{"candidate_id": "candidate-001"})
		return resp
	}

	if resp := vote(); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first vote status = %d", resp.StatusCode)
	}
	// Re-verifying with the same student ID cannot produce a second ballot.
	if resp := vote(); resp.StatusCode != http.StatusConflict {
		t.Errorf("second vote status = %d, want 409", resp.StatusCode)
	}
}

func TestRejectedVotePreservesVerification(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "student@dbu.edu.et", "")
	base := srv.URL + "/api/v1/elections/election-001"

	doJSON(t, http.MethodPost, base+"/verification", token, nil)
	doJSON(t, http.MethodPost, base+"/verification/student-id", token,
		map[string]string{"student_id": "DBU1500962"})
	doJSON(t, http.MethodPost, base+"/verification/document", token,
		map[string]string{"file_name": "id-card.jpg"})
	doJSON(t, http.MethodPost, base+"/verification/advance", token, nil)

	// An unknown candidate is rejected without discarding the verification.
	resp, _ := doJSON(t, http.MethodPost, base+"/vote", token,
		map[string]string{"candidate_id": "candidate-999"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown-candidate vote status = %d, want 404", resp.StatusCode)
	}

	// The retry succeeds with no re-verification.
	resp, body := doJSON(t, http.MethodPost, base+"/vote", token,
		map[string]string{"candidate_id": "candidate-001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("retry vote status = %d (%v)", resp.StatusCode, body)
	}

	// Only the accepted cast resets the workflow.
	resp, _ = doJSON(t, http.MethodPost, base+"/vote", token,
		map[string]string{"candidate_id": "candidate-001"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("post-success vote status = %d, want 409", resp.StatusCode)
	}
}

func TestAccessLogPermissionGate(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL + "/api/v1/admin/access-log"

	// dining_services lacks audit_all.
	dining := login(t, srv, "dining@dbu.edu.et", "dining_services")
	resp, _ := doJSON(t, http.MethodGet, url, dining, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("dining access-log status = %d, want 403", resp.StatusCode)
	}

	// student_din carries audit_all and sees both logins.
	din := login(t, srv, "studentdin@dbu.edu.et", "student_din")
	resp, body := doJSON(t, http.MethodGet, url, din, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("student_din access-log status = %d", resp.StatusCode)
	}
	if body["count"] != float64(2) {
		t.Errorf("log count = %v, want 2", body["count"])
	}
}

func TestClubRegistrationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "student@dbu.edu.et", "")

	members := make([]string, 9)
	for i := range members {
		members[i] = fmt.Sprintf("Member %d", i+1)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/clubs", token, map[string]interface{}{
		"name":             "Chess Club",
		"advisor_email":    "advisor@dbu.edu.et",
		"constitution":     "constitution.pdf",
		"founding_members": members,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nine-member registration status = %d, want 400", resp.StatusCode)
	}
	fields, ok := body["fields"].([]interface{})
	if !ok || len(fields) != 1 || fields[0] != "founding_members" {
		t.Errorf("fields = %v, want [founding_members]", body["fields"])
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/clubs", token, map[string]interface{}{
		"name":             "Chess Club",
		"advisor_email":    "advisor@dbu.edu.et",
		"constitution":     "constitution.pdf",
		"founding_members": append(members, "Member 10"),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registration status = %d (%v)", resp.StatusCode, body)
	}
	club, ok := body["club"].(map[string]interface{})
	if !ok || club["status"] != "pending" {
		t.Errorf("club = %v", body["club"])
	}
}
