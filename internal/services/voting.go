package services

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dbu-union/portal-server/internal/models"
)

// VerificationStep is the voter-verification workflow position.
type VerificationStep int

const (
	StepIDInput VerificationStep = iota + 1
	StepUpload
	StepConfirm
	StepSubmitted
)

// VotingWorkflow is the per-session identity-verification state machine for
// casting a ballot:
//
//	IDInput(1) -> Upload(2) -> Confirm(3) -> Submitted
//
// Cancel is reachable from any non-terminal step and resets every field.
// One workflow exists per session; beginning a new election attempt resets
// the shared state, so at most one vote is in flight per session.
type VotingWorkflow struct {
	mu        sync.Mutex
	idPattern *regexp.Regexp

	step       VerificationStep
	electionID string
	studentID  string
	document   string
}

// NewVotingWorkflow builds a workflow validating IDs of the form
// <prefix><7 digits>, e.g. DBU1500962.
func NewVotingWorkflow(prefix string) *VotingWorkflow {
	return &VotingWorkflow{
		idPattern: regexp.MustCompile(fmt.Sprintf(`^%s\d{7}$`, regexp.QuoteMeta(strings.ToUpper(prefix)))),
		step:      StepIDInput,
	}
}

// Begin resets the workflow and binds it to an election attempt.
func (w *VotingWorkflow) Begin(electionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.electionID = electionID
}

// Step returns the current workflow position.
func (w *VotingWorkflow) Step() VerificationStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// EnterStudentID validates the ID format and advances to the upload step.
// Input is uppercased before matching; on format failure the workflow stays
// at the ID-input step.
func (w *VotingWorkflow) EnterStudentID(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepIDInput {
		return fmt.Errorf("student ID already verified (step %d)", w.step)
	}

	normalized := strings.ToUpper(strings.TrimSpace(id))
	if !w.idPattern.MatchString(normalized) {
		return models.ErrInvalidIDFormat
	}

	w.studentID = normalized
	w.step = StepUpload
	return nil
}

// AttachDocument records the uploaded identity document for the upload step.
func (w *VotingWorkflow) AttachDocument(fileName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepUpload {
		return fmt.Errorf("not at upload step (step %d)", w.step)
	}
	if strings.TrimSpace(fileName) == "" {
		return models.ErrMissingDocument
	}
	w.document = fileName
	return nil
}

// RemoveDocument re-empties the upload slot before advancing.
func (w *VotingWorkflow) RemoveDocument() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepUpload {
		w.document = ""
	}
}

// Advance moves from the upload step to the confirm step. Without a
// document it fails and the workflow stays at the upload step.
func (w *VotingWorkflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepUpload {
		return fmt.Errorf("not at upload step (step %d)", w.step)
	}
	if w.document == "" {
		return models.ErrMissingDocument
	}
	w.step = StepConfirm
	return nil
}

// Confirm returns the verified student ID and election from the confirm
// step without changing state. The document must still be attached. A failed
// ballot cast leaves the workflow at the confirm step; callers reset it with
// Complete only once the cast succeeded.
func (w *VotingWorkflow) Confirm() (studentID, electionID string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepConfirm {
		return "", "", fmt.Errorf("%w (step %d)", models.ErrVerificationNeeded, w.step)
	}
	if w.document == "" {
		return "", "", models.ErrMissingDocument
	}
	return w.studentID, w.electionID, nil
}

// Complete finishes the workflow from the confirm step, returning the
// verified student ID and election for the ballot cast. The document must
// still be attached. On success the workflow resets to the ID-input step
// with all fields cleared.
func (w *VotingWorkflow) Complete() (studentID, electionID string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepConfirm {
		return "", "", fmt.Errorf("%w (step %d)", models.ErrVerificationNeeded, w.step)
	}
	if w.document == "" {
		return "", "", models.ErrMissingDocument
	}

	studentID = w.studentID
	electionID = w.electionID
	w.reset()
	return studentID, electionID, nil
}

// Cancel abandons the attempt from any non-terminal step and resets all
// fields. No compensating action is needed; nothing was reserved.
func (w *VotingWorkflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// HasDocument reports whether an identity document is attached.
func (w *VotingWorkflow) HasDocument() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document != ""
}

func (w *VotingWorkflow) reset() {
	w.step = StepIDInput
	w.electionID = ""
	w.studentID = ""
	w.document = ""
}

// WorkflowSet hands out one VotingWorkflow per session.
type WorkflowSet struct {
	mu        sync.Mutex
	prefix    string
	workflows map[string]*VotingWorkflow
}

// NewWorkflowSet creates an empty set using the given student-ID prefix.
func NewWorkflowSet(prefix string) *WorkflowSet {
	return &WorkflowSet{prefix: prefix, workflows: make(map[string]*VotingWorkflow)}
}

// Get returns the session's workflow, creating it on first use.
func (s *WorkflowSet) Get(sessionID string) *VotingWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[sessionID]
	if !ok {
		wf = NewVotingWorkflow(s.prefix)
		s.workflows[sessionID] = wf
	}
	return wf
}

// Drop discards the session's workflow, e.g. on logout.
func (s *WorkflowSet) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, sessionID)
}
