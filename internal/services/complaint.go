package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
)

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status      models.ComplaintStatus
	Category    string
	SubmittedBy string
}

// ComplaintRepo persists complaints.
type ComplaintRepo interface {
	Insert(ctx context.Context, c *models.Complaint) error
	Get(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	AppendResponse(ctx context.Context, id string, resp models.ComplaintResponse) error
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, updatedAt time.Time) error
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

// categoryAssignee routes a submitted complaint to the responsible branch.
var categoryAssignee = map[string]string{
	"academic":   "academic@dbu.edu.et",
	"dining":     "dining@dbu.edu.et",
	"housing":    "service@dbu.edu.et",
	"facilities": "service@dbu.edu.et",
}

// categoryPermission maps a complaint category to the permission required to
// manage it. Wildcard credentials pass regardless.
var categoryPermission = map[string]string{
	"academic":   "academic_complaints",
	"dining":     "food_quality",
	"housing":    "facilities",
	"facilities": "facilities",
}

// ComplaintService handles complaint business logic.
type ComplaintService struct {
	repo     ComplaintRepo
	access   *AccessController
	now      func() time.Time
	randThen func(n int) int
	logger   *zap.SugaredLogger
}

// NewComplaintService creates a new complaint service.
func NewComplaintService(repo ComplaintRepo, access *AccessController, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{
		repo:     repo,
		access:   access,
		now:      time.Now,
		randThen: rand.Intn,
		logger:   logger,
	}
}

// GenerateCaseID produces a case identifier of the form COMP-<year>-<nnn>.
// The 3-digit suffix is random; the repository retries on the rare conflict.
func (s *ComplaintService) GenerateCaseID() string {
	return fmt.Sprintf("COMP-%d-%03d", s.now().Year(), s.randThen(1000))
}

// Submit validates and files a new complaint. Title and description are
// required; a ValidationError lists every missing field and nothing is
// stored. The case is routed to the branch owning its category.
func (s *ComplaintService) Submit(ctx context.Context, sub *models.ComplaintSubmission, submittedBy string) (*models.Complaint, error) {
	var missing []string
	if strings.TrimSpace(sub.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(sub.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError(missing...)
	}

	priority := sub.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	complaint := &models.Complaint{
		ID:          s.GenerateCaseID(),
		Title:       sub.Title,
		Description: sub.Description,
		Category:    sub.Category,
		Status:      models.ComplaintSubmitted,
		Priority:    priority,
		SubmittedBy: submittedBy,
		AssignedTo:  categoryAssignee[sub.Category],
		SubmittedAt: now,
		UpdatedAt:   now,
		Evidence:    sub.Evidence,
		Responses:   []models.ComplaintResponse{},
		Branch:      sub.Branch,
	}

	// Random suffixes can collide; draw a fresh ID and retry a few times.
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		if err = s.repo.Insert(ctx, complaint); err == nil {
			break
		}
		complaint.ID = s.GenerateCaseID()
	}
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}

	s.logger.Infow("Complaint submitted",
		"case_id", complaint.ID,
		"category", complaint.Category,
		"priority", complaint.Priority,
	)
	return complaint, nil
}

// Get returns one complaint by case ID.
func (s *ComplaintService) Get(ctx context.Context, id string) (*models.Complaint, error) {
	return s.repo.Get(ctx, id)
}

// List returns complaints matching the filter.
func (s *ComplaintService) List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	return s.repo.List(ctx, filter)
}

// Respond appends a message to the complaint thread. Responses from admin
// sessions are marked official.
func (s *ComplaintService) Respond(ctx context.Context, id, message string, sess *models.Session) (*models.ComplaintResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, models.NewValidationError("message")
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	resp := models.ComplaintResponse{
		ID:         uuid.NewString(),
		Message:    message,
		Author:     sess.User.Name,
		Timestamp:  s.now(),
		IsOfficial: sess.Credential != nil,
	}
	if err := s.repo.AppendResponse(ctx, id, resp); err != nil {
		return nil, fmt.Errorf("append response: %w", err)
	}
	return &resp, nil
}

// UpdateStatus moves a complaint through its lifecycle. The session needs
// the permission owning the complaint's category (or the "all" wildcard);
// otherwise models.ErrPermissionDenied.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, sess *models.Session) error {
	complaint, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	required, ok := categoryPermission[complaint.Category]
	if !ok {
		// General complaints need a wildcard credential.
		required = "all"
	}
	if !s.access.CanAccess(sess, required) {
		return models.ErrPermissionDenied
	}

	switch status {
	case models.ComplaintSubmitted, models.ComplaintUnderReview, models.ComplaintResolved, models.ComplaintClosed:
	default:
		return models.NewValidationError("status")
	}

	if err := s.repo.UpdateStatus(ctx, id, status, s.now()); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.logger.Infow("Complaint status updated",
		"case_id", id,
		"status", status,
		"by", sess.User.Email,
	)
	return nil
}

// Stats aggregates complaints for the admin dashboards.
func (s *ComplaintService) Stats(ctx context.Context) (map[string]interface{}, error) {
	byCategory, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return map[string]interface{}{
		"by_category": byCategory,
		"by_status":   byStatus,
	}, nil
}
