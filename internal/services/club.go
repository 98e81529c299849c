package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
)

// minFoundingMembers is the registration threshold; blank names don't count.
const minFoundingMembers = 10

// ClubRepo persists clubs.
type ClubRepo interface {
	Insert(ctx context.Context, c *models.Club) error
	Get(ctx context.Context, id string) (*models.Club, error)
	List(ctx context.Context, status models.ClubStatus) ([]models.Club, error)
	UpdateStatus(ctx context.Context, id string, status models.ClubStatus) error
}

// ClubService handles club registration and approval.
type ClubService struct {
	repo   ClubRepo
	access *AccessController
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewClubService creates a new club service.
func NewClubService(repo ClubRepo, access *AccessController, logger *zap.SugaredLogger) *ClubService {
	return &ClubService{repo: repo, access: access, now: time.Now, logger: logger}
}

// Register validates and files a new club as pending. Name, advisor email
// and a constitution document are required, plus at least ten non-blank
// founding members; a ValidationError names every failing field and no
// partial registration is stored.
func (s *ClubService) Register(ctx context.Context, reg *models.ClubRegistration) (*models.Club, error) {
	var missing []string
	if strings.TrimSpace(reg.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(reg.AdvisorEmail) == "" {
		missing = append(missing, "advisor_email")
	}
	if strings.TrimSpace(reg.Constitution) == "" {
		missing = append(missing, "constitution")
	}

	founders := make([]string, 0, len(reg.FoundingMembers))
	for _, m := range reg.FoundingMembers {
		if strings.TrimSpace(m) != "" {
			founders = append(founders, strings.TrimSpace(m))
		}
	}
	if len(founders) < minFoundingMembers {
		missing = append(missing, "founding_members")
	}

	if len(missing) > 0 {
		return nil, models.NewValidationError(missing...)
	}

	club := &models.Club{
		ID:              "club-" + uuid.NewString()[:8],
		Name:            reg.Name,
		Description:     reg.Description,
		Category:        reg.Category,
		Members:         len(founders),
		Status:          models.ClubPending,
		AdvisorEmail:    reg.AdvisorEmail,
		FoundingMembers: founders,
		Constitution:    reg.Constitution,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Insert(ctx, club); err != nil {
		return nil, fmt.Errorf("insert club: %w", err)
	}

	s.logger.Infow("Club registration filed",
		"club_id", club.ID,
		"name", club.Name,
		"founders", len(founders),
	)
	return club, nil
}

// Get returns one club.
func (s *ClubService) Get(ctx context.Context, id string) (*models.Club, error) {
	return s.repo.Get(ctx, id)
}

// List returns clubs, optionally filtered by status ("" for all).
func (s *ClubService) List(ctx context.Context, status models.ClubStatus) ([]models.Club, error) {
	return s.repo.List(ctx, status)
}

// Approve activates a pending club. Requires the club_approval permission.
func (s *ClubService) Approve(ctx context.Context, id string, sess *models.Session) error {
	if !s.access.CanAccess(sess, "club_approval") {
		return models.ErrPermissionDenied
	}

	club, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if club.Status != models.ClubPending {
		return models.NewValidationError("status")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.ClubActive); err != nil {
		return fmt.Errorf("update club status: %w", err)
	}

	s.logger.Infow("Club approved", "club_id", id, "by", sess.User.Email)
	return nil
}
