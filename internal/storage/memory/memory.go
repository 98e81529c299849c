// Package memory provides in-process repository implementations mirroring
// the postgres ones. Used in development (the portal's data is mocked) and
// as test fixtures.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
)

// ElectionRepo is the in-memory services.ElectionRepo.
type ElectionRepo struct {
	mu        sync.Mutex
	elections map[string]*models.Election
	order     []string
	votes     []models.Vote
	voted     map[string]bool // electionID + "|" + voterID
}

// NewElectionRepo creates an empty repo.
func NewElectionRepo() *ElectionRepo {
	return &ElectionRepo{
		elections: make(map[string]*models.Election),
		voted:     make(map[string]bool),
	}
}

// Put inserts or replaces an election. Seed/test helper.
func (r *ElectionRepo) Put(e *models.Election) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.elections[e.ID]; !exists {
		r.order = append(r.order, e.ID)
	}
	copied := snapshot(e)
	r.elections[e.ID] = &copied
}

func (r *ElectionRepo) List(_ context.Context, status models.ElectionStatus) ([]models.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Election, 0, len(r.order))
	for _, id := range r.order {
		e := r.elections[id]
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, snapshot(e))
	}
	return out, nil
}

func (r *ElectionRepo) Get(_ context.Context, id string) (*models.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elections[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	s := snapshot(e)
	return &s, nil
}

// CastVote stores the vote and updates tallies under one lock, so
// totalVotes always equals the candidate sum and a voter cannot vote twice.
func (r *ElectionRepo) CastVote(_ context.Context, vote *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.elections[vote.ElectionID]
	if !ok {
		return models.ErrNotFound
	}

	key := vote.ElectionID + "|" + vote.VoterID
	if r.voted[key] {
		return models.ErrAlreadyVoted
	}

	for i := range e.Candidates {
		if e.Candidates[i].ID == vote.CandidateID {
			e.Candidates[i].Votes++
			e.TotalVotes++
			r.voted[key] = true
			r.votes = append(r.votes, *vote)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *ElectionRepo) ListVotes(_ context.Context) ([]models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Vote(nil), r.votes...), nil
}

func snapshot(e *models.Election) models.Election {
	copied := *e
	copied.Candidates = append([]models.Candidate(nil), e.Candidates...)
	return copied
}

// ComplaintRepo is the in-memory services.ComplaintRepo.
type ComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*models.Complaint
	order      []string
}

// NewComplaintRepo creates an empty repo.
func NewComplaintRepo() *ComplaintRepo {
	return &ComplaintRepo{complaints: make(map[string]*models.Complaint)}
}

func (r *ComplaintRepo) Insert(_ context.Context, c *models.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.complaints[c.ID]; exists {
		return fmt.Errorf("case ID %s already exists", c.ID)
	}
	copied := *c
	r.complaints[c.ID] = &copied
	r.order = append(r.order, c.ID)
	return nil
}

func (r *ComplaintRepo) Get(_ context.Context, id string) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *c
	copied.Responses = append([]models.ComplaintResponse(nil), c.Responses...)
	return &copied, nil
}

func (r *ComplaintRepo) List(_ context.Context, filter services.ComplaintFilter) ([]models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Complaint, 0, len(r.order))
	for _, id := range r.order {
		c := r.complaints[id]
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.SubmittedBy != "" && c.SubmittedBy != filter.SubmittedBy {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *ComplaintRepo) AppendResponse(_ context.Context, id string, resp models.ComplaintResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Responses = append(c.Responses, resp)
	c.UpdatedAt = resp.Timestamp
	return nil
}

func (r *ComplaintRepo) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = updatedAt
	return nil
}

func (r *ComplaintRepo) CountByCategory(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, id := range r.order {
		counts[r.complaints[id].Category]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for _, id := range r.order {
		cat := r.complaints[id].Category
		if n, ok := counts[cat]; ok {
			out = append(out, models.CategoryCount{Category: cat, Count: n})
			delete(counts, cat)
		}
	}
	return out, nil
}

func (r *ComplaintRepo) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.ComplaintStatus]int)
	for _, id := range r.order {
		counts[r.complaints[id].Status]++
	}
	out := make([]models.StatusCount, 0, len(counts))
	for _, status := range []models.ComplaintStatus{
		models.ComplaintSubmitted, models.ComplaintUnderReview,
		models.ComplaintResolved, models.ComplaintClosed,
	} {
		if n, ok := counts[status]; ok {
			out = append(out, models.StatusCount{Status: status, Count: n})
		}
	}
	return out, nil
}

// ClubRepo is the in-memory services.ClubRepo.
type ClubRepo struct {
	mu    sync.Mutex
	clubs map[string]*models.Club
	order []string
}

// NewClubRepo creates an empty repo.
func NewClubRepo() *ClubRepo {
	return &ClubRepo{clubs: make(map[string]*models.Club)}
}

func (r *ClubRepo) Insert(_ context.Context, c *models.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clubs[c.ID]; exists {
		return fmt.Errorf("club ID %s already exists", c.ID)
	}
	copied := *c
	r.clubs[c.ID] = &copied
	r.order = append(r.order, c.ID)
	return nil
}

func (r *ClubRepo) Get(_ context.Context, id string) (*models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *ClubRepo) List(_ context.Context, status models.ClubStatus) ([]models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Club, 0, len(r.order))
	for _, id := range r.order {
		c := r.clubs[id]
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *ClubRepo) UpdateStatus(_ context.Context, id string, status models.ClubStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return models.ErrNotFound
	}
	c.Status = status
	return nil
}
