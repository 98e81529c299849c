package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
)

// ElectionRepo persists elections and vote records. CastVote must reject a
// second vote for the same (election, voter) pair with models.ErrAlreadyVoted
// and update the candidate tally and election total atomically, keeping
// totalVotes equal to the candidate sum.
type ElectionRepo interface {
	List(ctx context.Context, status models.ElectionStatus) ([]models.Election, error)
	Get(ctx context.Context, id string) (*models.Election, error)
	CastVote(ctx context.Context, vote *models.Vote) error
	ListVotes(ctx context.Context) ([]models.Vote, error)
}

// ElectionService handles election listing and server-side ballot casting.
type ElectionService struct {
	repo   ElectionRepo
	ledger *LedgerService
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewElectionService creates a new election service.
func NewElectionService(repo ElectionRepo, ledger *LedgerService, logger *zap.SugaredLogger) *ElectionService {
	return &ElectionService{repo: repo, ledger: ledger, now: time.Now, logger: logger}
}

// List returns elections, optionally filtered by status ("" for all).
func (s *ElectionService) List(ctx context.Context, status models.ElectionStatus) ([]models.Election, error) {
	elections, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return elections, nil
}

// Get returns one election with its candidates.
func (s *ElectionService) Get(ctx context.Context, id string) (*models.Election, error) {
	return s.repo.Get(ctx, id)
}

// CastVote records a ballot for voterID. The election must be active and the
// candidate must belong to it. One vote per (election, voter) is enforced by
// the repository's unique vote record; a duplicate cast fails with
// models.ErrAlreadyVoted. Accepted votes are appended to the integrity
// ledger and a receipt tagged with the candidate is returned.
func (s *ElectionService) CastVote(ctx context.Context, electionID, candidateID, voterID string) (*models.VoteReceipt, error) {
	election, err := s.repo.Get(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if election.Status != models.ElectionActive {
		return nil, models.ErrElectionNotActive
	}

	found := false
	for _, c := range election.Candidates {
		if c.ID == candidateID {
			found = true
			break
		}
	}
	if !found {
		return nil, models.ErrNotFound
	}

	vote := &models.Vote{
		ID:          uuid.New(),
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     voterID,
		CastAt:      s.now(),
	}
	if err := s.repo.CastVote(ctx, vote); err != nil {
		return nil, err
	}

	leaf := VoteLeafHash(vote)
	s.ledger.Append(leaf)

	s.logger.Infow("Vote cast",
		"election", electionID,
		"candidate", candidateID,
		"vote_id", vote.ID,
	)

	return &models.VoteReceipt{
		VoteID:      vote.ID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		CastAt:      vote.CastAt,
		LeafHash:    leaf,
	}, nil
}

// RebuildLedger refreshes the integrity ledger from all stored votes.
func (s *ElectionService) RebuildLedger(ctx context.Context) error {
	votes, err := s.repo.ListVotes(ctx)
	if err != nil {
		return fmt.Errorf("list votes: %w", err)
	}
	leaves := make([]string, len(votes))
	for i := range votes {
		leaves[i] = VoteLeafHash(&votes[i])
	}
	s.ledger.BuildFromHashes(leaves)
	return nil
}

// VoteLeafHash derives the ledger leaf for a vote record. The voter ID is
// not part of the leaf, so published proofs reveal no voter identity.
func VoteLeafHash(v *models.Vote) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d", v.ID, v.ElectionID, v.CandidateID, v.CastAt.UnixNano())
	return hex.EncodeToString(h.Sum(nil))
}
