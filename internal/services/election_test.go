package services_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
	"github.com/dbu-union/portal-server/internal/storage/memory"
)

func newElectionService(t *testing.T) (*services.ElectionService, *services.LedgerService, *memory.ElectionRepo) {
	t.Helper()
	repo := memory.NewElectionRepo()
	memory.SeedElections(repo)
	ledger := services.NewLedgerService(zap.NewNop().Sugar())
	return services.NewElectionService(repo, ledger, zap.NewNop().Sugar()), ledger, repo
}

func TestCastVote(t *testing.T) {
	svc, ledger, _ := newElectionService(t)
	ctx := context.Background()

	before, err := svc.Get(ctx, "election-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	receipt, err := svc.CastVote(ctx, "election-001", "candidate-001", "DBU1500962")
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if receipt.CandidateID != "candidate-001" || receipt.LeafHash == "" {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	after, err := svc.Get(ctx, "election-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.TotalVotes != before.TotalVotes+1 {
		t.Errorf("totalVotes = %d, want %d", after.TotalVotes, before.TotalVotes+1)
	}
	if after.Candidates[0].Votes != before.Candidates[0].Votes+1 {
		t.Errorf("candidate votes = %d, want %d", after.Candidates[0].Votes, before.Candidates[0].Votes+1)
	}

	// The total stays equal to the candidate sum.
	sum := 0
	for _, c := range after.Candidates {
		sum += c.Votes
	}
	if after.TotalVotes != sum {
		t.Errorf("totalVotes = %d, candidate sum = %d", after.TotalVotes, sum)
	}

	// The accepted vote entered the ledger.
	if ledger.LeafCount() != 1 {
		t.Errorf("ledger leaves = %d, want 1", ledger.LeafCount())
	}
}

func TestCastVoteRejectsSecondBallot(t *testing.T) {
	svc, _, _ := newElectionService(t)
	ctx := context.Background()

	if _, err := svc.CastVote(ctx, "election-001", "candidate-001", "DBU1500962"); err != nil {
		t.Fatalf("first CastVote: %v", err)
	}

	// Same voter, different candidate: still one vote per election.
	_, err := svc.CastVote(ctx, "election-001", "candidate-002", "DBU1500962")
	if !errors.Is(err, models.ErrAlreadyVoted) {
		t.Fatalf("second CastVote = %v, want ErrAlreadyVoted", err)
	}

	// A different voter is unaffected.
	if _, err := svc.CastVote(ctx, "election-001", "candidate-002", "DBU1500963"); err != nil {
		t.Fatalf("other voter CastVote: %v", err)
	}
}

func TestCastVoteRejectsInactiveElection(t *testing.T) {
	svc, _, _ := newElectionService(t)

	_, err := svc.CastVote(context.Background(), "election-002", "candidate-003", "DBU1500962")
	if !errors.Is(err, models.ErrElectionNotActive) {
		t.Fatalf("CastVote on upcoming election = %v, want ErrElectionNotActive", err)
	}
}

func TestCastVoteRejectsForeignCandidate(t *testing.T) {
	svc, _, _ := newElectionService(t)

	_, err := svc.CastVote(context.Background(), "election-001", "candidate-999", "DBU1500962")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("CastVote with foreign candidate = %v, want ErrNotFound", err)
	}
}

func TestListElectionsByStatus(t *testing.T) {
	svc, _, _ := newElectionService(t)

	active, err := svc.List(context.Background(), models.ElectionActive)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].ID != "election-001" {
		t.Errorf("active elections = %v", active)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all elections = %d, want 2", len(all))
	}
}

func TestRebuildLedger(t *testing.T) {
	svc, ledger, _ := newElectionService(t)
	ctx := context.Background()

	for _, voter := range []string{"DBU1500962", "DBU1500963", "DBU1500964"} {
		if _, err := svc.CastVote(ctx, "election-001", "candidate-001", voter); err != nil {
			t.Fatalf("CastVote(%s): %v", voter, err)
		}
	}
	rootBefore := ledger.Root()

	if err := svc.RebuildLedger(ctx); err != nil {
		t.Fatalf("RebuildLedger: %v", err)
	}
	if ledger.LeafCount() != 3 {
		t.Errorf("leaves after rebuild = %d, want 3", ledger.LeafCount())
	}
	if ledger.Root() != rootBefore {
		t.Errorf("rebuild changed the root: %q != %q", ledger.Root(), rootBefore)
	}
}
