package memory

import (
	"context"
	"time"

	"github.com/dbu-union/portal-server/internal/models"
)

// SeedElections loads the demo ballots used when the portal runs without a
// database.
func SeedElections(repo *ElectionRepo) {
	repo.Put(&models.Election{
		ID:          "election-001",
		Title:       "Student Union President Election 2024",
		Description: "Vote for the next Student Union President",
		Status:      models.ElectionActive,
		StartDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC),
		Candidates: []models.Candidate{
			{
				ID:       "candidate-001",
				Name:     "Hewan Tadesse",
				Position: "President",
				Votes:    4523,
				Platform: []string{"Student Welfare", "Academic Excellence", "Campus Infrastructure"},
			},
			{
				ID:       "candidate-002",
				Name:     "Dawit Mekonnen",
				Position: "President",
				Votes:    4024,
				Platform: []string{"Innovation Hub", "Student Rights", "Environmental Sustainability"},
			},
		},
		TotalVotes:     8547,
		EligibleVoters: 12547,
	})

	repo.Put(&models.Election{
		ID:             "election-002",
		Title:          "Branch Leader Elections",
		Description:    "Elections for various branch leadership positions",
		Status:         models.ElectionUpcoming,
		StartDate:      time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		Candidates:     []models.Candidate{},
		EligibleVoters: 12547,
	})
}

// SeedClubs loads the demo club roster.
func SeedClubs(repo *ClubRepo) {
	clubs := []models.Club{
		{
			ID:          "club-001",
			Name:        "Debate Society",
			Description: "Developing critical thinking and public speaking skills",
			Category:    "Academic",
			Members:     45,
			Status:      models.ClubActive,
		},
		{
			ID:          "club-002",
			Name:        "Drama Club",
			Description: "Theatrical performances and creative expression",
			Category:    "Arts",
			Members:     32,
			Status:      models.ClubActive,
		},
		{
			ID:          "club-003",
			Name:        "Robotics Society",
			Description: "Innovation in robotics and automation",
			Category:    "Technology",
			Members:     28,
			Status:      models.ClubPending,
		},
	}
	for i := range clubs {
		_ = repo.Insert(context.Background(), &clubs[i])
	}
}
