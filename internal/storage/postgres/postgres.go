// Package postgres implements the portal repositories on PostgreSQL via
// pgx. The memory package mirrors these for development and tests.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ElectionRepo is the pgx-backed services.ElectionRepo.
type ElectionRepo struct {
	db *pgxpool.Pool
}

// NewElectionRepo creates a new election repository.
func NewElectionRepo(db *pgxpool.Pool) *ElectionRepo {
	return &ElectionRepo{db: db}
}

func (r *ElectionRepo) List(ctx context.Context, status models.ElectionStatus) ([]models.Election, error) {
	query := `SELECT id, title, description, status, start_date, end_date, total_votes, eligible_voters
		FROM elections WHERE ($1 = '' OR status = $1) ORDER BY start_date`

	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elections []models.Election
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Status,
			&e.StartDate, &e.EndDate, &e.TotalVotes, &e.EligibleVoters); err != nil {
			return nil, err
		}
		elections = append(elections, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range elections {
		candidates, err := r.candidates(ctx, elections[i].ID)
		if err != nil {
			return nil, err
		}
		elections[i].Candidates = candidates
	}
	return elections, nil
}

func (r *ElectionRepo) Get(ctx context.Context, id string) (*models.Election, error) {
	query := `SELECT id, title, description, status, start_date, end_date, total_votes, eligible_voters
		FROM elections WHERE id = $1`

	var e models.Election
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.Title, &e.Description, &e.Status,
		&e.StartDate, &e.EndDate, &e.TotalVotes, &e.EligibleVoters)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query election: %w", err)
	}

	e.Candidates, err = r.candidates(ctx, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ElectionRepo) candidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	query := `SELECT id, name, position, votes, platform
		FROM candidates WHERE election_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.Votes, &c.Platform); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CastVote inserts the vote record and updates the tallies in one
// transaction. The unique (election_id, voter_id) index turns a double cast
// into models.ErrAlreadyVoted; the tally updates keep total_votes equal to
// the candidate sum.
func (r *ElectionRepo) CastVote(ctx context.Context, vote *models.Vote) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO votes (id, election_id, candidate_id, voter_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.ElectionID, vote.CandidateID, vote.VoterID, vote.CastAt)
	if isUniqueViolation(err) {
		return models.ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE candidates SET votes = votes + 1 WHERE id = $1 AND election_id = $2
	`, vote.CandidateID, vote.ElectionID)
	if err != nil {
		return fmt.Errorf("update candidate tally: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE elections SET total_votes = total_votes + 1 WHERE id = $1
	`, vote.ElectionID); err != nil {
		return fmt.Errorf("update election tally: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ElectionRepo) ListVotes(ctx context.Context) ([]models.Vote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, election_id, candidate_id, voter_id, cast_at FROM votes ORDER BY cast_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.CandidateID, &v.VoterID, &v.CastAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// ComplaintRepo is the pgx-backed services.ComplaintRepo. Evidence and
// responses are stored as JSONB documents.
type ComplaintRepo struct {
	db *pgxpool.Pool
}

// NewComplaintRepo creates a new complaint repository.
func NewComplaintRepo(db *pgxpool.Pool) *ComplaintRepo {
	return &ComplaintRepo{db: db}
}

func (r *ComplaintRepo) Insert(ctx context.Context, c *models.Complaint) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO complaints (id, title, description, category, status, priority,
			submitted_by, assigned_to, submitted_at, updated_at, evidence, responses, branch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID, c.Title, c.Description, c.Category, c.Status, c.Priority,
		c.SubmittedBy, c.AssignedTo, c.SubmittedAt, c.UpdatedAt, c.Evidence, c.Responses, c.Branch)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (r *ComplaintRepo) Get(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	err := r.db.QueryRow(ctx, `
		SELECT id, title, description, category, status, priority,
			submitted_by, assigned_to, submitted_at, updated_at, evidence, responses, branch
		FROM complaints WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Status, &c.Priority,
		&c.SubmittedBy, &c.AssignedTo, &c.SubmittedAt, &c.UpdatedAt, &c.Evidence, &c.Responses, &c.Branch)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query complaint: %w", err)
	}
	return &c, nil
}

func (r *ComplaintRepo) List(ctx context.Context, filter services.ComplaintFilter) ([]models.Complaint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, status, priority,
			submitted_by, assigned_to, submitted_at, updated_at, evidence, responses, branch
		FROM complaints
		WHERE ($1 = '' OR status = $1)
			AND ($2 = '' OR category = $2)
			AND ($3 = '' OR submitted_by = $3)
		ORDER BY submitted_at DESC
	`, string(filter.Status), filter.Category, filter.SubmittedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Status, &c.Priority,
			&c.SubmittedBy, &c.AssignedTo, &c.SubmittedAt, &c.UpdatedAt, &c.Evidence, &c.Responses, &c.Branch); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (r *ComplaintRepo) AppendResponse(ctx context.Context, id string, resp models.ComplaintResponse) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE complaints
		SET responses = responses || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, id, []models.ComplaintResponse{resp}, resp.Timestamp)
	if err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepo) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*) FROM complaints GROUP BY category ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *ComplaintRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*) FROM complaints GROUP BY status ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ClubRepo is the pgx-backed services.ClubRepo.
type ClubRepo struct {
	db *pgxpool.Pool
}

// NewClubRepo creates a new club repository.
func NewClubRepo(db *pgxpool.Pool) *ClubRepo {
	return &ClubRepo{db: db}
}

func (r *ClubRepo) Insert(ctx context.Context, c *models.Club) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clubs (id, name, description, category, members, status,
			advisor_email, founding_members, constitution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Name, c.Description, c.Category, c.Members, c.Status,
		c.AdvisorEmail, c.FoundingMembers, c.Constitution, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert club: %w", err)
	}
	return nil
}

func (r *ClubRepo) Get(ctx context.Context, id string) (*models.Club, error) {
	var c models.Club
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, category, members, status,
			advisor_email, founding_members, constitution, created_at
		FROM clubs WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Members, &c.Status,
		&c.AdvisorEmail, &c.FoundingMembers, &c.Constitution, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query club: %w", err)
	}
	return &c, nil
}

func (r *ClubRepo) List(ctx context.Context, status models.ClubStatus) ([]models.Club, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, category, members, status,
			advisor_email, founding_members, constitution, created_at
		FROM clubs WHERE ($1 = '' OR status = $1) ORDER BY name
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Members, &c.Status,
			&c.AdvisorEmail, &c.FoundingMembers, &c.Constitution, &c.CreatedAt); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (r *ClubRepo) UpdateStatus(ctx context.Context, id string, status models.ClubStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE clubs SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update club status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
