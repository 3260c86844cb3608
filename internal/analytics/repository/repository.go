// Package repository runs the read-side aggregate queries for analytics.
package repository

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/stage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountByStatus groups all leads of an organization by pipeline stage.
func (r *Repository) CountByStatus(ctx context.Context, organizationID uuid.UUID) (map[stage.Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM leads
		WHERE organization_id = $1
		GROUP BY status
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[stage.Status]int)
	for rows.Next() {
		var status stage.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// MilestoneCounts holds how many leads reached each funnel milestone.
type MilestoneCounts struct {
	Scraped   int
	Qualified int
	Contacted int
	Responded int
	Calls     int
	Proposals int
	Won       int
}

// CountMilestones counts leads per milestone timestamp in one scan.
func (r *Repository) CountMilestones(ctx context.Context, organizationID uuid.UUID) (MilestoneCounts, error) {
	var counts MilestoneCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(qualified_at),
			COUNT(contacted_at),
			COUNT(responded_at),
			COUNT(call_at),
			COUNT(proposal_at),
			COUNT(*) FILTER (WHERE status = $2)
		FROM leads
		WHERE organization_id = $1
	`, organizationID, stage.StatusWon).Scan(
		&counts.Scraped, &counts.Qualified, &counts.Contacted, &counts.Responded,
		&counts.Calls, &counts.Proposals, &counts.Won,
	)
	return counts, err
}

// DayCounters are the per-day funnel counters backing daily_stats.
type DayCounters struct {
	LeadsScraped   int
	LeadsQualified int
	LeadsContacted int
	LeadsResponded int
	CallsScheduled int
	ProposalsSent  int
	DealsWon       int
	DealsLost      int
}

// CountDay recomputes the counters for one day window from scratch.
func (r *Repository) CountDay(ctx context.Context, organizationID uuid.UUID, start, end time.Time) (DayCounters, error) {
	var counters DayCounters
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE scraped_at   >= $2 AND scraped_at   < $3),
			COUNT(*) FILTER (WHERE qualified_at >= $2 AND qualified_at < $3),
			COUNT(*) FILTER (WHERE contacted_at >= $2 AND contacted_at < $3),
			COUNT(*) FILTER (WHERE responded_at >= $2 AND responded_at < $3),
			COUNT(*) FILTER (WHERE call_at      >= $2 AND call_at      < $3),
			COUNT(*) FILTER (WHERE proposal_at  >= $2 AND proposal_at  < $3),
			COUNT(*) FILTER (WHERE closed_at    >= $2 AND closed_at    < $3 AND status = $4),
			COUNT(*) FILTER (WHERE closed_at    >= $2 AND closed_at    < $3 AND status = $5)
		FROM leads
		WHERE organization_id = $1
	`, organizationID, start, end, stage.StatusWon, stage.StatusLost).Scan(
		&counters.LeadsScraped, &counters.LeadsQualified, &counters.LeadsContacted,
		&counters.LeadsResponded, &counters.CallsScheduled, &counters.ProposalsSent,
		&counters.DealsWon, &counters.DealsLost,
	)
	return counters, err
}

// CountPendingFollowups counts contacted leads with no response whose first
// contact is older than the cutoff.
func (r *Repository) CountPendingFollowups(ctx context.Context, organizationID uuid.UUID, cutoff time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM leads
		WHERE organization_id = $1
		  AND status IN ($2, $3, $4)
		  AND contacted_at IS NOT NULL AND contacted_at < $5
		  AND responded_at IS NULL
	`, organizationID, stage.StatusContacted, stage.StatusFollowup1, stage.StatusFollowup2, cutoff).Scan(&count)
	return count, err
}

// CountUpcomingCalls counts scheduled calls inside the window.
func (r *Repository) CountUpcomingCalls(ctx context.Context, organizationID uuid.UUID, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM leads
		WHERE organization_id = $1
		  AND status = $2
		  AND call_at >= $3 AND call_at < $4
	`, organizationID, stage.StatusCallScheduled, start, end).Scan(&count)
	return count, err
}

// ListOrganizations returns every organization that owns at least one lead,
// for cross-tenant recompute runs.
func (r *Repository) ListOrganizations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT organization_id FROM leads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		orgs = append(orgs, id)
	}
	return orgs, rows.Err()
}

// UpsertDailyStats writes the counters for a stat day. Keyed on the date so
// reruns overwrite instead of accumulate.
func (r *Repository) UpsertDailyStats(ctx context.Context, organizationID uuid.UUID, date time.Time, counters DayCounters) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_stats (organization_id, stat_date, leads_scraped, leads_qualified,
			leads_contacted, leads_responded, calls_scheduled, proposals_sent, deals_won, deals_lost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (organization_id, stat_date) DO UPDATE SET
			leads_scraped   = EXCLUDED.leads_scraped,
			leads_qualified = EXCLUDED.leads_qualified,
			leads_contacted = EXCLUDED.leads_contacted,
			leads_responded = EXCLUDED.leads_responded,
			calls_scheduled = EXCLUDED.calls_scheduled,
			proposals_sent  = EXCLUDED.proposals_sent,
			deals_won       = EXCLUDED.deals_won,
			deals_lost      = EXCLUDED.deals_lost,
			updated_at      = now()
	`, organizationID, date, counters.LeadsScraped, counters.LeadsQualified,
		counters.LeadsContacted, counters.LeadsResponded, counters.CallsScheduled,
		counters.ProposalsSent, counters.DealsWon, counters.DealsLost)
	return err
}

// DailyStats is one persisted stat day.
type DailyStats struct {
	StatDate time.Time
	DayCounters
}

// ListDailyStats returns persisted stat days in a date range, newest first.
func (r *Repository) ListDailyStats(ctx context.Context, organizationID uuid.UUID, from, to time.Time) ([]DailyStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT stat_date, leads_scraped, leads_qualified, leads_contacted, leads_responded,
			calls_scheduled, proposals_sent, deals_won, deals_lost
		FROM daily_stats
		WHERE organization_id = $1 AND stat_date >= $2 AND stat_date <= $3
		ORDER BY stat_date DESC
	`, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]DailyStats, 0)
	for rows.Next() {
		var s DailyStats
		if err := rows.Scan(&s.StatDate, &s.LeadsScraped, &s.LeadsQualified, &s.LeadsContacted,
			&s.LeadsResponded, &s.CallsScheduled, &s.ProposalsSent, &s.DealsWon, &s.DealsLost); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
