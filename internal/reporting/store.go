// internal/reporting/store.go

// Package reporting mirrors decision outcomes into the relational reporting
// schema. Writes are fire-and-forget from the caller's point of view: a
// reporting failure is logged, never surfaced.
package reporting

import (
	"context"
	"database/sql"
	"time"

	"lending-backend/internal/common/logger"
)

// AccessDecisionRow is one resolver outcome flattened for analytics.
type AccessDecisionRow struct {
	ClientID    string
	Flow        string
	Access      bool
	Success     bool
	TotalLoans  int
	IsRecurrent bool
	Error       string
	DecidedAt   time.Time
}

// RepairRow is one msisdn repair mirrored from the audit table.
type RepairRow struct {
	ClientID   string
	OldMsisdn  string
	NewMsisdn  string
	Process    string
	RepairedAt time.Time
}

// FlowCount aggregates decisions per flow for one reporting day.
type FlowCount struct {
	Flow    string
	Granted int
	Denied  int
}

// Store writes to and reads from the lending reporting schema.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "reporting"}),
	}
}

// RecordAccessDecision appends one resolver outcome.
func (s *Store) RecordAccessDecision(ctx context.Context, row AccessDecisionRow) bool {
	const query = `INSERT INTO lending.access_decisions
		(client_id, flow, access, success, total_loans, is_recurrent, error, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		row.ClientID, row.Flow, row.Access, row.Success,
		row.TotalLoans, row.IsRecurrent, row.Error, row.DecidedAt)
	if err != nil {
		s.logger.Error("failed to record access decision", map[string]interface{}{
			"clientId": row.ClientID,
			"error":    err,
		})
		return false
	}
	return true
}

// RecordRepair appends one msisdn repair.
func (s *Store) RecordRepair(ctx context.Context, row RepairRow) bool {
	const query = `INSERT INTO lending.msisdn_repairs
		(client_id, old_msisdn, new_msisdn, process, repaired_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query,
		row.ClientID, row.OldMsisdn, row.NewMsisdn, row.Process, row.RepairedAt)
	if err != nil {
		s.logger.Error("failed to record repair", map[string]interface{}{
			"clientId": row.ClientID,
			"error":    err,
		})
		return false
	}
	return true
}

// RepairCountSince counts repairs recorded after the given instant, used by
// the operational alert that watches for repair spikes.
func (s *Store) RepairCountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM lending.msisdn_repairs WHERE repaired_at >= $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// AccessSummaryByFlow aggregates granted/denied decisions per flow between
// two instants.
func (s *Store) AccessSummaryByFlow(ctx context.Context, from, to time.Time) ([]FlowCount, error) {
	const query = `SELECT flow,
		COUNT(*) FILTER (WHERE access),
		COUNT(*) FILTER (WHERE NOT access)
		FROM lending.access_decisions
		WHERE decided_at >= $1 AND decided_at < $2
		GROUP BY flow ORDER BY flow`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []FlowCount
	for rows.Next() {
		var fc FlowCount
		if err := rows.Scan(&fc.Flow, &fc.Granted, &fc.Denied); err != nil {
			return nil, err
		}
		summary = append(summary, fc)
	}
	return summary, rows.Err()
}
