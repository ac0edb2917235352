package matchlog

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type MatchDTO struct {
	RoomID        string    `json:"room_id"`
	ProblemID     int       `json:"problem_id"`
	FinishedOrder []string  `json:"finished_order"`
	Forfeited     []string  `json:"forfeited"`
	Expired       bool      `json:"expired"`
	StartedAt     time.Time `json:"started_at" example:"2025-07-27T16:05:05Z"`
	EndedAt       time.Time `json:"ended_at"   example:"2025-07-27T16:35:05Z"`
}

// Store reads persisted round outcomes back out of Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) List(ctx context.Context, limit, offset int) ([]MatchDTO, error) {
	if limit == 0 {
		limit = 10
	}

	const q = `SELECT room_id, problem_id, coalesce(finished_order,''),
	                  coalesce(forfeited,''), expired, started_at, ended_at
	             FROM matches
	            ORDER BY ended_at DESC
	            LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]MatchDTO, 0, limit)
	for rows.Next() {
		var m MatchDTO
		var finished, forfeited string
		if err := rows.Scan(&m.RoomID, &m.ProblemID, &finished, &forfeited,
			&m.Expired, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		m.FinishedOrder = splitCSV(finished)
		m.Forfeited = splitCSV(forfeited)
		list = append(list, m)
	}
	return list, rows.Err()
}

func splitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
