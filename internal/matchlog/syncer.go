package matchlog

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run tails the Redis stream and persists every round outcome.
func Run(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// block up to 2 s for new entries
			res, err := rdc.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   100,
				Block:   2000 * time.Millisecond,
			}).Result()
			if err != nil && err != redis.Nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("matchlog.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(res) == 0 {
				continue
			}
			entries := res[0].Messages
			if err := persist(ctx, db, entries); err != nil {
				zap.L().Warn("matchlog.persist", zap.Error(err))
				continue
			}
			lastID = entries[len(entries)-1].ID
		}
	}()
}

func persist(ctx context.Context, db *sql.DB, msgs []redis.XMessage) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO matches
	               (stream_id, room_id, problem_id, finished_order, forfeited,
	                expired, started_at, ended_at)
	             VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7), to_timestamp($8))
	             ON CONFLICT DO NOTHING`
	for _, m := range msgs {
		roomID, _ := m.Values["room"].(string)
		pid, _ := m.Values["pid"].(string)
		finished, _ := m.Values["finished"].(string)
		forfeited, _ := m.Values["forfeited"].(string)
		expired, _ := m.Values["expired"].(string)
		sa, _ := m.Values["sa"].(string)
		ea, _ := m.Values["ea"].(string)

		problemID, _ := strconv.Atoi(pid)
		startedAt, _ := strconv.ParseInt(sa, 10, 64)
		endedAt, _ := strconv.ParseInt(ea, 10, 64)

		if _, err := tx.ExecContext(ctx, ins,
			m.ID, roomID, problemID, finished, forfeited,
			expired == "1", startedAt, endedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
