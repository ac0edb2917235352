package matchlog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coderoomsgo/internal/services/room"
)

const stream = "matches_stream"

// Publisher pushes round outcomes onto the Redis stream. Delivery is best
// effort and never blocks the room state machine.
type Publisher struct {
	rdc *redis.Client
}

func NewPublisher(rdc *redis.Client) *Publisher {
	return &Publisher{rdc: rdc}
}

// RecordRound implements room.Recorder.
func (p *Publisher) RecordRound(rec room.RoundRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.publish(ctx, rec); err != nil {
			zap.L().Warn("matchlog.publish", zap.Error(err), zap.String("room", rec.RoomID))
		}
	}()
}

func (p *Publisher) publish(ctx context.Context, rec room.RoundRecord) error {
	expired := "0"
	if rec.Expired {
		expired = "1"
	}
	return p.rdc.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"room":      rec.RoomID,
			"pid":       strconv.Itoa(rec.ProblemID),
			"finished":  strings.Join(rec.FinishedOrder, ","),
			"forfeited": strings.Join(rec.Forfeited, ","),
			"expired":   expired,
			"sa":        strconv.FormatInt(rec.StartedAt.Unix(), 10),
			"ea":        strconv.FormatInt(rec.EndedAt.Unix(), 10),
		},
	}).Err()
}
