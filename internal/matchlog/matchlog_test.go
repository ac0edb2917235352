package matchlog

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoomsgo/internal/services/room"
)

// xaddFields splits flattened xadd args ("xadd", stream, id, k1, v1, ...)
// into the fixed prefix and a map of the field-value pairs.
func xaddFields(args []interface{}) (prefix []interface{}, fields map[interface{}]interface{}) {
	if len(args) < 3 || (len(args)-3)%2 != 0 {
		return args, nil
	}
	fields = make(map[interface{}]interface{})
	for i := 3; i < len(args); i += 2 {
		fields[args[i]] = args[i+1]
	}
	return args[:3], fields
}

func TestPublishRound(t *testing.T) {
	rdc, mock := redismock.NewClientMock()

	rec := room.RoundRecord{
		RoomID:        "room-1",
		ProblemID:     42,
		FinishedOrder: []string{"alice", "bob"},
		Forfeited:     []string{"carol"},
		Expired:       true,
		StartedAt:     time.Unix(100, 0),
		EndedAt:       time.Unix(200, 0),
	}

	// redismock compares xadd args positionally, but XAddArgs.Values is a
	// map whose flattening order is random; compare field-value pairs as
	// sets so the check is order-insensitive.
	mock.CustomMatch(func(expected, actual []interface{}) error {
		ePrefix, eFields := xaddFields(expected)
		aPrefix, aFields := xaddFields(actual)
		if !reflect.DeepEqual(ePrefix, aPrefix) || !reflect.DeepEqual(eFields, aFields) {
			return fmt.Errorf("args not equal, expected %v, got %v", expected, actual)
		}
		return nil
	}).ExpectXAdd(&redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"room":      "room-1",
			"pid":       "42",
			"finished":  "alice,bob",
			"forfeited": "carol",
			"expired":   "1",
			"sa":        "100",
			"ea":        "200",
		},
	}).SetVal("1-0")

	p := NewPublisher(rdc)
	require.NoError(t, p.publish(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	msgs := []redis.XMessage{
		{
			ID: "1-0",
			Values: map[string]interface{}{
				"room":      "room-1",
				"pid":       "42",
				"finished":  "alice",
				"forfeited": "",
				"expired":   "0",
				"sa":        "100",
				"ea":        "200",
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WithArgs("1-0", "room-1", 42, "alice", "", false, int64(100), int64(200)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, persist(context.Background(), db, msgs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	started := time.Unix(100, 0).UTC()
	ended := time.Unix(200, 0).UTC()
	rows := sqlmock.NewRows([]string{
		"room_id", "problem_id", "finished_order", "forfeited", "expired", "started_at", "ended_at",
	}).
		AddRow("room-1", 42, "alice,bob", "", false, started, ended).
		AddRow("room-2", 7, "", "carol", true, started, ended)
	mock.ExpectQuery("SELECT room_id, problem_id").
		WithArgs(10, 0).
		WillReturnRows(rows)

	out, err := NewStore(db).List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []string{"alice", "bob"}, out[0].FinishedOrder)
	assert.Empty(t, out[0].Forfeited)
	assert.Equal(t, []string{"carol"}, out[1].Forfeited)
	assert.True(t, out[1].Expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}
