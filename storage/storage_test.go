package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nicoberrocal/arenaCore/events"
)

func testTrace(seed int64, winner *int) *events.Trace {
	return &events.Trace{
		ID: bson.NewObjectID(),
		Metadata: events.Metadata{
			Version:        events.TraceVersion,
			Seed:           seed,
			TicksPerSecond: 30,
			Grid:           events.GridSize{Width: 7, Height: 8},
			Timestamp:      time.Now().UTC(),
		},
		Events: []events.Event{
			{Tick: 0, Type: events.SimulationStart},
			{Tick: 150, Type: events.SimulationEnd},
		},
		FinalState: events.FinalState{
			WinnerTeam: winner,
			TotalTicks: 150,
			Survivors:  []string{"grunt_0_1"},
		},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "battles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndGetTrace(t *testing.T) {
	db := openTestDB(t)

	winner := 1
	trace := testTrace(42, &winner)
	require.NoError(t, db.InsertTrace(trace))

	loaded, err := db.GetTrace(trace.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, trace.Metadata.Seed, loaded.Metadata.Seed)
	assert.Equal(t, trace.FinalState.TotalTicks, loaded.FinalState.TotalTicks)
	require.NotNil(t, loaded.FinalState.WinnerTeam)
	assert.Equal(t, 1, *loaded.FinalState.WinnerTeam)
	assert.Len(t, loaded.Events, 2)
}

func TestListBattles(t *testing.T) {
	db := openTestDB(t)

	winner := 0
	require.NoError(t, db.InsertTrace(testTrace(1, &winner)))
	require.NoError(t, db.InsertTrace(testTrace(2, nil))) // draw

	battles, err := db.ListBattles(10)
	require.NoError(t, err)
	require.Len(t, battles, 2)

	count, err := db.BattleCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	draws := 0
	for _, b := range battles {
		if b.WinnerTeam == nil {
			draws++
		}
	}
	assert.Equal(t, 1, draws)
}

func TestGetMissingTrace(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetTrace("does-not-exist")
	assert.Error(t, err)
}
