package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoberrocal/arenaCore/config"
)

const testDefaults = `
unit_defaults:
  hp: 500
  attack_damage: 100
  attack_speed: 1.0
  armor: 0
  magic_resist: 0
  crit_chance: 0
  dodge_chance: 0
  max_mana: 999
`

const testUnits = `
units:
  grunt:
    name: "Grunt"
    traits: [knight]
  paladin:
    name: "Paladin"
    traits: [knight]
`

const testTraits = `
traits:
  knight:
    name: "Knight"
    thresholds:
      2:
        trigger: on_battle_start
        effects:
          - type: stat_bonus
            stat: armor
            value: 20
            target: holders
`

func testServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"defaults.yaml": testDefaults,
		"units.yaml":    testUnits,
		"traits.yaml":   testTraits,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return NewServer(config.NewLoader(dir), nil, zerolog.Nop())
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestUnitsEndpoint(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/api/units", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Units []struct {
			ID     string   `json:"id"`
			Traits []string `json:"traits"`
		} `json:"units"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Units, 2)
}

func TestSynergiesEndpoint(t *testing.T) {
	server := testServer(t)

	body, _ := json.Marshal(SynergyRequest{Units: []string{"grunt", "paladin", "grunt"}})
	req := httptest.NewRequest("POST", "/api/synergies", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Synergies []struct {
			ID              string `json:"id"`
			Count           int    `json:"count"`
			ActiveThreshold *int   `json:"active_threshold"`
			IsActive        bool   `json:"is_active"`
		} `json:"synergies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Synergies, 1)

	knight := payload.Synergies[0]
	assert.Equal(t, "knight", knight.ID)
	// Duplicate grunt counts once.
	assert.Equal(t, 2, knight.Count)
	assert.True(t, knight.IsActive)
	require.NotNil(t, knight.ActiveThreshold)
	assert.Equal(t, 2, *knight.ActiveThreshold)
}

func TestSimulateEndpoint(t *testing.T) {
	server := testServer(t)

	seed := int64(1)
	body, _ := json.Marshal(map[string]any{
		"team0": []map[string]any{{"unit_id": "grunt", "position": []int{1, 3}}},
		"team1": []map[string]any{{"unit_id": "grunt", "position": []int{4, 3}}},
		"seed":  seed,
	})
	req := httptest.NewRequest("POST", "/api/simulate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		WinnerTeam *int `json:"winner_team"`
		TotalTicks int  `json:"total_ticks"`
		Trace      struct {
			Events []struct {
				Type string `json:"type"`
			} `json:"events"`
		} `json:"trace"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.NotNil(t, payload.WinnerTeam)
	assert.Greater(t, payload.TotalTicks, 0)
	assert.NotEmpty(t, payload.Trace.Events)
}

func TestSimulateRejectsEmptyTeam(t *testing.T) {
	server := testServer(t)

	body, _ := json.Marshal(map[string]any{
		"team0": []map[string]any{},
		"team1": []map[string]any{{"unit_id": "grunt", "position": []int{4, 3}}},
	})
	req := httptest.NewRequest("POST", "/api/simulate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBattlesWithoutStore(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/api/battles", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
