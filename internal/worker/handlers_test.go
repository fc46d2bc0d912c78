// Package worker provides the HTTP worker service for identitymap.
package worker

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/JustKeepShipping/identitymap/internal/catalog"
	"github.com/JustKeepShipping/identitymap/internal/config"
	"github.com/JustKeepShipping/identitymap/internal/db/store"
	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// testService creates a Service backed by a temp-dir SQLite database.
func testService(t *testing.T) (*Service, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "worker-test-*")
	require.NoError(t, err)

	st, err := store.NewStore(store.Config{
		Path:     filepath.Join(dir, "test.db"),
		MaxConns: 2,
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)

	cat, err := catalog.Load(filepath.Join(dir, "missing-catalog.yaml"))
	require.NoError(t, err)

	svc := NewService("test-version", config.Default(), st, cat)
	return svc, func() {
		_ = st.Close()
		_ = os.RemoveAll(dir)
	}
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out (when non-nil).
func doJSON(t *testing.T, svc *Service, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// setupWorkshop creates a workshop with two joined participants.
func setupWorkshop(t *testing.T, svc *Service) (models.Workshop, models.Participant, models.Participant) {
	t.Helper()

	var workshop models.Workshop
	rec := doJSON(t, svc, http.MethodPost, "/api/workshops", map[string]string{"name": "Identity Mapping"}, &workshop)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, workshop.JoinCode)

	var alice, bob joinWorkshopResponse
	rec = doJSON(t, svc, http.MethodPost, "/api/workshops/join",
		map[string]string{"join_code": workshop.JoinCode, "display_name": "Alice"}, &alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, svc, http.MethodPost, "/api/workshops/join",
		map[string]string{"join_code": workshop.JoinCode, "display_name": "Bob"}, &bob)
	require.Equal(t, http.StatusCreated, rec.Code)

	return workshop, *alice.Participant, *bob.Participant
}

func putTags(t *testing.T, svc *Service, participantID string, lens models.Lens, tags []models.TagItem) {
	t.Helper()
	rec := doJSON(t, svc, http.MethodPut,
		fmt.Sprintf("/api/participants/%s/lenses/%s/tags", participantID, lens),
		replaceTagsRequest{Tags: tags}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func putTexts(t *testing.T, svc *Service, participantID string, lens models.Lens, texts []string) {
	t.Helper()
	rec := doJSON(t, svc, http.MethodPut,
		fmt.Sprintf("/api/participants/%s/lenses/%s/texts", participantID, lens),
		replaceTextsRequest{Texts: texts}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	var body map[string]interface{}
	rec := doJSON(t, svc, http.MethodGet, "/api/health", nil, &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-version", body["version"])
}

func TestCreateWorkshop_Validation(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	rec := doJSON(t, svc, http.MethodPost, "/api/workshops", map[string]string{"name": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/workshops", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestJoinWorkshop_UnknownCode(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	rec := doJSON(t, svc, http.MethodPost, "/api/workshops/join",
		map[string]string{"join_code": "ZZZZZZ", "display_name": "Alice"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinAndListParticipants(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	workshop, alice, bob := setupWorkshop(t, svc)
	assert.Equal(t, workshop.ID, alice.WorkshopID)
	assert.NotEqual(t, alice.ID, bob.ID)

	var listing struct {
		Participants []models.Participant `json:"participants"`
		Count        int                  `json:"count"`
	}
	rec := doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/participants", workshop.ID), nil, &listing)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, listing.Count)
	assert.Equal(t, "Alice", listing.Participants[0].DisplayName)
}

func TestReplaceTags_WeightValidation(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	_, alice, _ := setupWorkshop(t, svc)

	rec := doJSON(t, svc, http.MethodPut,
		fmt.Sprintf("/api/participants/%s/lenses/GIVEN/tags", alice.ID),
		replaceTagsRequest{Tags: []models.TagItem{{Value: "music", Weight: 4}}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, svc, http.MethodPut,
		fmt.Sprintf("/api/participants/%s/lenses/SIDEWAYS/tags", alice.ID),
		replaceTagsRequest{Tags: []models.TagItem{{Value: "music", Weight: 2}}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentityRoundTripOverHTTP(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	_, alice, _ := setupWorkshop(t, svc)

	putTags(t, svc, alice.ID, models.LensGiven, []models.TagItem{
		{Value: "Female", Weight: 2},
		{Value: "tall", Weight: 1},
	})
	putTexts(t, svc, alice.ID, models.LensGiven, []string{"Loves hiking"})

	var identity models.Identity
	rec := doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/participants/%s/identity", alice.ID), nil, &identity)
	assert.Equal(t, http.StatusOK, rec.Code)

	given := identity.Lens(models.LensGiven)
	assert.Equal(t, map[string]int{"female": 2, "tall": 1}, given.WeightMap())
	assert.Equal(t, []string{"Loves hiking"}, given.Texts)
}

func TestCompare_EndToEnd(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	_, alice, bob := setupWorkshop(t, svc)

	putTags(t, svc, alice.ID, models.LensGiven, []models.TagItem{{Value: "female", Weight: 2}})
	putTexts(t, svc, alice.ID, models.LensGiven, []string{"Loves hiking"})
	putTags(t, svc, bob.ID, models.LensGiven, []models.TagItem{{Value: "male", Weight: 2}})
	putTexts(t, svc, bob.ID, models.LensGiven, []string{"Hiking is my favorite activity"})

	var result models.SimilarityResult
	rec := doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/compare?a=%s&b=%s", alice.ID, bob.ID), nil, &result)
	require.Equal(t, http.StatusOK, rec.Code)

	// No tag overlap; token overlap on "hik" only
	assert.InDelta(t, 0.3*0.2, result.Scores[models.LensGiven], 1e-9)
	assert.Equal(t, 0.0, result.Scores[models.LensCore])
	exp := result.Explanations[models.LensGiven]
	assert.Empty(t, exp.OverlapTags)
	assert.Equal(t, []string{"female"}, exp.UniqueToA)
	assert.Equal(t, []string{"male"}, exp.UniqueToB)

	rec = doJSON(t, svc, http.MethodGet, "/api/compare?a="+alice.ID, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, svc, http.MethodGet, "/api/compare?a="+alice.ID+"&b=unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankings(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	workshop, alice, bob := setupWorkshop(t, svc)

	var carol joinWorkshopResponse
	rec := doJSON(t, svc, http.MethodPost, "/api/workshops/join",
		map[string]string{"join_code": workshop.JoinCode, "display_name": "Carol"}, &carol)
	require.Equal(t, http.StatusCreated, rec.Code)

	putTags(t, svc, alice.ID, models.LensChosen, []models.TagItem{
		{Value: "climbing", Weight: 2}, {Value: "chess", Weight: 2},
	})
	putTags(t, svc, bob.ID, models.LensChosen, []models.TagItem{
		{Value: "climbing", Weight: 2}, {Value: "chess", Weight: 2},
	})
	putTags(t, svc, carol.Participant.ID, models.LensChosen, []models.TagItem{
		{Value: "painting", Weight: 2},
	})

	var body struct {
		Entries []struct {
			Participant models.Participant `json:"participant"`
			Score       float64            `json:"score"`
			HasData     bool               `json:"has_data"`
		} `json:"entries"`
	}
	rec = doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/rankings?participant=%s&scope=CHOSEN", workshop.ID, alice.ID),
		nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Entries, 2)

	assert.Equal(t, "Bob", body.Entries[0].Participant.DisplayName)
	assert.InDelta(t, 1.0, body.Entries[0].Score, 1e-9)
	assert.Equal(t, "Carol", body.Entries[1].Participant.DisplayName)
	assert.Equal(t, 0.0, body.Entries[1].Score)

	// most_different flips the order
	rec = doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/rankings?participant=%s&scope=CHOSEN&direction=most_different", workshop.ID, alice.ID),
		nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Carol", body.Entries[0].Participant.DisplayName)

	// invalid parameters
	rec = doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/rankings?participant=%s&scope=bogus", workshop.ID, alice.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/rankings", workshop.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	workshop, alice, _ := setupWorkshop(t, svc)
	putTexts(t, svc, alice.ID, models.LensGiven, []string{"Loves hiking in the mountains"})

	var body struct {
		Hits  []store.TextHit `json:"hits"`
		Count int             `json:"count"`
	}
	rec := doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/search?q=hiking", workshop.ID), nil, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, alice.ID, body.Hits[0].ParticipantID)

	rec = doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/search", workshop.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeave(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()

	workshop, _, bob := setupWorkshop(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/participants/"+bob.ID+"/", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var listing struct {
		Count int `json:"count"`
	}
	resp := doJSON(t, svc, http.MethodGet,
		fmt.Sprintf("/api/workshops/%d/participants", workshop.ID), nil, &listing)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, listing.Count)
}
