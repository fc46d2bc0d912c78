package worker

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JustKeepShipping/identitymap/internal/ranking"
	"github.com/JustKeepShipping/identitymap/internal/worker/sse"
	"github.com/JustKeepShipping/identitymap/pkg/models"
	"github.com/JustKeepShipping/identitymap/pkg/similarity"
)

// handleHealth reports service liveness, uptime and usage counters.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"sse_clients":    s.broadcaster.ClientCount(),
		"metrics":        s.metrics.Snapshot(),
	})
}

type createWorkshopRequest struct {
	Name string `json:"name"`
}

func (s *Service) handleCreateWorkshop(w http.ResponseWriter, r *http.Request) {
	var req createWorkshopRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	workshop, err := s.workshops.CreateWorkshop(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workshop)
}

func (s *Service) handleGetWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := workshopID(w, r)
	if !ok {
		return
	}
	workshop, err := s.workshops.GetWorkshop(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

type joinWorkshopRequest struct {
	JoinCode    string `json:"join_code"`
	DisplayName string `json:"display_name"`
}

type joinWorkshopResponse struct {
	Workshop    *models.Workshop    `json:"workshop"`
	Participant *models.Participant `json:"participant"`
}

func (s *Service) handleJoinWorkshop(w http.ResponseWriter, r *http.Request) {
	var req joinWorkshopRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	workshop, err := s.workshops.GetWorkshopByJoinCode(r.Context(), req.JoinCode)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	participant, err := s.participants.CreateParticipant(r.Context(), workshop.ID, strings.TrimSpace(req.DisplayName))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.broadcaster.Broadcast(sse.Event{
		Type:       sse.EventParticipantJoined,
		WorkshopID: workshop.ID,
		Payload:    participant,
	})

	writeJSON(w, http.StatusCreated, joinWorkshopResponse{
		Workshop:    workshop,
		Participant: participant,
	})
}

func (s *Service) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := workshopID(w, r)
	if !ok {
		return
	}
	if _, err := s.workshops.GetWorkshop(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	roster, err := s.workshops.ListParticipants(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"participants": roster,
		"count":        len(roster),
	})
}

func (s *Service) handleLeave(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantID")

	participant, err := s.participants.GetParticipant(r.Context(), participantID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := s.participants.DeleteParticipant(r.Context(), participantID); err != nil {
		writeStoreError(w, err)
		return
	}

	s.broadcaster.Broadcast(sse.Event{
		Type:       sse.EventParticipantLeft,
		WorkshopID: participant.WorkshopID,
		Payload:    participant,
	})

	w.WriteHeader(http.StatusNoContent)
}

type replaceTagsRequest struct {
	Tags []models.TagItem `json:"tags"`
}

func (s *Service) handleReplaceTags(w http.ResponseWriter, r *http.Request) {
	participant, lens, ok := s.participantLens(w, r)
	if !ok {
		return
	}

	var req replaceTagsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for _, tag := range req.Tags {
		if tag.Weight < 1 || tag.Weight > 3 {
			writeError(w, http.StatusBadRequest, "tag weight must be between 1 and 3")
			return
		}
	}

	if err := s.identities.ReplaceTags(r.Context(), participant.ID, lens, req.Tags); err != nil {
		writeStoreError(w, err)
		return
	}

	s.broadcastIdentityUpdate(participant, lens)
	w.WriteHeader(http.StatusNoContent)
}

type replaceTextsRequest struct {
	Texts []string `json:"texts"`
}

func (s *Service) handleReplaceTexts(w http.ResponseWriter, r *http.Request) {
	participant, lens, ok := s.participantLens(w, r)
	if !ok {
		return
	}

	var req replaceTextsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.identities.ReplaceTexts(r.Context(), participant.ID, lens, req.Texts); err != nil {
		writeStoreError(w, err)
		return
	}

	s.broadcastIdentityUpdate(participant, lens)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantID")

	if _, err := s.participants.GetParticipant(r.Context(), participantID); err != nil {
		writeStoreError(w, err)
		return
	}

	identity, err := s.identities.LoadIdentity(r.Context(), participantID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// handleCompare scores two participants against each other and returns the
// full similarity result with explanations.
func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	aID := r.URL.Query().Get("a")
	bID := r.URL.Query().Get("b")
	if aID == "" || bID == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	for _, id := range []string{aID, bID} {
		if _, err := s.participants.GetParticipant(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
	}

	identityA, err := s.identities.LoadIdentity(r.Context(), aID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	identityB, err := s.identities.LoadIdentity(r.Context(), bID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.metrics.RecordComparison()
	writeJSON(w, http.StatusOK, similarity.Compare(identityA, identityB))
}

func (s *Service) handleRankings(w http.ResponseWriter, r *http.Request) {
	id, ok := workshopID(w, r)
	if !ok {
		return
	}

	selfID := r.URL.Query().Get("participant")
	if selfID == "" {
		writeError(w, http.StatusBadRequest, "query parameter participant is required")
		return
	}

	self, err := s.participants.GetParticipant(r.Context(), selfID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if self.WorkshopID != id {
		writeError(w, http.StatusBadRequest, "participant does not belong to this workshop")
		return
	}

	// Lens scopes are uppercase lens names; "overall" is lowercase.
	scope := ranking.ScopeOverall
	if v := r.URL.Query().Get("scope"); v != "" && v != string(ranking.ScopeOverall) {
		scope = ranking.Scope(strings.ToUpper(v))
		if !ranking.ValidScope(scope) {
			writeError(w, http.StatusBadRequest, "scope must be overall, GIVEN, CHOSEN or CORE")
			return
		}
	}

	direction := ranking.MostSimilar
	if v := r.URL.Query().Get("direction"); v != "" {
		direction = ranking.Direction(v)
		if direction != ranking.MostSimilar && direction != ranking.MostDifferent {
			writeError(w, http.StatusBadRequest, "direction must be most_similar or most_different")
			return
		}
	}

	limit := s.config.RankLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	roster, err := s.workshops.ListParticipants(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entries, err := s.ranker.Rank(r.Context(), ranking.Request{
		SelfID:    selfID,
		Scope:     scope,
		Direction: direction,
		Limit:     limit,
	}, roster)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ranking failed")
		return
	}

	s.metrics.RecordRanking()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"participant": selfID,
		"scope":       scope,
		"direction":   direction,
		"entries":     entries,
	})
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := workshopID(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	hits, err := s.search.SearchTexts(r.Context(), id, query, s.config.SearchLimit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.metrics.RecordSearch()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query": query,
		"hits":  hits,
		"count": len(hits),
	})
}

func (s *Service) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if _, ok := workshopID(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lenses": s.catalog.All(),
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := workshopID(w, r)
	if !ok {
		return
	}
	s.broadcaster.HandleSSE(w, r, id)
}

// workshopID parses the workshopID URL parameter, writing a 400 on failure.
func workshopID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "workshopID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workshop id")
		return 0, false
	}
	return id, true
}

// participantLens resolves the participant and lens URL parameters.
func (s *Service) participantLens(w http.ResponseWriter, r *http.Request) (*models.Participant, models.Lens, bool) {
	participantID := chi.URLParam(r, "participantID")
	lens := models.Lens(strings.ToUpper(chi.URLParam(r, "lens")))

	if !models.ValidLens(lens) {
		writeError(w, http.StatusBadRequest, "lens must be GIVEN, CHOSEN or CORE")
		return nil, "", false
	}

	participant, err := s.participants.GetParticipant(r.Context(), participantID)
	if err != nil {
		writeStoreError(w, err)
		return nil, "", false
	}
	return participant, lens, true
}

func (s *Service) broadcastIdentityUpdate(participant *models.Participant, lens models.Lens) {
	s.broadcaster.Broadcast(sse.Event{
		Type:       sse.EventIdentityUpdated,
		WorkshopID: participant.WorkshopID,
		Payload: map[string]interface{}{
			"participant_id": participant.ID,
			"lens":           lens,
		},
	})
}
