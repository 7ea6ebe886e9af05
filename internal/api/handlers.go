package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/engine"
)

type createSessionRequest struct {
	Name            string `json:"name"`
	MaxParticipants int    `json:"max_participants"`
	WinCondition    string `json:"win_condition"`
	UserID          string `json:"user_id"`
	DisplayName     string `json:"display_name"`
	Role            string `json:"role"`
}

type createSessionResponse struct {
	Session     sessionView     `json:"session"`
	Participant participantView `json:"participant"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeValidationError(w, "unknown role")
		return
	}

	session, participant, err := s.engine.CreateSession(r.Context(), engine.CreateSessionInput{
		Name:               req.Name,
		MaxParticipants:    req.MaxParticipants,
		WinCondition:       req.WinCondition,
		CreatorUserID:      req.UserID,
		CreatorDisplayName: req.DisplayName,
		CreatorRole:        role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session:     renderSession(session),
		Participant: renderParticipant(participant),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GetSessionView(r.Context(), sessionIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderState(view))
}

type joinRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeValidationError(w, "unknown role")
		return
	}

	participant, err := s.engine.JoinSession(r.Context(), sessionIDParam(r), req.UserID, req.DisplayName, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderParticipant(participant))
}

type participantRequest struct {
	ParticipantID string `json:"participant_id"`
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	if err := s.engine.LeaveSession(r.Context(), sessionIDParam(r), req.ParticipantID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

type readyRequest struct {
	ParticipantID string `json:"participant_id"`
	Ready         bool   `json:"ready"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req readyRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	if err := s.engine.SetReady(r.Context(), sessionIDParam(r), req.ParticipantID, req.Ready); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": req.Ready})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	session, err := s.engine.StartSession(r.Context(), sessionIDParam(r), req.ParticipantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(session))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	if err := s.engine.AbandonSession(r.Context(), sessionIDParam(r), req.ParticipantID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	session, err := s.engine.EndTurn(r.Context(), sessionIDParam(r), req.ParticipantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(session))
}

type decisionRequest struct {
	ParticipantID    string `json:"participant_id"`
	Decision         string `json:"decision"`
	TargetTimelineID string `json:"target_timeline_id,omitempty"`
	TargetRealmID    string `json:"target_realm_id,omitempty"`
}

type decisionResponse struct {
	Status     string         `json:"status"`
	Category   string         `json:"category"`
	Fallback   bool           `json:"fallback"`
	Evaluation evaluationView `json:"evaluation"`
	Event      eventView      `json:"event"`
}

type evaluationView struct {
	EthicalImpact           string `json:"ethical_impact"`
	TechnologicalImpact     string `json:"technological_impact"`
	TemporalImpact          string `json:"temporal_impact"`
	KarmaImpact             int    `json:"karma_impact"`
	Explanation             string `json:"explanation"`
	TimelineStabilityImpact int    `json:"timeline_stability_impact"`
	DevelopmentImpact       int    `json:"development_impact"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}

	result, err := s.engine.ResolveDecision(r.Context(), engine.ResolveDecisionInput{
		SessionID:        sessionIDParam(r),
		ParticipantID:    req.ParticipantID,
		Decision:         req.Decision,
		TargetTimelineID: req.TargetTimelineID,
		TargetRealmID:    req.TargetRealmID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := "evaluated"
	if result.Fallback {
		status = "recorded, evaluation unavailable"
	}
	writeJSON(w, http.StatusOK, decisionResponse{
		Status:   status,
		Category: string(result.Category),
		Fallback: result.Fallback,
		Evaluation: evaluationView{
			EthicalImpact:           result.Evaluation.EthicalImpact,
			TechnologicalImpact:     result.Evaluation.TechnologicalImpact,
			TemporalImpact:          result.Evaluation.TemporalImpact,
			KarmaImpact:             result.Evaluation.KarmaImpact,
			Explanation:             result.Evaluation.Explanation,
			TimelineStabilityImpact: result.Evaluation.TimelineStabilityImpact,
			DevelopmentImpact:       result.Evaluation.DevelopmentImpact,
		},
		Event: renderEvent(result.Event),
	})
}

func (s *Server) handleClaimRealm(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	realm, err := s.engine.ClaimRealm(r.Context(), sessionIDParam(r), req.ParticipantID, chi.URLParam(r, "realmID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderRealm(realm))
}

func (s *Server) handleDevelopRealm(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	realm, err := s.engine.DevelopRealm(r.Context(), sessionIDParam(r), req.ParticipantID, chi.URLParam(r, "realmID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderRealm(realm))
}

func (s *Server) handleResolveRift(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil || req.ParticipantID == "" {
		writeValidationError(w, "participant_id is required")
		return
	}
	rift, err := s.engine.ResolveRift(r.Context(), sessionIDParam(r), req.ParticipantID, chi.URLParam(r, "riftID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderRift(rift))
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeValidationError(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	events, err := s.engine.ListEvents(r.Context(), sessionIDParam(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, evt := range events {
		views = append(views, renderEvent(evt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": views})
}
