package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chronocore/engine/internal/game/engine"
	"github.com/chronocore/engine/internal/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	store := memory.New()
	hub := NewHub(zerolog.Nop())
	eng := engine.New(store, nil, engine.WithEventSink(hub.Publish))
	server := NewServer(eng, hub, zerolog.Nop())

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, hub
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createTestSession(t *testing.T, baseURL string) (sessionID, creatorID string) {
	t.Helper()
	resp := postJSON(t, baseURL+"/v1/sessions", map[string]any{
		"name":             "api session",
		"max_participants": 4,
		"user_id":          "user-1",
		"display_name":     "Ada",
		"role":             "Techno Monk",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
		Participant struct {
			ID string `json:"id"`
		} `json:"participant"`
	}
	decodeBody(t, resp, &created)
	return created.Session.ID, created.Participant.ID
}

func TestCreateAndGetSession(t *testing.T) {
	ts, _ := newTestServer(t)
	sessionID, _ := createTestSession(t, ts.URL)

	resp, err := http.Get(ts.URL + "/v1/sessions/" + sessionID)
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var state struct {
		Session struct {
			Status string `json:"status"`
			Era    string `json:"era"`
		} `json:"session"`
		Participants []struct {
			DisplayName string `json:"display_name"`
		} `json:"participants"`
	}
	decodeBody(t, resp, &state)
	if state.Session.Status != "waiting" {
		t.Fatalf("status = %q, want waiting", state.Session.Status)
	}
	if state.Session.Era != "Initiation" {
		t.Fatalf("era = %q, want Initiation", state.Session.Era)
	}
	if len(state.Participants) != 1 || state.Participants[0].DisplayName != "Ada" {
		t.Fatalf("participants = %+v", state.Participants)
	}
}

func TestErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)
	sessionID, creatorID := createTestSession(t, ts.URL)

	// Unknown session maps to 404 with a NOT_FOUND code.
	resp, err := http.Get(ts.URL + "/v1/sessions/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Code != "NOT_FOUND" {
		t.Fatalf("code = %q, want NOT_FOUND", body.Code)
	}

	// Unknown role is a validation error.
	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/join", map[string]any{
		"user_id":      "user-2",
		"display_name": "Grace",
		"role":         "Time Lord",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	decodeBody(t, resp, &body)
	if body.Code != "VALIDATION" {
		t.Fatalf("code = %q, want VALIDATION", body.Code)
	}

	// Solo start is a precondition failure, 422.
	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/ready", map[string]any{
		"participant_id": creatorID,
		"ready":          true,
	})
	_ = resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/start", map[string]any{
		"participant_id": creatorID,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	decodeBody(t, resp, &body)
	if body.Code != "PRECONDITION" {
		t.Fatalf("code = %q, want PRECONDITION", body.Code)
	}
}

func TestFullSessionFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	sessionID, creatorID := createTestSession(t, ts.URL)

	resp := postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/join", map[string]any{
		"user_id":      "user-2",
		"display_name": "Grace",
		"role":         "Shadow Broker",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join status = %d, want 201", resp.StatusCode)
	}
	var joined struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &joined)

	for _, id := range []string{creatorID, joined.ID} {
		resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/ready", map[string]any{
			"participant_id": id,
			"ready":          true,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("ready status = %d, want 200", resp.StatusCode)
		}
		_ = resp.Body.Close()
	}

	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/start", map[string]any{
		"participant_id": creatorID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", resp.StatusCode)
	}
	var started struct {
		Status      string `json:"status"`
		CurrentTurn int    `json:"current_turn"`
	}
	decodeBody(t, resp, &started)
	if started.Status != "active" || started.CurrentTurn != 0 {
		t.Fatalf("started = %+v", started)
	}

	// No scorer configured: the decision takes the neutral fallback.
	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/decisions", map[string]any{
		"participant_id": creatorID,
		"decision":       "observe the timelines",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decision status = %d, want 200", resp.StatusCode)
	}
	var decision struct {
		Status   string `json:"status"`
		Fallback bool   `json:"fallback"`
	}
	decodeBody(t, resp, &decision)
	if !decision.Fallback || decision.Status != "recorded, evaluation unavailable" {
		t.Fatalf("decision = %+v", decision)
	}

	resp = postJSON(t, ts.URL+"/v1/sessions/"+sessionID+"/end-turn", map[string]any{
		"participant_id": creatorID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end-turn status = %d, want 200", resp.StatusCode)
	}
	var advanced struct {
		CurrentTurn int `json:"current_turn"`
	}
	decodeBody(t, resp, &advanced)
	if advanced.CurrentTurn != 1 {
		t.Fatalf("current turn = %d, want 1", advanced.CurrentTurn)
	}

	resp, err := http.Get(ts.URL + "/v1/sessions/" + sessionID + "/events?limit=3")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	var log struct {
		Events []struct {
			Type string `json:"type"`
			Seq  uint64 `json:"seq"`
		} `json:"events"`
	}
	decodeBody(t, resp, &log)
	if len(log.Events) != 3 {
		t.Fatalf("event count = %d, want 3", len(log.Events))
	}
	// Newest first: turn_start, turn_end, decision.
	if log.Events[0].Type != "turn_start" || log.Events[1].Type != "turn_end" || log.Events[2].Type != "decision" {
		t.Fatalf("events = %+v", log.Events)
	}
	if log.Events[0].Seq <= log.Events[1].Seq {
		t.Fatalf("events not ordered newest first: %+v", log.Events)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestEventFeedDeliversEvents(t *testing.T) {
	ts, _ := newTestServer(t)
	sessionID, creatorID := createTestSession(t, ts.URL)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + sessionID + "/events/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	// Trigger an event after the subscription is live.
	readyResp := postJSON(t, fmt.Sprintf("%s/v1/sessions/%s/ready", ts.URL, sessionID), map[string]any{
		"participant_id": creatorID,
		"ready":          true,
	})
	if readyResp.StatusCode != http.StatusOK {
		t.Fatalf("ready status = %d, want 200", readyResp.StatusCode)
	}
	_ = readyResp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var received struct {
		Type    string `json:"type"`
		Payload struct {
			Ready bool `json:"ready"`
		} `json:"payload"`
	}
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read websocket event: %v", err)
	}
	if received.Type != "ready_changed" || !received.Payload.Ready {
		t.Fatalf("received = %+v, want ready_changed", received)
	}
}

func TestEventFeedUnknownSession(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/sessions/nope/events/ws")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
