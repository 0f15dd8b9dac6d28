package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeLister struct {
	asked   int
	results []models.MatchResult
	err     error
}

func (f *fakeLister) Recent(_ context.Context, n int) ([]models.MatchResult, error) {
	f.asked = n
	return f.results, f.err
}

func newTestServer(t *testing.T, lister ResultLister) *GameServer {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{MaxRoomCount: 2, RoomIdleTimeout: time.Minute},
		Game: config.GameConfig{
			EnergyBudget:      balance.DefaultEnergyBudget,
			DrawingTimeLimit:  balance.DrawingTimeLimit,
			BattleEnergyMax:   balance.DefaultBattleEnergyMax,
			BattleEnergyRegen: 12,
		},
		Auth:   config.AuthConfig{Secret: "test-secret", Issuer: "inkbrawl", TokenTTL: time.Hour},
	}
	s := NewGameServer(ServerOptions{Config: cfg, Results: lister})
	t.Cleanup(s.closeRooms)
	return s
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(t, s.createHandler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}
	decodeBody(t, w, &body)
	if body.Status != "ok" || body.Rooms != 0 {
		t.Fatalf("body = %+v", body)
	}
}

func TestGuestLogin(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.createHandler()

	w := doRequest(t, h, http.MethodPost, "/auth/guest", `{"name":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Token         string `json:"token"`
		ParticipantID string `json:"participant_id"`
		Name          string `json:"name"`
	}
	decodeBody(t, w, &body)
	claims, err := s.auth.Verify(body.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ParticipantID != body.ParticipantID || claims.Name != "alice" {
		t.Fatalf("claims = %+v body = %+v", claims, body)
	}

	if w := doRequest(t, h, http.MethodPost, "/auth/guest", ""); w.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", w.Code)
	}
	if w := doRequest(t, h, http.MethodPost, "/auth/guest", "{oops"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", w.Code)
	}
}

func TestCreateAndListRooms(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.createHandler()

	w := doRequest(t, h, http.MethodPost, "/rooms", `{"energyBudget":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Room    RoomInfo           `json:"room"`
		Options models.RoomOptions `json:"options"`
	}
	decodeBody(t, w, &created)
	if len(created.Room.Code) != roomCodeLength || created.Room.Phase != models.PhaseLobby {
		t.Fatalf("room = %+v", created.Room)
	}
	want := models.RoomOptions{
		EnergyBudget:      50,
		DrawingTimeLimit:  balance.DrawingTimeLimit,
		BattleEnergyMax:   balance.DefaultBattleEnergyMax,
		BattleEnergyRegen: 12,
	}
	if created.Options != want {
		t.Fatalf("options = %+v, want %+v", created.Options, want)
	}

	w = doRequest(t, h, http.MethodPost, "/rooms", `{"battleEnergyRegen":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("second room status = %d", w.Code)
	}
	decodeBody(t, w, &created)
	if created.Options.BattleEnergyRegen != 0 || created.Options.EnergyBudget != balance.DefaultEnergyBudget {
		t.Fatalf("explicit zero regen options = %+v", created.Options)
	}
	if w := doRequest(t, h, http.MethodPost, "/rooms", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("over limit status = %d", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/rooms", "")
	var listed struct {
		Rooms []RoomInfo `json:"rooms"`
	}
	decodeBody(t, w, &listed)
	if len(listed.Rooms) != 2 {
		t.Fatalf("listed %d rooms", len(listed.Rooms))
	}
}

func TestGetOrCreateRoomNormalizesCode(t *testing.T) {
	s := newTestServer(t, nil)

	a, err := s.GetOrCreateRoom(" abc ")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.GetOrCreateRoom("ABC")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a.Code != "ABC" {
		t.Fatalf("rooms differ: %s vs %s", a.Code, b.Code)
	}
	if got, ok := s.GetRoom("abc"); !ok || got != a {
		t.Fatal("GetRoom did not find the room")
	}

	if _, err := s.GetOrCreateRoom(""); !errors.Is(err, ErrInvalidRoomCode) {
		t.Fatalf("empty code err = %v", err)
	}
	if _, err := s.GetOrCreateRoom(strings.Repeat("X", maxRoomCodeLength+1)); !errors.Is(err, ErrInvalidRoomCode) {
		t.Fatalf("long code err = %v", err)
	}
	if _, err := s.GetOrCreateRoom("OTHER"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrCreateRoom("THIRD"); !errors.Is(err, ErrTooManyRooms) {
		t.Fatalf("third room err = %v", err)
	}
}

func TestCleanupRemovesIdleRooms(t *testing.T) {
	s := newTestServer(t, nil)
	s.config.Server.RoomIdleTimeout = 0

	if _, err := s.GetOrCreateRoom("IDLE"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	s.cleanupRooms()
	if s.RoomCount() != 0 {
		t.Fatalf("rooms = %d after cleanup", s.RoomCount())
	}
}

func TestRecentResults(t *testing.T) {
	lister := &fakeLister{results: []models.MatchResult{{ID: "m1", WinnerID: "p1"}}}
	s := newTestServer(t, lister)
	h := s.createHandler()

	w := doRequest(t, h, http.MethodGet, "/results/recent?limit=5", "")
	if w.Code != http.StatusOK || lister.asked != 5 {
		t.Fatalf("status = %d asked = %d", w.Code, lister.asked)
	}
	var body struct {
		Results []models.MatchResult `json:"results"`
	}
	decodeBody(t, w, &body)
	if len(body.Results) != 1 || body.Results[0].ID != "m1" {
		t.Fatalf("results = %+v", body.Results)
	}

	doRequest(t, h, http.MethodGet, "/results/recent", "")
	if lister.asked != defaultRecentN {
		t.Fatalf("default limit = %d", lister.asked)
	}
	if w := doRequest(t, h, http.MethodGet, "/results/recent?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", w.Code)
	}

	lister.err = errors.New("redis down")
	if w := doRequest(t, h, http.MethodGet, "/results/recent", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("failing lister status = %d", w.Code)
	}

	empty := newTestServer(t, nil)
	w = doRequest(t, empty.createHandler(), http.MethodGet, "/results/recent", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"results":[]}` {
		t.Fatalf("no lister: %d %s", w.Code, w.Body.String())
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.createHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=ABC"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %v", resp)
	}
}

func TestWebSocketJoin(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.createHandler())
	defer srv.Close()

	token, claims, err := s.auth.IssueGuest("alice")
	if err != nil {
		t.Fatal(err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=abc&token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	readFrame := func() (string, json.RawMessage) {
		t.Helper()
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if msgType != websocket.TextMessage {
			t.Fatalf("message type = %d", msgType)
		}
		var frame struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return frame.Type, frame.Payload
	}

	kind, payload := readFrame()
	if kind != protocol.KindWelcome {
		t.Fatalf("first frame = %s", kind)
	}
	var welcome protocol.WelcomePayload
	if err := json.Unmarshal(payload, &welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.ParticipantID != claims.ParticipantID || welcome.RoomCode != "ABC" {
		t.Fatalf("welcome = %+v", welcome)
	}
	if kind, _ := readFrame(); kind != protocol.KindState {
		t.Fatalf("second frame = %s", kind)
	}

	room, ok := s.GetRoom("ABC")
	if !ok {
		t.Fatal("room not created")
	}
	if err := ws.WriteJSON(map[string]any{"type": protocol.CmdReady}); err != nil {
		t.Fatal(err)
	}
	if kind, _ := readFrame(); kind != protocol.KindState {
		t.Fatalf("ready reply = %s", kind)
	}
	if room.Info().Players != 1 {
		t.Fatalf("players = %d", room.Info().Players)
	}
}

func TestJoinRetriesWhenRoomCleanedUp(t *testing.T) {
	s := newTestServer(t, nil)
	s.config.Server.RoomIdleTimeout = 0

	stale, err := s.GetOrCreateRoom("RACE")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	s.cleanupRooms()

	room, err := s.joinRoom(stale, "RACE", "p1", "alice", &fakeConn{})
	if err != nil {
		t.Fatalf("joinRoom: %v", err)
	}
	if room == stale {
		t.Fatal("joined the stopped room")
	}
	if got, ok := s.GetRoom("RACE"); !ok || got != room || room.Info().Players != 1 {
		t.Fatalf("room not replaced: ok=%v players=%d", ok, room.Info().Players)
	}
}
