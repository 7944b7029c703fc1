package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/app"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/config"
	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/storage"
)

type testServer struct {
	app    *app.App
	clock  *clock.Fixed
	store  *storage.MemoryStore
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Storage = constants.StorageMemory

	store := storage.NewMemoryStore()
	c := clock.NewFixed(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	a, err := app.New(cfg, store, c)
	if err != nil {
		t.Fatalf("app.New() error: %v", err)
	}
	return &testServer{app: a, clock: c, store: store, router: NewRouter(a)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	code, raw := s.doRaw(t, method, path, body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: response is not a JSON object: %s", method, path, raw)
		}
	}
	return code, out
}

func (s *testServer) doRaw(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func TestMorningBlockLogFreshDay(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/morning-block-log", map[string]any{"itemId": "a", "status": "done"})
	if code != http.StatusOK {
		t.Fatalf("POST status = %d, body %v", code, body)
	}

	code, doc := s.do(t, http.MethodGet, "/morning-block-log", nil)
	if code != http.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	if doc["date"] != "2026-10-15" {
		t.Errorf("date = %v, want 2026-10-15", doc["date"])
	}
	items, _ := doc["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v, want one item", doc["items"])
	}
	item := items[0].(map[string]any)
	if item["id"] != "a" || item["status"] != "done" || item["timestamp"] == nil {
		t.Errorf("item = %v", item)
	}
	if doc["completedCount"] != float64(1) || doc["skippedCount"] != float64(0) {
		t.Errorf("counts = %v/%v, want 1/0", doc["completedCount"], doc["skippedCount"])
	}
}

func TestMorningBlockLogNextDayArchives(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/morning-block-log", map[string]any{"itemId": "a", "status": "done"})
	s.do(t, http.MethodPost, "/sleep-data", map[string]any{"hoursSlept": 7.5})

	s.clock.Advance(24 * time.Hour)
	code, _ := s.do(t, http.MethodPost, "/morning-block-log", map[string]any{"itemId": "b", "status": "skipped"})
	if code != http.StatusOK {
		t.Fatalf("POST status = %d", code)
	}

	code, raw := s.doRaw(t, http.MethodGet, "/history", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /history status = %d", code)
	}
	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		t.Fatalf("history is not a list: %s", raw)
	}
	if len(dates) != 1 || dates[0] != "2026-10-15" {
		t.Fatalf("history = %v, want [2026-10-15]", dates)
	}

	// The whole day was archived, not only the rolled document
	code, snapshot := s.do(t, http.MethodGet, "/history/2026-10-15", nil)
	if code != http.StatusOK {
		t.Fatalf("GET snapshot status = %d", code)
	}
	for _, name := range []string{documents.MorningBlockLog, documents.SleepData} {
		if _, ok := snapshot[name]; !ok {
			t.Errorf("snapshot missing %s: %v", name, snapshot)
		}
	}

	code, archived := s.do(t, http.MethodGet, "/history/2026-10-15/morning-block-log", nil)
	if code != http.StatusOK {
		t.Fatalf("GET archived file status = %d", code)
	}
	if archived["completedCount"] != float64(1) {
		t.Errorf("archived completedCount = %v, want 1", archived["completedCount"])
	}

	_, doc := s.do(t, http.MethodGet, "/morning-block-log", nil)
	items, _ := doc["items"].([]any)
	if doc["date"] != "2026-10-16" || len(items) != 1 {
		t.Fatalf("today's document = %v", doc)
	}
	if items[0].(map[string]any)["id"] != "b" || doc["skippedCount"] != float64(1) {
		t.Errorf("today's document = %v", doc)
	}
}

func TestMergeMissingIdentifier(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/morning-block-log", map[string]any{"status": "done"})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if body["error"] != "itemId and status required" {
		t.Errorf("error = %v", body["error"])
	}
	if _, err := s.store.ReadDocument(documents.MorningBlockLog); err == nil {
		t.Error("rejected request wrote the document")
	}

	code, _ = s.do(t, http.MethodPost, "/work-sessions", "[1,2]")
	if code != http.StatusBadRequest {
		t.Errorf("non-object body status = %d, want 400", code)
	}
}

func TestGetStubs(t *testing.T) {
	s := newTestServer(t)

	for _, name := range documents.Names() {
		code, doc := s.do(t, http.MethodGet, "/"+name, nil)
		if code != http.StatusOK {
			t.Errorf("GET /%s status = %d", name, code)
			continue
		}
		want, _ := json.Marshal(documents.Stub(name))
		got, _ := json.Marshal(doc)
		if string(got) != string(want) {
			t.Errorf("GET /%s = %s, want stub %s", name, got, want)
		}
	}
}

func TestExerciseCrossesTier(t *testing.T) {
	s := newTestServer(t)
	seed := `{"badges":{"deep-worker":{"tier":1,"tierName":"Initiate","xp":740}}}`
	if err := s.store.WriteDocument(documents.BadgeProgress, []byte(seed)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	code, body := s.do(t, http.MethodPost, "/badge-progress/exercise", map[string]any{
		"badgeSlug":  "deep-worker",
		"exerciseId": "single-task-block",
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}

	_, doc := s.do(t, http.MethodGet, "/badge-progress", nil)
	progress := doc["badges"].(map[string]any)["deep-worker"].(map[string]any)
	if progress["xp"] != float64(760) {
		t.Errorf("xp = %v, want 760", progress["xp"])
	}
	if progress["tier"] != float64(2) || progress["tierName"] != "Apprentice" {
		t.Errorf("tier = %v/%v, want 2/Apprentice", progress["tier"], progress["tierName"])
	}

	code, _ = s.do(t, http.MethodPost, "/badge-progress/exercise", map[string]any{"badgeSlug": "deep-worker"})
	if code != http.StatusBadRequest {
		t.Errorf("missing exerciseId status = %d, want 400", code)
	}
	code, _ = s.do(t, http.MethodPost, "/badge-progress/exercise", map[string]any{"badgeSlug": "nope", "exerciseId": "x"})
	if code != http.StatusBadRequest {
		t.Errorf("unknown badge status = %d, want 400", code)
	}
}

func TestVotesAreFiltered(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/votes", map[string]any{"votes": []any{
		map[string]any{"action": "cold shower", "category": "physical", "polarity": "positive"},
		map[string]any{"action": "doomscroll", "category": "gaming", "polarity": "negative"},
		map[string]any{"action": "skipped lunch", "category": "nutrition", "polarity": "neutral"},
		map[string]any{"action": "", "category": "work", "polarity": "positive"},
		42,
	}})
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["added"] != float64(1) {
		t.Fatalf("added = %v, want 1", body["added"])
	}

	_, doc := s.do(t, http.MethodGet, "/votes", nil)
	list, _ := doc["votes"].([]any)
	if len(list) != 1 {
		t.Fatalf("votes = %v", doc["votes"])
	}
	vote := list[0].(map[string]any)
	if id, _ := vote["id"].(string); id == "" {
		t.Error("stored vote has no id")
	}
	if vote["source"] != "manual" || vote["weight"] != float64(1) {
		t.Errorf("defaults not applied: %v", vote)
	}
	if doc["positiveCount"] != float64(1) {
		t.Errorf("positiveCount = %v", doc["positiveCount"])
	}

	code, _ = s.do(t, http.MethodPost, "/votes", map[string]any{})
	if code != http.StatusBadRequest {
		t.Errorf("missing votes status = %d, want 400", code)
	}
}

func TestHistoryErrors(t *testing.T) {
	s := newTestServer(t)
	if err := s.store.CreateSnapshot("2026-10-14", map[string][]byte{
		documents.Votes: []byte(`{"date":"2026-10-14","votes":[]}`),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/history/2026-10-14", http.StatusOK},
		{"/history/2026-10-14/votes", http.StatusOK},
		{"/history/2026-10-14/votes.json", http.StatusOK},
		{"/history/14-10-2026", http.StatusBadRequest},
		{"/history/2026-13-01/votes", http.StatusBadRequest},
		{"/history/2026-10-14/passwords", http.StatusBadRequest},
		{"/history/2026-10-13", http.StatusNotFound},
		{"/history/2026-10-14/sleep-data", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := s.do(t, http.MethodGet, tt.path, nil)
			if code != tt.want {
				t.Fatalf("status = %d, want %d", code, tt.want)
			}
			if tt.want != http.StatusOK {
				if msg, _ := body["error"].(string); msg == "" {
					t.Errorf("error body missing: %v", body)
				}
			}
		})
	}
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/events", map[string]any{"events": []any{
		map[string]any{"type": "block_started"},
		map[string]any{"type": "block_done", "timestamp": "2026-10-15T07:00:00Z"},
	}})
	if code != http.StatusOK || body["added"] != float64(2) {
		t.Fatalf("POST /events = %d %v", code, body)
	}

	code, raw := s.doRaw(t, http.MethodGet, "/events", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /events status = %d", code)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("events is not a list: %s", raw)
	}
	if len(records) != 2 {
		t.Fatalf("records = %v", records)
	}
	if records[0]["timestamp"] == nil {
		t.Error("missing timestamp was not stamped")
	}
	if records[1]["timestamp"] != "2026-10-15T07:00:00Z" {
		t.Errorf("given timestamp was replaced: %v", records[1]["timestamp"])
	}

	code, _ = s.do(t, http.MethodPost, "/events", "not json")
	if code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", code)
	}
}

func TestWorkSessionStartEnd(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/work-sessions/start", map[string]any{"sessionId": 1})
	if code != http.StatusOK {
		t.Fatalf("start status = %d", code)
	}
	s.clock.Advance(50 * time.Minute)
	code, body := s.do(t, http.MethodPost, "/work-sessions/end", map[string]any{"sessionId": 1, "notes": "deep"})
	if code != http.StatusOK {
		t.Fatalf("end status = %d", code)
	}

	doc := body["document"].(map[string]any)
	sessions := doc["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("sessions = %v", sessions)
	}
	session := sessions[0].(map[string]any)
	if session["startedAt"] == nil || session["endedAt"] == nil || session["notes"] != "deep" {
		t.Errorf("session = %v", session)
	}
	if doc["completedSessions"] != float64(1) {
		t.Errorf("completedSessions = %v", doc["completedSessions"])
	}

	code, _ = s.do(t, http.MethodPost, "/work-sessions/start", nil)
	if code != http.StatusBadRequest {
		t.Errorf("start without sessionId status = %d, want 400", code)
	}
}

func TestMissionsAndBossRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/badge-missions/assign", map[string]any{"badgeSlugs": []string{"iron-body"}})
	if code != http.StatusOK {
		t.Fatalf("assign status = %d, body %v", code, body)
	}
	active := body["active"].([]any)
	if len(active) != 1 {
		t.Fatalf("active = %v", active)
	}
	missionID := active[0].(map[string]any)["missionId"]

	code, body = s.do(t, http.MethodPost, "/badge-missions/complete", map[string]any{"missionId": missionID})
	if code != http.StatusOK {
		t.Fatalf("complete status = %d, body %v", code, body)
	}
	code, _ = s.do(t, http.MethodPost, "/badge-missions/complete", map[string]any{"missionId": missionID})
	if code != http.StatusNotFound {
		t.Errorf("second complete status = %d, want 404", code)
	}

	code, _ = s.do(t, http.MethodPost, "/boss-encounters", map[string]any{
		"badgeSlug": "iron-body", "boss": "The Couch", "outcome": "victory",
	})
	if code != http.StatusOK {
		t.Fatalf("boss status = %d", code)
	}
	code, raw := s.doRaw(t, http.MethodGet, "/boss-encounters", nil)
	var encounters []map[string]any
	if code != http.StatusOK || json.Unmarshal(raw, &encounters) != nil || len(encounters) != 1 {
		t.Errorf("GET /boss-encounters = %d %s", code, raw)
	}
	code, _ = s.do(t, http.MethodPost, "/boss-encounters", map[string]any{"badgeSlug": "iron-body", "outcome": "draw"})
	if code != http.StatusBadRequest {
		t.Errorf("bad outcome status = %d, want 400", code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	tests := []struct {
		path string
		key  string
	}{
		{"/badges", "badges"},
		{"/badges/missions", "missions"},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		code, body := s.do(t, http.MethodGet, tt.path, nil)
		list, ok := body[tt.key].([]any)
		if code != http.StatusOK || !ok || len(list) == 0 {
			t.Errorf("GET %s = %d %v, want {%s: [...]}", tt.path, code, body, tt.key)
		}
	}
}

func TestRequestBodies(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"empty merge body", "/creative-block-log", "", http.StatusOK},
		{"null merge body", "/creative-block-log", "null", http.StatusOK},
		{"array merge body", "/creative-block-log", "[1,2]", http.StatusBadRequest},
		{"malformed merge body", "/creative-block-log", "{", http.StatusBadRequest},
		{"malformed exercise body", "/badge-progress/exercise", "{\"badgeSlug\":", http.StatusBadRequest},
		{"empty exercise body", "/badge-progress/exercise", "", http.StatusBadRequest},
		{"oversized body", "/events", `{"events":["` + strings.Repeat("x", maxBodyBytes) + `"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			code, raw := s.doRaw(t, http.MethodPost, tt.path, tt.body)
			if code != tt.want {
				t.Errorf("POST %s = %d %s, want %d", tt.path, code, raw, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/votes", map[string]any{"votes": []any{}})
	s.clock.Advance(90 * time.Second)

	code, body := s.do(t, http.MethodGet, "/health", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["ok"] != true || body["storage"] != constants.StorageMemory {
		t.Errorf("health = %v", body)
	}
	if body["documents"] != float64(1) || body["snapshots"] != float64(0) || body["events"] != float64(0) {
		t.Errorf("counts = %v", body)
	}
	if body["uptimeSeconds"] != float64(90) || body["today"] != "2026-10-15" {
		t.Errorf("uptime/today = %v/%v", body["uptimeSeconds"], body["today"])
	}
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
