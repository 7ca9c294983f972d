package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/kshaw/monthgrid/internal/field"
	"github.com/kshaw/monthgrid/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := st.InitSchema(); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := NewServer(st, &Config{
		Addr:   "127.0.0.1:0", // Use random available port
		Logger: log.New(os.Stderr, "[test] ", log.LstdFlags),
	})

	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) saveResponse {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}

	resp, err := http.Post("http://"+srv.GetAddr()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var out saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response from %s: %v", path, err)
	}
	return out
}

func TestServerStartStop(t *testing.T) {
	srv := newTestServer(t)

	if addr := srv.GetAddr(); addr == "" {
		t.Fatal("Server address is empty")
	}
}

func TestSaveOneLinerEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/save-oneliner", field.OneLinerPayload{
		Year: 2026, Month: 8, Day: 14, Text: "long walk at dusk",
	})
	if resp.Status != "success" {
		t.Fatalf("Expected success, got %+v", resp)
	}

	data, err := srv.store.MonthData(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("Failed to read month: %v", err)
	}
	if got := data.Entries[13].OneLiner; got != "long walk at dusk" {
		t.Errorf("Expected saved one-liner, got %q", got)
	}
}

func TestSaveHabitEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/save-habit", field.HabitCheckPayload{
		Year: 2026, Month: 8, Day: 3, HabitNumber: 2, Checked: true,
	})
	if resp.Status != "success" {
		t.Fatalf("Expected success, got %+v", resp)
	}

	data, err := srv.store.MonthData(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("Failed to read month: %v", err)
	}
	if !data.Entries[2].Habits[1] {
		t.Error("Expected habit 2 checked on day 3")
	}
	if data.Entries[2].Habits[0] {
		t.Error("Habit 1 should be untouched")
	}
}

func TestSaveHabitRejectsBadHabitNumber(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/save-habit", field.HabitCheckPayload{
		Year: 2026, Month: 8, Day: 3, HabitNumber: 9, Checked: true,
	})
	if resp.Status != "error" {
		t.Fatalf("Expected error status, got %+v", resp)
	}
}

func TestSaveJournalEndpointReturnsWordCount(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/save-journal", field.JournalPayload{
		Year: 2026, Month: 8, Day: 5, Text: "woke early and read for an hour",
	})
	if resp.Status != "success" {
		t.Fatalf("Expected success, got %+v", resp)
	}
	if resp.WordCount != 7 {
		t.Errorf("Expected word count 7, got %d", resp.WordCount)
	}
}

func TestUpdateHabitNameEndpointDefaultsEmptyName(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/update-habit-name", field.HabitLabelPayload{
		Year: 2026, Month: 8, HabitNumber: 4, Name: "",
	})
	if resp.Status != "success" {
		t.Fatalf("Expected success, got %+v", resp)
	}

	data, err := srv.store.MonthData(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("Failed to read month: %v", err)
	}
	if got := data.Habits[3].HabitName; got != "Habit 4" {
		t.Errorf("Expected default name, got %q", got)
	}
}

func TestSaveBestDayEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/save-best-day", field.BestDayPayload{
		Year: 2026, Month: 8, BestDay: 21,
	})
	if resp.Status != "success" {
		t.Fatalf("Expected success, got %+v", resp)
	}

	data, err := srv.store.MonthData(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("Failed to read month: %v", err)
	}
	if data.Info.BestDay != 21 {
		t.Errorf("Expected best day 21, got %d", data.Info.BestDay)
	}
}

func TestMalformedBodyReturnsErrorJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post("http://"+srv.GetAddr()+"/api/save-oneliner",
		"application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	var out saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Error response is not JSON: %v", err)
	}
	if out.Status != "error" {
		t.Errorf("Expected error status, got %q", out.Status)
	}
}

func TestMonthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/api/save-oneliner", field.OneLinerPayload{
		Year: 2026, Month: 1, Day: 1, Text: "fresh start",
	})

	resp, err := http.Get("http://" + srv.GetAddr() + "/api/month?year=2026&month=1")
	if err != nil {
		t.Fatalf("GET /api/month failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var out monthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode month response: %v", err)
	}

	if len(out.Habits) != field.HabitCount {
		t.Errorf("Expected %d habits, got %d", field.HabitCount, len(out.Habits))
	}
	if len(out.Entries) != 31 {
		t.Errorf("Expected 31 entries, got %d", len(out.Entries))
	}
	if out.Entries[0].OneLiner != "fresh start" {
		t.Errorf("Expected saved one-liner, got %q", out.Entries[0].OneLiner)
	}
	if out.Prev.Year != 2025 || out.Prev.Month != 12 {
		t.Errorf("Expected prev 2025-12, got %d-%d", out.Prev.Year, out.Prev.Month)
	}
	if out.Next.Year != 2026 || out.Next.Month != 2 {
		t.Errorf("Expected next 2026-02, got %d-%d", out.Next.Year, out.Next.Month)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get("http://" + srv.GetAddr() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("Expected ok status, got %v", out["status"])
	}
}

func TestWebSocketFieldSavedBroadcast(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws://" + srv.GetAddr() + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Read greeting
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal greeting: %v", err)
	}
	if msg.Type != MessageTypeHello {
		t.Errorf("Expected greeting type %s, got %s", MessageTypeHello, msg.Type)
	}

	if count := srv.ClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	postJSON(t, srv, "/api/save-habit", field.HabitCheckPayload{
		Year: 2026, Month: 8, Day: 9, HabitNumber: 1, Checked: true,
	})

	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal broadcast: %v", err)
	}
	if msg.Type != MessageTypeFieldSaved {
		t.Fatalf("Expected message type %s, got %s", MessageTypeFieldSaved, msg.Type)
	}

	var saved FieldSavedData
	if err := json.Unmarshal(msg.Data, &saved); err != nil {
		t.Fatalf("Failed to unmarshal field_saved data: %v", err)
	}
	if saved.Field != "habit-check" || saved.Day != 9 || saved.Habit != 1 {
		t.Errorf("Unexpected field_saved data: %+v", saved)
	}
}

func TestAssetWatcherEmitsReload(t *testing.T) {
	srv := newTestServer(t)

	dir := t.TempDir()
	aw, err := srv.WatchAssets(dir)
	if err != nil {
		t.Fatalf("Failed to start asset watcher: %v", err)
	}
	if !aw.IsRunning() {
		t.Fatal("Watcher should be running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+srv.GetAddr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Drain greeting
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("Failed to read greeting: %v", err)
	}

	path := filepath.Join(dir, "style.css")
	if err := os.WriteFile(path, []byte("body{}"), 0o644); err != nil {
		t.Fatalf("Failed to write asset: %v", err)
	}

	// A create may be followed by a write event; accept the first reload.
	for i := 0; i < 3; i++ {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("Failed to read reload broadcast: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal broadcast: %v", err)
		}
		if msg.Type == MessageTypeReload {
			var reload ReloadData
			if err := json.Unmarshal(msg.Data, &reload); err != nil {
				t.Fatalf("Failed to unmarshal reload data: %v", err)
			}
			if reload.Path != path {
				t.Errorf("Expected reload for %s, got %s", path, reload.Path)
			}
			return
		}
	}
	t.Fatal("Never received a reload broadcast")
}

func TestAssetWatcherIgnoresOtherFiles(t *testing.T) {
	aw, err := NewAssetWatcher()
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	dir := t.TempDir()
	if err := aw.Start(dir); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer aw.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case ev := <-aw.Events():
		t.Fatalf("Expected no event for .txt file, got %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/save-oneliner",
		"/api/save-habit",
		"/api/update-habit-name",
		"/api/save-best-day",
		"/api/save-journal",
	} {
		resp, err := http.Get("http://" + srv.GetAddr() + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d (%s)", path, resp.StatusCode, body)
		}
	}
}

func TestMonthEndpointRejectsBadQuery(t *testing.T) {
	srv := newTestServer(t)

	for _, query := range []string{
		"year=abc&month=1",
		"year=2026&month=13",
		"year=2026&month=0",
	} {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/month?%s", srv.GetAddr(), query))
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Query %q: expected 400, got %d", query, resp.StatusCode)
		}
	}
}
