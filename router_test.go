package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"hatroom/internal/config"
	"hatroom/internal/game"
	"hatroom/internal/realtime"
	"hatroom/internal/session"
)

func newTestRouter(t *testing.T) (http.Handler, *game.Registry) {
	t.Helper()
	settings := config.NewSettingType(false)
	registry := game.NewRegistry(time.Minute)
	gateway := realtime.NewGateway(registry, realtime.Conf{})
	handler := getRouter(session.NewManager(false), settings, registry, gateway)
	return handler, registry
}

func TestRouterHealth(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "ok\n" {
		t.Fatalf("expected body %q, got %q", "ok\n", body)
	}
}

func TestRouterRootServesLogin(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="join-form"`) {
		t.Fatalf("expected the login form on the root page")
	}
}

func TestRouterJoinEmptyName(t *testing.T) {
	handler, _ := newTestRouter(t)
	form := url.Values{"name": {"   "}, "room": {"sala1"}, "hat_color": {"ciano"}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/join", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgEmptyUsername) {
		t.Fatalf("expected validation message in response")
	}
}

func TestRouterJoinEmptyRoomRedirectsBack(t *testing.T) {
	handler, _ := newTestRouter(t)
	form := url.Values{"name": {"alice"}, "room": {"   "}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/join", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestRouterJoinRedirectsToRoom(t *testing.T) {
	handler, _ := newTestRouter(t)
	form := url.Values{"name": {"  alice  "}, "room": {" sala1 "}, "hat_color": {"ciano"}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/join", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/room/sala1?name=alice&color=ciano" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatalf("expected a session cookie after join")
	}
}

func TestRouterJoinUnknownColorFallsBack(t *testing.T) {
	handler, _ := newTestRouter(t)
	form := url.Values{"name": {"alice"}, "room": {"sala1"}, "hat_color": {"roxo"}}
	req := httptest.NewRequest(http.MethodPost, "http://example.com/join", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/room/sala1?name=alice&color=amarelo" {
		t.Fatalf("expected palette fallback in redirect, got %q", loc)
	}
}

func TestRouterRoomPage(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/room/sala1?name=alice&color=ciano", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-room="sala1"`) ||
		!strings.Contains(body, `data-name="alice"`) ||
		!strings.Contains(body, `data-color="ciano"`) {
		t.Fatalf("expected room data attributes in page")
	}
}

func TestRouterRoomPageDefaults(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/room/sala1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `data-name="Player"`) {
		t.Fatalf("expected default player name")
	}
	if !strings.Contains(body, `data-color="amarelo"`) {
		t.Fatalf("expected default hat color")
	}
}

func TestRouterNotFound(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/not-found", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRouterMetrics(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/metrics", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hatroom_websocket_connections") {
		t.Fatalf("expected hatroom gauges in metrics output")
	}
}

func TestRouterAPIRooms(t *testing.T) {
	handler, registry := newTestRouter(t)
	registry.Join("sala1", "p1", game.PlayerState{X: 1, Y: 2, Name: "alice", Folder: "ciano", Color: "#00FFFF"})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/rooms", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp roomsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode rooms response: %v", err)
	}
	if len(resp.Rooms) != 1 || resp.Rooms[0].Name != "sala1" {
		t.Fatalf("unexpected rooms response: %+v", resp)
	}
	if p, ok := resp.Rooms[0].Players["p1"]; !ok || p.Name != "alice" {
		t.Fatalf("expected player p1 in listing, got %+v", resp.Rooms[0].Players)
	}
}

func TestRouterAPIPalette(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/palette", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp paletteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode palette response: %v", err)
	}
	if len(resp.Colors) != 8 {
		t.Fatalf("expected 8 colors, got %d", len(resp.Colors))
	}
	if resp.Colors[0].Folder != "amarelo" || resp.Colors[0].Hex != "#FFD400" {
		t.Fatalf("unexpected first color: %+v", resp.Colors[0])
	}
}

func TestRouterWSRejectsPlainGet(t *testing.T) {
	handler, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for non-upgrade request, got %d", http.StatusBadRequest, rec.Code)
	}
}
