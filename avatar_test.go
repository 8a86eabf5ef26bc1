package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hatroom/internal/game"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`

func newAvatarServer(t *testing.T) (http.Handler, *game.Registry, string) {
	t.Helper()
	staticDir := t.TempDir()
	for _, folder := range []string{"ciano", "vermelho"} {
		dir := filepath.Join(staticDir, personagemDir, folder)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for _, frame := range []string{"meio", "direito", "esquerdo"} {
			if err := os.WriteFile(filepath.Join(dir, frame+".svg"), []byte(testSVG), 0644); err != nil {
				t.Fatalf("write svg: %v", err)
			}
		}
	}

	registry := game.NewRegistry(time.Minute)
	router := chi.NewRouter()
	router.Get("/avatar/{playerID}/{frame}.svg", avatarHandler(registry, staticDir))
	return router, registry, staticDir
}

func getAvatar(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAvatarServesFrame(t *testing.T) {
	handler, registry, _ := newAvatarServer(t)
	registry.Join("sala1", "p1", game.PlayerState{Name: "alice", Folder: "ciano", Color: "#00FFFF"})

	rec := getAvatar(handler, "/avatar/p1/meio.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Fatalf("expected svg content type, got %q", got)
	}
	if rec.Body.String() != testSVG {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestAvatarUnknownFrame(t *testing.T) {
	handler, registry, _ := newAvatarServer(t)
	registry.Join("sala1", "p1", game.PlayerState{Folder: "ciano"})

	rec := getAvatar(handler, "/avatar/p1/costas.svg")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAvatarUnknownPlayer(t *testing.T) {
	handler, _, _ := newAvatarServer(t)

	rec := getAvatar(handler, "/avatar/ghost/meio.svg")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAvatarRejectsUnsafeFolder(t *testing.T) {
	handler, registry, staticDir := newAvatarServer(t)

	// plant a file outside the avatar tree that a traversal would reach
	if err := os.WriteFile(filepath.Join(staticDir, "secret.svg"), []byte("secret"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	registry.Join("sala1", "p1", game.PlayerState{Folder: ".."})

	rec := getAvatar(handler, "/avatar/p1/meio.svg")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for unsafe folder, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAvatarMissingFile(t *testing.T) {
	handler, registry, staticDir := newAvatarServer(t)
	registry.Join("sala1", "p1", game.PlayerState{Folder: "ciano"})

	if err := os.Remove(filepath.Join(staticDir, personagemDir, "ciano", "meio.svg")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rec := getAvatar(handler, "/avatar/p1/meio.svg")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAvatarPlayerGoneAfterLeave(t *testing.T) {
	handler, registry, _ := newAvatarServer(t)
	registry.Join("sala1", "p1", game.PlayerState{Folder: "ciano"})
	registry.Remove("sala1", "p1")

	rec := getAvatar(handler, "/avatar/p1/meio.svg")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
