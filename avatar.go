package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"hatroom/internal/game"
)

// Avatar frames are a fixed set; anything else is a 404 before any path is
// built.
var allowedFrames = map[string]bool{
	"meio":     true,
	"direito":  true,
	"esquerdo": true,
}

// folderPattern keeps folder names to letters, numbers, '_' and '-'.
var folderPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

const personagemDir = "personagem"

// avatarHandler serves the SVG frame for a player's hat folder. The folder
// comes from the player metadata, never from the URL, and is still validated
// against the folder pattern and a path traversal check before touching disk.
func avatarHandler(registry *game.Registry, staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame := chi.URLParam(r, "frame")
		if !allowedFrames[frame] {
			http.NotFound(w, r)
			return
		}

		playerID := chi.URLParam(r, "playerID")
		meta, ok := registry.Meta(playerID)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if meta.Folder == "" || !folderPattern.MatchString(meta.Folder) {
			http.NotFound(w, r)
			return
		}

		baseDir := filepath.Join(staticDir, personagemDir, meta.Folder)
		candidate := filepath.Join(baseDir, frame+".svg")

		rel, err := filepath.Rel(filepath.Join(staticDir, personagemDir), candidate)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			log.Printf("avatar path traversal blocked: player=%s folder=%q", playerID, meta.Folder)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		http.ServeFile(w, r, candidate)
	}
}
