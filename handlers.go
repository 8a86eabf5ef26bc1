package main

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"hatroom/internal/palette"
	"hatroom/internal/session"
)

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

// Messages surfaced by the login form. The same strings are embedded in the
// page script so browser and server agree byte for byte.
const (
	msgEmptyUsername   = "Por favor, insira um nome de usuário."
	loginAttemptPrefix = "Tentativa de Login com Usuário: "
)

const defaultPlayerName = "Player"

// validateUsername strips leading and trailing whitespace and reports whether
// anything is left.
func validateUsername(name string) (string, bool) {
	name = strings.TrimSpace(name)
	return name, name != ""
}

// loginAttemptMessage is the message shown for a submitted username. The
// caller passes an already trimmed name.
func loginAttemptMessage(name string) string {
	return loginAttemptPrefix + name
}

// cleanInput trims the value and falls back to def when nothing is left.
func cleanInput(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func handleLoginGet(sessionManager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, _ := sessionManager.Profile(r)
		serveLogin(w, profile, "")
	}
}

func handleJoinPost(sessionManager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, _ := sessionManager.Profile(r)

		if err := r.ParseForm(); err != nil {
			serveLogin(w, profile, "Envio de formulário inválido.")
			return
		}

		name, ok := validateUsername(r.FormValue("name"))
		if !ok {
			serveLogin(w, profile, msgEmptyUsername)
			return
		}

		room := cleanInput(r.FormValue("room"), "")
		if room == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		folder, _ := palette.Normalize(cleanInput(r.FormValue("hat_color"), ""))

		if err := sessionManager.SaveProfile(r.Context(), name, folder); err != nil {
			log.Printf("session save failed for %q: %v", name, err)
		}
		log.Printf("join: user=%q room=%s folder=%s", name, room, folder)

		target := "/room/" + url.PathEscape(room) +
			"?name=" + url.QueryEscape(name) +
			"&color=" + url.QueryEscape(folder)
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func handleRoomGet(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "roomID")
	name := cleanInput(r.URL.Query().Get("name"), defaultPlayerName)
	folder, _ := palette.Normalize(cleanInput(r.URL.Query().Get("color"), ""))

	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := roomHTML
	page = strings.Replace(page, "{{ROOM}}", html.EscapeString(room), -1)
	page = strings.Replace(page, "{{NAME}}", html.EscapeString(name), -1)
	page = strings.Replace(page, "{{COLOR}}", html.EscapeString(folder), -1)
	fmt.Fprint(w, page)
}

func serveLogin(w http.ResponseWriter, profile session.Profile, message string) {
	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	errorHTML := ""
	if message != "" {
		errorHTML = `<div class="error">` + html.EscapeString(message) + `</div>`
	}

	var options strings.Builder
	for _, entry := range palette.Entries() {
		selected := ""
		if entry.Folder == profile.Folder {
			selected = ` selected`
		}
		fmt.Fprintf(&options, `<option value="%s" style="background:%s"%s>%s</option>`,
			entry.Folder, entry.Hex, selected, entry.Folder)
	}

	page := loginHTML
	page = strings.Replace(page, "{{ERROR}}", errorHTML, 1)
	page = strings.Replace(page, "{{NAME}}", html.EscapeString(profile.Name), 1)
	page = strings.Replace(page, "{{OPTIONS}}", options.String(), 1)
	fmt.Fprint(w, page)
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}
