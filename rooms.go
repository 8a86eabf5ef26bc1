package main

import (
	"encoding/json"
	"log"
	"net/http"

	"hatroom/internal/game"
	"hatroom/internal/palette"
)

type roomsResponse struct {
	Rooms []game.RoomInfo `json:"rooms"`
	Error string          `json:"error,omitempty"`
}

type paletteResponse struct {
	Colors []palette.Entry `json:"colors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if err := enc.Encode(payload); err != nil {
		log.Printf("write json response: %v", err)
	}
}
