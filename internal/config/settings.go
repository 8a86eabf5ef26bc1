package config

import (
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

type SettingsType struct {
	m map[string]SettingType
}

type SettingType struct {
	Description string
	Value       string
}

func NewSettingType(print bool) *SettingsType {
	s := &SettingsType{m: make(map[string]SettingType)}

	s.Set(LISTEN_ADDR, "Server listen address", ":5000")
	s.Set(STATIC_DIR, "Directory holding static assets and avatar frames", "static")
	s.Set(TLS_ENABLE, "Serve HTTPS with a self-signed certificate", "false")
	s.Set(TLS_CERT, "TLS certificate path, only if TLS_ENABLE", "certs/server.crt")
	s.Set(TLS_KEY, "TLS key path, only if TLS_ENABLE", "certs/server.key")
	s.Set(WS_READ_BUFFER, "Websocket read buffer size in bytes", "4096")
	s.Set(WS_WRITE_BUFFER, "Websocket write buffer size in bytes", "4096")
	s.Set(PLAYER_META_TTL, "How long player metadata outlives the last update", "30m")

	if print {
		table := tablewriter.NewWriter(os.Stdout)

		table.Header("KEY", "Description", "value")
		for key, setting := range s.m {
			table.Append([]string{key, setting.Description, setting.Value})
		}
		table.Render()
	}
	return s
}

func (s *SettingsType) Get(id string) string {
	return s.m[id].Value
}

func (s *SettingsType) Has(id string) bool {
	return len(s.m[id].Value) > 0
}

func (s *SettingsType) IsTrue(id string) bool {
	return s.m[id].Value == "true"
}

func (s *SettingsType) GetInt(id string, def int) int {
	n, err := strconv.Atoi(s.m[id].Value)
	if err != nil {
		return def
	}
	return n
}

func (s *SettingsType) GetDuration(id string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s.m[id].Value)
	if err != nil {
		return def
	}
	return d
}

func (s *SettingsType) Set(id string, description string, defaultValue string) {
	if value, ok := os.LookupEnv(id); ok {
		s.m[id] = SettingType{Description: description, Value: value}
	} else {
		s.m[id] = SettingType{Description: description, Value: defaultValue}
	}
}

const (
	LISTEN_ADDR     = "LISTEN_ADDR"
	STATIC_DIR      = "STATIC_DIR"
	TLS_ENABLE      = "TLS_ENABLE"
	TLS_CERT        = "TLS_CERT"
	TLS_KEY         = "TLS_KEY"
	WS_READ_BUFFER  = "WS_READ_BUFFER"
	WS_WRITE_BUFFER = "WS_WRITE_BUFFER"
	PLAYER_META_TTL = "PLAYER_META_TTL"
)
