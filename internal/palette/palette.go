// Package palette is the single source of truth for the hat colors a player
// may pick. Each entry maps an on-disk avatar folder to the hex color used
// for previews in the UI.
package palette

import "sort"

var folders = map[string]string{
	"amarelo":      "#FFD400",
	"azul_escuro":  "#003366",
	"ciano":        "#00FFFF",
	"laranja":      "#FF8C00",
	"marron":       "#8B4513",
	"verde_claro":  "#66FF66",
	"verde_escuro": "#006400",
	"vermelho":     "#C50A0A",
}

// Entry pairs a folder name with its preview color.
type Entry struct {
	Folder string `json:"folder"`
	Hex    string `json:"hex"`
}

// Names returns all folder names in sorted order.
func Names() []string {
	names := make([]string, 0, len(folders))
	for name := range folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the palette in sorted folder order.
func Entries() []Entry {
	names := Names()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{Folder: name, Hex: folders[name]})
	}
	return entries
}

// Hex returns the preview color for a folder.
func Hex(folder string) (string, bool) {
	hex, ok := folders[folder]
	return hex, ok
}

func Has(folder string) bool {
	_, ok := folders[folder]
	return ok
}

// Normalize returns the folder and its color when the folder is part of the
// palette, otherwise the first folder in sorted order. Unknown folders never
// reach the filesystem this way.
func Normalize(folder string) (string, string) {
	if hex, ok := folders[folder]; ok {
		return folder, hex
	}
	def := Names()[0]
	return def, folders[def]
}
