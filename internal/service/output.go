package service

import (
	"encoding/json"
	"os"
)

// WriteJSON writes v as a UTF-8 JSON file with 2-space indentation.
// HTML escaping is off so URLs and non-ASCII text pass through
// unescaped, matching the legacy output artifacts.
func WriteJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
