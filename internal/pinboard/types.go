package pinboard

import "strings"

// Pin is a normalized image record returned by the provider.
type Pin struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Link  *string `json:"link,omitempty"`
	Image string  `json:"image"`
}

// DisplayTitle returns the title, or a neutral fallback for untitled pins.
func (p Pin) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return "Pinterest image"
}

// LinkURL returns the outbound link or an empty string.
func (p Pin) LinkURL() string {
	if p.Link == nil {
		return ""
	}
	return *p.Link
}

// Board is a selectable pin collection.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label returns the board name, falling back to its id.
func (b Board) Label() string {
	if n := strings.TrimSpace(b.Name); n != "" {
		return n
	}
	return b.ID
}

// PinListResponse mirrors the list endpoints.
type PinListResponse struct {
	OK     bool   `json:"ok"`
	Source string `json:"source,omitempty"`
	Items  []Pin  `json:"items"`
}

// BoardListResponse mirrors /api/me/boards.
type BoardListResponse struct {
	Items []Board `json:"items"`
}

// errorBody is the JSON error envelope the provider uses for failures.
type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ScopeAll selects every pin of the signed-in user rather than one board.
const ScopeAll = "all"

// Usable filters out records without an image reference.
func Usable(items []Pin) []Pin {
	out := make([]Pin, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Image) == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
