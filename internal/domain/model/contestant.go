// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
)

// Contestant is immutable reference data ranked by a session.
// Only ID is required; every other field is display metadata.
type Contestant struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Season      any    `json:"season,omitempty"` // number or string, as supplied
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`

	// Extra keeps any additional keys so a contestant round-trips losslessly.
	Extra map[string]any `json:"-"`
}

// knownContestantKeys are encoded by the struct fields rather than Extra.
var knownContestantKeys = map[string]struct{}{
	"id": {}, "name": {}, "season": {}, "status": {},
	"description": {}, "imageUrl": {}, "videoUrl": {},
}

// MarshalJSON flattens Extra next to the named fields.
func (c Contestant) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+len(knownContestantKeys))
	for k, v := range c.Extra {
		if _, known := knownContestantKeys[k]; known {
			continue
		}
		out[k] = v
	}
	out["id"] = c.ID
	setIfNotEmpty(out, "name", c.Name)
	if c.Season != nil {
		out["season"] = c.Season
	}
	setIfNotEmpty(out, "status", c.Status)
	setIfNotEmpty(out, "description", c.Description)
	setIfNotEmpty(out, "imageUrl", c.ImageURL)
	setIfNotEmpty(out, "videoUrl", c.VideoURL)
	return json.Marshal(out)
}

// UnmarshalJSON accepts any object with a string id.
func (c *Contestant) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, ok := raw["id"].(string)
	if !ok {
		return fmt.Errorf("contestant: %w", ErrMissingID)
	}

	*c = Contestant{ID: id, Season: raw["season"]}
	c.Name = stringField(raw, "name")
	c.Status = stringField(raw, "status")
	c.Description = stringField(raw, "description")
	c.ImageURL = stringField(raw, "imageUrl")
	c.VideoURL = stringField(raw, "videoUrl")

	for k, v := range raw {
		if _, known := knownContestantKeys[k]; known {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return nil
}

func setIfNotEmpty(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
