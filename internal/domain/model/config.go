package model

import "errors"

// ErrMissingID is returned when a contestant payload has no string id.
var ErrMissingID = errors.New("missing id")

// SavedRankingVersion is the only persisted layout version understood.
const SavedRankingVersion = 1

// TierConfigEntry describes how a bucket is labelled.
type TierConfigEntry struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color,omitempty" yaml:"color"`
	HexColor    string `json:"hexColor,omitempty" yaml:"hex_color"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// TierConfig maps bucket names to their labels.
type TierConfig map[string]TierConfigEntry

// DefaultTierOrder is the bucket order used when a session does not supply one.
var DefaultTierOrder = []string{"S", "A", "B", "C", "D", "F"}

// DefaultTierConfig returns a fresh copy of the built-in S..F labels.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		"S": {Name: "S", Color: "from-red-400 to-red-500", HexColor: "#f87171", Description: "Legendary"},
		"A": {Name: "A", Color: "from-orange-400 to-orange-500", HexColor: "#fb923c", Description: "Outstanding"},
		"B": {Name: "B", Color: "from-amber-400 to-yellow-500", HexColor: "#fbbf24", Description: "Great"},
		"C": {Name: "C", Color: "from-lime-400 to-green-500", HexColor: "#84cc16", Description: "Good"},
		"D": {Name: "D", Color: "from-teal-400 to-teal-500", HexColor: "#2dd4bf", Description: "Average"},
		"F": {Name: "F", Color: "from-gray-500 to-gray-600", HexColor: "#6b7280", Description: "Underwhelming"},
	}
}

// Themes lists the theme keys a session may select, mapped to display names.
var Themes = map[string]string{
	"survivor": "Survivor Jungle",
	"ocean":    "Ocean Blue",
	"fire":     "Tribal Council Fire",
}

// SavedRanking is the persisted document for one session.
type SavedRanking struct {
	Version    int        `json:"version"`
	Group      string     `json:"group"`
	Theme      string     `json:"theme"`
	TierConfig TierConfig `json:"tierConfig"`
	Tiers      Tiers      `json:"tiers"`
	SavedAt    int64      `json:"savedAt"` // epoch millis

	// Revision increases with every change to the session. Stores keep the
	// highest revision they have seen for a key.
	Revision int64 `json:"revision,omitempty"`
}

// SaveEvent asks the autosave pipeline to persist a document under Key.
type SaveEvent struct {
	Key      string
	Document SavedRanking
}
