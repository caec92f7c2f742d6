package content

import "strings"

// Location is a generated place the story can move to. Explored, NPCs, and
// Items start empty and fill in as the player investigates.
type Location struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Atmosphere  string   `json:"atmosphere"`
	Context     string   `json:"context"`
	Explored    bool     `json:"explored"`
	NPCs        []string `json:"npcs"`
	Items       []string `json:"items"`
}

// locationSeed is a built-in location profile.
type locationSeed struct {
	name        string
	description string
	features    []string
	atmosphere  string
}

var locationSeeds = map[string]locationSeed{
	"tavern": {
		name:        "The Rusty Tankard",
		description: "A dimly lit tavern with wooden beams overhead. The air smells of ale and roasted meat. Patrons huddle around tables, speaking in hushed tones.",
		features:    []string{"bar", "tables", "fireplace", "stairs"},
		atmosphere:  "warm but tense",
	},
	"dungeon": {
		name:        "Ancient Dungeon",
		description: "Cold stone walls covered in moss. Torches flicker, casting dancing shadows. The sound of dripping water echoes in the distance.",
		features:    []string{"corridors", "cells", "traps", "treasure_room"},
		atmosphere:  "ominous and foreboding",
	},
	"forest": {
		name:        "The Whispering Woods",
		description: "Tall trees create a canopy overhead, filtering sunlight. Birds chirp in the distance. The path ahead is barely visible.",
		features:    []string{"trees", "path", "clearing", "stream"},
		atmosphere:  "mysterious and alive",
	},
	"town": {
		name:        "Small Town",
		description: "A peaceful town with cobblestone streets. Shops line the main road, and townsfolk go about their daily business.",
		features:    []string{"shops", "inn", "temple", "market"},
		atmosphere:  "busy but friendly",
	},
}

// GenerateLocation builds a location of the given type. Types outside the
// built-in set get a minimal generic profile.
func (g *Generator) GenerateLocation(locationType, storyContext string) Location {
	seed, ok := locationSeeds[strings.ToLower(locationType)]
	if !ok {
		seed = locationSeed{
			name:        titleWords(locationType),
			description: "A " + locationType,
			features:    []string{},
			atmosphere:  "neutral",
		}
	}
	return Location{
		Type:        locationType,
		Name:        seed.name,
		Description: seed.description,
		Features:    append([]string{}, seed.features...),
		Atmosphere:  seed.atmosphere,
		Context:     storyContext,
		NPCs:        []string{},
		Items:       []string{},
	}
}
