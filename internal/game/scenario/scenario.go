// Package scenario holds the built-in campaign openings a new game can
// start from.
package scenario

// Scenario is one campaign opening: the pitch shown at selection and the
// prompt that seeds the game master.
type Scenario struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	StartingLocation string   `json:"starting_location"`
	InitialPrompt    string   `json:"initial_prompt"`
	Themes           []string `json:"themes"`
	RecommendedLevel int      `json:"recommended_level"`
}

// DefaultID is the scenario used when an unknown ID is requested.
const DefaultID = "the_cursed_tavern"

// catalog order fixes List output.
var order = []string{"the_cursed_tavern", "the_lost_treasure", "the_bandit_menace"}

var catalog = map[string]Scenario{
	"the_cursed_tavern": {
		ID:               "the_cursed_tavern",
		Name:             "The Cursed Tavern",
		Description:      "A mysterious curse has befallen the local tavern, causing furniture to come alive and attack patrons.",
		Difficulty:       "medium",
		StartingLocation: "town_square",
		InitialPrompt: `You are the Game Master for a D&D campaign. The player's character has just arrived at a small town called Millbrook. As they walk through the streets in the evening, they notice something unusual - the local tavern, "The Rusty Tankard", appears to be closed and boarded up, despite it being evening when taverns are usually busy. Strange sounds can be heard from inside - creaking, scraping, and what sounds like furniture moving on its own.

Begin the adventure by describing the scene vividly and inviting the player to investigate. Use rich sensory details and create an atmosphere of mystery and tension.`,
		Themes:           []string{"mystery", "horror", "urban"},
		RecommendedLevel: 1,
	},
	"the_lost_treasure": {
		ID:               "the_lost_treasure",
		Name:             "The Lost Treasure",
		Description:      "An ancient map leads to a hidden treasure, but the path is dangerous and filled with traps.",
		Difficulty:       "hard",
		StartingLocation: "adventurers_guild",
		InitialPrompt: `You are the Game Master for a D&D campaign. The player's character has just received a mysterious map from a dying adventurer in the local tavern. The map shows the location of a legendary treasure hidden deep in an ancient dungeon. However, the path is marked with warnings of deadly traps, guardians, and ancient magic.

The map is old and partially faded, but clearly shows a route through a forest, across a ravine, and into a mountain cave. Begin by describing how the character receives the map and the sense of adventure and danger that awaits.`,
		Themes:           []string{"adventure", "exploration", "treasure"},
		RecommendedLevel: 2,
	},
	"the_bandit_menace": {
		ID:               "the_bandit_menace",
		Name:             "The Bandit Menace",
		Description:      "Bandits have been terrorizing the trade routes. The local lord offers a reward for clearing them out.",
		Difficulty:       "easy",
		StartingLocation: "lord_manor",
		InitialPrompt: `You are the Game Master for a D&D campaign. The player's character has been summoned to the local lord's manor. The lord, a stern but fair ruler, explains that bandits have been attacking merchant caravans on the trade routes, causing economic damage and fear among the populace. He offers a substantial reward for anyone who can eliminate the bandit threat.

The bandits are said to be holed up in an old fort about a day's travel from town. Begin by describing the meeting with the lord and the mission briefing. Create a sense of urgency and the opportunity for heroism.`,
		Themes:           []string{"combat", "justice", "reward"},
		RecommendedLevel: 1,
	},
}

// Get returns the scenario with the given ID, falling back to the default
// opening for unknown IDs.
func Get(id string) Scenario {
	if s, ok := catalog[id]; ok {
		return s
	}
	return catalog[DefaultID]
}

// List returns all scenarios in catalog order.
func List() []Scenario {
	out := make([]Scenario, 0, len(order))
	for _, id := range order {
		out = append(out, catalog[id])
	}
	return out
}

// ByDifficulty returns the scenarios matching the given difficulty, in
// catalog order.
func ByDifficulty(difficulty string) []Scenario {
	var out []Scenario
	for _, id := range order {
		if catalog[id].Difficulty == difficulty {
			out = append(out, catalog[id])
		}
	}
	return out
}
