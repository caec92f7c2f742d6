package content

import "strings"

// Puzzle is a generated riddle or logic puzzle. Answers are lowercase so
// callers can compare player input case-insensitively.
type Puzzle struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Hints    []string `json:"hints"`
	Solved   bool     `json:"solved"`
}

type puzzleSeed struct {
	question string
	answer   string
	hints    []string
}

var riddles = []puzzleSeed{
	{
		question: "I speak without a mouth and hear without ears. I have no body, but I come alive with wind. What am I?",
		answer:   "echo",
		hints:    []string{"It's a sound phenomenon", "It repeats what you say"},
	},
	{
		question: "The more you take, the more you leave behind. What am I?",
		answer:   "footsteps",
		hints:    []string{"Think about walking", "They're left on the ground"},
	},
	{
		question: "I have cities, but no houses. I have mountains, but no trees. I have water, but no fish. What am I?",
		answer:   "map",
		hints:    []string{"It's something you use for navigation", "It shows geographical features"},
	},
}

var logicPuzzle = puzzleSeed{
	question: "Solve this logic puzzle: If all roses are flowers, and some flowers are red, are all roses red?",
	answer:   "no",
	hints:    []string{"Think about the logic", "Not all flowers are roses"},
}

// GeneratePuzzle builds a puzzle of the given type: "riddle" rolls from the
// riddle table, anything else gets the logic puzzle.
func (g *Generator) GeneratePuzzle(puzzleType string) Puzzle {
	seed := logicPuzzle
	if strings.ToLower(puzzleType) == "riddle" {
		seed = riddles[g.src.Intn(len(riddles))]
	}
	return Puzzle{
		Type:     puzzleType,
		Question: seed.question,
		Answer:   strings.ToLower(seed.answer),
		Hints:    append([]string{}, seed.hints...),
	}
}
