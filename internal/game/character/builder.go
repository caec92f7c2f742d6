package character

import (
	"errors"
	"fmt"
)

// defaultPointBuy is the standard ability array assigned before class
// adjustments: 15, 14, 13, 12, 10, 8.
func defaultPointBuy() AbilityScores {
	return AbilityScores{
		Strength:     15,
		Dexterity:    14,
		Constitution: 13,
		Intelligence: 12,
		Wisdom:       10,
		Charisma:     8,
	}
}

// fallbackClass stands in when a class name has no registered template.
var fallbackClass = Class{HitDie: 8}

// NewCharacter builds a level-1 Sheet for the named class.
//
// When custom is nil the default point-buy array is used and each of the
// class's primary stats is raised to at least 15. Unrecognized class names
// fall back to a plain d8 template with no starting skills or equipment.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Sheet with MaxHP >= 1 and HP full, or a non-nil error.
func (r *Registry) NewCharacter(name, race, className string, custom *AbilityScores) (*Sheet, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}

	class, ok := r.Get(className)
	if !ok {
		class = &fallbackClass
	}

	var abilities AbilityScores
	if custom != nil {
		abilities = *custom
	} else {
		abilities = defaultPointBuy()
		for _, stat := range class.PrimaryStats {
			if v, ok := abilities.Score(stat); ok && v < 15 {
				abilities.Boost(stat, 15-v)
			}
		}
	}

	maxHP := class.HitDie + Modifier(abilities.Constitution)
	if maxHP < 1 {
		maxHP = 1
	}

	inventory := make([]string, len(class.StartingEquipment))
	copy(inventory, class.StartingEquipment)

	equipped := Equipment{Weapon: "unarmed", Armor: "none"}
	if len(inventory) > 0 {
		equipped.Weapon = inventory[0]
	}
	if len(inventory) > 1 {
		equipped.Armor = inventory[1]
	}

	proficient := make([]string, len(class.StartingSkills))
	copy(proficient, class.StartingSkills)

	return &Sheet{
		Name:       name,
		Race:       race,
		Class:      className,
		Level:      1,
		Experience: 0,
		HP:         HitPoints{Current: maxHP, Max: maxHP},
		ArmorClass: 10 + Modifier(abilities.Dexterity),
		Abilities:  abilities,
		Skills:     SkillSet{Proficient: proficient, Expertise: []string{}},
		Inventory:  inventory,
		Equipped:   equipped,
		Gold:       50,
		Background: fmt.Sprintf("A %s %s seeking adventure", race, className),
		HitDie:     class.HitDie,
	}, nil
}
