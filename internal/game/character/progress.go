package character

// xpThresholds[i] is the total experience required to hold level i+1.
var xpThresholds = []int{0, 300, 900, 2700, 6500, 14000, 23000, 34000, 48000, 64000}

// MaxLevel is the highest level reachable through experience.
const MaxLevel = 10

// LevelUp advances the sheet one level. Hit points rise by the average roll
// of the sheet's hit die, max(1, hitDie/2 + 1 + conMod), applied to both
// current and maximum. Every 4th level the highest ability score gains +1.
//
// Postcondition: Level is incremented by 1; HP.Max and HP.Current each rise
// by at least 1.
func (s *Sheet) LevelUp() {
	hitDie := s.HitDie
	if hitDie == 0 {
		hitDie = 8
	}

	gain := hitDie/2 + 1 + Modifier(s.Abilities.Constitution)
	if gain < 1 {
		gain = 1
	}

	s.Level++
	s.HP.Max += gain
	s.HP.Current += gain

	if s.Level%4 == 0 {
		s.Abilities.Boost(s.Abilities.Highest(), 1)
	}
}

// AddExperience adds xp to the sheet and applies every level-up the new
// total grants, chaining through multiple levels when a large award crosses
// several thresholds.
//
// Postcondition: Level equals the highest threshold level covered by the new
// experience total (never decreased). Returns whether any level-up occurred
// and the resulting level.
func (s *Sheet) AddExperience(xp int) (leveledUp bool, newLevel int) {
	s.Experience += xp

	target := 1
	for i, threshold := range xpThresholds {
		if s.Experience >= threshold {
			target = i + 1
		}
	}

	leveledUp = target > s.Level
	for s.Level < target {
		s.LevelUp()
	}
	return leveledUp, s.Level
}
