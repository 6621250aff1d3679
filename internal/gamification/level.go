package gamification

// XPPerLevel is the flat amount of XP between two levels.
const XPPerLevel = 100

// LevelForXP returns floor(xp/100)+1. Negative XP is treated as zero.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPToNextLevel returns how much XP is missing to reach the next level.
func XPToNextLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return XPPerLevel - xp%XPPerLevel
}

// LevelProgress is the display form of a user's XP.
type LevelProgress struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPIntoLevel   int `json:"xp_into_level"`
	XPToNextLevel int `json:"xp_to_next_level"`
}

func ProgressForXP(xp int) LevelProgress {
	into := 0
	if xp > 0 {
		into = xp % XPPerLevel
	}
	return LevelProgress{
		Level:         LevelForXP(xp),
		XP:            xp,
		XPIntoLevel:   into,
		XPToNextLevel: XPToNextLevel(xp),
	}
}
