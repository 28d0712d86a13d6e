package models

// LeadLevel is the qualification bucket derived from the score percentage.
type LeadLevel string

const (
	LevelCold LeadLevel = "cold"
	LevelWarm LeadLevel = "warm"
	LevelHot  LeadLevel = "hot"
)

// LevelForPercentage applies the 70/40 thresholds (inclusive on the upper side).
func LevelForPercentage(pct int) LeadLevel {
	switch {
	case pct >= 70:
		return LevelHot
	case pct >= 40:
		return LevelWarm
	default:
		return LevelCold
	}
}

// ScoreFactor is the contribution of one factor to the lead score.
type ScoreFactor struct {
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"maxScore"`
}

// LeadScore is computed fresh for every message and never persisted by the core.
type LeadScore struct {
	TotalScore      float64                `json:"totalScore"`
	MaxScore        float64                `json:"maxScore"`
	Percentage      int                    `json:"percentage"`
	Level           LeadLevel              `json:"level"`
	Factors         map[string]ScoreFactor `json:"factors"`
	Recommendations []string               `json:"recommendations"`
}

// ScoringContext is the input of the scoring engine.
type ScoringContext struct {
	Industry  Industry          `json:"industry"`
	Responses map[string]string `json:"responses"`
	UserInfo  UserInfo          `json:"userInfo"`
	Behavior  Behavior          `json:"behavior"`
}
