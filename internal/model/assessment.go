package model

// ContaminationLevel is the visual contamination class of a sample.
type ContaminationLevel string

var (
	ContaminationLow     ContaminationLevel = "LOW"
	ContaminationMedium  ContaminationLevel = "MEDIUM"
	ContaminationHigh    ContaminationLevel = "HIGH"
	ContaminationUnknown ContaminationLevel = "UNKNOWN"
)

// Recommendation is the categorical outcome derived from a score.
type Recommendation string

var (
	RecommendationAccepted      Recommendation = "ACCEPTED"
	RecommendationNeedsCleaning Recommendation = "NEEDS_CLEANING"
	RecommendationRejected      Recommendation = "REJECTED"
)

// ScoreBreakdown holds the factors that were multiplied into a score.
type ScoreBreakdown struct {
	MaterialWeight           float64 `json:"material_weight"`
	CleanlinessFactor        float64 `json:"cleanliness_factor"`
	LocalRecyclabilityFactor float64 `json:"local_recyclability_factor"`
}

// AssessmentResult is the outcome of evaluating one sample.
type AssessmentResult struct {
	Material          Material           `json:"material"`
	Contamination     ContaminationLevel `json:"contamination"`
	CleanlinessFactor float64            `json:"cleanliness_factor"`
	Score             float64            `json:"recyclability_score"`
	Breakdown         ScoreBreakdown     `json:"score_breakdown"`
	Recommendation    Recommendation     `json:"recommendation"`
}
