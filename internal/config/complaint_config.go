package config

import "time"

const (
	// Scoring
	BaseScore            = 50
	UnknownCategoryScore = 10
	KeywordBonus         = 10
	MinScore             = 0
	MaxScore             = 100

	// Tiers
	CriticalThreshold = 85
	HighThreshold     = 70
	MediumThreshold   = 40

	// Aggregation
	DashboardResolutionSample  = 100
	DepartmentResolutionSample = 50
	NeedsAttentionRatePercent  = 60
	HighVolumePendingThreshold = 5
	ExcellentRatePercent       = 80
	GoodRatePercent            = 60

	// Listing
	DefaultListLimit = 50
	MaxListLimit     = 500
	MarkerLimit      = 100

	// Feedback
	MinRating = 1
	MaxRating = 5

	// Images
	MaxUploadBytes     = 10 * 1024 * 1024
	MaxFilesPerUpload  = 10
	TargetImageBytes   = 1024 * 1024
	MaxImageWidth      = 1920
	MaxImageHeight     = 1080
	InitialJPEGQuality = 80
	JPEGQualityStep    = 10
	MinJPEGQuality     = 30
	MaxEncodeAttempts  = 5

	// Staff tokens
	DefaultTokenTTL = 72 * time.Hour
	TokenIssuer     = "civictriage-service"
)

var CategoryWeights = map[string]int{
	"infrastructure": 20,
	"utilities":      18,
	"public_safety":  22,
	"traffic":        15,
	"health":         20,
	"environment":    10,
	"sanitation":     12,
	"other":          8,
}

// UrgentKeywords are matched as lower-case substrings, each at most once.
var UrgentKeywords = []string{
	"emergency",
	"urgent",
	"immediate",
	"danger",
	"accident",
	"fallen",
	"leak",
	"fire",
	"flood",
}
