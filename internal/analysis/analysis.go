// Package analysis scores new complaints. The score depends only on the category
// and the submitted text, so the same input always yields the same score and tier.
package analysis

import (
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/models"
	"strings"
)

// GetWeight returns the score contribution of a category.
// Unrecognized categories get config.UnknownCategoryScore.
func GetWeight(category models.Category) int {
	if w, ok := config.CategoryWeights[string(category)]; ok {
		return w
	}
	return config.UnknownCategoryScore
}

// UrgentMatches returns how many distinct urgent keywords occur in the
// lower-cased title and description. Matching is by substring, not whole word.
func UrgentMatches(title, description string) int {
	text := strings.ToLower(title + " " + description)
	matches := 0
	for _, keyword := range config.UrgentKeywords {
		if strings.Contains(text, keyword) {
			matches++
		}
	}
	return matches
}

// Score computes the priority score of a new complaint, clamped to [0, 100].
func Score(category models.Category, title, description string) int {
	score := config.BaseScore
	score += GetWeight(category)
	score += UrgentMatches(title, description) * config.KeywordBonus

	if score > config.MaxScore {
		return config.MaxScore
	}
	if score < config.MinScore {
		return config.MinScore
	}
	return score
}

// Tier maps a score to its priority tier; thresholds are checked high to low.
func Tier(score int) models.Priority {
	switch {
	case score >= config.CriticalThreshold:
		return models.PriorityCritical
	case score >= config.HighThreshold:
		return models.PriorityHigh
	case score >= config.MediumThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Assess returns both the score and the tier for a complaint input.
func Assess(in models.ComplaintInput) (int, models.Priority) {
	score := Score(in.Category, in.Title, in.Description)
	return score, Tier(score)
}
