package progress

import (
	"math"

	"github.com/kingrea/secureaware/internal/catalog"
)

const recommendedLimit = 3

// Achievement is a milestone badge shown on the dashboard.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary is the dashboard view of the learner's progress.
type Summary struct {
	Completed    int              `json:"completed"`
	Total        int              `json:"total"`
	Remaining    int              `json:"remaining"`
	Percentage   int              `json:"percentage"`
	Recommended  []catalog.Module `json:"recommended"`
	Achievements []Achievement    `json:"achievements"`
}

// Summarize derives the dashboard numbers. Only ids present in the catalog
// count toward the percentage; recommendations are the first incomplete
// modules in catalog order.
func Summarize(modules []catalog.Module, isCompleted func(id string) bool) Summary {
	s := Summary{Total: len(modules)}
	for _, mod := range modules {
		if isCompleted != nil && isCompleted(mod.ID) {
			s.Completed++
			continue
		}
		if len(s.Recommended) < recommendedLimit {
			s.Recommended = append(s.Recommended, mod)
		}
	}
	s.Remaining = s.Total - s.Completed
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	s.Achievements = achievements(s)
	return s
}

func achievements(s Summary) []Achievement {
	var out []Achievement
	if s.Completed >= 1 {
		out = append(out, Achievement{Title: "First Module Completed", Description: "You've started your security journey!"})
	}
	if s.Completed >= 3 {
		out = append(out, Achievement{Title: "Security Enthusiast", Description: "Completed 3+ security modules"})
	}
	if s.Completed >= 1 && s.Percentage >= 50 {
		out = append(out, Achievement{Title: "Halfway Champion", Description: "Completed 50% of all modules"})
	}
	return out
}
