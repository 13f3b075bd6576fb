package dashboard

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is the follow-up reason derived from a lead's notes.
type Category string

const (
	CategoryFollowUpAfterMeeting Category = "followUpAfterMeeting"
	CategoryRescheduleMeeting    Category = "rescheduleMeeting"
	CategoryNoAnswerFirstCall    Category = "noAnswer1stCall"
	CategoryFollowUp             Category = "followUp"
)

// Categories lists every category in rule priority order, default last.
var Categories = []Category{
	CategoryFollowUpAfterMeeting,
	CategoryRescheduleMeeting,
	CategoryNoAnswerFirstCall,
	CategoryFollowUp,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type categoryRule struct {
	category Category
	keywords []string
}

// Evaluated top to bottom; the first rule with any matching keyword wins.
var categoryRules = foldRules([]categoryRule{
	{category: CategoryFollowUpAfterMeeting, keywords: []string{"meeting", "اجتماع"}},
	{category: CategoryRescheduleMeeting, keywords: []string{"reschedule", "إعادة"}},
	{category: CategoryNoAnswerFirstCall, keywords: []string{"no answer", "لا يرد"}},
})

func foldRules(rules []categoryRule) []categoryRule {
	folder := cases.Fold()
	for i := range rules {
		for j, kw := range rules[i].keywords {
			rules[i].keywords[j] = folder.String(kw)
		}
	}
	return rules
}

// Categorize maps free-text notes to a Category.
func Categorize(notes string) Category {
	if strings.TrimSpace(notes) == "" {
		return CategoryFollowUp
	}
	folded := cases.Fold().String(notes)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.category
			}
		}
	}
	return CategoryFollowUp
}
