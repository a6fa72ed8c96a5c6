package banker

import (
	"slices"

	"github.com/samber/lo"

	"garthbid/internal/domain/entity"
)

const (
	TemplateStandard     = "standard"
	TemplateAggressive   = "aggressive"
	TemplateConservative = "conservative"
)

// AllowedTerms — сроки кредита, доступные во всех встроенных шаблонах.
func AllowedTerms() []int {
	return []int{24, 36, 48, 60, 72}
}

func DefaultTemplates() []entity.OfferTemplate {
	return []entity.OfferTemplate{
		{ID: TemplateStandard, Name: "Standard", BaseAPR: 6.9, TermMonths: 60, AllowedTerms: AllowedTerms()},
		{ID: TemplateAggressive, Name: "Aggressive", BaseAPR: 5.9, TermMonths: 48, AllowedTerms: AllowedTerms()},
		{ID: TemplateConservative, Name: "Conservative", BaseAPR: 8.4, TermMonths: 36, AllowedTerms: AllowedTerms()},
	}
}

func templatesByID(templates []entity.OfferTemplate) map[string]entity.OfferTemplate {
	return lo.SliceToMap(templates, func(t entity.OfferTemplate) (string, entity.OfferTemplate) {
		t.AllowedTerms = slices.Clone(t.AllowedTerms)
		return t.ID, t
	})
}
