package scoring

import "strings"

// FallbackExplanation notes that the evaluator could not be reached.
const FallbackExplanation = "The evaluator was unavailable; the decision was recorded with neutral impact."

// Fallback returns the neutral evaluation applied when the evaluation
// service is unavailable. It is deterministic: every impact is neutral and
// the karma impact is zero, so applying it never mutates state.
func Fallback() Evaluation {
	return Evaluation{
		EthicalImpact:       "neutral",
		TechnologicalImpact: "neutral",
		TemporalImpact:      "neutral",
		KarmaImpact:         0,
		Explanation:         FallbackExplanation,
	}
}

// Category labels a decision by the kind of action its text describes.
type Category string

const (
	CategoryEthicalPositive  Category = "ethical_positive"
	CategoryEthicalNegative  Category = "ethical_negative"
	CategoryTechPositive     Category = "tech_positive"
	CategoryTechNegative     Category = "tech_negative"
	CategoryTemporalPositive Category = "temporal_positive"
	CategoryTemporalNegative Category = "temporal_negative"
	CategoryNeutral          Category = "neutral"
)

// categoryKeywords maps each category to the decision-text keywords that
// signal it. Order matters: the first matching category wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryEthicalPositive, []string{"help", "save", "protect", "heal", "share"}},
	{CategoryEthicalNegative, []string{"harm", "destroy", "betray", "steal", "lie"}},
	{CategoryTechPositive, []string{"research", "develop", "innovate", "build", "upgrade"}},
	{CategoryTechNegative, []string{"sabotage", "corrupt", "weaponize", "exploit"}},
	{CategoryTemporalPositive, []string{"stabilize", "balance", "harmonize", "connect"}},
	{CategoryTemporalNegative, []string{"disrupt", "fracture", "collapse", "sever"}},
}

// Categorize labels a decision by keyword, falling back to the karma impact
// when no keyword matches.
func Categorize(decision string, karmaImpact int) Category {
	lowered := strings.ToLower(decision)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.category
			}
		}
	}

	switch {
	case karmaImpact > 3:
		return CategoryEthicalPositive
	case karmaImpact < -3:
		return CategoryEthicalNegative
	case karmaImpact > 0:
		return CategoryTechPositive
	case karmaImpact < 0:
		return CategoryTechNegative
	default:
		return CategoryNeutral
	}
}

// Summarize maps a karma impact to the evaluator's summary band. Used when
// an evaluation arrives without an explanation-worthy summary.
func Summarize(karmaImpact int) string {
	switch {
	case karmaImpact >= 7:
		return "This decision shows exceptional wisdom and foresight, benefiting many across multiple timelines."
	case karmaImpact >= 4:
		return "This decision is ethically sound and contributes positively to the stability of the timelines."
	case karmaImpact >= 1:
		return "This decision has a slightly positive impact, though its long-term effects may be limited."
	case karmaImpact >= -1:
		return "This decision is relatively neutral, neither significantly helping nor harming the timelines."
	case karmaImpact >= -4:
		return "This decision has some negative consequences that may destabilize affected timelines."
	case karmaImpact >= -7:
		return "This decision has serious ethical concerns and could cause significant harm across timelines."
	default:
		return "This decision is catastrophic, with far-reaching negative consequences that may be irreversible."
	}
}
