package scoring

import "testing"

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback()
	second := Fallback()
	if first != second {
		t.Fatalf("Fallback() not deterministic: %+v vs %+v", first, second)
	}
	if first.KarmaImpact != 0 {
		t.Fatalf("fallback karma impact = %d, want 0", first.KarmaImpact)
	}
	if first.EthicalImpact != "neutral" || first.TechnologicalImpact != "neutral" || first.TemporalImpact != "neutral" {
		t.Fatalf("fallback impacts not neutral: %+v", first)
	}
	if first.Explanation != FallbackExplanation {
		t.Fatalf("fallback explanation = %q", first.Explanation)
	}
}

func TestCategorizeKeywords(t *testing.T) {
	tests := []struct {
		decision string
		want     Category
	}{
		{"Help the refugees cross the rift", CategoryEthicalPositive},
		{"Betray the council to the brokers", CategoryEthicalNegative},
		{"Research a new stabilizer lattice", CategoryTechPositive},
		{"Sabotage the reactor core", CategoryTechNegative},
		{"Harmonize the twin timelines", CategoryTemporalPositive},
		{"Fracture the eastern corridor", CategoryTemporalNegative},
	}
	for _, tc := range tests {
		if got := Categorize(tc.decision, 0); got != tc.want {
			t.Fatalf("Categorize(%q) = %v, want %v", tc.decision, got, tc.want)
		}
	}
}

func TestCategorizeKarmaFallback(t *testing.T) {
	tests := []struct {
		karma int
		want  Category
	}{
		{5, CategoryEthicalPositive},
		{-5, CategoryEthicalNegative},
		{2, CategoryTechPositive},
		{-2, CategoryTechNegative},
		{0, CategoryNeutral},
	}
	for _, tc := range tests {
		if got := Categorize("an unmatched phrase", tc.karma); got != tc.want {
			t.Fatalf("Categorize(karma=%d) = %v, want %v", tc.karma, got, tc.want)
		}
	}
}

func TestClampKarma(t *testing.T) {
	tests := []struct {
		impact int
		want   int
	}{
		{15, 10},
		{10, 10},
		{3, 3},
		{-10, -10},
		{-42, -10},
	}
	for _, tc := range tests {
		if got := ClampKarma(tc.impact); got != tc.want {
			t.Fatalf("ClampKarma(%d) = %d, want %d", tc.impact, got, tc.want)
		}
	}
}

func TestSummarizeBands(t *testing.T) {
	if Summarize(8) == Summarize(0) {
		t.Fatalf("summary bands must differ across karma extremes")
	}
	if Summarize(-8) == Summarize(-3) {
		t.Fatalf("summary bands must differ between serious and mild negatives")
	}
	if Summarize(0) != Summarize(-1) {
		t.Fatalf("karma 0 and -1 share the neutral band")
	}
}
