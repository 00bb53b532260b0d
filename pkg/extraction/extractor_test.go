package extraction

import (
	"testing"
)

func TestRegistryExtract(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		name      string
		stageName string
		text      string
		aux       string
		wantKeys  []string
		wantFacts map[string]interface{}
	}{
		{
			name:      "unknown stage yields empty facts",
			stageName: "SomethingElse",
			text:      "Any output at all.",
			wantKeys:  []string{},
		},
		{
			name:      "empty text yields empty facts",
			stageName: StageCompanyContext,
			text:      "",
			wantKeys:  []string{},
		},
		{
			name:      "company name and industry from context",
			stageName: StageCompanyContext,
			text:      "NxtWave Disruptive Technologies trains students and professionals for tech careers in education.",
			wantFacts: map[string]interface{}{
				"company_name":    "NxtWave Disruptive Technologies",
				"industry":        "EdTech / Career Development",
				"target_audience": "Students and professionals seeking tech careers",
			},
		},
		{
			name:      "company facts from research aux text",
			stageName: StageCompanyContext,
			text:      "They build chips.",
			aux:       "Nestwave provides low-power geolocation for IoT applications.",
			wantFacts: map[string]interface{}{
				"company_name":    "Nestwave",
				"industry":        "IoT / Geolocation",
				"target_audience": "IoT device manufacturers",
			},
		},
		{
			name:      "project name from first substantial line",
			stageName: StageProjectOverview,
			text:      "# **Career Acceleration Platform**\nA platform for mentoring.",
			wantFacts: map[string]interface{}{
				"project_name": "Career Acceleration Platform",
				"project_type": "Platform",
			},
		},
		{
			name:      "workflow pain point counting",
			stageName: StageCurrentWorkflow,
			text:      "The manual process is slow and the handoff is difficult.",
			wantFacts: map[string]interface{}{
				"pain_points_identified": 3,
				"has_pain_points":        true,
			},
		},
		{
			name:      "workflow with no pain vocabulary",
			stageName: StageCurrentWorkflow,
			text:      "Everything runs smoothly end to end.",
			wantKeys:  []string{},
		},
		{
			name:      "problem summary is first sentence",
			stageName: StageProblemStatement,
			text:      "Onboarding takes three weeks. That delays revenue recognition.",
			wantFacts: map[string]interface{}{
				"problem_summary": "Onboarding takes three weeks",
			},
		},
		{
			name:      "solution summary flags AI usage",
			stageName: StageSolutionVision,
			text:      "An AI assistant that drafts the paperwork. It uses machine learning for ranking.",
			wantFacts: map[string]interface{}{
				"solution_summary": "An AI assistant that drafts the paperwork",
				"uses_ai":          true,
			},
		},
		{
			name:      "criteria KPI counting",
			stageName: StageSuccessCriteria,
			text:      "Primary KPI is onboarding time; we also track cost per hire as a metric.",
			wantFacts: map[string]interface{}{
				"kpis_defined":       true,
				"kpi_count_estimate": 4,
			},
		},
		{
			name:      "signoff always confirms",
			stageName: StageGenerationSignoff,
			text:      "yes, go ahead",
			wantFacts: map[string]interface{}{
				"signoff_confirmed": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := registry.Extract(tt.stageName, tt.text, tt.aux)
			if facts == nil {
				t.Fatal("Extract must never return nil")
			}

			if tt.wantFacts != nil {
				if len(facts) != len(tt.wantFacts) {
					t.Errorf("got %d facts (%v), want %d", len(facts), facts, len(tt.wantFacts))
				}
				for k, want := range tt.wantFacts {
					if got, ok := facts[k]; !ok || got != want {
						t.Errorf("fact %q = %v, want %v", k, got, want)
					}
				}
				return
			}

			if len(facts) != len(tt.wantKeys) {
				t.Errorf("got %d facts (%v), want %d", len(facts), facts, len(tt.wantKeys))
			}
		})
	}
}

func TestProblemSummaryTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "very long "
	}
	facts := ExtractProblemFacts(long+". Rest ignored", "")
	summary, ok := facts["problem_summary"].(string)
	if !ok {
		t.Fatal("expected problem_summary fact")
	}
	if got := len([]rune(summary)); got > 150 {
		t.Errorf("summary length %d exceeds 150", got)
	}
}

func TestProblemSummaryTruncatesOnRuneBoundary(t *testing.T) {
	long := ""
	for i := 0; i < 149; i++ {
		long += "x"
	}
	long += "日本語のテキスト"
	facts := ExtractProblemFacts(long+". Rest ignored", "")
	summary := facts["problem_summary"].(string)

	runes := []rune(summary)
	if len(runes) != 150 {
		t.Fatalf("summary rune length = %d, want 150", len(runes))
	}
	if runes[149] != '日' {
		t.Errorf("last rune = %q, want a whole multi-byte rune", runes[149])
	}
}

func TestProblemSummaryRecordedWhenEmpty(t *testing.T) {
	// A statement opening with a period still records the key, with an
	// empty summary.
	facts := ExtractProblemFacts(". Then the details follow", "")
	summary, ok := facts["problem_summary"]
	if !ok {
		t.Fatal("expected problem_summary fact")
	}
	if summary != "" {
		t.Errorf("summary = %q, want empty", summary)
	}
}

func TestOutputKeysCoverRoster(t *testing.T) {
	registry := DefaultRegistry()
	for stageName := range OutputKeys {
		if _, ok := registry.Lookup(stageName); !ok {
			t.Errorf("stage %q has an output key but no extractor", stageName)
		}
	}
}
