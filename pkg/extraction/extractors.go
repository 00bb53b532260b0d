package extraction

import "strings"

// Stage names of the discovery roster. Extraction is keyed by these, as is
// the per-stage output key table consumed by the transition recorder.
const (
	StageCompanyContext    = "CompanyContext"
	StageProjectOverview   = "ProjectOverview"
	StageCurrentWorkflow   = "CurrentWorkflow"
	StageProblemStatement  = "ProblemStatement"
	StageSolutionVision    = "SolutionVision"
	StageSuccessCriteria   = "SuccessCriteria"
	StageGenerationSignoff = "GenerationSignoff"
)

// OutputKeys maps stage name to the session state key its free-text
// output is stored under.
var OutputKeys = map[string]string{
	StageCompanyContext:    "company_context",
	StageProjectOverview:   "project_overview",
	StageCurrentWorkflow:   "current_workflow",
	StageProblemStatement:  "problem_statement",
	StageSolutionVision:    "solution_vision",
	StageSuccessCriteria:   "success_criteria",
	StageGenerationSignoff: "generation_signoff",
}

const summaryLimit = 150

var painPointKeywords = []string{
	"problem", "issue", "difficult", "slow", "manual", "time-consuming", "inefficient",
}

var kpiKeywords = []string{
	"metric", "kpi", "measure", "%", "percentage", "time", "cost", "revenue",
}

// ExtractCompanyFacts derives company name, industry and audience hints
// from the company context plus any research results. Keyword presence
// only; the goal is a compact snapshot, not accuracy.
func ExtractCompanyFacts(companyContext, researchResults string) Facts {
	facts := Facts{}
	text := companyContext + " " + researchResults
	lower := strings.ToLower(text)

	if strings.Contains(text, "NxtWave Disruptive Technologies") {
		facts["company_name"] = "NxtWave Disruptive Technologies"
	} else if strings.Contains(text, "Nestwave") {
		facts["company_name"] = "Nestwave"
	}

	if strings.Contains(text, "IoT") || strings.Contains(text, "geolocation") {
		facts["industry"] = "IoT / Geolocation"
	} else if strings.Contains(lower, "education") || strings.Contains(lower, "tech careers") {
		facts["industry"] = "EdTech / Career Development"
	}

	if strings.Contains(lower, "students") && strings.Contains(lower, "professionals") {
		facts["target_audience"] = "Students and professionals seeking tech careers"
	} else if strings.Contains(text, "IoT applications") {
		facts["target_audience"] = "IoT device manufacturers"
	}

	return facts
}

// ExtractProjectFacts pulls a project name from the first substantial line
// and a coarse project type from keyword presence.
func ExtractProjectFacts(projectOverview, _ string) Facts {
	facts := Facts{}

	for _, line := range strings.Split(projectOverview, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 10 && len(trimmed) < 100 {
			cleaned := strings.ReplaceAll(trimmed, "#", "")
			cleaned = strings.ReplaceAll(cleaned, "**", "")
			facts["project_name"] = strings.TrimSpace(cleaned)
			break
		}
	}

	lower := strings.ToLower(projectOverview)
	if strings.Contains(lower, "platform") {
		facts["project_type"] = "Platform"
	} else if strings.Contains(lower, "application") || strings.Contains(lower, "app") {
		facts["project_type"] = "Application"
	} else if strings.Contains(lower, "system") {
		facts["project_type"] = "System"
	}

	return facts
}

// ExtractWorkflowFacts counts pain-point vocabulary in the workflow
// description.
func ExtractWorkflowFacts(workflowDesc, _ string) Facts {
	facts := Facts{}
	lower := strings.ToLower(workflowDesc)

	count := 0
	for _, keyword := range painPointKeywords {
		if strings.Contains(lower, keyword) {
			count++
		}
	}
	if count > 0 {
		facts["pain_points_identified"] = count
		facts["has_pain_points"] = true
	}

	return facts
}

// ExtractProblemFacts keeps the first sentence, truncated, as the problem
// summary. The summary is recorded even when it comes out empty.
func ExtractProblemFacts(problemStatement, _ string) Facts {
	return Facts{"problem_summary": firstSentence(problemStatement)}
}

// ExtractSolutionFacts keeps a truncated first-sentence summary and flags
// AI/ML mentions.
func ExtractSolutionFacts(solutionVision, _ string) Facts {
	facts := Facts{"solution_summary": firstSentence(solutionVision)}

	lower := strings.ToLower(solutionVision)
	if strings.Contains(lower, "ai") || strings.Contains(lower, "machine learning") || strings.Contains(lower, "ml") {
		facts["uses_ai"] = true
	}

	return facts
}

// ExtractCriteriaFacts counts KPI vocabulary in the success criteria.
func ExtractCriteriaFacts(successCriteria, _ string) Facts {
	facts := Facts{}
	lower := strings.ToLower(successCriteria)

	count := 0
	for _, keyword := range kpiKeywords {
		if strings.Contains(lower, keyword) {
			count++
		}
	}
	if count > 0 {
		facts["kpis_defined"] = true
		facts["kpi_count_estimate"] = count
	}

	return facts
}

// ExtractSignoffFacts records that the user confirmed generation.
func ExtractSignoffFacts(_, _ string) Facts {
	return Facts{"signoff_confirmed": true}
}

// firstSentence returns the text before the first period, trimmed and
// capped at summaryLimit characters. The cap counts runes so a
// multi-byte character is never split.
func firstSentence(text string) string {
	sentence := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	if runes := []rune(sentence); len(runes) > summaryLimit {
		sentence = string(runes[:summaryLimit])
	}
	return sentence
}
