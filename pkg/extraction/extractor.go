package extraction

// Facts is a flat mapping of semantic fact name to scalar value, merged
// into the session's extracted_data.
type Facts map[string]interface{}

// Extractor reduces a stage's free-text output (plus optional auxiliary
// text such as research results) into compact structured facts. Extractors
// are pure functions: no side effects, never an error. Callers guard
// against empty stage output before extracting.
type Extractor func(text, aux string) Facts

// Registry maps stage names to their extractors.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

func (r *Registry) Register(stageName string, fn Extractor) {
	r.extractors[stageName] = fn
}

// Lookup returns the extractor for a stage, or false when none is
// registered. Unknown stages are tolerated by callers, not fatal.
func (r *Registry) Lookup(stageName string) (Extractor, bool) {
	fn, ok := r.extractors[stageName]
	return fn, ok
}

// Extract runs the stage's extractor. Unknown stage or empty text yields
// empty facts.
func (r *Registry) Extract(stageName, text, aux string) Facts {
	fn, ok := r.extractors[stageName]
	if !ok || text == "" {
		return Facts{}
	}
	facts := fn(text, aux)
	if facts == nil {
		return Facts{}
	}
	return facts
}

// DefaultRegistry returns the registry covering the discovery roster.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StageCompanyContext, ExtractCompanyFacts)
	r.Register(StageProjectOverview, ExtractProjectFacts)
	r.Register(StageCurrentWorkflow, ExtractWorkflowFacts)
	r.Register(StageProblemStatement, ExtractProblemFacts)
	r.Register(StageSolutionVision, ExtractSolutionFacts)
	r.Register(StageSuccessCriteria, ExtractCriteriaFacts)
	r.Register(StageGenerationSignoff, ExtractSignoffFacts)
	return r
}
