package entity

import (
	"encoding/json"
	"time"

	"brd-discovery-be/internal/constant"

	"github.com/google/uuid"
)

// DiscoverySession is one end-to-end discovery conversation. State carries
// the per-session key/value schema (stage index, extracted facts, stage
// outputs); the typed accessors below are the only mutation path used by
// the workflow services.
type DiscoverySession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	UserName  string
	UserEmail string
	Language  string
	Title     string
	State     map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (s *DiscoverySession) ensureState() {
	if s.State == nil {
		s.State = make(map[string]interface{})
	}
}

// stateInt reads an integer state value tolerating the numeric types a
// jsonb round-trip can produce.
func (s *DiscoverySession) stateInt(key string, fallback int) int {
	s.ensureState()
	switch v := s.State[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

func (s *DiscoverySession) stateMap(key string) map[string]interface{} {
	s.ensureState()
	if m, ok := s.State[key].(map[string]interface{}); ok {
		return m
	}
	m := make(map[string]interface{})
	s.State[key] = m
	return m
}

// CurrentStageIndex returns the active stage, defaulting to 0 when unset.
func (s *DiscoverySession) CurrentStageIndex() int {
	return s.stateInt(constant.StateKeyCurrentStageIndex, 0)
}

func (s *DiscoverySession) SetCurrentStageIndex(idx int) {
	s.ensureState()
	s.State[constant.StateKeyCurrentStageIndex] = idx
}

func (s *DiscoverySession) IsResuming() bool {
	s.ensureState()
	v, _ := s.State[constant.StateKeyIsResuming].(bool)
	return v
}

func (s *DiscoverySession) SetResuming(resuming bool) {
	s.ensureState()
	s.State[constant.StateKeyIsResuming] = resuming
}

func (s *DiscoverySession) WorkflowStatus() string {
	s.ensureState()
	if v, ok := s.State[constant.StateKeyWorkflowStatus].(string); ok {
		return v
	}
	return constant.WorkflowStatusInProgress
}

func (s *DiscoverySession) SetWorkflowStatus(status string) {
	s.ensureState()
	s.State[constant.StateKeyWorkflowStatus] = status
}

func (s *DiscoverySession) TurnCount() int {
	return s.stateInt(constant.StateKeyTurnCount, 0)
}

func (s *DiscoverySession) IncrementTurnCount() {
	s.ensureState()
	s.State[constant.StateKeyTurnCount] = s.TurnCount() + 1
}

// EnsureScaffolding initializes the nested state structures. Safe to call
// repeatedly.
func (s *DiscoverySession) EnsureScaffolding() {
	s.ensureState()
	if _, ok := s.State[constant.StateKeyExtractedData].(map[string]interface{}); !ok {
		s.State[constant.StateKeyExtractedData] = make(map[string]interface{})
	}
	if _, ok := s.State[constant.StateKeyStageCompletion].(map[string]interface{}); !ok {
		s.State[constant.StateKeyStageCompletion] = make(map[string]interface{})
	}
	if _, ok := s.State[constant.StateKeyWorkflowStatus].(string); !ok {
		s.State[constant.StateKeyWorkflowStatus] = constant.WorkflowStatusInProgress
	}
	if _, ok := s.State[constant.StateKeyTurnCount]; !ok {
		s.State[constant.StateKeyTurnCount] = 0
	}
}

// ExtractedData returns the accumulated structured facts.
func (s *DiscoverySession) ExtractedData() map[string]interface{} {
	return s.stateMap(constant.StateKeyExtractedData)
}

// MergeExtracted folds facts into extracted_data. Last write wins per key.
func (s *DiscoverySession) MergeExtracted(facts map[string]interface{}) {
	data := s.stateMap(constant.StateKeyExtractedData)
	for k, v := range facts {
		data[k] = v
	}
}

// StageCompletion returns the per-stage completion records.
func (s *DiscoverySession) StageCompletion() map[string]interface{} {
	return s.stateMap(constant.StateKeyStageCompletion)
}

// MarkStageCompleted records a completion entry for the stage.
func (s *DiscoverySession) MarkStageCompleted(stageName string, timestamp time.Time, eventCount int) {
	completion := s.stateMap(constant.StateKeyStageCompletion)
	completion[stageName] = map[string]interface{}{
		"completed":   true,
		"timestamp":   timestamp.Format(time.RFC3339),
		"event_count": eventCount,
	}
}

func (s *DiscoverySession) SetCurrentStageName(stageName string) {
	s.ensureState()
	s.State[constant.StateKeyCurrentStageName] = stageName
}

// Output returns the free-text output stored under a stage's output key.
func (s *DiscoverySession) Output(outputKey string) string {
	s.ensureState()
	if v, ok := s.State[outputKey].(string); ok {
		return v
	}
	return ""
}

func (s *DiscoverySession) SetOutput(outputKey, text string) {
	s.ensureState()
	s.State[outputKey] = text
}
