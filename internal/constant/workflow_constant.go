package constant

// Session state keys. These names are the persistence schema consumed by
// external inspection tooling and must not be renamed.
const (
	StateKeyCurrentStageIndex  = "current_stage_index"
	StateKeyIsResuming         = "is_resuming"
	StateKeyWorkflowStatus     = "workflow_status"
	StateKeyExtractedData      = "extracted_data"
	StateKeyStageCompletion    = "stage_completion"
	StateKeyTurnCount          = "turn_count"
	StateKeyCurrentStageName   = "current_stage_name"
	StateKeyDiscoveryCompleted = "discovery_completed"
	StateKeyFinalBRD           = "final_brd"
	StateKeyCompanyResearch    = "company_research_results"
)

// Workflow status values.
const (
	WorkflowStatusInProgress = "IN_PROGRESS"
	WorkflowStatusCompleted  = "COMPLETED"
)

// TerminalStageIndex is the fixed index finalize jumps to, one past the
// last defined stage.
const TerminalStageIndex = 6

// Websocket push message types.
const (
	MessageTypeStageUpdate = "stage_update"
	MessageTypeBRDReady    = "brd_ready"
	MessageTypeHistory     = "history"
	MessageTypeReply       = "reply"
	MessageTypeError       = "error"
)

// Transcript event roles.
const (
	EventRoleUser      = "user"
	EventRoleAssistant = "assistant"
	EventRoleSystem    = "system"
)

// EventAuthorUser is the author recorded for user-originated events. Agent
// events are authored with the stage name.
const EventAuthorUser = "user"
