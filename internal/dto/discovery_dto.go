package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	UserName  string `json:"user_name" validate:"required"`
	UserEmail string `json:"user_email" validate:"required,email"`
	Language  string `json:"language"`
	Title     string `json:"title"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Token string    `json:"token"`
}

type ShowSessionResponse struct {
	Id                uuid.UUID              `json:"id"`
	UserName          string                 `json:"user_name"`
	Title             string                 `json:"title"`
	Language          string                 `json:"language"`
	CurrentStageIndex int                    `json:"current_stage_index"`
	CurrentStageName  string                 `json:"current_stage_name"`
	WorkflowStatus    string                 `json:"workflow_status"`
	TurnCount         int                    `json:"turn_count"`
	ExtractedData     map[string]interface{} `json:"extracted_data"`
	StageCompletion   map[string]interface{} `json:"stage_completion"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         *time.Time             `json:"updated_at"`
}

type SessionSummaryResponse struct {
	Id                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	CurrentStageIndex int       `json:"current_stage_index"`
	WorkflowStatus    string    `json:"workflow_status"`
	CreatedAt         time.Time `json:"created_at"`
}

type StageDescriptor struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OutputKey   string `json:"output_key"`
}

type TranscriptEventResponse struct {
	Id        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DiscoveryCompletedMessage is the payload published when a session is
// finalized, consumed by the async BRD generation worker.
type DiscoveryCompletedMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

type BRDResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	FinalBRD  string    `json:"final_brd"`
	Completed bool      `json:"completed"`
}
