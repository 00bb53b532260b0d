package dto

// SetupPayload is the first frame a live connection must send. ProjectId
// doubles as the session identifier the connection is scoped to.
type SetupPayload struct {
	UserId    string `json:"user_id"`
	SessionId string `json:"session_id"`
	ProjectId string `json:"project_id"`
}

type LiveInbound struct {
	Setup *SetupPayload `json:"setup,omitempty"`
	Text  string        `json:"text,omitempty"`
}

type LiveReply struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type LiveError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
