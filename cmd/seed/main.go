package main

import (
	"log"
	"os"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/model"
	"brd-discovery-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

// Seeds a demo discovery session so the frontend has something to resume
// against on a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Demo Discovery Session...")

	sessionId := uuid.New()
	session := &model.DiscoverySession{
		Id:        sessionId,
		UserId:    uuid.New(),
		UserName:  "Demo User",
		UserEmail: "demo@example.com",
		Language:  "English",
		Title:     "Demo Discovery",
		State: datatypes.JSONMap{
			constant.StateKeyCurrentStageIndex:  0,
			constant.StateKeyIsResuming:         false,
			constant.StateKeyWorkflowStatus:     constant.WorkflowStatusInProgress,
			constant.StateKeyExtractedData:      map[string]interface{}{},
			constant.StateKeyStageCompletion:    map[string]interface{}{},
			constant.StateKeyTurnCount:          0,
			constant.StateKeyDiscoveryCompleted: false,
		},
	}

	if err := db.Create(session).Error; err != nil {
		log.Fatalf("Error: Failed to seed session: %v", err)
	}

	greeting := &model.SessionEvent{
		Id:        uuid.New(),
		SessionId: sessionId,
		Author:    "CompanyContext",
		Role:      constant.EventRoleAssistant,
		Content:   "Hello! I am here to help you shape your business requirements. Tell me about your company.",
	}
	if err := db.Create(greeting).Error; err != nil {
		log.Fatalf("Error: Failed to seed greeting event: %v", err)
	}

	color.Green("✅ Success: Seeded session %s", sessionId)
}
