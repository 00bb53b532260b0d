package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordingDelivery struct {
	stageUpdates chan int
	payloads     chan map[string]interface{}
}

func newRecordingDelivery() *recordingDelivery {
	return &recordingDelivery{
		stageUpdates: make(chan int, 4),
		payloads:     make(chan map[string]interface{}, 4),
	}
}

func (d *recordingDelivery) PushStageUpdate(sessionID uuid.UUID, currentStage int) {
	d.stageUpdates <- currentStage
}

func (d *recordingDelivery) PushJSON(sessionID uuid.UUID, messageType string, fields map[string]interface{}) {
	payload := map[string]interface{}{"type": messageType}
	for k, v := range fields {
		payload[k] = v
	}
	d.payloads <- payload
}

func TestNotifyStageAdvancedDelivers(t *testing.T) {
	delivery := newRecordingDelivery()
	svc := NewNotificationService(delivery, nopLogger{})

	svc.NotifyStageAdvanced(uuid.New(), 4)

	select {
	case stage := <-delivery.stageUpdates:
		assert.Equal(t, 4, stage)
	case <-time.After(time.Second):
		t.Fatal("stage update was not delivered")
	}
}

func TestNotifyBRDReadyDelivers(t *testing.T) {
	delivery := newRecordingDelivery()
	svc := NewNotificationService(delivery, nopLogger{})

	sessionId := uuid.New()
	svc.NotifyBRDReady(sessionId)

	select {
	case payload := <-delivery.payloads:
		assert.Equal(t, "brd_ready", payload["type"])
		assert.Equal(t, sessionId.String(), payload["session_id"])
	case <-time.After(time.Second):
		t.Fatal("brd_ready was not delivered")
	}
}

func TestNotifyWithNilDeliveryIsNoop(t *testing.T) {
	svc := NewNotificationService(nil, nopLogger{})
	svc.NotifyStageAdvanced(uuid.New(), 1)
	svc.NotifyBRDReady(uuid.New())
}

type panickyDelivery struct{}

func (panickyDelivery) PushStageUpdate(sessionID uuid.UUID, currentStage int) { panic("boom") }
func (panickyDelivery) PushJSON(sessionID uuid.UUID, messageType string, fields map[string]interface{}) {
	panic("boom")
}

func TestNotifySurvivesDeliveryPanic(t *testing.T) {
	svc := NewNotificationService(panickyDelivery{}, nopLogger{})
	svc.NotifyStageAdvanced(uuid.New(), 1)
	svc.NotifyBRDReady(uuid.New())
	// Give the goroutines a beat; a leaked panic would fail the test run.
	time.Sleep(50 * time.Millisecond)
}
