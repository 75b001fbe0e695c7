package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestPipelineEventRoutingKey(t *testing.T) {
	tests := []struct {
		state PipelineState
		want  string
	}{
		{StateReceived, "analysis.received"},
		{StateImprovementsGenerated, "analysis.improvements_generated"},
		{StateFailed, "analysis.failed"},
	}
	for _, tt := range tests {
		if got := (PipelineEvent{State: tt.state}).RoutingKey(); got != tt.want {
			t.Errorf("RoutingKey(%s) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestPipelineEventJSON(t *testing.T) {
	event := PipelineEvent{
		RequestID: "req-1",
		State:     StateAnalyzed,
		Message:   "82",
		Timestamp: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"request_id":"req-1","state":"analyzed","message":"82","timestamp":"2024-03-05T09:00:00Z"}`
	if string(body) != want {
		t.Errorf("json = %s, want %s", body, want)
	}
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	p.Publish(context.Background(), PipelineEvent{State: StateDone})
	if err := p.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}
