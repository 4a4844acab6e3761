package inbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/messaging"
)

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m fakeMessage) Body() []byte                { return m.body }
func (m fakeMessage) Headers() []messaging.Header { return m.headers }
func (m fakeMessage) Subject() string             { return "otp_usage" }
func (m fakeMessage) Timestamp() time.Time        { return time.Time{} }
func (m fakeMessage) Ack(context.Context) error   { return nil }

func TestMQHandler_OTPUsage(t *testing.T) {
	body := `{"id":"e1","user_id":"u-1","endpoint":"/api/otp/verify","status":"failed","email":"a@b.com","latency_ms":42,"occurred_at":"2026-03-02T09:00:00Z"}`

	tests := []struct {
		name      string
		body      string
		recordErr error
		wantErr   bool
		wantCalls int
	}{
		{name: "recorded", body: body, wantCalls: 1},
		{name: "malformed body is dropped", body: `{"id":`, wantCalls: 0},
		{name: "invalid event is dropped", body: body, recordErr: goerror.NewInvalidInput(nil, "id", "id must be a uuid"), wantCalls: 1},
		{name: "store failure is returned", body: body, recordErr: goerror.NewServer(errors.New("db down")), wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := &fakeUC{recordErr: tt.recordErr}
			h := &MQHandler{uc: f, uuid: fixedID("cid"), ins: instrument.NewNoop()}
			msg := fakeMessage{body: []byte(tt.body), headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte("c-1")}}}

			// Act
			err := h.OTPUsage(context.Background(), msg)

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("OTPUsage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(f.recorded) != tt.wantCalls {
				t.Fatalf("RecordUsage calls = %d, want %d", len(f.recorded), tt.wantCalls)
			}
			if tt.wantCalls == 1 {
				got := f.recorded[0]
				if got.ID != "e1" || got.Status != "failed" || got.LatencyMS != 42 || !got.OccurredAt.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)) {
					t.Fatalf("input = %+v", got)
				}
			}
		})
	}
}
