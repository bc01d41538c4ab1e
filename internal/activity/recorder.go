// Package activity is the fire-and-forget audit trail: who did what to which
// record. Recording failures are logged, never surfaced — an audit write must
// not fail a committed business transaction.
package activity

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-pos/internal/events"
)

type Recorder struct {
	pool     *pgxpool.Pool
	producer *events.Producer // optional
}

// NewRecorder builds a Recorder. producer may be nil when Kafka is not
// configured; events are then kept in the database only.
func NewRecorder(pool *pgxpool.Pool, producer *events.Producer) *Recorder {
	return &Recorder{pool: pool, producer: producer}
}

type logEntry struct {
	UserID   int    `json:"user_id"`
	Action   string `json:"action"`
	Module   string `json:"module"`
	RecordID int    `json:"record_id,omitempty"`
}

// Record appends one activity-log row and publishes the matching event.
// It uses its own short deadline so a slow audit store cannot hold up the
// calling request.
func (r *Recorder) Record(userID int, action, module string, recordID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_logs (user_id, action, module, record_id)
		VALUES ($1, $2, $3, $4)
	`, userID, action, module, recordID)
	if err != nil {
		log.Printf("activity: record %s %s/%d by user %d: %v", action, module, recordID, userID, err)
	}

	if r.producer != nil {
		eventType := eventTypeFor(action, module)
		if eventType != "" {
			r.producer.Publish(eventType, module, logEntry{
				UserID:   userID,
				Action:   action,
				Module:   module,
				RecordID: recordID,
			})
		}
	}
}

func eventTypeFor(action, module string) string {
	switch module {
	case "sales":
		switch action {
		case "created":
			return events.EventSaleCreated
		case "paid":
			return events.EventSalePaid
		case "deleted":
			return events.EventSaleDeleted
		}
	case "stock":
		switch action {
		case "received":
			return events.EventStockReceived
		case "deducted":
			return events.EventStockDeducted
		}
	}
	return ""
}
