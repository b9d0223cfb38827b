package model

import "time"

// DeadLetterMessage is a document job that exhausted its deliveries.
type DeadLetterMessage struct {
	ID         string    `db:"id"`
	QueueName  string    `db:"queue_name"`
	MessageID  string    `db:"message_id"`
	Payload    string    `db:"payload"`    // Should be a JSON string
	Attributes *string   `db:"attributes"` // Can be null, should be a JSON string
	Error      string    `db:"error"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
