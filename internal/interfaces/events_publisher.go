package interfaces

// EventPublisher emits domain events after successful treasury operations.
// Publishing is best-effort; the ledger never rolls back on publish errors.
type EventPublisher interface {
	Publish(topic string, event any) error
}
