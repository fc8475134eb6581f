package services

// EventPublisher receives change notifications after successful commits.
// Publishing never influences the outcome of the operation.
type EventPublisher interface {
	Publish(room string, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, interface{}) {}
