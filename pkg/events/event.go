package events

import "time"

// Event is anything published on the event bus.
type Event interface {
	// EventType is the subject suffix, e.g. "TURN_COMPLETED".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

const (
	TypeTurnCompleted     = "TURN_COMPLETED"
	TypeCartUpdated       = "CART_UPDATED"
	TypeFeedbackSubmitted = "FEEDBACK_SUBMITTED"
)

// BaseEvent is the plain implementation used by every producer.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func TurnCompleted(sessionID, userID string, stepNumber int, category, step string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"user_id":     userID,
			"step_number": stepNumber,
			"category":    category,
			"step":        step,
		},
		OccurredAt: at,
	}
}

func CartUpdated(userID string, itemCount int, total string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeCartUpdated,
		Data: map[string]interface{}{
			"user_id":    userID,
			"item_count": itemCount,
			"total":      total,
		},
		OccurredAt: at,
	}
}

// FeedbackSubmitted carries the finished feedback of one session.
func FeedbackSubmitted(sessionID, userID string, rating int, liked, disliked []string, suggestions string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeFeedbackSubmitted,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"user_id":     userID,
			"rating":      rating,
			"liked":       liked,
			"disliked":    disliked,
			"suggestions": suggestions,
		},
		OccurredAt: at,
	}
}
