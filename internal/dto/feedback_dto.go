package dto

// FeedbackSubmittedMessage is the watermill payload of a finished feedback flow.
type FeedbackSubmittedMessage struct {
	SessionId   string   `json:"session_id"`
	UserId      string   `json:"user_id"`
	Rating      int      `json:"rating"`
	Liked       []string `json:"liked,omitempty"`
	Disliked    []string `json:"disliked,omitempty"`
	Suggestions string   `json:"suggestions,omitempty"`
	CartItems   []string `json:"cart_items,omitempty"`
}
