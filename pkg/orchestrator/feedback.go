package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"smart-grocery-be/pkg/store"
)

const (
	ratingPrompt      = "How would you rate this experience from 1 to 5? (say \"skip\" to finish)"
	likedPrompt       = "What did you like?"
	dislikedPrompt    = "Anything you didn't like?"
	suggestionsPrompt = "Any suggestions for next time?"
	feedbackThanks    = "Thank you for your feedback!"
)

var (
	ratingPattern = regexp.MustCompile(`^\s*([1-5])(?:\s*(?:/\s*5|stars?|out of 5))?\s*[.!]?\s*$`)
	listSplit     = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)
	noneAnswers   = map[string]bool{"none": true, "nothing": true, "no": true, "n/a": true, "nope": true, "-": true}
)

// onFeedback advances the rating, liked, disliked and suggestions questions.
func (o *Orchestrator) onFeedback(t *turn) *Response {
	s := t.session
	text := strings.TrimSpace(t.msg.Text)

	if normalize(text) == "skip" {
		return o.finishFeedback(t)
	}

	switch s.CurrentStep {
	case store.StepFeedbackRating:
		rating, ok := parseRating(t.msg)
		if !ok {
			return &Response{RequiresInput: true, Message: "Please rate your experience with a number from 1 to 5 (or say \"skip\")."}
		}
		s.Feedback.Rating = rating
		s.CurrentStep = store.StepFeedbackLiked
		return &Response{RequiresInput: true, Message: likedPrompt}

	case store.StepFeedbackLiked:
		s.Feedback.Liked = splitList(text)
		s.CurrentStep = store.StepFeedbackDisliked
		return &Response{RequiresInput: true, Message: dislikedPrompt}

	case store.StepFeedbackDisliked:
		s.Feedback.Disliked = splitList(text)
		s.CurrentStep = store.StepFeedbackSuggestions
		return &Response{RequiresInput: true, Message: suggestionsPrompt}

	default:
		if !noneAnswers[normalize(text)] {
			s.Feedback.Suggestions = text
		}
		return o.finishFeedback(t)
	}
}

// finishFeedback closes the sub-machine. Only feedback with a rating is
// submitted.
func (o *Orchestrator) finishFeedback(t *turn) *Response {
	s := t.session
	s.CurrentStep = store.StepFeedbackComplete
	if s.Feedback.Rating > 0 {
		s.Feedback.Submitted = true
		t.feedbackSubmitted = true
		o.logger.Info("FEEDBACK", "Feedback collected", map[string]interface{}{
			"session_id": s.ID,
			"rating":     s.Feedback.Rating,
		})
	}
	return &Response{Message: feedbackThanks}
}

func parseRating(msg Message) (int, bool) {
	if msg.Rating != nil {
		return *msg.Rating, *msg.Rating >= 1 && *msg.Rating <= 5
	}
	m := ratingPattern.FindStringSubmatch(strings.ToLower(msg.Text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

func splitList(text string) []string {
	if noneAnswers[normalize(text)] {
		return nil
	}
	var out []string
	for _, part := range listSplit.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
