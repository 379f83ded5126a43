package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/stage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
)

const (
	maxPreferredCuisines = 5
	maxPastPurchases     = 10
)

// recipeCategories maps cuisines to the dish keywords that reveal them.
var recipeCategories = []struct {
	cuisine  string
	keywords []string
}{
	{"italian", []string{"pasta", "pizza", "risotto", "lasagna", "marinara"}},
	{"asian", []string{"stir-fry", "stir fry", "sushi", "noodles", "teriyaki"}},
	{"mexican", []string{"tacos", "taco", "enchiladas", "burritos", "quesadillas"}},
	{"mediterranean", []string{"salad", "grilled fish", "hummus", "falafel", "greek"}},
	{"american", []string{"burgers", "steak", "chicken", "barbecue"}},
	{"indian", []string{"curry", "biryani", "dal", "naan"}},
	{"quick_easy", []string{"sandwich", "wraps", "one-pot", "30-minute"}},
	{"healthy", []string{"smoothie", "bowl", "lean protein"}},
}

// FeedbackPublisher hands finished feedback to the in-process pipeline.
type FeedbackPublisher struct {
	publisher message.Publisher
	topic     string
}

var _ orchestrator.FeedbackSink = (*FeedbackPublisher)(nil)

func NewFeedbackPublisher(publisher message.Publisher, topic string) *FeedbackPublisher {
	return &FeedbackPublisher{publisher: publisher, topic: topic}
}

func (p *FeedbackPublisher) SubmitFeedback(ctx context.Context, sub orchestrator.FeedbackSubmission) error {
	payload, err := json.Marshal(dto.FeedbackSubmittedMessage{
		SessionId:   sub.SessionID,
		UserId:      sub.UserID,
		Rating:      sub.Feedback.Rating,
		Liked:       sub.Feedback.Liked,
		Disliked:    sub.Feedback.Disliked,
		Suggestions: sub.Feedback.Suggestions,
		CartItems:   sub.CartItems,
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topic, msg)
}

type IFeedbackConsumer interface {
	Consume(ctx context.Context) error
}

type feedbackConsumer struct {
	subscriber    message.Subscriber
	topic         string
	profiles      stage.ProfileRepository
	defaultBudget decimal.Decimal
	logger        logger.ILogger
	now           func() time.Time
	processed     chan<- string
}

type FeedbackConsumerOption func(*feedbackConsumer)

// WithProcessedNotify reports each handled session id on ch.
func WithProcessedNotify(ch chan<- string) FeedbackConsumerOption {
	return func(c *feedbackConsumer) { c.processed = ch }
}

func NewFeedbackConsumer(
	subscriber message.Subscriber,
	topic string,
	profiles stage.ProfileRepository,
	defaultBudget decimal.Decimal,
	log logger.ILogger,
	opts ...FeedbackConsumerOption,
) IFeedbackConsumer {
	c := &feedbackConsumer{
		subscriber:    subscriber,
		topic:         topic,
		profiles:      profiles,
		defaultBudget: defaultBudget,
		logger:        log,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume starts learning from feedback messages until ctx is cancelled.
func (c *feedbackConsumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *feedbackConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.FeedbackSubmittedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Error("FEEDBACK", "Failed to unmarshal feedback message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // malformed messages would never succeed
		return
	}

	if err := c.learn(ctx, payload); err != nil {
		c.logger.Error("FEEDBACK", "Failed to learn from feedback", map[string]interface{}{
			"session_id": payload.SessionId,
			"user_id":    payload.UserId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
	if c.processed != nil {
		c.processed <- payload.SessionId
	}
}

func (c *feedbackConsumer) learn(ctx context.Context, fb dto.FeedbackSubmittedMessage) error {
	profile, err := c.profiles.GetUserProfile(ctx, fb.UserId)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = stage.DefaultProfile(fb.UserId, c.defaultBudget, c.now())
	}

	profile.PreferredCuisines = LearnCuisines(profile.PreferredCuisines, fb.Liked, fb.Disliked)
	profile.PastPurchases = AppendPurchases(profile.PastPurchases, fb.CartItems)
	now := c.now()
	profile.UpdatedAt = &now

	if err := c.profiles.SaveUserProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	c.logger.Info("FEEDBACK", "Profile updated from feedback", map[string]interface{}{
		"session_id":         fb.SessionId,
		"user_id":            fb.UserId,
		"rating":             fb.Rating,
		"preferred_cuisines": profile.PreferredCuisines,
		"past_purchases":     len(profile.PastPurchases),
	})
	return nil
}

// LearnCuisines adds the cuisines of liked items, drops those of disliked
// items and keeps at most five.
func LearnCuisines(current, liked, disliked []string) []string {
	out := slices.Clone(current)
	for _, c := range cuisinesOf(liked) {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, c := range cuisinesOf(disliked) {
		out = slices.DeleteFunc(out, func(s string) bool { return s == c })
	}
	if len(out) > maxPreferredCuisines {
		out = out[:maxPreferredCuisines]
	}
	return out
}

// AppendPurchases keeps the ten most recent purchases.
func AppendPurchases(past, items []string) []string {
	out := slices.Clone(past)
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) > maxPastPurchases {
		out = out[len(out)-maxPastPurchases:]
	}
	return out
}

func cuisinesOf(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.ToLower(item)
		for _, cat := range recipeCategories {
			if slices.ContainsFunc(cat.keywords, func(k string) bool { return strings.Contains(item, k) }) {
				out = append(out, cat.cuisine)
			}
		}
	}
	return out
}
