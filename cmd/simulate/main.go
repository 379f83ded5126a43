package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/internal/service"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const feedbackTopic = "FEEDBACK_SUBMITTED"

// defaultScript walks a full meal planning conversation with feedback.
var defaultScript = []string{
	"Plan 3 vegetarian meals under $40",
	"continue",
	"continue",
	"yes",
	"continue",
	"continue",
	"4",
	"Veggie Curry",
	"none",
	"more quick recipes",
	"How much does milk cost?",
	"Where can I find olive oil?",
	"What can I use instead of butter?",
	"Any deals this week?",
	"add 2 bananas to my cart",
	"show my cart",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var userID string
	var interactive bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a shopping conversation against the seeded in-memory catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewNopLogger()
			if verbose {
				log = logger.NewZapLogger("logs/simulate.log", false)
			}
			sim, err := newSimulator(cmd.Context(), userID, log)
			if err != nil {
				return err
			}
			defer sim.close()

			if interactive {
				return sim.interactive(cmd.Context())
			}
			for _, text := range defaultScript {
				if err := sim.say(cmd.Context(), text); err != nil {
					return err
				}
			}
			sim.printProfile(cmd.Context())
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "demo-user", "shopper id")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read messages from stdin instead of the script")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to console and logs/simulate.log")
	return cmd
}

type simulator struct {
	userID    string
	sessionID string
	orch      *orchestrator.Orchestrator
	catalog   *memory.Catalog
	pubSub    *gochannel.GoChannel
	cancel    context.CancelFunc
	processed chan string
}

func newSimulator(ctx context.Context, userID string, log logger.ILogger) (*simulator, error) {
	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), seed.Promotions(time.Now()))
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	budget := decimal.NewFromInt(50)

	registry := stage.NewRegistry(stage.Deps{
		Profiles:      catalog,
		Catalog:       catalog,
		Carts:         catalog,
		Logger:        log,
		DefaultBudget: budget,
	})
	orch, err := orchestrator.New(classifier.NewRuleBased(), memory.NewSessionRepository(time.Hour), registry, log,
		orchestrator.WithFeedbackSink(service.NewFeedbackPublisher(pubSub, feedbackTopic)),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	processed := make(chan string, 1)
	consumer := service.NewFeedbackConsumer(pubSub, feedbackTopic, catalog, budget, log, service.WithProcessedNotify(processed))
	if err := consumer.Consume(ctx); err != nil {
		cancel()
		return nil, err
	}

	return &simulator{
		userID:    userID,
		orch:      orch,
		catalog:   catalog,
		pubSub:    pubSub,
		cancel:    cancel,
		processed: processed,
	}, nil
}

func (s *simulator) close() {
	s.cancel()
	s.pubSub.Close()
}

func (s *simulator) say(ctx context.Context, text string) error {
	color.Cyan("\nYOU: %s", text)
	resp, err := s.orch.AdvanceTurn(ctx, orchestrator.Message{SessionID: s.sessionID, UserID: s.userID, Text: text})
	if err != nil {
		color.Red("ERROR: %v", err)
		return nil
	}
	s.sessionID = resp.SessionID

	color.Green("ASSISTANT: %s", resp.Message)
	meta := fmt.Sprintf("  [step %d · %s", resp.StepNumber, resp.Step)
	if resp.Category != "" {
		meta += " · " + string(resp.Category)
	}
	color.HiBlack(meta + "]")

	if resp.Step == string(store.StepFeedbackComplete) {
		select {
		case <-s.processed:
			color.Yellow("  (feedback learned into your profile)")
		case <-time.After(time.Second):
		}
	}
	return nil
}

func (s *simulator) interactive(ctx context.Context) error {
	color.Yellow("Type a message, empty line to continue a plan, Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			s.printProfile(ctx)
			return scanner.Err()
		}
		if err := s.say(ctx, strings.TrimSpace(scanner.Text())); err != nil {
			return err
		}
	}
}

func (s *simulator) printProfile(ctx context.Context) {
	p, err := s.catalog.GetUserProfile(ctx, s.userID)
	if err != nil || p == nil {
		return
	}
	color.Magenta("\nPROFILE %s: diet=%s budget=$%s meals=%d cuisines=%v purchases=%v",
		p.UserId, p.Diet, p.BudgetLimit.StringFixed(2), p.MealGoal, p.PreferredCuisines, p.PastPurchases)
}
