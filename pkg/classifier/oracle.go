package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/llm"

	"github.com/shopspring/decimal"
)

// OracleAnswer is the structured answer of an external classification service.
type OracleAnswer struct {
	Category   string           `json:"category"`
	CartAction string           `json:"cart_action"`
	Confidence float64          `json:"confidence"`
	Budget     *decimal.Decimal `json:"budget"`
	Product    string           `json:"product"`
	Diet       string           `json:"dietary_preference"`
	MealCount  int              `json:"meal_count"`
	Reasoning  string           `json:"reasoning"`
}

// Oracle classifies text remotely. Implementations must honour ctx.
type Oracle interface {
	Classify(ctx context.Context, text string) (OracleAnswer, error)
}

// OracleBacked adapts an Oracle to the Classifier contract. Answers whose
// category is outside the closed enumeration are rejected.
type OracleBacked struct {
	oracle Oracle
}

func NewOracleBacked(oracle Oracle) *OracleBacked {
	return &OracleBacked{oracle: oracle}
}

func (c *OracleBacked) Classify(ctx context.Context, text string) (Result, error) {
	ans, err := c.oracle.Classify(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("oracle classify: %w", err)
	}

	category, ok := intent.ParseCategory(ans.Category)
	if !ok {
		return Result{}, fmt.Errorf("%w: category %q", ErrOracleRejected, ans.Category)
	}

	r := Result{
		Category:         category,
		Confidence:       clampConfidence(ans.Confidence),
		ExtractedProduct: strings.ToLower(strings.TrimSpace(ans.Product)),
		ExtractedDiet:    strings.ToLower(strings.TrimSpace(ans.Diet)),
		MealCount:        ans.MealCount,
		Method:           MethodOracle,
		Reasoning:        ans.Reasoning,
	}
	if ans.Budget != nil && !ans.Budget.IsNegative() {
		b := *ans.Budget
		r.ExtractedBudget = &b
	}
	if category == intent.CartOperation {
		r.CartAction = intent.ParseCartAction(ans.CartAction)
	}

	// Slots the oracle left empty come from the deterministic extractors.
	ExtractSlots(text, &r)
	r.Complexity = complexityFor(r.Key())
	return r, nil
}

const oraclePrompt = `You classify grocery shopping requests.
Answer with ONE JSON object and nothing else:
{"category": "<one of: %s>",
 "cart_action": "<add|delete|view|clear, only for cartOperation>",
 "confidence": <0.0-1.0>,
 "budget": <number or null>,
 "product": "<product or recipe name or empty>",
 "dietary_preference": "<diet or empty>",
 "meal_count": <integer or 0>,
 "reasoning": "<one short sentence>"}

Request: %q`

// LLMOracle asks a language model for the structured answer.
type LLMOracle struct {
	provider llm.LLMProvider
}

func NewLLMOracle(provider llm.LLMProvider) *LLMOracle {
	return &LLMOracle{provider: provider}
}

func (o *LLMOracle) Classify(ctx context.Context, text string) (OracleAnswer, error) {
	names := make([]string, len(intent.Categories))
	for i, c := range intent.Categories {
		names[i] = string(c)
	}
	prompt := fmt.Sprintf(oraclePrompt, strings.Join(names, ", "), text)

	raw, err := o.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return OracleAnswer{}, err
	}
	return parseOracleAnswer(raw)
}

func parseOracleAnswer(raw string) (OracleAnswer, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return OracleAnswer{}, fmt.Errorf("%w: no JSON object in response", ErrOracleRejected)
	}

	var ans OracleAnswer
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &ans); err != nil {
		return OracleAnswer{}, fmt.Errorf("%w: %v", ErrOracleRejected, err)
	}
	return ans, nil
}
