// Package enrich generates optional one-line AI summaries for issues
// that just crossed the importance threshold. Enrichment is strictly
// best-effort decoration: it runs after reconciliation, touches only
// the ai_summary column, and its failures never affect a sync round.
package enrich

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/projectlens/lens/internal/types"
)

// Summaries use the cheap model: the output is a single sentence.
const defaultModel = "claude-3-5-haiku-20241022"

// SummaryStore is the slice of storage the summarizer writes to.
type SummaryStore interface {
	SetIssueSummary(ctx context.Context, workspaceID, issueID int64, summary string) error
}

// Config holds summarizer configuration.
type Config struct {
	// APIKey for the Anthropic API. Falls back to ANTHROPIC_API_KEY.
	APIKey string

	// Model to use. Default: claude-3-5-haiku.
	Model string

	// MaxIssuesPerRound caps how many issues get summarized after one
	// round, protecting the API budget on a noisy first sync.
	// Default: 5
	MaxIssuesPerRound int

	// Timeout per API call. Default: 30s
	Timeout time.Duration

	// Logger for enrichment activity. Default: stderr.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:             defaultModel,
		MaxIssuesPerRound: 5,
		Timeout:           30 * time.Second,
		Logger:            log.New(os.Stderr, "[enrich] ", log.LstdFlags),
	}
}

// Summarizer writes one-line summaries for newly important issues.
type Summarizer struct {
	client anthropic.Client
	store  SummaryStore
	cfg    *Config
}

// New creates a Summarizer. Returns an error when no API key is
// available; callers treat that as "enrichment disabled".
func New(store SummaryStore, cfg *Config) (*Summarizer, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxIssuesPerRound <= 0 {
		cfg.MaxIssuesPerRound = DefaultConfig().MaxIssuesPerRound
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = DefaultConfig().Logger
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	return &Summarizer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		store:  store,
		cfg:    cfg,
	}, nil
}

// Enrich summarizes up to MaxIssuesPerRound of the given issues and
// stores the results. Per-issue failures are logged and skipped.
func (s *Summarizer) Enrich(ctx context.Context, issues []types.Issue) {
	n := len(issues)
	if n > s.cfg.MaxIssuesPerRound {
		n = s.cfg.MaxIssuesPerRound
	}
	for i := 0; i < n; i++ {
		issue := &issues[i]
		summary, err := s.summarize(ctx, issue)
		if err != nil {
			s.cfg.Logger.Printf("failed to summarize %s: %v", issue.IssueKey, err)
			continue
		}
		if err := s.store.SetIssueSummary(ctx, issue.WorkspaceID, issue.ID, summary); err != nil {
			s.cfg.Logger.Printf("failed to store summary for %s: %v", issue.IssueKey, err)
		}
	}
}

func (s *Summarizer) summarize(ctx context.Context, issue *types.Issue) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: 128,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(s.buildPrompt(issue))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

func (s *Summarizer) buildPrompt(issue *types.Issue) string {
	var b strings.Builder
	b.WriteString("Summarize this issue tracker ticket in one short sentence. ")
	b.WriteString("Answer in the language the ticket is written in. ")
	b.WriteString("Output only the sentence, no preamble.\n\n")
	fmt.Fprintf(&b, "Key: %s\nSummary: %s\n", issue.IssueKey, issue.Summary)
	if issue.Description != "" {
		desc := issue.Description
		if len(desc) > 2000 {
			desc = desc[:2000]
		}
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}
	if issue.DueDate != "" {
		fmt.Fprintf(&b, "Due: %s\n", issue.DueDate)
	}
	return b.String()
}
