// Package dispute produces AI-generated summaries of rejected milestones.
// Summarization is a best-effort enrichment: a failed or skipped summary
// never affects the transition that triggered it.
package dispute

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"milestone-service/internal/plan"
	"milestone-service/pkg/metrics"
)

// Request carries the dispute context handed to the text generator.
type Request struct {
	Title      string
	Criteria   string
	Feedback   string
	ProofNotes string
}

// GenRequest is the shaped call to the text-generation collaborator.
type GenRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Generator is the text-generation collaborator. Treated as fallible and
// slow; never required for correctness.
type Generator interface {
	Generate(ctx context.Context, req GenRequest) (string, error)
}

// Gate decides how (and whether) a rejection gets summarized based on the
// owning party's plan tier.
type Gate struct {
	gen    Generator
	logger *zap.Logger
	tmpl   *template.Template
}

func NewGate(gen Generator, logger *zap.Logger) (*Gate, error) {
	tmpl, err := template.New("dispute").Parse(disputePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dispute prompt template: %w", err)
	}

	return &Gate{
		gen:    gen,
		logger: logger,
		tmpl:   tmpl,
	}, nil
}

// Summarize returns the generated summary for a paid tier, or ("", nil) for
// free. An error means enrichment failed; callers log it and move on.
func (g *Gate) Summarize(ctx context.Context, tier plan.Tier, req Request) (string, error) {
	if tier == plan.TierFree {
		return "", nil
	}

	prompt, err := g.renderPrompt(req)
	if err != nil {
		return "", fmt.Errorf("failed to render dispute prompt: %w", err)
	}

	genReq := shapeRequest(tier)
	genReq.Prompt = prompt

	start := time.Now()
	text, err := g.gen.Generate(ctx, genReq)
	if err != nil {
		metrics.RecordSummaryCall(string(tier), "error", time.Since(start))
		return "", err
	}
	metrics.RecordSummaryCall(string(tier), "ok", time.Since(start))

	if text == "" {
		return "", fmt.Errorf("text generator returned empty summary")
	}

	g.logger.Debug("Dispute summary generated",
		zap.String("tier", string(tier)),
		zap.Int("summary_len", len(text)),
	)

	return text, nil
}

// shapeRequest sets the tier-dependent knobs: starter gets a short,
// low-randomness digest; agency gets a longer structured briefing.
func shapeRequest(tier plan.Tier) GenRequest {
	if tier == plan.TierAgency {
		return GenRequest{
			System:      agencySystemPrompt,
			Temperature: 0.4,
			MaxTokens:   1024,
		}
	}
	return GenRequest{
		System:      starterSystemPrompt,
		Temperature: 0.2,
		MaxTokens:   400,
	}
}

func (g *Gate) renderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const starterSystemPrompt = `You are a neutral mediator summarizing a contract milestone dispute. Respond with exactly 3 concise bullet points: what was delivered, why the client rejected it, and what the vendor should change. No preamble.`

const agencySystemPrompt = `You are a neutral mediator preparing a dispute briefing for a contract milestone. Respond with these sections:

**Summary:** [2-3 sentences on the deliverable and the rejection]

**Risks:** [bullet points on delivery, relationship, and payment risks]

**Next actions:** [concrete ordered steps for both parties to resolve the dispute]`

const disputePromptTemplate = `A contract milestone has been rejected by the client.

**Milestone:** {{.Title}}

**Acceptance criteria:**
{{.Criteria}}

**Client's rejection feedback:**
{{.Feedback}}

{{if .ProofNotes}}**Vendor's proof notes:**
{{.ProofNotes}}
{{end}}`
