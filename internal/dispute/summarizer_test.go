package dispute

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"milestone-service/internal/plan"
)

type fakeGenerator struct {
	got   GenRequest
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenRequest) (string, error) {
	f.calls++
	f.got = req
	return f.text, f.err
}

func testRequest() Request {
	return Request{
		Title:      "Landing page",
		Criteria:   "Responsive on mobile, loads under 2s",
		Feedback:   "Mobile layout is broken",
		ProofNotes: "deployed to staging",
	}
}

func TestSummarizeFreeTierIsSkipped(t *testing.T) {
	gen := &fakeGenerator{text: "should never be returned"}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	text, err := gate.Summarize(context.Background(), plan.TierFree, testRequest())
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, gen.calls, "free tier must not reach the generator")
}

func TestSummarizeStarterShaping(t *testing.T) {
	gen := &fakeGenerator{text: "- a\n- b\n- c"}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	text, err := gate.Summarize(context.Background(), plan.TierStarter, testRequest())
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b\n- c", text)

	assert.Equal(t, starterSystemPrompt, gen.got.System)
	assert.Equal(t, 0.2, gen.got.Temperature)
	assert.Equal(t, int64(400), gen.got.MaxTokens)
	assert.Contains(t, gen.got.Prompt, "Landing page")
	assert.Contains(t, gen.got.Prompt, "Mobile layout is broken")
	assert.Contains(t, gen.got.Prompt, "deployed to staging")
}

func TestSummarizeAgencyShaping(t *testing.T) {
	gen := &fakeGenerator{text: "**Summary:** ..."}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	_, err = gate.Summarize(context.Background(), plan.TierAgency, testRequest())
	require.NoError(t, err)

	assert.Equal(t, agencySystemPrompt, gen.got.System)
	assert.Equal(t, 0.4, gen.got.Temperature)
	assert.Equal(t, int64(1024), gen.got.MaxTokens)
}

func TestSummarizePromptOmitsEmptyProofNotes(t *testing.T) {
	gen := &fakeGenerator{text: "summary"}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	req := testRequest()
	req.ProofNotes = ""

	_, err = gate.Summarize(context.Background(), plan.TierStarter, req)
	require.NoError(t, err)
	assert.NotContains(t, gen.got.Prompt, "proof notes")
	assert.False(t, strings.Contains(gen.got.Prompt, "Vendor's"))
}

func TestSummarizeGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("api unavailable")}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	_, err = gate.Summarize(context.Background(), plan.TierAgency, testRequest())
	assert.Error(t, err)
}

func TestSummarizeEmptyGenerationIsError(t *testing.T) {
	gen := &fakeGenerator{text: ""}
	gate, err := NewGate(gen, zap.NewNop())
	require.NoError(t, err)

	_, err = gate.Summarize(context.Background(), plan.TierStarter, testRequest())
	assert.Error(t, err)
}
