package metrics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feltlabs/holdemd/internal/llm"
)

// InstrumentGateway wraps a gateway so every completion lands in the
// latency histogram. A nil gateway stays nil so callers can pass the
// result straight through.
func InstrumentGateway(gw llm.Gateway, m *Metrics) llm.Gateway {
	if gw == nil {
		return nil
	}
	return &instrumentedGateway{next: gw, metrics: m}
}

type instrumentedGateway struct {
	next    llm.Gateway
	metrics *Metrics
}

func (g *instrumentedGateway) CompleteStructured(ctx context.Context, model, system, prompt string, schema json.RawMessage) (json.RawMessage, error) {
	start := time.Now()
	raw, err := g.next.CompleteStructured(ctx, model, system, prompt, schema)
	g.observe(model, "structured", start, err)
	return raw, err
}

func (g *instrumentedGateway) CompleteText(ctx context.Context, model, system, prompt string) (string, error) {
	start := time.Now()
	content, err := g.next.CompleteText(ctx, model, system, prompt)
	g.observe(model, "text", start, err)
	return content, err
}

func (g *instrumentedGateway) observe(model, mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.metrics.LLMRequestSeconds.WithLabelValues(model, mode, outcome).Observe(time.Since(start).Seconds())
}
