package guess

import (
	"fmt"

	"csvguess/internal/metrics"
)

// GuessLines is the mapping-level entry point. config is the caller's whole
// configuration; its "parser" section, if any, holds settings that are already
// decided.
//
// It returns {"parser": {...}} on success, and an empty map when the parser
// type is set to something other than csv or when nothing can be inferred.
// Only a malformed config yields an error.
func (g *Guesser) GuessLines(config map[string]any, lines []string) (map[string]any, error) {
	parser := map[string]any{}
	if raw, ok := config["parser"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: parser must be a mapping, got %T", ErrInvalidConfig, raw)
		}
		parser = m
	}

	if t, ok := parser[keyType]; ok && t != nil {
		if s, _ := t.(string); s != "csv" {
			g.log.WithField("type", t).Debug("parser type is not csv; skipping")
			g.metrics.IncCounter(metrics.GuessTotal, 1, metrics.Labels{"status": "skipped"})
			return map[string]any{}, nil
		}
	}

	in, err := ConfigFromMap(parser)
	if err != nil {
		return nil, err
	}

	out, ok := g.Guess(in, lines)
	if !ok {
		return map[string]any{}, nil
	}
	return map[string]any{"parser": out.ToMap()}, nil
}
