package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Token is one recognized word with its confidence as reported by tesseract
// (0..100, negative for layout sentinels such as whitespace rows).
type Token struct {
	Text  string
	Conf  float64
	Block int
	Par   int
	Line  int
}

// RecognizeTokens runs tesseract in TSV mode on one image and returns the
// recognized tokens. Tokens with empty text are dropped; negative-confidence
// sentinels are kept so callers can decide how to treat them.
func (e *Engine) RecognizeTokens(ctx context.Context, imgPath string) ([]Token, []string, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.Lang, "tsv"}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return parseTSV(string(out)), nil, nil
}

// parseTSV decodes tesseract TSV output. Columns:
// level page block par line word left top width height conf text
func parseTSV(tsv string) []Token {
	var toks []Token
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		text := strings.TrimSpace(cols[len(cols)-1])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[len(cols)-2], 64)
		if err != nil {
			continue
		}
		block, _ := strconv.Atoi(cols[2])
		par, _ := strconv.Atoi(cols[3])
		line, _ := strconv.Atoi(cols[4])
		toks = append(toks, Token{Text: text, Conf: conf, Block: block, Par: par, Line: line})
	}
	return toks
}

// JoinTokens assembles tokens with non-negative confidence into text,
// starting a new line whenever the block/paragraph/line triple changes.
func JoinTokens(toks []Token) string {
	var b strings.Builder
	lastBlock, lastPar, lastLine := -1, -1, -1
	for _, t := range toks {
		if t.Conf < 0 {
			continue
		}
		if b.Len() > 0 {
			if t.Block != lastBlock || t.Par != lastPar || t.Line != lastLine {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(t.Text)
		lastBlock, lastPar, lastLine = t.Block, t.Par, t.Line
	}
	return b.String()
}

// MeanConfidence averages per-token confidences in 0..1, ignoring negative
// sentinels. Returns DefaultConfidence when no valid confidences exist.
func MeanConfidence(toks []Token) float64 {
	var sum float64
	var n int
	for _, t := range toks {
		if t.Conf < 0 {
			continue
		}
		sum += t.Conf
		n++
	}
	if n == 0 {
		return DefaultConfidence
	}
	return sum / float64(n) / 100.0
}
