package budget

// TokenEstimator converts text into an estimated token count. The budget
// guard and task executor never see how the estimate is produced, so the
// default heuristic can be replaced by a real tokenizer at wiring time.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

const defaultCharsPerToken = 4

// CharEstimator approximates token counts as character count divided by a
// fixed ratio (default 4). This is an approximation standing in for a real
// tokenizer, not exact tokenization; budget constants are tuned against it.
type CharEstimator struct {
	// CharsPerToken is the divisor; values <= 0 fall back to the default.
	CharsPerToken int
}

// NewCharEstimator returns a CharEstimator with the default 4:1 ratio.
func NewCharEstimator() CharEstimator {
	return CharEstimator{CharsPerToken: defaultCharsPerToken}
}

// EstimateTokens implements TokenEstimator. Non-empty text estimates to at
// least one token so tiny requests cannot bypass the budget entirely.
func (e CharEstimator) EstimateTokens(text string) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = defaultCharsPerToken
	}
	tokens := len(text) / ratio
	if len(text) > 0 && tokens == 0 {
		tokens = 1
	}
	return tokens
}
