package tokenizer

import (
	"errors"

	"github.com/temirov/aiprompt/internal/utils"
)

var errNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Binary or non-UTF-8 data is reported
// as not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountStrings sums the token counts of every value. Values that cannot be
// counted contribute nothing.
func CountStrings(counter Counter, values []string) (int, error) {
	total := 0
	for _, value := range values {
		result, err := CountBytes(counter, []byte(value))
		if err != nil {
			return 0, err
		}
		total += result.Tokens
	}
	return total, nil
}
