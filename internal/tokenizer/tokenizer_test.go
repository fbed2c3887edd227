package tokenizer

import "testing"

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytes(t *testing.T) {
	testCases := []struct {
		name            string
		data            []byte
		expectedCounted bool
		expectedTokens  int
	}{
		{name: "text", data: []byte("hello"), expectedCounted: true, expectedTokens: 5},
		{name: "empty", data: nil, expectedCounted: true, expectedTokens: 0},
		{name: "binary", data: []byte{0x00, 0x01, 0x02}, expectedCounted: false},
		{name: "invalid utf8", data: []byte{0xff, 0xfe, 'a'}, expectedCounted: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := CountBytes(testCounter{}, testCase.data)
			if err != nil {
				t.Fatalf("CountBytes error: %v", err)
			}
			if result.Counted != testCase.expectedCounted {
				t.Fatalf("expected counted=%v, got %v", testCase.expectedCounted, result.Counted)
			}
			if result.Tokens != testCase.expectedTokens {
				t.Fatalf("expected %d tokens, got %d", testCase.expectedTokens, result.Tokens)
			}
		})
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountStrings(t *testing.T) {
	total, err := CountStrings(testCounter{}, []string{"abc", "", "de"})
	if err != nil {
		t.Fatalf("CountStrings error: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 tokens, got %d", total)
	}
}

func TestNewCounterDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken encodings are fetched on first use")
	}
	counter, model, err := NewCounter(Config{Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if counter == nil {
		t.Fatalf("expected non-nil counter")
	}
	if model != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %q", model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}

func TestNewCounterFallsBackForUnknownModel(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken encodings are fetched on first use")
	}
	_, model, err := NewCounter(Config{Model: "claude-3-5-sonnet"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if model != defaultEncodingName {
		t.Fatalf("expected fallback encoding %q, got %q", defaultEncodingName, model)
	}
}

func TestResolvesByModelName(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"text-embedding-3-small": true,
		"claude-3-5-sonnet":      false,
		"llama-3":                false,
	}
	for model, expected := range testCases {
		if actual := resolvesByModelName(model); actual != expected {
			t.Fatalf("resolvesByModelName(%q) = %v, expected %v", model, actual, expected)
		}
	}
}

func TestEncodingCounterWithoutEncoding(t *testing.T) {
	if _, err := (encodingCounter{label: "empty"}).CountString("text"); err == nil {
		t.Fatalf("expected error for missing encoding")
	}
}
