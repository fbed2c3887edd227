package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{
			name:         "defaults_to_false",
			defaultValue: false,
			arguments:    []string{},
			expected:     false,
			expectError:  false,
		},
		{
			name:         "sets_true_without_value",
			defaultValue: false,
			arguments:    []string{"--feature"},
			expected:     true,
			expectError:  false,
		},
		{
			name:         "sets_false_with_equals",
			defaultValue: true,
			arguments:    []string{"--feature=false"},
			expected:     false,
			expectError:  false,
		},
		{
			name:         "sets_false_with_no_literal",
			defaultValue: true,
			arguments:    []string{"--feature", "no"},
			expected:     false,
			expectError:  false,
		},
		{
			name:         "sets_true_with_on_literal",
			defaultValue: false,
			arguments:    []string{"--feature", "on"},
			expected:     true,
			expectError:  false,
		},
		{
			name:         "ignores_non_boolean_trailing_value",
			defaultValue: false,
			arguments:    []string{"--feature", "maybe"},
			expected:     true,
			expectError:  false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			flagSet := command.Flags()
			flagValue := !testCase.defaultValue
			registerBooleanFlag(flagSet, &flagValue, "feature", testCase.defaultValue, "toggle feature behaviour")
			normalizedArguments := normalizeBooleanFlagArguments(command, testCase.arguments)
			parseErr := command.ParseFlags(normalizedArguments)
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if len(testCase.arguments) == 0 && flagValue != testCase.defaultValue {
				t.Fatalf("expected default %t, got %t", testCase.defaultValue, flagValue)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestResolveBooleanSettingPrecedence(t *testing.T) {
	configuredFalse := false
	testCases := []struct {
		name       string
		arguments  []string
		configured *bool
		fallback   bool
		expected   bool
	}{
		{name: "fallback_when_unset", arguments: nil, configured: nil, fallback: true, expected: true},
		{name: "configuration_over_fallback", arguments: nil, configured: &configuredFalse, fallback: true, expected: false},
		{name: "flag_over_configuration", arguments: []string{"--clipboard"}, configured: &configuredFalse, fallback: false, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{Use: "resolve-test"}
			var flagValue bool
			registerBooleanFlag(command.Flags(), &flagValue, "clipboard", false, "copy output")
			if parseErr := command.ParseFlags(testCase.arguments); parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			actual := resolveBooleanSetting(command, "clipboard", flagValue, testCase.configured, testCase.fallback)
			if actual != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, actual)
			}
		})
	}
}

func TestNormalizeBooleanFlagArgumentsKeepsPathLikeValues(t *testing.T) {
	command := &cobra.Command{Use: "toggle"}
	var clearFirst bool
	registerBooleanFlag(command.Flags(), &clearFirst, "clear", false, "clear selection")

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{name: "word_literal_joined", arguments: []string{"--clear", "yes", "src"}, expected: []string{"--clear=yes", "src"}},
		{name: "single_letter_path_kept", arguments: []string{"--clear", "n"}, expected: []string{"--clear", "n"}},
		{name: "numeric_path_kept", arguments: []string{"--clear", "1"}, expected: []string{"--clear", "1"}},
		{name: "terminator_stops_rewriting", arguments: []string{"--", "--clear", "no"}, expected: []string{"--", "--clear", "no"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := normalizeBooleanFlagArguments(command, testCase.arguments)
			if strings.Join(actual, " ") != strings.Join(testCase.expected, " ") {
				t.Fatalf("expected %v, got %v", testCase.expected, actual)
			}
		})
	}
}
