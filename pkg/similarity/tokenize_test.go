package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			text:     "Rock-Climbing, obviously!",
			expected: []string{"rock", "climb", "obviously"},
		},
		{
			name:     "drops stopwords",
			text:     "the cat and the dog",
			expected: []string{"cat", "dog"},
		},
		{
			name:     "strips ing suffix only above minimum length",
			text:     "hiking sing",
			expected: []string{"hik", "sing"},
		},
		{
			name:     "strips ed suffix only above minimum length",
			text:     "painted bed",
			expected: []string{"paint", "bed"},
		},
		{
			name:     "strips plural s only above minimum length",
			text:     "sports gas",
			expected: []string{"sport", "gas"},
		},
		{
			name:     "applies at most one suffix rule",
			text:     "endings",
			expected: []string{"ending"},
		},
		{
			name:     "keeps digits",
			text:     "web3 2024",
			expected: []string{"web3", "2024"},
		},
		{
			name:     "empty input",
			text:     "",
			expected: []string{},
		},
		{
			name:     "only punctuation and stopwords",
			text:     "-- the, of; and!",
			expected: []string{},
		},
		{
			name:     "preserves input order",
			text:     "zebra apple mango",
			expected: []string{"zebra", "apple", "mango"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.text))
		})
	}
}

func TestTokenize_IdempotentOnStemmedStream(t *testing.T) {
	// A second pass over an already-tokenized stream must not change tokens
	// whose stems no longer match a suffix rule.
	first := Tokenize("hiking swimming painted mountains")
	second := Tokenize(strings.Join(first, " "))
	assert.Equal(t, first, second)
}

func TestTokenizeAll_ConcatenatesPerTextStreams(t *testing.T) {
	tokens := TokenizeAll([]string{"Loves hiking", "mountain trails"})
	assert.Equal(t, []string{"love", "hik", "mountain", "trail"}, tokens)

	assert.Nil(t, TokenizeAll(nil))
	assert.Nil(t, TokenizeAll([]string{}))
}
