package tags

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderForJoin_CanonicalFirstStable(t *testing.T) {
	a := Tag{ID: uuid.New(), Name: "A"}
	b := Tag{ID: uuid.New(), Name: "B"}
	c := Tag{ID: uuid.New(), Name: "C"}

	ordered, err := OrderForJoin([]Tag{a, b, c}, b.ID)
	require.NoError(t, err)

	names := []string{ordered[0].Name, ordered[1].Name, ordered[2].Name}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestOrderForJoin_Errors(t *testing.T) {
	_, err := OrderForJoin(nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoTagsToJoin)

	_, err = OrderForJoin([]Tag{{ID: uuid.New(), Name: "A"}}, uuid.New())
	assert.ErrorIs(t, err, ErrPrimaryNotSelected)
}

func TestOrderForJoin_DoesNotMutateInput(t *testing.T) {
	a := Tag{ID: uuid.New(), Name: "A"}
	b := Tag{ID: uuid.New(), Name: "B"}
	input := []Tag{a, b}

	_, err := OrderForJoin(input, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", input[0].Name)
}

func TestParseIDs(t *testing.T) {
	id := uuid.New()

	parsed, err := ParseIDs([]string{id.String(), " " + id.String() + " "})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, parsed)

	_, err = ParseIDs([]string{"not-a-uuid"})
	assert.ErrorIs(t, err, ErrInvalidTagID)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr error
	}{
		{"trims", "  cat ", 100, "cat", nil},
		{"empty", "   ", 100, "", ErrInvalidTagName},
		{"inner space", "big cat", 100, "", ErrInvalidTagName},
		{"too long", strings.Repeat("x", 11), 10, "", ErrTagNameTooLong},
		{"unicode length", "katzenbär", 9, "katzenbär", nil},
		{"no limit", strings.Repeat("x", 300), 0, strings.Repeat("x", 300), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.input, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagResponse_DisplayHelpers(t *testing.T) {
	resp := TagResponse{
		Name:         "cat",
		Synonyms:     []string{"cat", "feline"},
		Translations: map[string]string{"fr": "chat", "de": "Katze"},
	}

	assert.Equal(t, "cat, feline", resp.SynonymList())
	assert.Equal(t, "Katze, chat", resp.TranslationList())
	assert.Equal(t, "chat", resp.NameAny("fr"))
	assert.Equal(t, "cat", resp.NameAny("es"))

	untitled := TagResponse{Translations: map[string]string{"fr": "chat"}}
	assert.Equal(t, "chat", untitled.NameAny("en"))
}
