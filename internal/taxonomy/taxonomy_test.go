package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultIsValid(t *testing.T) {
	tax := Default()
	require.NoError(t, tax.Validate())

	for _, cat := range []string{CategoryEmotion, CategoryStoryFlow, CategoryDirectionMood, CategoryCharacter} {
		assert.NotEmpty(t, tax.Tags(cat), "category %s", cat)
	}
}

func TestLoadFallsBackOnMissingFile(t *testing.T) {
	tax := Load(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	assert.Equal(t, Default(), tax)
}

func TestLoadFallsBackOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tax := Load(path, zap.NewNop())
	assert.Equal(t, Default(), tax)
}

func TestLoadFallsBackOnInvalidTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty_tags.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"emotion":{"description":"d","tags":[]}}`), 0o600))

	tax := Load(path, zap.NewNop())
	assert.Equal(t, Default(), tax)
}

func TestLoadValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.json")
	body := `{"emotion":{"description":"feelings","tags":["sad","happy"]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tax := Load(path, zap.NewNop())
	assert.Equal(t, []string{"sad", "happy"}, tax.Tags(CategoryEmotion))
	// Categories missing from the file resolve to empty tag lists.
	assert.Empty(t, tax.Tags(CategoryStoryFlow))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tax     Taxonomy
		wantErr string
	}{
		{name: "empty taxonomy", tax: Taxonomy{}, wantErr: "no categories"},
		{name: "empty tags", tax: Taxonomy{"x": {Tags: nil}}, wantErr: "no tags"},
		{name: "duplicate tags", tax: Taxonomy{"x": {Tags: []string{"a", "a"}}}, wantErr: "duplicate"},
		{name: "ok", tax: Taxonomy{"x": {Tags: []string{"a", "b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tax.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
