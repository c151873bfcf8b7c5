package nlq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVocabularyMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	err := os.WriteFile(path, []byte(`
companies: [Panda, Tamimi]
typos:
  Devicez: devices
stopwords: [kindly]
`), 0o600)
	require.NoError(t, err)

	v, err := LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Panda", "Tamimi"}, v.Companies)
	assert.Equal(t, DefaultVocabulary().Branches, v.Branches)
	assert.Equal(t, "devices", v.Typos["devicez"])
	assert.Equal(t, "salesmen", v.Typos["salesmans"])
	assert.True(t, v.isStopword("kindly"))

	ents := Extract(Normalize("kindly how many devicez in Panda", v.Typos), v)
	assert.Equal(t, KindDevices, ents.Kind)
	assert.Equal(t, "panda", ents.Company)
	assert.Empty(t, ents.Value)
}

func TestLoadVocabularyErrors(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("companies: [unclosed"), 0o600))
	_, err = LoadVocabulary(path)
	assert.Error(t, err)
}
