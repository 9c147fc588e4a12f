package gallery

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingPortfolio(t *testing.T) {
	s := NewStore(t.TempDir())
	p, err := s.Load("anna")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAddAndLoad(t *testing.T) {
	s := NewStore(t.TempDir())

	photo, err := s.Add("anna", "Анна Петрова", "jpg", []byte("fake-jpeg"), "Портрет в студии")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(photo.Path, ".jpg"))
	assert.Equal(t, "Портрет в студии", photo.Caption)

	data, err := os.ReadFile(photo.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg"), data)

	p, err := s.Load("anna")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "anna", p.PhotographerID)
	assert.Equal(t, "Анна Петрова", p.Name)
	require.Len(t, p.Photos, 1)
	assert.Equal(t, photo.Path, p.Photos[0].Path)
}

func TestAddAppendsAndDefaultsExt(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.Add("anna", "Анна", "", []byte("a"), "первое")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.Path, ".jpg"), "empty extension falls back to jpg")

	second, err := s.Add("anna", "Анна", "png", []byte("b"), "второе")
	require.NoError(t, err)
	assert.NotEqual(t, first.Path, second.Path)

	p, err := s.Load("anna")
	require.NoError(t, err)
	require.Len(t, p.Photos, 2)
	assert.Equal(t, "первое", p.Photos[0].Caption)
	assert.Equal(t, "второе", p.Photos[1].Caption)
}

func TestPortfoliosAreIsolated(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Add("anna", "Анна", "jpg", []byte("a"), "c")
	require.NoError(t, err)

	p, err := s.Load("ivan")
	require.NoError(t, err)
	assert.Nil(t, p)
}
