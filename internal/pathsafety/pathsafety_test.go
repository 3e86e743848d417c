package pathsafety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "meeting notes.wav", SanitizeFilename("meeting notes.wav"))
}

func TestSanitizeFilename_StripsDisallowedChars(t *testing.T) {
	got := SanitizeFilename("report<1>.wav")
	assert.Equal(t, "report1.wav", got)
}

func TestSanitizeFilename_RejectsTraversal(t *testing.T) {
	got := SanitizeFilename("../../etc/passwd.wav")
	assert.True(t, len(got) > 0)
	assert.NotContains(t, got, "..")
	assert.NotContains(t, got, "/")
}

func TestSanitizeFilename_NoExtensionFallsBack(t *testing.T) {
	got := SanitizeFilename("noextension")
	assert.Contains(t, got, ".bin")
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	first := SanitizeFilename("My Recording (final)!!.wav")
	second := SanitizeFilename(first)
	assert.Equal(t, first, second)
}

func TestUniqueFilename_NoCollision(t *testing.T) {
	dir := t.TempDir()
	got := UniqueFilename(dir, "audio.wav")
	assert.Equal(t, "audio.wav", got)
}

func TestUniqueFilename_ResolvesCollisions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.wav"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio (Copy).wav"), []byte("a"), 0o644))

	got := UniqueFilename(dir, "audio.wav")
	assert.Equal(t, "audio (Copy 2).wav", got)
}

func TestEnsureContained_AllowsInside(t *testing.T) {
	root := t.TempDir()
	inner := filepath.Join(root, "file.wav")
	_, err := EnsureContained(root, inner)
	assert.NoError(t, err)
}

func TestEnsureContained_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	escaped := filepath.Join(root, "..", "outside.wav")
	_, err := EnsureContained(root, escaped)
	assert.Error(t, err)
}
