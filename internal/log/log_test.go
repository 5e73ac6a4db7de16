package log_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"

	"groscore/internal/log"
)

func TestLevelFromString(t *testing.T) {
	lvl, err := log.LevelFromString("notice")
	require.NoError(t, err)
	require.Equal(t, logging.NOTICE, lvl)

	_, err = log.LevelFromString("loud")
	require.Error(t, err)
}

func TestBackend_FileAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groscore.log")
	b, err := log.New(path, "NOTICE", false)
	require.NoError(t, err)

	l := b.GetLogger("session")
	l.Debugf("hidden %d", 1)
	l.Noticef("derived recipient %s", "52")
	require.NoError(t, b.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	require.True(t, strings.Contains(out, "session: derived recipient 52"), out)
	require.False(t, strings.Contains(out, "hidden"), out)
}

func TestBackend_Disabled(t *testing.T) {
	b := log.NewDiscard()
	require.False(t, b.IsEnabledFor(logging.WARNING, "x"))
	b.GetLogger("x").Error("dropped")
}
