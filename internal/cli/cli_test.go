package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshCommand_ParseFlags(t *testing.T) {
	cmd := NewRefreshCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-domain", "grades", "-week", "12", "-account", "abc", "-db", "x.db"}))

	assert.Equal(t, "grades", cmd.Domain)
	assert.Equal(t, 12, cmd.Week)
	assert.Equal(t, "abc", cmd.Account)
	assert.Equal(t, "x.db", cmd.DatabasePath)
	assert.Equal(t, 5*time.Minute, cmd.Timeout)
}

func TestRefreshCommand_Defaults(t *testing.T) {
	cmd := NewRefreshCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "all", cmd.Domain)
	assert.Zero(t, cmd.Week)
}

func TestRefreshCommand_RejectsBadInput(t *testing.T) {
	assert.Error(t, NewRefreshCommand().ParseFlags([]string{"-domain", "report-cards"}))
	assert.Error(t, NewRefreshCommand().ParseFlags([]string{"-week", "-3"}))
}

func TestICalImportCommand_ParseFlags(t *testing.T) {
	cmd := NewICalImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-url", "https://a.test/x.ics", "-url", "http://b.test/y.ics"}))
	assert.Equal(t, []string{"https://a.test/x.ics", "http://b.test/y.ics"}, cmd.URLs)

	assert.Error(t, NewICalImportCommand().ParseFlags([]string{"-url", "ftp://a.test/x.ics"}))
}
