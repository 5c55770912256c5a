package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/email-assistant/internal/logging"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		format  string
		wantErr bool
		want    string
	}{
		{name: "text default", want: "msg=hello"},
		{name: "json", format: "json", want: `"msg":"hello"`},
		{name: "bad format", format: "xml", wantErr: true},
		{name: "bad level", level: "loud", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := logging.New(&buf, tc.level, tc.format)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			logger.Info("hello")
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := logging.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = logging.ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("nil error", logging.Err(nil))
	assert.NotContains(t, buf.String(), "error=")

	buf.Reset()
	logger.Info("with error", logging.Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "error=boom")
}

func TestAnonymizeEmail(t *testing.T) {
	assert.Empty(t, logging.AnonymizeEmail(""))

	a := logging.AnonymizeEmail("Alice@Example.com")
	b := logging.AnonymizeEmail(" alice@example.com")
	assert.Equal(t, a, b)
	assert.NotContains(t, a, "alice")
	assert.Len(t, a, len("user:")+16)
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", logging.ExtractDomain("bob@example.com"))
	assert.Equal(t, "c.org", logging.ExtractDomain("a@b@c.org"))
	assert.Empty(t, logging.ExtractDomain("not-an-address"))
	assert.Empty(t, logging.ExtractDomain(""))
}
