package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init("kepler", Options{Level: "warn", NoColor: true, Out: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("body", "halley").Msg("capped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "capped")
	assert.Contains(t, out, "body=halley")
	assert.Contains(t, out, "app=kepler")

	buf.Reset()
	log.Warn().Msg("global")
	assert.Contains(t, buf.String(), "global")
}

func TestInitBadLevel(t *testing.T) {
	_, err := Init("kepler", Options{Level: "loud", Out: &bytes.Buffer{}})
	assert.Error(t, err)
}
