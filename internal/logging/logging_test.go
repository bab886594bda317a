package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(false, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	log.Info().Msg("board ready")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "board ready")

	buf.Reset()
	Setup(true, &buf)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestSession(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(false, &buf)

	l := Session("ab12")
	l.Info().Msg("rolled")
	assert.Contains(t, buf.String(), "ab12")
	assert.Contains(t, buf.String(), "rolled")
}
