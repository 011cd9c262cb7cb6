package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Level   string
	NoColor bool
	Out     io.Writer
}

// Init builds the console logger, installs it as the global log.Logger and
// returns it. An empty level means info.
func Init(app string, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        opts.Out,
		NoColor:    opts.NoColor,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger, nil
}
