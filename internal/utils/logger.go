package utils

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger(level string) {
	SetLogOutput(os.Stderr, level)
}

func SetLogOutput(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// WithTransfer attaches a logger tagged with a fresh transfer id and the
// target URL to ctx. Engine code logs through zerolog.Ctx(ctx).
func WithTransfer(ctx context.Context, target TransferTarget) (context.Context, string) {
	id := uuid.NewString()
	logger := log.With().Str("transfer", id).Str("target", target.String()).Logger()
	return logger.WithContext(ctx), id
}
