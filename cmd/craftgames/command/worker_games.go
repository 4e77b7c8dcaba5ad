package command

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-craftgames/internal/game"
)

// gamesWorker stops every live game once the service shuts down.
type gamesWorker struct {
	games *game.Registry
}

func (w *gamesWorker) Start(ctx context.Context) error {
	<-ctx.Done()

	err := w.games.StopAll()
	if err != nil {
		slog.Warn("stopping games on shutdown", "error", err)
	}
	return nil
}
