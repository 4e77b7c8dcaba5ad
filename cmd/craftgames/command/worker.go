package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-craftgames/internal/assets"
	"github.com/pixil98/go-craftgames/internal/commands"
	"github.com/pixil98/go-craftgames/internal/game"
	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/player"
	"github.com/pixil98/go-craftgames/internal/pluginconfig"
	"github.com/pixil98/go-craftgames/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	plugin, err := pluginconfig.Load(cfg.DataFolder)
	if err != nil {
		return nil, fmt.Errorf("loading plugin config: %w", err)
	}

	if plugin.InstallSample() {
		n, err := assets.Install(assets.Sample(), plugin.DataDir())
		if err != nil {
			return nil, err
		}
		err = plugin.MarkSampleInstalled()
		if err != nil {
			return nil, fmt.Errorf("updating plugin config: %w", err)
		}
		slog.Info("sample game installed", "files", n)
	}

	enc, err := plugin.Charset()
	if err != nil {
		return nil, fmt.Errorf("resolving file-encoding: %w", err)
	}

	worlds, err := host.NewFSWorldContainer(cfg.WorldContainer)
	if err != nil {
		return nil, fmt.Errorf("creating world container: %w", err)
	}

	messages, err := commands.NewMessages(plugin.Messages())
	if err != nil {
		return nil, fmt.Errorf("compiling messages: %w", err)
	}

	games := game.NewRegistry(plugin, plugin.DataDir(), enc, worlds)
	sessions := session.NewManager(player.NewStateRegistry(), games)
	handler := commands.NewHandler(games, sessions, plugin, messages)

	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	workers := service.WorkerList{
		"nats":  bus,
		"games": &gamesWorker{games: games},
	}
	if !cfg.Console.Disabled {
		workers["console"] = cfg.Console.buildConsole(handler, bus)
	}

	return workers, nil
}
