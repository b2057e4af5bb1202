// Package app runs the clear-screen demo: it opens the window, bootstraps the
// render context, and draws until the window is closed.
package app

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/clearscreen/internal/config"
	"github.com/vkngwrapper/clearscreen/internal/render"
	"github.com/vkngwrapper/clearscreen/internal/vkng"
	"github.com/vkngwrapper/clearscreen/internal/window"
)

type ClearScreenApplication struct {
	cfg *config.Config
	log *slog.Logger

	window  *window.Window
	context *render.RenderContext
}

func New(cfg *config.Config, log *slog.Logger) *ClearScreenApplication {
	if log == nil {
		log = slog.Default()
	}
	return &ClearScreenApplication{cfg: cfg, log: log}
}

// Options converts the configuration into render bootstrap options.
func Options(cfg *config.Config, log *slog.Logger) (render.Options, error) {
	if err := cfg.Validate(); err != nil {
		return render.Options{}, err
	}

	appVersion, err := config.ParseVersion(cfg.Application.Version)
	if err != nil {
		return render.Options{}, err
	}
	engineVersion, err := config.ParseVersion(cfg.Engine.Version)
	if err != nil {
		return render.Options{}, err
	}

	return render.Options{
		ApplicationName:    cfg.Application.Name,
		ApplicationVersion: appVersion,
		EngineName:         cfg.Engine.Name,
		EngineVersion:      engineVersion,
		APIVersion:         cfg.API(),
		EnableValidation:   cfg.Validation,
		FrameLogInterval:   uint64(cfg.FrameLogInterval),
		Logger:             log,
	}, nil
}

func (app *ClearScreenApplication) Run() error {
	opts, err := Options(app.cfg, app.log)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	loader, err := app.initWindow()
	if err != nil {
		return err
	}

	app.context, err = render.New(loader, app.window, opts)
	if err != nil {
		app.window.Close()
		return err
	}
	defer app.cleanup()

	return app.mainLoop()
}

func (app *ClearScreenApplication) initWindow() (*vkng.Loader, error) {
	var err error
	app.window, err = window.Open(app.cfg.Window.Title, app.cfg.Window.Width, app.cfg.Window.Height)
	if err != nil {
		return nil, err
	}

	loader, err := vkng.NewLoader(app.window.ProcAddr())
	if err != nil {
		app.window.Close()
		return nil, err
	}

	width, height := app.window.DrawableSize()
	app.log.Debug("window opened", "title", app.cfg.Window.Title, "drawable_width", width, "drawable_height", height)
	return loader, nil
}

func (app *ClearScreenApplication) mainLoop() error {
appLoop:
	for {
		for _, event := range window.Poll() {
			if event.IsExit() {
				break appLoop
			}
		}

		if err := app.context.Draw(); err != nil {
			return err
		}
	}

	return app.context.WaitIdle()
}

func (app *ClearScreenApplication) cleanup() {
	stats := app.context.Stats()
	if err := app.context.Destroy(); err != nil {
		app.log.Error("render context teardown incomplete", "error", err)
	}
	app.log.Info("shut down",
		"frames", stats.Frames,
		"mean_frame", stats.MeanFrame(),
	)

	app.window.Close()
}
