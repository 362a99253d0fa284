package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rpanes/internal/clipboard"
	"github.com/kk-code-lab/rpanes/internal/config"
	"github.com/kk-code-lab/rpanes/internal/logging"
	"github.com/kk-code-lab/rpanes/internal/metrics"
	"github.com/kk-code-lab/rpanes/internal/panel"
	"github.com/kk-code-lab/rpanes/internal/tags"
	renderui "github.com/kk-code-lab/rpanes/internal/ui/render"
)

// Application represents the running app.
type Application struct {
	screen    tcell.Screen
	renderer  *renderui.Renderer
	registry  *panel.Registry
	loop      *panel.Loop
	tags      *tags.Store
	workspace *config.Workspace
	logger    *zap.Logger
	metrics   *metrics.Metrics
	yank      func(string) error

	stopMetrics context.CancelFunc
	shouldQuit  bool
	dirty       bool

	focus   int
	ui      map[string]*panelUI
	prompt  *promptState
	confirm *confirmState
	help    bool
	tagged  bool
	status  string
}

// NewApplication opens the terminal and builds every component from
// settings. dirs, when given, choose the panel directories.
func NewApplication(settings config.Settings, dirs []string) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	app, err := newApplication(screen, settings, dirs)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	return app, nil
}

func newApplication(screen tcell.Screen, settings config.Settings, dirs []string) (*Application, error) {
	logger, _, err := logging.New(logging.Config{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		OutputPath: settings.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	m := metrics.New()
	app := &Application{
		screen:   screen,
		renderer: renderui.NewRenderer(screen),
		logger:   logger,
		metrics:  m,
		yank:     clipboard.WriteSystem,
		ui:       make(map[string]*panelUI),
		dirty:    true,
	}

	if settings.Metrics.Addr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		app.stopMetrics = cancel
		go func() {
			if err := m.Serve(ctx, settings.Metrics.Addr, logger); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	app.tags = tags.NewStore(settings.Tags.Path, tags.WithLogger(logger), tags.WithObserver(m.SetTagEntries))
	if err := app.tags.Load(); err != nil {
		logger.Warn("tag store reset", zap.Error(err))
		app.status = "tag store unreadable, starting empty"
	}

	ws, err := config.OpenWorkspace(settings.Workspace.Path, logger)
	if err != nil {
		logger.Warn("workspace reset", zap.Error(err))
	}
	app.workspace = ws

	app.loop = panel.NewLoop(panel.DefaultLoopSize)
	app.registry = panel.NewRegistry(panel.Deps{
		Loop:        app.loop,
		Clipboard:   clipboard.New(),
		Tags:        app.tags,
		Logger:      logger,
		Metrics:     m,
		SearchDelay: settings.Panels.SearchDelay,
		WatchDelay:  settings.Panels.WatchDelay,
		LoadConfig:  ws.LoadConfig,
		SaveConfig:  ws.SaveConfig,
	})

	count := panelCount(len(dirs), ws.NumPanels(), settings.Panels.Count)
	for i := 0; i < count; i++ {
		c, err := app.openPanel(panelID(i))
		if err != nil {
			return nil, err
		}
		if i < len(dirs) {
			err = c.SetRootPath(dirs[i])
		} else {
			err = c.Restore()
		}
		if err != nil {
			logger.Warn("open panel directory", logging.Panel(c.ID()), zap.Error(err))
			app.status = err.Error()
		}
	}
	if err := ws.SetNumPanels(count); err != nil {
		logger.Warn("save panel count", zap.Error(err))
	}
	logger.Info("started", zap.Int("panels", count))
	return app, nil
}

func (app *Application) openPanel(id string) (*panel.Controller, error) {
	c, err := app.registry.Open(id)
	if err != nil {
		return nil, err
	}
	app.ui[id] = &panelUI{marked: map[string]bool{}}
	c.OnUpdate(func(panel.Snapshot) { app.dirty = true })
	return c, nil
}

// panelCount picks how many panels to open: one per directory argument, else
// the saved count, else the configured default.
func panelCount(args, saved, configured int) int {
	n := configured
	switch {
	case args > 0:
		n = args
	case saved > 0:
		n = saved
	}
	if n < 1 {
		n = 1
	}
	if n > config.MaxPanels {
		n = config.MaxPanels
	}
	return n
}

func panelID(i int) string {
	return fmt.Sprintf("panel%d", i+1)
}

// Close cleans up resources.
func (app *Application) Close() error {
	app.registry.DisposeAll()
	app.loop.Close()
	if app.stopMetrics != nil {
		app.stopMetrics()
	}
	err := app.tags.Save()
	_ = app.logger.Sync()
	app.screen.Fini()
	return err
}
