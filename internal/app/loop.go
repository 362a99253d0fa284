package app

import (
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rpanes/internal/ui/input"
)

// Run drives the UI until quit. Screen events and panel tasks are handled on
// this goroutine, which makes it the panel loop.
func (app *Application) Run() {
	eventChan := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	tasks := app.loop.Tasks()
	for !app.shouldQuit {
		if app.dirty {
			app.renderer.Render(app.view())
			app.dirty = false
		}

		select {
		case ev := <-eventChan:
			app.handleEvent(ev)
		case fn := <-tasks:
			fn()
		case <-sigContCh:
			if app.resumeAfterStop() {
				app.dirty = true
			}
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.handleAction(input.Decode(ev, app.mode()))
	case *tcell.EventResize:
		app.screen.Sync()
		app.dirty = true
	case *tcell.EventInterrupt:
		app.dirty = true
	}
}
