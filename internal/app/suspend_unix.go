//go:build !windows

package app

import (
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

func (app *Application) suspendToShell() {
	_ = app.screen.Suspend()
	// Stop only this process so the launching shell keeps job control.
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		app.logger.Warn("resume screen", zap.Error(err))
		return false
	}
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt("resume"))
	// Directories may have changed while stopped.
	app.registry.RefreshAll()
	return true
}
