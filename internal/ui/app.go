package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"InkBoard/internal/core"
	"InkBoard/internal/export"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
	"InkBoard/internal/stores"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

const pngScale = 1

// Options configures the window around a session.
type Options struct {
	// Store receives snapshots from the save button. Saving is disabled
	// when it is nil.
	Store core.SnapshotStore

	// RecordID is the record saves go to. Empty means the session ID.
	RecordID string

	// ViewerURL is shown below the board when the mirror runs.
	ViewerURL string

	// ReadOnly shows a board followed from another machine.
	ReadOnly bool
}

// App is the board window: a toolbar above the board.
type App struct {
	window   fyne.Window
	session  *state.Session
	store    core.SnapshotStore
	recordID string

	board   *Board
	toolbar *Toolbar

	remoteSeen bool
	remoteRev  uint64
}

// NewApp builds the board window for session inside a.
func NewApp(a fyne.App, session *state.Session, opts Options) *App {
	app := &App{
		window:   a.NewWindow("InkBoard"),
		session:  session,
		store:    opts.Store,
		recordID: opts.RecordID,
		board:    NewBoard(session),
	}
	app.board.ReadOnly = opts.ReadOnly
	if app.recordID == "" {
		app.recordID = session.ID()
	}

	actions := ToolbarActions{
		ReadOnly:  opts.ReadOnly,
		ExportPDF: func() { app.exportDialog("inkboard.pdf", ".pdf", app.writePDF) },
		ExportPNG: func() { app.exportDialog("inkboard.png", ".png", app.writePNG) },
	}
	if !opts.ReadOnly {
		actions.Clear = app.confirmClear
	}
	if app.store != nil {
		actions.Save = func() {
			if err := app.Save(context.Background()); err != nil {
				dialog.ShowError(err, app.window)
				return
			}
			app.toolbar.SetStatus("Saved as " + app.recordID)
		}
	}
	app.toolbar = NewToolbar(session, app.board, actions)

	footer := fyne.CanvasObject(nil)
	if opts.ViewerURL != "" {
		footer = widget.NewLabel("Viewers: " + opts.ViewerURL)
	}
	app.window.SetContent(container.NewBorder(app.toolbar.Object(), footer, nil, nil, app.board))
	app.window.Resize(fyne.NewSize(1024, 768))
	app.addShortcuts()
	return app
}

// Window returns the board window.
func (a *App) Window() fyne.Window { return a.window }

// Board returns the board widget.
func (a *App) Board() *Board { return a.board }

// Toolbar returns the toolbar.
func (a *App) Toolbar() *Toolbar { return a.toolbar }

// ShowAndRun shows the window and runs the event loop until it closes.
func (a *App) ShowAndRun() {
	a.window.ShowAndRun()
}

// Save stores the session under the app's record ID.
func (a *App) Save(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	name := "InkBoard " + time.Now().Format(time.DateTime)
	id, err := stores.SaveSession(ctx, a.store, a.session, a.recordID, name)
	if err != nil {
		return err
	}
	a.recordID = id
	return nil
}

// ShowRemote replaces the board with a snapshot received from a mirror.
// The first snapshot brings the remote viewport along; later ones keep the
// local pan and zoom. Snapshots older than the last one shown are dropped.
// Safe to call from any goroutine.
func (a *App) ShowRemote(snap state.Snapshot) {
	fyne.Do(func() { a.showRemote(snap) })
}

func (a *App) showRemote(snap state.Snapshot) {
	if a.remoteSeen && snap.Revision < a.remoteRev {
		return
	}
	a.remoteRev = snap.Revision

	var viewport geom.Rect
	a.session.View(func(c *state.Canvas) { viewport = c.Viewport() })
	a.session.Restore(snap)
	if a.remoteSeen {
		a.session.SetViewport(viewport)
	}
	a.remoteSeen = true
	a.board.Refresh()
}

func (a *App) addShortcuts() {
	c := a.window.Canvas()
	mod := fyne.KeyModifierShortcutDefault
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: mod}, func(fyne.Shortcut) { a.toolbar.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: mod | fyne.KeyModifierShift}, func(fyne.Shortcut) { a.toolbar.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: mod}, func(fyne.Shortcut) { a.toolbar.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyEqual, Modifier: mod}, func(fyne.Shortcut) { a.toolbar.Zoom(zoomStep) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyMinus, Modifier: mod}, func(fyne.Shortcut) { a.toolbar.Zoom(1 / zoomStep) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: mod}, func(fyne.Shortcut) { a.toolbar.ResetZoom() })
	c.SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyP:
			a.toolbar.SelectPen()
		case fyne.KeyE:
			a.toolbar.SelectEraser()
		}
	})
}

func (a *App) confirmClear() {
	dialog.ShowConfirm("Clear board", "Remove every stroke? Undo brings them back.", func(ok bool) {
		if !ok {
			return
		}
		n := a.session.Clear()
		a.board.Refresh()
		logrus.WithField("strokes", n).Info("Board cleared")
	}, a.window)
}

func (a *App) writePDF(w io.Writer) error {
	return export.PDF(w, a.session.Snapshot(false).Canvas)
}

func (a *App) writePNG(w io.Writer) error {
	return export.PNG(w, a.session.Snapshot(false).Canvas, pngScale)
}

func (a *App) exportDialog(name, ext string, write func(io.Writer) error) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if wc == nil {
			return
		}
		log := logrus.WithField("uri", wc.URI().String())

		err = write(wc)
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.WithError(err).Error("Export failed")
			dialog.ShowError(fmt.Errorf("export: %w", err), a.window)
			return
		}
		log.Info("Board exported")
		a.toolbar.SetStatus("Exported " + wc.URI().Name())
	}, a.window)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
