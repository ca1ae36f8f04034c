package ui

import (
	"fmt"
	"image/color"

	"InkBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	minWidth           = 1.0
	maxWidth           = 50.0
	defaultEraserWidth = 20.0
	zoomStep           = 1.2
)

var palette = []color.NRGBA{
	{A: 255},                 // black
	{R: 255, A: 255},         // red
	{G: 160, A: 255},         // green
	{B: 255, A: 255},         // blue
	{R: 255, G: 200, A: 255}, // yellow
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	Selected bool
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))
	border := canvas.NewRectangle(color.Transparent)
	r := &swatchRenderer{
		WidgetRenderer: widget.NewSimpleRenderer(container.NewStack(rect, border)),
		swatch:         s,
		border:         border,
	}
	r.Refresh()
	return r
}

// swatchRenderer redraws the border when the selection changes.
type swatchRenderer struct {
	fyne.WidgetRenderer
	swatch *colorSwatch
	border *canvas.Rectangle
}

func (r *swatchRenderer) Refresh() {
	r.border.StrokeColor = color.Gray{Y: 150}
	r.border.StrokeWidth = 1
	if r.swatch.Selected {
		r.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		r.border.StrokeWidth = 3
	}
	r.border.Refresh()
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the tool state the session does not: the width each tool
// was last used with and the pen colour.
type Toolbar struct {
	session *state.Session
	board   *Board

	penWidth    float32
	eraserWidth float32

	swatches []*colorSwatch
	slider   *widget.Slider
	status   *widget.Label
	actions  ToolbarActions
	readOnly bool
}

// ToolbarActions are the toolbar buttons that need more than the session.
// Nil actions get no button. A ReadOnly toolbar has no editing controls.
type ToolbarActions struct {
	ReadOnly  bool
	ExportPDF func()
	ExportPNG func()
	Save      func()
	Clear     func()
}

// NewToolbar builds the toolbar for session and board.
func NewToolbar(session *state.Session, board *Board, actions ToolbarActions) *Toolbar {
	style := session.Style()
	t := &Toolbar{
		session:     session,
		board:       board,
		penWidth:    style.Width,
		eraserWidth: defaultEraserWidth,
		status:      widget.NewLabel(""),
		actions:     actions,
		readOnly:    actions.ReadOnly,
	}
	for _, c := range palette {
		t.swatches = append(t.swatches, newColorSwatch(c, t.SelectColor))
	}
	t.markSwatch(style.Color)

	t.slider = widget.NewSlider(minWidth, maxWidth)
	t.slider.SetValue(float64(style.Width))
	t.slider.OnChanged = func(v float64) { t.SetWidth(float32(v)) }

	session.OnChange(func(uint64) { fyne.Do(t.updateStatus) })
	t.updateStatus()
	return t
}

// SelectPen switches to the pen with the width it was last used with.
func (t *Toolbar) SelectPen() {
	t.session.SetTool(state.ToolPen)
	t.applyWidth(t.penWidth)
}

// SelectEraser switches to the eraser. Its radius is the style width.
func (t *Toolbar) SelectEraser() {
	t.session.SetTool(state.ToolErase)
	t.applyWidth(t.eraserWidth)
}

// SelectColor sets the pen colour and switches back to the pen.
func (t *Toolbar) SelectColor(c color.NRGBA) {
	style := t.session.Style()
	style.Color = c
	t.session.SetStyle(style)
	t.markSwatch(c)
	if t.session.Tool() != state.ToolPen {
		t.SelectPen()
	}
	t.updateStatus()
}

// SetWidth sets the width of the active tool.
func (t *Toolbar) SetWidth(w float32) {
	w = max(minWidth, min(w, maxWidth))
	if t.session.Tool() == state.ToolErase {
		t.eraserWidth = w
	} else {
		t.penWidth = w
	}
	style := t.session.Style()
	style.Width = w
	t.session.SetStyle(style)
	t.board.Refresh()
	t.updateStatus()
}

func (t *Toolbar) applyWidth(w float32) {
	t.SetWidth(w)
	// SetValue may fire OnChanged, which sets the same width again.
	t.slider.SetValue(float64(w))
}

func (t *Toolbar) markSwatch(c color.NRGBA) {
	for _, s := range t.swatches {
		selected := s.Color == c
		if s.Selected != selected {
			s.Selected = selected
			s.Refresh()
		}
	}
}

// Zoom multiplies the zoom level by factor.
func (t *Toolbar) Zoom(factor float32) {
	var z float32
	t.session.View(func(c *state.Canvas) { z = c.Zoom() })
	t.session.SetZoom(z * factor)
	t.board.Refresh()
}

// ResetZoom returns to the initial zoom level.
func (t *Toolbar) ResetZoom() {
	t.session.SetZoom(state.DefaultZoom)
	t.board.Refresh()
}

func (t *Toolbar) Undo() {
	if t.session.Undo() {
		t.board.Refresh()
	}
}

func (t *Toolbar) Redo() {
	if t.session.Redo() {
		t.board.Refresh()
	}
}

// SetStatus shows a transient message until the next change.
func (t *Toolbar) SetStatus(text string) {
	t.status.SetText(text)
}

func (t *Toolbar) statusText() string {
	style := t.session.Style()
	var zoom float32
	var strokes int
	t.session.View(func(c *state.Canvas) {
		zoom = c.Zoom()
		strokes = c.Len()
	})
	return fmt.Sprintf("%s %.0fpx | zoom %.0f%% | %d strokes | rev %d",
		t.session.Tool(), style.Width, zoom*100, strokes, t.session.Revision())
}

func (t *Toolbar) updateStatus() {
	t.status.SetText(t.statusText())
}

// Object assembles the toolbar widgets.
func (t *Toolbar) Object() fyne.CanvasObject {
	var items []widget.ToolbarItem
	if !t.readOnly {
		items = append(items,
			widget.NewToolbarAction(theme.DocumentCreateIcon(), t.SelectPen),
			widget.NewToolbarAction(theme.ContentClearIcon(), t.SelectEraser),
			widget.NewToolbarSeparator(),
			widget.NewToolbarAction(theme.ContentUndoIcon(), t.Undo),
			widget.NewToolbarAction(theme.ContentRedoIcon(), t.Redo),
			widget.NewToolbarSeparator(),
		)
	}
	items = append(items,
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { t.Zoom(zoomStep) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { t.Zoom(1 / zoomStep) }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), t.ResetZoom),
	)
	if t.actions.Clear != nil && !t.readOnly {
		items = append(items, widget.NewToolbarSeparator(),
			widget.NewToolbarAction(theme.DeleteIcon(), t.actions.Clear))
	}
	if t.actions.Save != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentSaveIcon(), t.actions.Save))
	}
	if t.actions.ExportPDF != nil {
		items = append(items, widget.NewToolbarAction(theme.FileTextIcon(), t.actions.ExportPDF))
	}
	if t.actions.ExportPNG != nil {
		items = append(items, widget.NewToolbarAction(theme.FileImageIcon(), t.actions.ExportPNG))
	}

	row := container.NewHBox(widget.NewToolbar(items...))
	if !t.readOnly {
		colorBox := container.NewHBox()
		for _, s := range t.swatches {
			colorBox.Add(s)
		}
		sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)
		row.Add(widget.NewSeparator())
		row.Add(widget.NewLabel("Color:"))
		row.Add(colorBox)
		row.Add(widget.NewSeparator())
		row.Add(widget.NewLabel("Size:"))
		row.Add(sliderContainer)
	}
	row.Add(layout.NewSpacer())

	return container.NewVBox(row, t.status)
}
