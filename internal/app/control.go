package app

import (
	"github.com/wilbur182/lexview/internal/hexview"
	"github.com/wilbur182/lexview/internal/lexical"
)

// Control is what the status bar and go-to prompt need from a view.
type Control interface {
	Name() string
	GoTo(offset int) error
	Select(offset, size int) error
	CursorStatus(width int) string
}

// navigator is the cursor movement shared by both views.
type navigator interface {
	MoveLeft(selected bool) error
	MoveRight(selected bool) error
	MoveUp(times int, selected bool) error
	MoveDown(times int, selected bool) error
	PageUp(selected bool) error
	PageDown(selected bool) error
	MoveHome(selected bool) error
	MoveEnd(selected bool) error
	MoveToFirst(selected bool) error
	MoveToLast(selected bool) error
	Resize(width, height int)
}

var (
	_ Control   = (*lexical.Engine)(nil)
	_ Control   = (*hexview.View)(nil)
	_ navigator = (*lexical.Engine)(nil)
	_ navigator = (*hexview.View)(nil)
)
