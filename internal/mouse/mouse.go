// Package mouse turns raw Bubble Tea mouse events into clicks, double-clicks,
// drags and scrolls on named screen regions.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Region IDs used by the viewer.
const (
	RegionContent = "content"
	RegionGutter  = "gutter"
	RegionStatus  = "status"
)

// DoubleClickInterval is the longest gap between two clicks on the same cell
// that still counts as a double-click.
const DoubleClickInterval = 400 * time.Millisecond

// Scroll steps per wheel notch.
const (
	ScrollLines   = 3
	ScrollColumns = 8
)

// Rect represents a rectangular region.
type Rect struct {
	X, Y, W, H int
}

// Contains returns true if the point (x, y) is within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named rectangular hit region.
type Region struct {
	ID   string
	Rect Rect
}

// Local converts screen coordinates to coordinates relative to the region.
func (r Region) Local(x, y int) (int, int) {
	return x - r.Rect.X, y - r.Rect.Y
}

// HitMap tracks hit regions for mouse click detection.
type HitMap struct {
	regions []Region
}

// NewHitMap creates a new empty HitMap.
func NewHitMap() *HitMap {
	return &HitMap{regions: make([]Region, 0, 4)}
}

// Clear removes all regions from the hit map.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Add registers a region. Later regions take priority where they overlap.
func (h *HitMap) Add(id string, x, y, w, height int) {
	h.regions = append(h.regions, Region{ID: id, Rect: Rect{X: x, Y: y, W: w, H: height}})
}

// Test returns the topmost region containing the point, or nil if none.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			return &h.regions[i]
		}
	}
	return nil
}

// Regions returns a copy of all registered regions.
func (h *HitMap) Regions() []Region {
	return append([]Region(nil), h.regions...)
}

// ActionType represents the type of mouse action detected.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft  // shift+wheel up
	ActionScrollRight // shift+wheel down
	ActionDrag
	ActionDragEnd
)

// Action represents a processed mouse event.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int  // screen coordinates
	Extend bool // shift was held: extend the selection
	Delta  int  // scroll amount, negative is up or left
}

// Handler combines a HitMap with click timing and drag state.
type Handler struct {
	HitMap *HitMap

	lastClickX      int
	lastClickY      int
	lastClickTime   time.Time
	lastClickRegion string

	dragging   bool
	dragRegion string

	now func() time.Time
}

// NewHandler creates a new mouse handler.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// IsDragging returns true while the left button is held after a press in a
// region.
func (h *Handler) IsDragging() bool { return h.dragging }

// click classifies a press at (x, y) as a click or a double-click. A double
// click is a second press on the same cell of the same region in time.
func (h *Handler) click(region *Region, x, y int) ActionType {
	now := h.now()
	if region.ID == h.lastClickRegion && x == h.lastClickX && y == h.lastClickY &&
		now.Sub(h.lastClickTime) < DoubleClickInterval {
		// Reset so a third click starts over.
		h.lastClickRegion = ""
		h.lastClickTime = time.Time{}
		return ActionDoubleClick
	}
	h.lastClickRegion = region.ID
	h.lastClickTime = now
	h.lastClickX, h.lastClickY = x, y
	return ActionClick
}

// HandleMouse converts a tea.MouseMsg into an Action.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	switch msg.Action {
	case tea.MouseActionPress:
		region := h.HitMap.Test(msg.X, msg.Y)
		a := Action{Region: region, X: msg.X, Y: msg.Y, Extend: msg.Shift}
		switch msg.Button {
		case tea.MouseButtonLeft:
			if region == nil {
				return Action{Type: ActionNone}
			}
			a.Type = h.click(region, msg.X, msg.Y)
			h.dragging = true
			h.dragRegion = region.ID
		case tea.MouseButtonWheelUp:
			a.Type, a.Delta = ActionScrollUp, -ScrollLines
			if msg.Shift {
				a.Type, a.Delta = ActionScrollLeft, -ScrollColumns
			}
		case tea.MouseButtonWheelDown:
			a.Type, a.Delta = ActionScrollDown, ScrollLines
			if msg.Shift {
				a.Type, a.Delta = ActionScrollRight, ScrollColumns
			}
		case tea.MouseButtonWheelLeft:
			a.Type, a.Delta = ActionScrollLeft, -ScrollColumns
		case tea.MouseButtonWheelRight:
			a.Type, a.Delta = ActionScrollRight, ScrollColumns
		default:
			return Action{Type: ActionNone}
		}
		a.Extend = a.Extend && a.Type == ActionClick
		return a

	case tea.MouseActionRelease:
		if h.dragging {
			h.dragging = false
			h.dragRegion = ""
			return Action{Type: ActionDragEnd, X: msg.X, Y: msg.Y}
		}

	case tea.MouseActionMotion:
		if h.dragging {
			for i := range h.HitMap.regions {
				if h.HitMap.regions[i].ID == h.dragRegion {
					return Action{Type: ActionDrag, Region: &h.HitMap.regions[i], X: msg.X, Y: msg.Y, Extend: true}
				}
			}
		}
	}
	return Action{Type: ActionNone}
}
