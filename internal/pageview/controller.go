// Package pageview tracks the transient per-document view state: current
// page, zoom level, and layout expansion. It never persists anything and
// never errors; out-of-range requests clamp or no-op.
package pageview

import (
	"regexp"
	"strconv"
)

const (
	ZoomMin     = 50
	ZoomMax     = 150
	ZoomStep    = 10
	ZoomDefault = 100
)

// Controller holds the view state for one open document.
type Controller struct {
	page        int
	zoom        int
	pageCount   int
	provisional bool
	expanded    bool
}

// New returns a controller on page 1 at the default zoom. The initial count
// is treated as a provisional guess until SetPageCount delivers the
// authoritative value from the backend.
func New(pageCount int) *Controller {
	if pageCount < 1 {
		pageCount = 1
	}
	return &Controller{
		page:        1,
		zoom:        ZoomDefault,
		pageCount:   pageCount,
		provisional: true,
	}
}

func (c *Controller) Page() int      { return c.page }
func (c *Controller) PageCount() int { return c.pageCount }
func (c *Controller) Zoom() int      { return c.zoom }
func (c *Controller) Expanded() bool { return c.expanded }

// Provisional reports whether the page count is still a local guess.
func (c *Controller) Provisional() bool { return c.provisional }

// NextPage advances one page, clamping silently at the last page.
func (c *Controller) NextPage() {
	if c.page < c.pageCount {
		c.page++
	}
}

// PrevPage steps back one page, clamping silently at page 1.
func (c *Controller) PrevPage() {
	if c.page > 1 {
		c.page--
	}
}

// ZoomIn raises zoom by one step up to ZoomMax.
func (c *Controller) ZoomIn() {
	c.zoom += ZoomStep
	if c.zoom > ZoomMax {
		c.zoom = ZoomMax
	}
}

// ZoomOut lowers zoom by one step down to ZoomMin.
func (c *Controller) ZoomOut() {
	c.zoom -= ZoomStep
	if c.zoom < ZoomMin {
		c.zoom = ZoomMin
	}
}

// ToggleExpanded flips the layout flag; it has no effect on paging.
func (c *Controller) ToggleExpanded() {
	c.expanded = !c.expanded
}

// SetPageCount records the authoritative page count and re-clamps the
// current page into the new bound.
func (c *Controller) SetPageCount(n int) {
	if n < 1 {
		n = 1
	}
	c.pageCount = n
	c.provisional = false
	if c.page > c.pageCount {
		c.page = c.pageCount
	}
}

// SetProvisionalCount applies a best-effort guess. It is ignored once an
// authoritative count has arrived.
func (c *Controller) SetProvisionalCount(n int) {
	if !c.provisional || n < 1 {
		return
	}
	c.pageCount = n
	if c.page > c.pageCount {
		c.page = c.pageCount
	}
}

// JumpToPage moves to page n and reports whether it did. Citation text is
// untrusted, so out-of-range targets are ignored rather than clamped.
func (c *Controller) JumpToPage(n int) bool {
	if n < 1 || n > c.pageCount {
		return false
	}
	c.page = n
	return true
}

var pageHintPattern = regexp.MustCompile(`(?i)\b([0-9]+)\s+pages?\b`)

// GuessPageCount scans extracted content for a textual "N pages" hint and
// returns the largest plausible match, or 0 when there is none.
func GuessPageCount(content string) int {
	best := 0
	for _, match := range pageHintPattern.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}
