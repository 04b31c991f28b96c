package pageview

import "testing"

func TestPagingClampsAtBounds(t *testing.T) {
	t.Parallel()

	c := New(3)
	if c.Page() != 1 {
		t.Fatalf("new controller page = %d, want 1", c.Page())
	}

	for i := 0; i < 10; i++ {
		c.PrevPage()
	}
	if c.Page() != 1 {
		t.Fatalf("page after repeated prev = %d, want 1", c.Page())
	}

	for i := 0; i < 10; i++ {
		c.NextPage()
	}
	if c.Page() != 3 {
		t.Fatalf("page after repeated next = %d, want 3", c.Page())
	}
}

func TestZoomClampsAtBounds(t *testing.T) {
	t.Parallel()

	c := New(1)
	if c.Zoom() != ZoomDefault {
		t.Fatalf("default zoom = %d, want %d", c.Zoom(), ZoomDefault)
	}

	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	if c.Zoom() != ZoomMax {
		t.Fatalf("zoom after repeated zoom-in = %d, want %d", c.Zoom(), ZoomMax)
	}

	for i := 0; i < 20; i++ {
		c.ZoomOut()
	}
	if c.Zoom() != ZoomMin {
		t.Fatalf("zoom after repeated zoom-out = %d, want %d", c.Zoom(), ZoomMin)
	}

	c.ZoomIn()
	if c.Zoom() != ZoomMin+ZoomStep {
		t.Fatalf("zoom step = %d, want %d", c.Zoom(), ZoomMin+ZoomStep)
	}
}

func TestSetPageCountReclampsCurrentPage(t *testing.T) {
	t.Parallel()

	c := New(20)
	if !c.JumpToPage(15) {
		t.Fatal("jump to page 15 of 20 should succeed")
	}

	c.SetPageCount(12)
	if c.Page() != 12 {
		t.Fatalf("page after shrinking count = %d, want 12", c.Page())
	}
	if c.Provisional() {
		t.Fatal("count should no longer be provisional after SetPageCount")
	}
}

func TestProvisionalCountDoesNotOverrideAuthoritative(t *testing.T) {
	t.Parallel()

	c := New(1)
	c.SetProvisionalCount(40)
	if c.PageCount() != 40 {
		t.Fatalf("provisional count not applied, got %d", c.PageCount())
	}

	c.SetPageCount(12)
	c.SetProvisionalCount(99)
	if c.PageCount() != 12 {
		t.Fatalf("guess overrode authoritative count, got %d", c.PageCount())
	}
}

func TestJumpToPageIgnoresOutOfRange(t *testing.T) {
	t.Parallel()

	c := New(12)
	if c.JumpToPage(99) {
		t.Fatal("jump past the last page should be ignored")
	}
	if c.JumpToPage(0) {
		t.Fatal("jump to page 0 should be ignored")
	}
	if c.Page() != 1 {
		t.Fatalf("ignored jumps moved the page to %d", c.Page())
	}
	if !c.JumpToPage(5) {
		t.Fatal("jump to a valid page should succeed")
	}
	if c.Page() != 5 {
		t.Fatalf("page = %d, want 5", c.Page())
	}
}

func TestGuessPageCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain hint", "This document has 42 pages in total.", 42},
		{"singular", "A short memo, 1 page only.", 1},
		{"case insensitive", "TOTAL: 7 PAGES", 7},
		{"largest wins", "summary of 3 pages from a 120 pages report", 120},
		{"no hint", "nothing numeric here", 0},
		{"number without unit", "chapter 12 begins", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GuessPageCount(tt.in); got != tt.want {
				t.Fatalf("GuessPageCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
