package buffer

import (
	"testing"

	"github.com/okanek/tessera/pkg/color"
)

func TestFillRect_OpaqueRoundTrip(t *testing.T) {
	b := mustNew(t, 6, 4)

	b.FillRect(0, 0, 6, 4, color.Blue)

	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			cell, ok := b.Get(x, y)
			if !ok {
				t.Fatalf("Get(%d, %d) absent inside the fill", x, y)
			}
			want := Cell{Char: ' ', Foreground: DefaultForeground, Background: color.Blue, Attributes: 0}
			if cell != want {
				t.Fatalf("cell (%d, %d) = %+v, want %+v", x, y, cell, want)
			}
		}
	}
}

func TestFillRect_Clips(t *testing.T) {
	b := mustNew(t, 4, 4)

	b.FillRect(-2, -2, 100, 100, color.Red)
	b.FillRect(50, 50, 10, 10, color.Green)

	cell, _ := b.Get(0, 0)
	if cell.Background != color.Red {
		t.Errorf("clipped fill should cover the grid, got %+v", cell.Background)
	}
	cell, _ = b.Get(3, 3)
	if cell.Background != color.Red {
		t.Errorf("far corner = %+v, want red (green fill is fully outside)", cell.Background)
	}
}

func TestFillRect_TranslucentTintsText(t *testing.T) {
	b := mustNew(t, 10, 3)
	bg := color.Black
	b.DrawText("txt", 1, 1, color.Yellow, &bg, AttrBold, nil)

	b.FillRect(0, 0, 10, 3, color.Red.WithAlpha(0.5))

	cell, _ := b.Get(1, 1)
	if cell.Char != 't' {
		t.Errorf("glyph = %q, want preserved 't'", cell.Char)
	}
	if cell.Attributes != AttrBold {
		t.Errorf("attrs = %b, want preserved bold", cell.Attributes)
	}
	if cell.Foreground == color.Yellow {
		t.Error("foreground should be tinted by the translucent fill")
	}
}

func TestDrawBuffer_VerbatimCopy(t *testing.T) {
	dst := mustNew(t, 10, 10)
	dst.FillRect(0, 0, 10, 10, color.Blue)

	src := mustNew(t, 3, 2)
	src.Set(0, 0, 'S', color.White, color.Transparent, AttrBold)

	dst.DrawBuffer(4, 4, src)

	// Without respect-alpha even fully transparent cells copy verbatim.
	cell, _ := dst.Get(4, 4)
	if cell.Char != 'S' || cell.Background != color.Transparent {
		t.Errorf("cell = %+v, want verbatim copy", cell)
	}
	cell, _ = dst.Get(5, 5)
	if cell.Background != color.Transparent {
		t.Errorf("cell = %+v, want verbatim transparent copy", cell)
	}
}

func TestDrawBuffer_RespectAlphaSkipsTransparent(t *testing.T) {
	dst := mustNew(t, 10, 10)
	dst.FillRect(0, 0, 10, 10, color.Blue)

	src, err := NewRespectAlpha(3, 2)
	if err != nil {
		t.Fatalf("NewRespectAlpha error: %v", err)
	}
	// Clear leaves fully transparent cells; give one cell real content.
	src.Set(1, 0, 'S', color.White, color.Red, 0)

	dst.DrawBuffer(4, 4, src)

	cell, _ := dst.Get(4, 4)
	if cell.Background != color.Blue {
		t.Errorf("transparent source cell should be culled, got %+v", cell)
	}
	cell, _ = dst.Get(5, 4)
	if cell.Char != 'S' || cell.Background != color.Red {
		t.Errorf("opaque source cell = %+v, want drawn through", cell)
	}
}

func TestDrawBuffer_RespectAlphaBlends(t *testing.T) {
	dst := mustNew(t, 4, 4)
	dst.FillRect(0, 0, 4, 4, color.Blue)

	src, _ := NewRespectAlpha(1, 1)
	src.Set(0, 0, ' ', color.White, color.Red.WithAlpha(0.5), 0)

	dst.DrawBuffer(0, 0, src)

	cell, _ := dst.Get(0, 0)
	want := color.RGBA{R: 0.535887, G: 0, B: 0.464113, A: 1}
	if !cell.Background.NearlyEqual(want, blendEpsilon) {
		t.Errorf("composited background = %+v, want %+v", cell.Background, want)
	}
}

func TestDrawBufferRect_SubRectangle(t *testing.T) {
	dst := mustNew(t, 10, 10)
	src := mustNew(t, 4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, rune('a'+y*4+x), color.White, color.Black, 0)
		}
	}

	dst.DrawBufferRect(0, 0, src, Rect{X: 1, Y: 1, Width: 2, Height: 2})

	cell, _ := dst.Get(0, 0)
	if cell.Char != 'f' {
		t.Errorf("cell (0,0) = %q, want source (1,1) 'f'", cell.Char)
	}
	cell, _ = dst.Get(1, 1)
	if cell.Char != 'k' {
		t.Errorf("cell (1,1) = %q, want source (2,2) 'k'", cell.Char)
	}
	cell, _ = dst.Get(2, 2)
	if cell.Char == 'p' {
		t.Error("cells outside the sub-rect must not copy")
	}
}

func TestDrawBuffer_ClipsAtDestinationEdges(t *testing.T) {
	dst := mustNew(t, 4, 4)
	src := mustNew(t, 3, 3)
	src.FillRect(0, 0, 3, 3, color.Green)

	dst.DrawBuffer(-1, -1, src)
	dst.DrawBuffer(3, 3, src)

	cell, _ := dst.Get(0, 0)
	if cell.Background != color.Green {
		t.Errorf("cell (0,0) = %+v, want green from the negative-offset draw", cell.Background)
	}
	cell, _ = dst.Get(3, 3)
	if cell.Background != color.Green {
		t.Errorf("cell (3,3) = %+v, want green from the overflow draw", cell.Background)
	}
	cell, _ = dst.Get(2, 2)
	if cell.Background == color.Green {
		t.Error("cell (2,2) should be untouched by either clipped draw")
	}
}

func TestDrawBox_Borders(t *testing.T) {
	b := mustNew(t, 10, 5)

	b.DrawBox(Rect{X: 0, Y: 0, Width: 10, Height: 5}, BoxOptions{Sides: AllBorderSides()}, color.White, color.Black)

	cell, _ := b.Get(0, 0)
	if cell.Char != '┌' {
		t.Errorf("top-left = %q, want corner", cell.Char)
	}
	cell, _ = b.Get(9, 0)
	if cell.Char != '┐' {
		t.Errorf("top-right = %q, want corner", cell.Char)
	}
	cell, _ = b.Get(0, 4)
	if cell.Char != '└' {
		t.Errorf("bottom-left = %q, want corner", cell.Char)
	}
	cell, _ = b.Get(9, 4)
	if cell.Char != '┘' {
		t.Errorf("bottom-right = %q, want corner", cell.Char)
	}
	cell, _ = b.Get(5, 0)
	if cell.Char != '─' {
		t.Errorf("top edge = %q, want horizontal", cell.Char)
	}
	cell, _ = b.Get(0, 2)
	if cell.Char != '│' {
		t.Errorf("left edge = %q, want vertical", cell.Char)
	}
}

func TestDrawBox_RoundedAndFill(t *testing.T) {
	b := mustNew(t, 8, 4)

	b.DrawBox(Rect{X: 0, Y: 0, Width: 8, Height: 4}, BoxOptions{
		Sides:       AllBorderSides(),
		Fill:        true,
		BorderChars: RoundedBoxChars,
	}, color.White, color.Blue)

	cell, _ := b.Get(0, 0)
	if cell.Char != '╭' {
		t.Errorf("corner = %q, want rounded", cell.Char)
	}
	cell, _ = b.Get(3, 2)
	if cell.Background != color.Blue {
		t.Errorf("interior = %+v, want filled blue", cell.Background)
	}
}

func TestDrawBox_Title(t *testing.T) {
	b := mustNew(t, 16, 3)

	b.DrawBox(Rect{X: 0, Y: 0, Width: 16, Height: 3}, BoxOptions{
		Sides: AllBorderSides(),
		Title: "demo",
	}, color.White, color.Black)

	got := ""
	for x := 1; x < 8; x++ {
		cell, _ := b.Get(x, 0)
		got += string(cell.Char)
	}
	if got != " demo ─" {
		t.Errorf("title row = %q, want \" demo \" then border", got)
	}
}

func TestDrawBox_TooSmallIsNoop(t *testing.T) {
	b := mustNew(t, 4, 4)
	before, _ := b.Get(0, 0)

	b.DrawBox(Rect{X: 0, Y: 0, Width: 1, Height: 5}, BoxOptions{Sides: AllBorderSides()}, color.White, color.Black)

	after, _ := b.Get(0, 0)
	if before != after {
		t.Error("degenerate box should draw nothing")
	}
}
