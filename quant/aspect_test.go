package quant

import (
	"errors"
	"testing"
)

func TestAspectRatioRatio(t *testing.T) {
	for _, tc := range []struct {
		ar   AspectRatio
		w, h int
	}{
		{AspectSquare, 1, 1},
		{AspectPortrait, 3, 4},
		{AspectLandscape, 4, 3},
		{AspectWide, 16, 9},
		{AspectTall, 9, 16},
	} {
		w, h, err := tc.ar.Ratio()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.ar, err)
			continue
		}
		if w != tc.w || h != tc.h {
			t.Errorf("%s: have %d:%d, want %d:%d", tc.ar, w, h, tc.w, tc.h)
		}
	}
}

func TestAspectRatioInvalid(t *testing.T) {
	for _, ar := range []AspectRatio{"", "wide", "4:", "0:3", "4:0", "-1:2"} {
		if _, _, err := ar.Ratio(); err == nil {
			t.Errorf("%q: expected error", ar)
		}
	}
}

func TestGridSize(t *testing.T) {
	for _, tc := range []struct {
		height int
		ar     AspectRatio
		w, h   int
	}{
		{128, AspectLandscape, 171, 128}, // round(128*4/3)
		{128, AspectSquare, 128, 128},
		{64, AspectWide, 114, 64}, // round(64*16/9)
		{256, AspectPortrait, 192, 256},
		{512, AspectTall, 288, 512},
	} {
		w, h, err := GridSize(tc.height, tc.ar)
		if err != nil {
			t.Errorf("%d@%s: unexpected error: %v", tc.height, tc.ar, err)
			continue
		}
		if w != tc.w || h != tc.h {
			t.Errorf("%d@%s: have %dx%d, want %dx%d", tc.height, tc.ar, w, h, tc.w, tc.h)
		}
	}
}

func TestGridSizeInvalidHeight(t *testing.T) {
	_, _, err := GridSize(0, AspectSquare)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("have %v, want DimensionError", err)
	}
	if dimErr.Dim != "grid height" {
		t.Errorf("wrong dimension named: %q", dimErr.Dim)
	}
}
