package design

import "testing"

func TestMergeOverDefault(t *testing.T) {
	partial := &Config{
		ForegroundFill: &Fill{Type: FillSolid, Color: "#112233"},
		Margin:         Int(0),
	}
	got := Merge(Default(), partial)

	if got.ForegroundFill.Color != "#112233" {
		t.Fatalf("foreground color = %q, want #112233", got.ForegroundFill.Color)
	}
	if got.ModuleShape != DefaultShape {
		t.Fatalf("module shape = %q, want default %q", got.ModuleShape, DefaultShape)
	}
	if got.BackgroundFill == nil || got.BackgroundFill.Color != DefaultBackgroundColor {
		t.Fatalf("background lost in merge: %+v", got.BackgroundFill)
	}
	if got.Margin == nil || *got.Margin != 0 {
		t.Fatalf("explicit zero margin not kept: %v", got.Margin)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	base := Default()
	partial := &Config{Logo: &Logo{URL: "https://example.com/logo.png"}}
	got := Merge(base, partial)

	got.Logo.URL = "changed"
	got.ForegroundFill.Color = "#ffffff"

	if partial.Logo.URL != "https://example.com/logo.png" {
		t.Fatal("merge result aliases partial")
	}
	if base.ForegroundFill.Color != DefaultForegroundColor {
		t.Fatal("merge result aliases base")
	}
}

func TestMergeNilBase(t *testing.T) {
	got := Merge(nil, &Config{Finder: "rounded"})
	if got.Finder != "rounded" {
		t.Fatalf("finder = %q", got.Finder)
	}
	if got.ForegroundFill != nil {
		t.Fatal("nil base should not gain defaults")
	}
}

func TestCloneNil(t *testing.T) {
	var c *Config
	if c.Clone() != nil {
		t.Fatal("clone of nil should be nil")
	}
}
