package design

import "encoding/json"

// Documented defaults. The transformer resolves unset fields to these values
// in both directions, which is what makes the round trip lossless.
const (
	DefaultForegroundColor = "#000000"
	DefaultBackgroundColor = "#ffffff"
	DefaultShape           = "square"
	DefaultDecoration      = "none"
	DefaultGradientType    = "linear"

	DefaultLogoScale           = 0.2
	DefaultLogoPosition        = 0.5
	DefaultLogoBackgroundShape = "circle"
	DefaultLogoBackgroundScale = 1.3

	DefaultErrorCorrection = "M"
	DefaultMargin          = 4

	DefaultText                = "SCAN ME"
	DefaultTextColor           = "#000000"
	DefaultTextBackgroundColor = "#ffffff"
	DefaultFontFamily          = "Arial"
	DefaultFontSize            = 16

	DefaultAIStrength = 0.5
	DefaultAISteps    = 30
)

// Default returns the skeleton a partial update is merged into when no config
// exists yet.
func Default() *Config {
	return &Config{
		ModuleShape: DefaultShape,
		Finder:      DefaultShape,
		FinderDot:   DefaultShape,
		ForegroundFill: &Fill{
			Type:  FillSolid,
			Color: DefaultForegroundColor,
		},
		BackgroundFill: &Background{
			Type:  BackgroundSolid,
			Color: DefaultBackgroundColor,
		},
		ErrorCorrection: DefaultErrorCorrection,
		Margin:          Int(DefaultMargin),
	}
}

// Merge applies the set top-level fields of partial over base and returns the
// result. Nested values are replaced, not merged. Neither input is modified.
func Merge(base, partial *Config) *Config {
	out := base.Clone()
	if out == nil {
		out = &Config{}
	}
	if partial == nil {
		return out
	}
	p := partial.Clone()

	if p.ModuleShape != "" {
		out.ModuleShape = p.ModuleShape
	}
	if p.Finder != "" {
		out.Finder = p.Finder
	}
	if p.FinderDot != "" {
		out.FinderDot = p.FinderDot
	}
	if p.ForegroundFill != nil {
		out.ForegroundFill = p.ForegroundFill
	}
	if p.BackgroundFill != nil {
		out.BackgroundFill = p.BackgroundFill
	}
	if p.FinderColor != "" {
		out.FinderColor = p.FinderColor
	}
	if p.FinderDotColor != "" {
		out.FinderDotColor = p.FinderDotColor
	}
	if p.Logo != nil {
		out.Logo = p.Logo
	}
	if p.Text != nil {
		out.Text = p.Text
	}
	if p.Decoration != nil {
		out.Decoration = p.Decoration
	}
	if p.Sticker != nil {
		out.Sticker = p.Sticker
	}
	if p.AI != nil {
		out.AI = p.AI
	}
	if p.ErrorCorrection != "" {
		out.ErrorCorrection = p.ErrorCorrection
	}
	if p.Margin != nil {
		out.Margin = p.Margin
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	// Config is plain data; a JSON round trip through its own tags is exact.
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }
