package transform

import (
	"strings"

	"github.com/zdunecki/qrwizard/pkg/design"
)

// ToBackend maps a design config onto the wire schema, filling every field the
// config leaves unset with its documented default. A nil config is valid.
func ToBackend(c *design.Config) BackendDesignConfig {
	if c == nil {
		c = &design.Config{}
	}

	out := BackendDesignConfig{
		Module:          orDefault(c.ModuleShape, design.DefaultShape),
		Finder:          orDefault(c.Finder, design.DefaultShape),
		FinderDot:       orDefault(c.FinderDot, design.DefaultShape),
		ErrorCorrection: orDefault(c.ErrorCorrection, design.DefaultErrorCorrection),
		Margin:          design.DefaultMargin,
	}
	if c.Margin != nil {
		out.Margin = *c.Margin
	}

	applyFill(&out, c.ForegroundFill)
	applyBackground(&out, c.BackgroundFill)

	out.EyeExternalColor = orDefault(c.FinderColor, out.ForegroundColor)
	out.EyeInternalColor = orDefault(c.FinderDotColor, out.ForegroundColor)

	applyLogo(&out, c.Logo)
	applyText(&out, c.Text)
	applyDecoration(&out, c.Decoration)
	applySticker(&out, c.Sticker)
	applyAI(&out, c.AI)

	return out
}

func applyFill(out *BackendDesignConfig, f *design.Fill) {
	if f == nil {
		out.FillType = FillTypeSolid
		out.ForegroundColor = design.DefaultForegroundColor
		return
	}

	switch f.Type {
	case design.FillGradient:
		out.FillType = FillTypeGradient
		out.GradientFill = toBackendGradient(f)
		out.ForegroundColor = orDefault(f.Color, out.GradientFill.Colors[0].Color)
	case design.FillImage:
		out.FillType = FillTypeImage
		out.ForegroundImageURL = f.ImageURL
		out.ForegroundColor = orDefault(f.Color, design.DefaultForegroundColor)
	default:
		out.FillType = FillTypeSolid
		out.ForegroundColor = orDefault(f.Color, design.DefaultForegroundColor)
	}
}

func toBackendGradient(f *design.Fill) *BackendGradient {
	g := f.Gradient
	if g == nil {
		g = &design.Gradient{}
	}
	bg := &BackendGradient{
		Type:  strings.ToUpper(orDefault(g.Type, design.DefaultGradientType)),
		Angle: g.Angle,
	}
	for _, s := range g.Stops {
		opacity := 1.0
		if s.Opacity != nil {
			opacity = *s.Opacity
		}
		bg.Colors = append(bg.Colors, BackendColorStop{
			Color:   orDefault(s.Color, design.DefaultForegroundColor),
			Stop:    s.Offset,
			Opacity: opacity,
		})
	}
	if len(bg.Colors) == 0 {
		base := orDefault(f.Color, design.DefaultForegroundColor)
		bg.Colors = []BackendColorStop{
			{Color: base, Stop: 0, Opacity: 1},
			{Color: base, Stop: 1, Opacity: 1},
		}
	}
	return bg
}

func applyBackground(out *BackendDesignConfig, b *design.Background) {
	out.BackgroundEnabled = true
	out.BackgroundColor = design.DefaultBackgroundColor
	if b == nil {
		return
	}
	if b.Type == design.BackgroundTransparent {
		out.BackgroundEnabled = false
		return
	}
	out.BackgroundColor = orDefault(b.Color, design.DefaultBackgroundColor)
}

func applyLogo(out *BackendDesignConfig, l *design.Logo) {
	out.LogoScale = design.DefaultLogoScale
	out.LogoPositionX = design.DefaultLogoPosition
	out.LogoPositionY = design.DefaultLogoPosition
	out.LogoBackground = true
	out.LogoBackgroundShape = design.DefaultLogoBackgroundShape
	out.LogoBackgroundFill = design.DefaultBackgroundColor
	out.LogoBackgroundScale = design.DefaultLogoBackgroundScale
	if l == nil {
		return
	}

	out.LogoURL = l.URL
	out.LogoScale = positiveOr(l.Scale, design.DefaultLogoScale)
	out.LogoPositionX = floatOr(l.PositionX, design.DefaultLogoPosition)
	out.LogoPositionY = floatOr(l.PositionY, design.DefaultLogoPosition)
	out.LogoRotate = l.Rotation
	if bg := l.Background; bg != nil {
		if bg.Enabled != nil {
			out.LogoBackground = *bg.Enabled
		}
		out.LogoBackgroundShape = orDefault(bg.Shape, design.DefaultLogoBackgroundShape)
		out.LogoBackgroundFill = orDefault(bg.Color, design.DefaultBackgroundColor)
		out.LogoBackgroundScale = positiveOr(bg.Scale, design.DefaultLogoBackgroundScale)
	}
}

func applyText(out *BackendDesignConfig, t *design.Text) {
	out.Text = design.DefaultText
	out.TextColor = design.DefaultTextColor
	out.TextBackgroundColor = design.DefaultTextBackgroundColor
	out.TextFontFamily = design.DefaultFontFamily
	out.TextFontSize = design.DefaultFontSize
	if t == nil {
		return
	}

	out.TextEnabled = true
	out.Text = orDefault(t.Content, design.DefaultText)
	out.TextColor = orDefault(t.Color, design.DefaultTextColor)
	out.TextBackgroundColor = orDefault(t.BackgroundColor, design.DefaultTextBackgroundColor)
	out.TextFontFamily = orDefault(t.FontFamily, design.DefaultFontFamily)
	if t.FontSize > 0 {
		out.TextFontSize = t.FontSize
	}
}

func applyDecoration(out *BackendDesignConfig, d *design.Decoration) {
	out.Shape = design.DefaultDecoration
	if d == nil {
		return
	}
	out.Shape = orDefault(d.Shape, design.DefaultDecoration)
	out.AdvancedShapeOutline = d.OutlineEnabled
	out.OutlineColor = d.OutlineColor
	out.FrameColor = d.FrameColor
}

func applySticker(out *BackendDesignConfig, s *design.StickerColors) {
	if s == nil {
		return
	}
	out.StickerType = s.Type
	out.StickerPrimaryColor = s.PrimaryColor
	out.StickerSecondaryColor = s.SecondaryColor
	out.StickerTextColor = s.TextColor
}

func applyAI(out *BackendDesignConfig, a *design.AI) {
	out.AIStrength = design.DefaultAIStrength
	out.AISteps = design.DefaultAISteps
	if a == nil {
		return
	}
	out.AIEnabled = a.Enabled
	out.AIPrompt = a.Prompt
	out.AIStrength = floatOr(a.Strength, design.DefaultAIStrength)
	if a.Steps > 0 {
		out.AISteps = a.Steps
	}
	out.AIGenerated = a.Generated
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// positiveOr is floatOr for sizes: a zero or negative scale draws nothing, so
// it resolves to the default like an unset one.
func positiveOr(v *float64, def float64) float64 {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}
