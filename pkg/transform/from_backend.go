package transform

import (
	"strings"

	"github.com/zdunecki/qrwizard/pkg/design"
)

// FromBackend is the inverse of ToBackend. Defaults mirror ToBackend so that
// FromBackend(ToBackend(c)) carries the same fill, colors, shape keys and logo
// geometry as c. Values that equal what ToBackend would have derived on its
// own (eye colors, full-opacity stops) are left unset.
func FromBackend(w BackendDesignConfig) design.Config {
	c := design.Config{
		ModuleShape:     orDefault(w.Module, design.DefaultShape),
		Finder:          orDefault(w.Finder, design.DefaultShape),
		FinderDot:       orDefault(w.FinderDot, design.DefaultShape),
		ErrorCorrection: orDefault(w.ErrorCorrection, design.DefaultErrorCorrection),
		Margin:          design.Int(w.Margin),
	}

	c.ForegroundFill = fromBackendFill(w)
	foreground := orDefault(w.ForegroundColor, design.DefaultForegroundColor)

	if w.EyeExternalColor != "" && !strings.EqualFold(w.EyeExternalColor, foreground) {
		c.FinderColor = w.EyeExternalColor
	}
	if w.EyeInternalColor != "" && !strings.EqualFold(w.EyeInternalColor, foreground) {
		c.FinderDotColor = w.EyeInternalColor
	}

	if w.BackgroundEnabled {
		c.BackgroundFill = &design.Background{
			Type:  design.BackgroundSolid,
			Color: orDefault(w.BackgroundColor, design.DefaultBackgroundColor),
		}
	} else {
		c.BackgroundFill = &design.Background{Type: design.BackgroundTransparent}
	}

	if w.LogoURL != "" || logoCustomized(w) {
		c.Logo = fromBackendLogo(w)
	}

	if w.TextEnabled {
		size := w.TextFontSize
		if size <= 0 {
			size = design.DefaultFontSize
		}
		c.Text = &design.Text{
			Content:         orDefault(w.Text, design.DefaultText),
			Color:           orDefault(w.TextColor, design.DefaultTextColor),
			BackgroundColor: orDefault(w.TextBackgroundColor, design.DefaultTextBackgroundColor),
			FontFamily:      orDefault(w.TextFontFamily, design.DefaultFontFamily),
			FontSize:        size,
		}
	}

	shape := orDefault(w.Shape, design.DefaultDecoration)
	if shape != design.DefaultDecoration || w.AdvancedShapeOutline || w.OutlineColor != "" || w.FrameColor != "" {
		c.Decoration = &design.Decoration{
			Shape:          shape,
			OutlineEnabled: w.AdvancedShapeOutline,
			OutlineColor:   w.OutlineColor,
			FrameColor:     w.FrameColor,
		}
	}

	if w.StickerType != "" {
		c.Sticker = &design.StickerColors{
			Type:           w.StickerType,
			PrimaryColor:   w.StickerPrimaryColor,
			SecondaryColor: w.StickerSecondaryColor,
			TextColor:      w.StickerTextColor,
		}
	}

	if w.AIEnabled || w.AIPrompt != "" || w.AIGenerated || aiCustomized(w) {
		steps := w.AISteps
		if steps <= 0 {
			steps = design.DefaultAISteps
		}
		c.AI = &design.AI{
			Enabled:   w.AIEnabled,
			Prompt:    w.AIPrompt,
			Strength:  design.Float(w.AIStrength),
			Steps:     steps,
			Generated: w.AIGenerated,
		}
	}

	return c
}

// fromBackendFill detects a gradient by a populated gradientFill rather than
// the fillType string, so a backend that drops or renames fillType still
// round-trips gradients.
func fromBackendFill(w BackendDesignConfig) *design.Fill {
	color := orDefault(w.ForegroundColor, design.DefaultForegroundColor)

	if w.GradientFill != nil && len(w.GradientFill.Colors) > 0 {
		g := &design.Gradient{
			Type:  strings.ToLower(orDefault(w.GradientFill.Type, design.DefaultGradientType)),
			Angle: w.GradientFill.Angle,
		}
		for _, s := range w.GradientFill.Colors {
			stop := design.GradientStop{Color: s.Color, Offset: s.Stop}
			if s.Opacity != 1 {
				stop.Opacity = design.Float(s.Opacity)
			}
			g.Stops = append(g.Stops, stop)
		}
		f := &design.Fill{Type: design.FillGradient, Gradient: g}
		if !strings.EqualFold(color, g.Stops[0].Color) {
			f.Color = color
		}
		return f
	}

	if w.FillType == FillTypeImage || w.ForegroundImageURL != "" {
		f := &design.Fill{Type: design.FillImage, ImageURL: w.ForegroundImageURL}
		if color != design.DefaultForegroundColor {
			f.Color = color
		}
		return f
	}

	return &design.Fill{Type: design.FillSolid, Color: color}
}

// logoCustomized reports whether any logo field differs from what ToBackend
// sends for a config without a logo. ToBackend always writes a positive
// scale, so a zero scale means the logo fields were not sent at all.
func logoCustomized(w BackendDesignConfig) bool {
	if w.LogoScale <= 0 {
		return false
	}
	return w.LogoScale != design.DefaultLogoScale ||
		w.LogoPositionX != design.DefaultLogoPosition ||
		w.LogoPositionY != design.DefaultLogoPosition ||
		w.LogoRotate != 0 ||
		!w.LogoBackground ||
		orDefault(w.LogoBackgroundShape, design.DefaultLogoBackgroundShape) != design.DefaultLogoBackgroundShape ||
		orDefault(w.LogoBackgroundFill, design.DefaultBackgroundColor) != design.DefaultBackgroundColor ||
		w.LogoBackgroundScale != design.DefaultLogoBackgroundScale
}

// aiCustomized reports whether strength or steps were set away from their
// defaults. As with the logo, ToBackend always writes positive steps.
func aiCustomized(w BackendDesignConfig) bool {
	if w.AISteps <= 0 {
		return false
	}
	return w.AIStrength != design.DefaultAIStrength || w.AISteps != design.DefaultAISteps
}

func fromBackendLogo(w BackendDesignConfig) *design.Logo {
	scale := w.LogoScale
	if scale <= 0 {
		scale = design.DefaultLogoScale
	}
	bgScale := w.LogoBackgroundScale
	if bgScale <= 0 {
		bgScale = design.DefaultLogoBackgroundScale
	}
	return &design.Logo{
		URL:       w.LogoURL,
		Scale:     design.Float(scale),
		PositionX: design.Float(w.LogoPositionX),
		PositionY: design.Float(w.LogoPositionY),
		Rotation:  w.LogoRotate,
		Background: &design.LogoBackground{
			Enabled: design.Bool(w.LogoBackground),
			Shape:   orDefault(w.LogoBackgroundShape, design.DefaultLogoBackgroundShape),
			Color:   orDefault(w.LogoBackgroundFill, design.DefaultBackgroundColor),
			Scale:   design.Float(bgScale),
		},
	}
}
