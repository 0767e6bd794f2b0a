package design

// FillType discriminates the foreground fill variants.
type FillType string

const (
	FillSolid    FillType = "solid"
	FillGradient FillType = "gradient"
	FillImage    FillType = "image"
)

// BackgroundType discriminates the background variants.
type BackgroundType string

const (
	BackgroundTransparent BackgroundType = "transparent"
	BackgroundSolid       BackgroundType = "solid"
)

// Config is the in-app description of how a QR code should be drawn.
// Every field is optional: a nil pointer or empty string means "not set" and is
// resolved to a default only when the config is converted for the renderer.
type Config struct {
	// Shape keys are opaque to this module and passed to the renderer as-is.
	ModuleShape string `json:"moduleShape,omitempty"`
	Finder      string `json:"finder,omitempty"`
	FinderDot   string `json:"finderDot,omitempty"`

	ForegroundFill *Fill       `json:"foregroundFill,omitempty"`
	BackgroundFill *Background `json:"backgroundFill,omitempty"`

	// Eye colors fall back to the foreground color when empty.
	FinderColor    string `json:"finderColor,omitempty"`
	FinderDotColor string `json:"finderDotColor,omitempty"`

	Logo       *Logo          `json:"logo,omitempty"`
	Text       *Text          `json:"text,omitempty"`
	Decoration *Decoration    `json:"decoration,omitempty"`
	Sticker    *StickerColors `json:"sticker,omitempty"`
	AI         *AI            `json:"ai,omitempty"`

	ErrorCorrection string `json:"errorCorrection,omitempty"`
	Margin          *int   `json:"margin,omitempty"`
}

// Fill is the foreground fill. Which of Color, Gradient or ImageURL is
// meaningful depends on Type.
type Fill struct {
	Type     FillType  `json:"type"`
	Color    string    `json:"color,omitempty"`
	Gradient *Gradient `json:"gradient,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

type Gradient struct {
	Type  string         `json:"type"` // linear | radial
	Stops []GradientStop `json:"stops"`
	Angle float64        `json:"angle"`
}

type GradientStop struct {
	Color   string   `json:"color"`
	Offset  float64  `json:"offset"`
	Opacity *float64 `json:"opacity,omitempty"`
}

type Background struct {
	Type  BackgroundType `json:"type"`
	Color string         `json:"color,omitempty"`
}

// Logo geometry is expressed relative to the code: Scale is a fraction of the
// code width, PositionX/PositionY locate the logo center in [0,1].
type Logo struct {
	URL        string          `json:"url"`
	Scale      *float64        `json:"scale,omitempty"`
	PositionX  *float64        `json:"positionX,omitempty"`
	PositionY  *float64        `json:"positionY,omitempty"`
	Rotation   float64         `json:"rotation,omitempty"`
	Background *LogoBackground `json:"background,omitempty"`
}

type LogoBackground struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Shape   string   `json:"shape,omitempty"` // circle | square
	Color   string   `json:"color,omitempty"`
	Scale   *float64 `json:"scale,omitempty"`
}

type Text struct {
	Content         string `json:"content,omitempty"`
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	FontSize        int    `json:"fontSize,omitempty"`
}

// Decoration covers the outline and advanced-shape frame drawn around the code.
type Decoration struct {
	Shape          string `json:"shape,omitempty"`
	OutlineEnabled bool   `json:"outlineEnabled,omitempty"`
	OutlineColor   string `json:"outlineColor,omitempty"`
	FrameColor     string `json:"frameColor,omitempty"`
}

// StickerColors is only present for sticker types that take colors.
type StickerColors struct {
	Type           string `json:"type"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	TextColor      string `json:"textColor,omitempty"`
}

type AI struct {
	Enabled   bool     `json:"enabled"`
	Prompt    string   `json:"prompt,omitempty"`
	Strength  *float64 `json:"strength,omitempty"`
	Steps     int      `json:"steps,omitempty"`
	Generated bool     `json:"generated,omitempty"`
}
