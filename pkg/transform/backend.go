// Package transform converts between the in-app design model and the flat
// wire schema the rendering backend accepts.
//
// The two shapes are kept deliberately separate: the wire schema changes on the
// backend's schedule, the design model on the app's. Both functions are total;
// an incomplete input always produces a fully populated output.
package transform

// Wire values of BackendDesignConfig.FillType.
const (
	FillTypeSolid    = "solid"
	FillTypeGradient = "gradient"
	FillTypeImage    = "foreground_image"
)

// BackendDesignConfig is the design payload as the renderer expects it.
type BackendDesignConfig struct {
	FillType           string           `json:"fillType"`
	ForegroundColor    string           `json:"foregroundColor"`
	GradientFill       *BackendGradient `json:"gradientFill,omitempty"`
	ForegroundImageURL string           `json:"foregroundImageUrl,omitempty"`

	BackgroundEnabled bool   `json:"backgroundEnabled"`
	BackgroundColor   string `json:"backgroundColor"`

	Module    string `json:"module"`
	Finder    string `json:"finder"`
	FinderDot string `json:"finderDot"`

	EyeExternalColor string `json:"eyeExternalColor"`
	EyeInternalColor string `json:"eyeInternalColor"`

	LogoURL             string  `json:"logoUrl,omitempty"`
	LogoScale           float64 `json:"logoScale"`
	LogoPositionX       float64 `json:"logoPositionX"`
	LogoPositionY       float64 `json:"logoPositionY"`
	LogoRotate          float64 `json:"logoRotate"`
	LogoBackground      bool    `json:"logoBackground"`
	LogoBackgroundShape string  `json:"logoBackgroundShape"`
	LogoBackgroundFill  string  `json:"logoBackgroundFill"`
	LogoBackgroundScale float64 `json:"logoBackgroundScale"`

	TextEnabled         bool   `json:"textEnabled"`
	Text                string `json:"text"`
	TextColor           string `json:"textColor"`
	TextBackgroundColor string `json:"textBackgroundColor"`
	TextFontFamily      string `json:"textFontFamily"`
	TextFontSize        int    `json:"textFontSize"`

	Shape                string `json:"shape"`
	FrameColor           string `json:"frameColor,omitempty"`
	AdvancedShapeOutline bool   `json:"advancedShapeOutline"`
	OutlineColor         string `json:"outlineColor,omitempty"`

	StickerType           string `json:"stickerType,omitempty"`
	StickerPrimaryColor   string `json:"stickerPrimaryColor,omitempty"`
	StickerSecondaryColor string `json:"stickerSecondaryColor,omitempty"`
	StickerTextColor      string `json:"stickerTextColor,omitempty"`

	AIEnabled   bool    `json:"aiEnabled"`
	AIPrompt    string  `json:"aiPrompt,omitempty"`
	AIStrength  float64 `json:"aiStrength"`
	AISteps     int     `json:"aiSteps"`
	AIGenerated bool    `json:"aiGenerated"`

	ErrorCorrection string `json:"errorCorrection"`
	Margin          int    `json:"margin"`
}

// BackendGradient is the normalized gradient structure. Type is upper case
// (LINEAR, RADIAL).
type BackendGradient struct {
	Type   string             `json:"type"`
	Colors []BackendColorStop `json:"colors"`
	Angle  float64            `json:"angle"`
}

type BackendColorStop struct {
	Color   string  `json:"color"`
	Stop    float64 `json:"stop"`
	Opacity float64 `json:"opacity"`
}
