package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Glyph style variants.
const (
	VariantThicken = "thicken"
	VariantFill    = "fill"
)

// Config describes one render of the promo sequence.
type Config struct {
	AssetPath  string `yaml:"asset_path"`
	BrandColor string `yaml:"brand_color"`

	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FrameWidth  float64 `yaml:"frame_width"`  // scene units across
	FrameHeight float64 `yaml:"frame_height"` // scene units down
	FPS         int     `yaml:"fps"`
	Background  string  `yaml:"background"`

	Variant   string `yaml:"variant"`
	Outro     *bool  `yaml:"outro"` // nil: variant default
	GlyphSkip int    `yaml:"glyph_skip"`

	FontFamily string `yaml:"font_family"`
	FontPath   string `yaml:"font_path"`

	GlowSigma float64 `yaml:"glow_sigma"`
	QRURL     string  `yaml:"qr_url"`

	Glyph       Sequence `yaml:"glyph"`
	Placeholder Sequence `yaml:"placeholder"`

	OutputVideo  string `yaml:"output"`
	PreviewAPNG  string `yaml:"preview_apng"`
	PreviewSize  int    `yaml:"preview_size"`
	AudioPath    string `yaml:"audio"`
	TimelinePath string `yaml:"timeline"`
	Workers      int    `yaml:"workers"`
	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`
	ShowStats    bool   `yaml:"stats"`
	DryRun       bool   `yaml:"dry_run"`
	BuildVersion string `yaml:"-"`
}

// Sequence holds the layout and timing of one branch.
type Sequence struct {
	CornerRadius float64 `yaml:"corner_radius"`
	SquareSize   float64 `yaml:"square_size"`
	ScaleFactor  float64 `yaml:"scale_factor"`

	// GlyphHeight is the height the whole asset is fitted to before GlyphScale applies.
	GlyphHeight float64 `yaml:"glyph_height"`
	GlyphScale  float64 `yaml:"glyph_scale"`
	TitleSize   float64 `yaml:"title_size"`
	ThinStroke  float64 `yaml:"thin_stroke"`
	ThickStroke float64 `yaml:"thick_stroke"`

	WordmarkSize float64 `yaml:"wordmark_size"`
	WordmarkBuff float64 `yaml:"wordmark_buff"`
	Lift         float64 `yaml:"lift"`
	OutroScale   float64 `yaml:"outro_scale"`

	Durations Durations `yaml:"durations"`
}

// Durations in seconds. A zero wait is skipped.
type Durations struct {
	IntroWait     float64 `yaml:"intro_wait"`
	FadeIn        float64 `yaml:"fade_in"`
	Grow          float64 `yaml:"grow"`
	PreTraceWait  float64 `yaml:"pre_trace_wait"`
	Trace         float64 `yaml:"trace"`
	PostTraceWait float64 `yaml:"post_trace_wait"`
	Restyle       float64 `yaml:"restyle"`
	RestyleFade   float64 `yaml:"restyle_fade"` // outline fade-out during the fill cross-fade
	Hold          float64 `yaml:"hold"`
	Lift          float64 `yaml:"lift"`
	Write         float64 `yaml:"write"`
	PostWrite     float64 `yaml:"post_write"`
	OutroScale    float64 `yaml:"outro_scale"`
	OutroFade     float64 `yaml:"outro_fade"`
	FinalWait     float64 `yaml:"final_wait"`
}

// Default returns the promo as originally authored: 1080x1080, 8x8 scene units.
func Default() *Config {
	return &Config{
		BrandColor:  "#9938EB",
		Width:       1080,
		Height:      1080,
		FrameWidth:  8,
		FrameHeight: 8,
		FPS:         60,
		Background:  "#000000",
		Variant:     VariantThicken,
		GlyphSkip:   1,
		FontFamily:  "Helvetica",
		PreviewSize: 360,
		Glyph: Sequence{
			CornerRadius: 1,
			SquareSize:   5,
			ScaleFactor:  1.15,
			GlyphHeight:  2,
			GlyphScale:   2,
			ThinStroke:   2,
			ThickStroke:  35,
			WordmarkSize: 64,
			WordmarkBuff: 0.3,
			Lift:         1,
			OutroScale:   0.7,
			Durations: Durations{
				IntroWait:   0.5,
				FadeIn:      1.0,
				Grow:        0.8,
				Trace:       1.5,
				Restyle:     0.6,
				RestyleFade: 0.5,
				Hold:        0.5,
				Lift:        0.8,
				Write:       1.0,
				PostWrite:   0.8,
				OutroScale:  1.0,
				OutroFade:   1.2,
				FinalWait:   0.5,
			},
		},
		Placeholder: Sequence{
			CornerRadius: 0.5,
			SquareSize:   5,
			ScaleFactor:  1.15,
			TitleSize:    72,
			ThinStroke:   2,
			ThickStroke:  35,
			WordmarkSize: 48,
			WordmarkBuff: 1,
			Lift:         1,
			OutroScale:   0.7,
			Durations: Durations{
				IntroWait:     0.5,
				FadeIn:        1.0,
				Grow:          0.8,
				PreTraceWait:  0.3,
				Trace:         1.5,
				PostTraceWait: 0.2,
				Restyle:       1.0,
				RestyleFade:   0.5,
				Hold:          0.5,
				Lift:          0.8,
				Write:         1.6,
				OutroScale:    1.0,
				OutroFade:     1.2,
			},
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.Merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge decodes a YAML file over the current values. An empty path is a no-op.
func (c *Config) Merge(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	return nil
}

// ApplyPreset sets the output size for an aspect ratio. The shorter side spans 8 scene units
// so the icon keeps its size on every format.
func (c *Config) ApplyPreset(name string) error {
	switch name {
	case "":
		return nil
	case "1:1":
		c.Width, c.Height = 1080, 1080
	case "9:16":
		c.Width, c.Height = 1080, 1920
	case "16:9":
		c.Width, c.Height = 1920, 1080
	default:
		return fmt.Errorf("%w: preset %q (1:1|9:16|16:9)", ErrInvalid, name)
	}
	c.FitFrame()
	return nil
}

// FitFrame derives the scene frame from the pixel size, keeping 8 units on the shorter side.
func (c *Config) FitFrame() {
	const short = 8.0
	if c.Width <= 0 || c.Height <= 0 {
		return
	}
	if c.Width <= c.Height {
		c.FrameWidth = short
		c.FrameHeight = short * float64(c.Height) / float64(c.Width)
	} else {
		c.FrameHeight = short
		c.FrameWidth = short * float64(c.Width) / float64(c.Height)
	}
}

// envPrefix marks variables read by ApplyEnv.
const envPrefix = "DREAMS_"

// ApplyEnv overrides fields from DREAMS_* environment variables.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"ASSET":       &c.AssetPath,
		"BRAND_COLOR": &c.BrandColor,
		"VARIANT":     &c.Variant,
		"FONT_PATH":   &c.FontPath,
		"OUTPUT":      &c.OutputVideo,
		"AUDIO":       &c.AudioPath,
		"ENCODER":     &c.VideoEncoder,
		"QR_URL":      &c.QRURL,
	}
	for k, dst := range str {
		if v, ok := os.LookupEnv(envPrefix + k); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WIDTH":   &c.Width,
		"HEIGHT":  &c.Height,
		"FPS":     &c.FPS,
		"WORKERS": &c.Workers,
	}
	for k, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + k)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalid, envPrefix, k, v)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(envPrefix + "OUTRO"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sOUTRO=%q", ErrInvalid, envPrefix, v)
		}
		c.Outro = &b
	}
	return nil
}

// Validate checks the fields the renderer depends on.
func (c *Config) Validate() error {
	if _, err := colorful.Hex(c.BrandColor); err != nil {
		return fmt.Errorf("%w: brand_color %q", ErrInvalid, c.BrandColor)
	}
	if _, err := colorful.Hex(c.Background); err != nil {
		return fmt.Errorf("%w: background %q", ErrInvalid, c.Background)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width%2 != 0 || c.Height%2 != 0 {
		// yuv420p требует чётных размеров
		return fmt.Errorf("%w: размер %dx%d должен быть положительным и чётным", ErrInvalid, c.Width, c.Height)
	}
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame %gx%g", ErrInvalid, c.FrameWidth, c.FrameHeight)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	switch c.Variant {
	case VariantThicken, VariantFill:
	default:
		return fmt.Errorf("%w: variant %q (thicken|fill)", ErrInvalid, c.Variant)
	}
	if c.GlyphSkip < 0 {
		return fmt.Errorf("%w: glyph_skip %d", ErrInvalid, c.GlyphSkip)
	}
	if c.PreviewAPNG != "" && c.PreviewSize <= 0 {
		return fmt.Errorf("%w: preview_size %d при включённом превью", ErrInvalid, c.PreviewSize)
	}
	return nil
}

// OutroEnabled resolves the final shrink-and-fade. The fill variant ends with it, thicken does not.
func (c *Config) OutroEnabled() bool {
	if c.Outro != nil {
		return *c.Outro
	}
	return c.Variant == VariantFill
}

// Brand returns the parsed brand colour. Call Validate first.
func (c *Config) Brand() colorful.Color {
	col, _ := colorful.Hex(c.BrandColor)
	return col
}

// BackgroundColor returns the parsed frame colour. Call Validate first.
func (c *Config) BackgroundColor() colorful.Color {
	col, _ := colorful.Hex(c.Background)
	return col
}

// PixelsPerUnit converts scene units to pixels along x.
func (c *Config) PixelsPerUnit() float64 {
	return float64(c.Width) / c.FrameWidth
}
