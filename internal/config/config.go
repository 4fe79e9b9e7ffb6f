package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// EntityConfig tunes one population of moving bodies.
type EntityConfig struct {
	Count    int     `json:"count"`
	Radius   float64 `json:"radius"`
	Margin   float64 `json:"margin"`
	MinSpeed float64 `json:"minSpeed"`
	MaxSpeed float64 `json:"maxSpeed"`
	Color    string  `json:"color"`
	Softness float64 `json:"softness"`
}

// InfluenceConfig controls the pairwise force between blobs.
// A positive Strength attracts, a negative one repels, zero disables it.
type InfluenceConfig struct {
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
	Wander   float64 `json:"wander"`
}

type SurfaceConfig struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Fill    bool    `json:"fill"`
}

type ContainerConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type TextConfig struct {
	Lines      []string `json:"lines"`
	FontSize   float64  `json:"fontSize"`
	Foreground string   `json:"foreground"`
	Background string   `json:"background"`
}

type Config struct {
	Seed        int64           `json:"seed"`
	Blobs       EntityConfig    `json:"blobs"`
	Particles   EntityConfig    `json:"particles"`
	Influence   InfluenceConfig `json:"influence"`
	Surface     SurfaceConfig   `json:"surface"`
	Container   ContainerConfig `json:"container"`
	Scale       float64         `json:"scale"`
	PixelRatio  float64         `json:"pixelRatio"`
	RatioCap    float64         `json:"pixelRatioCap"`
	Text        TextConfig      `json:"text"`
	Backdrop    string          `json:"backdrop"`
	FPS         int             `json:"fps"`
	ScalingMode string          `json:"scalingMode"`
}

// Default returns the stock lamp.
func Default() Config {
	return Config{
		Seed: 1,
		Blobs: EntityConfig{
			Count:    6,
			Radius:   0.16,
			Margin:   0.22,
			MinSpeed: 0.03,
			MaxSpeed: 0.09,
			Color:    "#ff5a36",
			Softness: 0.35,
		},
		Particles: EntityConfig{
			Count:    60,
			Radius:   0.006,
			Margin:   0.08,
			MinSpeed: 0.01,
			MaxSpeed: 0.05,
			Color:    "#ffd9a0c0",
		},
		Influence: InfluenceConfig{
			Radius:   0.35,
			Strength: -0.02,
			Wander:   0.01,
		},
		Surface: SurfaceConfig{
			Width:   450,
			Height:  410,
			OffsetX: -265,
			OffsetY: -20,
		},
		Container: ContainerConfig{Width: 900, Height: 600},
		Scale:     1,
		RatioCap:  2,
		Text: TextConfig{
			Lines:      []string{"LAVA", "LAMP"},
			FontSize:   140,
			Foreground: "#f4efe6",
			Background: "#1b1020",
		},
		FPS:         60,
		ScalingMode: "fit",
	}
}

// Load decodes a JSON file over Default and validates the result.
// An empty path yields the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func invalid(field, format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, v...))
}

func (e EntityConfig) validate(name string) error {
	if e.Count <= 0 {
		return invalid(name+".count", "must be positive, got %d", e.Count)
	}
	if e.Radius <= 0 {
		return invalid(name+".radius", "must be positive, got %g", e.Radius)
	}
	if e.Margin < 0 || e.Margin >= 0.5 {
		return invalid(name+".margin", "must be in [0, 0.5), got %g", e.Margin)
	}
	if e.MinSpeed < 0 {
		return invalid(name+".minSpeed", "must not be negative, got %g", e.MinSpeed)
	}
	if e.MaxSpeed < e.MinSpeed {
		return invalid(name+".maxSpeed", "%g is below minSpeed %g", e.MaxSpeed, e.MinSpeed)
	}
	if e.Softness < 0 || e.Softness > 1 {
		return invalid(name+".softness", "must be in [0, 1], got %g", e.Softness)
	}
	if _, err := ParseColor(e.Color); err != nil {
		return invalid(name+".color", "%v", err)
	}
	return nil
}

// Validate rejects out-of-range tunables. Nothing is clamped.
func (c Config) Validate() error {
	if err := c.Blobs.validate("blobs"); err != nil {
		return err
	}
	if err := c.Particles.validate("particles"); err != nil {
		return err
	}
	if c.Influence.Radius < 0 {
		return invalid("influence.radius", "must not be negative, got %g", c.Influence.Radius)
	}
	if c.Influence.Wander < 0 {
		return invalid("influence.wander", "must not be negative, got %g", c.Influence.Wander)
	}
	if !c.Surface.Fill && (c.Surface.Width <= 0 || c.Surface.Height <= 0) {
		return invalid("surface", "size must be positive, got %dx%d", c.Surface.Width, c.Surface.Height)
	}
	if c.Container.Width <= 0 || c.Container.Height <= 0 {
		return invalid("container", "size must be positive, got %dx%d", c.Container.Width, c.Container.Height)
	}
	if c.Scale <= 0 {
		return invalid("scale", "must be positive, got %g", c.Scale)
	}
	if c.RatioCap < 1 {
		return invalid("pixelRatioCap", "must be at least 1, got %g", c.RatioCap)
	}
	if c.PixelRatio < 0 {
		return invalid("pixelRatio", "must not be negative, got %g", c.PixelRatio)
	}
	if c.FPS <= 0 {
		return invalid("fps", "must be positive, got %d", c.FPS)
	}
	if c.Text.FontSize <= 0 {
		return invalid("text.fontSize", "must be positive, got %g", c.Text.FontSize)
	}
	if _, err := ParseColor(c.Text.Foreground); err != nil {
		return invalid("text.foreground", "%v", err)
	}
	if _, err := ParseColor(c.Text.Background); err != nil {
		return invalid("text.background", "%v", err)
	}
	switch c.ScalingMode {
	case "fit", "fill":
	default:
		return invalid("scalingMode", "must be fit or fill, got %q", c.ScalingMode)
	}
	return nil
}

// ParseColor accepts "#rrggbb", "#rrggbbaa" or three/four space separated
// floats in [0, 1]. Alpha is straight, not premultiplied.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return color.NRGBA{}, fmt.Errorf("bad hex colour %q", s)
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad hex colour %q", s)
		}
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}

	parts := strings.Fields(s)
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	ch := [4]float64{1, 1, 1, 1}
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 1 {
			return color.NRGBA{}, fmt.Errorf("bad colour component %q", p)
		}
		ch[i] = f
	}
	return color.NRGBA{
		R: uint8(ch[0]*255 + 0.5),
		G: uint8(ch[1]*255 + 0.5),
		B: uint8(ch[2]*255 + 0.5),
		A: uint8(ch[3]*255 + 0.5),
	}, nil
}

// MustColor is ParseColor for values that already passed Validate.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
