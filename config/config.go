// Package config loads the YAML configuration of the presence server and the demos.
package config

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/presence"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config is the root of a configuration file. Either section may be omitted.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Demo   DemoConfig   `yaml:"demo"`
}

// ServerConfig configures the presence server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	RoomSize  int    `yaml:"roomSize"`
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queueSize"`
	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`
}

// WindowConfig configures the demo window. Samples enables multisampling when positive.
type WindowConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Title      string  `yaml:"title"`
	VSync      *bool   `yaml:"vsync"`
	FrameLimit float64 `yaml:"frameLimit"`
	Samples    int     `yaml:"samples"`
}

// CameraConfig places the demo camera. FOV is in degrees.
type CameraConfig struct {
	Position *mgl32.Vec3 `yaml:"position"`
	Target   mgl32.Vec3  `yaml:"target"`
	FOV      float32     `yaml:"fov"`
	// RandomStart places the eye at a random point on a sphere of radius Distance.
	RandomStart bool    `yaml:"randomStart"`
	Distance    float32 `yaml:"distance"`
}

// ParticlesConfig mirrors geometry.ParticleOptions. Zero fields keep the defaults.
type ParticlesConfig struct {
	Dimensions     int         `yaml:"dimensions"`
	NumParticles   int         `yaml:"numParticles"`
	BirthRate      float32     `yaml:"birthRate"`
	LifeRange      [2]float32  `yaml:"lifeRange"`
	DirectionRange [2]float32  `yaml:"directionRange"`
	SpeedRange     [2]float32  `yaml:"speedRange"`
	Gravity        *mgl32.Vec2 `yaml:"gravity"`
	Seed           int64       `yaml:"seed"`
	Turbulence     float32     `yaml:"turbulence"`
}

// PresenceConfig connects a demo to a presence server. An empty URL disables it.
type PresenceConfig struct {
	URL     string `yaml:"url"`
	Program string `yaml:"program"`
}

// DemoConfig configures a demo binary.
type DemoConfig struct {
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	Particles ParticlesConfig `yaml:"particles"`
	Presence  PresenceConfig  `yaml:"presence"`
	Profiling bool            `yaml:"profiling"`
	// DrawParams are merged over each named program's defaults.
	DrawParams map[string]program.DrawParams `yaml:"drawParams"`
}

// Load reads and parses a configuration file.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *Config: the configuration with defaults applied
//   - error: error if the file cannot be read or parsed
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration. Enum values such as capabilities and blend factors
// are parsed here, so a bad name fails the load instead of a frame.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the configuration with defaults applied
//   - error: error if the document is malformed
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	s := &c.Server
	s.Addr = common.Coalesce(s.Addr, ":8989")
	s.RoomSize = common.Coalesce(s.RoomSize, presence.DefaultRoomSize)
	s.Workers = common.Coalesce(s.Workers, 4)
	s.QueueSize = common.Coalesce(s.QueueSize, 256)
	s.LogLevel = common.Coalesce(s.LogLevel, "info")

	w := &c.Demo.Window
	w.Width = common.Coalesce(w.Width, 1280)
	w.Height = common.Coalesce(w.Height, 720)
	w.Title = common.Coalesce(w.Title, "oxy-gl")
	if w.VSync == nil {
		vsync := true
		w.VSync = &vsync
	}

	cam := &c.Demo.Camera
	cam.FOV = common.Coalesce(cam.FOV, 45)
	cam.Distance = common.Coalesce(cam.Distance, 2)
	if cam.Position == nil {
		pos := mgl32.Vec3{0, 0, cam.Distance}
		cam.Position = &pos
	}

	c.Demo.Presence.Program = common.Coalesce(c.Demo.Presence.Program, "update")
}

// Options converts the particle settings into a full option set, keeping the defaults
// for every zero field.
//
// Returns:
//   - geometry.ParticleOptions: the resolved options
func (p ParticlesConfig) Options() geometry.ParticleOptions {
	o := geometry.DefaultParticleOptions()
	o.Dimensions = common.Coalesce(p.Dimensions, o.Dimensions)
	o.NumParticles = common.Coalesce(p.NumParticles, o.NumParticles)
	o.BirthRate = common.Coalesce(p.BirthRate, o.BirthRate)
	o.LifeRange = common.Coalesce(p.LifeRange, o.LifeRange)
	o.DirectionRange = common.Coalesce(p.DirectionRange, o.DirectionRange)
	o.SpeedRange = common.Coalesce(p.SpeedRange, o.SpeedRange)
	o.Seed = common.Coalesce(p.Seed, o.Seed)
	if p.Gravity != nil {
		o.Gravity = *p.Gravity
	}
	return o
}

// FOVRadians returns the configured field of view in radians.
func (c CameraConfig) FOVRadians() float32 {
	return mgl32.DegToRad(c.FOV)
}
