package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xiangqi/internal/engine"
)

type Config struct {
	Search   engine.SearchConfig `yaml:"search"`
	Model    engine.ModelConfig  `yaml:"model"`
	Server   Server              `yaml:"server"`
	Log      Log                 `yaml:"log"`
	SelfPlay SelfPlay            `yaml:"selfplay"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	WebDir    string `yaml:"web_dir"`
	MobileDir string `yaml:"mobile_dir"`
	UseNN     bool   `yaml:"use_nn"` // 加载模型失败时退回 rollout
}

type Log struct {
	Level string `yaml:"level"`
}

// SelfPlay 两边各自一套搜索参数
type SelfPlay struct {
	Games    int                 `yaml:"games"`
	Parallel int                 `yaml:"parallel"`
	MaxPlies int                 `yaml:"max_plies"`
	Out      string              `yaml:"out"`
	Compress bool                `yaml:"compress"`
	Red      engine.SearchConfig `yaml:"red"`
	Black    engine.SearchConfig `yaml:"black"`
}

func Default() Config {
	search := engine.DefaultSearchConfig()
	return Config{
		Search: search,
		Model:  engine.DefaultModelConfig(),
		Server: Server{
			Addr:      "127.0.0.1:2888",
			WebDir:    "web",
			MobileDir: "web_mobile",
		},
		Log: Log{Level: "info"},
		SelfPlay: SelfPlay{
			Games:    10,
			Parallel: 2,
			MaxPlies: 300,
			Out:      "selfplay.csv",
			Red:      search,
			Black:    search,
		},
	}
}

// Load 读取 YAML 覆盖默认值；path 为空时直接返回默认值
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var ErrInvalid = errors.New("invalid config")

func (c Config) Validate() error {
	for name, s := range map[string]engine.SearchConfig{
		"search":         c.Search,
		"selfplay.red":   c.SelfPlay.Red,
		"selfplay.black": c.SelfPlay.Black,
	} {
		switch s.Mode {
		case "", engine.ModeRollout, engine.ModeGuided:
		default:
			return fmt.Errorf("%w: %s.mode %q", ErrInvalid, name, s.Mode)
		}
		if s.Iterations < 0 || s.RolloutCutoff < 0 || s.Exploration < 0 {
			return fmt.Errorf("%w: %s has negative values", ErrInvalid, name)
		}
	}
	if c.SelfPlay.Games < 0 || c.SelfPlay.Parallel < 0 || c.SelfPlay.MaxPlies < 0 {
		return fmt.Errorf("%w: selfplay has negative values", ErrInvalid)
	}
	return nil
}
