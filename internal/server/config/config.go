package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML fields hold Go duration strings ("5m", "12h").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

type Server struct {
	Addr string `toml:"address"`
}

type Database struct {
	Path string `toml:"path"`
}

type RelyingParty struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type Auth struct {
	ChallengeTTL    Duration `toml:"challengeTTL"`
	SessionTTL      Duration `toml:"sessionTTL"`
	SessionSecret   string   `toml:"sessionSecret"`
	CleanupSchedule string   `toml:"cleanupSchedule"`
}

type SeedUser struct {
	Username string `toml:"username"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Role     string `toml:"role"`
}

type Config struct {
	Server       Server       `toml:"server"`
	Database     Database     `toml:"database"`
	RelyingParty RelyingParty `toml:"relyingParty"`
	Auth         Auth         `toml:"auth"`
	SeedUsers    []SeedUser   `toml:"seedUsers"`
}

func Default() Config {
	cfg := Config{}
	cfg.Server.Addr = ":8080"
	cfg.Database.Path = "devground.db"
	cfg.RelyingParty.ID = "localhost"
	cfg.RelyingParty.Name = "DevGround"
	cfg.Auth.ChallengeTTL = Duration(5 * time.Minute)
	cfg.Auth.SessionTTL = Duration(12 * time.Hour)
	cfg.Auth.CleanupSchedule = "@every 1m"
	return cfg
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
