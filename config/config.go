package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigPort                = "port"
	ConfigWorkers             = "workers"
	ConfigMaxDepth            = "max-depth"
	ConfigDefaultDepth        = "default-depth"
	ConfigWinningTile         = "winning-tile"
	ConfigNatsURL             = "nats-url"
	ConfigNatsSubject         = "nats-subject"
	ConfigCacheMemoryFraction = "cache-memory-fraction"
	ConfigAutoplayLog         = "autoplay-log"
	ConfigAutoplayGames       = "autoplay-games"
	ConfigAutoplayThreads     = "autoplay-threads"
	ConfigAutoplaySeed        = "autoplay-seed"
	ConfigFile                = "config"
)

type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigPort, 9000)
	v.SetDefault(ConfigWorkers, 10)
	v.SetDefault(ConfigMaxDepth, 6)
	v.SetDefault(ConfigDefaultDepth, 3)
	v.SetDefault(ConfigWinningTile, 2048)
	v.SetDefault(ConfigNatsURL, "")
	v.SetDefault(ConfigNatsSubject, "tilesolver.hint")
	v.SetDefault(ConfigCacheMemoryFraction, 0.01)
	v.SetDefault(ConfigAutoplayLog, "/tmp/autoplay.yaml")
	v.SetDefault(ConfigAutoplayGames, 100)
	v.SetDefault(ConfigAutoplayThreads, 4)
	v.SetDefault(ConfigAutoplaySeed, 0)
}

// DefaultConfig returns a config with every default set and nothing read
// from flags, files or the environment.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return Config{Viper: v}
}

// Load reads settings, in increasing priority: defaults, the YAML file
// named by --config, TILESOLVER_* environment variables, then flags.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)
	c.SetEnvPrefix("tilesolver")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("tilesolver", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigPort, 9000, "port for the hint server")
	fs.Int(ConfigWorkers, 10, "number of clients served at the same time")
	fs.Int(ConfigMaxDepth, 6, "deepest search a client may request")
	fs.Int(ConfigDefaultDepth, 3, "search depth for the shell and autoplay")
	fs.Int(ConfigWinningTile, 2048, "tile value that wins the game")
	fs.String(ConfigNatsURL, "", "NATS server URL; empty disables NATS")
	fs.String(ConfigNatsSubject, "tilesolver.hint", "NATS subject to answer hint requests on")
	fs.Float64(ConfigCacheMemoryFraction, 0.01, "fraction of system memory for the hint cache; 0 disables it")
	fs.String(ConfigAutoplayLog, "/tmp/autoplay.yaml", "where autoplay writes its game log")
	fs.Int(ConfigAutoplayGames, 100, "number of games autoplay plays")
	fs.Int(ConfigAutoplayThreads, 4, "number of games autoplay plays at once")
	fs.Uint64(ConfigAutoplaySeed, 0, "seed for reproducible autoplay; 0 is random")
	fs.String(ConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Only flags the user actually set override env and file values.
	fs.Visit(func(f *pflag.Flag) {
		c.Set(f.Name, f.Value.String())
	})

	if path, _ := fs.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) Debug() bool {
	return c.GetBool(ConfigDebug)
}

func (c *Config) Port() int {
	return c.GetInt(ConfigPort)
}

func (c *Config) Workers() int {
	return c.GetInt(ConfigWorkers)
}

func (c *Config) MaxDepth() int {
	return c.GetInt(ConfigMaxDepth)
}

func (c *Config) DefaultDepth() int {
	return c.GetInt(ConfigDefaultDepth)
}

func (c *Config) WinningTile() int {
	return c.GetInt(ConfigWinningTile)
}

func (c *Config) NatsURL() string {
	return c.GetString(ConfigNatsURL)
}

func (c *Config) NatsSubject() string {
	return c.GetString(ConfigNatsSubject)
}

func (c *Config) CacheMemoryFraction() float64 {
	return c.GetFloat64(ConfigCacheMemoryFraction)
}

func (c *Config) AutoplayLog() string {
	return c.GetString(ConfigAutoplayLog)
}

func (c *Config) AutoplayGames() int {
	return c.GetInt(ConfigAutoplayGames)
}

func (c *Config) AutoplayThreads() int {
	return c.GetInt(ConfigAutoplayThreads)
}

func (c *Config) AutoplaySeed() uint64 {
	return c.GetUint64(ConfigAutoplaySeed)
}
