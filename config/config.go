// Package config holds the settings shared by the threes commands. Values
// come from flags, THREES_* environment variables, and an optional YAML
// file, in that order of precedence.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug          = "debug"
	ConfigConfigFile     = "config-file"
	ConfigEpisodes       = "episodes"
	ConfigBlockSize      = "block-size"
	ConfigOpeningTiles   = "opening-tiles"
	ConfigWinFace        = "win-face"
	ConfigSeed           = "seed"
	ConfigAlpha          = "alpha"
	ConfigDecay          = "decay"
	ConfigSymmetry       = "symmetry"
	ConfigInit           = "init"
	ConfigPatterns       = "patterns"
	ConfigLoadWeights    = "load-weights"
	ConfigSaveWeights    = "save-weights"
	ConfigEvalGames      = "eval-games"
	ConfigEvalThreads    = "eval-threads"
	ConfigEpisodeLog     = "episode-log"
	ConfigResultsDB      = "results-db"
	ConfigSummaryFile    = "summary-file"
	ConfigSeedsFile      = "seeds-file"
	ConfigNatsURL        = "nats-url"
	ConfigNatsSubject    = "nats-subject"
	ConfigCPUProfile     = "cpu-profile"
	ConfigMemoryFraction = "memory-fraction"
	ConfigHistoryFile    = "history-file"
)

const EnvPrefix = "THREES"

// Config is a viper instance with the threes flags bound to it.
type Config struct {
	viper.Viper
	positional []string
}

func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigEpisodes, 10000)
	c.SetDefault(ConfigBlockSize, 1000)
	c.SetDefault(ConfigOpeningTiles, 2)
	c.SetDefault(ConfigWinFace, 192)
	c.SetDefault(ConfigAlpha, 0.1)
	c.SetDefault(ConfigDecay, 1.0)
	c.SetDefault(ConfigSymmetry, 4)
	c.SetDefault(ConfigPatterns, "six-tuple")
	c.SetDefault(ConfigEvalThreads, 1)
	c.SetDefault(ConfigNatsSubject, "threes.blocks")
	c.SetDefault(ConfigMemoryFraction, 0.5)
	c.SetDefault(ConfigHistoryFile, "/tmp/threes-readline.tmp")
}

// Load parses the command line and merges it with the environment and the
// config file named by --config-file, if any.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("threes", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "log at debug level")
	fs.String(ConfigConfigFile, "", "YAML file with settings")
	fs.Int(ConfigEpisodes, 10000, "training episodes to play")
	fs.Int(ConfigBlockSize, 1000, "episodes per statistics block")
	fs.Int(ConfigOpeningTiles, 2, "tiles the environment places before the first slide")
	fs.Int(ConfigWinFace, 192, "face value that counts as a win")
	fs.Uint64(ConfigSeed, 0, "base seed; 0 seeds from system entropy")
	fs.Float64(ConfigAlpha, 0.1, "TD learning rate")
	fs.Float64(ConfigDecay, 1.0, "TD discount")
	fs.Int(ConfigSymmetry, 4, "board orientations per update (1, 4 or 8)")
	fs.Float64(ConfigInit, 0, "initial weight value")
	fs.String(ConfigPatterns, "six-tuple", "n-tuple pattern set")
	fs.String(ConfigLoadWeights, "", "weights file to start from")
	fs.String(ConfigSaveWeights, "", "weights file to write after training")
	fs.Int(ConfigEvalGames, 0, "evaluation games with frozen weights after training")
	fs.Int(ConfigEvalThreads, 1, "evaluation worker count")
	fs.String(ConfigEpisodeLog, "", "CSV file with one line per episode")
	fs.String(ConfigResultsDB, "", "sqlite database for episode results")
	fs.String(ConfigSummaryFile, "", "YAML file for the block summaries")
	fs.String(ConfigSeedsFile, "", "file of base64 seeds, one per episode")
	fs.String(ConfigNatsURL, "", "publish block summaries to this NATS server")
	fs.String(ConfigNatsSubject, "threes.blocks", "NATS subject for block summaries")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.Float64(ConfigMemoryFraction, 0.5, "largest share of system memory the weights may use")
	fs.String(ConfigHistoryFile, "/tmp/threes-readline.tmp", "shell history file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.positional = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cf := c.GetString(ConfigConfigFile); cf != "" {
		c.SetConfigFile(cf)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args are the command line arguments left after the flags.
func (c *Config) Args() []string {
	return c.positional
}

// SanitizedSettings returns every setting for logging. The NATS URL may
// carry credentials, so it is masked.
func (c *Config) SanitizedSettings() map[string]any {
	out := c.AllSettings()
	if u, ok := out[ConfigNatsURL].(string); ok && u != "" {
		out[ConfigNatsURL] = "<set>"
	}
	return out
}

// userPaths are files the user names on the command line. They are read
// and written relative to the directory the command runs in, never the
// binary's.
var userPaths = []string{ConfigLoadWeights, ConfigSaveWeights, ConfigEpisodeLog,
	ConfigResultsDB, ConfigSummaryFile, ConfigSeedsFile, ConfigCPUProfile}

// ResolvePaths makes the relative file settings absolute against workDir,
// which should be the process's working directory.
func (c *Config) ResolvePaths(workDir string) {
	for _, key := range userPaths {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(workDir, p))
	}
}
