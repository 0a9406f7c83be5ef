package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigEpisodes), 10000)
	is.Equal(c.GetInt(ConfigOpeningTiles), 2)
	is.Equal(c.GetInt(ConfigSymmetry), 4)
	is.Equal(c.GetFloat64(ConfigDecay), 1.0)
	is.Equal(c.GetString(ConfigPatterns), "six-tuple")
	is.Equal(c.GetBool(ConfigDebug), false)

	d := DefaultConfig()
	is.Equal(d.GetInt(ConfigBlockSize), 1000)
}

func TestFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("THREES_EPISODE_LOG", "/tmp/episodes.csv")
	t.Setenv("THREES_ALPHA", "0.5")
	c := &Config{}
	is.NoErr(c.Load([]string{"--episodes", "50", "eval", "--alpha", "0.025", "--debug", "x"}))
	is.Equal(c.Args(), []string{"eval", "x"})
	is.Equal(c.GetInt(ConfigEpisodes), 50)
	is.Equal(c.GetFloat64(ConfigAlpha), 0.025) // flag beats env
	is.Equal(c.GetString(ConfigEpisodeLog), "/tmp/episodes.csv")
	is.True(c.GetBool(ConfigDebug))

	is.True(c.Load([]string{"--no-such-flag"}) != nil)
}

func TestConfigFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "threes.yaml")
	is.NoErr(os.WriteFile(path, []byte("block-size: 250\npatterns: four-tuple\n"), 0o644))

	c := &Config{}
	is.NoErr(c.Load([]string{"--config-file", path, "--patterns", "six-tuple"}))
	is.Equal(c.GetInt(ConfigBlockSize), 250)
	is.Equal(c.GetString(ConfigPatterns), "six-tuple")

	is.True(c.Load([]string{"--config-file", filepath.Join(dir, "missing.yaml")}) != nil)
}

func TestPathsStayWithWorkingDirectory(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--save-weights", "w.bin", "--load-weights", "start.bin",
		"--episode-log", "ep.csv", "--summary-file", "/abs/summary.yaml",
		"--nats-url", "nats://user:pw@host:4222"}))
	// Loading never rewrites a path.
	is.Equal(c.GetString(ConfigSaveWeights), "w.bin")
	is.Equal(c.GetString(ConfigLoadWeights), "start.bin")

	wd := t.TempDir()
	c.ResolvePaths(wd)
	is.Equal(c.GetString(ConfigSaveWeights), filepath.Join(wd, "w.bin"))
	is.Equal(c.GetString(ConfigLoadWeights), filepath.Join(wd, "start.bin"))
	is.Equal(c.GetString(ConfigEpisodeLog), filepath.Join(wd, "ep.csv"))
	is.Equal(c.GetString(ConfigSummaryFile), "/abs/summary.yaml")
	is.Equal(c.GetString(ConfigResultsDB), "")

	s := c.SanitizedSettings()
	is.Equal(s[ConfigNatsURL], "<set>")
}
