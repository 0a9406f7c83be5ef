// threes trains and evaluates an n-tuple player.
//
//	threes [flags] train          train, then optionally evaluate
//	threes [flags] eval           evaluate --load-weights
//	threes [flags] analyze <csv>  summarize an episode log
//	threes [flags] seeds <n>      write n seeds to --seeds-file
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/threes/agent"
	"github.com/domino14/threes/automatic"
	"github.com/domino14/threes/config"
	"github.com/domino14/threes/ntuple"
	"github.com/domino14/threes/store"
)

func setupLogging(cfg *config.Config) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	return logger
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := setupLogging(cfg)
	cfg.ResolvePaths(wd)
	logger.Debug().Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	args := cfg.Args()
	mode := "train"
	if len(args) > 0 {
		mode = args[0]
	}
	switch mode {
	case "train":
		err = train(ctx, cfg)
	case "eval":
		err = evaluate(ctx, cfg)
	case "analyze":
		if len(args) != 2 {
			err = fmt.Errorf("usage: threes analyze <episode log>")
			break
		}
		var report string
		report, err = automatic.AnalyzeLogFile(args[1])
		fmt.Print(report)
	case "seeds":
		err = writeSeeds(cfg, args[1:])
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", mode).Msg("threes-failed")
		stop()
		os.Exit(1)
	}
}

func baseSeed(cfg *config.Config) *uint64 {
	s := cfg.GetUint64(config.ConfigSeed)
	if s == 0 {
		return nil
	}
	return &s
}

func playerArgs(cfg *config.Config) agent.Args {
	alpha := cfg.GetFloat64(config.ConfigAlpha)
	decay := cfg.GetFloat64(config.ConfigDecay)
	initial := cfg.GetFloat64(config.ConfigInit)
	sym := cfg.GetInt(config.ConfigSymmetry)
	return agent.Args{
		Name:     "learning",
		Seed:     baseSeed(cfg),
		Alpha:    &alpha,
		Decay:    &decay,
		Init:     &initial,
		Symmetry: &sym,
		Patterns: cfg.GetString(config.ConfigPatterns),
		Load:     cfg.GetString(config.ConfigLoadWeights),
		Save:     cfg.GetString(config.ConfigSaveWeights),
	}
}

// network builds the value function, exiting if the weights can't be
// loaded or wouldn't fit in memory.
func network(cfg *config.Config, args agent.Args) *ntuple.Network {
	patterns, err := ntuple.PatternSet(args.Patterns)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-patterns")
	}
	if err := ntuple.CheckMemory(patterns, cfg.GetFloat64(config.ConfigMemoryFraction)); err != nil {
		log.Fatal().Err(err).Msg("weights-too-large")
	}
	net, err := agent.NetworkFromArgs(args, patterns)
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-load-weights")
	}
	return net
}

func envArgs(cfg *config.Config) agent.Args {
	a := agent.Args{Name: "random"}
	if s := baseSeed(cfg); s != nil {
		envSeed := *s + 1
		a.Seed = &envSeed
	}
	return a
}

func evalSeed(cfg *config.Config) [32]byte {
	if s := baseSeed(cfg); s != nil {
		return agent.SeedBytes(*s)
	}
	return automatic.GenerateSeeds(1)[0]
}

func runName() string {
	return time.Now().Format("20060102-150405")
}

func train(ctx context.Context, cfg *config.Config) error {
	pargs := playerArgs(cfg)
	net := network(cfg, pargs)
	player, err := agent.New(agent.KindLearningPlayer, pargs, net)
	if err != nil {
		return err
	}
	env, err := agent.New(agent.KindEnvironment, envArgs(cfg), nil)
	if err != nil {
		return err
	}
	runner := automatic.NewGameRunner(player, env)
	runner.SetOpeningTiles(cfg.GetInt(config.ConfigOpeningTiles))
	runner.SetWinFace(cfg.GetInt(config.ConfigWinFace))

	run := runName()
	opts := automatic.TrainOptions{
		Run:        run,
		Episodes:   cfg.GetInt(config.ConfigEpisodes),
		BlockSize:  cfg.GetInt(config.ConfigBlockSize),
		EpisodeLog: cfg.GetString(config.ConfigEpisodeLog),
	}
	if path := cfg.GetString(config.ConfigSeedsFile); path != "" {
		if opts.Seeds, err = automatic.LoadSeeds(path); err != nil {
			return err
		}
	}
	var results *store.ResultStore
	if path := cfg.GetString(config.ConfigResultsDB); path != "" {
		if results, err = store.Open(ctx, path); err != nil {
			return err
		}
		defer results.Close()
		opts.Sink = results
	}
	if url := cfg.GetString(config.ConfigNatsURL); url != "" {
		pub, err := automatic.NewNatsPublisher(url, cfg.GetString(config.ConfigNatsSubject))
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Publisher = pub
	}

	log.Info().Str("run", run).Int("episodes", opts.Episodes).
		Int("patterns", net.NumPatterns()).
		Uint64("weight-bytes", net.MemoryBytes()).Msg("training-start")
	blocks, err := automatic.Train(ctx, runner, opts)
	if err != nil {
		return err
	}
	if err := player.Close(); err != nil {
		log.Fatal().Err(err).Msg("could-not-save-weights")
	}

	summary := automatic.Summary{Run: run, Settings: cfg.SanitizedSettings(), Training: blocks}
	if n := cfg.GetInt(config.ConfigEvalGames); n > 0 && ctx.Err() == nil {
		ev, err := runEval(ctx, cfg, net, run, n, results)
		if err != nil {
			return err
		}
		summary.Evaluation = &ev
	}
	return writeSummary(cfg, summary)
}

func evaluate(ctx context.Context, cfg *config.Config) error {
	pargs := playerArgs(cfg)
	if pargs.Load == "" {
		return fmt.Errorf("eval needs --%s", config.ConfigLoadWeights)
	}
	net := network(cfg, pargs)
	run := runName()
	var results *store.ResultStore
	var err error
	if path := cfg.GetString(config.ConfigResultsDB); path != "" {
		if results, err = store.Open(ctx, path); err != nil {
			return err
		}
		defer results.Close()
	}
	games := cfg.GetInt(config.ConfigEvalGames)
	if games == 0 {
		games = 1000
	}
	ev, err := runEval(ctx, cfg, net, run, games, results)
	if err != nil {
		return err
	}
	return writeSummary(cfg, automatic.Summary{Run: run, Settings: cfg.SanitizedSettings(), Evaluation: &ev})
}

func runEval(ctx context.Context, cfg *config.Config, net *ntuple.Network, run string,
	games int, results *store.ResultStore) (automatic.BlockSummary, error) {

	opts := automatic.EvalOptions{
		Run:          run,
		Games:        games,
		Threads:      cfg.GetInt(config.ConfigEvalThreads),
		OpeningTiles: lo.ToPtr(cfg.GetInt(config.ConfigOpeningTiles)),
		WinFace:      cfg.GetInt(config.ConfigWinFace),
		Seed:         evalSeed(cfg),
	}
	if results != nil {
		opts.Sink = results
	}
	s, episodes, err := automatic.Evaluate(ctx, net, opts)
	if err != nil {
		return s, err
	}
	scores := make([]float64, len(episodes))
	for i := range episodes {
		scores[i] = float64(episodes[i].Score)
	}
	fmt.Println(s.String())
	fmt.Println(automatic.ScoreHistogram(scores, 60))
	return s, nil
}

func writeSummary(cfg *config.Config, s automatic.Summary) error {
	path := cfg.GetString(config.ConfigSummaryFile)
	if path == "" {
		return nil
	}
	if err := automatic.WriteSummary(path, s); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote-summary")
	return nil
}

func writeSeeds(cfg *config.Config, args []string) error {
	path := cfg.GetString(config.ConfigSeedsFile)
	if len(args) != 1 || path == "" {
		return fmt.Errorf("usage: threes --%s <file> seeds <n>", config.ConfigSeedsFile)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if err := automatic.SaveSeeds(automatic.GenerateSeeds(n), path); err != nil {
		return err
	}
	log.Info().Int("n", n).Str("path", path).Msg("wrote-seeds")
	return nil
}
