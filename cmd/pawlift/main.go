package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pawlift/internal/api"
	"pawlift/internal/cmdlog"
	"pawlift/internal/config"
	"pawlift/internal/corpus"
	"pawlift/internal/divergence"
	"pawlift/internal/evaluate"
	"pawlift/internal/feature"
	"pawlift/internal/jobs"
	"pawlift/internal/logging"
	"pawlift/internal/metrics"
	"pawlift/internal/predict"
	"pawlift/internal/replacement"
	"pawlift/internal/suggest"
	"pawlift/internal/theme"
)

func main() {
	_ = godotenv.Load()
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "score":
		cmdScore()
	case "suggest":
		cmdSuggest()
	case "replacements":
		cmdReplacements()
	case "regression", "classifier", "all":
		cmdEvaluate(cmd)
	case "divergence":
		cmdDivergence()
	case "ingest":
		cmdIngest()
	case "serve":
		cmdServe()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: pawlift <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init          Create a config file at ./pawlift.yaml")
	fmt.Println("  score         Label one post HIGH/LOW and estimate its engagement")
	fmt.Println("  suggest       Generate rewrites and keep one only if it scores higher")
	fmt.Println("  replacements  Word swaps mined from low-engagement posts")
	fmt.Println("  regression    Evaluate the regressor on the labeled corpus")
	fmt.Println("  classifier    Evaluate the classifier on the labeled corpus")
	fmt.Println("  divergence    Contrast dog and cat posting styles")
	fmt.Println("  all           Run every evaluation task")
	fmt.Println("  ingest        Ingest CSV exports, featurize, and relabel")
	fmt.Println("  serve         Run the HTTP API with metrics and snapshot schedule")
}

func mustConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil { fmt.Println("error:", err); os.Exit(1) }
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg
}

func mustExtractor(cfg config.Config) *feature.Extractor {
	schema := feature.Builtin()
	if cfg.Model.SchemaPath != "" {
		s, err := feature.LoadSchema(cfg.Model.SchemaPath)
		if err != nil { fmt.Println("error:", err); os.Exit(1) }
		schema = s
	}
	return feature.NewExtractor(schema)
}

// mustScorer loads the trained artifact up front so a missing or mismatched
// artifact fails the command instead of the first request.
func mustScorer(cfg config.Config) *predict.Scorer {
	ex := mustExtractor(cfg)
	h := predict.NewHandle(cfg.Model.ArtifactPath, ex.Schema())
	if _, err := h.Params(); err != nil { fmt.Println("error:", err); os.Exit(1) }
	return predict.NewScorer(ex, h, cfg.Model.Threshold)
}

func mustStore(cfg config.Config) *corpus.DB {
	db, err := corpus.Open(cfg.Storage.DBPath)
	if err != nil { fmt.Println("error:", err); os.Exit(1) }
	return db
}

func cmdInit() {
	out := flag.NewFlagSet("init", flag.ExitOnError)
	path := out.String("path", "./pawlift.yaml", "path to write config")
	_ = out.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	text := fs.String("text", "", "post text to score")
	kind := fs.String("kind", "", "override detected pet kind (dog or cat)")
	showFeatures := fs.Bool("features", false, "print the extracted feature vector")
	_ = fs.Parse(os.Args[2:])
	if strings.TrimSpace(*text) == "" {
		fmt.Println("error: -text is required")
		os.Exit(1)
	}
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	err := cmdlog.Run("score", func() error {
		p, err := scorer.Score(*text, *kind)
		if err != nil {
			return err
		}
		fmt.Printf("kind=%s label=%s prob=%.3f score=%.2f\n", p.Kind, p.Label, p.Probability, p.Score)
		if *showFeatures {
			for i, f := range p.Features.Schema().Fields {
				fmt.Printf("  %-24s %g\n", f.Name, p.Features.At(i))
			}
		}
		return nil
	})
	if err != nil { os.Exit(1) }
}

func cmdSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	text := fs.String("text", "", "post text to improve")
	kind := fs.String("kind", "", "override detected pet kind (dog or cat)")
	_ = fs.Parse(os.Args[2:])
	if strings.TrimSpace(*text) == "" {
		fmt.Println("error: -text is required")
		os.Exit(1)
	}
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	gen, err := suggest.NewGenerator(cfg.Suggest)
	if err != nil { fmt.Println("error:", err); os.Exit(1) }
	if gen == nil {
		fmt.Println("error:", suggest.ErrUnavailable)
		os.Exit(1)
	}
	db := mustStore(cfg)
	defer db.Close()
	budget := &suggest.Budget{DB: db, MaxPerDay: cfg.Suggest.MaxPerDay}
	orch := suggest.NewOrchestrator(gen, scorer, cfg.Suggest, budget)
	err = cmdlog.Run("suggest", func() error {
		session, err := orch.Suggest(context.Background(), *text, *kind)
		if err != nil {
			return err
		}
		printSession(session)
		return nil
	})
	if err != nil { os.Exit(1) }
}

func printSession(s *suggest.Session) {
	fmt.Printf("status=%s", s.Status)
	if s.Cause != "" {
		fmt.Printf(" cause=%s", s.Cause)
	}
	fmt.Printf(" attempts=%d\n", len(s.Attempts))
	fmt.Printf("original: label=%s score=%.2f\n%s\n---\n", s.Original.Label, s.Original.Score, s.Original.Text)
	for _, c := range s.Candidates {
		fmt.Printf("candidate: label=%s score=%.2f\n%s\n---\n", c.Scored.Label, c.Scored.Score, c.Text)
	}
	if s.Final != nil {
		fmt.Printf("final: label=%s score=%.2f\n%s\n", s.Final.Scored.Label, s.Final.Scored.Score, s.Final.Text)
	}
}

func cmdReplacements() {
	fs := flag.NewFlagSet("replacements", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	kind := fs.String("kind", "dog", "pet kind (dog or cat)")
	limit := fs.Int("limit", 10, "suggestions to print")
	_ = fs.Parse(os.Args[2:])
	if *kind != "dog" && *kind != "cat" {
		fmt.Printf("error: unknown kind %q\n", *kind)
		os.Exit(1)
	}
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	db := mustStore(cfg)
	defer db.Close()
	err := cmdlog.Run("replacements", func() error {
		params, err := scorer.Handle.Params()
		if err != nil {
			return err
		}
		kp, err := params.Kind(feature.Kind(*kind))
		if err != nil {
			return err
		}
		posts, err := db.LoadPosts(context.Background(), *kind, false)
		if err != nil {
			return err
		}
		var lowTexts, allTexts []string
		for _, p := range posts {
			t := p.Text()
			allTexts = append(allTexts, t)
			if p.Label == string(predict.Low) {
				lowTexts = append(lowTexts, t)
			}
		}
		sugs := replacement.Suggest(kp.Vocab, lowTexts, allTexts, replacement.Defaults())
		if len(sugs) == 0 {
			fmt.Println("no replacement candidates; is the corpus labeled?")
			return nil
		}
		for i, s := range sugs {
			if i >= *limit {
				break
			}
			opts := make([]string, 0, len(s.Options))
			for _, o := range s.Options {
				opts = append(opts, fmt.Sprintf("%s (%.2f)", o.Word, o.Similarity))
			}
			fmt.Printf("%-16s x%-4d try: %s\n", s.Word, s.Count, strings.Join(opts, ", "))
		}
		return nil
	})
	if err != nil { os.Exit(1) }
}

func cmdEvaluate(task string) {
	fs := flag.NewFlagSet(task, flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	kind := fs.String("kind", "", "restrict to one pet kind (dog or cat)")
	_ = fs.Parse(os.Args[2:])
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	db := mustStore(cfg)
	defer db.Close()
	kinds := []string{"dog", "cat"}
	if *kind != "" {
		kinds = []string{*kind}
	}
	err := cmdlog.Run(task, func() error {
		ctx := context.Background()
		params, err := scorer.Handle.Params()
		if err != nil {
			return err
		}
		schema := scorer.Extractor.Schema()
		if task == "regression" || task == "all" {
			if err := runRegression(ctx, db, params, schema, kinds); err != nil {
				return err
			}
		}
		if task == "classifier" || task == "all" {
			if err := runClassifier(ctx, db, params, schema, kinds, scorer.Threshold); err != nil {
				return err
			}
		}
		if task == "all" {
			if err := runDivergence(ctx, db, schema, 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil { os.Exit(1) }
}

func runRegression(ctx context.Context, db *corpus.DB, p *predict.Params, schema *feature.Schema, kinds []string) error {
	for _, k := range kinds {
		samples, err := evaluate.LoadSamples(ctx, db, schema, k)
		if err != nil {
			return err
		}
		rep, err := evaluate.Regression(p, feature.Kind(k), samples)
		if err != nil {
			return fmt.Errorf("regression %s: %w", k, err)
		}
		fmt.Printf("regression %s: samples=%d rmse=%.3f r2=%.3f\n", k, rep.Samples, rep.RMSE, rep.R2)
	}
	return nil
}

func runClassifier(ctx context.Context, db *corpus.DB, p *predict.Params, schema *feature.Schema, kinds []string, threshold float64) error {
	for _, k := range kinds {
		samples, err := evaluate.LoadSamples(ctx, db, schema, k)
		if err != nil {
			return err
		}
		rep, err := evaluate.Classifier(p, feature.Kind(k), samples, threshold)
		if err != nil {
			return fmt.Errorf("classifier %s: %w", k, err)
		}
		fmt.Printf("classifier %s: samples=%d acc=%.3f prec=%.3f rec=%.3f f1=%.3f\n",
			k, rep.Samples, rep.Accuracy, rep.Precision, rep.Recall, rep.F1)
		fmt.Printf("  tp=%d fp=%d tn=%d fn=%d\n", rep.TP, rep.FP, rep.TN, rep.FN)
	}
	return nil
}

func runDivergence(ctx context.Context, db *corpus.DB, schema *feature.Schema, top int) error {
	dogVecs, err := loadVectors(ctx, db, schema, "dog")
	if err != nil {
		return err
	}
	catVecs, err := loadVectors(ctx, db, schema, "cat")
	if err != nil {
		return err
	}
	contrasts, err := divergence.Compare(dogVecs, catVecs)
	if err != nil {
		return err
	}
	fmt.Printf("divergence: dog=%d cat=%d\n", len(dogVecs), len(catVecs))
	printContrasts(contrasts, top)
	return nil
}

func loadVectors(ctx context.Context, db *corpus.DB, schema *feature.Schema, kind string) ([]feature.Vector, error) {
	posts, err := db.LoadPosts(ctx, kind, false)
	if err != nil {
		return nil, err
	}
	var out []feature.Vector
	for _, p := range posts {
		if len(p.Features) == 0 {
			continue
		}
		v, err := feature.NewVector(schema, p.Features)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", p.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func printContrasts(contrasts []divergence.Contrast, top int) {
	for i, c := range contrasts {
		if top > 0 && i >= top {
			break
		}
		line := fmt.Sprintf("%-24s dog=%.3f cat=%.3f delta=%+.4f", c.Feature, c.MeanA, c.MeanB, c.Delta)
		if c.Tie {
			line += " (tie)"
		}
		fmt.Println(line)
	}
}

func cmdDivergence() {
	fs := flag.NewFlagSet("divergence", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	top := fs.Int("top", 0, "contrasts to print (0 means all)")
	fromSnapshot := fs.Bool("snapshot", false, "read the latest stored snapshot instead of recomputing")
	_ = fs.Parse(os.Args[2:])
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	db := mustStore(cfg)
	defer db.Close()
	err := cmdlog.Run("divergence", func() error {
		ctx := context.Background()
		if !*fromSnapshot {
			return runDivergence(ctx, db, scorer.Extractor.Schema(), *top)
		}
		payload, takenAt, err := jobs.LatestDivergence(ctx, db)
		if err != nil {
			return err
		}
		fmt.Printf("snapshot %s: dog=%d cat=%d\n", takenAt.Format(time.RFC3339), payload.DogPosts, payload.CatPosts)
		printContrasts(payload.Contrasts, *top)
		if len(payload.Lexicon) > 0 {
			fmt.Println("lexicon:")
			for _, w := range payload.Lexicon {
				fmt.Printf("  %-16s dog=%.4f cat=%.4f\n", w.Word, w.DogWeight, w.CatWeight)
			}
		}
		return nil
	})
	if err != nil { os.Exit(1) }
}

func cmdIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustConfig(*cfgPath)
	ex := mustExtractor(cfg)
	db := mustStore(cfg)
	defer db.Close()
	err := cmdlog.Run("ingest", func() error {
		stats, err := jobs.RunRefreshOnce(context.Background(), db, ex, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("files=%d skipped=%d upserted=%d featurized=%d\n",
			stats.Files, stats.Skipped, stats.Upserted, stats.Featurized)
		for _, k := range []string{"dog", "cat"} {
			ls, ok := stats.Labels[k]
			if !ok {
				continue
			}
			fmt.Printf("%s: total=%d high=%d low=%d dropped=%d highcut=%.2f lowcut=%.2f\n",
				k, ls.Total, ls.High, ls.Low, ls.Dropped, ls.HighCut, ls.LowCut)
		}
		return nil
	})
	if err != nil { os.Exit(1) }
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./pawlift.yaml", "config path")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[2:])
	cfg := mustConfig(*cfgPath)
	scorer := mustScorer(cfg)
	db := mustStore(cfg)
	defer db.Close()

	gen, err := suggest.NewGenerator(cfg.Suggest)
	if err != nil { fmt.Println("error:", err); os.Exit(1) }
	var orch *suggest.Orchestrator
	if gen != nil {
		budget := &suggest.Budget{DB: db, MaxPerDay: cfg.Suggest.MaxPerDay}
		orch = suggest.NewOrchestrator(gen, scorer, cfg.Suggest, budget)
	} else {
		logging.Warn("suggest provider not configured; suggestion endpoint degraded", nil)
	}

	metrics.StartServer(cfg.Metrics.Addr)

	cronJobs, err := jobs.StartSchedule(context.Background(), db, scorer.Extractor, cfg)
	if err != nil { fmt.Println("error:", err); os.Exit(1) }
	if cronJobs != nil {
		defer cronJobs.Stop()
	}

	srv, err := api.NewServer(api.Config{
		Scorer:       scorer,
		Orchestrator: orch,
		Store:        db,
		CORSOrigins:  cfg.API.CORSOrigins,
	})
	if err != nil { fmt.Println("error:", err); os.Exit(1) }

	listen := cfg.API.Addr
	if *addr != "" {
		listen = *addr
	}
	logging.Info("api listening", map[string]any{"addr": listen})
	if err := srv.Router().Run(listen); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
