package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"rfm-segmentation/pkg/config"
	"rfm-segmentation/pkg/logger"
	"rfm-segmentation/pkg/models"
	"rfm-segmentation/pkg/pipeline"
)

// flag → clé de configuration
var flagKeys = map[string]string{
	"mode":       "mode",
	"country":    "country",
	"as_of":      "as_of",
	"segments":   "segments_file",
	"source":     "source.kind",
	"file":       "source.path",
	"dsn":        "source.dsn",
	"table":      "source.table",
	"progress":   "source.progress",
	"format":     "output.format",
	"out":        "output.path",
	"locale":     "output.locale",
	"width":      "output.width",
	"limit":      "output.limit",
	"offers":     "cluster.offers",
	"responses":  "cluster.responses",
	"k":          "cluster.k",
	"seed":       "cluster.seed",
	"iterations": "cluster.max_iterations",
	"focus":      "cluster.focus",
	"log_level":  "log.level",
	"log_env":    "log.env",
}

func main() {
	configFile := flag.String("config", "", "Fichier de configuration (yaml, json, toml, env)")
	flag.String("mode", "", "rfm | cluster")
	flag.String("country", "", "Marché retenu (défaut: United Kingdom)")
	flag.String("as_of", "", "Date de référence AAAA-MM-JJ (défaut: lendemain de la dernière facture)")
	flag.String("segments", "", "Catalogue YAML des segments nommés")
	flag.String("source", "", "csv | sql")
	flag.String("file", "", "Fichier CSV des transactions")
	flag.String("dsn", "", "DSN mysql://, mariadb://, postgres:// (ou RFM_SOURCE_DSN)")
	flag.String("table", "", "Table des transactions (défaut: OnlineRetail)")
	flag.String("progress", "", "Barre de progression (true|false)")
	flag.String("format", "", "table | csv | json")
	flag.String("out", "", "Fichier de sortie (défaut: stdout)")
	flag.String("locale", "", "Locale des nombres en mode table (ex: en, fr)")
	flag.String("width", "", "Largeur max en mode table")
	flag.String("limit", "", "Lignes max par vue en mode table (0 = tout)")
	flag.String("offers", "", "CSV des offres vin")
	flag.String("responses", "", "CSV des réponses aux offres")
	flag.String("k", "", "Nombre de clusters (défaut: 5)")
	flag.String("seed", "", "Graine du k-means++")
	flag.String("iterations", "", "Itérations max du k-means")
	flag.String("focus", "", "Cluster détaillé dans le profil d'offres")
	flag.String("log_level", "", "trace | debug | info | warn | error")
	flag.String("log_env", "", "development (console) | production (JSON)")
	flag.Parse()

	overrides := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})

	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	log := logger.WithRun(logger.New(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level}), uuid.NewString(), cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var w io.Writer = os.Stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Output.Path).Msg("création du fichier de sortie")
		}
		defer f.Close()
		w = f
	}

	switch cfg.Mode {
	case "cluster":
		err = pipeline.RunCluster(ctx, cfg, w, log)
	default:
		src, closeFn, openErr := pipeline.OpenSource(cfg.Source, log)
		if openErr != nil {
			log.Fatal().Err(openErr).Msg("source")
		}
		err = pipeline.RunRFM(ctx, cfg, src, w, log)
		if cerr := closeFn(); cerr != nil {
			log.Warn().Err(cerr).Msg("fermeture source")
		}
	}

	if err != nil {
		ev := log.Error().Err(err)
		if errors.Is(err, models.ErrEmptyInput) {
			ev = ev.Str("hint", "aucun client retenu: vérifier --country et la source")
		}
		ev.Msg("échec")
		stop()
		os.Exit(1)
	}
	if cfg.Output.Path != "" {
		log.Info().Str("path", cfg.Output.Path).Msg("rapport écrit")
	}
}
