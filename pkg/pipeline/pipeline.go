package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"rfm-segmentation/pkg/calculator"
	"rfm-segmentation/pkg/cluster"
	"rfm-segmentation/pkg/config"
	"rfm-segmentation/pkg/database"
	"rfm-segmentation/pkg/ingest"
	"rfm-segmentation/pkg/models"
	"rfm-segmentation/pkg/report"
	"rfm-segmentation/pkg/segments"
)

// Source fournit les transactions brutes.
type Source interface {
	Load(ctx context.Context) ([]models.TransactionRecord, error)
	Describe() string
}

// OpenSource construit la source décrite par la configuration.
// closeFn libère les ressources (connexion SQL) et n'est jamais nil.
func OpenSource(cfg config.SourceConfig, log zerolog.Logger) (src Source, closeFn func() error, err error) {
	noop := func() error { return nil }
	switch cfg.Kind {
	case "csv":
		return ingest.CSVSource{Path: cfg.Path, Progress: cfg.Progress}, noop, nil
	case "sql":
		db, driver, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open db: %w", err)
		}
		log.Info().Str("driver", driver).Str("table", cfg.Table).Msg("connexion base")
		return database.SQLSource{DB: db, Table: cfg.Table, Progress: cfg.Progress, Log: log}, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("%q: %w", cfg.Kind, models.ErrUnknownSource)
	}
}

// RunRFM charge la source, segmente et écrit le rapport.
func RunRFM(ctx context.Context, cfg *config.Config, src Source, w io.Writer, log zerolog.Logger) error {
	catalog := segments.Default()
	if cfg.SegmentsFile != "" {
		c, err := segments.Load(cfg.SegmentsFile)
		if err != nil {
			return err
		}
		catalog = c
	}

	records, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	log.Info().Str("source", src.Describe()).Int("rows", len(records)).Msg("transactions chargées")

	profile := calculator.Profile(records)
	log.Debug().
		Int("countries", len(profile.Countries)).
		Time("first_invoice", profile.FirstInvoice).
		Time("last_invoice", profile.LastInvoice).
		Int("min_quantity", profile.MinQuantity).
		Str("min_unit_price", profile.MinUnitPrice.String()).
		Msg("profil source")

	res, err := calculator.Segment(records, models.Config{Country: cfg.Country, AsOf: cfg.AsOf})
	if err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	log.Info().
		Str("country", res.Country).
		Time("as_of", res.AsOf).
		Int("rows_kept", res.RowsKept).
		Int("customers", len(res.Customers)).
		Msg("segmentation RFM")
	log.Debug().
		Str("recency", thresholdString(res.Thresholds.Recency)).
		Str("frequency", thresholdString(res.Thresholds.Frequency)).
		Str("monetary", thresholdString(res.Thresholds.Monetary)).
		Msg("seuils")

	rep := report.RFM{
		Profile: profile,
		Result:  res,
		Summary: calculator.Summarize(res.Customers),
	}
	for _, s := range catalog.Segments {
		v := report.View{Name: s.Name, Labels: s.Labels, Customers: calculator.Select(res.Customers, s.Labels)}
		log.Info().Str("segment", s.Name).Int("customers", len(v.Customers)).Msg("vue")
		rep.Views = append(rep.Views, v)
	}

	return report.WriteRFM(w, rep, outputOptions(cfg.Output))
}

// RunCluster charge offres et réponses puis écrit l'analyse k-means / ACP.
func RunCluster(ctx context.Context, cfg *config.Config, w io.Writer, log zerolog.Logger) error {
	offers, err := ingest.LoadOffers(cfg.Cluster.OffersPath)
	if err != nil {
		return err
	}
	responses, err := ingest.LoadResponses(cfg.Cluster.ResponsesPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info().Int("offers", len(offers)).Int("responses", len(responses)).Msg("offres chargées")

	res, err := cluster.Analyze(offers, responses, cluster.Options{
		K:             cfg.Cluster.K,
		Seed:          cfg.Cluster.Seed,
		MaxIterations: cfg.Cluster.MaxIterations,
	}, cfg.Cluster.Focus)
	if err != nil {
		return err
	}
	log.Info().
		Int("customers", len(res.Customers)).
		Int("iterations", res.Iterations).
		Float64("inertia", res.Inertia).
		Msg("k-means")

	return report.WriteClusters(w, res, outputOptions(cfg.Output))
}

func outputOptions(o config.OutputConfig) report.Options {
	return report.Options{Format: o.Format, Width: o.Width, Locale: o.Locale, Limit: o.Limit}
}

func thresholdString(q models.Quantiles) string {
	return q.P25.String() + " / " + q.P50.String() + " / " + q.P75.String()
}
