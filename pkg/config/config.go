package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"rfm-segmentation/pkg/models"
)

// Config regroupe la configuration d'une exécution.
// Priorité : valeurs par défaut < fichier < variables RFM_* < flags.
type Config struct {
	Mode         string    // rfm | cluster
	Country      string    // marché retenu pour le RFM
	AsOf         time.Time // zéro = lendemain de la dernière facture
	SegmentsFile string    // catalogue YAML des segments nommés (optionnel)
	Log          LogConfig
	Source       SourceConfig
	Output       OutputConfig
	Cluster      ClusterConfig
}

// LogConfig configuration du logger.
type LogConfig struct {
	Env   string
	Level string
}

// SourceConfig décrit la provenance des transactions.
type SourceConfig struct {
	Kind     string // csv | sql
	Path     string // fichier CSV
	DSN      string // mysql://, mariadb://, postgres:// ou DSN natif MySQL
	Table    string
	Progress bool
}

// OutputConfig paramètres de rendu, passés explicitement au rapport.
type OutputConfig struct {
	Format string // table | csv | json
	Path   string // vide = stdout
	Locale string // ex: en, fr, de-CH
	Width  int
	Limit  int // nombre max de lignes par vue en mode table, 0 = tout
}

// ClusterConfig paramètres de l'analyse des offres vin.
type ClusterConfig struct {
	OffersPath    string
	ResponsesPath string
	K             int
	Seed          int64
	MaxIterations int
	Focus         int // cluster détaillé dans le profil d'offres
}

const dateLayout = "2006-01-02"

var (
	modes   = map[string]bool{"rfm": true, "cluster": true}
	kinds   = map[string]bool{"csv": true, "sql": true}
	formats = map[string]bool{"table": true, "csv": true, "json": true}
)

// Load lit la configuration. file vide = recherche facultative de rfm.{yaml,env,...}
// dans "." et "./config". overrides contient les flags explicitement passés.
func Load(file string, overrides map[string]string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("rfm")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("RFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range overrides {
		v.Set(k, val)
	}

	cfg := &Config{
		Mode:         strings.ToLower(v.GetString("mode")),
		Country:      v.GetString("country"),
		SegmentsFile: v.GetString("segments_file"),
		Log: LogConfig{
			Env:   v.GetString("log.env"),
			Level: v.GetString("log.level"),
		},
		Source: SourceConfig{
			Kind:     strings.ToLower(v.GetString("source.kind")),
			Path:     v.GetString("source.path"),
			DSN:      v.GetString("source.dsn"),
			Table:    v.GetString("source.table"),
			Progress: v.GetBool("source.progress"),
		},
		Output: OutputConfig{
			Format: strings.ToLower(v.GetString("output.format")),
			Path:   v.GetString("output.path"),
			Locale: v.GetString("output.locale"),
			Width:  v.GetInt("output.width"),
			Limit:  v.GetInt("output.limit"),
		},
		Cluster: ClusterConfig{
			OffersPath:    v.GetString("cluster.offers"),
			ResponsesPath: v.GetString("cluster.responses"),
			K:             v.GetInt("cluster.k"),
			Seed:          v.GetInt64("cluster.seed"),
			MaxIterations: v.GetInt("cluster.max_iterations"),
			Focus:         v.GetInt("cluster.focus"),
		},
	}

	if s := strings.TrimSpace(v.GetString("as_of")); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("as_of %q (attendu AAAA-MM-JJ): %w", s, models.ErrInvalidDate)
		}
		cfg.AsOf = t
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate contrôle la cohérence des valeurs.
func (c *Config) Validate() error {
	if !modes[c.Mode] {
		return fmt.Errorf("mode %q invalide (rfm | cluster)", c.Mode)
	}
	if !formats[c.Output.Format] {
		return fmt.Errorf("format %q invalide (table | csv | json)", c.Output.Format)
	}
	if c.Output.Width < 0 || c.Output.Limit < 0 {
		return fmt.Errorf("largeur et limite doivent être >= 0")
	}
	switch c.Mode {
	case "rfm":
		if !kinds[c.Source.Kind] {
			return fmt.Errorf("source %q: %w", c.Source.Kind, models.ErrUnknownSource)
		}
		if c.Source.Kind == "csv" && c.Source.Path == "" {
			return fmt.Errorf("source csv sans chemin (--file)")
		}
		if c.Source.Kind == "sql" && c.Source.DSN == "" {
			return fmt.Errorf("source sql sans DSN (--dsn ou RFM_SOURCE_DSN)")
		}
		if strings.TrimSpace(c.Country) == "" {
			return fmt.Errorf("pays vide")
		}
	case "cluster":
		if c.Cluster.OffersPath == "" || c.Cluster.ResponsesPath == "" {
			return fmt.Errorf("fichiers offres et réponses requis")
		}
		if c.Cluster.K < 1 {
			return fmt.Errorf("k=%d: %w", c.Cluster.K, models.ErrInvalidK)
		}
		if c.Cluster.MaxIterations < 1 {
			return fmt.Errorf("max_iterations doit être >= 1")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "rfm")
	v.SetDefault("country", "United Kingdom")
	v.SetDefault("as_of", "")
	v.SetDefault("segments_file", "")
	v.SetDefault("log.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("source.kind", "csv")
	v.SetDefault("source.path", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.table", "OnlineRetail")
	v.SetDefault("source.progress", true)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.path", "")
	v.SetDefault("output.locale", "en")
	v.SetDefault("output.width", 120)
	v.SetDefault("output.limit", 20)
	v.SetDefault("cluster.offers", "")
	v.SetDefault("cluster.responses", "")
	v.SetDefault("cluster.k", 5)
	v.SetDefault("cluster.seed", 1)
	v.SetDefault("cluster.max_iterations", 300)
	v.SetDefault("cluster.focus", 4)
}
