package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"rfm-segmentation/pkg/models"
)

var tablePattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// Open DSN mariadb://, mysql:// → driver MySQL; postgres:// → pgx.
// Tout autre DSN est passé tel quel au driver MySQL.
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := resolveDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, driver, nil
}

func resolveDSN(dsn string) (driver, native string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, nil
	default:
		native, err := toMySQLDSN(dsn)
		if err != nil {
			return "", "", err
		}
		return "mysql", native, nil
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// SQLSource charge les transactions depuis une table
// (InvoiceNo, InvoiceDate, Quantity, UnitPrice, CustomerID, Country).
type SQLSource struct {
	DB       *sql.DB
	Table    string
	Progress bool
	Log      zerolog.Logger
}

// Describe sert aux logs.
func (s SQLSource) Describe() string {
	return "sql:" + s.Table
}

// Load lit toute la table; le filtrage RFM se fait en mémoire.
func (s SQLSource) Load(ctx context.Context) ([]models.TransactionRecord, error) {
	selectQ, countQ, err := buildQueries(s.Table)
	if err != nil {
		return nil, err
	}

	var total int64 = -1
	if err := s.DB.QueryRowContext(ctx, countQ).Scan(&total); err != nil {
		s.Log.Debug().Err(err).Msg("count error, progression indéterminée")
		total = -1
	} else {
		s.Log.Debug().Int64("rows", total).Str("table", s.Table).Msg("lignes à lire")
	}

	rows, err := s.DB.QueryContext(ctx, selectQ)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.Table, err)
	}
	defer rows.Close()

	var bar *progressbar.ProgressBar
	if s.Progress {
		bar = progressbar.Default(total, "lecture "+s.Table)
		defer bar.Finish()
	}

	var out []models.TransactionRecord
	for rows.Next() {
		var r sqlRow
		if err := rows.Scan(&r.InvoiceNo, &r.InvoiceDate, &r.Quantity, &r.UnitPrice, &r.CustomerID, &r.Country); err != nil {
			return nil, fmt.Errorf("scan ligne %d: %w", len(out)+1, err)
		}
		rec, err := r.toRecord()
		if err != nil {
			return nil, fmt.Errorf("ligne %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.Log.Debug().Int("rows", len(out)).Msg("lignes chargées")
	return out, nil
}

// sqlRow : valeurs brutes d'une ligne, colonnes nullables comprises.
type sqlRow struct {
	InvoiceNo   sql.NullString
	InvoiceDate sql.NullTime
	Quantity    sql.NullInt64
	UnitPrice   decimal.NullDecimal
	CustomerID  sql.NullString
	Country     sql.NullString
}

func (r sqlRow) toRecord() (models.TransactionRecord, error) {
	if !r.InvoiceDate.Valid {
		return models.TransactionRecord{}, fmt.Errorf("InvoiceDate NULL: %w", models.ErrInvalidDate)
	}
	if !r.Quantity.Valid {
		return models.TransactionRecord{}, fmt.Errorf("Quantity NULL: %w", models.ErrInvalidNumber)
	}
	if !r.UnitPrice.Valid {
		return models.TransactionRecord{}, fmt.Errorf("UnitPrice NULL: %w", models.ErrInvalidNumber)
	}
	return models.TransactionRecord{
		CustomerID:  models.NormalizeCustomerID(r.CustomerID.String),
		Country:     strings.TrimSpace(r.Country.String),
		InvoiceID:   strings.TrimSpace(r.InvoiceNo.String),
		InvoiceDate: r.InvoiceDate.Time.UTC(),
		Quantity:    int(r.Quantity.Int64),
		UnitPrice:   r.UnitPrice.Decimal,
	}, nil
}

func buildQueries(table string) (selectQ, countQ string, err error) {
	if !tablePattern.MatchString(table) {
		return "", "", fmt.Errorf("table invalide %q", table)
	}
	selectQ = fmt.Sprintf(`
		SELECT InvoiceNo, InvoiceDate, Quantity, UnitPrice, CustomerID, Country
		FROM %s
	`, table)
	countQ = fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
	return selectQ, countQ, nil
}
