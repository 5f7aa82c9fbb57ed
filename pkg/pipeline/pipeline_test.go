package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-segmentation/pkg/config"
	"rfm-segmentation/pkg/models"
)

// retailFixture : 3 clients UK (A meilleur, C pire), une ligne France,
// une ligne sans client et un avoir négatif.
func retailFixture(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n")
	asOf := time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC)
	line := func(inv string, qty int, daysAgo int, price, customer, country string) {
		d := asOf.AddDate(0, 0, -daysAgo).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "%s,X,ITEM,%d,%s,%s,%s,%s\n", inv, qty, d, price, customer, country)
	}
	for i := 0; i < 20; i++ {
		line(fmt.Sprintf("A%d", i), 1, 1+i, "50", "12346.0", "United Kingdom")
	}
	for i := 0; i < 5; i++ {
		line(fmt.Sprintf("B%d", i), 1, 50+i, "20", "13047", "United Kingdom")
	}
	line("C0", 1, 400, "10", "17850", "United Kingdom")
	line("F0", 3, 2, "9.5", "12583", "France")
	line("N0", 2, 2, "1", "", "United Kingdom")
	line("CR1", -4, 3, "50", "12346", "United Kingdom")

	path := filepath.Join(t.TempDir(), "retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func loadConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.Load("", overrides)
	require.NoError(t, err)
	return cfg
}

func TestRunRFM_JSON(t *testing.T) {
	path := retailFixture(t)
	cfg := loadConfig(t, map[string]string{
		"source.path":     path,
		"source.progress": "false",
		"output.format":   "json",
		"as_of":           "2011-12-10",
	})
	src, closeFn, err := OpenSource(cfg.Source, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()

	var buf bytes.Buffer
	require.NoError(t, RunRFM(context.Background(), cfg, src, &buf, zerolog.Nop()))

	var out struct {
		RowsRead  int `json:"rowsRead"`
		RowsKept  int `json:"rowsKept"`
		Customers []struct {
			CustomerID string `json:"customerId"`
			Label      string `json:"label"`
		} `json:"customers"`
		Views []struct {
			Name      string `json:"name"`
			Customers []struct {
				CustomerID string `json:"customerId"`
			} `json:"customers"`
		} `json:"views"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 29, out.RowsRead)
	assert.Equal(t, 26, out.RowsKept)
	require.Len(t, out.Customers, 3)
	assert.Equal(t, "12346", out.Customers[0].CustomerID)
	assert.Equal(t, "111", out.Customers[0].Label)
	assert.Equal(t, "17850", out.Customers[2].CustomerID)
	assert.Equal(t, "444", out.Customers[2].Label)

	require.Len(t, out.Views, 2)
	assert.Equal(t, "worst", out.Views[1].Name)
	require.Len(t, out.Views[1].Customers, 1)
	assert.Equal(t, "17850", out.Views[1].Customers[0].CustomerID)
}

func TestRunRFM_CustomSegments(t *testing.T) {
	path := retailFixture(t)
	segPath := filepath.Join(t.TempDir(), "segments.yaml")
	require.NoError(t, os.WriteFile(segPath, []byte("segments:\n  - name: champions\n    labels: [\"111\"]\n"), 0o600))

	cfg := loadConfig(t, map[string]string{
		"source.path":     path,
		"source.progress": "false",
		"output.format":   "csv",
		"segments_file":   segPath,
	})
	src, _, err := OpenSource(cfg.Source, zerolog.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RunRFM(context.Background(), cfg, src, &buf, zerolog.Nop()))
	assert.Contains(t, buf.String(), "12346,1,20,1000.00,1,1,1,111,")
	assert.Contains(t, buf.String(), ",champions\n")
	assert.Contains(t, buf.String(), ",worst\n")
}

func TestRunRFM_EmptyMarketFails(t *testing.T) {
	path := retailFixture(t)
	cfg := loadConfig(t, map[string]string{
		"source.path":     path,
		"source.progress": "false",
		"country":         "Germany",
	})
	src, _, err := OpenSource(cfg.Source, zerolog.Nop())
	require.NoError(t, err)

	err = RunRFM(context.Background(), cfg, src, &bytes.Buffer{}, zerolog.Nop())
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]models.TransactionRecord, error) {
	return nil, models.ErrMissingColumn
}

func (failingSource) Describe() string { return "failing" }

func TestRunRFM_SourceErrorPropagates(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"source.path": "unused.csv"})
	err := RunRFM(context.Background(), cfg, failingSource{}, &bytes.Buffer{}, zerolog.Nop())
	assert.ErrorIs(t, err, models.ErrMissingColumn)
	assert.Contains(t, err.Error(), "failing")
}

func TestOpenSource_Unknown(t *testing.T) {
	_, closeFn, err := OpenSource(config.SourceConfig{Kind: "xlsx"}, zerolog.Nop())
	assert.ErrorIs(t, err, models.ErrUnknownSource)
	assert.NoError(t, closeFn())
}

func TestRunCluster(t *testing.T) {
	dir := t.TempDir()
	offers := filepath.Join(dir, "offers.csv")
	responses := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(offers, []byte(`Offer #,Campaign,Varietal,Min Qty,Discount,Origin,Past Peak
1,January,Malbec,72,56,France,FALSE
2,January,Pinot Noir,72,17,France,FALSE
3,February,Espumante,144,32,Oregon,TRUE
4,February,Pinot Noir,6,50,Chile,FALSE
`), 0o600))
	require.NoError(t, os.WriteFile(responses, []byte(`Customer Last Name,Offer #
Smith,2
Smith,4
Jones,2
Jones,4
Adams,1
Adams,3
Baker,1
Baker,3
`), 0o600))

	cfg := loadConfig(t, map[string]string{
		"mode":              "cluster",
		"cluster.offers":    offers,
		"cluster.responses": responses,
		"cluster.k":         "2",
		"output.format":     "csv",
	})

	var buf bytes.Buffer
	require.NoError(t, RunCluster(context.Background(), cfg, &buf, zerolog.Nop()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "customer_name,cluster,x,y", lines[0])
}
