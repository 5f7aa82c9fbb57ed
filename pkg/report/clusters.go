package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/message"

	"rfm-segmentation/pkg/models"
)

// WriteClusters rend le résultat de l'analyse des offres.
func WriteClusters(w io.Writer, res *models.ClusterResult, opts Options) error {
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "csv":
		return writeClustersCSV(w, res)
	case "table", "":
		return writeClustersTable(w, res, opts)
	default:
		return fmt.Errorf("format %q inconnu", opts.Format)
	}
}

func writeClustersCSV(w io.Writer, res *models.ClusterResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"customer_name", "cluster", "x", "y"})
	for _, c := range res.Customers {
		_ = cw.Write([]string{
			c.CustomerName,
			strconv.Itoa(c.Cluster),
			strconv.FormatFloat(c.X, 'f', 6, 64),
			strconv.FormatFloat(c.Y, 'f', 6, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeClustersTable(w io.Writer, res *models.ClusterResult, opts Options) error {
	p := printer(opts.Locale)

	var sections []string
	sections = append(sections, title(p.Sprintf("k-means k=%d ; itérations=%d ; inertie=%.3f",
		res.K, res.Iterations, res.Inertia)))

	sizes := make([][]string, 0, len(res.Sizes))
	for _, s := range res.Sizes {
		sizes = append(sizes, []string{strconv.Itoa(s.Cluster), p.Sprintf("%d", s.Customers)})
	}
	sections = append(sections, title("Effectifs"), render([]string{"Cluster", "Clients"}, sizes))

	points := make([][]string, 0)
	for _, c := range limit(res.Customers, opts.Limit) {
		points = append(points, []string{
			c.CustomerName, strconv.Itoa(c.Cluster), p.Sprintf("%.3f", c.X), p.Sprintf("%.3f", c.Y),
		})
	}
	sections = append(sections, title("Projection ACP"), render([]string{"Client", "Cluster", "x", "y"}, points))

	sections = append(sections, title(fmt.Sprintf("Offres acceptées : cluster %d vs autres", res.Focus)),
		render([]string{"Groupe", "Réponses", "Min qty moy.", "Remise moy.", "Cépages"}, [][]string{
			groupRow(p, fmt.Sprintf("cluster %d", res.Focus), res.Inside),
			groupRow(p, "autres", res.Outside),
		}))

	return writeSections(w, sections, opts.Width)
}

func groupRow(p *message.Printer, name string, g models.OfferGroupProfile) []string {
	return []string{
		name,
		p.Sprintf("%d", g.Responses),
		p.Sprintf("%.1f", g.MeanMinQuantity),
		p.Sprintf("%.1f", g.MeanDiscount),
		topVarietals(g.Varietals, 3),
	}
}

// topVarietals : les n cépages les plus fréquents, "Pinot Noir=12, ...".
func topVarietals(counts map[string]int, n int) string {
	type kv struct {
		name  string
		count int
	}
	list := make([]kv, 0, len(counts))
	for k, v := range counts {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})
	parts := make([]string, 0, n)
	for _, e := range limit(list, n) {
		parts = append(parts, fmt.Sprintf("%s=%d", e.name, e.count))
	}
	return strings.Join(parts, ", ")
}
