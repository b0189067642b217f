package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/davicafu/toplaces/internal/bootstrap"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
)

var topLimit int

// topCmd imprime el ranking pasando por el caché local.
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the top places ranking",
	Long: `Print the ranked top places. The list is served from the local store while it
is fresh; otherwise it is fetched from the document store and persisted.

Examples:
  # Top 10 (TOP_LIMIT) places
  toplacesctl top

  # Top 3 using the SQLite store
  STORE_BACKEND=sqlite toplacesctl top --limit 3`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmdContext(cmd)

		limit := cfg.TopLimit
		if cmd.Flags().Changed("limit") {
			limit = topLimit
		}
		if limit <= 0 {
			return placeDomain.ErrInvalidLimit
		}

		store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		source, closeSource, err := bootstrap.OpenPlaceSource(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeSource()

		cache := bootstrap.NewTopPlacesCache(cfg, source, store, nil, log)
		return writePlacesTable(cmd.OutOrStdout(), cache.GetTopItems(ctx, limit, cfg.CacheTTL))
	},
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 0, "number of places to show (default TOP_LIMIT)")
}

// writePlacesTable genera la tabla legible del ranking.
func writePlacesTable(w io.Writer, places []placeDomain.Place) error {
	if len(places) == 0 {
		_, err := fmt.Fprintln(w, "No places available.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "ID", "Name", "Category", "City", "Popularity", "Rating"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(places))
	for i, p := range places {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			p.ID,
			p.Name,
			string(p.Category),
			p.City,
			strconv.FormatInt(p.Popularity, 10),
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
