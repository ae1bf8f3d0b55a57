package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/canonical/awsmp/internal/cmd/table"
	"github.com/canonical/awsmp/internal/marketplace"
	"github.com/canonical/awsmp/pkg/differ"
	"github.com/canonical/awsmp/pkg/listing"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Inspect marketplace entities",
	GroupID: "inspect",
}

var entityListCmd = &cobra.Command{
	Use:       "entity-list <entity-type>",
	Short:     "List entities of a given type",
	Long:      "List available entities. Currently supported are entities of type Offer and AmiProduct.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"Offer", "AmiProduct"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		entities, err := client.ListEntities(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetStringSlice("filter-visibility")
		rows := make([][]string, 0, len(entities))
		for _, e := range entities {
			if len(filter) > 0 && !contains(filter, e.Visibility) {
				continue
			}
			rows = append(rows, []string{e.EntityID, e.Name, e.Visibility, e.LastModified})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i][3] < rows[j][3] })

		return formatter().Format(os.Stdout, table.Data{
			Headers: []string{"Entity Id", "Name", "Visibility", "Last Changed"},
			Rows:    rows,
		})
	},
}

var entityShowCmd = &cobra.Command{
	Use:   "entity-show <entity-id>",
	Short: "Show a specific entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		details, err := client.EntityDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return formatter().Format(os.Stdout, details)
	},
}

var entityVersionsListCmd = &cobra.Command{
	Use:   "entity-versions-list <entity-id>",
	Short: "List all versions of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		details, err := client.EntityDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		versions := append([]listing.Version(nil), details.Versions...)
		sort.Slice(versions, func(i, j int) bool {
			return versions[i].CreationDate < versions[j].CreationDate
		})
		return formatter().Format(os.Stdout, table.VersionsToTableData(versions))
	},
}

var entityVersionsCountCmd = &cobra.Command{
	Use:   "entity-versions-count",
	Short: "List AMI products ordered by their version count",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		entities, err := client.ListEntities(cmd.Context(), "AmiProduct")
		if err != nil {
			return err
		}

		type countRow struct {
			entityID string
			name     string
			count    int
		}
		counts := make([]countRow, 0, len(entities))
		for _, e := range entities {
			details, err := client.EntityDetails(cmd.Context(), e.EntityID)
			if err != nil {
				return err
			}
			counts = append(counts, countRow{entityID: e.EntityID, name: e.Name, count: len(details.Versions)})
		}
		sort.Slice(counts, func(i, j int) bool { return counts[i].count < counts[j].count })

		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{c.entityID, strconv.Itoa(c.count), c.name})
		}
		return formatter().Format(os.Stdout, table.Data{
			Headers: []string{"Entity Id", "Versions", "Name"},
			Rows:    rows,
		})
	},
}

var entityDiffCmd = &cobra.Command{
	Use:   "entity-diff <product-id>",
	Short: "Diff a local listing file against the remote entity",
	Long: `Diff a local listing file against the remote entity.

Fetches the product and its public offer, normalizes both the remote
state and the local file into the same snapshot shape, and reports
every added, removed and changed field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := listing.LoadConfig(configPath, "product", "offer")
		if err != nil {
			return err
		}

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		details, _, err := client.FullListingDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		observed, err := details.Snapshot()
		if err != nil {
			return err
		}

		regions, err := client.ExpandRegions(cmd.Context(), cfg.Product.Region.CommercialRegions)
		if err != nil {
			return err
		}
		cfg.Product.Region.CommercialRegions = regions

		desired, err := listing.NewSnapshot(cfg)
		if err != nil {
			return err
		}

		report := differ.Diff(observed, desired)
		if report.Empty() {
			fmt.Println("No differences found.")
			return nil
		}
		if outputFormat == "table" {
			return formatter().Format(os.Stdout, table.DiffToTableData(report))
		}
		return formatter().Format(os.Stdout, report)
	},
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func init() {
	entityListCmd.Flags().StringSlice("filter-visibility", nil,
		"only show entities with the given visibility (Public, Restricted, Limited)")

	entityDiffCmd.Flags().String("config", "", "local listing configuration file")
	_ = entityDiffCmd.MarkFlagRequired("config")

	inspectCmd.AddCommand(entityListCmd)
	inspectCmd.AddCommand(entityShowCmd)
	inspectCmd.AddCommand(entityVersionsListCmd)
	inspectCmd.AddCommand(entityVersionsCountCmd)
	inspectCmd.AddCommand(entityDiffCmd)
	rootCmd.AddCommand(inspectCmd)
}
