package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/awsmp/internal/cmd/table"
	"github.com/canonical/awsmp/internal/marketplace"
	"github.com/canonical/awsmp/pkg/changeset"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
	"github.com/canonical/awsmp/pkg/logging"
	"github.com/canonical/awsmp/pkg/reconcile"
)

var publicOfferCmd = &cobra.Command{
	Use:     "public-offer",
	Short:   "Create and update public offers",
	GroupID: "offers",
}

var publicOfferCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new AMI product listing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		id, err := client.StartChangeSet(cmd.Context(), "Create new AMI Product", changeset.CreateListing())
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

var publicOfferUpdateDescriptionCmd = &cobra.Command{
	Use:   "update-description",
	Short: "Update the product description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "product")
		if err != nil {
			return err
		}

		change, err := changeset.UpdateProductDescription(productID, &cfg.Product.Description)
		if err != nil {
			return err
		}

		return submit(cmd, fmt.Sprintf("Product %s description update", productID), []changeset.Change{change})
	},
}

var publicOfferUpdateInstanceTypesCmd = &cobra.Command{
	Use:   "update-instance-types",
	Short: "Reconcile instance types and pricing with the local file",
	Long: `Reconcile instance types and pricing with the local file.

The local file is the full authoritative set: instance types it omits
are restricted, new ones are registered and priced, and the pricing
terms are replaced wholesale when anything differs. Price changes on
existing dimensions are refused unless --allow-price-change is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "offer")
		if err != nil {
			return err
		}

		unitFlag, _ := cmd.Flags().GetString("dimension-unit")
		allowPriceChange, _ := cmd.Flags().GetBool("allow-price-change")

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}
		ctx := logging.WithProduct(cmd.Context(), productID)

		details, offerID, err := client.FullListingDetails(ctx, productID)
		if err != nil {
			return err
		}
		ctx = logging.WithOffer(ctx, offerID)

		result, err := reconcile.Reconcile(productID, offerID, cfg.Offer.InstanceTypes,
			cfg.Offer.MonthlySubscriptionFee,
			reconcile.Existing{
				Visibility: details.Description.Visibility,
				Dimensions: details.DimensionNames(),
				Terms:      details.Terms,
			},
			changeset.DimensionUnit(unitFlag),
			reconcile.Policy{AllowPriceChange: allowPriceChange})
		if err != nil {
			var priceErr *errors.PriceChangeNotAllowedError
			if errors.As(err, &priceErr) {
				_ = formatter().Format(os.Stderr, table.PriceDiffsToTableData("-", priceErr.Diffs))
			}
			return err
		}
		if result.NoChange() {
			logging.Ctx(ctx).Info().Msg("listing already matches the desired pricing")
			fmt.Println("Nothing to do.")
			return nil
		}

		logging.Ctx(ctx).Info().
			Str("pricing_type", cfg.Offer.PricingType().String()).
			Strs("to_add", result.ToAdd).
			Strs("to_restrict", result.ToRestrict).
			Int("price_changes", len(result.HourlyDiffs)+len(result.AnnualDiffs)).
			Msg("reconciliation computed")

		id, err := client.StartChangeSet(ctx,
			fmt.Sprintf("Product %s instance type update", productID), result.Changes)
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

var publicOfferUpdateRegionsCmd = &cobra.Command{
	Use:   "update-regions",
	Short: "Update the product's region availability",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "product")
		if err != nil {
			return err
		}
		if err := cfg.Product.Region.Validate(); err != nil {
			return err
		}

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		regions, err := client.ExpandRegions(cmd.Context(), cfg.Product.Region.CommercialRegions)
		if err != nil {
			return err
		}

		changes := []changeset.Change{
			changeset.AddRegions(productID, regions),
			changeset.UpdateFutureRegionSupport(productID, cfg.Product.Region.FutureRegionSupported()),
		}
		id, err := client.StartChangeSet(cmd.Context(),
			fmt.Sprintf("Product %s region update", productID), changes)
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

var publicOfferUpdateVersionCmd = &cobra.Command{
	Use:   "update-version",
	Short: "Publish a new AMI version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "product")
		if err != nil {
			return err
		}

		change, err := changeset.AddDeliveryOptions(productID, &cfg.Product.Version)
		if err != nil {
			return err
		}
		return submit(cmd, fmt.Sprintf("Product %s version update", productID), []changeset.Change{change})
	},
}

var publicOfferUpdateLegalTermsCmd = &cobra.Command{
	Use:   "update-legal-terms",
	Short: "Update the offer's EULA documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "offer")
		if err != nil {
			return err
		}

		return submitToPublicOffer(cmd, productID,
			fmt.Sprintf("Product %s legal terms update", productID),
			func(offerID string) changeset.Change {
				return changeset.UpdateLegalTerms(offerID, cfg.Offer.EulaDocument)
			})
	},
}

var publicOfferUpdateSupportTermsCmd = &cobra.Command{
	Use:   "update-support-terms",
	Short: "Update the offer's refund policy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "offer")
		if err != nil {
			return err
		}

		return submitToPublicOffer(cmd, productID,
			fmt.Sprintf("Product %s support terms update", productID),
			func(offerID string) changeset.Change {
				return changeset.UpdateSupportTerms(offerID, cfg.Offer.RefundPolicy)
			})
	},
}

var publicOfferUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update product description and regions in one change set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, configPath := productFlags(cmd)
		cfg, err := listing.LoadConfig(configPath, "product")
		if err != nil {
			return err
		}

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		regions, err := client.ExpandRegions(cmd.Context(), cfg.Product.Region.CommercialRegions)
		if err != nil {
			return err
		}
		cfg.Product.Region.CommercialRegions = regions

		changes, err := changeset.UpdateListing(productID, &cfg.Product)
		if err != nil {
			return err
		}
		id, err := client.StartChangeSet(cmd.Context(),
			fmt.Sprintf("Product %s update product details", productID), changes)
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

var publicOfferInstanceTypeTemplateCmd = &cobra.Command{
	Use:   "instance-type-template",
	Short: "Seed a pricing file with every matching instance type",
	Long: `Seed a pricing file with every matching instance type.

Queries EC2 for the instance types available for the given architecture
and virtualization type and writes them to a CSV with zero prices, one
row per type, ready to be priced and fed to update-instance-types.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		arch, _ := cmd.Flags().GetString("arch")
		virt, _ := cmd.Flags().GetString("virt")
		out, _ := cmd.Flags().GetString("out")

		if !contains([]string{"x86_64", "arm64", "i386"}, arch) {
			return errors.NewValidationError("arch", arch, "must be one of x86_64, arm64, i386")
		}
		if !contains([]string{"hvm", "paravirtual"}, virt) {
			return errors.NewValidationError("virt", virt, "must be one of hvm, paravirtual")
		}

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}
		names, err := client.InstanceTypesForRequirements(cmd.Context(), arch, virt)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		w := csv.NewWriter(f)
		for _, name := range names {
			if err := w.Write([]string{name, "0.00", "0.00"}); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}

		fmt.Printf("Available instance types are exported in %s file.\n", out)
		return nil
	},
}

var publicOfferReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Publish the AMI product as Limited",
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, _ := cmd.Flags().GetString("product-id")

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		offerID, err := client.PublicOfferID(cmd.Context(), productID)
		if err != nil {
			return err
		}

		id, err := client.StartChangeSet(cmd.Context(),
			fmt.Sprintf("Product %s publish as limited", productID),
			changeset.ReleaseListing(productID, offerID))
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

// productFlags reads the flags every public-offer command takes.
func productFlags(cmd *cobra.Command) (productID, configPath string) {
	productID, _ = cmd.Flags().GetString("product-id")
	configPath, _ = cmd.Flags().GetString("config")
	return productID, configPath
}

// submit starts a change set against the catalog and prints its id.
func submit(cmd *cobra.Command, name string, changes []changeset.Change) error {
	client, err := marketplace.New(cmd.Context())
	if err != nil {
		return err
	}
	id, err := client.StartChangeSet(cmd.Context(), name, changes)
	if err != nil {
		return err
	}
	printChangeSet(id)
	return nil
}

// submitToPublicOffer resolves the product's public offer and submits
// one change built against it.
func submitToPublicOffer(cmd *cobra.Command, productID, name string,
	build func(offerID string) changeset.Change) error {
	ctx := logging.WithOperation(cmd.Context(), cmd.Name())
	ctx = logging.WithProduct(ctx, productID)

	client, err := marketplace.New(ctx)
	if err != nil {
		return err
	}
	offerID, err := client.PublicOfferID(ctx, productID)
	if err != nil {
		return err
	}
	ctx = logging.WithOffer(ctx, offerID)
	id, err := client.StartChangeSet(ctx, name, []changeset.Change{build(offerID)})
	if err != nil {
		return err
	}
	printChangeSet(id)
	return nil
}

func addProductFlags(cmd *cobra.Command) {
	cmd.Flags().String("product-id", "", "AMI product entity id")
	cmd.Flags().String("config", "", "local listing configuration file")
	_ = cmd.MarkFlagRequired("product-id")
	_ = cmd.MarkFlagRequired("config")
}

func init() {
	for _, c := range []*cobra.Command{
		publicOfferUpdateDescriptionCmd,
		publicOfferUpdateInstanceTypesCmd,
		publicOfferUpdateRegionsCmd,
		publicOfferUpdateVersionCmd,
		publicOfferUpdateLegalTermsCmd,
		publicOfferUpdateSupportTermsCmd,
		publicOfferUpdateCmd,
	} {
		addProductFlags(c)
	}
	publicOfferReleaseCmd.Flags().String("product-id", "", "AMI product entity id")
	_ = publicOfferReleaseCmd.MarkFlagRequired("product-id")

	publicOfferUpdateInstanceTypesCmd.Flags().String("dimension-unit", string(changeset.UnitHrs),
		"billing unit for new dimensions: Hrs or Units")
	publicOfferUpdateInstanceTypesCmd.Flags().Bool("allow-price-change", false,
		"permit price changes on existing dimensions, including free to paid")

	publicOfferInstanceTypeTemplateCmd.Flags().String("arch", "x86_64",
		"instance architecture: x86_64, arm64 or i386")
	publicOfferInstanceTypeTemplateCmd.Flags().String("virt", "hvm",
		"virtualization type: hvm or paravirtual")
	publicOfferInstanceTypeTemplateCmd.Flags().String("out", "instance_type.csv",
		"path of the CSV file to write")

	publicOfferCmd.AddCommand(publicOfferCreateCmd)
	publicOfferCmd.AddCommand(publicOfferInstanceTypeTemplateCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateDescriptionCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateInstanceTypesCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateRegionsCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateVersionCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateLegalTermsCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateSupportTermsCmd)
	publicOfferCmd.AddCommand(publicOfferUpdateCmd)
	publicOfferCmd.AddCommand(publicOfferReleaseCmd)
	rootCmd.AddCommand(publicOfferCmd)
}
