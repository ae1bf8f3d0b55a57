package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canonical/awsmp/internal/cmd/table"
	"github.com/canonical/awsmp/internal/marketplace"
	"github.com/canonical/awsmp/pkg/changeset"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
	"github.com/canonical/awsmp/pkg/logging"
	"github.com/canonical/awsmp/pkg/reconcile"
)

var privateOfferCmd = &cobra.Command{
	Use:     "private-offer",
	Short:   "Create private offers",
	GroupID: "offers",
}

var privateOfferCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new private offer",
	Long: `Create a new private offer.

The file passed via --pricing must be a CSV file without headers and
three columns: instance type name, hourly price, annual price. Every
instance type available in the product must be listed.

--available-for-days says how long the offer can be accepted;
--valid-for-days says how long the agreement runs once accepted.
--eula-url may be left empty to use the standard AWS EULA; it can also
be set via the AWSMP_EULA_URL environment variable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		productID, _ := cmd.Flags().GetString("product-id")
		buyerAccounts, _ := cmd.Flags().GetStringSlice("buyer-accounts")
		availableForDays, _ := cmd.Flags().GetInt("available-for-days")
		validForDays, _ := cmd.Flags().GetInt("valid-for-days")
		withSupport, _ := cmd.Flags().GetBool("with-support")
		customerName, _ := cmd.Flags().GetString("customer-name")
		pricingPath, _ := cmd.Flags().GetString("pricing")

		eulaURL, _ := cmd.Flags().GetString("eula-url")
		if eulaURL == "" {
			eulaURL = viper.GetString("eula-url")
		}

		pricingFile, err := os.Open(pricingPath)
		if err != nil {
			return errors.NewConfigError(pricingPath, nil, err)
		}
		defer pricingFile.Close()

		pricing, err := readPricingCSV(pricingFile)
		if err != nil {
			return err
		}

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}
		ctx := logging.WithProduct(cmd.Context(), productID)

		details, err := client.EntityDetails(ctx, productID)
		if err != nil {
			return err
		}
		if err := reconcile.RequireFullCoverage(pricing, details.DimensionNames()); err != nil {
			return err
		}

		offerName := buildOfferName(details.Description.ProductTitle, buyerAccounts, withSupport, customerName)
		logging.Ctx(ctx).Info().Str("offer_name", offerName).Msg("creating private offer")

		if outputFormat == "table" {
			if err := formatter().Format(os.Stdout, table.PricingToTableData(pricing)); err != nil {
				return err
			}
		}

		// The agreement must outlive the acceptance window.
		changes := changeset.PrivateOffer(productID, offerName, buyerAccounts, pricing,
			availableForDays, validForDays+availableForDays+1, eulaURL)

		name := fmt.Sprintf("create private offer for %s: %s", productID, offerName)
		if len(name) > 95 {
			name = name[:95] + "..."
		}
		id, err := client.StartChangeSet(ctx, name, changes)
		if err != nil {
			return err
		}
		printChangeSet(id)
		return nil
	},
}

var pricingTemplateCmd = &cobra.Command{
	Use:   "pricing-template",
	Short: "Generate a pricing CSV template from an existing offer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		offerID, _ := cmd.Flags().GetString("offer-id")
		pricingPath, _ := cmd.Flags().GetString("pricing")
		free, _ := cmd.Flags().GetBool("free")

		client, err := marketplace.New(cmd.Context())
		if err != nil {
			return err
		}

		details, err := client.EntityDetails(cmd.Context(), offerID)
		if err != nil {
			return err
		}

		usage, ok := details.Terms.Usage()
		if !ok {
			return errors.NewNotFoundError("usage pricing term on offer", offerID)
		}
		hourly := usage.RateCard

		annual := hourly
		if !free {
			upfront, ok := details.Terms.ConfigurableUpfront()
			if !ok {
				return errors.NewNotFoundError("annual pricing term on offer", offerID)
			}
			annual = upfront.RateCard
			if len(hourly.MissingFrom(annual))+len(annual.MissingFrom(hourly)) > 0 {
				return errors.NewValidationError("pricing", offerID,
					"instance type dimensions are not identical in hourly and annual prices")
			}
		}

		out, err := os.Create(pricingPath)
		if err != nil {
			return errors.NewConfigError(pricingPath, nil, err)
		}
		defer out.Close()

		keys := hourly.Keys()
		sort.Strings(keys)
		w := csv.NewWriter(out)
		for _, key := range keys {
			hourlyPrice, _ := hourly.Get(key)
			annualPrice, _ := annual.Get(key)
			if err := w.Write([]string{key, hourlyPrice, annualPrice}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	},
}

// readPricingCSV parses a headerless name,hourly,annual pricing file. An
// empty annual column means hourly-only pricing for that type.
func readPricingCSV(r io.Reader) ([]listing.InstanceTypePricing, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.NewValidationError("pricing", nil, err.Error())
	}

	pricing := make([]listing.InstanceTypePricing, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			return nil, errors.NewValidationError("pricing", rec, "expected name,hourly[,annual] columns")
		}
		hourly, err := listing.NewPrice(rec[1])
		if err != nil {
			return nil, err
		}
		entry := listing.InstanceTypePricing{Name: strings.TrimSpace(rec[0]), Hourly: hourly}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			annual, err := listing.NewPrice(rec[2])
			if err != nil {
				return nil, err
			}
			entry.Annual = &annual
		}
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		pricing = append(pricing, entry)
	}
	return pricing, nil
}

// buildOfferName derives the conventional private offer name. Account lists
// and the full name are truncated to the API limits.
func buildOfferName(productTitle string, buyerAccounts []string, withSupport bool, customerName string) string {
	accounts := strings.Join(buyerAccounts, ",")
	if len(accounts) > 50 {
		accounts = accounts[:47] + "..."
	}
	support := ""
	if withSupport {
		support = " wSupport"
	}
	name := fmt.Sprintf("Offer - %s - %s%s - %s", accounts, productTitle, support, customerName)
	if len(name) > 150 {
		name = name[:150]
	}
	return name
}

func init() {
	privateOfferCreateCmd.Flags().String("product-id", "", "AMI product entity id")
	privateOfferCreateCmd.Flags().StringSlice("buyer-accounts", nil, "buyer AWS account ids")
	privateOfferCreateCmd.Flags().Int("available-for-days", 14, "days the offer can be accepted")
	privateOfferCreateCmd.Flags().Int("valid-for-days", 1095, "days the agreement runs once accepted")
	privateOfferCreateCmd.Flags().Bool("with-support", false, "include vendor support in the offer name")
	privateOfferCreateCmd.Flags().String("customer-name", "", "customer name for the offer title")
	privateOfferCreateCmd.Flags().String("eula-url", "", "custom EULA URL (empty uses the standard AWS EULA)")
	privateOfferCreateCmd.Flags().String("pricing", "", "pricing CSV file: name,hourly,annual")
	for _, flag := range []string{"product-id", "buyer-accounts", "customer-name", "pricing"} {
		_ = privateOfferCreateCmd.MarkFlagRequired(flag)
	}

	pricingTemplateCmd.Flags().String("offer-id", "", "offer entity id to template from")
	pricingTemplateCmd.Flags().String("pricing", "", "output CSV path")
	pricingTemplateCmd.Flags().Bool("free", false, "offer has no annual pricing; reuse hourly prices")
	_ = pricingTemplateCmd.MarkFlagRequired("offer-id")
	_ = pricingTemplateCmd.MarkFlagRequired("pricing")

	privateOfferCmd.AddCommand(privateOfferCreateCmd)
	privateOfferCmd.AddCommand(pricingTemplateCmd)
	rootCmd.AddCommand(privateOfferCmd)
}
