// Package marketplace is the transport boundary to the AWS Marketplace
// Catalog. It fetches entity documents, resolves public offers and
// submits change sets; all reconciliation logic stays above it.
package marketplace

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/marketplacecatalog"
	mctypes "github.com/aws/aws-sdk-go-v2/service/marketplacecatalog/types"
	"github.com/aws/smithy-go"

	"github.com/canonical/awsmp/pkg/changeset"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
	"github.com/canonical/awsmp/pkg/logging"
)

// Catalog is the only catalog the marketplace API serves.
const Catalog = "AWSMarketplace"

// defaultRegion hosts the Marketplace Catalog endpoint.
const defaultRegion = "us-east-1"

// CatalogAPI is the slice of the Marketplace Catalog client the package
// uses. Tests substitute a mock.
type CatalogAPI interface {
	marketplacecatalog.ListEntitiesAPIClient
	DescribeEntity(ctx context.Context, params *marketplacecatalog.DescribeEntityInput,
		optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error)
	StartChangeSet(ctx context.Context, params *marketplacecatalog.StartChangeSetInput,
		optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.StartChangeSetOutput, error)
}

// EC2API is the slice of the EC2 client used for region expansion and
// instance type discovery.
type EC2API interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
	GetInstanceTypesFromInstanceRequirements(ctx context.Context,
		params *ec2.GetInstanceTypesFromInstanceRequirementsInput,
		optFns ...func(*ec2.Options)) (*ec2.GetInstanceTypesFromInstanceRequirementsOutput, error)
}

// Client talks to the Marketplace Catalog and EC2 APIs.
type Client struct {
	catalog CatalogAPI
	ec2     EC2API
}

// New builds a client from the ambient AWS credential chain.
func New(ctx context.Context) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(defaultRegion))
	if err != nil {
		return nil, errors.NewAPIError("marketplace", "", "loading AWS configuration", err)
	}
	return &Client{
		catalog: marketplacecatalog.NewFromConfig(cfg),
		ec2:     ec2.NewFromConfig(cfg),
	}, nil
}

// NewWithAPI builds a client over explicit API implementations.
func NewWithAPI(catalog CatalogAPI, ec2api EC2API) *Client {
	return &Client{catalog: catalog, ec2: ec2api}
}

// EntityDetails fetches and decodes the details document of one entity.
func (c *Client) EntityDetails(ctx context.Context, entityID string) (*listing.Details, error) {
	out, err := c.catalog.DescribeEntity(ctx, &marketplacecatalog.DescribeEntityInput{
		Catalog:  aws.String(Catalog),
		EntityId: aws.String(entityID),
	})
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return listing.ParseDetails([]byte(aws.ToString(out.Details)))
}

// PublicOfferID resolves the public offer attached to a product. Every
// listed product has exactly one offer without buyer targeting.
func (c *Client) PublicOfferID(ctx context.Context, productID string) (string, error) {
	out, err := c.catalog.ListEntities(ctx, &marketplacecatalog.ListEntitiesInput{
		Catalog:    aws.String(Catalog),
		EntityType: aws.String("Offer"),
		EntityTypeFilters: &mctypes.EntityTypeFiltersMemberOfferFilters{
			Value: mctypes.OfferFilters{
				ProductId: &mctypes.OfferProductIdFilter{ValueList: []string{productID}},
				Targeting: &mctypes.OfferTargetingFilter{
					ValueList: []mctypes.OfferTargetingString{mctypes.OfferTargetingStringNone},
				},
			},
		},
	})
	if err != nil {
		return "", wrapAPIError(err)
	}
	if len(out.EntitySummaryList) == 0 {
		return "", errors.NewNotFoundError("public offer for product", productID)
	}
	return aws.ToString(out.EntitySummaryList[0].EntityId), nil
}

// FullListingDetails fetches the product document merged with the terms
// of its public offer, plus the resolved offer id.
func (c *Client) FullListingDetails(ctx context.Context, productID string) (*listing.Details, string, error) {
	details, err := c.EntityDetails(ctx, productID)
	if err != nil {
		return nil, "", err
	}

	offerID, err := c.PublicOfferID(ctx, productID)
	if err != nil {
		return nil, "", err
	}
	offer, err := c.EntityDetails(ctx, offerID)
	if err != nil {
		return nil, "", err
	}

	details.Terms = offer.Terms
	return details, offerID, nil
}

// ProductVisibility returns the publication state of a product.
func (c *Client) ProductVisibility(ctx context.Context, productID string) (listing.Visibility, error) {
	details, err := c.EntityDetails(ctx, productID)
	if err != nil {
		return "", err
	}
	return details.Description.Visibility, nil
}

// EntitySummary is one row of an entity listing.
type EntitySummary struct {
	EntityID     string
	Name         string
	Visibility   string
	LastModified string
}

// ListEntities returns every entity of the given type, following
// pagination to the end.
func (c *Client) ListEntities(ctx context.Context, entityType string) ([]EntitySummary, error) {
	paginator := marketplacecatalog.NewListEntitiesPaginator(c.catalog, &marketplacecatalog.ListEntitiesInput{
		Catalog:    aws.String(Catalog),
		EntityType: aws.String(entityType),
	})

	var summaries []EntitySummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError(err)
		}
		for _, e := range page.EntitySummaryList {
			summaries = append(summaries, EntitySummary{
				EntityID:     aws.ToString(e.EntityId),
				Name:         aws.ToString(e.Name),
				Visibility:   aws.ToString(e.Visibility),
				LastModified: aws.ToString(e.LastModifiedDate),
			})
		}
	}
	return summaries, nil
}

// StartChangeSet submits a change set and returns its id. Details are
// serialized to the JSON string form the API expects.
func (c *Client) StartChangeSet(ctx context.Context, name string, changes []changeset.Change) (string, error) {
	wire := make([]mctypes.Change, 0, len(changes))
	for _, ch := range changes {
		details, err := json.Marshal(ch.Details)
		if err != nil {
			return "", errors.NewValidationError("ChangeSet", ch.ChangeType, err.Error())
		}
		entity := &mctypes.Entity{Type: aws.String(ch.Entity.Type)}
		if ch.Entity.Identifier != "" {
			entity.Identifier = aws.String(ch.Entity.Identifier)
		}
		w := mctypes.Change{
			ChangeType: aws.String(ch.ChangeType),
			Entity:     entity,
			Details:    aws.String(string(details)),
		}
		if ch.ChangeName != "" {
			w.ChangeName = aws.String(ch.ChangeName)
		}
		wire = append(wire, w)
	}

	out, err := c.catalog.StartChangeSet(ctx, &marketplacecatalog.StartChangeSetInput{
		Catalog:       aws.String(Catalog),
		ChangeSet:     wire,
		ChangeSetName: aws.String(sanitizeChangeSetName(name)),
	})
	if err != nil {
		return "", wrapAPIError(err)
	}

	id := aws.ToString(out.ChangeSetId)
	logging.Ctx(ctx).Info().Str("changeset_id", id).Str("name", name).Msg("change set submitted")
	return id, nil
}

// ExpandRegions resolves the literal "all" to every enabled commercial
// region; any other list passes through unchanged.
func (c *Client) ExpandRegions(ctx context.Context, regions []string) ([]string, error) {
	if len(regions) != 1 || regions[0] != "all" {
		return regions, nil
	}

	out, err := c.ec2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, wrapAPIError(err)
	}
	expanded := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		expanded = append(expanded, aws.ToString(r.RegionName))
	}
	return expanded, nil
}

// InstanceTypesForRequirements returns every instance type offered for
// the given architecture and virtualization type, following pagination
// to the end. The vCPU and memory floors are zero so nothing is
// filtered out.
func (c *Client) InstanceTypesForRequirements(ctx context.Context, arch, virt string) ([]string, error) {
	paginator := ec2.NewGetInstanceTypesFromInstanceRequirementsPaginator(c.ec2,
		&ec2.GetInstanceTypesFromInstanceRequirementsInput{
			ArchitectureTypes:   []ec2types.ArchitectureType{ec2types.ArchitectureType(arch)},
			VirtualizationTypes: []ec2types.VirtualizationType{ec2types.VirtualizationType(virt)},
			InstanceRequirements: &ec2types.InstanceRequirementsRequest{
				VCpuCount: &ec2types.VCpuCountRangeRequest{Min: aws.Int32(0)},
				MemoryMiB: &ec2types.MemoryMiBRequest{Min: aws.Int32(0)},
			},
		})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError(err)
		}
		for _, it := range page.InstanceTypes {
			names = append(names, aws.ToString(it.InstanceType))
		}
	}
	return names, nil
}

// sanitizeChangeSetName strips the characters the API rejects in names.
func sanitizeChangeSetName(name string) string {
	r := strings.NewReplacer(",", "_", "(", "", ")", "")
	return r.Replace(name)
}

// wrapAPIError maps smithy errors onto the package error taxonomy so
// callers can match on sentinels instead of SDK types.
func wrapAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errors.NewAPIError("marketplace", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return err
}
