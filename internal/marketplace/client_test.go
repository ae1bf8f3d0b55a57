package marketplace

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/marketplacecatalog"
	mctypes "github.com/aws/aws-sdk-go-v2/service/marketplacecatalog/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/awsmp/pkg/changeset"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
)

const productDoc = `{
	"Description": {
		"ProductTitle": "Ubuntu 24.04 LTS",
		"ShortDescription": "Ubuntu Server",
		"Visibility": "Public"
	},
	"RegionAvailability": {
		"Regions": ["us-east-1"],
		"FutureRegionSupport": "All"
	},
	"Dimensions": [
		{"Description": "m5.large", "Key": "m5.large", "Name": "m5.large", "Types": ["Metered"], "Unit": "Hrs"}
	]
}`

const offerDoc = `{
	"Description": {"ProductTitle": "Public offer"},
	"Terms": [
		{"Type": "UsageBasedPricingTerm", "CurrencyCode": "USD",
		 "RateCards": [{"RateCard": [{"DimensionKey": "m5.large", "Price": "0.1"}]}]}
	]
}`

func TestEntityDetails(t *testing.T) {
	catalog := &mockCatalog{
		DescribeEntityFn: func(_ context.Context, params *marketplacecatalog.DescribeEntityInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error) {
			assert.Equal(t, Catalog, aws.ToString(params.Catalog))
			assert.Equal(t, "prod-1", aws.ToString(params.EntityId))
			return &marketplacecatalog.DescribeEntityOutput{Details: aws.String(productDoc)}, nil
		},
	}

	details, err := NewWithAPI(catalog, nil).EntityDetails(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu 24.04 LTS", details.Description.ProductTitle)
	assert.Equal(t, listing.VisibilityPublic, details.Description.Visibility)
	assert.Equal(t, []string{"m5.large"}, details.DimensionNames())
}

func TestPublicOfferID(t *testing.T) {
	catalog := &mockCatalog{
		ListEntitiesFn: func(_ context.Context, params *marketplacecatalog.ListEntitiesInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error) {
			assert.Equal(t, "Offer", aws.ToString(params.EntityType))

			filters, ok := params.EntityTypeFilters.(*mctypes.EntityTypeFiltersMemberOfferFilters)
			require.True(t, ok)
			assert.Equal(t, []string{"prod-1"}, filters.Value.ProductId.ValueList)
			assert.Equal(t, []mctypes.OfferTargetingString{mctypes.OfferTargetingStringNone},
				filters.Value.Targeting.ValueList)

			return &marketplacecatalog.ListEntitiesOutput{
				EntitySummaryList: []mctypes.EntitySummary{{EntityId: aws.String("offer-1")}},
			}, nil
		},
	}

	offerID, err := NewWithAPI(catalog, nil).PublicOfferID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "offer-1", offerID)
}

func TestPublicOfferIDNotFound(t *testing.T) {
	catalog := &mockCatalog{
		ListEntitiesFn: func(_ context.Context, _ *marketplacecatalog.ListEntitiesInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error) {
			return &marketplacecatalog.ListEntitiesOutput{}, nil
		},
	}

	_, err := NewWithAPI(catalog, nil).PublicOfferID(context.Background(), "prod-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestFullListingDetails(t *testing.T) {
	catalog := &mockCatalog{
		DescribeEntityFn: func(_ context.Context, params *marketplacecatalog.DescribeEntityInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error) {
			doc := productDoc
			if aws.ToString(params.EntityId) == "offer-1" {
				doc = offerDoc
			}
			return &marketplacecatalog.DescribeEntityOutput{Details: aws.String(doc)}, nil
		},
		ListEntitiesFn: func(_ context.Context, _ *marketplacecatalog.ListEntitiesInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error) {
			return &marketplacecatalog.ListEntitiesOutput{
				EntitySummaryList: []mctypes.EntitySummary{{EntityId: aws.String("offer-1")}},
			}, nil
		},
	}

	details, offerID, err := NewWithAPI(catalog, nil).FullListingDetails(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "offer-1", offerID)
	assert.Equal(t, "Ubuntu 24.04 LTS", details.Description.ProductTitle)

	usage, ok := details.Terms.Usage()
	require.True(t, ok)
	assert.Equal(t, []string{"m5.large"}, usage.RateCard.Keys())
}

func TestListEntitiesPaginates(t *testing.T) {
	calls := 0
	catalog := &mockCatalog{
		ListEntitiesFn: func(_ context.Context, params *marketplacecatalog.ListEntitiesInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, params.NextToken)
				return &marketplacecatalog.ListEntitiesOutput{
					EntitySummaryList: []mctypes.EntitySummary{{
						EntityId:         aws.String("prod-1"),
						Name:             aws.String("Ubuntu 24.04"),
						Visibility:       aws.String("Public"),
						LastModifiedDate: aws.String("2024-01-01T00:00:00Z"),
					}},
					NextToken: aws.String("page-2"),
				}, nil
			}
			assert.Equal(t, "page-2", aws.ToString(params.NextToken))
			return &marketplacecatalog.ListEntitiesOutput{
				EntitySummaryList: []mctypes.EntitySummary{{EntityId: aws.String("prod-2")}},
			}, nil
		},
	}

	summaries, err := NewWithAPI(catalog, nil).ListEntities(context.Background(), "AmiProduct")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "prod-1", summaries[0].EntityID)
	assert.Equal(t, "Ubuntu 24.04", summaries[0].Name)
	assert.Equal(t, "prod-2", summaries[1].EntityID)
	assert.Equal(t, 2, calls)
}

func TestStartChangeSetStringifiesDetails(t *testing.T) {
	var submitted *marketplacecatalog.StartChangeSetInput
	catalog := &mockCatalog{
		StartChangeSetFn: func(_ context.Context, params *marketplacecatalog.StartChangeSetInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.StartChangeSetOutput, error) {
			submitted = params
			return &marketplacecatalog.StartChangeSetOutput{ChangeSetId: aws.String("cs-1")}, nil
		},
	}

	changes := []changeset.Change{
		changeset.AddInstanceTypes("prod-1", []string{"m5.large"}),
		changeset.CreateOffer("prod-1"),
	}
	id, err := NewWithAPI(catalog, nil).StartChangeSet(context.Background(),
		"Product prod-1 (m5.large, m5.xlarge) update", changes)
	require.NoError(t, err)
	assert.Equal(t, "cs-1", id)

	require.NotNil(t, submitted)
	assert.Equal(t, Catalog, aws.ToString(submitted.Catalog))
	assert.Equal(t, "Product prod-1 m5.large_ m5.xlarge update", aws.ToString(submitted.ChangeSetName))
	require.Len(t, submitted.ChangeSet, 2)

	first := submitted.ChangeSet[0]
	assert.Equal(t, "AddInstanceTypes", aws.ToString(first.ChangeType))
	assert.Equal(t, "prod-1", aws.ToString(first.Entity.Identifier))
	assert.Nil(t, first.ChangeName)
	assert.JSONEq(t, `{"InstanceTypes": ["m5.large"]}`, aws.ToString(first.Details))

	second := submitted.ChangeSet[1]
	assert.Equal(t, "CreateOfferChange", aws.ToString(second.ChangeName))
	assert.Nil(t, second.Entity.Identifier)
}

func TestExpandRegionsPassthrough(t *testing.T) {
	regions, err := NewWithAPI(nil, &mockEC2{}).ExpandRegions(context.Background(),
		[]string{"us-east-1", "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, regions)
}

func TestExpandRegionsAll(t *testing.T) {
	ec2api := &mockEC2{
		DescribeRegionsFn: func(_ context.Context, _ *ec2.DescribeRegionsInput,
			_ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
			return &ec2.DescribeRegionsOutput{Regions: []ec2types.Region{
				{RegionName: aws.String("us-east-1")},
				{RegionName: aws.String("eu-west-1")},
			}}, nil
		},
	}

	regions, err := NewWithAPI(nil, ec2api).ExpandRegions(context.Background(), []string{"all"})
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, regions)
}

func TestInstanceTypesForRequirements(t *testing.T) {
	var calls int
	ec2api := &mockEC2{
		GetInstanceTypesFn: func(_ context.Context, params *ec2.GetInstanceTypesFromInstanceRequirementsInput,
			_ ...func(*ec2.Options)) (*ec2.GetInstanceTypesFromInstanceRequirementsOutput, error) {
			calls++
			assert.Equal(t, []ec2types.ArchitectureType{"arm64"}, params.ArchitectureTypes)
			assert.Equal(t, []ec2types.VirtualizationType{"hvm"}, params.VirtualizationTypes)
			require.NotNil(t, params.InstanceRequirements)
			assert.Equal(t, int32(0), aws.ToInt32(params.InstanceRequirements.VCpuCount.Min))
			assert.Equal(t, int32(0), aws.ToInt32(params.InstanceRequirements.MemoryMiB.Min))
			if calls == 1 {
				return &ec2.GetInstanceTypesFromInstanceRequirementsOutput{
					InstanceTypes: []ec2types.InstanceTypeInfoFromInstanceRequirements{
						{InstanceType: aws.String("m6g.large")},
					},
					NextToken: aws.String("page-2"),
				}, nil
			}
			return &ec2.GetInstanceTypesFromInstanceRequirementsOutput{
				InstanceTypes: []ec2types.InstanceTypeInfoFromInstanceRequirements{
					{InstanceType: aws.String("c6g.xlarge")},
				},
			}, nil
		},
	}

	names, err := NewWithAPI(nil, ec2api).InstanceTypesForRequirements(context.Background(), "arm64", "hvm")
	require.NoError(t, err)
	assert.Equal(t, []string{"m6g.large", "c6g.xlarge"}, names)
	assert.Equal(t, 2, calls)
}

func TestWrapAPIError(t *testing.T) {
	catalog := &mockCatalog{
		DescribeEntityFn: func(_ context.Context, _ *marketplacecatalog.DescribeEntityInput,
			_ ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no such entity"}
		},
	}

	_, err := NewWithAPI(catalog, nil).EntityDetails(context.Background(), "prod-x")

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ResourceNotFoundException", apiErr.Code)
	assert.True(t, errors.IsNotFound(err))
}

func TestSanitizeChangeSetName(t *testing.T) {
	assert.Equal(t, "a_ b c", sanitizeChangeSetName("a, (b) c"))
	assert.Equal(t, "plain", sanitizeChangeSetName("plain"))
}
