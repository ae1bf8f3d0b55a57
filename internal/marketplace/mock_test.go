package marketplace

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/marketplacecatalog"
)

// mockCatalog implements CatalogAPI with swappable functions per call.
type mockCatalog struct {
	ListEntitiesFn func(ctx context.Context, params *marketplacecatalog.ListEntitiesInput,
		optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error)
	DescribeEntityFn func(ctx context.Context, params *marketplacecatalog.DescribeEntityInput,
		optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error)
	StartChangeSetFn func(ctx context.Context, params *marketplacecatalog.StartChangeSetInput,
		optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.StartChangeSetOutput, error)
}

func (m *mockCatalog) ListEntities(ctx context.Context, params *marketplacecatalog.ListEntitiesInput,
	optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.ListEntitiesOutput, error) {
	return m.ListEntitiesFn(ctx, params, optFns...)
}

func (m *mockCatalog) DescribeEntity(ctx context.Context, params *marketplacecatalog.DescribeEntityInput,
	optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.DescribeEntityOutput, error) {
	return m.DescribeEntityFn(ctx, params, optFns...)
}

func (m *mockCatalog) StartChangeSet(ctx context.Context, params *marketplacecatalog.StartChangeSetInput,
	optFns ...func(*marketplacecatalog.Options)) (*marketplacecatalog.StartChangeSetOutput, error) {
	return m.StartChangeSetFn(ctx, params, optFns...)
}

// mockEC2 implements EC2API.
type mockEC2 struct {
	DescribeRegionsFn func(ctx context.Context, params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
	GetInstanceTypesFn func(ctx context.Context, params *ec2.GetInstanceTypesFromInstanceRequirementsInput,
		optFns ...func(*ec2.Options)) (*ec2.GetInstanceTypesFromInstanceRequirementsOutput, error)
}

func (m *mockEC2) DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput,
	optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	return m.DescribeRegionsFn(ctx, params, optFns...)
}

func (m *mockEC2) GetInstanceTypesFromInstanceRequirements(ctx context.Context,
	params *ec2.GetInstanceTypesFromInstanceRequirementsInput,
	optFns ...func(*ec2.Options)) (*ec2.GetInstanceTypesFromInstanceRequirementsOutput, error) {
	return m.GetInstanceTypesFn(ctx, params, optFns...)
}
