package cloud

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"
)

//go:generate mockgen -destination=mocks/mock_http_client.go -package=mocks github.com/aws/aws-sdk-go-v2/aws HTTPClient

// MetadataService represents the metadata of one EC2 instance.
type MetadataService interface {
	GetAmiID() string
	GetInstanceID() string
	GetInstanceType() string
	GetAccountID() string
	GetHostname() string
	GetLocalHostname() string
	GetPublicHostname() string
	GetLocalIPv4() string
	GetPublicIPv4() string
	GetAvailabilityZone() string
	GetRegion() string
	GetSecurityGroups() sets.Set[string]
	GetIAMInfo() *IAMInfo
}

// MetadataProvider fetches fresh InstanceMetadata on every call.
type MetadataProvider interface {
	Get(ctx context.Context) (*InstanceMetadata, error)
}
