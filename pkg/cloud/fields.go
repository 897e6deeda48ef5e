package cloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	iamInfoSuccessCode      = "Success"
	instanceProfilePrefix   = "instance-profile/"
	identityCredentialsPath = "identity-credentials/ec2/info"
	availabilityZonePath    = "placement/availability-zone"
)

type metadataField struct {
	// path is relative to MetadataPath.
	path string
	// optional fields may be answered with 404, and the field stays empty.
	optional bool
	parse    func(m *InstanceMetadata, body []byte) error
}

// metadataFields are requested in this order.
var metadataFields = []metadataField{
	{path: "ami-id", parse: text(func(m *InstanceMetadata) *string { return &m.amiID })},
	{path: "instance-id", parse: text(func(m *InstanceMetadata) *string { return &m.instanceID })},
	{path: "instance-type", parse: text(func(m *InstanceMetadata) *string { return &m.instanceType })},
	{path: identityCredentialsPath, parse: parseIdentityCredentials},
	{path: "hostname", parse: text(func(m *InstanceMetadata) *string { return &m.hostname })},
	{path: "local-hostname", parse: text(func(m *InstanceMetadata) *string { return &m.localHostname })},
	{path: "public-hostname", optional: true, parse: text(func(m *InstanceMetadata) *string { return &m.publicHostname })},
	{path: "local-ipv4", parse: ipv4(func(m *InstanceMetadata) *string { return &m.localIPv4 })},
	{path: "public-ipv4", optional: true, parse: ipv4(func(m *InstanceMetadata) *string { return &m.publicIPv4 })},
	{path: availabilityZonePath, parse: parseAvailabilityZone},
	{path: "placement/region", optional: true, parse: text(func(m *InstanceMetadata) *string { return &m.region })},
	{path: "security-groups", parse: parseSecurityGroups},
	{path: "iam/info", optional: true, parse: parseIAMInfo},
}

func text(field func(*InstanceMetadata) *string) func(*InstanceMetadata, []byte) error {
	return func(m *InstanceMetadata, body []byte) error {
		*field(m) = string(body)
		return nil
	}
}

func ipv4(field func(*InstanceMetadata) *string) func(*InstanceMetadata, []byte) error {
	return func(m *InstanceMetadata, body []byte) error {
		addr, err := netip.ParseAddr(string(body))
		if err != nil {
			return err
		}
		if !addr.Is4() {
			return fmt.Errorf("%q is not an IPv4 address", body)
		}
		*field(m) = string(body)
		return nil
	}
}

// parseAvailabilityZone records the zone and a region guessed from it.
// placement/region, when served, replaces the guess.
func parseAvailabilityZone(m *InstanceMetadata, body []byte) error {
	m.availabilityZone = string(body)
	if region, err := availabilityZoneToRegion(m.availabilityZone); err == nil {
		m.region = region
	}
	return nil
}

// parseSecurityGroups reads one security group name per line.
func parseSecurityGroups(m *InstanceMetadata, body []byte) error {
	groups := sets.New[string]()
	for _, line := range strings.Split(string(body), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			groups.Insert(name)
		}
	}
	if groups.Len() == 0 {
		return errors.New("no security groups listed")
	}
	m.securityGroups = groups
	return nil
}

type identityCredentials struct {
	Code        string `json:"Code"`
	LastUpdated string `json:"LastUpdated"`
	AccountID   string `json:"AccountId"`
}

func parseIdentityCredentials(m *InstanceMetadata, body []byte) error {
	creds := &identityCredentials{}
	if err := json.Unmarshal(body, creds); err != nil {
		return err
	}
	if creds.AccountID == "" {
		return errors.New("AccountId is missing")
	}
	m.accountID = creds.AccountID
	return nil
}

func parseIAMInfo(m *InstanceMetadata, body []byte) error {
	info := &IAMInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return err
	}
	if info.Code != iamInfoSuccessCode {
		return fmt.Errorf("unexpected code %q", info.Code)
	}

	profileArn, err := arn.Parse(info.InstanceProfileArn)
	if err != nil {
		return fmt.Errorf("invalid InstanceProfileArn: %w", err)
	}
	if !strings.HasPrefix(profileArn.Resource, instanceProfilePrefix) {
		return fmt.Errorf("InstanceProfileArn %q is not an instance profile", info.InstanceProfileArn)
	}
	// instance-profile/[path/]name
	resource := strings.TrimPrefix(profileArn.Resource, instanceProfilePrefix)
	info.InstanceProfileName = resource[strings.LastIndex(resource, "/")+1:]
	if info.InstanceProfileName == "" {
		return fmt.Errorf("InstanceProfileArn %q has no profile name", info.InstanceProfileArn)
	}

	m.iamInfo = info
	return nil
}
