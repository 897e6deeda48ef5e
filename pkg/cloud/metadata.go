/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cloud

import (
	"encoding/json"

	"k8s.io/apimachinery/pkg/util/sets"
)

// IAMInfo is the instance profile information served at iam/info.
type IAMInfo struct {
	Code                string `json:"Code"`
	LastUpdated         string `json:"LastUpdated,omitempty"`
	InstanceProfileArn  string `json:"InstanceProfileArn"`
	InstanceProfileID   string `json:"InstanceProfileId,omitempty"`
	InstanceProfileName string `json:"InstanceProfileName,omitempty"`
}

// InstanceMetadata holds the metadata fetched by a single Get call. It is
// never modified after construction.
type InstanceMetadata struct {
	amiID            string
	instanceID       string
	instanceType     string
	accountID        string
	hostname         string
	localHostname    string
	publicHostname   string
	localIPv4        string
	publicIPv4       string
	availabilityZone string
	region           string
	securityGroups   sets.Set[string]
	iamInfo          *IAMInfo
}

var _ MetadataService = &InstanceMetadata{}

// GetAmiID returns the AMI ID the instance was launched with.
func (m *InstanceMetadata) GetAmiID() string {
	return m.amiID
}

// GetInstanceID returns the instance identification.
func (m *InstanceMetadata) GetInstanceID() string {
	return m.instanceID
}

// GetInstanceType returns the instance type, e.g. m5.large.
func (m *InstanceMetadata) GetInstanceType() string {
	return m.instanceType
}

// GetAccountID returns the AWS account that owns the instance.
func (m *InstanceMetadata) GetAccountID() string {
	return m.accountID
}

// GetHostname returns the private IPv4 DNS hostname of the instance.
func (m *InstanceMetadata) GetHostname() string {
	return m.hostname
}

// GetLocalHostname returns the local hostname of the instance.
func (m *InstanceMetadata) GetLocalHostname() string {
	return m.localHostname
}

// GetPublicHostname returns the public DNS name, or "" if the instance has none.
func (m *InstanceMetadata) GetPublicHostname() string {
	return m.publicHostname
}

// GetLocalIPv4 returns the private IPv4 address of the instance.
func (m *InstanceMetadata) GetLocalIPv4() string {
	return m.localIPv4
}

// GetPublicIPv4 returns the public IPv4 address, or "" if the instance has none.
func (m *InstanceMetadata) GetPublicIPv4() string {
	return m.publicIPv4
}

// GetAvailabilityZone returns the Availability Zone which the instance is in.
func (m *InstanceMetadata) GetAvailabilityZone() string {
	return m.availabilityZone
}

// GetRegion returns the region which the instance is in.
func (m *InstanceMetadata) GetRegion() string {
	return m.region
}

// GetSecurityGroups returns a copy of the names of the security groups
// applied to the instance.
func (m *InstanceMetadata) GetSecurityGroups() sets.Set[string] {
	return m.securityGroups.Clone()
}

// GetIAMInfo returns a copy of the instance profile information, or nil if
// no instance profile is associated with the instance.
func (m *InstanceMetadata) GetIAMInfo() *IAMInfo {
	if m.iamInfo == nil {
		return nil
	}
	info := *m.iamInfo
	return &info
}

type instanceMetadataJSON struct {
	AmiID            string   `json:"amiId"`
	InstanceID       string   `json:"instanceId"`
	InstanceType     string   `json:"instanceType"`
	AccountID        string   `json:"accountId"`
	Hostname         string   `json:"hostname"`
	LocalHostname    string   `json:"localHostname"`
	PublicHostname   string   `json:"publicHostname,omitempty"`
	LocalIPv4        string   `json:"localIpv4"`
	PublicIPv4       string   `json:"publicIpv4,omitempty"`
	AvailabilityZone string   `json:"availabilityZone"`
	Region           string   `json:"region"`
	SecurityGroups   []string `json:"securityGroups"`
	IAMInfo          *IAMInfo `json:"iamInfo,omitempty"`
}

// MarshalJSON renders the metadata with security groups in sorted order.
func (m *InstanceMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(instanceMetadataJSON{
		AmiID:            m.amiID,
		InstanceID:       m.instanceID,
		InstanceType:     m.instanceType,
		AccountID:        m.accountID,
		Hostname:         m.hostname,
		LocalHostname:    m.localHostname,
		PublicHostname:   m.publicHostname,
		LocalIPv4:        m.localIPv4,
		PublicIPv4:       m.publicIPv4,
		AvailabilityZone: m.availabilityZone,
		Region:           m.region,
		SecurityGroups:   sets.List(m.securityGroups),
		IAMInfo:          m.iamInfo,
	})
}
