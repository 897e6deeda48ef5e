package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/kubernetes-sigs/ec2-instance-metadata/pkg/cloud"
)

const (
	outputJSON = "json"
	outputText = "text"
)

// run fetches the metadata once and writes it to w in the given format.
func run(ctx context.Context, provider cloud.MetadataProvider, output string, w io.Writer) error {
	if output != outputJSON && output != outputText {
		return fmt.Errorf("unsupported output format %q", output)
	}

	m, err := provider.Get(ctx)
	if err != nil {
		return err
	}
	klog.V(2).InfoS("Fetched instance metadata", "instanceID", m.GetInstanceID())

	if output == outputText {
		return writeText(w, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func writeText(w io.Writer, m cloud.MetadataService) error {
	rows := [][2]string{
		{"ami-id", m.GetAmiID()},
		{"instance-id", m.GetInstanceID()},
		{"instance-type", m.GetInstanceType()},
		{"account-id", m.GetAccountID()},
		{"hostname", m.GetHostname()},
		{"local-hostname", m.GetLocalHostname()},
		{"public-hostname", m.GetPublicHostname()},
		{"local-ipv4", m.GetLocalIPv4()},
		{"public-ipv4", m.GetPublicIPv4()},
		{"availability-zone", m.GetAvailabilityZone()},
		{"region", m.GetRegion()},
		{"security-groups", strings.Join(sets.List(m.GetSecurityGroups()), ",")},
	}
	if iam := m.GetIAMInfo(); iam != nil {
		rows = append(rows,
			[2]string{"instance-profile-arn", iam.InstanceProfileArn},
			[2]string{"instance-profile-name", iam.InstanceProfileName},
		)
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}
