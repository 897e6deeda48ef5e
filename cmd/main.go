/*
Copyright 2019 The Kubernetes Authors.

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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"k8s.io/component-base/featuregate"
	logsapi "k8s.io/component-base/logs/api/v1"
	json "k8s.io/component-base/logs/json"
	"k8s.io/klog/v2"

	"github.com/kubernetes-sigs/ec2-instance-metadata/pkg/cloud"
	"github.com/kubernetes-sigs/ec2-instance-metadata/pkg/info"
)

// endpointEnvName is honored by the AWS SDKs as well.
const endpointEnvName = "AWS_EC2_METADATA_SERVICE_ENDPOINT"

var featureGate = featuregate.NewFeatureGate()

func main() {
	var (
		fs       = flag.NewFlagSet("ec2-metadata-fetcher", flag.ExitOnError)
		endpoint = fs.String("endpoint", defaultEnv(endpointEnvName, cloud.DefaultEndpoint), "Instance metadata service endpoint. Defaults to $"+endpointEnvName+" when set")
		tokenTTL = fs.Duration("token-ttl", cloud.DefaultTokenTTL, "Lifetime requested for the IMDSv2 session token, in whole seconds up to 6h")
		timeout  = fs.Duration("timeout", 10*time.Second, "Overall deadline for fetching the instance metadata")
		output   = fs.String("output", outputJSON, "Output format, one of: json, text")
		version  = fs.Bool("version", false, "Print the version and exit")
	)
	if err := logsapi.RegisterLogFormat(logsapi.JSONLogFormat, json.Factory{}, logsapi.LoggingBetaOptions); err != nil {
		klog.ErrorS(err, "failed to register JSON log format")
	}

	c := logsapi.NewLoggingConfiguration()

	err := logsapi.AddFeatureGates(featureGate)
	if err != nil {
		klog.ErrorS(err, "failed to add feature gates")
	}

	logsapi.AddFlags(c, fs)
	fs.Parse(os.Args[1:])

	err = logsapi.ValidateAndApply(c, featureGate)
	if err != nil {
		klog.ErrorS(err, "failed to validate and apply logging configuration")
	}

	if *version {
		ver, err := info.GetVersionJSON()
		if err != nil {
			klog.Fatalln(err)
		}
		fmt.Println(ver)
		os.Exit(0)
	}

	client, err := cloud.NewMetadataClient(func(o *cloud.Options) {
		o.Endpoint = *endpoint
		o.TokenTTL = *tokenTTL
	})
	if err != nil {
		klog.ErrorS(err, "invalid configuration")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := run(ctx, client, *output, os.Stdout); err != nil {
		klog.ErrorS(err, "failed to fetch instance metadata", "endpoint", *endpoint)
		cancel()
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
}

func defaultEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
