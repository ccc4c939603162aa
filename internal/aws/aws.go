// Package aws adapts the AWS SDK clients to the narrow collaborator
// interfaces the pipeline consumes. Every adapter holds a small interface
// over the SDK client so tests can swap in a fake.
package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Load resolves the default credential chain for region.
func Load(ctx context.Context, region string) (sdkaws.Config, error) {
	if strings.TrimSpace(region) == "" {
		return sdkaws.Config{}, fmt.Errorf("missing region")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
