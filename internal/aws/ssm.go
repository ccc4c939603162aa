package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssm accepts at most this many names per GetParameters call.
const maxParametersPerCall = 10

type parameterGetter interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Parameters reads run parameters from Systems Manager Parameter Store.
type Parameters struct {
	client parameterGetter
}

func NewParameters(cfg sdkaws.Config) *Parameters {
	return &Parameters{client: ssm.NewFromConfig(cfg)}
}

// GetParameters returns the values of the names that exist. Unknown names
// are left out of the map.
func (p *Parameters) GetParameters(ctx context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for start := 0; start < len(names); start += maxParametersPerCall {
		end := min(start+maxParametersPerCall, len(names))
		resp, err := p.client.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          names[start:end],
			WithDecryption: sdkaws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("get parameters: %w", err)
		}
		for _, prm := range resp.Parameters {
			out[strOrEmpty(prm.Name)] = strOrEmpty(prm.Value)
		}
	}
	return out, nil
}
