package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

type executionStarter interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// Workflows starts Step Functions executions.
type Workflows struct {
	client executionStarter
}

func NewWorkflows(cfg sdkaws.Config) *Workflows {
	return &Workflows{client: sfn.NewFromConfig(cfg)}
}

func (w *Workflows) StartExecution(ctx context.Context, stateMachineARN string, input []byte) (string, error) {
	if stateMachineARN == "" {
		return "", fmt.Errorf("missing state machine arn")
	}
	out, err := w.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: sdkaws.String(stateMachineARN),
		Input:           sdkaws.String(string(input)),
	})
	if err != nil {
		return "", fmt.Errorf("start execution: %w", err)
	}
	return strOrEmpty(out.ExecutionArn), nil
}
