package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
)

type queryStarter interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
}

// Queries submits statements to Athena without waiting for the result.
type Queries struct {
	client queryStarter
}

func NewQueries(cfg sdkaws.Config) *Queries {
	return &Queries{client: athena.NewFromConfig(cfg)}
}

// SubmitQuery starts the statement under workGroup and returns the
// execution id.
func (q *Queries) SubmitQuery(ctx context.Context, statement, database, workGroup string) (string, error) {
	out, err := q.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:           sdkaws.String(statement),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{Database: sdkaws.String(database)},
		WorkGroup:             sdkaws.String(workGroup),
	})
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	return strOrEmpty(out.QueryExecutionId), nil
}
