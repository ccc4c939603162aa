package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	values map[string]string
	calls  [][]string
}

func (f *fakeSSM) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.calls = append(f.calls, in.Names)
	out := &ssm.GetParametersOutput{}
	for _, n := range in.Names {
		if v, ok := f.values[n]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: sdkaws.String(n), Value: sdkaws.String(v)})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, n)
		}
	}
	return out, nil
}

func TestParameters_Batches(t *testing.T) {
	f := &fakeSSM{values: map[string]string{"/voc/OUTPUT_BUCKET": "voc-output", "/voc/p11": "eleven"}}
	p := &Parameters{client: f}

	names := []string{"/voc/OUTPUT_BUCKET"}
	for i := 1; i <= 11; i++ {
		names = append(names, fmt.Sprintf("/voc/p%d", i))
	}
	got, err := p.GetParameters(context.Background(), names)
	require.NoError(t, err)
	assert.Len(t, f.calls, 2)
	assert.Len(t, f.calls[0], 10)
	assert.Equal(t, "voc-output", got["/voc/OUTPUT_BUCKET"])
	assert.Equal(t, "eleven", got["/voc/p11"])
	assert.NotContains(t, got, "/voc/p2")
}

type fakeS3 struct {
	body    string
	err     error
	putBody string
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.putBody = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestObjects(t *testing.T) {
	f := &fakeS3{body: `{"text":"hi"}`}
	o := &Objects{client: f}

	data, err := o.ReadObject(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hi"}`, string(data))

	require.NoError(t, o.WriteObject(context.Background(), "b", "k2", []byte("x"), "text/plain"))
	assert.Equal(t, "x", f.putBody)

	f.err = errors.New("NoSuchKey")
	_, err = o.ReadObject(context.Background(), "b", "missing")
	assert.ErrorContains(t, err, "s3://b/missing")
}

type fakeAgent struct {
	out *bedrockagent.GetPromptOutput
	err error
}

func (f *fakeAgent) GetPrompt(_ context.Context, _ *bedrockagent.GetPromptInput, _ ...func(*bedrockagent.Options)) (*bedrockagent.GetPromptOutput, error) {
	return f.out, f.err
}

func TestPrompts_ChatTemplate(t *testing.T) {
	maxTokens := int32(2000)
	temp, topP := float32(1), float32(0.5)
	f := &fakeAgent{out: &bedrockagent.GetPromptOutput{
		Id:             sdkaws.String("CI94EO0SIQ"),
		Version:        sdkaws.String("6"),
		DefaultVariant: sdkaws.String("variantOne"),
		Variants: []agenttypes.PromptVariant{
			{
				Name:    sdkaws.String("variantOne"),
				ModelId: sdkaws.String("cohere.command-r-plus-v1:0"),
				TemplateConfiguration: &agenttypes.PromptTemplateConfigurationMemberChat{Value: agenttypes.ChatPromptTemplateConfiguration{
					System: []agenttypes.SystemContentBlock{&agenttypes.SystemContentBlockMemberText{Value: "sys"}},
					Messages: []agenttypes.Message{{
						Role:    agenttypes.ConversationRoleUser,
						Content: []agenttypes.ContentBlock{&agenttypes.ContentBlockMemberText{Value: "user {{calllog}}"}},
					}},
				}},
				InferenceConfiguration: &agenttypes.PromptInferenceConfigurationMemberText{Value: agenttypes.PromptModelInferenceConfiguration{
					MaxTokens: &maxTokens, Temperature: &temp, TopP: &topP,
				}},
			},
			{
				Name:                  sdkaws.String("plain"),
				ModelId:               sdkaws.String("m2"),
				TemplateConfiguration: &agenttypes.PromptTemplateConfigurationMemberText{Value: agenttypes.TextPromptTemplateConfiguration{Text: sdkaws.String("text {{calllog}}")}},
			},
		},
	}}

	def, err := (&Prompts{client: f}).GetPromptTemplate(context.Background(), "CI94EO0SIQ", "6")
	require.NoError(t, err)
	require.Len(t, def.Variants, 2)
	assert.Equal(t, "variantOne", def.DefaultVariant)
	assert.Equal(t, "sys", def.Variants[0].System)
	assert.Equal(t, "user {{calllog}}", def.Variants[0].User)
	assert.Equal(t, 2000, def.Variants[0].Inference.MaxTokens)
	assert.Equal(t, 0.5, def.Variants[0].Inference.TopP)
	assert.Equal(t, "text {{calllog}}", def.Variants[1].User)
	assert.Empty(t, def.Variants[1].System)
}

func TestPrompts_NotFound(t *testing.T) {
	f := &fakeAgent{err: &agenttypes.ResourceNotFoundException{Message: sdkaws.String("nope")}}
	def, err := (&Prompts{client: f}).GetPromptTemplate(context.Background(), "X", "1")
	require.NoError(t, err)
	assert.Nil(t, def)
}

type fakeRuntime struct {
	in *bedrockruntime.InvokeModelInput
}

func (f *fakeRuntime) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = in
	return &bedrockruntime.InvokeModelOutput{Body: []byte(`{"text":"{}"}`)}, nil
}

func TestModels(t *testing.T) {
	f := &fakeRuntime{}
	out, err := (&Models{client: f}).InvokeTextModel(context.Background(), "cohere.command-r-plus-v1:0", []byte(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"text":"{}"}`, string(out))
	assert.Equal(t, "cohere.command-r-plus-v1:0", *f.in.ModelId)
	assert.Equal(t, `{"message":"hi"}`, string(f.in.Body))

	_, err = (&Models{client: f}).InvokeTextModel(context.Background(), "", nil)
	assert.Error(t, err)
}

type fakeAthena struct {
	in *athena.StartQueryExecutionInput
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.in = in
	return &athena.StartQueryExecutionOutput{QueryExecutionId: sdkaws.String("qe-1")}, nil
}

func TestQueries(t *testing.T) {
	f := &fakeAthena{}
	id, err := (&Queries{client: f}).SubmitQuery(context.Background(), "INSERT ...", "voc_db", "primary")
	require.NoError(t, err)
	assert.Equal(t, "qe-1", id)
	assert.Equal(t, "voc_db", *f.in.QueryExecutionContext.Database)
	assert.Equal(t, "primary", *f.in.WorkGroup)
}

type fakeSFN struct {
	in *sfn.StartExecutionInput
}

func (f *fakeSFN) StartExecution(_ context.Context, in *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	f.in = in
	return &sfn.StartExecutionOutput{ExecutionArn: sdkaws.String("arn:exec")}, nil
}

func TestWorkflows(t *testing.T) {
	f := &fakeSFN{}
	w := &Workflows{client: f}
	arn, err := w.StartExecution(context.Background(), "arn:sm", []byte(`{"bucket":"b","key":"k"}`))
	require.NoError(t, err)
	assert.Equal(t, "arn:exec", arn)
	assert.Equal(t, `{"bucket":"b","key":"k"}`, *f.in.Input)

	_, err = w.StartExecution(context.Background(), "", nil)
	assert.Error(t, err)
}
