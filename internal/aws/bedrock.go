package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"voc-insights-go/internal/prompt"
	"voc-insights-go/internal/types"
)

type promptGetter interface {
	GetPrompt(ctx context.Context, params *bedrockagent.GetPromptInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetPromptOutput, error)
}

// Prompts reads managed prompt definitions from Bedrock prompt management.
type Prompts struct {
	client promptGetter
}

func NewPrompts(cfg sdkaws.Config) *Prompts {
	return &Prompts{client: bedrockagent.NewFromConfig(cfg)}
}

// GetPromptTemplate fetches one prompt version. A missing prompt is
// reported as (nil, nil).
func (p *Prompts) GetPromptTemplate(ctx context.Context, identifier, version string) (*prompt.Definition, error) {
	in := &bedrockagent.GetPromptInput{PromptIdentifier: sdkaws.String(identifier)}
	if version != "" {
		in.PromptVersion = sdkaws.String(version)
	}
	out, err := p.client.GetPrompt(ctx, in)
	if err != nil {
		var nf *agenttypes.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prompt %s:%s: %w", identifier, version, err)
	}

	def := &prompt.Definition{
		ID:             strOrEmpty(out.Id),
		Name:           strOrEmpty(out.Name),
		Version:        strOrEmpty(out.Version),
		DefaultVariant: strOrEmpty(out.DefaultVariant),
	}
	for _, v := range out.Variants {
		def.Variants = append(def.Variants, convertVariant(v))
	}
	return def, nil
}

func convertVariant(v agenttypes.PromptVariant) prompt.Variant {
	out := prompt.Variant{
		Name:    strOrEmpty(v.Name),
		ModelID: strOrEmpty(v.ModelId),
	}

	switch tc := v.TemplateConfiguration.(type) {
	case *agenttypes.PromptTemplateConfigurationMemberChat:
		if len(tc.Value.System) > 0 {
			if s, ok := tc.Value.System[0].(*agenttypes.SystemContentBlockMemberText); ok {
				out.System = s.Value
			}
		}
		if len(tc.Value.Messages) > 0 && len(tc.Value.Messages[0].Content) > 0 {
			if c, ok := tc.Value.Messages[0].Content[0].(*agenttypes.ContentBlockMemberText); ok {
				out.User = c.Value
			}
		}
	case *agenttypes.PromptTemplateConfigurationMemberText:
		out.User = strOrEmpty(tc.Value.Text)
	}

	if ic, ok := v.InferenceConfiguration.(*agenttypes.PromptInferenceConfigurationMemberText); ok {
		out.Inference = types.InferenceParams{StopSequences: ic.Value.StopSequences}
		if ic.Value.MaxTokens != nil {
			out.Inference.MaxTokens = int(*ic.Value.MaxTokens)
		}
		if ic.Value.Temperature != nil {
			out.Inference.Temperature = float64(*ic.Value.Temperature)
		}
		if ic.Value.TopP != nil {
			out.Inference.TopP = float64(*ic.Value.TopP)
		}
	}

	if v.AdditionalModelRequestFields != nil {
		var extra map[string]any
		if err := v.AdditionalModelRequestFields.UnmarshalSmithyDocument(&extra); err == nil {
			out.AdditionalFields = extra
		}
	}
	return out
}

type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Models invokes hosted text models with a raw JSON body.
type Models struct {
	client modelInvoker
}

func NewModels(cfg sdkaws.Config) *Models {
	return &Models{client: bedrockruntime.NewFromConfig(cfg)}
}

func (m *Models) InvokeTextModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("missing model id")
	}
	out, err := m.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     sdkaws.String(modelID),
		Body:        body,
		ContentType: sdkaws.String("application/json"),
		Accept:      sdkaws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model %s: %w", modelID, err)
	}
	return out.Body, nil
}
