package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hutch/internal/history"
)

// OpenAIProvider speaks the OpenAI Responses API. It also serves any
// backend exposing a compatible endpoint via Options.BaseURL.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature *float64
	maxTokens   int
}

func NewOpenAI(opts Options) *OpenAIProvider {
	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   opts.Timeout,
	}))
	client := openai.NewClient(reqOpts...)
	return &OpenAIProvider{
		client:      &client,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

func (o *OpenAIProvider) Chat(ctx context.Context, msgs []history.Message, tools []ToolDef) (*Result, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: toInput(msgs),
		},
		Tools: toTools(tools),
	}
	if o.temperature != nil {
		params.Temperature = openai.Float(*o.temperature)
	}
	if o.maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(o.maxTokens))
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("response failed: %s", resp.Error.Message)
	}

	result := &Result{Text: resp.OutputText()}
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		result.Calls = append(result.Calls, ToolCall{
			ID:        fc.CallID,
			Name:      fc.Name,
			Arguments: fc.Arguments,
		})
	}
	return result, nil
}

// toInput rebuilds API input items from the neutral log. A tool-result
// message expands to the function call it answers (from its invocation
// metadata) followed by the call output, so replayed logs stay valid.
func toInput(msgs []history.Message) []responses.ResponseInputItemUnionParam {
	var items []responses.ResponseInputItemUnionParam
	for _, m := range msgs {
		switch m.Role {
		case history.RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "system"))
		case history.RoleUser:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "user"))
		case history.RoleAssistant:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "assistant"))
		case history.RoleTool:
			if m.Invocation != nil {
				items = append(items, responses.ResponseInputItemUnionParam{
					OfFunctionCall: &responses.ResponseFunctionToolCallParam{
						CallID:    m.Invocation.ID,
						Name:      m.Invocation.Name,
						Arguments: m.Invocation.Arguments,
					},
				})
			}
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(m.CallID, m.Content))
		}
	}
	return items
}

func toTools(tools []ToolDef) []responses.ToolUnionParam {
	var out []responses.ToolUnionParam
	for _, t := range tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
				Strict:      openai.Bool(true),
			},
		})
	}
	return out
}
