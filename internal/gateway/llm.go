// Package gateway holds the concrete implementations of the collaborator
// interfaces commands.CalendarGateway, commands.LLMGateway, commands.SMSGateway,
// and commands.PushGateway (§1's "Out-of-scope collaborators").
package gateway

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dayforge/dayforge/internal/commands"
)

// GRPCLLMGateway implements commands.LLMGateway by calling an external LLM
// completion service over gRPC. The wire payload is a structpb.Struct rather
// than a hand-generated proto message: the completion contract is a single
// request/response pair of loosely-typed fields (prompts in, tool calls or
// text out), so a well-known dynamic message saves us from shipping and
// maintaining a .proto-generated package for one RPC.
type GRPCLLMGateway struct {
	conn   *grpc.ClientConn
	method string
}

// NewGRPCLLMGateway dials addr in plaintext. The LLM service is expected to
// run as a sidecar or on the cluster-local network; upgrade to TLS
// credentials if it is ever exposed across a trust boundary.
func NewGRPCLLMGateway(addr string) (*GRPCLLMGateway, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial llm service %s: %w", addr, err)
	}
	return &GRPCLLMGateway{conn: conn, method: "/dayforge.llm.v1.LLMService/Complete"}, nil
}

// Close releases the gRPC connection.
func (g *GRPCLLMGateway) Close() error { return g.conn.Close() }

// Complete implements commands.LLMGateway.
func (g *GRPCLLMGateway) Complete(ctx context.Context, req commands.LLMRequest) (commands.LLMResponse, error) {
	reqMsg, err := structpb.NewStruct(requestToMap(req))
	if err != nil {
		return commands.LLMResponse{}, fmt.Errorf("encode llm request: %w", err)
	}

	respMsg := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, g.method, reqMsg, respMsg); err != nil {
		return commands.LLMResponse{}, fmt.Errorf("llm service call: %w", err)
	}

	return responseFromMap(respMsg.AsMap()), nil
}

func requestToMap(req commands.LLMRequest) map[string]interface{} {
	tools := make([]interface{}, len(req.Tools))
	for i, t := range req.Tools {
		params := make([]interface{}, len(t.Parameters))
		for j, p := range t.Parameters {
			params[j] = map[string]interface{}{"name": p.Name, "type": p.Type, "doc": p.Doc}
		}
		tools[i] = map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  params,
		}
	}
	return map[string]interface{}{
		"provider":       req.Provider,
		"system_prompt":  req.SystemPrompt,
		"context_prompt": req.ContextPrompt,
		"ask_prompt":     req.AskPrompt,
		"tools_prompt":   req.ToolsPrompt,
		"tools":          tools,
	}
}

func responseFromMap(m map[string]interface{}) commands.LLMResponse {
	resp := commands.LLMResponse{}
	if text, ok := m["text"].(string); ok {
		resp.Text = text
	}
	rawCalls, _ := m["tool_calls"].([]interface{})
	for _, rc := range rawCalls {
		call, ok := rc.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := call["name"].(string)
		args, _ := call["arguments"].(map[string]interface{})
		resp.ToolCalls = append(resp.ToolCalls, commands.LLMToolCall{Name: name, Arguments: args})
	}
	return resp
}
