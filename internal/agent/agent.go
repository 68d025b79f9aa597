// Package agent runs a conversational job-search assistant on Gemini
// function calling over the job store, pipeline, email and embedding tools.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/job-harvester/internal/llm"
	"github.com/jonathan/job-harvester/internal/prompts"
)

// DefaultMaxSteps bounds the tool-call rounds of one user turn.
const DefaultMaxSteps = 6

// chatSession is the part of *genai.ChatSession used by the agent.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Agent holds one conversation.
type Agent struct {
	session  chatSession
	tools    *Toolbox
	maxSteps int
	verbose  bool
}

// Options configures an Agent.
type Options struct {
	Tier     llm.ModelTier
	MaxSteps int
	Verbose  bool
}

// New starts a conversation on client's model for opts.Tier with every tool
// declared and the system prompt installed.
func New(client *llm.GeminiClient, tools *Toolbox, opts Options) (*Agent, error) {
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	model, err := client.Model(opts.Tier)
	if err != nil {
		return nil, err
	}

	decls, err := Declarations()
	if err != nil {
		return nil, err
	}
	model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	model.SystemInstruction = genai.NewUserContent(genai.Text(prompts.MustGet(prompts.AgentSystem)))

	return newAgent(model.StartChat(), tools, opts), nil
}

func newAgent(session chatSession, tools *Toolbox, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Agent{session: session, tools: tools, maxSteps: opts.MaxSteps, verbose: opts.Verbose}
}

// Send delivers one user message, runs any tool calls the model asks for,
// and returns the model's final text.
func (a *Agent) Send(ctx context.Context, message string) (string, error) {
	resp, err := a.session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("agent request failed: %w", err)
	}

	for step := 0; step < a.maxSteps; step++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return llm.ExtractText(resp)
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, a.execute(ctx, call))
		}

		resp, err = a.session.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("agent request failed: %w", err)
		}
	}

	if len(functionCalls(resp)) == 0 {
		return llm.ExtractText(resp)
	}
	return "", fmt.Errorf("agent exceeded %d tool-call rounds", a.maxSteps)
}

func (a *Agent) execute(ctx context.Context, call genai.FunctionCall) genai.FunctionResponse {
	args, err := json.Marshal(call.Args)
	var result map[string]any
	if err != nil {
		result = errorResult(fmt.Errorf("invalid arguments: %w", err))
	} else {
		result = a.tools.Execute(ctx, call.Name, args)
	}
	if a.verbose {
		if msg, ok := result["error"]; ok {
			log.Printf("[VERBOSE] [agent] %s returned error: %v", call.Name, msg)
		}
	}
	return genai.FunctionResponse{Name: call.Name, Response: normalize(result)}
}

// normalize round-trips a result through JSON so the protobuf conversion in
// the client only sees maps, slices and scalars.
func normalize(result map[string]any) map[string]any {
	b, err := json.Marshal(result)
	if err != nil {
		return errorResult(fmt.Errorf("failed to encode result: %w", err))
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return errorResult(fmt.Errorf("failed to encode result: %w", err))
	}
	return out
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch fc := part.(type) {
		case genai.FunctionCall:
			calls = append(calls, fc)
		case *genai.FunctionCall:
			calls = append(calls, *fc)
		}
	}
	return calls
}

// IsExit reports whether a chat input ends the conversation.
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}
