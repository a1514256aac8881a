package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	nodex "github.com/rayadhanush/Dining-concierge-bot/agent/nodes"
)

const (
	nodeValidateRequest    = "validate_request"
	nodeGreet              = "greet"
	nodeResumeCached       = "resume_cached"
	nodeValidateSlots      = "validate_slots"
	nodeElicit             = "elicit"
	nodePersistPreferences = "persist_preferences"
	nodeSubmitRequest      = "submit_request"
	nodeClose              = "close"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[contractx.TurnRequest, contractx.TurnResponse], error) {
	graph := compose.NewGraph[contractx.TurnRequest, contractx.TurnResponse]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in contractx.TurnRequest) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodeGreet,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResponse, error) {
			return nodex.Greet(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeGreet, err)
	}

	if err := graph.AddLambdaNode(nodeResumeCached,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ResumeCached(ctx, in, o.cache)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeResumeCached, err)
	}

	if err := graph.AddLambdaNode(nodeValidateSlots,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ValidateSlots(in, o.validator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateSlots, err)
	}

	if err := graph.AddLambdaNode(nodeElicit,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResponse, error) {
			return nodex.Elicit(ctx, in, o.cache)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeElicit, err)
	}

	if err := graph.AddLambdaNode(nodePersistPreferences,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PersistPreferences(ctx, in, o.cache)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodePersistPreferences, err)
	}

	if err := graph.AddLambdaNode(nodeSubmitRequest,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SubmitRequest(ctx, in, o.submitter)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeSubmitRequest, err)
	}

	if err := graph.AddLambdaNode(nodeClose,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResponse, error) {
			return nodex.Close(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeClose, err)
	}

	intentBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteIntent(in, nodeGreet, nodeResumeCached)
		},
		map[string]bool{
			nodeGreet:        true,
			nodeResumeCached: true,
		},
	)
	if err := graph.AddBranch(nodeValidateRequest, intentBranch); err != nil {
		return nil, fmt.Errorf("add intent branch: %w", err)
	}

	validityBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.RouteValidation(in, nodeElicit, nodePersistPreferences)
		},
		map[string]bool{
			nodeElicit:             true,
			nodePersistPreferences: true,
		},
	)
	if err := graph.AddBranch(nodeValidateSlots, validityBranch); err != nil {
		return nil, fmt.Errorf("add validity branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeGreet, compose.END},
		{nodeResumeCached, nodeValidateSlots},
		{nodeElicit, compose.END},
		{nodePersistPreferences, nodeSubmitRequest},
		{nodeSubmitRequest, nodeClose},
		{nodeClose, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
