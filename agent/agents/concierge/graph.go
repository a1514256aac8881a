package concierge

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/rayadhanush/Dining-concierge-bot/agent/nodes/conversation"
)

const (
	nodeValidateRequest     = "validate_request"
	nodeLoadOrCreateSession = "load_or_create_session"
	nodeInterpret           = "interpret"
	nodeMergeSlots          = "merge_slots"
	nodeRunTurn             = "run_turn"
	nodeSaveSession         = "save_session"
	nodeFinalizeReply       = "finalize_reply"
)

func (s *Service) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodeLoadOrCreateSession,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateSession(ctx, in, s.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeLoadOrCreateSession, err)
	}

	if err := graph.AddLambdaNode(nodeInterpret,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Interpret(ctx, in, s.interpreter)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeInterpret, err)
	}

	if err := graph.AddLambdaNode(nodeMergeSlots,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.MergeSlots(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeMergeSlots, err)
	}

	if err := graph.AddLambdaNode(nodeRunTurn,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunTurn(ctx, in, s.turns)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeRunTurn, err)
	}

	if err := graph.AddLambdaNode(nodeSaveSession,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveSession(ctx, in, s.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeSaveSession, err)
	}

	if err := graph.AddLambdaNode(nodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeValidateRequest, nodeLoadOrCreateSession},
		{nodeLoadOrCreateSession, nodeInterpret},
		{nodeInterpret, nodeMergeSlots},
		{nodeMergeSlots, nodeRunTurn},
		{nodeRunTurn, nodeSaveSession},
		{nodeSaveSession, nodeFinalizeReply},
		{nodeFinalizeReply, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("concierge.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile concierge graph: %w", err)
	}
	return runner, nil
}
