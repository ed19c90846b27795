package dispatch

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

type graphRunner = compose.Runnable[GraphInput, GraphOutput]

// compileHandleMessageGraph wires the dispatch state machine:
// Start -> Routing -> {Tracking, Refunding, Retrieving, Escalated} -> Done.
// The branch fan-out happens inside run_branch; every path ends in
// phrase_reply, so Done is always reached.
func (d *Dispatcher) compileHandleMessageGraph(ctx context.Context) (graphRunner, error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*GraphState, error) {
			return d.validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return d.loadOrCreateSession(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("classify",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return d.classifyMessage(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify: %w", err)
	}

	if err := graph.AddLambdaNode("route",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return d.routeMessage(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route: %w", err)
	}

	if err := graph.AddLambdaNode("run_branch",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return d.runBranch(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_branch: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return d.saveSession(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("phrase_reply",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (GraphOutput, error) {
			return d.phraseReply(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node phrase_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "classify"},
		{"classify", "route"},
		{"route", "run_branch"},
		{"run_branch", "save_session"},
		{"save_session", "phrase_reply"},
		{"phrase_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dispatch.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatch graph: %w", err)
	}
	return runner, nil
}
