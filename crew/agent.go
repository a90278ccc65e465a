package crew

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/agents"
	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/components/systemprompt/persona"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

// DefaultMaxIter is the default number of steps an agent may take before it is asked to answer
const DefaultMaxIter = 15

const forceAnswerPrompt = "I've used too many tools for this task. I'm going to give you my absolute BEST Final answer now and I won't use any more tools."

var stepInstructs = []string{
	"Reply with a single JSON object containing `thought` and either `action` with `action_input`, or `final_answer`.",
	"To use a tool, set `action` to the exact tool name and `action_input` to a JSON object matching the tool input JSON schema. The tool result is sent back to you as the next message.",
	"Use one tool at a time and never make up tool results.",
	"When you know the final answer, set `final_answer` to the complete content the task asks for, not a summary, and leave `action` empty.",
}

// AgentConfig agent settings
type AgentConfig struct {
	role            string
	goal            string
	backstory       string
	tools           []tools.AnonymousTool
	allowDelegation bool
	verbose         bool
	maxIter         int
	client          llm.Client
	model           string
	temperature     float32
	maxTokens       int
	logger          *zap.Logger
}

// Agent is a crew member: a role, goal and backstory driving a llm persona which
// reasons in steps, uses tools and may delegate to coworkers
type Agent struct {
	AgentConfig
}

// NewAgent returns a new crew Agent
func NewAgent(role string, goal string, backstory string, opts ...AgentOption) *Agent {
	ret := &Agent{
		AgentConfig: AgentConfig{
			role:      strings.TrimSpace(role),
			goal:      goal,
			backstory: backstory,
		},
	}
	for _, opt := range opts {
		opt(&ret.AgentConfig)
	}
	if ret.maxIter <= 0 {
		ret.maxIter = DefaultMaxIter
	}
	return ret
}

func (a *Agent) Role() string {
	return a.role
}

func (a *Agent) Goal() string {
	return a.goal
}

func (a *Agent) Backstory() string {
	return a.backstory
}

func (a *Agent) Tools() []tools.AnonymousTool {
	return a.tools
}

func (a *Agent) AllowDelegation() bool {
	return a.allowDelegation
}

func (a *Agent) Verbose() bool {
	return a.verbose
}

func (a *Agent) MaxIter() int {
	return a.maxIter
}

func (a *Agent) SetClient(clt llm.Client) {
	a.client = clt
}

func (a *Agent) SetModel(model string) {
	a.model = model
}

// Execute runs the task alone, without coworkers to delegate to
func (a *Agent) Execute(ctx context.Context, task *Task, taskContext string) (string, *components.LLMUsage, error) {
	return a.execute(ctx, &job{
		description:    task.Description(),
		expectedOutput: task.ExpectedOutput(),
		context:        taskContext,
	})
}

// job is a unit of work of an agent
type job struct {
	description    string
	expectedOutput string
	context        string
	coworkers      []*Agent
	cache          *toolCache
	// logger receives events when the crew or the agent is verbose
	logger  *zap.Logger
	verbose bool
}

// toolEntry is a tool offered to the agent during a job
type toolEntry struct {
	tool  tools.AnonymousTool
	cache bool
}

func (a *Agent) execute(ctx context.Context, j *job) (string, *components.LLMUsage, error) {
	usage := new(components.LLMUsage)
	if a.client == nil {
		return "", usage, fmt.Errorf("%w: %s", ErrNoLLM, a.role)
	}
	logger := a.events(j)
	toolset, infos := a.toolset(j, usage)
	generator := persona.New(a.role, a.goal, a.backstory,
		persona.WithTools(infos...),
		persona.WithOutputInstructs(stepInstructs),
	)
	agent := agents.NewAgent[schema.String, Step](
		agents.WithClient(a.client),
		agents.WithSystemPromptGenerator(generator),
		agents.WithModel(a.model),
		agents.WithTemperature(a.temperature),
		agents.WithMaxTokens(a.maxTokens),
		agents.WithName(a.role),
	)
	logger.Info("agent started task", zap.String("task", j.description))
	input := schema.String(taskPrompt(j))
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return "", usage, err
		}
		var (
			step    Step
			apiResp components.LLMResponse
		)
		err := agent.Run(ctx, &input, &step, &apiResp)
		usage.Merge(apiResp.Usage)
		if err != nil {
			return "", usage, fmt.Errorf("agent %s step %d: %w", a.role, iter, err)
		}
		if step.Thought != "" {
			logger.Debug("agent thought", zap.Int("step", iter), zap.String("thought", step.Thought))
		}
		if step.IsFinal() {
			logger.Info("agent final answer", zap.Int("steps", iter), zap.String("answer", step.FinalAnswer))
			return step.FinalAnswer, usage, nil
		}
		if iter > a.maxIter {
			return "", usage, fmt.Errorf("%w: %s after %d steps", ErrMaxIterations, a.role, iter)
		}
		observation := a.act(ctx, &step, toolset, j.cache, logger)
		if iter == a.maxIter {
			observation = observation + "\n\n" + forceAnswerPrompt
		}
		input = schema.String("Observation: " + observation)
	}
}

// toolset returns the tools available during a job, delegation tools included
func (a *Agent) toolset(j *job, usage *components.LLMUsage) (map[string]toolEntry, []persona.ToolInfo) {
	list := make([]toolEntry, 0, len(a.tools)+2)
	for _, t := range a.tools {
		list = append(list, toolEntry{tool: t, cache: true})
	}
	if a.allowDelegation {
		coworkers := make([]*Agent, 0, len(j.coworkers))
		for _, c := range j.coworkers {
			if c != a {
				coworkers = append(coworkers, c)
			}
		}
		if len(coworkers) > 0 {
			for _, t := range delegationTools(a, coworkers, j, usage) {
				list = append(list, toolEntry{tool: t})
			}
		}
	}
	set := make(map[string]toolEntry, len(list))
	infos := make([]persona.ToolInfo, 0, len(list))
	for _, entry := range list {
		set[normalizeName(entry.tool.Title())] = entry
		infos = append(infos, persona.ToolInfo{
			Name:        entry.tool.Title(),
			Description: entry.tool.Description(),
			InputSchema: entry.tool.InputSchema(),
		})
	}
	return set, infos
}

// act runs the tool requested by the step and returns the observation.
// Unknown tools and tool errors are reported to the agent, never returned
func (a *Agent) act(ctx context.Context, step *Step, toolset map[string]toolEntry, cache *toolCache, logger *zap.Logger) string {
	entry, ok := toolset[normalizeName(step.Action)]
	if !ok {
		names := make([]string, 0, len(toolset))
		for _, v := range toolset {
			names = append(names, v.tool.Title())
		}
		logger.Warn("agent used unknown tool", zap.String("tool", step.Action))
		if len(names) == 0 {
			return fmt.Sprintf("Action '%s' doesn't exist, you have no tools. Give your final answer.", step.Action)
		}
		slices.Sort(names)
		return fmt.Sprintf("Action '%s' doesn't exist, these are the only available actions: %s", step.Action, strings.Join(names, ", "))
	}
	name := entry.tool.Title()
	key := canonicalInput(step.ActionInput)
	if entry.cache {
		if observation, found := cache.Get(name, key); found {
			logger.Info("tool result from cache", zap.String("tool", name), zap.String("input", key))
			return observation
		}
	}
	logger.Info("using tool", zap.String("tool", name), zap.String("input", key))
	out, err := entry.tool.RunAnonymous(ctx, step.ActionInput)
	if err != nil {
		logger.Warn("tool error", zap.String("tool", name), zap.Error(err))
		return fmt.Sprintf("I encountered an error while trying to use the tool. This was the error: %s.\nTool %s accepts these inputs: %s", err, name, entry.tool.InputSchema())
	}
	observation := stringifyOutput(out)
	if entry.cache {
		cache.Set(name, key, observation)
	}
	return observation
}

// events returns the logger for agent events, a no-op logger unless verbose
func (a *Agent) events(j *job) *zap.Logger {
	logger := j.logger
	if a.logger != nil {
		logger = a.logger
	}
	if logger == nil || !(j.verbose || a.verbose) {
		return zap.NewNop()
	}
	return logger.With(zap.String("agent", a.role))
}

func stringifyOutput(out any) string {
	if s, ok := out.(schema.Schema); ok {
		return schema.Stringify(s)
	}
	if s, ok := out.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(out)
}

func taskPrompt(j *job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Task: %s\n\n", strings.TrimSpace(j.description))
	if j.expectedOutput != "" {
		fmt.Fprintf(&b, "This is the expected criteria for your final answer: %s\n", strings.TrimSpace(j.expectedOutput))
		b.WriteString("You MUST return the actual complete content as the final answer, not a summary.\n\n")
	}
	if ctx := strings.TrimSpace(j.context); ctx != "" {
		fmt.Fprintf(&b, "This is the context you're working with:\n%s\n\n", ctx)
	}
	b.WriteString("Begin! This is VERY important to you, use the tools available and give your best Final Answer, your job depends on it!")
	return b.String()
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
}
