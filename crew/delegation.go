package crew

import (
	"context"
	"fmt"
	"strings"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

const (
	DelegateWorkToolName = "Delegate work to coworker"
	AskQuestionToolName  = "Ask question to coworker"
)

const coworkerExpectedOutput = "Your best answer to your coworker asking you this, accounting for the context shared."

// DelegateWorkInput input of the delegate work tool
type DelegateWorkInput struct {
	schema.Base
	Task     string `json:"task" jsonschema:"title=task,description=The task to delegate." validate:"required"`
	Context  string `json:"context,omitempty" jsonschema:"title=context,description=The context for the task."`
	Coworker string `json:"coworker" jsonschema:"title=coworker,description=The role of the coworker to delegate to." validate:"required"`
}

// AskQuestionInput input of the ask question tool
type AskQuestionInput struct {
	schema.Base
	Question string `json:"question" jsonschema:"title=question,description=The question to ask." validate:"required"`
	Context  string `json:"context,omitempty" jsonschema:"title=context,description=The context for the question."`
	Coworker string `json:"coworker" jsonschema:"title=coworker,description=The role of the coworker to ask." validate:"required"`
}

// delegation hands a one-off job to a coworker.
// Coworker jobs carry no coworkers, so delegated work is never delegated again
type delegation struct {
	from      *Agent
	coworkers []*Agent
	parent    *job
	usage     *components.LLMUsage
}

func (d *delegation) coworker(role string) (*Agent, error) {
	name := normalizeName(role)
	if name == normalizeName(d.from.role) {
		return nil, fmt.Errorf("you can not delegate to yourself (%s), choose one of: %s", d.from.role, d.roles())
	}
	for _, c := range d.coworkers {
		if normalizeName(c.role) == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("coworker %q not found, it must be one of the following options: %s", role, d.roles())
}

func (d *delegation) roles() string {
	roles := make([]string, 0, len(d.coworkers))
	for _, c := range d.coworkers {
		roles = append(roles, c.role)
	}
	return strings.Join(roles, ", ")
}

func (d *delegation) run(ctx context.Context, role string, description string, taskContext string) (string, error) {
	coworker, err := d.coworker(role)
	if err != nil {
		return "", err
	}
	answer, usage, err := coworker.execute(ctx, &job{
		description:    description,
		expectedOutput: coworkerExpectedOutput,
		context:        taskContext,
		cache:          d.parent.cache,
		logger:         d.parent.logger,
		verbose:        d.parent.verbose,
	})
	d.usage.Merge(usage)
	return answer, err
}

type delegateWorkTool struct {
	tools.Config
	*delegation
}

var _ tools.Tool[DelegateWorkInput, schema.String] = (*delegateWorkTool)(nil)

func (t *delegateWorkTool) Run(ctx context.Context, in *DelegateWorkInput, out *schema.String) error {
	answer, err := t.run(ctx, in.Coworker, in.Task, in.Context)
	if err != nil {
		return err
	}
	*out = schema.String(answer)
	return nil
}

type askQuestionTool struct {
	tools.Config
	*delegation
}

var _ tools.Tool[AskQuestionInput, schema.String] = (*askQuestionTool)(nil)

func (t *askQuestionTool) Run(ctx context.Context, in *AskQuestionInput, out *schema.String) error {
	answer, err := t.run(ctx, in.Coworker, in.Question, in.Context)
	if err != nil {
		return err
	}
	*out = schema.String(answer)
	return nil
}

// delegationTools returns the delegate work and ask question tools of an agent
func delegationTools(from *Agent, coworkers []*Agent, parent *job, usage *components.LLMUsage) []tools.AnonymousTool {
	d := &delegation{
		from:      from,
		coworkers: coworkers,
		parent:    parent,
		usage:     usage,
	}
	roles := d.roles()
	work := &delegateWorkTool{delegation: d}
	work.SetTitle(DelegateWorkToolName)
	work.SetDescription(fmt.Sprintf("Delegate a specific task to one of the following coworkers: %s. The input to this tool should be the coworker, the task you want them to do, and ALL necessary context to execute the task, they know nothing about the task, so share absolutely everything you know, don't reference things but instead explain them.", roles))
	ask := &askQuestionTool{delegation: d}
	ask.SetTitle(AskQuestionToolName)
	ask.SetDescription(fmt.Sprintf("Ask a specific question to one of the following coworkers: %s. The input to this tool should be the coworker, the question you have for them, and ALL necessary context to ask the question properly, they know nothing about the question, so share absolutely everything you know, don't reference things but instead explain them.", roles))
	return []tools.AnonymousTool{
		tools.NewAnonymous[DelegateWorkInput, schema.String](work),
		tools.NewAnonymous[AskQuestionInput, schema.String](ask),
	}
}
