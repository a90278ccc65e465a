package crew

import "errors"

var (
	// ErrNoTasks is returned by Validate when the crew has no task
	ErrNoTasks = errors.New("crew: no tasks")
	// ErrTaskWithoutAgent is returned by Validate when a task has no agent assigned
	ErrTaskWithoutAgent = errors.New("crew: task has no agent")
	// ErrAgentNotInCrew is returned by Validate when a task agent is not a crew member
	ErrAgentNotInCrew = errors.New("crew: task agent is not a crew member")
	// ErrContextOrder is returned by Validate when a task depends on a task which does not run before it
	ErrContextOrder = errors.New("crew: context task must run before the task")
	// ErrUnsupportedProcess is returned for processes other than Sequential
	ErrUnsupportedProcess = errors.New("crew: unsupported process")
	// ErrMaxIterations is returned when the agent gives no final answer after being forced to
	ErrMaxIterations = errors.New("crew: agent stopped without final answer")
	// ErrNoLLM is returned when an agent without llm client is executed
	ErrNoLLM = errors.New("crew: agent has no llm client")
)
