// Package human implements a tool asking a human operator for input
package human

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

// ErrNoAnswer is returned when the input stream ends before an answer was read
var ErrNoAnswer = errors.New("human: no answer")

type Input struct {
	schema.Base
	// Question to ask the human
	Question string `json:"question" jsonschema:"title=question,description=The question to ask the human operator." validate:"required"`
}

type Output struct {
	schema.Base
	Answer string `json:"answer"`
}

func (o Output) String() string {
	return o.Answer
}

type Option func(*Config)

func WithReader(r io.Reader) Option {
	return func(c *Config) {
		c.reader = r
	}
}

func WithWriter(w io.Writer) Option {
	return func(c *Config) {
		c.writer = w
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		tools.Apply(&c.Config, opts...)
	}
}

type Config struct {
	tools.Config
	reader io.Reader
	writer io.Writer
}

// Human prompts on the writer and reads one line from the reader, stdin/stdout by default.
// A single reader goroutine owns the scanner, a canceled Run leaves the pending line for the next call
type Human struct {
	Config
	mu      sync.Mutex
	answers chan answer
}

// answer is a line read from the reader
type answer struct {
	line string
	err  error
}

var _ tools.Tool[Input, Output] = (*Human)(nil)

func New(opts ...Option) *Human {
	ret := new(Human)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("human")
	}
	if ret.Description() == "" {
		ret.SetDescription("You can ask a human for guidance when you think you got stuck or you are not sure what to do next. The input should be a question for the human.")
	}
	if ret.reader == nil {
		ret.reader = os.Stdin
	}
	if ret.writer == nil {
		ret.writer = os.Stdout
	}
	ret.answers = make(chan answer)
	go ret.read(bufio.NewScanner(ret.reader))
	return ret
}

// read sends every line to answers, then the end of input error until the channel is closed
func (t *Human) read(scanner *bufio.Scanner) {
	for scanner.Scan() {
		t.answers <- answer{line: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = ErrNoAnswer
	}
	t.answers <- answer{err: err}
	close(t.answers)
}

func (t *Human) Run(ctx context.Context, input *Input, output *Output) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(t.writer, "\n%s\n> ", strings.TrimSpace(input.Question)); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res, ok := <-t.answers:
		if !ok {
			return ErrNoAnswer
		}
		if res.err != nil {
			return res.err
		}
		output.Answer = strings.TrimSpace(res.line)
		return nil
	}
}
