// Package serper implements a Google search tool backed by serper.dev
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

const (
	DefaultEndpoint = "https://google.serper.dev/search"
	// APIKeyEnv is the environment variable holding the serper api key
	APIKeyEnv = "SERPER_API_KEY"
)

// ErrMissingAPIKey is returned when no api key is configured nor found in SERPER_API_KEY
var ErrMissingAPIKey = errors.New("serper: missing api key")

// Input schema for the serper search tool
type Input struct {
	schema.Base
	// Queries list of search queries
	Queries []string `json:"queries" jsonschema:"title=queries,description=Mandatory list of search queries you want to use to search the internet." validate:"required,min=1,dive,required"`
}

func NewInput(queries ...string) *Input {
	return &Input{Queries: queries}
}

// Result is an organic search result
type Result struct {
	Query    string `json:"query,omitempty"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
	Position int    `json:"position,omitempty"`
	Date     string `json:"date,omitempty"`
}

// AnswerBox is the direct answer google shows on top of the results
type AnswerBox struct {
	Query   string `json:"query,omitempty"`
	Title   string `json:"title,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// KnowledgeGraph is the entity card of a query
type KnowledgeGraph struct {
	Query       string `json:"query,omitempty"`
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Output of the serper search tool
type Output struct {
	schema.Base
	Results         []Result         `json:"results,omitempty"`
	AnswerBoxes     []AnswerBox      `json:"answer_boxes,omitempty"`
	KnowledgeGraphs []KnowledgeGraph `json:"knowledge_graphs,omitempty"`
}

// Title implements systemprompt.ContextProvider interface
func (o Output) Title() string {
	return "Search results"
}

// Info implements systemprompt.ContextProvider interface
func (o Output) Info() string {
	return o.String()
}

func (o Output) String() string {
	if len(o.Results) == 0 && len(o.AnswerBoxes) == 0 && len(o.KnowledgeGraphs) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for _, v := range o.AnswerBoxes {
		fmt.Fprintf(&b, "Answer (%s): %s\n", v.Query, firstNonEmpty(v.Answer, v.Snippet, v.Title))
	}
	for _, v := range o.KnowledgeGraphs {
		fmt.Fprintf(&b, "Knowledge graph (%s): %s", v.Query, v.Title)
		if v.Type != "" {
			fmt.Fprintf(&b, " [%s]", v.Type)
		}
		if v.Description != "" {
			fmt.Fprintf(&b, " - %s", v.Description)
		}
		b.WriteString("\n")
	}
	for _, v := range o.Results {
		b.WriteString("---\n")
		fmt.Fprintf(&b, "Title: %s\nLink: %s\n", v.Title, v.Link)
		if v.Snippet != "" {
			fmt.Fprintf(&b, "Snippet: %s\n", v.Snippet)
		}
		if v.Date != "" {
			fmt.Fprintf(&b, "Date: %s\n", v.Date)
		}
	}
	return strings.TrimSpace(b.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type searchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
	Num int    `json:"num,omitempty"`
}

type searchResponse struct {
	AnswerBox      *AnswerBox      `json:"answerBox,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledgeGraph,omitempty"`
	Organic        []Result        `json:"organic"`
}

type Config struct {
	tools.Config
	apiKey     string
	endpoint   string
	country    string
	locale     string
	maxResults int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// Search is a tool searching the internet through the serper.dev google search api
type Search struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Search)(nil)

func New(opts ...Option) *Search {
	ret := new(Search)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("Search the internet")
	}
	if ret.Description() == "" {
		ret.SetDescription("A tool that can be used to search the internet with a search query. Returns titles, links and snippets.")
	}
	if ret.apiKey == "" {
		ret.apiKey = os.Getenv(APIKeyEnv)
	}
	if ret.endpoint == "" {
		ret.endpoint = DefaultEndpoint
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.limiter == nil {
		ret.limiter = rate.NewLimiter(rate.Limit(5), 5)
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

func (t *Search) Run(ctx context.Context, input *Input, output *Output) error {
	if t.apiKey == "" {
		return ErrMissingAPIKey
	}
	responses := make([]*searchResponse, len(input.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for idx, query := range input.Queries {
		g.Go(func() error {
			resp, err := t.search(gctx, query)
			if err != nil {
				return fmt.Errorf("serper search %q: %w", query, err)
			}
			responses[idx] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for idx, resp := range responses {
		query := input.Queries[idx]
		if resp.AnswerBox != nil {
			box := *resp.AnswerBox
			box.Query = query
			output.AnswerBoxes = append(output.AnswerBoxes, box)
		}
		if resp.KnowledgeGraph != nil {
			kg := *resp.KnowledgeGraph
			kg.Query = query
			output.KnowledgeGraphs = append(output.KnowledgeGraphs, kg)
		}
		var count int
		for _, item := range resp.Organic {
			if item.Link == "" || item.Title == "" {
				continue
			}
			if count >= t.maxResults {
				break
			}
			item.Query = query
			output.Results = append(output.Results, item)
			count++
		}
	}
	return nil
}

func (t *Search) search(ctx context.Context, query string) (*searchResponse, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(searchRequest{
		Q:   query,
		GL:  t.country,
		HL:  t.locale,
		Num: t.maxResults,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-API-KEY", t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("non-200 response %d: %s", httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}
	ret := new(searchResponse)
	if err := json.NewDecoder(httpResp.Body).Decode(ret); err != nil {
		return nil, err
	}
	return ret, nil
}
