package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// ErrMissingBaseURL is returned when the tool has no SearxNG instance configured
var ErrMissingBaseURL = errors.New("searxng: missing base url")

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
// Returns a list of search results with a short description or content snippet and URLs for further exploration
type Input struct {
	schema.Base
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries." validate:"required,min=1,dive,required"`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	schema.Base
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query" jsonschema:"title=query,description=The query used to obtain this search result"`
	// Category The category of the search result
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=The category of the search result"`
	// Metadata is additional metadata such as the date
	Metadata string `json:"metadata,omitempty" jsonschema:"title=metadata,description=Additional metadata such as the date"`
	// PublishedDate the published date of the search result
	PublishedDate string `json:"publishedDate,omitempty" jsonschema:"title=published_date,description=The published date of the search result"`
	// Score relevance score returned by SearxNG
	Score float64 `json:"score,omitempty" jsonschema:"title=score,description=Relevance score"`
}

// SearchResponse represents the entire response from the local search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	schema.Base
	// Results List of search result items
	Results []SearchResultItem `json:"results,omitempty" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=Category of the search results."`
}

// Title implements systemprompt.ContextProvider interface
func (s Output) Title() string {
	return "Search results"
}

// Info implements systemprompt.ContextProvider interface
func (s Output) Info() string {
	var b strings.Builder
	for idx, item := range s.Results {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n", idx+1, item.Title, item.URL)
		if item.Content != "" {
			fmt.Fprintf(&b, "   %s\n", item.Content)
		}
		if item.PublishedDate != "" {
			fmt.Fprintf(&b, "   Published: %s\n", item.PublishedDate)
		}
	}
	return strings.TrimSpace(b.String())
}

func (s Output) String() string {
	if len(s.Results) == 0 {
		return "No results found."
	}
	return s.Info()
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// SearxngSearch is a tool for performing searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	Config
}

var _ tools.Tool[Input, Output] = (*SearxngSearch)(nil)

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxNG Search")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches SearxNG for information, news and references. Returns titles, URLs and content snippets.")
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Run Runs the SearxNGTool synchronously with the given parameters
func (t *SearxngSearch) Run(ctx context.Context, input *Input, output *Output) error {
	if t.baseURL == "" {
		return ErrMissingBaseURL
	}
	category := input.Category
	resultsPerQuery := make([][]SearchResultItem, len(input.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for idx, query := range input.Queries {
		g.Go(func() error {
			items, err := t.fetchSearchResults(gctx, query, category)
			if err != nil {
				return err
			}
			resultsPerQuery[idx] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	var results []SearchResultItem
	for _, items := range resultsPerQuery {
		for _, item := range items {
			if item.URL == "" || item.Title == "" {
				continue
			}
			if _, found := seen[item.URL]; found {
				continue
			}
			seen[item.URL] = struct{}{}
			results = append(results, item)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	output.Results = results
	output.Category = category
	return nil
}

// fetchSearchResults queries the local search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	// Encode the query parameter
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", "bing,duckduckgo,google,startpage,yandex")
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", strings.TrimRight(t.baseURL, "/"), values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying local search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
		if searchResponse.Results[idx].Category == "" {
			searchResponse.Results[idx].Category = category
		}
	}

	return searchResponse.Results, nil
}
