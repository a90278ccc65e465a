package webscraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

var (
	// ErrUnsupportedContent is returned when the fetched payload is not a html document
	ErrUnsupportedContent = errors.New("webscraper: unsupported content type")
	// ErrContentTooLarge is returned when the server announces a body larger than the configured limit
	ErrContentTooLarge = errors.New("webscraper: content too large")
)

var multiBlankLines = regexp.MustCompile(`(\r?\n){3,}`)

// Input schema for the WebpageScraperTool.
type Input struct {
	schema.Base
	// URL of the webpage to scrape.
	URL string `json:"url" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required,url"`
	// IncludeLinks Whether to preserve hyperlinks in the markdown output.
	IncludeLinks bool `json:"include_links,omitempty" jsonschema:"title=include_links,description=Whether to preserve hyperlinks in the markdown output."`
}

func NewInput(link string, includeLinks bool) *Input {
	return &Input{
		URL:          link,
		IncludeLinks: includeLinks,
	}
}

// Metadata Schema for webpage metadata
type Metadata struct {
	// Title is the title of the webpage.
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Author is the author of the webpage content.
	Author string `json:"author,omitempty" jsonschema:"title=author,description=The Author of the webpage."`
	// Description is the meta description of the webpage.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The meta description of the webpage."`
	// Keywords is the meta keywords of the webpage.
	Keywords string `json:"keywords,omitempty" jsonschema:"title=keywords,description=The meta keywords of the webpage."`
	// SiteName is the name of the website.
	SiteName string `json:"sitename,omitempty" jsonschema:"title=sitename,description=The name of the website."`
	// Domain is the domain name of the website.
	Domain string `json:"domain,omitempty" jsonschema:"title=domain,description=The domain name of the website."`
}

// Output Schema for the output of the WebpageScraperTool.
type Output struct {
	schema.Base
	// Content The scraped content in markdown format.
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The scraped content in markdown format."`
	// Metadata is metadata about the scraped webpage.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=metadata,description=Metadata about the webpage."`
	// Truncated reports whether the page or the markdown was cut to the configured limits
	Truncated bool `json:"truncated,omitempty" jsonschema:"title=truncated,description=Whether the content was truncated."`
}

func (o Output) String() string {
	var b strings.Builder
	if o.Metadata != nil && o.Metadata.Title != "" {
		b.WriteString("# ")
		b.WriteString(o.Metadata.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(o.Content)
	if o.Truncated {
		b.WriteString("\n[content truncated]")
	}
	return b.String()
}

type Config struct {
	tools.Config
	// userAgent User agent string to use for requests.
	userAgent string
	// timeout Timeout in seconds for HTTP requests
	timeout int
	// maxContentLength Maximum content length in bytes to process.
	maxContentLength  int64
	maxMarkdownLength int
	httpClient        *http.Client
}

type Webscraper struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Webscraper)(nil)

func New(opts ...Option) *Webscraper {
	ret := new(Webscraper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("Read website content")
	}
	if ret.Description() == "" {
		ret.SetDescription("Fetches a webpage and returns its main content as markdown together with the page metadata.")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout == 0 {
		ret.timeout = 30
	}
	if ret.maxContentLength == 0 {
		ret.maxContentLength = 1_000_000
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: time.Second * time.Duration(ret.timeout)}
	}
	return ret
}

func (t *Webscraper) Run(ctx context.Context, input *Input, output *Output) error {
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return err
	}
	doc, truncated, err := t.fetch(ctx, input.URL)
	if err != nil {
		return err
	}
	meta := &Metadata{Domain: parsedURL.Host}
	// metadata first, extractMainContent strips the header
	t.extractMetadata(doc, meta)
	mainContent := t.extractMainContent(doc, input.IncludeLinks)
	markdown, err := htmltomarkdown.ConvertString(
		mainContent,
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return err
	}
	markdown = t.cleanMarkdownContent(markdown)
	if t.maxMarkdownLength > 0 {
		if runes := []rune(markdown); len(runes) > t.maxMarkdownLength {
			markdown = string(runes[:t.maxMarkdownLength])
			truncated = true
		}
	}
	output.Content = markdown
	output.Metadata = meta
	output.Truncated = truncated
	return nil
}

func (t *Webscraper) fetch(ctx context.Context, link string) (*goquery.Document, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpReq.Header.Set("Connection", "keep-alive")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("webscraper: unexpected status %d fetching %s", httpResp.StatusCode, link)
	}
	if httpResp.ContentLength > t.maxContentLength {
		return nil, false, fmt.Errorf("%w: %d bytes exceeds maximum of %d", ErrContentTooLarge, httpResp.ContentLength, t.maxContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength+1))
	if err != nil {
		return nil, false, err
	}
	var truncated bool
	if int64(len(body)) > t.maxContentLength {
		body = body[:t.maxContentLength]
		truncated = true
	}
	mtype := mimetype.Detect(body)
	if !mtype.Is("text/html") && !mtype.Is("application/xhtml+xml") {
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedContent, mtype.String())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	return doc, truncated, err
}

// Extracts metadata from the webpage
func (t *Webscraper) extractMetadata(doc *goquery.Document, meta *Metadata) {
	meta.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
}

// extractMainContent extracts the main content from the webpage using custom heuristics
func (t *Webscraper) extractMainContent(doc *goquery.Document, includeLinks bool) string {
	for _, tag := range []string{"script", "style", "noscript", "nav", "header", "footer", "aside"} {
		doc.Find(tag).Remove()
	}
	if !includeLinks {
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			s.ReplaceWithHtml(html.EscapeString(s.Text()))
		})
	}
	contentCandidates := []string{
		"main",
		"#content, #main",
		".content, .main",
		"article",
		"body",
	}
	var mainContent string
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			if txt, err := sel.Html(); err == nil && strings.TrimSpace(txt) != "" {
				mainContent = txt
				break
			}
		}
	}
	if mainContent == "" {
		mainContent, _ = doc.Html()
	}
	return mainContent
}

// Cleans up the markdown content by removing excessive whitespace and normalizing formatting
func (t *Webscraper) cleanMarkdownContent(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	content = strings.Join(lines, "\n")
	content = multiBlankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content) + "\n"
}
