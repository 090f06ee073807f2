// Package core defines the pipeline interfaces for flaremd.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Page is the main content of one topic file.
type Page struct {
	Title    string
	Language string
	HTML     string
}

// Topic is one converted topic.
type Topic struct {
	// Path is relative to the base folder, e.g. Content/Intro.htm.
	Path     string
	Markdown string
	// Images are base-relative paths of the pictures the topic shows.
	Images []string
}

// DocumentMetadata describes one generated documentation unit.
type DocumentMetadata struct {
	Unit        string `json:"unit" yaml:"unit"`
	Family      string `json:"family" yaml:"family"`
	SiteDir     string `json:"site_dir" yaml:"site_dir"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	Source      string `json:"source" yaml:"source"`
	Title       string `json:"title" yaml:"title"`
	Language    string `json:"language" yaml:"language"`
	Topics      int    `json:"topics" yaml:"topics"`
	RunID       string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"` // ISO8601
}

// Section represents a heading-delimited section of content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading represents a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// DocumentContent holds the text and structured content of a document.
type DocumentContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// DocumentStructure holds structural metadata parsed from the content.
type DocumentStructure struct {
	Headings   []Heading `json:"headings"`
	Links      []Link    `json:"links"`
	CodeBlocks int       `json:"code_blocks"`
	Tables     int       `json:"tables"`
	Lists      int       `json:"lists"`
}

// DocumentJSON is the complete JSON output for a documentation unit.
type DocumentJSON struct {
	Metadata  DocumentMetadata  `json:"metadata"`
	Content   DocumentContent   `json:"content"`
	Structure DocumentStructure `json:"structure"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Downloader saves a remote file below dir and returns its local path.
type Downloader interface {
	Download(ctx context.Context, url, dir string, force bool) (string, error)
}

// Extractor pulls the main content from raw HTML, stripping noise.
type Extractor interface {
	Extract(html string) (Page, error)
}

// Converter turns a content fragment of the topic at path into Markdown.
type Converter interface {
	Convert(fragment, path string) (Topic, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta DocumentMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
