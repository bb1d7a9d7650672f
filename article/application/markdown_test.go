package application

import (
	"strings"
	"testing"
)

const testSiteURL = "https://news.example.edu"

func TestExtractArticleTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown []byte
		expected string
	}{
		{
			name:     "Valid title",
			markdown: []byte("# Campus Election Results\nSome content"),
			expected: "Campus Election Results",
		},
		{
			name:     "Title with extra spaces",
			markdown: []byte("#   Title with spaces   \nContent"),
			expected: "Title with spaces",
		},
		{
			name:     "Leading blank lines",
			markdown: []byte("\n\n# After Blank Lines\nContent"),
			expected: "After Blank Lines",
		},
		{
			name:     "No title",
			markdown: []byte("Some content without title"),
			expected: "",
		},
		{
			name:     "Empty markdown",
			markdown: []byte(""),
			expected: "",
		},
		{
			name:     "Second level heading",
			markdown: []byte("## Not a title\nContent"),
			expected: "",
		},
		{
			name:     "Hash without space",
			markdown: []byte("#NoSpace\nContent"),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractArticleTitle(tt.markdown)
			if result != tt.expected {
				t.Errorf("extractArticleTitle() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestMarkdownRendererImpl_Render(t *testing.T) {
	renderer := NewMarkdownRenderer("")

	tests := []struct {
		name           string
		markdown       string
		expectedTitle  string
		expectedInHTML []string
	}{
		{
			name:           "Basic markdown rendering",
			markdown:       "# Hello World\nThis is a test paragraph.\n\nSome **bold** text",
			expectedTitle:  "Hello World",
			expectedInHTML: []string{"<h1", "Hello World", "<strong>bold</strong>"},
		},
		{
			name:           "GFM table and task list",
			markdown:       "# Complex Article\n\n- [ ] Task 1\n- [x] Task 2\n\n| Col1 | Col2 |\n|------|------|\n| A    | B    |",
			expectedTitle:  "Complex Article",
			expectedInHTML: []string{"<table>", `type="checkbox"`},
		},
		{
			name:           "Raw figure passes through",
			markdown:       "Intro\n\n<figure class=\"article-figure\" data-image-id=\"abc\"><img src=\"https://x/img.png\" alt=\"A\" /></figure>\n\nOutro",
			expectedInHTML: []string{`<figure class="article-figure" data-image-id="abc">`, "</figure>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			if result.Title != tt.expectedTitle {
				t.Errorf("Title = %q, want %q", result.Title, tt.expectedTitle)
			}

			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(result.HTML, expected) {
					t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, result.HTML)
				}
			}
		})
	}
}

func TestNewMarkdownRenderer(t *testing.T) {
	renderer := NewMarkdownRenderer(testSiteURL + "/")

	impl, ok := renderer.(*MarkdownRendererImpl)
	if !ok {
		t.Fatal("NewMarkdownRenderer did not return *MarkdownRendererImpl")
	}

	if impl.siteURL != testSiteURL {
		t.Errorf("siteURL = %q, want %q", impl.siteURL, testSiteURL)
	}

	if impl.renderer == nil {
		t.Error("renderer is nil")
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "Absolute HTTP URL", url: "http://example.com/page", expected: false},
		{name: "Absolute HTTPS URL", url: "https://example.com/page", expected: false},
		{name: "Protocol-relative URL", url: "//example.com/page", expected: false},
		{name: "Mailto link", url: "mailto:user@example.com", expected: false},
		{name: "Data URI", url: "data:image/png;base64,iVBOR...", expected: false},
		{name: "Absolute path", url: "/about/contact", expected: true},
		{name: "Relative path with ./", url: "./images/photo.jpg", expected: true},
		{name: "Relative path with ../", url: "../docs/readme.md", expected: true},
		{name: "Simple filename", url: "image.png", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRelativeLink(tt.url)
			if result != tt.expected {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.url, result, tt.expected)
			}
		})
	}
}

func TestRelativeLinkTransformer(t *testing.T) {
	renderer := NewMarkdownRenderer(testSiteURL)

	tests := []struct {
		name           string
		markdown       string
		expectedInHTML []string
		notInHTML      []string
	}{
		{
			name:           "Relative link transformation",
			markdown:       "Intro\n\n[Link to about](/about)",
			expectedInHTML: []string{`href="https://news.example.edu/about"`},
		},
		{
			name:           "Relative image transformation",
			markdown:       "Intro\n\n![Alt text](photo.jpg)",
			expectedInHTML: []string{`src="https://news.example.edu/images/photo.jpg"`},
		},
		{
			name:           "Absolute link unchanged",
			markdown:       "Intro\n\n[External](https://example.com/page)",
			expectedInHTML: []string{`href="https://example.com/page"`},
			notInHTML:      []string{"news.example.edu"},
		},
		{
			name:           "Markdown suffix stripped",
			markdown:       "Intro\n\n[Link](articles/budget-vote.md)",
			expectedInHTML: []string{`href="https://news.example.edu/budget-vote"`},
		},
		{
			name:           "Fragment link unchanged",
			markdown:       "Intro\n\n[Jump](#section)",
			expectedInHTML: []string{`href="#section"`},
		},
		{
			name:           "Figure markup untouched",
			markdown:       "<figure class=\"article-figure\" data-image-id=\"a\"><img src=\"photo.jpg\" alt=\"x\" /></figure>",
			expectedInHTML: []string{`<img src="photo.jpg"`},
			notInHTML:      []string{"news.example.edu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(result.HTML, expected) {
					t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, result.HTML)
				}
			}

			for _, notExpected := range tt.notInHTML {
				if strings.Contains(result.HTML, notExpected) {
					t.Errorf("HTML contains unexpected string %q\nHTML:\n%s", notExpected, result.HTML)
				}
			}
		})
	}
}
