package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/folio/config"
	"github.com/etnz/folio/gateway"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file is
	// listed in readme.md.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"# Ledger", "# Configuration", "# Providers"} {
		if !strings.Contains(all, title) {
			t.Errorf("GetTopics(*) is missing %q", title)
		}
	}
	if strings.Contains(all, "Topics:") {
		t.Error("GetTopics(*) must not include the readme")
	}

	if _, err := GetTopics("ledger", "nope"); err == nil {
		t.Error("GetTopics(nope) must fail")
	}
}

// Block is a fenced code block of a topic.
type Block struct {
	Lang    string
	Content string
	Line    int
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			for _, block := range parseMarkdown(t, file) {
				switch block.Lang {
				case "toml":
					name := filepath.Join(t.TempDir(), "folio.toml")
					if err := os.WriteFile(name, []byte(block.Content), 0644); err != nil {
						t.Fatal(err)
					}
					if _, err := config.Load(name); err != nil {
						t.Errorf("%s:%d: invalid configuration: %v", file, block.Line, err)
					}
				case "json":
					if _, err := gateway.DecodeFrozen(strings.NewReader(block.Content)); err != nil {
						t.Errorf("%s:%d: invalid market snapshot: %v", file, block.Line, err)
					}
				}
			}
		})
	}
}

// parseMarkdown returns the fenced code blocks of file.
func parseMarkdown(t *testing.T, file string) []Block {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	var blocks []Block
	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, Block{
			Lang:    string(fcb.Info.Segment.Value(content)),
			Content: b.String(),
			Line:    strings.Count(string(content[:fcb.Info.Segment.Start]), "\n") + 1,
		})
		return ast.WalkContinue, nil
	})
	return blocks
}
