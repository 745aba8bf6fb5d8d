package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseJDKSourceFiles parses every .java file under testcases/jdk when
// that corpus is checked out. It is a smoke test against real-world sources
// and skips silently on machines without the corpus.
func TestParseJDKSourceFiles(t *testing.T) {
	jdkDir := "../../testcases/jdk"
	if _, err := os.Stat(jdkDir); os.IsNotExist(err) {
		t.Skipf("corpus %s not present", jdkDir)
	}

	err := filepath.Walk(jdkDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".java") {
			return nil
		}

		t.Run(path, func(t *testing.T) {
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read file: %v", err)
			}

			p := ParseCompilationUnit(strings.NewReader(string(content)), WithFile(path))
			node := p.Finish()

			if hasError(node) {
				t.Errorf("parse error in %s", path)
				t.Logf("Parse tree:\n%s", node.String())
			}
		})

		return nil
	})

	if err != nil {
		t.Fatalf("failed to walk jdk directory: %v", err)
	}
}
