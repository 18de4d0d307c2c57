// Command extract_tests writes the programs of the markdown test suites to
// .min files, so they can be run with the minimum command on their own.
//
//	go run scripts/extract_tests.go [-o dir] [test/*_test.md ...]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/minimum-lang/minimum/sexy"
)

type extracted struct {
	SourceFile string
	Name       string
	Program    string
	Expected   string
	Stdin      string
}

type Extractor struct {
	cases []extracted
	seen  map[string]bool
}

func NewExtractor() *Extractor {
	return &Extractor{seen: make(map[string]bool)}
}

func (e *Extractor) extractFromFiles(files []string) error {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		cases, err := sexy.ExtractTestCases(string(content))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		for _, tc := range cases {
			if tc.InputType != sexy.InputTypeProgram {
				continue
			}
			e.add(filepath.Base(file), tc)
		}
	}
	return nil
}

func (e *Extractor) add(sourceFile string, tc sexy.TestCase) {
	x := extracted{
		SourceFile: strings.TrimSuffix(sourceFile, ".md"),
		Name:       tc.Name,
		Program:    tc.Input,
		Stdin:      tc.InputData,
	}
	for _, a := range tc.Assertions {
		if a.Type == sexy.AssertionTypeExecute {
			x.Expected = a.Content
		}
	}
	if e.seen[x.Program] {
		return
	}
	e.seen[x.Program] = true
	e.cases = append(e.cases, x)
}

// fileName turns a test name into a file name: "while with break" becomes
// "while_with_break".
func fileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func (e *Extractor) write(dir string) error {
	sort.Slice(e.cases, func(i, j int) bool {
		if e.cases[i].SourceFile != e.cases[j].SourceFile {
			return e.cases[i].SourceFile < e.cases[j].SourceFile
		}
		return e.cases[i].Name < e.cases[j].Name
	})

	for _, x := range e.cases {
		sub := filepath.Join(dir, x.SourceFile)
		if err := os.MkdirAll(sub, 0755); err != nil {
			return err
		}
		base := filepath.Join(sub, fileName(x.Name))

		var src strings.Builder
		fmt.Fprintf(&src, "~ %s\n", x.Name)
		if x.Expected != "" {
			for _, line := range strings.Split(x.Expected, "\n") {
				fmt.Fprintf(&src, "~ expect: %s\n", line)
			}
		}
		src.WriteString(x.Program)
		src.WriteByte('\n')
		if err := os.WriteFile(base+".min", []byte(src.String()), 0644); err != nil {
			return err
		}
		if x.Stdin != "" {
			if err := os.WriteFile(base+".in", []byte(x.Stdin), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	out := flag.String("o", "extracted", "Directory to write the programs to")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob("test/*_test.md")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	extractor := NewExtractor()
	if err := extractor.extractFromFiles(files); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := extractor.write(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing programs: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d programs to %s\n", len(extractor.cases), *out)
}
