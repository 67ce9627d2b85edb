package textfile

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultTodoExtensions are the file extensions scanned when none are given.
var DefaultTodoExtensions = []string{".cs"}

var todoRegex = regexp.MustCompile(`// *(TODO.*)$`)

// skipped directories hold build output or version control data
var skipDirs = map[string]bool{
	".git": true,
	"bin":  true,
	"obj":  true,
}

// Todo is a TODO comment found in a source file.
type Todo struct {
	File string
	Line int
	Text string
}

func (t Todo) String() string {
	return fmt.Sprintf("%s(%d): %s", t.File, t.Line, t.Text)
}

// ScanTodos walks root and calls fn for every TODO comment in files whose
// extension is in exts. Extensions compare case-insensitively.
func ScanTodos(root string, exts []string, fn func(Todo) error) error {
	if len(exts) == 0 {
		exts = DefaultTodoExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		want[strings.ToLower(ext)] = true
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !want[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		return scanFile(path, fn)
	})
}

func scanFile(path string, fn func(Todo) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		m := todoRegex.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if m == nil {
			continue
		}
		if err := fn(Todo{File: path, Line: lineNum, Text: m[1]}); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
