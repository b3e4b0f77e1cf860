package validation

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
)

// ToolChecker reports whether an external tool is available
type ToolChecker interface {
	HasTool(name string) bool
}

// PathToolChecker looks tools up on PATH
type PathToolChecker struct{}

// HasTool implements ToolChecker
func (PathToolChecker) HasTool(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ToolSet is a fixed set of available tools
type ToolSet map[string]bool

// HasTool implements ToolChecker
func (t ToolSet) HasTool(name string) bool { return t[name] }

// LanguageLister lists the OCR languages installed for tesseract
type LanguageLister interface {
	Languages() ([]string, error)
}

// DefaultTessdataDirs are searched when no tessdata directory is configured
var DefaultTessdataDirs = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
}

// TessdataLister finds languages by the *.traineddata files in tessdata directories.
// TESSDATA_PREFIX is searched first when set.
type TessdataLister struct {
	Dirs []string
}

// Languages implements LanguageLister
func (l TessdataLister) Languages() ([]string, error) {
	dirs := l.Dirs
	if prefix := os.Getenv("TESSDATA_PREFIX"); prefix != "" {
		dirs = append([]string{prefix, filepath.Join(prefix, "tessdata")}, dirs...)
	}

	seen := make(map[string]bool)
	for _, dir := range dirs {
		files, err := fsutil.ListFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			base := filepath.Base(f)
			if strings.HasSuffix(base, ".traineddata") {
				seen[strings.TrimSuffix(base, ".traineddata")] = true
			}
		}
	}

	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

// listLangsTimeout bounds a single tesseract --list-langs call
const listLangsTimeout = 10 * time.Second

// TesseractLister asks tesseract for its installed languages and falls back to another
// lister when the tool is missing or reports nothing. The answer is computed once.
type TesseractLister struct {
	// Command is the tesseract executable, "tesseract" when empty
	Command string

	// Fallback answers when tesseract cannot
	Fallback LanguageLister

	once  sync.Once
	langs []string
	err   error
}

// NewTesseractLister creates a lister that falls back to scanning dirs
func NewTesseractLister(dirs []string) *TesseractLister {
	return &TesseractLister{Fallback: TessdataLister{Dirs: dirs}}
}

// Languages implements LanguageLister
func (l *TesseractLister) Languages() ([]string, error) {
	l.once.Do(func() {
		l.langs, l.err = l.list()
	})
	return l.langs, l.err
}

func (l *TesseractLister) list() ([]string, error) {
	command := l.Command
	if command == "" {
		command = "tesseract"
	}

	ctx, cancel := context.WithTimeout(context.Background(), listLangsTimeout)
	defer cancel()

	// tesseract 3 prints the list on stderr
	out, err := exec.CommandContext(ctx, command, "--list-langs").CombinedOutput()
	if err == nil {
		if langs := parseLanguageList(out); len(langs) > 0 {
			return langs, nil
		}
	}

	logger.LogDebug("tesseract did not list languages, scanning tessdata", map[string]interface{}{
		"command": command,
		"error":   err,
	})
	if l.Fallback == nil {
		return nil, err
	}
	return l.Fallback.Languages()
}

// parseLanguageList reads tesseract --list-langs output. The header line and any
// warning lines are skipped; language codes are single words.
func parseLanguageList(out []byte) []string {
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, " \t:") {
			continue
		}
		seen[line] = true
	}

	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// StaticLanguages is a fixed language list
type StaticLanguages []string

// Languages implements LanguageLister
func (s StaticLanguages) Languages() ([]string, error) { return s, nil }
