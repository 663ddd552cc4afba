package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/events"
)

// FileName is the name of the report file written by the file sink.
const FileName = "SEO_defects_scan_result.txt"

// Console prints non-empty reports followed by a newline.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Write(res detector.Result) error {
	if res.Err != nil || res.Report.Clean() {
		return nil
	}

	_, err := fmt.Fprintln(c.w, res.Report.String())

	return err
}

// Stream emits one NDJSON event per result.
type Stream struct {
	emitter *events.Emitter
}

func NewStream(w io.Writer) *Stream {
	return &Stream{emitter: events.NewEmitter(w)}
}

func (s *Stream) Name() string { return "stream" }

func (s *Stream) Write(res detector.Result) error {
	if res.Err != nil {
		return s.emitter.Emit(events.ScanError(res.Input, res.Err))
	}

	return s.emitter.Emit(events.ScanResult(res.Input, res.Report.String(), res.Report.Defects(), res.Report.Invalid()))
}

// File writes reports to [FileName] under a directory. With several inputs
// each report is preceded by a header naming its input; rescanning an input
// replaces its section.
type File struct {
	path    string
	logger  *slog.Logger
	mu      sync.Mutex
	reports *orderedmap.OrderedMap[string, string]
}

// NewFile returns a file sink writing under dir. Trailing slashes are
// ignored and the directory is created on first write.
func NewFile(dir string, logger *slog.Logger) (*File, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(dir), `/\`)
	if trimmed == "" {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("output directory cannot be empty")
		}
		trimmed = string(filepath.Separator)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &File{
		path:    filepath.Join(trimmed, FileName),
		logger:  logger,
		reports: orderedmap.New[string, string](),
	}, nil
}

func (f *File) Name() string { return "file" }

// Path returns the report file path.
func (f *File) Path() string { return f.path }

func (f *File) Write(res detector.Result) error {
	if res.Err != nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.reports.Set(res.Input, res.Report.String())

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, []byte(f.render()), 0o644); err != nil {
		return err
	}

	f.logger.Info("SEO defects scan result saved", slog.String("path", f.path))

	return nil
}

func (f *File) render() string {
	if f.reports.Len() == 1 {
		return f.reports.Oldest().Value
	}

	sections := make([]string, 0, f.reports.Len())
	for p := f.reports.Oldest(); p != nil; p = p.Next() {
		sections = append(sections, fmt.Sprintf("==> %s <==\n%s", p.Key, p.Value))
	}

	return strings.Join(sections, "\n\n")
}

// String keeps reports in memory.
type String struct {
	mu      sync.Mutex
	reports []string
}

func NewString() *String {
	return &String{}
}

func (s *String) Name() string { return "string" }

func (s *String) Write(res detector.Result) error {
	if res.Err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, res.Report.String())

	return nil
}

// String returns the most recent report.
func (s *String) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) == 0 {
		return ""
	}

	return s.reports[len(s.reports)-1]
}

// Reports returns every captured report in order.
func (s *String) Reports() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.reports...)
}
