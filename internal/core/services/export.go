package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
	"github.com/alexpineda/llmdump/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService assembles categorised documents into markdown files.
type ExportService struct {
	fs      afero.Fs
	cleaner driven.Cleaner
	now     func() time.Time
}

// NewExportService creates a new export service writing to fs.
// The cleaner may be nil, in which case exports with cleaning enabled fail
// with domain.ErrLLMUnavailable.
func NewExportService(fs afero.Fs, cleaner driven.Cleaner) *ExportService {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ExportService{fs: fs, cleaner: cleaner, now: time.Now}
}

// WriteDocumentsToFile writes the session under outputDir and returns the
// paths written, in write order. Each file is built in memory and written
// once; in multiple mode a failure leaves earlier files in place.
func (s *ExportService) WriteDocumentsToFile(
	ctx context.Context,
	session *domain.Session,
	outputDir string,
	opts driving.ExportOptions,
) ([]string, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("%q: %w", opts.Mode, domain.ErrUnsupportedMode)
	}
	if opts.Clean && s.cleaner == nil {
		return nil, fmt.Errorf("cleanup requested: %w", domain.ErrLLMUnavailable)
	}
	if err := s.fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logger.Section("Export")

	identifier := domain.SanitizeIdentifier(session.Identifier)
	index := session.Crawl.Index()

	var (
		paths []string
		files []manifestFile
	)

	switch opts.Mode {
	case domain.AssemblyModeSingle:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", identifier)
		file := manifestFile{}
		for _, category := range session.Categories {
			if category.IsEmpty() {
				continue
			}
			fmt.Fprintf(&b, "## %s\n\n", category.Name)
			n, err := s.writeDocuments(ctx, &b, "###", category, index, opts.Clean)
			if err != nil {
				return paths, err
			}
			file.Categories = append(file.Categories, manifestCategory{
				Name:      category.Name,
				Documents: n,
				Tokens:    domain.EstimateTokensForCategory(category, session.Crawl),
			})
		}

		path := filepath.Join(outputDir, identifier+".md")
		if err := s.write(path, b.String()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		file.Path = path
		files = append(files, file)

	case domain.AssemblyModeMultiple:
		used := make(map[string]bool)
		for _, category := range session.Categories {
			if category.IsEmpty() {
				continue
			}
			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", category.Name)
			n, err := s.writeDocuments(ctx, &b, "##", category, index, opts.Clean)
			if err != nil {
				return paths, err
			}

			name := uniqueStem(identifier+"_"+domain.CategoryFileComponent(category.Name), used) + ".md"
			path := filepath.Join(outputDir, name)
			if err := s.write(path, b.String()); err != nil {
				return paths, err
			}
			paths = append(paths, path)
			files = append(files, manifestFile{
				Path: path,
				Categories: []manifestCategory{{
					Name:      category.Name,
					Documents: n,
					Tokens:    domain.EstimateTokensForCategory(category, session.Crawl),
				}},
			})
		}
	}

	if opts.Manifest {
		path, err := s.writeManifest(outputDir, identifier, session, opts, files)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	logger.Info("Wrote %d files to %s", len(paths), outputDir)
	return paths, nil
}

// uniqueStem returns stem, or stem with the first free "_N" suffix when
// an earlier category already mapped to it. Comparison ignores case so
// names that differ only in case do not overwrite each other on
// case-insensitive filesystems. The result is recorded in used.
func uniqueStem(stem string, used map[string]bool) string {
	candidate := stem
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s_%d", stem, n)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// writeDocuments appends every resolvable document of category to b under
// headings of the given level. Documents missing a title, URL or body are
// skipped. It returns the number of documents written.
func (s *ExportService) writeDocuments(
	ctx context.Context,
	b *strings.Builder,
	heading string,
	category domain.Category,
	index map[string]domain.CrawledDocument,
	clean bool,
) (int, error) {
	written := 0
	for _, url := range category.RefURLs {
		doc, ok := index[url]
		if !ok || doc.Title == "" || doc.URL == "" || doc.Content == "" {
			logger.Debug("Skipping %s in %q", url, category.Name)
			continue
		}

		body := doc.Content
		if clean {
			cleaned, err := s.cleaner.Clean(ctx, body)
			if err != nil {
				return written, fmt.Errorf("clean %s: %w", doc.URL, err)
			}
			body = cleaned
		}

		fmt.Fprintf(b, "%s %s\n\n", heading, doc.Title)
		fmt.Fprintf(b, "[%s](%s)\n\n", doc.URL, doc.URL)
		b.WriteString(body)
		b.WriteString("\n\n")
		written++
	}
	return written, nil
}

func (s *ExportService) write(path, content string) error {
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("Wrote %s (%d bytes)", path, len(content))
	return nil
}

type manifest struct {
	Identifier  string         `yaml:"identifier"`
	SourceURL   string         `yaml:"source_url,omitempty"`
	Mode        string         `yaml:"mode"`
	Cleaned     bool           `yaml:"cleaned"`
	GeneratedAt time.Time      `yaml:"generated_at"`
	TotalTokens float64        `yaml:"total_tokens"`
	Files       []manifestFile `yaml:"files"`
}

type manifestFile struct {
	Path       string             `yaml:"path"`
	Categories []manifestCategory `yaml:"categories"`
}

type manifestCategory struct {
	Name      string  `yaml:"name"`
	Documents int     `yaml:"documents"`
	Tokens    float64 `yaml:"tokens"`
}

func (s *ExportService) writeManifest(
	outputDir, identifier string,
	session *domain.Session,
	opts driving.ExportOptions,
	files []manifestFile,
) (string, error) {
	var total float64
	for _, f := range files {
		for _, c := range f.Categories {
			total += c.Tokens
		}
	}
	m := manifest{
		Identifier:  identifier,
		SourceURL:   session.Crawl.SourceURL,
		Mode:        opts.Mode.String(),
		Cleaned:     opts.Clean,
		GeneratedAt: s.now().UTC(),
		TotalTokens: total,
		Files:       files,
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(outputDir, identifier+".manifest.yaml")
	if err := s.write(path, string(data)); err != nil {
		return "", err
	}
	return path, nil
}
