package browser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/vidyasagar/xplore/internal/theme"
)

const maxFileSize = 2 * 1024 * 1024 // 2 MB

// ErrBinaryFile is returned when a file does not look like text.
var ErrBinaryFile = errors.New("binary file")

// Entry is one item of a folder listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Hidden reports whether the entry is a dotfile.
func (e Entry) Hidden() bool {
	return strings.HasPrefix(e.Name, ".")
}

// ReadFolder lists dir. Folders come first, then files, each in name order,
// with hidden entries after visible ones.
func ReadFolder(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		e := Entry{
			Name:  de.Name(),
			Path:  filepath.Join(dir, de.Name()),
			IsDir: de.IsDir(),
		}
		if info, err := de.Info(); err == nil {
			e.Size = info.Size()
			e.ModTime = info.ModTime()
			// Follow symlinks so linked folders are browsable.
			if info.Mode()&os.ModeSymlink != 0 {
				if target, err := os.Stat(e.Path); err == nil {
					e.IsDir = target.IsDir()
				}
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Hidden() != b.Hidden() {
			return !a.Hidden()
		}
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return entries, nil
}

// NearestExisting walks up from path until it finds something that exists.
// It returns the root when nothing on the way does.
func NearestExisting(path string) string {
	path = filepath.Clean(path)
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// RenderFolder formats a listing. Every entry becomes a numbered link, with
// [0] pointing at the parent folder.
func RenderFolder(dir string, entries []Entry, width int) (string, []Link) {
	t := theme.Current
	w := contentWidth(width)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border)
	idxStyle := lipgloss.NewStyle().Foreground(t.LinkIndex).Width(6)
	dirStyle := lipgloss.NewStyle().Foreground(t.Link).Bold(true)
	fileStyle := lipgloss.NewStyle().Foreground(t.Text)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var sb strings.Builder
	sb.WriteString("  " + titleStyle.Render(dir) + "\n")
	sb.WriteString("  " + sepStyle.Render(strings.Repeat("━", min(w, 60))) + "\n\n")

	var links []Link
	if parent := filepath.Dir(dir); parent != dir {
		links = append(links, Link{Index: 0, Text: "..", Target: parent})
		sb.WriteString("  " + idxStyle.Render("[0]") + dirStyle.Render("../") + "\n")
	}

	if len(entries) == 0 {
		sb.WriteString("\n  " + dimStyle.Render("(empty folder)") + "\n")
		return sb.String(), links
	}

	nameWidth := max(w-32, 16)
	for i, e := range entries {
		idx := i + 1
		links = append(links, Link{Index: idx, Text: e.Name, Target: e.Path})

		name := e.Name
		style := fileStyle
		size := humanSize(e.Size)
		if e.IsDir {
			name += "/"
			style = dirStyle
			size = "-"
		}
		if e.Hidden() {
			style = dimStyle
		}
		name = ansi.Truncate(name, nameWidth, "…")
		name = lipgloss.NewStyle().Width(nameWidth).Render(style.Render(name))

		sb.WriteString(fmt.Sprintf("  %s%s %s  %s\n",
			idxStyle.Render(fmt.Sprintf("[%d]", idx)),
			name,
			dimStyle.Render(fmt.Sprintf("%8s", size)),
			dimStyle.Render(e.ModTime.Format("2006-01-02 15:04")),
		))
	}
	return sb.String(), links
}

// RenderFile shows a text file: markdown through glamour, anything else as a
// fenced code block.
func RenderFile(path string, width int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize))
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if !looksText(data) {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrBinaryFile)
	}

	ext := strings.ToLower(filepath.Ext(path))
	md := string(data)
	if ext != ".md" && ext != ".markdown" {
		md = "# " + filepath.Base(path) + "\n\n```" + strings.TrimPrefix(ext, ".") + "\n" +
			strings.TrimRight(md, "\n") + "\n```\n"
	}

	out, err := RenderMarkdown(md, width)
	if err != nil {
		return string(data), nil
	}
	return out, nil
}

func looksText(data []byte) bool {
	sample := data[:min(len(data), 8000)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	// Tolerate a rune cut off at the sample boundary.
	if len(sample) < len(data) {
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	return utf8.Valid(sample)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
