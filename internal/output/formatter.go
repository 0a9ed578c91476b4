package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/photos"
)

// Formatter handles text/JSON/colored output.
type Formatter struct {
	Writer    io.Writer
	ErrWriter io.Writer
	JSON      bool
	Color     bool
}

// NewFormatter creates a new output formatter.
func NewFormatter(jsonMode, colorMode bool) *Formatter {
	return &Formatter{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		JSON:      jsonMode,
		Color:     colorMode,
	}
}

// Printf prints formatted text to stdout.
func (f *Formatter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(f.Writer, format, args...)
}

// Println prints a line to stdout.
func (f *Formatter) Println(args ...interface{}) {
	fmt.Fprintln(f.Writer, args...)
}

// Errorf prints a formatted error message to stderr.
func (f *Formatter) Errorf(format string, args ...interface{}) {
	if f.Color {
		c := color.New(color.FgRed)
		c.Fprintf(f.ErrWriter, format, args...)
	} else {
		fmt.Fprintf(f.ErrWriter, format, args...)
	}
}

// PrintJSON outputs a value as JSON.
func (f *Formatter) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatDirName formats a directory name with color.
func (f *Formatter) FormatDirName(name string) string {
	if f.Color {
		return color.New(color.FgBlue, color.Bold).Sprint(name)
	}
	return name
}

// FormatPhotoName highlights image files.
func (f *Formatter) FormatPhotoName(name string) string {
	if f.Color {
		return color.New(color.FgMagenta).Sprint(name)
	}
	return name
}

// FormatEntryName formats an entry name based on its type.
func (f *Formatter) FormatEntryName(name string, entryType fs.EntryType) string {
	if entryType == fs.TypeDir {
		return f.FormatDirName(name)
	}
	if photos.IsImageFile(name) {
		return f.FormatPhotoName(name)
	}
	return name
}

func (f *Formatter) dim(s string) string {
	if f.Color {
		return color.New(color.Faint).Sprint(s)
	}
	return s
}

// --- ls output ---

// PrintLs prints a simple directory listing. Entries arrive sorted by name.
func (f *Formatter) PrintLs(entries []fs.DirEntry, showAll bool) {
	entries = visible(entries, showAll)

	if f.JSON {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		f.PrintJSON(names)
		return
	}

	for _, e := range entries {
		if e.Meta != nil {
			fmt.Fprintln(f.Writer, f.FormatEntryName(e.Name, e.Meta.Type))
		} else {
			fmt.Fprintln(f.Writer, e.Name)
		}
	}
}

// PrintLsLong prints a detailed directory listing (ls -l).
func (f *Formatter) PrintLsLong(entries []fs.DirEntry, showAll bool) {
	entries = visible(entries, showAll)

	if f.JSON {
		result := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			entry := map[string]interface{}{
				"name": e.Name,
			}
			if e.Meta != nil {
				entry["type"] = string(e.Meta.Type)
				entry["mode"] = e.Meta.Mode
				entry["owner"] = e.Meta.Owner
				entry["fileid"] = e.Meta.FileID
				entry["size"] = e.Meta.Size
				entry["mtime"] = e.Meta.MTime
			}
			result = append(result, entry)
		}
		f.PrintJSON(result)
		return
	}

	for _, e := range entries {
		if e.Meta == nil {
			fmt.Fprintf(f.Writer, "?????????? ? ? ? ? %s\n", e.Name)
			continue
		}
		fmt.Fprintf(f.Writer, "%s %-8s %6d %6s %s %s\n",
			e.Meta.ModeString(),
			e.Meta.Owner,
			e.Meta.FileID,
			fs.FormatSize(e.Meta.Size),
			fs.FormatTime(e.Meta.MTime),
			f.FormatEntryName(e.Name, e.Meta.Type),
		)
	}
}

func visible(entries []fs.DirEntry, showAll bool) []fs.DirEntry {
	if showAll {
		return entries
	}
	out := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, ".") {
			out = append(out, e)
		}
	}
	return out
}

// --- stat output ---

// PrintStat prints node metadata, including the storage it lives on.
func (f *Formatter) PrintStat(node *fs.Node, meta *fs.Metadata) {
	if f.JSON {
		f.PrintJSON(map[string]interface{}{
			"path":    node.Path,
			"type":    string(meta.Type),
			"mode":    meta.Mode,
			"owner":   meta.Owner,
			"fileid":  meta.FileID,
			"storage": string(node.Storage),
			"size":    meta.Size,
			"ctime":   meta.CTime,
			"mtime":   meta.MTime,
			"atime":   meta.ATime,
		})
		return
	}

	fmt.Fprintf(f.Writer, "   File: %s\n", node.Path)
	fmt.Fprintf(f.Writer, "   Type: %s\n", meta.Type)
	fmt.Fprintf(f.Writer, "   Mode: %s (%s)\n", meta.ModeString(), meta.Mode)
	fmt.Fprintf(f.Writer, "  Owner: %s\n", meta.Owner)
	fmt.Fprintf(f.Writer, " FileID: %d\n", meta.FileID)
	fmt.Fprintf(f.Writer, "Storage: %s\n", node.Storage)
	fmt.Fprintf(f.Writer, "   Size: %d\n", meta.Size)
	fmt.Fprintf(f.Writer, "  CTime: %s\n", fs.FormatTime(meta.CTime))
	fmt.Fprintf(f.Writer, "  MTime: %s\n", fs.FormatTime(meta.MTime))
	fmt.Fprintf(f.Writer, "  ATime: %s\n", fs.FormatTime(meta.ATime))
}
