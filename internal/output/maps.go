package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/metrics"
	"github.com/gary-kim/maps/internal/photos"
	"github.com/gary-kim/maps/internal/share"
)

// PrintPhotos lists index entries.
func (f *Formatter) PrintPhotos(list []*photos.Photo) {
	if f.JSON {
		result := make([]map[string]interface{}, 0, len(list))
		for _, p := range list {
			result = append(result, map[string]interface{}{
				"fileid": p.FileID,
				"path":   p.Path,
				"owner":  p.Owner,
				"size":   p.Size,
				"mtime":  p.MTime,
			})
		}
		f.PrintJSON(result)
		return
	}

	if len(list) == 0 {
		fmt.Fprintln(f.Writer, "(no photos)")
		return
	}
	for _, p := range list {
		owner := ""
		if p.Owner != p.User {
			owner = f.dim(" (shared by " + p.Owner + ")")
		}
		fmt.Fprintf(f.Writer, "%6d %6s %s %s%s\n",
			p.FileID, fs.FormatSize(p.Size), fs.FormatTime(p.MTime), f.FormatPhotoName(p.Path), owner)
	}
}

// PrintShares lists shares.
func (f *Formatter) PrintShares(list []*share.Share) {
	if f.JSON {
		result := make([]map[string]interface{}, 0, len(list))
		for _, s := range list {
			result = append(result, map[string]interface{}{
				"id":          s.ID,
				"type":        s.Type.String(),
				"share_with":  s.ShareWith,
				"file_source": s.FileSource,
				"item_target": s.ItemTarget,
				"ctime":       s.CreatedAt,
			})
		}
		f.PrintJSON(result)
		return
	}

	if len(list) == 0 {
		fmt.Fprintln(f.Writer, "(no shares)")
		return
	}
	for _, s := range list {
		with := s.ShareWith
		if with == "" {
			with = "-"
		}
		fmt.Fprintf(f.Writer, "%4d %-6s %-10s %6d %s\n", s.ID, s.Type, with, s.FileSource, s.ItemTarget)
	}
}

// PrintTrash lists trash entries.
func (f *Formatter) PrintTrash(entries []fs.TrashEntry) {
	if f.JSON {
		result := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			result = append(result, map[string]interface{}{
				"name":       e.Name,
				"original":   e.OriginalPath,
				"deleted_at": e.DeletedAt,
				"type":       string(e.Type),
				"fileid":     e.FileID,
			})
		}
		f.PrintJSON(result)
		return
	}

	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "(trash is empty)")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "%s %s  %s\n",
			fs.FormatTime(e.DeletedAt), f.FormatEntryName(e.Name, e.Type), f.dim(e.OriginalPath))
	}
}

// PrintVersions lists prior versions, newest first, numbered from 1.
func (f *Formatter) PrintVersions(versions []fs.Version) {
	if f.JSON {
		result := make([]map[string]interface{}, 0, len(versions))
		for i, v := range versions {
			result = append(result, map[string]interface{}{
				"n":     i + 1,
				"mtime": v.MTime,
				"size":  v.Size(),
			})
		}
		f.PrintJSON(result)
		return
	}

	if len(versions) == 0 {
		fmt.Fprintln(f.Writer, "(no versions)")
		return
	}
	for i, v := range versions {
		fmt.Fprintf(f.Writer, "%3d %s %6s\n", i+1, fs.FormatTime(v.MTime), fs.FormatSize(v.Size()))
	}
}

// PrintMounts lists mount points.
func (f *Formatter) PrintMounts(mounts map[string]fs.StorageKind) {
	if f.JSON {
		result := make(map[string]string, len(mounts))
		for p, kind := range mounts {
			result[p] = string(kind)
		}
		f.PrintJSON(result)
		return
	}

	paths := make([]string, 0, len(mounts))
	for p := range mounts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(f.Writer, "%-9s %s\n", mounts[p], f.FormatDirName(p))
	}
}

// PrintUsers lists users, marking the acting one.
func (f *Formatter) PrintUsers(users []string, current string) {
	if f.JSON {
		f.PrintJSON(users)
		return
	}
	for _, u := range users {
		mark := "  "
		if u == current {
			mark = "* "
		}
		fmt.Fprintln(f.Writer, mark+u)
	}
}

// PrintStats prints metric counters.
func (f *Formatter) PrintStats(samples []metrics.Sample) {
	if f.JSON {
		f.PrintJSON(samples)
		return
	}

	if len(samples) == 0 {
		fmt.Fprintln(f.Writer, "(no events yet)")
		return
	}
	for _, s := range samples {
		fmt.Fprintf(f.Writer, "%s{%s} %g\n", s.Name, formatLabels(s.Labels), s.Value)
	}
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return strings.Join(parts, ",")
}
