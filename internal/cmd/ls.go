package cmd

import (
	"context"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/photos"
	flag "github.com/spf13/pflag"
)

// handleLs lists a folder. With --photos only the entries the photo index
// would pick up are shown.
func (r *Router) handleLs(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	long := flags.BoolP("long", "l", false, "Long listing format")
	all := flags.BoolP("all", "a", false, "Show hidden entries")
	onlyPhotos := flags.BoolP("photos", "P", false, "Show image files only")
	if err := flags.Parse(args); err != nil {
		return err
	}

	target := r.State.Cwd
	if flags.NArg() > 0 {
		target = r.ResolvePath(flags.Arg(0))
	}

	entries, err := r.Client.ReadDirWithMeta(ctx, target)
	if err != nil {
		return err
	}
	if *onlyPhotos {
		entries = photoEntries(entries)
	}

	if *long {
		r.Formatter.PrintLsLong(entries, *all)
		return nil
	}
	r.Formatter.PrintLs(entries, *all)
	return nil
}

func photoEntries(entries []fs.DirEntry) []fs.DirEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Meta != nil && e.Meta.Type == fs.TypeFile && photos.IsImageFile(e.Name) {
			out = append(out, e)
		}
	}
	return out
}
