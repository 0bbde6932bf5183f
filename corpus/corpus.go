package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/cve"
	"github.com/aquasecurity/vuln-list-stats/stats"
)

const (
	jsonExt = ".json"
	zstdExt = ".zst"
)

// DecodeAll is safe for concurrent use, so one decoder serves every worker.
var decoder = lo.Must(zstd.NewReader(nil))

type options struct {
	fs       afero.Fs
	years    []string
	workers  int
	progress bool
}

type option func(*options)

func WithFs(fs afero.Fs) option {
	return func(opts *options) { opts.fs = fs }
}

// WithYears restricts listing to the given year subdirectories of the root.
func WithYears(years []string) option {
	return func(opts *options) { opts.years = years }
}

func WithWorkers(workers int) option {
	return func(opts *options) {
		if workers > 0 {
			opts.workers = workers
		}
	}
}

func WithProgress(progress bool) option {
	return func(opts *options) { opts.progress = progress }
}

type Reader struct {
	*options
}

func NewReader(opts ...option) Reader {
	o := &options{
		fs:      afero.NewOsFs(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return Reader{
		options: o,
	}
}

// List returns every record file under root in lexical order. Hidden
// directories such as .git are skipped.
func (r Reader) List(root string) ([]string, error) {
	dirs := []string{root}
	if len(r.years) > 0 {
		dirs = lo.Map(r.years, func(year string, _ int) string {
			return filepath.Join(root, year)
		})
	}

	var paths []string
	for _, dir := range dirs {
		if len(r.years) > 0 {
			if ok, err := afero.DirExists(r.fs, dir); err != nil {
				return nil, xerrors.Errorf("stat error (%s): %w", dir, err)
			} else if !ok {
				log.Printf("skip %s: no such directory", dir)
				continue
			}
		}

		err := afero.Walk(r.fs, dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return xerrors.Errorf("file walk error: %w", err)
			}
			if info.IsDir() {
				if path != dir && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isRecord(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, xerrors.Errorf("walk error (%s): %w", dir, err)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Load reads one record file, decompressing it when it ends in .zst.
func (r Reader) Load(path string) (cve.Document, error) {
	b, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return cve.Document{}, xerrors.Errorf("file read error: %w", err)
	}

	if strings.HasSuffix(path, zstdExt) {
		if b, err = decoder.DecodeAll(b, nil); err != nil {
			return cve.Document{}, xerrors.Errorf("zstd decode error: %w", err)
		}
	}

	var body any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err = d.Decode(&body); err != nil {
		return cve.Document{}, xerrors.Errorf("json decode error: %w", err)
	}
	return cve.Document{ID: DocumentID(path), Body: body}, nil
}

// Read loads paths concurrently and sends the parsed documents to out. Files
// that cannot be loaded are reported, not sent. out is not closed.
func (r Reader) Read(ctx context.Context, paths []string, out chan<- cve.Document) ([]cve.DocumentError, error) {
	bar := pb.New(len(paths))
	if r.progress {
		bar.Start()
		defer bar.Finish()
	}

	var (
		mu   sync.Mutex
		errs []cve.DocumentError
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			defer bar.Increment()
			doc, err := r.Load(path)
			if err != nil {
				mu.Lock()
				errs = append(errs, cve.DocumentError{ID: DocumentID(path), Err: err})
				mu.Unlock()
				return nil
			}
			select {
			case out <- doc:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return errs, err
	}
	return errs, ctx.Err()
}

// Analyze streams every record under root through the engine. Load failures
// are reported alongside decode failures in the result.
func (r Reader) Analyze(ctx context.Context, root string, engine stats.Engine) (stats.Result, error) {
	paths, err := r.List(root)
	if err != nil {
		return stats.Result{}, xerrors.Errorf("list error: %w", err)
	}
	log.Printf("%d record files under %s", len(paths), root)

	docs := make(chan cve.Document, r.workers)
	var (
		result   stats.Result
		loadErrs []cve.DocumentError
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(docs)
		var err error
		loadErrs, err = r.Read(gctx, paths, docs)
		return err
	})
	g.Go(func() error {
		var err error
		result, err = engine.Analyze(gctx, docs)
		return err
	})
	err = g.Wait()
	result.AddErrors(loadErrs...)
	if err != nil {
		return result, xerrors.Errorf("analysis error: %w", err)
	}
	return result, nil
}

// CountByFolder returns the number of record files per directory under root,
// keyed by the directory path relative to root.
func (r Reader) CountByFolder(root string) (map[string]int, error) {
	counts := map[string]int{}
	err := afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return xerrors.Errorf("file walk error: %w", err)
		}
		if info.IsDir() || !isRecord(path) {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return xerrors.Errorf("relative path error: %w", err)
		}
		counts[rel]++
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("walk error (%s): %w", root, err)
	}
	return counts, nil
}

// Missing returns the names of the JSON files directly inside src that exist
// in none of the other directories.
func (r Reader) Missing(src string, others ...string) ([]string, error) {
	names, err := r.jsonNames(src)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for _, dir := range others {
		otherNames, err := r.jsonNames(dir)
		if err != nil {
			return nil, err
		}
		for _, name := range otherNames {
			seen[name] = struct{}{}
		}
	}

	return lo.Filter(names, func(name string, _ int) bool {
		_, ok := seen[name]
		return !ok
	}), nil
}

// Collect copies the records of root whose file names appear in names into
// dest, returning the names that could not be found. The first match wins
// when a name occurs more than once under root.
func (r Reader) Collect(root, dest string, names []string) ([]string, error) {
	paths, err := r.List(root)
	if err != nil {
		return nil, xerrors.Errorf("list error: %w", err)
	}
	index := map[string]string{}
	for _, path := range paths {
		if _, ok := index[filepath.Base(path)]; !ok {
			index[filepath.Base(path)] = path
		}
	}

	if err = r.fs.MkdirAll(dest, os.ModePerm); err != nil {
		return nil, xerrors.Errorf("mkdir error: %w", err)
	}

	var missing []string
	for _, name := range names {
		path, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		b, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, xerrors.Errorf("file read error: %w", err)
		}
		if err = afero.WriteFile(r.fs, filepath.Join(dest, name), b, 0644); err != nil {
			return nil, xerrors.Errorf("file write error: %w", err)
		}
	}
	return missing, nil
}

func (r Reader) jsonNames(dir string) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, xerrors.Errorf("read dir error (%s): %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), jsonExt) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DocumentID derives a document identifier from its file name.
func DocumentID(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), zstdExt)
	return strings.TrimSuffix(name, jsonExt)
}

func isRecord(path string) bool {
	return strings.HasSuffix(path, jsonExt) || strings.HasSuffix(path, jsonExt+zstdExt)
}
