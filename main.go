package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/corpus"
	"github.com/aquasecurity/vuln-list-stats/cwe"
	"github.com/aquasecurity/vuln-list-stats/git"
	"github.com/aquasecurity/vuln-list-stats/report"
	"github.com/aquasecurity/vuln-list-stats/stats"
	"github.com/aquasecurity/vuln-list-stats/utils"
)

const (
	defaultRepoURL = "https://github.com/CVEProject/cvelistV5.git"
	recordsDir     = "cves"
)

var (
	target   = flag.String("target", "analyze", "task to run (analyze, count, missing, collect)")
	dir      = flag.String("dir", utils.LookupEnv("VULN_STATS_DIR", utils.CorpusDir()), "corpus directory")
	repo     = flag.String("repo", "", "clone or pull this repository into -dir before analysis (e.g. "+defaultRepoURL+")")
	branch   = flag.String("branch", "main", "branch of -repo")
	url      = flag.String("url", "", "download and unpack a corpus archive instead of using -dir")
	years    = flag.String("years", "", "comma separated year directories to analyze (e.g. 2023,2024)")
	since    = flag.String("since", "", "only count records published at or after this date")
	workers  = flag.Int("workers", utils.LookupEnvInt("VULN_STATS_WORKERS", 0), "number of workers (default: number of CPUs)")
	output   = flag.String("output", "", "directory for report files; the text report goes to stdout when empty")
	format   = flag.String("format", "json,csv", "report formats (json, yaml, csv, text)")
	progress = flag.Bool("progress", true, "show a progress bar while loading records")
	compare  = flag.String("compare", "", "comma separated directories to compare -dir against (missing)")
	names    = flag.String("names", "", "directory whose JSON file names select the records to copy (collect)")
	catalog  = flag.String("cwe", "", "CWE catalog file or URL used to name weaknesses (e.g. "+cwe.CatalogURL+")")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, revision, err := prepare(ctx)
	if err != nil {
		return err
	}

	reader := corpus.NewReader(
		corpus.WithYears(splitList(*years)),
		corpus.WithWorkers(*workers),
		corpus.WithProgress(*progress),
	)

	switch *target {
	case "analyze":
		if err = analyze(ctx, reader, root, revision); err != nil {
			return xerrors.Errorf("analysis error: %w", err)
		}
	case "count":
		if err = count(reader, root); err != nil {
			return xerrors.Errorf("count error: %w", err)
		}
	case "missing":
		missing, err := reader.Missing(*dir, splitList(*compare)...)
		if err != nil {
			return xerrors.Errorf("comparison error: %w", err)
		}
		for _, name := range missing {
			log.Printf("  - %s", name)
		}
		log.Printf("total missing files: %d", len(missing))
	case "collect":
		if err = collect(reader, root); err != nil {
			return xerrors.Errorf("collect error: %w", err)
		}
	default:
		return xerrors.Errorf("unknown target: %s", *target)
	}
	return nil
}

// prepare makes the corpus available locally and returns the directory
// holding the records along with the revision it was taken from, if known.
func prepare(ctx context.Context) (string, string, error) {
	if *url != "" {
		log.Printf("downloading %s", *url)
		tmpDir, err := utils.DownloadToTempDir(ctx, *url)
		if err != nil {
			return "", "", xerrors.Errorf("corpus download error: %w", err)
		}
		return recordsRoot(tmpDir), "", nil
	}

	var revision string
	if *repo != "" {
		gc := git.Config{}
		updated, err := gc.CloneOrPull(*repo, *dir, *branch)
		if err != nil {
			return "", "", xerrors.Errorf("clone or pull error: %w", err)
		}
		log.Printf("%d record files updated", updated)

		if revision, err = gc.Revision(*dir); err != nil {
			return "", "", xerrors.Errorf("revision error: %w", err)
		}
	}
	return recordsRoot(*dir), revision, nil
}

// recordsRoot descends into the cves directory of a CVE list checkout.
func recordsRoot(dir string) string {
	if ok, _ := utils.Exists(filepath.Join(dir, recordsDir)); ok {
		return filepath.Join(dir, recordsDir)
	}
	return dir
}

func analyze(ctx context.Context, reader corpus.Reader, root, revision string) error {
	formats, err := report.ParseFormats(*format)
	if err != nil {
		return err
	}

	opts := []stats.Option{stats.WithWorkers(*workers)}
	if *since != "" {
		t, err := dateparse.ParseAny(*since)
		if err != nil {
			return xerrors.Errorf("invalid -since: %w", err)
		}
		opts = append(opts, stats.WithPublishedSince(t))
	}

	start := time.Now()
	result, err := reader.Analyze(ctx, root, stats.NewEngine(opts...))
	if err != nil {
		return err
	}
	log.Printf("analyzed %d records in %s, %d errors", result.Tables.Totals.Documents, time.Since(start).Round(time.Millisecond), len(result.Errors))

	summaryOpts := []report.Option{report.WithRevision(revision)}
	if *catalog != "" {
		c, err := loadCatalog(ctx, *catalog)
		if err != nil {
			return xerrors.Errorf("cwe catalog error: %w", err)
		}
		summaryOpts = append(summaryOpts, report.WithCatalog(c))
	}

	summary := report.NewSummary(result, summaryOpts...)
	if *output == "" {
		return report.Print(os.Stdout, summary)
	}
	if err = report.Write(afero.NewOsFs(), *output, summary, formats); err != nil {
		return err
	}
	log.Printf("reports written to %s", *output)
	return nil
}

func loadCatalog(ctx context.Context, src string) (cwe.Catalog, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return cwe.DownloadCatalog(ctx, src)
	}
	return cwe.LoadCatalog(afero.NewOsFs(), src)
}

func count(reader corpus.Reader, root string) error {
	counts, err := reader.CountByFolder(root)
	if err != nil {
		return err
	}

	var total int
	folders := maps.Keys(counts)
	slices.Sort(folders)
	for _, folder := range folders {
		log.Printf("%6d files in: %s", counts[folder], folder)
		total += counts[folder]
	}
	log.Printf("total: %d JSON files in %d folders", total, len(folders))
	return nil
}

func collect(reader corpus.Reader, root string) error {
	if *names == "" || *output == "" {
		return xerrors.New("-names and -output are required")
	}
	// With nothing to compare against, Missing lists every JSON file name.
	selected, err := reader.Missing(*names)
	if err != nil {
		return err
	}
	missing, err := reader.Collect(root, *output, selected)
	if err != nil {
		return err
	}
	log.Printf("copied: %d, missing: %d", len(selected)-len(missing), len(missing))
	for _, name := range missing {
		log.Printf("  - %s", name)
	}
	return nil
}

func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}
