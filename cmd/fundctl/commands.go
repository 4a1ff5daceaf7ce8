package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/epeers/whattheyhold/config"
	"github.com/epeers/whattheyhold/internal/app"
	"github.com/epeers/whattheyhold/internal/database"
	"github.com/epeers/whattheyhold/internal/refresher"
	"github.com/epeers/whattheyhold/internal/storage"
	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

var commands = []subcommands.Command{
	&refreshCmd{},
	&secImportCmd{},
	&uploadLogosCmd{},
	&migrateCmd{},
}

// env loads configuration, logging and, unless skipped, an open database
type env struct {
	cfg *config.Config
	db  *database.DB
}

func openEnv(ctx context.Context, withDB bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(cfg); err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}
	if withDB {
		if e.db, err = database.New(ctx, cfg.PGURL); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// splitTickers parses a comma separated ticker list
func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type refreshCmd struct {
	tickers string
	pause   time.Duration
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "force-refresh popular funds from the upstream provider" }
func (*refreshCmd) Usage() string {
	return `fundctl refresh [-tickers VOO,QQQ] [-pause 3s]

  Fetches every ticker upstream, one at a time, and stores the result.
  Without -tickers the REFRESH_TICKERS list, or the built-in popular list, is used.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tickers, "tickers", "", "comma separated tickers to refresh")
	f.DurationVar(&c.pause, "pause", -1, "pause between tickers (defaults to REFRESH_PAUSE)")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	tickers := e.cfg.RefreshTickers
	if c.tickers != "" {
		tickers = splitTickers(c.tickers)
	}
	pause := e.cfg.RefreshPause
	if c.pause >= 0 {
		pause = c.pause
	}

	svc := app.NewServices(e.cfg, e.db.Pool)
	res := refresher.New(svc.Funds, tickers, pause).RefreshAll(ctx)
	printJSON(res)
	if len(res.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type secImportCmd struct {
	maxPages int
	dryRun   bool
	projID   string
	period   string
}

func (*secImportCmd) Name() string     { return "sec-import" }
func (*secImportCmd) Synopsis() string { return "import Thai fund profiles or holdings from SEC Open Data" }
func (*secImportCmd) Usage() string {
	return `fundctl sec-import [-max-pages n] [-dry-run]
fundctl sec-import -proj-id <proj_id> [-period YYYYMM]

  Without -proj-id, imports fund profiles and detects feeder funds.
  With -proj-id, imports the quarterly portfolio of that fund.
  Requires SEC_API_KEY.
`
}

func (c *secImportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.maxPages, "max-pages", 0, "maximum profile pages to fetch (0 = all)")
	f.BoolVar(&c.dryRun, "dry-run", false, "report what would be imported without writing")
	f.StringVar(&c.projID, "proj-id", "", "import the quarterly portfolio of this fund")
	f.StringVar(&c.period, "period", "", "first portfolio period to import, YYYYMM")
}

func (c *secImportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.maxPages < 0 {
		fmt.Fprintln(os.Stderr, "Error: -max-pages must not be negative")
		return subcommands.ExitUsageError
	}

	e, err := openEnv(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	svc := app.NewServices(e.cfg, e.db.Pool)
	if !svc.SEC.Enabled() {
		fmt.Fprintln(os.Stderr, "Error: SEC_API_KEY is required")
		return subcommands.ExitFailure
	}

	if c.projID != "" {
		n, err := svc.SECImport.ImportHoldings(ctx, c.projID, c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printJSON(map[string]any{"proj_id": c.projID, "holdings": n})
		return subcommands.ExitSuccess
	}

	res, err := svc.SECImport.ImportProfiles(ctx, c.maxPages, c.dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printJSON(res)
	return subcommands.ExitSuccess
}

type uploadLogosCmd struct {
	faviconURL string
}

func (*uploadLogosCmd) Name() string     { return "upload-logos" }
func (*uploadLogosCmd) Synopsis() string { return "copy fund issuer logos into object storage" }
func (*uploadLogosCmd) Usage() string {
	return `fundctl upload-logos [-favicon-url URL]

  Downloads each issuer's favicon and stores it as <issuer>.png in LOGO_BUCKET.
  S3_ENDPOINT selects an S3-compatible store such as MinIO.
`
}

func (c *uploadLogosCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.faviconURL, "favicon-url", storage.DefaultFaviconURL, "favicon service base URL")
}

func (c *uploadLogosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          e.cfg.LogoBucket,
		Endpoint:        e.cfg.S3Endpoint,
		Region:          e.cfg.S3Region,
		AccessKeyID:     e.cfg.S3AccessKeyID,
		SecretAccessKey: e.cfg.S3SecretAccessKey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.EnsureBucket(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	uploaded, failed := storage.NewLogoUploader(store, c.faviconURL, e.cfg.UpstreamTimeout).UploadAll(ctx)
	log.Infof("uploaded %d logos, %d failed", len(uploaded), len(failed))
	printJSON(map[string][]string{"uploaded": uploaded, "failed": failed})
	if len(failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type migrateCmd struct {
	printOnly bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the database schema" }
func (*migrateCmd) Usage() string {
	return `fundctl migrate [-print]

  Applies the embedded schema. Every statement is idempotent.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.printOnly, "print", false, "print the schema instead of applying it")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.printOnly {
		fmt.Print(database.Schema())
		return subcommands.ExitSuccess
	}

	e, err := openEnv(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	if err := e.db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
