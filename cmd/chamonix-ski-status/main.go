package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	_ "modernc.org/sqlite"

	"github.com/patcharlton/chamonix-ski-status/internal/api"
	"github.com/patcharlton/chamonix-ski-status/internal/ingest"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

var cli struct {
	DB           string `help:"Path to the SQLite database." default:"data/skistatus.db" env:"DB_PATH"`
	Port         string `help:"HTTP listen port." default:"8080" env:"PORT"`
	UpdateSecret string `help:"Bearer token the scraper must present on pushes." env:"UPDATE_SECRET"`

	UpstreamURL string `help:"Scraper URL to poll. Empty means push-only." env:"UPSTREAM_URL"`
	NoPoll      bool   `help:"Disable the scheduler entirely (server only, for local dev)."`
	Once        bool   `help:"Run one ingest cycle and exit."`

	BulletinHost   string `help:"FTP host for the avalanche bulletin." env:"BULLETIN_HOST"`
	BulletinFile   string `help:"Bulletin file path on the FTP server." env:"BULLETIN_FILE"`
	BulletinMassif string `help:"Massif the bulletin must cover." env:"BULLETIN_MASSIF"`
	NoBulletin     bool   `help:"Disable the avalanche bulletin fetch."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("chamonix-ski-status"),
		kong.Description("Chamonix valley ski conditions dashboard."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	if cli.UpdateSecret == "" {
		log.Println("warning: UPDATE_SECRET not set, scraper pushes will be rejected")
	}

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	pipeline := ingest.NewPipeline(st)
	scheduler := ingest.NewScheduler(st, pipeline)
	if cli.UpstreamURL != "" {
		scheduler.SetUpstreamClient(ingest.NewUpstreamClient(cli.UpstreamURL, nil))
	}
	if !cli.NoBulletin {
		scheduler.SetBulletinClient(ingest.NewBulletinClient(cli.BulletinHost, cli.BulletinFile, cli.BulletinMassif))
	}

	server := api.NewServer(st, cli.Port, cli.UpdateSecret)

	if cli.Once {
		log.Println("running single ingest cycle")
		if err := scheduler.IngestOnce(); err != nil {
			log.Fatalf("ingest: %v", err)
		}
		log.Println("done")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !cli.NoPoll {
		go scheduler.Run(ctx)
	} else {
		log.Println("scheduler disabled (--no-poll)")
	}

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
