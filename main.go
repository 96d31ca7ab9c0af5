package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"p9e.in/challan/config"
	"p9e.in/challan/handlers"
	"p9e.in/challan/middleware"
	"p9e.in/challan/pkg/mailer"
	"p9e.in/challan/pkg/tasks"
	"p9e.in/challan/routes"
	"p9e.in/challan/utils"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if cfg.CameraAPIKey == "" {
		log.Fatal("CAMERA_API_KEY must be set")
	}

	db, err := config.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.Migrations(db); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}
	if err := config.Seed(db, cfg); err != nil {
		log.Fatalf("Could not seed database: %v", err)
	}

	var zones *utils.ZoneSet
	if cfg.ZonesFile != "" {
		zones, err = utils.LoadZones(cfg.ZonesFile)
		if err != nil {
			log.Fatalf("Could not load enforcement zones: %v", err)
		}
		log.Infof("Loaded %d enforcement zones", zones.Len())
	}

	runner := tasks.NewRunner(2, 64)
	defer runner.Close()

	auth := middleware.NewAuth(cfg.JWTSecret)
	mail := mailer.New(cfg.MailAPIURL, cfg.MailAPIKey)

	h := handlers.New(cfg, db, auth, mail, runner, zones)
	handler := enableCORS(routes.RegisterRoutes(h, cfg.UploadDir))

	log.Infof("Server starting at port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
