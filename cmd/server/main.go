package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/revops/revenue-sync-service/internal/precedence"
	syncRunProvider "github.com/revops/revenue-sync-service/internal/syncrun/provider"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/managers"
)

func main() {
	rssHome := getRSSHome()
	const configFile = "/repository/conf/deployment.yaml"

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	rssConfig, err := config.LoadConfig(rssHome, configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.InitializeRSSRuntime(rssHome, rssConfig); err != nil {
		stdlog.Fatalf("Failed to initialize runtime: %v", err)
	}
	if err := log.Init(rssConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	loadPrecedenceTable(rssHome, rssConfig)
	startReaper(rssConfig)

	serverAddr := fmt.Sprintf("%s:%d", rssConfig.Addr.Host, rssConfig.Addr.Port)
	mux := enableCORS(initMultiplexer(), rssConfig.Auth.CORSAllowedOrigins)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.Error(err))
	}
	logger.Info("Revenue sync service started on " + serverAddr)

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

func loadPrecedenceTable(rssHome string, cfg *config.Config) {

	logger := log.GetLogger()
	path := cfg.Merge.PrecedenceFile
	if path == "" {
		logger.Info("No precedence file configured, using built-in source precedence")
		return
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rssHome, path)
	}
	table, err := precedence.Load(path)
	if err != nil {
		logger.Fatal("Failed to load precedence table", log.String("path", path), log.Error(err))
	}
	precedence.Install(table)
	logger.Info("Loaded source precedence table", log.Int("version", table.Version))
}

// startReaper periodically fails active runs whose invocation died without
// reaching a terminal status.
func startReaper(cfg *config.Config) {

	interval := time.Duration(cfg.Reaper.IntervalMins) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			syncRunService := syncRunProvider.NewSyncRunProvider().GetSyncRunService()
			if _, err := syncRunService.ReapStale(); err != nil {
				log.GetLogger().Error("Stale run reaping failed", log.Error(err))
			}
		}
	}()
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		log.GetLogger().Fatal("Failed to register services", log.Error(err))
	}
	return mux
}

func enableCORS(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := "*"
	if len(allowedOrigins) > 0 {
		allowed = strings.Join(allowedOrigins, ", ")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getRSSHome() string {

	projectHomeFlag := flag.String("rssHome", "", "Path to revenue sync service home directory")
	flag.Parse()
	if *projectHomeFlag != "" {
		return *projectHomeFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		stdlog.Fatalf("Failed to get current working directory: %v", err)
	}
	return dir
}
