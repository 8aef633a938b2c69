package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/neeldave10/medlaunch-data-engineer/logger"
	"github.com/pkg/errors"
)

type WebServerConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	Scheme           string `errorTxt:"scheme" mandatory:"no"`
	Addr             net.IP `errorTxt:"address" mandatory:"no"`
	Port             int    `errorTxt:"port" mandatory:"no"`
	Filter           *FilterExpiringConfig    // template config for runs launched via POST /filter.
	Export           *ExportStateCountsConfig // template config for runs launched via POST /export.
	StackDumpOnPanic bool
}

// RunWebServer starts the HTTP API and blocks until /stop is called or an
// interrupt arrives. Launched actions keep running in their goroutines while
// the server waits; shutdown gives in-flight HTTP requests a grace period.
func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log := logger.NewLogger("medlaunch", web.LogLevel, web.StackDumpOnPanic)
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	srv, chanStopServer := runServer(log, web)
	return waitForServer(log, srv, chanStopServer)
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server.
func runServer(log logger.Logger, web *WebServerConfig) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	registry := NewRunRegistry()
	// Create routes.
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/runs").HandlerFunc(GetHandlerRunList(log, registry))
	r.Path("/runs/{runId}").HandlerFunc(GetHandlerRunStatus(log, registry))
	r.Path("/filter").Methods(http.MethodPost).Headers("Content-Type", "application/json").HandlerFunc(
		GetHandlerFilterLaunch(log, registry, web.Filter))
	r.Path("/export").Methods(http.MethodPost).Headers("Content-Type", "application/json").HandlerFunc(
		GetHandlerExportLaunch(log, registry, web.Export))
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r, // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	wait := time.Second * 15                                       // duration
	ctx, cancel := context.WithTimeout(context.Background(), wait) // create a timeout to wait for.
	defer cancel()                                                 // cancel the timeout.
	err := srv.Shutdown(ctx)                                       // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
	return err
}
