// Command skiff deploys a containerized static web service: it builds the
// image, replaces any prior instance, starts a fresh one, and waits for it to
// report healthy.
//
// Usage:
//
//	skiff [build|deploy|stop|logs|clean|serve]
//
// deploy is the default when no subcommand is given. The deployment target is
// fixed at startup; SKIFF_* environment variables override the defaults.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/skiff-deploy/skiff/internal/adapters/builder"
	"github.com/skiff-deploy/skiff/internal/adapters/docker"
	httpapi "github.com/skiff-deploy/skiff/internal/adapters/http"
	"github.com/skiff-deploy/skiff/internal/config"
	"github.com/skiff-deploy/skiff/internal/core/services"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run dispatches the subcommand and returns the process exit code. Validation
// happens before any runtime adapter is touched: an unrecognized subcommand
// never reaches the daemon.
func run(ctx context.Context, args []string) int {
	command := "deploy"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "build", "deploy", "stop", "logs", "clean", "serve":
	default:
		printUsage()
		return 1
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "skiff: %v\n", err)
		return 1
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	runtime, err := docker.NewAdapter()
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	imageBuilder, err := builder.NewAdapter()
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	deployer := services.NewDeployer(cfg.Target, runtime, imageBuilder)

	switch command {
	case "build":
		if err := runtime.Ping(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		if err := deployer.Build(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
	case "deploy":
		if _, err := deployer.Deploy(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
	case "stop":
		if err := runtime.Ping(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		if err := deployer.Stop(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
	case "logs":
		if err := runtime.Ping(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		logs, err := deployer.Logs(ctx, true)
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		defer logs.Close()
		if _, err := io.Copy(os.Stdout, logs); err != nil && ctx.Err() == nil {
			log.Errorf("read logs: %v", err)
			return 1
		}
	case "clean":
		if err := runtime.Ping(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		if err := deployer.Clean(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
	case "serve":
		return serve(ctx, cfg.ListenAddr, deployer)
	}
	return 0
}

// serve runs the deployment control API until ctx is cancelled.
func serve(ctx context.Context, addr string, deployer *services.Deployer) int {
	app := httpapi.NewApp(httpapi.NewDeployHandler(deployer))

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	log.Infof("control api listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Errorf("control api: %v", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println(`Usage: skiff [command]

Commands:
  build    build the service image
  deploy   build, replace and start the service, wait for health (default)
  stop     stop the running service container
  logs     follow the service container logs
  clean    remove the service container and image
  serve    run the deployment control API
  help     show this help

Environment:
  SKIFF_PROJECT, SKIFF_IMAGE, SKIFF_CONTAINER, SKIFF_SOURCE,
  SKIFF_HOST_PORT, SKIFF_LISTEN, SKIFF_LOG_LEVEL`)
}
