// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

// Package waxd runs a node behind the REST API until it is told to stop.
package waxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/algorand/go-deadlock"
	"golang.org/x/sync/errgroup"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/daemon/waxd/api"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/node"
)

// maxHeaderBytes must have enough room to hold an api token
const maxHeaderBytes = 4096

const shutdownTimeout = 5 * time.Second

// Files written next to the data while the server runs.
const (
	PIDFilename = "waxd.pid"
	NetFilename = "waxd.net"
)

// Server represents an instance of the REST API HTTP server
type Server struct {
	RootPath string
	Genesis  bookkeeping.Genesis

	pidFile   string
	netFile   string
	log       logging.Logger
	logOutput io.Closer
	node      *node.WaxNode
	server    http.Server
	stopping  chan struct{}

	stoppingOnce sync.Once
	stopOnce     sync.Once
}

// Initialize sets up logging and opens the node.
func (s *Server) Initialize(cfg config.Local) error {
	s.log = logging.Base()

	var logWriter io.Writer = os.Stderr
	if cfg.LogFile != "" {
		liveLog := cfg.LogFile
		if !filepath.IsAbs(liveLog) {
			liveLog = filepath.Join(s.RootPath, liveLog)
		}
		fmt.Println("Logging to: ", liveLog)
		out := logging.MakeRotatingFileOutput(logging.RotatingFileConfig{
			Filename:   liveLog,
			MaxSizeMB:  cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			Compress:   true,
		})
		s.logOutput = out
		logWriter = out
	}
	s.log.SetOutput(logWriter)
	if cfg.LogJSON {
		s.log.SetJSONFormatter()
	}
	s.log.SetLevel(logging.Level(cfg.BaseLoggerDebugLevel))
	setupDeadlockLogger(s.log)

	// configure the deadlock detector library
	switch {
	case cfg.DeadlockDetection > 0:
		deadlock.Opts.Disable = false
	case cfg.DeadlockDetection < 0:
		deadlock.Opts.Disable = true
	}
	if !deadlock.Opts.Disable && cfg.DeadlockDetectionThreshold > 0 {
		deadlock.Opts.DeadlockTimeout = time.Second * time.Duration(cfg.DeadlockDetectionThreshold)
	}

	s.log.Infoln("++++++++++++++++++++++++++++++++++++++++")
	s.log.Infof("Logging Starting: waxd %s", config.GetCurrentVersion())
	s.log.Infoln("++++++++++++++++++++++++++++++++++++++++")

	n, err := node.MakeNode(s.log, s.RootPath, cfg, s.Genesis)
	if os.IsNotExist(err) {
		return fmt.Errorf("node has not been installed: %s", err)
	}
	if err != nil {
		return fmt.Errorf("couldn't initialize the node: %w", err)
	}
	s.node = n
	s.stopping = make(chan struct{})

	// When a caller to logging uses Fatal, we want to stop the node before os.Exit is called.
	logging.RegisterExitHandler(s.Stop)
	return nil
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	signal.Ignore(syscall.SIGHUP)
	return s.Run(ctx)
}

// Run serves the REST API until ctx is done or the listener fails, then
// shuts the server down and closes the node.
func (s *Server) Run(ctx context.Context) error {
	defer s.Stop()

	cfg := s.node.Config()
	addr := cfg.EndpointAddress
	if addr == "" {
		addr = ":http"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not start node: %w", err)
	}
	addr = listener.Addr().String()

	e := api.NewRouter(s.log, s.node, s.stopping, cfg.APIToken, cfg.EnableMetrics)
	s.server = http.Server{
		Addr:           addr,
		Handler:        e,
		MaxHeaderBytes: maxHeaderBytes,
	}

	// Set up files for our PID and our listening address before serving,
	// so anyone waiting on them knows the API is reachable.
	s.pidFile = filepath.Join(s.RootPath, PIDFilename)
	s.netFile = filepath.Join(s.RootPath, NetFilename)
	if err = os.WriteFile(s.pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		listener.Close()
		return fmt.Errorf("pidfile error: %w", err)
	}
	if err = os.WriteFile(s.netFile, []byte(fmt.Sprintf("%s\n", addr)), 0644); err != nil {
		listener.Close()
		return fmt.Errorf("netfile error: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		s.signalStopping()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	s.log.Infof("waxd running and accepting requests over HTTP on %v", addr)
	err = g.Wait()
	if err != nil {
		s.log.Warn(err)
	} else {
		s.log.Info("waxd exited successfully")
	}
	return err
}

// signalStopping closes s.stopping, which tells the rest api router that
// pending commands should be aborted.
func (s *Server) signalStopping() {
	s.stoppingOnce.Do(func() { close(s.stopping) })
}

// Stop closes the node and removes the pid and net files. It is safe to
// call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.stopping != nil {
			s.signalStopping()
		}
		if s.node != nil {
			if err := s.node.Close(); err != nil {
				s.log.Error(err)
			}
		}
		if s.pidFile != "" {
			os.Remove(s.pidFile)
		}
		if s.netFile != "" {
			os.Remove(s.netFile)
		}
		if s.logOutput != nil {
			s.logOutput.Close()
		}
	})
}
