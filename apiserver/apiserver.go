// Copyright 2026 Navdeep Gill
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/navdeep-G/the-r-in-spark/cnf"
	"github.com/navdeep-G/the-r-in-spark/runstore"
	"github.com/navdeep-G/the-r-in-spark/scoring"
	"github.com/rs/zerolog/log"
)

// -----

type apiServer struct {
	conf    *cnf.Conf
	version VersionInfo
	server  *http.Server
	models  map[string]*scoring.Runtime
	runs    *runstore.DB
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.Logging.Level.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(corsMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	engine.GET("/version", api.handleVersion)
	engine.GET("/models", api.handleListModels)
	engine.GET("/models/:name", api.handleModelInfo)
	engine.POST("/models/:name/predict", api.handlePredict)
	engine.GET("/runs", api.handleListRuns)
	engine.GET("/runs/:id", api.handleGetRun)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down sparkpipe HTTP API server")
	return api.server.Shutdown(ctx)
}

// -------------------------

func Run(
	ctx context.Context,
	conf *cnf.Conf,
	version VersionInfo,
) {

	server := &apiServer{
		conf:    conf,
		version: version,
		models:  make(map[string]*scoring.Runtime, len(conf.Models)),
	}

	for _, mc := range conf.Models {
		if mc.Disabled {
			continue
		}
		rt, err := scoring.Open(mc.BundlePath)
		if err != nil {
			log.Fatal().Err(err).Str("bundle", mc.BundlePath).Msg("Error loading model bundle")
			return
		}
		log.Info().
			Str("name", mc.Name).
			Str("bundle", mc.BundlePath).
			Strs("inputColumns", rt.InputColumns()).
			Msg("loaded model bundle")
		server.models[mc.Name] = rt
	}

	if conf.RunStorePath != "" {
		runs, err := runstore.OpenDB(conf.RunStorePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening run store")
			return
		}
		defer runs.Close()
		server.runs = runs
	}

	services := []service{server}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
