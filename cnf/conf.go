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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerReadTimeoutSecs  = 30
	dfltServerWriteTimeoutSecs = 30
	dfltListenAddress          = "127.0.0.1"
	dfltListenPort             = 8080
	dfltNumFolds               = 3
	dfltTuningSeed             = 42
	dfltTuningMetric           = "accuracy"
)

// ModelConf describes a single fitted bundle the scoring server
// should load and expose under its name.
type ModelConf struct {
	Name       string `json:"name"`
	BundlePath string `json:"bundlePath"`
	Disabled   bool   `json:"disabled"`
}

// TuningConf provides defaults for cross-validation runs. Individual
// values can be overridden by CLI flags.
type TuningConf struct {
	NumFolds    int    `json:"numFolds"`
	Seed        int64  `json:"seed"`
	Parallelism int    `json:"parallelism"`
	Metric      string `json:"metric"`
}

type Conf struct {
	srcPath                string
	Logging                logging.LoggingConf `json:"logging"`
	ListenAddress          string              `json:"listenAddress"`
	ListenPort             int                 `json:"listenPort"`
	ServerReadTimeoutSecs  int                 `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                 `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string            `json:"corsAllowedOrigins"`
	Models                 []ModelConf         `json:"models"`
	RunStorePath           string              `json:"runStorePath"`
	Tuning                 TuningConf          `json:"tuning"`
}

func (conf *Conf) GetSourcePath() string {
	return conf.srcPath
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.ListenAddress == "" {
		conf.ListenAddress = dfltListenAddress
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.Tuning.NumFolds == 0 {
		conf.Tuning.NumFolds = dfltNumFolds
		log.Warn().Msgf("tuning.numFolds not specified, using default: %d", dfltNumFolds)
	}
	if conf.Tuning.Seed == 0 {
		conf.Tuning.Seed = dfltTuningSeed
	}
	if conf.Tuning.Metric == "" {
		conf.Tuning.Metric = dfltTuningMetric
	}

	seen := make(map[string]bool)
	for _, m := range conf.Models {
		if m.Name == "" || m.BundlePath == "" {
			log.Fatal().Msg("each model entry requires both name and bundlePath")
		}
		if seen[m.Name] {
			log.Fatal().Msg(fmt.Sprintf("duplicate model name: %s", m.Name))
		}
		seen[m.Name] = true
	}
}
