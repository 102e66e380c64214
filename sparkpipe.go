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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/navdeep-G/the-r-in-spark/apiserver"
	"github.com/navdeep-G/the-r-in-spark/cnf"
)

const (
	actionFit     = "fit"
	actionTune    = "tune"
	actionScore   = "score"
	actionServe   = "serve"
	actionREPL    = "repl"
	actionRuns    = "runs"
	actionVersion = "version"
	actionHelp    = "help"

	exitErrorGeneralFailure = iota
	exitErrorInvalidArgs
	exitErrorDataLoadFailed
	exitErrorFitFailed
	exitErrorTuneFailed
	exitErrorScoreFailed
	exitErrorBundleFailed
	exitErrorRunStoreFailed
)

var (
	version   string
	buildDate string
	gitCommit string
)

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "SPARKPIPE - an ML pipeline fitting and scoring tool\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\tfit a pipeline and save the fitted bundle\n", actionFit)
	fmt.Fprintf(os.Stderr, "\t%s\t\tgrid-search hyperparameters via cross-validation\n", actionTune)
	fmt.Fprintf(os.Stderr, "\t%s\t\tscore a dataset with a saved bundle\n", actionScore)
	fmt.Fprintf(os.Stderr, "\t%s\t\trun the scoring HTTP API server\n", actionServe)
	fmt.Fprintf(os.Stderr, "\t%s\t\tscore ad-hoc records interactively\n", actionREPL)
	fmt.Fprintf(os.Stderr, "\t%s\t\tlist or inspect recorded tuning runs\n", actionRuns)
	fmt.Fprintf(os.Stderr, "\t%s\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\nUse `sparkpipe help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func runActionVersion(ver apiserver.VersionInfo) {
	fmt.Fprintln(os.Stderr, "sparkpipe version: ", ver)
}

func main() {
	version := apiserver.VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdFit := flag.NewFlagSet(actionFit, flag.ExitOnError)
	fitSQLQuery := cmdFit.String("sql-query", "", "if set, the DATA argument is an SQL DSN and rows are fetched with this query")
	fitSQLDriver := cmdFit.String("sql-driver", "sqlite3", "SQL driver to use with -sql-query (sqlite3 or mysql)")
	fitHoldout := cmdFit.Float64("holdout", 0, "fraction of rows kept aside for a held-out score (0 disables)")
	fitMetric := cmdFit.String("metric", "accuracy", "metric reported on the held-out rows")
	fitSeed := cmdFit.Int64("seed", 42, "seed for the train/holdout split")
	cmdFit.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] pipeline.json DATA out-bundle\n",
			filepath.Base(os.Args[0]), actionFit)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdFit.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nFit the pipeline on DATA (a CSV file unless -sql-query is set)\nand save the fitted model as a bundle directory.\n")
	}

	cmdTune := flag.NewFlagSet(actionTune, flag.ExitOnError)
	tuneFolds := cmdTune.Int("folds", 0, "number of cross-validation folds (overrides config)")
	tuneSeed := cmdTune.Int64("seed", 0, "seed for fold assignment (overrides config)")
	tuneMetric := cmdTune.String("metric", "", "evaluation metric: accuracy, areaUnderROC, rmse, mae (overrides config)")
	tuneParallel := cmdTune.Int("parallelism", 0, "max number of concurrent trials (overrides config)")
	tuneSQLQuery := cmdTune.String("sql-query", "", "if set, the DATA argument is an SQL DSN and rows are fetched with this query")
	tuneSQLDriver := cmdTune.String("sql-driver", "sqlite3", "SQL driver to use with -sql-query (sqlite3 or mysql)")
	cmdTune.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json pipeline.json grid.json DATA out-bundle\n",
			filepath.Base(os.Args[0]), actionTune)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdTune.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nGrid-search the pipeline's hyperparameters with k-fold\ncross-validation, refit the winner on all rows and save it.\n")
	}

	cmdScore := flag.NewFlagSet(actionScore, flag.ExitOnError)
	scoreOutput := cmdScore.String("output", "", "write the scored dataset to this CSV file instead of stdout")
	cmdScore.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] bundle data.csv\n",
			filepath.Base(os.Args[0]), actionScore)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdScore.PrintDefaults()
	}

	cmdServe := flag.NewFlagSet(actionServe, flag.ExitOnError)
	cmdServe.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json\n",
			filepath.Base(os.Args[0]), actionServe)
	}

	cmdREPL := flag.NewFlagSet(actionREPL, flag.ExitOnError)
	cmdREPL.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s bundle\n",
			filepath.Base(os.Args[0]), actionREPL)
	}

	cmdRuns := flag.NewFlagSet(actionRuns, flag.ExitOnError)
	cmdRuns.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json [RUN_ID]\n",
			filepath.Base(os.Args[0]), actionRuns)
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)
	cmdHelp.Usage = func() {
		cmdHelp.PrintDefaults()
	}

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		if subj == "" {
			topLevelUsage()
			return
		}
		switch subj {
		case actionFit:
			cmdFit.Usage()
		case actionTune:
			cmdTune.Usage()
		case actionScore:
			cmdScore.Usage()
		case actionServe:
			cmdServe.Usage()
		case actionREPL:
			cmdREPL.Usage()
		case actionRuns:
			cmdRuns.Usage()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionFit:
		cmdFit.Parse(os.Args[2:])
		if cmdFit.NArg() != 3 {
			cmdFit.Usage()
			os.Exit(exitErrorInvalidArgs)
		}
		runActionFit(
			cmdFit.Arg(0), cmdFit.Arg(1), cmdFit.Arg(2),
			*fitSQLDriver, *fitSQLQuery,
			*fitHoldout, *fitMetric, *fitSeed,
		)
	case actionTune:
		cmdTune.Parse(os.Args[2:])
		if cmdTune.NArg() != 5 {
			cmdTune.Usage()
			os.Exit(exitErrorInvalidArgs)
		}
		conf := setup(cmdTune.Arg(0))
		if *tuneFolds > 0 {
			conf.Tuning.NumFolds = *tuneFolds
		}
		if *tuneSeed != 0 {
			conf.Tuning.Seed = *tuneSeed
		}
		if *tuneMetric != "" {
			conf.Tuning.Metric = *tuneMetric
		}
		if *tuneParallel > 0 {
			conf.Tuning.Parallelism = *tuneParallel
		}
		runActionTune(
			conf,
			cmdTune.Arg(1), cmdTune.Arg(2), cmdTune.Arg(3), cmdTune.Arg(4),
			*tuneSQLDriver, *tuneSQLQuery,
		)
	case actionScore:
		cmdScore.Parse(os.Args[2:])
		if cmdScore.NArg() != 2 {
			cmdScore.Usage()
			os.Exit(exitErrorInvalidArgs)
		}
		runActionScore(cmdScore.Arg(0), cmdScore.Arg(1), *scoreOutput)
	case actionServe:
		cmdServe.Parse(os.Args[2:])
		conf := setup(cmdServe.Arg(0))
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		apiserver.Run(ctx, conf, version)
	case actionREPL:
		cmdREPL.Parse(os.Args[2:])
		if cmdREPL.NArg() != 1 {
			cmdREPL.Usage()
			os.Exit(exitErrorInvalidArgs)
		}
		runActionREPL(cmdREPL.Arg(0))
	case actionRuns:
		cmdRuns.Parse(os.Args[2:])
		if cmdRuns.NArg() < 1 {
			cmdRuns.Usage()
			os.Exit(exitErrorInvalidArgs)
		}
		conf := setup(cmdRuns.Arg(0))
		runActionRuns(conf, cmdRuns.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information")
	}

}
