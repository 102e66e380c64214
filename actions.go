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
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/navdeep-G/the-r-in-spark/bundle"
	"github.com/navdeep-G/the-r-in-spark/cnf"
	"github.com/navdeep-G/the-r-in-spark/dataimport"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/runstore"
	"github.com/navdeep-G/the-r-in-spark/scoring"
	"github.com/navdeep-G/the-r-in-spark/tuning"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

const (
	errColor = color.FgHiRed
)

func loadData(ctx context.Context, path, sqlDriver, sqlQuery string) (dataset.Dataset, error) {
	if sqlQuery != "" {
		return dataimport.LoadSQL(ctx, sqlDriver, path, sqlQuery)
	}
	return dataimport.LoadCSV(path)
}

func runActionFit(
	pipelinePath, dataPath, bundlePath string,
	sqlDriver, sqlQuery string,
	holdout float64, metric string, seed int64,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.BuildFromFile(pipelinePath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	ds, err := loadData(ctx, dataPath, sqlDriver, sqlQuery)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorDataLoadFailed)
	}

	trainData := ds
	var testData dataset.Dataset
	if holdout > 0 {
		trainData, testData = ds.RandomSplit(1-holdout, seed)
	}
	model, err := p.FitModel(ctx, trainData)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFitFailed)
	}
	if holdout > 0 {
		reportHoldoutScore(ctx, model, testData, metric)
	}
	if err := bundle.Save(model, bundlePath); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorBundleFailed)
	}
	fmt.Printf("fitted %d stages on %d rows, bundle saved to %s\n",
		len(model.Stages()), trainData.Len(), bundlePath)
}

func reportHoldoutScore(
	ctx context.Context,
	model *pipeline.PipelineModel,
	testData dataset.Dataset,
	metric string,
) {
	evaluator, err := tuning.NewEvaluator(metric)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	scored, err := model.Transform(ctx, testData)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFitFailed)
	}
	score, err := evaluator.Evaluate(scored)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFitFailed)
	}
	fmt.Printf("held-out %s on %d rows: %.4f\n", metric, testData.Len(), score)
}

func runActionTune(
	conf *cnf.Conf,
	pipelinePath, gridPath, dataPath, bundlePath string,
	sqlDriver, sqlQuery string,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.BuildFromFile(pipelinePath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	grid, err := tuning.GridFromFile(gridPath, p)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	evaluator, err := tuning.NewEvaluator(conf.Tuning.Metric)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorInvalidArgs)
	}
	ds, err := loadData(ctx, dataPath, sqlDriver, sqlQuery)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorDataLoadFailed)
	}

	bar := progressbar.Default(
		int64(grid.Size()*conf.Tuning.NumFolds), "running trials")
	cv := tuning.CrossValidator{
		Pipeline:    p,
		Grid:        grid,
		Evaluator:   evaluator,
		NumFolds:    conf.Tuning.NumFolds,
		Seed:        conf.Tuning.Seed,
		Parallelism: conf.Tuning.Parallelism,
		OnProgress: func(done, total int) {
			bar.Add(1)
		},
	}
	result, err := cv.Run(ctx, ds)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorTuneFailed)
	}
	printValidationReport(result)

	if err := bundle.Save(result.BestModel, bundlePath); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorBundleFailed)
	}
	fmt.Printf("best model saved to %s\n", bundlePath)

	if conf.RunStorePath != "" {
		db, err := runstore.OpenDB(conf.RunStorePath)
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorRunStoreFailed)
		}
		defer db.Close()
		run := runstore.NewRun(conf.Tuning.Metric, bundlePath, result)
		if err := db.StoreRun(run); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorRunStoreFailed)
		}
		fmt.Printf("run recorded as %s\n", run.ID)
	}
}

func printValidationReport(result *tuning.Result) {
	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	bestColor := color.New(color.FgGreen).SprintFunc()

	fmt.Println("----------------------------------------------------")
	fmt.Printf("%s (%d folds)\n", titleColor("cross-validation report"), result.NumFolds)
	for _, m := range result.Metrics {
		line := fmt.Sprintf(
			"[%d] %s: %s=%.4f", m.Combination, settingsString(m.Settings), m.Metric, m.Mean)
		if m.Combination == result.BestIndex {
			fmt.Println(bestColor(line + "  <- best"))

		} else {
			fmt.Println(line)
		}
	}
	fmt.Println("----------------------------------------------------")
}

func runActionScore(bundlePath, dataPath, outputPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := scoring.Open(bundlePath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorBundleFailed)
	}
	ds, err := dataimport.LoadCSV(dataPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorDataLoadFailed)
	}
	out, err := rt.PredictBatch(ctx, ds)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorScoreFailed)
	}

	target := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorScoreFailed)
		}
		defer f.Close()
		target = f
	}
	if err := writeCSV(target, out); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorScoreFailed)
	}
	log.Info().Int("numRows", out.Len()).Msg("scoring finished")
}

// writeCSV serializes a dataset with a header row. Vector cells are
// encoded as semicolon-joined numbers.
func writeCSV(f *os.File, ds dataset.Dataset) error {
	w := csv.NewWriter(f)
	cols := ds.Schema().Columns()
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for row := 0; row < ds.Len(); row++ {
		rec := make([]string, len(cols))
		for i, col := range cols {
			switch col.Type {
			case dataset.Numeric:
				vals, err := ds.Numeric(col.Name)
				if err != nil {
					return err
				}
				rec[i] = strconv.FormatFloat(vals[row], 'g', -1, 64)
			case dataset.String:
				vals, err := ds.Strings(col.Name)
				if err != nil {
					return err
				}
				rec[i] = vals[row]
			case dataset.Vector:
				vals, err := ds.Vectors(col.Name)
				if err != nil {
					return err
				}
				items := make([]string, len(vals[row]))
				for j, v := range vals[row] {
					items[j] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				rec[i] = strings.Join(items, ";")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runActionRuns(conf *cnf.Conf, runID string) {
	if conf.RunStorePath == "" {
		color.New(errColor).Fprintln(os.Stderr, "runStorePath not configured")
		os.Exit(exitErrorRunStoreFailed)
	}
	db, err := runstore.OpenDB(conf.RunStorePath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorRunStoreFailed)
	}
	defer db.Close()

	titleColor := color.New(color.FgHiMagenta).SprintFunc()

	if runID == "" {
		runs, err := db.ListRuns()
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorRunStoreFailed)
		}
		for _, run := range runs {
			fmt.Printf("%s  %s  metric=%s folds=%d combinations=%d bundle=%s\n",
				titleColor(run.ID), run.Created.Format("2006-01-02 15:04:05"),
				run.Metric, run.NumFolds, len(run.Report), run.BundlePath)
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
		}
		return
	}

	run, err := db.GetRun(runID)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorRunStoreFailed)
	}
	fmt.Printf("%s:\t%s\n", titleColor("Run"), run.ID)
	fmt.Printf("%s:\t%s\n", titleColor("Created"), run.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("%s:\t%s\n", titleColor("Metric"), run.Metric)
	fmt.Printf("%s:\t%d\n", titleColor("Folds"), run.NumFolds)
	fmt.Printf("%s:\t%d\n", titleColor("Seed"), run.Seed)
	fmt.Printf("%s:\t%s\n", titleColor("Bundle"), run.BundlePath)
	for _, m := range run.Report {
		marker := "  "
		if m.Combination == run.BestIndex {
			marker = "* "
		}
		fmt.Printf("%s[%d] %s: mean=%.4f folds=%v\n",
			marker, m.Combination, settingsString(m.Settings), m.Mean, m.FoldScores)
	}
}

func settingsString(settings []tuning.Setting) string {
	items := make([]string, len(settings))
	for i, s := range settings {
		items[i] = fmt.Sprintf("%s.%s=%v", s.StageRef, s.Param, s.Value)
	}
	return strings.Join(items, ", ")
}
