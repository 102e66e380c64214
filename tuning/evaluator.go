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

package tuning

import (
	"fmt"
	"math"
	"sort"

	"github.com/navdeep-G/the-r-in-spark/dataset"
)

// Evaluator scores a transformed dataset against ground truth.
// IsLargerBetter fixes the comparison direction used when selecting
// the winning grid combination.
type Evaluator interface {
	Name() string
	IsLargerBetter() bool
	Evaluate(ds dataset.Dataset) (float64, error)
}

const (
	MetricAccuracy     = "accuracy"
	MetricAreaUnderROC = "areaUnderROC"
	MetricRMSE         = "rmse"
	MetricMAE          = "mae"
)

// NewEvaluator maps a metric name to a ready-to-use evaluator with
// conventional column names.
func NewEvaluator(metric string) (Evaluator, error) {
	switch metric {
	case MetricAccuracy, MetricAreaUnderROC:
		return &BinaryClassificationEvaluator{
			LabelCol:       "label",
			PredictionCol:  "prediction",
			ProbabilityCol: "probability",
			Metric:         metric,
		}, nil
	case MetricRMSE, MetricMAE:
		return &RegressionEvaluator{
			LabelCol:      "label",
			PredictionCol: "prediction",
			Metric:        metric,
		}, nil
	}
	return nil, fmt.Errorf("unknown evaluation metric %q", metric)
}

// ---------------------------------------------

// BinaryClassificationEvaluator scores 0/1 classification output.
type BinaryClassificationEvaluator struct {
	LabelCol       string
	PredictionCol  string
	ProbabilityCol string
	Metric         string
}

func (ev *BinaryClassificationEvaluator) Name() string {
	return ev.Metric
}

func (ev *BinaryClassificationEvaluator) IsLargerBetter() bool {
	return true
}

func (ev *BinaryClassificationEvaluator) Evaluate(ds dataset.Dataset) (float64, error) {
	labels, err := ds.Numeric(ev.LabelCol)
	if err != nil {
		return 0, err
	}
	if ds.Len() == 0 {
		return 0, fmt.Errorf("cannot evaluate %s on an empty dataset", ev.Metric)
	}
	switch ev.Metric {
	case MetricAccuracy:
		preds, err := ds.Numeric(ev.PredictionCol)
		if err != nil {
			return 0, err
		}
		numCorrect := 0
		for i, v := range labels {
			if v == preds[i] {
				numCorrect++
			}
		}
		return float64(numCorrect) / float64(len(labels)), nil
	case MetricAreaUnderROC:
		scores, err := ds.Numeric(ev.ProbabilityCol)
		if err != nil {
			return 0, err
		}
		return areaUnderROC(labels, scores)
	}
	return 0, fmt.Errorf("unknown classification metric %q", ev.Metric)
}

// areaUnderROC computes AUC via the rank-sum (Mann-Whitney)
// formulation with midrank tie handling.
func areaUnderROC(labels, scores []float64) (float64, error) {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return scores[idx[a]] < scores[idx[b]]
	})
	ranks := make([]float64, len(scores))
	for i := 0; i < len(idx); {
		j := i
		for j < len(idx) && scores[idx[j]] == scores[idx[i]] {
			j++
		}
		midrank := float64(i+j+1) / 2 // 1-based
		for k := i; k < j; k++ {
			ranks[idx[k]] = midrank
		}
		i = j
	}
	numPos, numNeg := 0.0, 0.0
	posRankSum := 0.0
	for i, v := range labels {
		if v == 1 {
			numPos++
			posRankSum += ranks[i]

		} else {
			numNeg++
		}
	}
	if numPos == 0 || numNeg == 0 {
		return 0, fmt.Errorf("areaUnderROC undefined: held-out data contains a single class")
	}
	return (posRankSum - numPos*(numPos+1)/2) / (numPos * numNeg), nil
}

// ---------------------------------------------

// RegressionEvaluator scores numeric predictions; lower is better.
type RegressionEvaluator struct {
	LabelCol      string
	PredictionCol string
	Metric        string
}

func (ev *RegressionEvaluator) Name() string {
	return ev.Metric
}

func (ev *RegressionEvaluator) IsLargerBetter() bool {
	return false
}

func (ev *RegressionEvaluator) Evaluate(ds dataset.Dataset) (float64, error) {
	labels, err := ds.Numeric(ev.LabelCol)
	if err != nil {
		return 0, err
	}
	preds, err := ds.Numeric(ev.PredictionCol)
	if err != nil {
		return 0, err
	}
	if ds.Len() == 0 {
		return 0, fmt.Errorf("cannot evaluate %s on an empty dataset", ev.Metric)
	}
	sum := 0.0
	for i, v := range labels {
		diff := v - preds[i]
		switch ev.Metric {
		case MetricRMSE:
			sum += diff * diff
		case MetricMAE:
			sum += math.Abs(diff)
		default:
			return 0, fmt.Errorf("unknown regression metric %q", ev.Metric)
		}
	}
	mean := sum / float64(len(labels))
	if ev.Metric == MetricRMSE {
		return math.Sqrt(mean), nil
	}
	return mean, nil
}
