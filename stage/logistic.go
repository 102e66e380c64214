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

package stage

import (
	"context"
	"fmt"
	"math"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

const KindLogisticRegression = "logistic_regression"

func init() {
	register(
		KindLogisticRegression,
		ParamSchema{
			{Name: "featuresCol", Type: StringParam, Default: "features", Role: RoleInput},
			{Name: "labelCol", Type: StringParam, Default: "label", Role: RoleInput},
			{Name: "predictionCol", Type: StringParam, Default: "prediction", Role: RoleOutput},
			{Name: "probabilityCol", Type: StringParam, Default: "probability", Role: RoleOutput},
			{Name: "maxIter", Type: IntParam, Default: 100, Tunable: true},
			{Name: "stepSize", Type: FloatParam, Default: 0.1, Tunable: true},
			{Name: "tol", Type: FloatParam, Default: 1e-6, Tunable: true},
			{Name: "regParam", Type: FloatParam, Default: 0.0, Tunable: true},
			{Name: "elasticNetParam", Type: FloatParam, Default: 0.0, Tunable: true},
		},
		func(b base) (Stage, error) {
			return &LogisticRegression{base: b, solver: gradientDescentSolver{}}, nil
		},
	)
}

// solver finds coefficients minimizing regularized logistic loss.
// It is pluggable so alternative optimizers can be swapped in
// without touching the stage contract.
type solver interface {
	Solve(ctx context.Context, X [][]float64, y []float64, opts solverOpts) (weights []float64, intercept float64, err error)
}

type solverOpts struct {
	MaxIter         int
	StepSize        float64
	Tol             float64
	RegParam        float64
	ElasticNetParam float64
}

// LogisticRegression fits a binary classifier with elastic-net
// regularization (elasticNetParam mixes L1 against L2, regParam is
// the overall strength).
type LogisticRegression struct {
	base
	solver solver
}

func (lr *LogisticRegression) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	X, err := ds.Vectors(lr.params.String("featuresCol"))
	if err != nil {
		return nil, err
	}
	y, err := ds.Numeric(lr.params.String("labelCol"))
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: lr.uid, Reason: "empty dataset"}
	}
	numPositive := 0
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf(
				"%s: label column %s must contain only 0/1 values (got %v)",
				lr.uid, lr.params.String("labelCol"), v)
		}
		if v == 1 {
			numPositive++
		}
	}
	if numPositive == 0 || numPositive == len(y) {
		return nil, &InsufficientDataError{
			UID: lr.uid, Reason: "training data contains a single class only"}
	}
	dims := len(X[0])
	for i, v := range X {
		if len(v) != dims {
			return nil, &dataset.DimensionMismatchError{
				Column: lr.params.String("featuresCol"), Row: i, Want: dims, Got: len(v)}
		}
	}
	weights, intercept, err := lr.solver.Solve(ctx, X, y, solverOpts{
		MaxIter:         lr.params.Int("maxIter"),
		StepSize:        lr.params.Float("stepSize"),
		Tol:             lr.params.Float("tol"),
		RegParam:        lr.params.Float("regParam"),
		ElasticNetParam: lr.params.Float("elasticNetParam"),
	})
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("stage", lr.uid).
		Int("dataSize", len(y)).
		Int("numPositive", numPositive).
		Msg("fitted logistic regression")
	return &LogisticRegressionModel{base: lr.base, weights: weights, intercept: intercept}, nil
}

// ---------------------------------------------

// gradientDescentSolver is a plain full-batch gradient descent with
// an L1 subgradient for the elastic-net penalty.
type gradientDescentSolver struct{}

func (gd gradientDescentSolver) Solve(
	ctx context.Context,
	X [][]float64,
	y []float64,
	opts solverOpts,
) ([]float64, float64, error) {
	n := float64(len(y))
	dims := len(X[0])
	w := make([]float64, dims)
	b := 0.0
	grad := make([]float64, dims)
	prevLoss := math.Inf(1)

	for iter := 0; iter < opts.MaxIter; iter++ {
		if iter%10 == 0 && ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		for j := range grad {
			grad[j] = 0
		}
		gradB := 0.0
		loss := 0.0
		for i, row := range X {
			p := sigmoid(floats.Dot(w, row) + b)
			diff := p - y[i]
			floats.AddScaled(grad, diff, row)
			gradB += diff
			// clamped log-loss, numerically safe around p in {0,1}
			loss -= y[i]*math.Log(math.Max(p, 1e-15)) +
				(1-y[i])*math.Log(math.Max(1-p, 1e-15))
		}
		loss /= n
		for j := range grad {
			grad[j] = grad[j]/n +
				opts.RegParam*(opts.ElasticNetParam*sign(w[j])+(1-opts.ElasticNetParam)*w[j])
			loss += opts.RegParam * (opts.ElasticNetParam*math.Abs(w[j]) +
				(1-opts.ElasticNetParam)*0.5*w[j]*w[j])
		}
		floats.AddScaled(w, -opts.StepSize, grad)
		b -= opts.StepSize * gradB / n
		if math.Abs(prevLoss-loss) < opts.Tol {
			break
		}
		prevLoss = loss
	}
	return w, b, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// ---------------------------------------------

// LogisticRegressionModel is the fitted counterpart of
// LogisticRegression. It emits a prediction column and a probability
// column.
type LogisticRegressionModel struct {
	base
	weights   []float64
	intercept float64
}

// Weights returns the learned coefficient vector.
func (m *LogisticRegressionModel) Weights() []float64 {
	ans := make([]float64, len(m.weights))
	copy(ans, m.weights)
	return ans
}

func (m *LogisticRegressionModel) Intercept() float64 {
	return m.intercept
}

func (m *LogisticRegressionModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	featuresCol := m.params.String("featuresCol")
	X, err := ds.Vectors(featuresCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	probs := make([]float64, len(X))
	preds := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.weights) {
			return dataset.Dataset{}, &dataset.DimensionMismatchError{
				Column: featuresCol, Row: i, Want: len(m.weights), Got: len(row)}
		}
		p := sigmoid(floats.Dot(m.weights, row) + m.intercept)
		probs[i] = p
		if p >= 0.5 {
			preds[i] = 1
		}
	}
	ds = ds.WithNumeric(m.params.String("probabilityCol"), probs)
	return ds.WithNumeric(m.params.String("predictionCol"), preds), nil
}
