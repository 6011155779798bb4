// Copyright 2026 gorse Project Authors
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

package fm

import (
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/moriaki3193/spike/base/log"
	"github.com/moriaki3193/spike/common/floats"
	"github.com/moriaki3193/spike/common/parallel"
	"github.com/moriaki3193/spike/model"
	"go.uber.org/zap"
	gonum "gonum.org/v1/gonum/floats"
)

const (
	DefaultLr         = 0.001
	DefaultInitMean   = 0.0
	DefaultInitStdDev = 0.01
)

type FitConfig struct {
	Jobs    int
	Verbose int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// FM is a second-degree factorization machine for regression. The prediction is given by
//
//	\hat y(x) = w_0 + \sum^n_{i=1} w_i x_i + \sum^n_{i=1} \sum^n_{j=i+1} <v_i, v_j> x_i x_j
//
// Hyper-parameters:
//
//	Lr          - The learning rate of SGD. Default is 0.001.
//	BiasReg     - The regularization strength of w_0. Default is 0.
//	LinearReg   - The regularization strength of w_i. Default is 0.
//	FactorReg   - The regularization strength of v_i. Default is 0.
//	InitMean    - The mean of initial random parameters. Default is 0.
//	InitStdDev  - The standard deviation of initial random parameters. Default is 0.01.
//	RandomState - The seed of the random generator. Default is 0.
//
// Fit mutates the parameters and must not run concurrently with any other
// method. Prediction methods only read the parameters.
type FM struct {
	model.BaseModel
	// Model parameters
	bias    float64     // w_0
	weights []float64   // w_i
	factors [][]float64 // v_i
	// Hyper parameters
	nFactors   int
	nDim       int
	lr         float64
	l0         float64
	l1         float64
	l2         float64
	initMean   float64
	initStdDev float64
	// Update buffers
	nextWeights []float64
	nextFactors [][]float64
	sums        []float64
}

// New creates a factorization machine with nFactors latent factors for nDim
// features, given the regularization strengths of bias (l0), linear weights (l1)
// and factors (l2).
func New(nFactors, nDim int, l0, l1, l2 float64) *FM {
	return NewWithParams(nFactors, nDim, model.Params{
		model.BiasReg:   l0,
		model.LinearReg: l1,
		model.FactorReg: l2,
	})
}

// NewWithParams creates a factorization machine from hyper-parameters. It panics
// if the shape is not positive or a regularization strength is negative.
func NewWithParams(nFactors, nDim int, params model.Params) *FM {
	if nFactors <= 0 {
		panic(fmt.Sprintf("fm: number of factors must be positive, but got %d", nFactors))
	}
	if nDim <= 0 {
		panic(fmt.Sprintf("fm: number of dimensions must be positive, but got %d", nDim))
	}
	fm := &FM{nFactors: nFactors, nDim: nDim}
	fm.SetParams(defaultParams().Overwrite(params))
	fm.lr = fm.Params.GetFloat64(model.Lr, DefaultLr)
	fm.l0 = fm.Params.GetFloat64(model.BiasReg, 0)
	fm.l1 = fm.Params.GetFloat64(model.LinearReg, 0)
	fm.l2 = fm.Params.GetFloat64(model.FactorReg, 0)
	fm.initMean = fm.Params.GetFloat64(model.InitMean, DefaultInitMean)
	fm.initStdDev = fm.Params.GetFloat64(model.InitStdDev, DefaultInitStdDev)
	if fm.lr <= 0 {
		panic(fmt.Sprintf("fm: learning rate must be positive, but got %v", fm.lr))
	}
	if fm.l0 < 0 || fm.l1 < 0 || fm.l2 < 0 {
		panic(fmt.Sprintf("fm: regularization must not be negative, but got (%v, %v, %v)", fm.l0, fm.l1, fm.l2))
	}
	fm.init()
	return fm
}

func defaultParams() model.Params {
	return model.Params{
		model.Lr:          DefaultLr,
		model.BiasReg:     0.0,
		model.LinearReg:   0.0,
		model.FactorReg:   0.0,
		model.InitMean:    DefaultInitMean,
		model.InitStdDev:  DefaultInitStdDev,
		model.RandomState: int64(0),
	}
}

// init draws small random parameters so that interactions start near zero.
func (fm *FM) init() {
	rng := fm.GetRandomGenerator()
	fm.bias = rng.NormalScalar(fm.initMean, fm.initStdDev)
	fm.weights = rng.NormalVector(fm.nDim, fm.initMean, fm.initStdDev)
	fm.factors = rng.NormalMatrix(fm.nDim, fm.nFactors, fm.initMean, fm.initStdDev)
}

func (fm *FM) NumFactors() int {
	return fm.nFactors
}

func (fm *FM) NumDim() int {
	return fm.nDim
}

// Bias returns w_0.
func (fm *FM) Bias() float64 {
	return fm.bias
}

// Weights returns a copy of w.
func (fm *FM) Weights() []float64 {
	return append([]float64(nil), fm.weights...)
}

// Factors returns a copy of v. The i-th row is the latent factor of the i-th feature.
func (fm *FM) Factors() [][]float64 {
	factors := make([][]float64, len(fm.factors))
	for i := range fm.factors {
		factors[i] = append([]float64(nil), fm.factors[i]...)
	}
	return factors
}

// PredictOne predicts the target of a dense feature vector. It panics if the
// length of x is not the number of dimensions.
func (fm *FM) PredictOne(x []float64) float64 {
	fm.checkDim(x)
	return fm.bias + fm.linear(x) + fm.interaction(x)
}

// Predict predicts targets of feature vectors in order.
func (fm *FM) Predict(x [][]float64) []float64 {
	return fm.BatchPredict(x, 1)
}

// BatchPredict predicts targets of feature vectors with multiple goroutines.
func (fm *FM) BatchPredict(x [][]float64, jobs int) []float64 {
	predictions := make([]float64, len(x))
	parallel.For(len(x), jobs, func(i int) {
		predictions[i] = fm.PredictOne(x[i])
	})
	return predictions
}

// PredictSparse predicts the target of a sparse feature vector. Indices must be
// distinct and less than the number of dimensions. The result equals PredictOne
// on the dense vector holding values at indices.
func (fm *FM) PredictSparse(indices []int32, values []float64) float64 {
	if len(indices) != len(values) {
		panic("fm: lengths of indices and values do not match")
	}
	predict := fm.bias
	sum := make([]float64, fm.nFactors)
	sumSquare := 0.0
	for n, i := range indices {
		predict += fm.weights[i] * values[n]
		gonum.AddScaled(sum, values[n], fm.factors[i])
		sumSquare += values[n] * values[n] * gonum.Dot(fm.factors[i], fm.factors[i])
	}
	predict += 0.5 * (gonum.Dot(sum, sum) - sumSquare)
	return predict
}

func (fm *FM) checkDim(x []float64) {
	if len(x) != fm.nDim {
		panic(fmt.Sprintf("fm: expect %d features, but got %d", fm.nDim, len(x)))
	}
}

// linear computes \sum^n_{i=1} w_i x_i.
func (fm *FM) linear(x []float64) float64 {
	return floats.Dot(fm.weights, x)
}

// interaction computes \sum^n_{i=1} \sum^n_{j=i+1} <v_i, v_j> x_i x_j in O(kn) by
//
//	\frac{1}{2} \sum^k_{f=1} ((\sum^n_{i=1} v_{i,f} x_i)^2 - \sum^n_{i=1} v_{i,f}^2 x_i^2)
func (fm *FM) interaction(x []float64) float64 {
	// table[f][i] = v_{i,f} x_i
	contributions := make([][]float64, fm.nDim)
	for i := range fm.factors {
		contributions[i] = make([]float64, fm.nFactors)
		floats.MulConstTo(fm.factors[i], x[i], contributions[i])
	}
	table := floats.Transpose(contributions)
	sum := 0.0
	for _, row := range table {
		s := gonum.Sum(row)
		sum += s*s - gonum.Dot(row, row)
	}
	return 0.5 * sum
}

// Fit the factorization machine by stochastic gradient descent. Samples are visited
// in order and parameters are updated after every sample. Shapes are validated before
// any update so an invalid training set leaves the model untouched.
func (fm *FM) Fit(x [][]float64, t []float64, nEpochs int, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if len(x) != len(t) {
		return errors.NotValidf("%d feature vectors with %d targets", len(x), len(t))
	}
	for i := range x {
		if len(x[i]) != fm.nDim {
			return errors.NotValidf("feature vector %d of length %d (expect %d)", i, len(x[i]), fm.nDim)
		}
	}
	if nEpochs < 0 {
		return errors.NotValidf("number of epochs %d", nEpochs)
	}
	fm.allocBuffers()
	log.Logger().Debug("fit fm",
		zap.Int("n_samples", len(x)),
		zap.Int("n_epochs", nEpochs),
		zap.String("params", fm.GetParams().ToString()))
	for epoch := 1; epoch <= nEpochs; epoch++ {
		fitStart := time.Now()
		for i := range x {
			fm.update(x[i], t[i])
		}
		fitTime := time.Since(fitStart)
		if config.Verbose > 0 && (epoch%config.Verbose == 0 || epoch == nEpochs) {
			evalStart := time.Now()
			score := EvaluateRegression(fm, x, t, config.Jobs)
			evalTime := time.Since(evalStart)
			log.Logger().Debug(fmt.Sprintf("fit fm %v/%v", epoch, nEpochs),
				append([]zap.Field{
					zap.String("fit_time", fitTime.String()),
					zap.String("eval_time", evalTime.String()),
				}, score.ZapFields()...)...)
		}
	}
	return nil
}

func (fm *FM) allocBuffers() {
	if fm.nextWeights == nil {
		fm.nextWeights = make([]float64, fm.nDim)
		fm.nextFactors = make([][]float64, fm.nDim)
		for i := range fm.nextFactors {
			fm.nextFactors[i] = make([]float64, fm.nFactors)
		}
		fm.sums = make([]float64, fm.nFactors)
	}
}

// update applies one SGD step. New parameters are computed from the current ones
// into buffers, then swapped in together.
func (fm *FM) update(x []float64, t float64) {
	// Compute error: e = t - \hat y
	residual := t - fm.PredictOne(x)
	// Update bias
	//   \frac {\partial\hat{y}(x)} {\partial w_0} = 1
	nextBias := fm.bias + fm.lr*(residual-fm.l0*fm.bias)
	// Update weights
	//   \frac {\partial\hat{y}(x)} {\partial w_i} = x_i
	for i := range fm.weights {
		fm.nextWeights[i] = fm.weights[i] + fm.lr*(residual*x[i]-fm.l1*fm.weights[i])
	}
	// Update factors
	//   \frac {\partial\hat{y}(x)} {\partial v_{i,f}} = x_i \sum^n_{h=1} v_{h,f} x_h - v_{i,f} x^2_i
	// 1. Pre-compute \sum^n_{h=1} v_{h,f} x_h
	floats.Zero(fm.sums)
	for h := range fm.factors {
		gonum.AddScaled(fm.sums, x[h], fm.factors[h])
	}
	// 2. Update by x_i \sum^n_{h=1} v_{h,f} x_h - v_{i,f} x^2_i
	for i := range fm.factors {
		for f, v := range fm.factors[i] {
			grad := x[i]*fm.sums[f] - v*x[i]*x[i]
			fm.nextFactors[i][f] = v + fm.lr*(residual*grad-fm.l2*v)
		}
	}
	// Commit
	fm.bias = nextBias
	fm.weights, fm.nextWeights = fm.nextWeights, fm.weights
	fm.factors, fm.nextFactors = fm.nextFactors, fm.factors
}
