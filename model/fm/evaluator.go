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
	"math"

	"github.com/moriaki3193/spike/common/parallel"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

type Score struct {
	MSE  float64
	RMSE float64
	MAE  float64
}

func (score Score) ZapFields() []zap.Field {
	return []zap.Field{
		zap.Float64("MSE", score.MSE),
		zap.Float64("RMSE", score.RMSE),
		zap.Float64("MAE", score.MAE),
	}
}

func (score Score) BetterThan(s Score) bool {
	return score.RMSE < s.RMSE
}

// Predictor predicts the target of a dense feature vector.
type Predictor interface {
	PredictOne(x []float64) float64
}

// EvaluateRegression evaluates a predictor on feature vectors x with targets t.
func EvaluateRegression(estimator Predictor, x [][]float64, t []float64, jobs int) Score {
	if len(x) != len(t) {
		panic("fm: lengths of features and targets do not match")
	}
	if len(x) == 0 {
		return Score{}
	}
	squareErrors := make([]float64, len(x))
	absoluteErrors := make([]float64, len(x))
	parallel.ForEach(x, jobs, func(i int, features []float64) {
		residual := t[i] - estimator.PredictOne(features)
		squareErrors[i] = residual * residual
		absoluteErrors[i] = math.Abs(residual)
	})
	mse := stat.Mean(squareErrors, nil)
	return Score{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  stat.Mean(absoluteErrors, nil),
	}
}
