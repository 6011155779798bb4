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

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/moriaki3193/spike/config"
	"github.com/moriaki3193/spike/dataset"
	"github.com/stretchr/testify/assert"
)

func newDataset(n int) *dataset.Dataset {
	data := dataset.NewDataset(n)
	for i := 0; i < n; i++ {
		x := []float64{float64(i%3) / 2, float64(i%5) / 4, float64(i%2)}
		data.Add(x, 1+x[0]-x[1]+0.5*x[0]*x[2])
	}
	return data
}

func newConfig(t *testing.T) *config.Config {
	cfg, err := config.LoadConfig("")
	assert.NoError(t, err)
	cfg.Model.Lr = 0.01
	cfg.Train.Epochs = 20
	cfg.Train.Verbose = 5
	return cfg
}

func TestTrain(t *testing.T) {
	cfg := newConfig(t)
	trainSet, testSet := newDataset(100).Split(0.2, 0)
	var out bytes.Buffer
	trainScore, testScore, err := train(cfg, trainSet, testSet, &out, io.Discard)
	assert.NoError(t, err)
	assert.Greater(t, trainScore.RMSE, 0.0)
	assert.Greater(t, testScore.RMSE, 0.0)
	assert.Contains(t, strings.ToUpper(out.String()), "TRAIN RMSE")
	assert.Equal(t, []int{0, 5, 10, 15, 20}, epochColumn(out.String()))

	// training should reduce error
	cfg.Train.Epochs = 0
	initScore, _, err := train(cfg, trainSet, testSet, io.Discard, io.Discard)
	assert.NoError(t, err)
	assert.Less(t, trainScore.RMSE, initScore.RMSE)
}

func TestTrain_Invalid(t *testing.T) {
	cfg := newConfig(t)
	_, _, err := train(cfg, dataset.NewDataset(0), newDataset(10), io.Discard, io.Discard)
	assert.True(t, errors.Is(err, errors.NotValid))
	testSet := dataset.NewDataset(1)
	testSet.Add([]float64{1, 2}, 3)
	_, _, err = train(cfg, newDataset(10), testSet, io.Discard, io.Discard)
	assert.True(t, errors.Is(err, errors.NotValid))
	// target column only
	targetOnly, err := dataset.LoadCSV(strings.NewReader("y\n1\n2\n"), ",", true, -1)
	assert.NoError(t, err)
	assert.Equal(t, 2, targetOnly.Count())
	assert.Equal(t, 0, targetOnly.Dim())
	_, _, err = train(cfg, targetOnly, dataset.NewDataset(0), io.Discard, io.Discard)
	assert.True(t, errors.Is(err, errors.NotValid))
}

// epochColumn parses the first cell of every table row that starts with a number.
func epochColumn(text string) []int {
	var epochs []int
	for _, line := range strings.Split(text, "\n") {
		cells := strings.FieldsFunc(line, func(r rune) bool { return r == '|' || r == '│' })
		if len(cells) == 0 {
			continue
		}
		if epoch, err := strconv.Atoi(strings.TrimSpace(cells[0])); err == nil {
			epochs = append(epochs, epoch)
		}
	}
	return epochs
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	var text strings.Builder
	text.WriteString("a,b,y\n")
	for i := 0; i < 10; i++ {
		text.WriteString(fmt.Sprintf("%d,%d,%d\n", i, i*2, i*3))
	}
	trainPath := filepath.Join(dir, "train.csv")
	assert.NoError(t, os.WriteFile(trainPath, []byte(text.String()), 0644))

	cfg := newConfig(t)
	cfg.Data.TrainPath = trainPath
	cfg.Data.TestRatio = 0.3
	trainSet, testSet, err := loadDataset(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 7, trainSet.Count())
	assert.Equal(t, 3, testSet.Count())
	assert.Equal(t, 2, trainSet.Dim())

	cfg.Data.TestPath = trainPath
	trainSet, testSet, err = loadDataset(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 10, trainSet.Count())
	assert.Equal(t, 10, testSet.Count())

	cfg.Data.TrainPath = ""
	_, _, err = loadDataset(cfg)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestPrintConfig(t *testing.T) {
	cfg := newConfig(t)
	var out bytes.Buffer
	assert.NoError(t, printConfig(cfg, &out))
	text := out.String()
	assert.Contains(t, text, "model.factors")
	assert.Contains(t, text, "train.epochs")
	assert.Less(t, strings.Index(text, "data.separator"), strings.Index(text, "model.factors"))
	assert.Less(t, strings.Index(text, "model.factors"), strings.Index(text, "train.epochs"))
}
