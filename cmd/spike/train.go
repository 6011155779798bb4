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
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/moriaki3193/spike/base/log"
	"github.com/moriaki3193/spike/config"
	"github.com/moriaki3193/spike/dataset"
	"github.com/moriaki3193/spike/model/fm"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a factorization machine on csv datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		trainSet, testSet, err := loadDataset(cfg)
		if err != nil {
			return errors.Trace(err)
		}
		_, _, err = train(cfg, trainSet, testSet, os.Stdout, os.Stderr)
		return errors.Trace(err)
	},
}

func init() {
	trainCmd.Flags().String("train", "", "path of train set")
	trainCmd.Flags().String("test", "", "path of test set")
	trainCmd.Flags().Int("epochs", 0, "number of epochs")
}

// loadConfig loads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cmd.Flags().Changed("train") {
		cfg.Data.TrainPath, _ = cmd.Flags().GetString("train")
	}
	if cmd.Flags().Changed("test") {
		cfg.Data.TestPath, _ = cmd.Flags().GetString("test")
	}
	if cmd.Flags().Changed("epochs") {
		cfg.Train.Epochs, _ = cmd.Flags().GetInt("epochs")
	}
	return cfg, cfg.Validate()
}

// loadDataset loads the train set and the test set. The train set is split if no
// test set is given.
func loadDataset(cfg *config.Config) (*dataset.Dataset, *dataset.Dataset, error) {
	if cfg.Data.TrainPath == "" {
		return nil, nil, errors.NotValidf("empty train path")
	}
	trainSet, err := dataset.LoadCSVFile(cfg.Data.TrainPath, cfg.Data.Separator, cfg.Data.HasHeader, cfg.Data.TargetColumn)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if cfg.Data.TestPath == "" {
		trainSet, testSet := trainSet.Split(cfg.Data.TestRatio, cfg.Data.SplitSeed)
		return trainSet, testSet, nil
	}
	testSet, err := dataset.LoadCSVFile(cfg.Data.TestPath, cfg.Data.Separator, cfg.Data.HasHeader, cfg.Data.TargetColumn)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return trainSet, testSet, nil
}

// train fits a factorization machine one epoch at a time and reports scores to out.
func train(cfg *config.Config, trainSet, testSet *dataset.Dataset, out, progress io.Writer) (fm.Score, fm.Score, error) {
	if trainSet.Count() == 0 {
		return fm.Score{}, fm.Score{}, errors.NotValidf("empty train set")
	}
	if trainSet.Dim() == 0 {
		return fm.Score{}, fm.Score{}, errors.NotValidf("train set without features")
	}
	if testSet.Count() > 0 && testSet.Dim() != trainSet.Dim() {
		return fm.Score{}, fm.Score{}, errors.NotValidf("test set of %d features (expect %d)", testSet.Dim(), trainSet.Dim())
	}
	log.Logger().Info("load dataset",
		zap.Int("n_train", trainSet.Count()),
		zap.Int("n_test", testSet.Count()),
		zap.Int("n_features", trainSet.Dim()))
	m := fm.NewWithParams(cfg.Model.Factors, trainSet.Dim(), cfg.ToParams())
	fitConfig := fm.NewFitConfig().SetJobs(cfg.Train.Jobs).SetVerbose(0)

	table := tablewriter.NewWriter(out)
	table.Header("Epoch", "Train RMSE", "Train MAE", "Test RMSE", "Test MAE")
	evaluate := func(epoch int) (fm.Score, fm.Score, error) {
		trainScore := fm.EvaluateRegression(m, trainSet.Features, trainSet.Target, cfg.Train.Jobs)
		testScore := fm.EvaluateRegression(m, testSet.Features, testSet.Target, cfg.Train.Jobs)
		log.Logger().Info(fmt.Sprintf("fit fm %v/%v", epoch, cfg.Train.Epochs),
			zap.Float64("train_rmse", trainScore.RMSE),
			zap.Float64("test_rmse", testScore.RMSE))
		err := table.Append([]string{
			strconv.Itoa(epoch),
			strconv.FormatFloat(trainScore.RMSE, 'f', 6, 64),
			strconv.FormatFloat(trainScore.MAE, 'f', 6, 64),
			strconv.FormatFloat(testScore.RMSE, 'f', 6, 64),
			strconv.FormatFloat(testScore.MAE, 'f', 6, 64),
		})
		return trainScore, testScore, errors.Trace(err)
	}

	trainScore, testScore, err := evaluate(0)
	if err != nil {
		return fm.Score{}, fm.Score{}, err
	}
	bar := progressbar.NewOptions(cfg.Train.Epochs,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("fit fm"),
		progressbar.OptionShowCount())
	start := time.Now()
	for epoch := 1; epoch <= cfg.Train.Epochs; epoch++ {
		if err = m.Fit(trainSet.Features, trainSet.Target, 1, fitConfig); err != nil {
			return fm.Score{}, fm.Score{}, errors.Trace(err)
		}
		_ = bar.Add(1)
		if (cfg.Train.Verbose > 0 && epoch%cfg.Train.Verbose == 0) || epoch == cfg.Train.Epochs {
			if trainScore, testScore, err = evaluate(epoch); err != nil {
				return fm.Score{}, fm.Score{}, err
			}
		}
	}
	_ = bar.Finish()
	log.Logger().Info("fit fm complete",
		zap.String("fit_time", time.Since(start).String()),
		zap.Float64("train_rmse", trainScore.RMSE),
		zap.Float64("test_rmse", testScore.RMSE))
	if err = table.Render(); err != nil {
		return fm.Score{}, fm.Score{}, errors.Trace(err)
	}
	return trainScore, testScore, nil
}
