// Copyright 2020 gorse Project Authors
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

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/moriaki3193/spike/model"
	"github.com/spf13/viper"
)

const envPrefix = "SPIKE"

// Config is the configuration for training.
type Config struct {
	Model ModelConfig `mapstructure:"model"`
	Train TrainConfig `mapstructure:"train"`
	Data  DataConfig  `mapstructure:"data"`
}

// ModelConfig is the configuration for the factorization machine.
type ModelConfig struct {
	Factors     int     `mapstructure:"factors" validate:"gt=0"`
	Lr          float64 `mapstructure:"lr" validate:"gt=0"`
	InitMean    float64 `mapstructure:"init_mean"`
	InitStdDev  float64 `mapstructure:"init_std_dev" validate:"gte=0"`
	BiasReg     float64 `mapstructure:"bias_reg" validate:"gte=0"`
	LinearReg   float64 `mapstructure:"linear_reg" validate:"gte=0"`
	FactorReg   float64 `mapstructure:"factor_reg" validate:"gte=0"`
	RandomState int64   `mapstructure:"random_state"`
}

// TrainConfig is the configuration for the training loop.
type TrainConfig struct {
	Epochs  int `mapstructure:"epochs" validate:"gte=0"`
	Verbose int `mapstructure:"verbose" validate:"gte=0"`
	Jobs    int `mapstructure:"jobs" validate:"gt=0"`
}

// DataConfig is the configuration for loading datasets.
type DataConfig struct {
	TrainPath    string  `mapstructure:"train_path"`
	TestPath     string  `mapstructure:"test_path"`
	TestRatio    float64 `mapstructure:"test_ratio" validate:"gte=0,lte=1"`
	Separator    string  `mapstructure:"separator" validate:"len=1"`
	HasHeader    bool    `mapstructure:"has_header"`
	TargetColumn int     `mapstructure:"target_column"`
	SplitSeed    int64   `mapstructure:"split_seed"`
}

func setDefault(v *viper.Viper) {
	// [model]
	v.SetDefault("model.factors", 8)
	v.SetDefault("model.lr", 0.001)
	v.SetDefault("model.init_mean", 0.0)
	v.SetDefault("model.init_std_dev", 0.01)
	v.SetDefault("model.bias_reg", 0.0)
	v.SetDefault("model.linear_reg", 0.0)
	v.SetDefault("model.factor_reg", 0.0)
	v.SetDefault("model.random_state", 0)
	// [train]
	v.SetDefault("train.epochs", 50)
	v.SetDefault("train.verbose", 10)
	v.SetDefault("train.jobs", 1)
	// [data]
	v.SetDefault("data.train_path", "")
	v.SetDefault("data.test_path", "")
	v.SetDefault("data.test_ratio", 0.2)
	v.SetDefault("data.separator", ",")
	v.SetDefault("data.has_header", true)
	v.SetDefault("data.target_column", -1)
	v.SetDefault("data.split_seed", 0)
}

// LoadConfig loads configuration from a file. The format is decided by the file
// extension. Environment variables such as SPIKE_MODEL_LR override the file. An empty
// path loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

// ToParams converts the model configuration to hyper-parameters.
func (config *Config) ToParams() model.Params {
	return model.Params{
		model.Lr:          config.Model.Lr,
		model.InitMean:    config.Model.InitMean,
		model.InitStdDev:  config.Model.InitStdDev,
		model.BiasReg:     config.Model.BiasReg,
		model.LinearReg:   config.Model.LinearReg,
		model.FactorReg:   config.Model.FactorReg,
		model.RandomState: config.Model.RandomState,
	}
}

// Dump flattens the configuration into a map from keys such as "model.lr" to values.
func Dump(config *Config) (map[string]any, error) {
	flat := make(map[string]any)
	for section, value := range map[string]any{
		"model": config.Model,
		"train": config.Train,
		"data":  config.Data,
	} {
		var fields map[string]any
		if err := mapstructure.Decode(value, &fields); err != nil {
			return nil, errors.Trace(err)
		}
		for k, v := range fields {
			flat[section+"."+k] = v
		}
	}
	return flat, nil
}
