// Copyright 2022 gorse Project Authors
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

package log

import (
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	flagLogPath       = "log-path"
	flagLogMaxSize    = "log-max-size"
	flagLogMaxAge     = "log-max-age"
	flagLogMaxBackups = "log-max-backups"

	timeLayout = "2006-01-02 15:04:05.999999"
)

var logger = newDevelopmentLogger()

func newDevelopmentLogger() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}

// Logger returns the process logger. It is a development logger until SetLogger is called.
func Logger() *zap.Logger {
	return logger
}

// CloseLogger mutes everything below fatal.
func CloseLogger() {
	logger = zap.New(zapcore.NewCore(newEncoder(false), zapcore.Lock(os.Stderr), zap.FatalLevel))
}

// AddFlags registers flags of the log file.
func AddFlags(flagSet *pflag.FlagSet) {
	flagSet.String(flagLogPath, "", "path of log file")
	flagSet.Int(flagLogMaxSize, 100, "maximum size in megabytes of the log file")
	flagSet.Int(flagLogMaxAge, 0, "maximum number of days to retain old log files")
	flagSet.Int(flagLogMaxBackups, 0, "maximum number of old log files to retain")
}

// SetLogger replaces the process logger. Debug mode writes human readable messages at
// debug level, otherwise JSON messages at info level. Messages are also written to a
// rotating file if --log-path is set.
func SetLogger(flagSet *pflag.FlagSet, debug bool) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	writer := zapcore.Lock(os.Stdout)
	if file := newFileWriter(flagSet); file != nil {
		writer = zap.CombineWriteSyncers(writer, file)
	}
	logger = zap.New(zapcore.NewCore(newEncoder(debug), writer, level), zap.AddCaller())
}

func newEncoder(debug bool) zapcore.Encoder {
	if debug {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	return zapcore.NewJSONEncoder(cfg)
}

// newFileWriter returns nil if no log file is given.
func newFileWriter(flagSet *pflag.FlagSet) zapcore.WriteSyncer {
	if !flagSet.Changed(flagLogPath) {
		return nil
	}
	path, _ := flagSet.GetString(flagLogPath)
	maxSize, _ := flagSet.GetInt(flagLogMaxSize)
	maxAge, _ := flagSet.GetInt(flagLogMaxAge)
	maxBackups, _ := flagSet.GetInt(flagLogMaxBackups)
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxAge:     maxAge,
		MaxBackups: maxBackups,
	})
}
