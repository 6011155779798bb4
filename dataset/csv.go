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

package dataset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/moriaki3193/spike/base/log"
	"go.uber.org/zap"
)

const maxLineSize = 16 * 1024 * 1024

// LoadCSVFile loads a dataset from a csv file. See LoadCSV.
func LoadCSVFile(path, sep string, hasHeader bool, targetColumn int) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	dataSet, err := LoadCSV(file, sep, hasHeader, targetColumn)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load %s", path)
	}
	log.Logger().Debug("load dataset",
		zap.String("path", path),
		zap.Int("n_samples", dataSet.Count()),
		zap.Int("n_features", dataSet.Dim()))
	return dataSet, nil
}

// LoadCSV loads a dataset from csv. Every field must be a number. The field at
// targetColumn is the target and others are features. A negative targetColumn
// counts from the end, so -1 is the last field. Blank lines are skipped.
func LoadCSV(r io.Reader, sep string, hasHeader bool, targetColumn int) (*Dataset, error) {
	if len(sep) != 1 {
		return nil, errors.NotValidf("separator %q", sep)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	dataSet := NewDataset(0)
	width := -1
	var err error
	if readErr := readLines(sc, sep, func(lineNumber int, fields []string) bool {
		if lineNumber == 0 && hasHeader {
			return true
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return true
		}
		if width < 0 {
			width = len(fields)
		} else if len(fields) != width {
			err = errors.NotValidf("line %d has %d fields (expect %d)", lineNumber+1, len(fields), width)
			return false
		}
		target := targetColumn
		if target < 0 {
			target += len(fields)
		}
		if target < 0 || target >= len(fields) {
			err = errors.NotValidf("target column %d of %d fields", targetColumn, len(fields))
			return false
		}
		features := make([]float64, 0, len(fields)-1)
		var value float64
		for i, field := range fields {
			value, err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				err = errors.NewNotValid(err, "line "+strconv.Itoa(lineNumber+1))
				return false
			}
			if i == target {
				dataSet.Target = append(dataSet.Target, value)
			} else {
				features = append(features, value)
			}
		}
		dataSet.Features = append(dataSet.Features, features)
		return true
	}); readErr != nil {
		return nil, errors.Trace(readErr)
	}
	if err != nil {
		return nil, err
	}
	return dataSet, nil
}

// readLines parse fields of each line for csv file.
func readLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		// read line
		lineStr := sc.Text()
		line := []rune(lineStr)
		// start of line
		if quoted {
			builder.WriteString("\r\n")
		}
		// parse line
		for i := 0; i < len(line); i++ {
			if string(line[i]) == sep && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		// increase line count
		lineCount++
	}
	return sc.Err()
}
