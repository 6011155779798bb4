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
	"slices"

	"github.com/juju/errors"
	"github.com/moriaki3193/spike/config"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return errors.Trace(err)
		}
		return printConfig(cfg, os.Stdout)
	},
}

func printConfig(cfg *config.Config, out io.Writer) error {
	flat, err := config.Dump(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	keys := lo.Keys(flat)
	slices.Sort(keys)
	table := tablewriter.NewWriter(out)
	table.Header("Key", "Value")
	for _, key := range keys {
		if err = table.Append([]string{key, fmt.Sprint(flat[key])}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
