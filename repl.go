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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/navdeep-G/the-r-in-spark/scoring"
	"github.com/rs/zerolog/log"
)

func ensureConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "sparkpipe")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}

func runActionREPL(bundlePath string) {
	rt, err := scoring.Open(bundlePath)
	if err != nil {
		fmt.Printf("Error loading bundle: %v\n", err)
		os.Exit(exitErrorBundleFailed)
	}

	titleColor := color.New(color.FgHiMagenta).SprintFunc()
	greenColor := color.New(color.FgGreen).SprintFunc()
	redColor := color.New(color.FgRed).SprintFunc()

	fmt.Println("Pipeline Model Scoring Console")
	fmt.Println("Commands:")
	fmt.Println("  <JSON record>  - Score one record, e.g. {\"age\": 41, \"city\": \"Prague\"}")
	fmt.Println("  cols           - Show the columns a record must provide")
	fmt.Println("  exit           - Exit REPL")
	fmt.Printf("\nLoaded bundle: %s\n\n", bundlePath)

	var historyFile string
	historyDir, err := ensureConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("failed to determine user config directory - falling back to session-local history")

	} else {
		historyFile = filepath.Join(historyDir, "score-history.txt")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      color.New(color.FgHiGreen).Sprintf("/score> "),
		HistoryFile: historyFile,
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		os.Exit(exitErrorGeneralFailure)
	}
	defer rl.Close()

	ctx := context.Background()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if input == "exit" {
			fmt.Println("Goodbye!")
			break
		}

		if input == "cols" {
			fmt.Printf("%s: %s\n", titleColor("Required columns"),
				strings.Join(rt.InputColumns(), ", "))
			continue
		}

		var rec scoring.Record
		if err := json.Unmarshal([]byte(input), &rec); err != nil {
			fmt.Printf("Error parsing record: %v\n", err)
			continue
		}

		ans, err := rt.Predict(ctx, rec)
		if err != nil {
			fmt.Println(redColor(fmt.Sprintf("scoring failed: %s", err)))
			continue
		}

		names := make([]string, 0, len(ans))
		for name := range ans {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", titleColor(name), greenColor(fmt.Sprintf("%v", ans[name])))
		}
	}
}
