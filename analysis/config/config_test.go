// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/slices"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadFromBytes(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("Default log level should be info")
	}
	if c.NumRoutines != DefaultNumRoutines {
		t.Errorf("Default number of routines should be %d", DefaultNumRoutines)
	}
	for _, a := range AllAnalyses {
		if !c.Wants(a) {
			t.Errorf("Default config should want every analysis, including %s", a)
		}
	}
	if !c.MatchFunctionFilter("anything") || !c.MatchPkgFilter("anything") {
		t.Errorf("Default filters should match anything")
	}
	if c.Verbose() {
		t.Errorf("Default config should not be verbose")
	}
}

func TestLoadFull(t *testing.T) {
	name, c, err := loadFromTestDir("config_full.yaml")
	if err != nil {
		t.Fatalf("Could not load %q: %v", name, err)
	}
	if c.LogLevel != int(DebugLevel) || !c.Verbose() {
		t.Errorf("Expected debug log level, got %d", c.LogLevel)
	}
	if !c.CrossModule {
		t.Errorf("Expected cross-module to be true")
	}
	if c.NumRoutines != 8 {
		t.Errorf("Expected 8 routines, got %d", c.NumRoutines)
	}
	if !slices.Equal(c.Analyses, []string{AnalysisCFG, AnalysisCDG, AnalysisCallGraph}) {
		t.Errorf("Unexpected analyses %v", c.Analyses)
	}
	if c.Wants(AnalysisDomTree) || !c.Wants(AnalysisCDG) {
		t.Errorf("Wants should follow the analyses listed")
	}
	if !slices.Equal(c.Packages, []string{"./..."}) {
		t.Errorf("Unexpected packages %v", c.Packages)
	}
	if !c.MatchFunctionFilter("main.main") || c.MatchFunctionFilter("fmt.Println") {
		t.Errorf("Function filter should be used as a regex")
	}
	if !c.MatchPkgFilter("example.com/app/sub") || c.MatchPkgFilter("example.com/lib") {
		t.Errorf("Package filter should match example.com/app packages only")
	}
	if c.RelPath("x.yaml") != filepath.Join("testdata", "x.yaml") {
		t.Errorf("RelPath should be relative to the config file, got %s", c.RelPath("x.yaml"))
	}
}

func TestLoadPrefixFilter(t *testing.T) {
	name, c, err := loadFromTestDir("config_prefix_filter.yaml")
	if err != nil {
		t.Fatalf("Could not load %q: %v", name, err)
	}
	// the filter is not a valid regex, so it is matched as a prefix
	if !c.MatchFunctionFilter("(*pkg.T).Method") || c.MatchFunctionFilter("pkg.T") {
		t.Errorf("Function filter should be used as a prefix")
	}
	if c.NumRoutines != DefaultNumRoutines {
		t.Errorf("Missing num-routines should be set to the default")
	}
}

func TestLoadUnknownAnalysisReturnsError(t *testing.T) {
	_, c, err := loadFromTestDir("config_bad_analysis.yaml")
	if c != nil || err == nil || !strings.Contains(err.Error(), "pointer") {
		t.Errorf("Expected error naming the unknown analysis, got %v", err)
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	_, c, err := loadFromTestDir("bad_format.yaml")
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load a badly formatted file.")
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file.")
	}
}

func TestLoadWithReports(t *testing.T) {
	_, c, err := loadFromTestDir("config_with_reports.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove("example-report")
	if c.ReportsDir != "example-report" {
		t.Errorf("Unexpected reports dir %q", c.ReportsDir)
	}
	if stat, err := os.Stat("example-report"); err != nil || !stat.IsDir() {
		t.Errorf("Reports dir should have been created")
	}
}

func TestLoadWithReportNoDirReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("config_with_reports_bad_dir.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load config with a report dir that has a non-existing" +
			"directory name")
	}
}

func TestLogGroupLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogGroupAt(WarnLevel, &buf)
	l.Errorf("e%d", 1)
	l.Warnf("w%d", 2)
	l.Infof("i%d", 3)
	l.Debugf("d%d", 4)
	out := buf.String()
	if !strings.Contains(out, "[ERROR] ") || !strings.Contains(out, "e1") {
		t.Errorf("error message should be logged with its prefix, got %q", out)
	}
	if !strings.Contains(out, "[WARN] ") || !strings.Contains(out, "w2") {
		t.Errorf("warning should be logged with its prefix, got %q", out)
	}
	if strings.Contains(out, "i3") || strings.Contains(out, "d4") {
		t.Errorf("messages above the warning level should be discarded, got %q", out)
	}
}

func TestSilenceWarn(t *testing.T) {
	_, c, err := loadFromTestDir("config_prefix_filter.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if l := NewLogGroup(c); l.Level() != ErrLevel {
		t.Errorf("silence-warn should lower the level to errors only, got %d", l.Level())
	}
}
