// Command bench runs the solver across a folder of Solomon-format benchmark
// files and writes one CSV row per (instance, propagator) run. The run is
// described by a YAML manifest:
//
//	dir: testdata/solomon
//	output: results.csv
//	maxCustomers: 25
//	timeBudgetMs: 5000
//	firstSolution: false
//	improve: true
//	propagators: [forward-checking, ac3]
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"vrpsolve/internal/model"
	"vrpsolve/internal/runner"
	"vrpsolve/internal/solomon"
)

type manifest struct {
	Dir           string   `yaml:"dir"`
	Output        string   `yaml:"output"`
	MaxCustomers  int      `yaml:"maxCustomers"`
	TimeBudgetMs  int      `yaml:"timeBudgetMs"`
	NodeBudget    int64    `yaml:"nodeBudget"`
	FirstSolution bool     `yaml:"firstSolution"`
	Improve       bool     `yaml:"improve"`
	Propagators   []string `yaml:"propagators"`
}

func main() {
	manifestPath := flag.String("manifest", "bench.yaml", "path to the run manifest")
	flag.Parse()

	m, err := loadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	files, err := solomonFiles(m.Dir)
	if err != nil {
		log.Fatalf("scan %s: %v", m.Dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("no benchmark files under %s", m.Dir)
	}

	out, err := os.Create(m.Output)
	if err != nil {
		log.Fatalf("create %s: %v", m.Output, err)
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	header := []string{"instance", "customers", "vehicles", "propagator", "status", "proven", "total_distance", "routes", "nodes", "backjumps", "elapsed_ms"}
	if err := w.Write(header); err != nil {
		log.Fatalf("write header: %v", err)
	}

	for _, path := range files {
		inst, err := solomon.ParseFile(path, m.MaxCustomers)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			continue
		}
		for _, prop := range m.Propagators {
			res, err := runner.Run(context.Background(), inst, model.SolveRequest{
				Propagator:    prop,
				FirstSolution: m.FirstSolution,
				Improve:       m.Improve,
				NodeBudget:    m.NodeBudget,
				TimeBudgetMs:  m.TimeBudgetMs,
			}, nil)
			if err != nil {
				log.Printf("%s [%s]: %v", inst.Name, prop, err)
				continue
			}
			row := []string{
				inst.Name,
				strconv.Itoa(len(inst.Customers)),
				strconv.Itoa(len(inst.Vehicles)),
				prop,
				res.Status,
				strconv.FormatBool(res.Proven),
				fmt.Sprintf("%.2f", res.Total),
				strconv.Itoa(len(res.Routes)),
				strconv.FormatInt(res.Nodes, 10),
				strconv.FormatInt(res.Backjumps, 10),
				fmt.Sprintf("%.1f", res.ElapsedMs),
			}
			if err := w.Write(row); err != nil {
				log.Fatalf("write row: %v", err)
			}
			w.Flush()
			log.Printf("%s [%s]: %s total=%.2f nodes=%d backjumps=%d",
				inst.Name, prop, res.Status, res.Total, res.Nodes, res.Backjumps)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	log.Printf("wrote %s", m.Output)
}

func loadManifest(path string) (manifest, error) {
	m := manifest{Output: "results.csv", Propagators: []string{"forward-checking"}}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, err
	}
	if m.Dir == "" {
		return m, fmt.Errorf("dir is required")
	}
	return m, nil
}

func solomonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
