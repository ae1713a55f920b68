package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/fabestimate/internal/db"
	"github.com/Simplici0/fabestimate/internal/estimate"
	"github.com/Simplici0/fabestimate/internal/store"
)

// job is an estimate job file. JSON files decode too since YAML is a
// superset of JSON.
type job struct {
	Client   string             `yaml:"client"`
	Settings *estimate.Settings `yaml:"settings"`
	Estimate estimate.Request   `yaml:"estimate"`
}

func loadJob(path string) (job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return job{}, eris.Wrapf(err, "read job file %s", path)
	}

	var j job
	if err := yaml.Unmarshal(raw, &j); err != nil {
		return job{}, eris.Wrapf(err, "decode job file %s", path)
	}
	return j, nil
}

// resolveSettings returns the job's own settings, or the stored ones when the
// job carries none and fromDB is set. Otherwise every default applies.
func resolveSettings(ctx context.Context, j job, fromDB bool, dbPath string) (estimate.Settings, error) {
	if j.Settings != nil {
		return *j.Settings, nil
	}
	if !fromDB {
		return estimate.Settings{}, nil
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return estimate.Settings{}, err
	}
	defer database.Close()

	return store.New(database).Settings(ctx)
}
