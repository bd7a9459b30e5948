// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// jobFile holds the content of a YAML job file. The keys include, exclude and
// destination are handled by the cli, all other keys are construction options of
// the job.
type jobFile struct {
	options     map[string]interface{}
	include     []string
	exclude     []string
	destination string
}

// loadJob reads the job file at path. An empty path returns an empty job.
func loadJob(path string) (*jobFile, error) {
	job := &jobFile{options: map[string]interface{}{}}
	if path == "" {
		return job, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read job file")
	}
	if err := yaml.Unmarshal(data, &job.options); err != nil {
		return nil, errors.Wrapf(err, "cannot parse job file %s", path)
	}
	if job.options == nil {
		job.options = map[string]interface{}{}
	}

	if job.include, err = popStrings(job.options, "include"); err != nil {
		return nil, err
	}
	if job.exclude, err = popStrings(job.options, "exclude"); err != nil {
		return nil, err
	}
	if v, ok := job.options["destination"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("job file: destination must be a string")
		}
		job.destination = s
		delete(job.options, "destination")
	}
	return job, nil
}

// popStrings removes key from m and returns its value as a list of strings.
func popStrings(m map[string]interface{}, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	delete(m, key)

	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("job file: %s must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("job file: %s must be a list of strings", key)
}
