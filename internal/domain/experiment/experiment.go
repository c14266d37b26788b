// Package experiment defines a named calibration experiment: a fixed taxon
// set against which all of its samples are validated.
package experiment

import (
	"fmt"
	"regexp"

	"github.com/seqlab-cloud/biascal/internal/domain"
	"github.com/seqlab-cloud/biascal/internal/domain/coda"
)

// nameRe constrains experiment names to something safe for storage keys and
// URL path segments.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// Experiment is the aggregate all samples and estimates hang off.
type Experiment struct {
	name      string
	taxa      []string
	createdAt int64
}

// New validates and creates an experiment.
func New(name string, taxa []string, createdAt int64) (Experiment, error) {
	if !nameRe.MatchString(name) {
		return Experiment{}, fmt.Errorf("%w: invalid experiment name %q",
			domain.ErrInvalidInput, name)
	}
	if len(taxa) < coda.MinTaxa {
		return Experiment{}, fmt.Errorf("%w: need at least %d taxa, got %d",
			domain.ErrInvalidInput, coda.MinTaxa, len(taxa))
	}
	seen := make(map[string]struct{}, len(taxa))
	for _, tx := range taxa {
		if tx == "" {
			return Experiment{}, fmt.Errorf("%w: empty taxon name", domain.ErrInvalidInput)
		}
		if _, dup := seen[tx]; dup {
			return Experiment{}, fmt.Errorf("%w: duplicate taxon %q", domain.ErrInvalidInput, tx)
		}
		seen[tx] = struct{}{}
	}
	return Experiment{name: name, taxa: taxa, createdAt: createdAt}, nil
}

// Reconstruct rebuilds an experiment from storage without re-validation.
func Reconstruct(name string, taxa []string, createdAt int64) Experiment {
	return Experiment{name: name, taxa: taxa, createdAt: createdAt}
}

// Name returns the experiment name.
func (e *Experiment) Name() string { return e.name }

// Taxa returns the taxon order shared by all samples of the experiment.
func (e *Experiment) Taxa() []string { return e.taxa }

// CreatedAt returns the creation time as a unix timestamp.
func (e *Experiment) CreatedAt() int64 { return e.createdAt }
