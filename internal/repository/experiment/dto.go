package experiment

import (
	"encoding/json"
	"fmt"
	"strconv"

	domexp "github.com/seqlab-cloud/biascal/internal/domain/experiment"
)

// experimentToHash converts a domain experiment to a map for HSET.
func experimentToHash(exp domexp.Experiment) (map[string]string, error) {
	taxaJSON, err := json.Marshal(exp.Taxa())
	if err != nil {
		return nil, fmt.Errorf("marshal taxa: %w", err)
	}
	return map[string]string{
		"name":       exp.Name(),
		"taxa_json":  string(taxaJSON),
		"created_at": strconv.FormatInt(exp.CreatedAt(), 10),
	}, nil
}

// experimentFromHash hydrates a domain experiment from an HGETALL result map.
func experimentFromHash(m map[string]string) (domexp.Experiment, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domexp.Experiment{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var taxa []string
	if err := json.Unmarshal([]byte(m["taxa_json"]), &taxa); err != nil {
		return domexp.Experiment{}, fmt.Errorf("unmarshal taxa: %w", err)
	}

	return domexp.Reconstruct(m["name"], taxa, createdAt), nil
}
