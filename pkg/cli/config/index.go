package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/index/chromem"
	indexmem "github.com/mnemo-ai/mnemo/pkg/index/memory"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Index holds CLI flags for semantic index configuration
type Index struct {
	backend string
}

// Flags returns CLI flags for index configuration
func (i *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Semantic index backend (chromem or memory)",
			Value:       "chromem",
			Sources:     cli.EnvVars("MNEMO_INDEX_BACKEND"),
			Destination: &i.backend,
		},
	}
}

// Backend returns the configured backend type
func (i *Index) Backend() string {
	return i.backend
}

// Configure initializes and returns a semantic index based on the
// configured backend
func (i *Index) Configure() (interfaces.SemanticIndex, error) {
	switch i.backend {
	case "chromem":
		idx, err := chromem.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize chromem index")
		}
		logging.Default().Info("Using chromem semantic index")
		return idx, nil

	case "memory":
		logging.Default().Info("Using in-memory semantic index (exact search)")
		return indexmem.New(), nil

	default:
		return nil, goerr.New("invalid index backend", goerr.V("backend", i.backend))
	}
}
