package config

import (
	catalogsvc "github.com/garage-lab/gearbox/pkg/service/catalog"
	"github.com/garage-lab/gearbox/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Catalog holds configuration for the vehicle catalog source
type Catalog struct {
	path string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to a vehicle catalog TOML file (empty uses the embedded catalog)",
			Sources:     cli.EnvVars("GEARBOX_CATALOG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the vehicle catalog from the configured path, falling back
// to the embedded reference data
func (c *Catalog) Configure() (*catalogsvc.Catalog, error) {
	if c.path == "" {
		return catalogsvc.New(), nil
	}

	cat, err := catalogsvc.Load(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load vehicle catalog", goerr.V("path", c.path))
	}
	logging.Default().Info("Loaded vehicle catalog", "path", c.path)
	return cat, nil
}
