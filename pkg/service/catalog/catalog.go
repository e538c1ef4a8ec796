package catalog

import (
	_ "embed"
	"os"

	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed data/catalog.toml
var defaultCatalogTOML []byte

// Range is the production year range of one model
type Range struct {
	Start int
	End   int
}

// Contains reports whether year falls inside the production range
func (r Range) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Catalog is the authoritative table of valid make/model/year combinations.
// Lookups are case- and separator-insensitive so URL-slug input ("land-rover")
// matches the display name ("Land Rover"). Read-only after construction.
type Catalog struct {
	makes map[string]makeEntry
	tasks []string
}

type makeEntry struct {
	displayName string
	models      map[string]modelEntry
}

type modelEntry struct {
	displayName string
	years       Range
}

type catalogFile struct {
	Tasks []string    `toml:"tasks"`
	Makes []makeBlock `toml:"make"`
}

type makeBlock struct {
	Name   string       `toml:"name"`
	Models []modelBlock `toml:"model"`
}

type modelBlock struct {
	Name  string `toml:"name"`
	Start int    `toml:"start"`
	End   int    `toml:"end"`
}

// New returns the catalog built from the embedded reference data
func New() *Catalog {
	c, err := parse(defaultCatalogTOML)
	if err != nil {
		// The embedded data is validated by tests; a parse failure here is a
		// build defect.
		panic(err)
	}
	return c
}

// Load reads a catalog from a TOML file, replacing the embedded data
func Load(path string) (*Catalog, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog file", goerr.V("path", path))
	}
	c, err := parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid catalog file", goerr.V("path", path))
	}
	return c, nil
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse catalog TOML")
	}

	c := &Catalog{
		makes: make(map[string]makeEntry),
		tasks: file.Tasks,
	}
	for _, mk := range file.Makes {
		if mk.Name == "" {
			return nil, goerr.New("make name is required")
		}
		entry := makeEntry{
			displayName: mk.Name,
			models:      make(map[string]modelEntry),
		}
		for _, md := range mk.Models {
			if md.Name == "" {
				return nil, goerr.New("model name is required", goerr.V("make", mk.Name))
			}
			if md.Start == 0 || md.End < md.Start {
				return nil, goerr.New("invalid production range",
					goerr.V("make", mk.Name),
					goerr.V("model", md.Name),
					goerr.V("start", md.Start),
					goerr.V("end", md.End))
			}
			entry.models[types.Slugify(md.Name)] = modelEntry{
				displayName: md.Name,
				years:       Range{Start: md.Start, End: md.End},
			}
		}
		c.makes[types.Slugify(mk.Name)] = entry
	}

	return c, nil
}

// Lookup returns the production ranges of all models under make, or false
// when the make is unknown
func (c *Catalog) Lookup(makeName string) (map[string]Range, bool) {
	entry, exists := c.makes[types.Slugify(makeName)]
	if !exists {
		return nil, false
	}
	models := make(map[string]Range, len(entry.models))
	for _, md := range entry.models {
		models[md.displayName] = md.years
	}
	return models, true
}

// InProduction reports whether the make/model pair exists and year falls
// inside its production range
func (c *Catalog) InProduction(make, model string, year int) bool {
	entry, exists := c.makes[types.Slugify(make)]
	if !exists {
		return false
	}
	md, exists := entry.models[types.Slugify(model)]
	if !exists {
		return false
	}
	return md.years.Contains(year)
}

// Tasks returns the informational list of common repair tasks. Requests are
// never restricted to this list.
func (c *Catalog) Tasks() []string {
	return append([]string(nil), c.tasks...)
}
