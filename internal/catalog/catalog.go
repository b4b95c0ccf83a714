// Package catalog holds the static service catalog shipped with the binary.
package catalog

import (
	_ "embed"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/domora/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// namespace scopes the name-based ids of catalog entries so that reseeding
// keeps ids stable across restarts.
var namespace = uuid.MustParse("5b0f1c1e-9a57-4d1f-8f43-3e6c2b7d9a10")

type Catalog struct {
	Packages []domain.ServicePackage `yaml:"packages"`
	Addons   []domain.ServiceAddon   `yaml:"addons"`
}

// Load parses the embedded catalog and assigns ids.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Annotate(err, "parse catalog")
	}
	for i := range c.Packages {
		p := &c.Packages[i]
		if !p.ServiceType.Valid() {
			return nil, errors.NotValidf("package %q service type %q", p.Name, p.ServiceType)
		}
		if p.BasePrice < 0 {
			return nil, errors.NotValidf("package %q base price %v", p.Name, p.BasePrice)
		}
		p.ID = EntryID("package", p.ServiceType, p.Name)
	}
	for i := range c.Addons {
		a := &c.Addons[i]
		if !a.ServiceType.Valid() {
			return nil, errors.NotValidf("addon %q service type %q", a.Name, a.ServiceType)
		}
		if a.Price < 0 {
			return nil, errors.NotValidf("addon %q price %v", a.Name, a.Price)
		}
		a.ID = EntryID("addon", a.ServiceType, a.Name)
	}
	return &c, nil
}

// EntryID derives the id of a catalog entry from its kind, service type and name.
func EntryID(kind string, st domain.ServiceType, name string) string {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+string(st)+"/"+name)).String()
}
