package config

import (
	"cruise-status-service/internal/domain"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed zones.yaml
var defaultZonesYAML []byte

type zoneFile struct {
	Ports map[string]string `yaml:"ports"`
	Ships map[string]string `yaml:"ships"`
}

// LoadZoneTables reads port and ship zone tables from path, or the embedded
// defaults when path is empty.
func LoadZoneTables(path string) (domain.ZoneTables, error) {
	data := defaultZonesYAML
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return domain.ZoneTables{}, fmt.Errorf("load zone tables: read %q: %w", path, err)
		}
		data = b
	}
	return ParseZoneTables(data)
}

func ParseZoneTables(data []byte) (domain.ZoneTables, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.ZoneTables{}, fmt.Errorf("parse zone tables: %w", err)
	}
	if f.Ports == nil {
		f.Ports = map[string]string{}
	}
	if f.Ships == nil {
		f.Ships = map[string]string{}
	}
	return domain.ZoneTables{Ports: f.Ports, Ships: f.Ships}, nil
}
