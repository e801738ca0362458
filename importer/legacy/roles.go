package legacy

import (
	_ "embed"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesDocument []byte

var defaultRoles = mustLoadRoleMapping(rolesDocument)

// RoleMapping maps legacy role codes onto roles.
type RoleMapping map[string]model.Role

// LoadRoleMapping decodes a YAML document with a top-level "roles" map of
// legacy codes to role slugs.
func LoadRoleMapping(blob []byte) (RoleMapping, error) {
	doc := struct {
		Roles map[string]string `yaml:"roles"`
	}{}
	if err := yaml.Unmarshal(blob, &doc); err != nil {
		return nil, errors.Wrap(err, "error decoding role mapping")
	}
	m := make(RoleMapping, len(doc.Roles))
	for code, slug := range doc.Roles {
		role, ok := model.ParseRole(slug)
		if !ok {
			return nil, errors.Errorf("legacy role %q maps to unknown role %q", code, slug)
		}
		m[normalizeCode(code)] = role
	}
	return m, nil
}

func mustLoadRoleMapping(blob []byte) RoleMapping {
	m, err := LoadRoleMapping(blob)
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultRoleMapping returns a copy of the bundled mapping.
func DefaultRoleMapping() RoleMapping {
	m := make(RoleMapping, len(defaultRoles))
	for code, role := range defaultRoles {
		m[code] = role
	}
	return m
}

// Map returns the role of code, RoleOther when the code is unknown.
func (m RoleMapping) Map(code string) model.Role {
	if role, ok := m[normalizeCode(code)]; ok {
		return role
	}
	return model.RoleOther
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
