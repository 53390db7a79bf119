package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlDeclaration mirrors the on-disk YAML declaration format. It is the
// same table shape the SQL loader produces, declared structurally instead of
// as CREATE TABLE text.
type yamlDeclaration struct {
	Tables []*Table `yaml:"tables"`
}

// ParseYAML parses a YAML declaration document into table declarations.
func ParseYAML(raw []byte) ([]*Table, error) {
	var decl yamlDeclaration
	if err := yaml.Unmarshal(raw, &decl); err != nil {
		return nil, fmt.Errorf("failed to parse yaml schema declaration: %w", err)
	}

	for _, table := range decl.Tables {
		if table.Name == "" {
			return nil, fmt.Errorf("yaml schema declaration contains a table without a name")
		}
		for _, col := range table.Columns {
			if col.Name == "" || col.Type == "" {
				return nil, fmt.Errorf("table %s declares a column without name or type", table.Name)
			}
		}
	}

	return decl.Tables, nil
}
