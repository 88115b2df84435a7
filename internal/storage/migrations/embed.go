package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// PostgresFS holds the schema for users, the catalog and projects.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the simulation analytics schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

type migration struct {
	Name string
	SQL  string
}

// load returns dir's .sql files in name order. Whitespace-only files are
// dropped so a placeholder never reaches the server.
func load(fsys fs.FS, dir string) ([]migration, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list %s migrations: %w", dir, err)
	}
	sort.Strings(paths)

	out := make([]migration, 0, len(paths))
	for _, p := range paths {
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", p, err)
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			out = append(out, migration{Name: path.Base(p), SQL: string(body)})
		}
	}
	return out, nil
}
