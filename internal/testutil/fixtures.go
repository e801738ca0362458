package testutil

import (
	"fmt"
	"io/ioutil"
	"path"
	"path/filepath"
	"runtime"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func root() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("error loading caller")
	}
	return path.Join(path.Dir(filename), "../../", "testdata")
}

// FixturePath returns the absolute path of a file under testdata/.
func FixturePath(relPath string) string {
	return path.Join(root(), relPath)
}

func MustFixture(relPath string) []byte {
	p := FixturePath(relPath)
	bytes, err := ioutil.ReadFile(p)
	if err != nil {
		panic(fmt.Sprintf("error loading fixture %s: %v", p, err))
	}

	return bytes
}

func Fixture(t *testing.T, relPath string) []byte {
	t.Helper()

	p := FixturePath(relPath)
	bytes, err := ioutil.ReadFile(p)
	if err != nil {
		t.Fatalf("error loading fixture %s: %v", p, err)
	}

	return bytes
}

// LegacyDatabase creates a legacy SQLite database in a temporary directory,
// loaded with the legacy schema and the given fixture scripts, and returns
// its path.
func LegacyDatabase(t *testing.T, scripts ...string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "legacy.db")
	conn, err := sqlite.OpenConn(p, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		t.Fatalf("error creating legacy database: %v", err)
	}
	defer conn.Close()

	for _, script := range append([]string{"legacy/schema.sql"}, scripts...) {
		if err := sqlitex.ExecuteScript(conn, string(Fixture(t, script)), nil); err != nil {
			t.Fatalf("error loading %s: %v", script, err)
		}
	}

	return p
}
