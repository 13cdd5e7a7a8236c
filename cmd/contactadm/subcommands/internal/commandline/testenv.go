package commandline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	contactbook "github.com/opst/contactbook/pkg"
	sconf "github.com/opst/contactbook/pkg/configs/server"
	"github.com/opst/contactbook/pkg/utils/try"
)

// SQLiteContactbook returns Contactbook backed by a new sqlite database in a temporary directory.
func SQLiteContactbook(t *testing.T) contactbook.Contactbook {
	t.Helper()
	conf := try.To(sconf.Unmarshal([]byte(fmt.Sprintf(`
database:
  driver: sqlite
  uri: %s
password:
  cost: 4
`, filepath.Join(t.TempDir(), "contactbook.db"))))).OrFatal(t)

	db := try.To(contactbook.Connect(context.Background(), conf.Database(), "")).OrFatal(t)
	t.Cleanup(func() { db.Close() })
	return contactbook.Attach(conf, db)
}
