// Package persist implements the optional "persisted state" driver
// contract of spec.md §6: a System can be serialized to and reloaded from
// a relational store, so a driver can cache a build across process
// invocations instead of always re-running the pipeline. It follows
// db/sqlite.go's per-DSN-scheme dialector selection (plain file vs. a
// remote libsql URL) and models/models.go's use of gorm.io/datatypes.JSON
// for structured payload fields.
package persist

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/apidocs/internal/model"
)

// DocumentableRow is the relational shape of one model.Documentable. The
// kind-specific payload (Module/Class/Func/Attr) and the open extra-info
// slot are stored as opaque JSON, exactly as Stage.TargetQuery/ScopeAST
// are in models/models.go — these fields vary by Kind and aren't worth a
// join table apiece.
type DocumentableRow struct {
	ID        int64  `gorm:"primaryKey"`
	SystemTag string `gorm:"index;not null"` // distinguishes Systems sharing one store
	Name      string `gorm:"type:varchar(255);not null"`
	ParentID  int64
	HasParent bool
	Kind      int    `gorm:"not null"`
	FQName    string `gorm:"type:varchar(1024);index;not null"`

	LocFile   string `gorm:"type:text"`
	LocLine   int
	LocColumn int
	LocHasCol bool

	DocText       string `gorm:"type:text"`
	DocLineOffset int
	HasDoc        bool

	DocFormat      string `gorm:"type:varchar(32)"`
	Privacy        int
	IsIntrospected bool

	ExtraInfo   datatypes.JSON
	ChildrenIDs datatypes.JSON

	Module datatypes.JSON
	Class  datatypes.JSON
	Func   datatypes.JSON
	Attr   datatypes.JSON

	AliasValueSource   string `gorm:"type:text"`
	TypeVarConstraints datatypes.JSON
}

func (DocumentableRow) TableName() string { return "documentables" }

// SystemMeta persists the System-level bookkeeping a DocumentableRow table
// alone can't carry: root ordering and privacy rules (extensions and
// inventories are rebuilt by the driver on load, not round-tripped).
type SystemMeta struct {
	ID           int64  `gorm:"primaryKey"`
	SystemTag    string `gorm:"uniqueIndex;not null"`
	RootIDs      datatypes.JSON
	PrivacyRules datatypes.JSON
}

func (SystemMeta) TableName() string { return "system_meta" }

// Open connects to dsn, selecting gorm's sqlite dialector for a plain
// local file path and a libsql connector for an http(s)/libsql:// remote
// DSN, mirroring db/sqlite.go's Connect.
func Open(dsn string) (*gorm.DB, error) {
	if !isRemoteDSN(dsn) {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("persist: creating database directory: %w", err)
			}
		}
	}

	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isRemoteDSN(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if token := os.Getenv("APIDOCS_LIBSQL_AUTH_TOKEN"); token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("persist: creating libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("persist: connecting: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("persist: migrating: %w", err)
	}
	return db, nil
}

func isRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql://")
}

// Migrate creates/updates the persist schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentableRow{}, &SystemMeta{})
}
