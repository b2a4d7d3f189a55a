package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID int
}

func dryRun(t *testing.T, specs ...Specification) string {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=dry"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	var rows []row
	stmt := ApplyAll(db.Table("reflections"), specs...).Find(&rows).Statement
	return stmt.SQL.String()
}

func TestSessionScopedQuery(t *testing.T) {
	sql := dryRun(t, BySessionID{SessionID: "abc"}, OrderBy{Field: "created_at", Desc: true}, Pagination{Limit: 5, Offset: 10})
	assert.Contains(t, sql, "session_id = ")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT")
}

func TestOrderByIgnoresUnknownColumns(t *testing.T) {
	sql := dryRun(t, OrderBy{Field: "created_at; DROP TABLE reflections", Desc: true})
	assert.NotContains(t, sql, "DROP")
	assert.NotContains(t, sql, "ORDER BY")
}
