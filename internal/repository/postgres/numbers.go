package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// sequentialPattern matches {yearPrefix}{digits} so random fallback numbers
// never seed the sequence.
func sequentialPattern(yearPrefix string) string {
	return "^" + regexp.QuoteMeta(yearPrefix) + "[0-9]+$"
}

func latestNumber(ctx context.Context, q queryer, table, column string, tenantID uuid.UUID, yearPrefix string) (string, error) {
	query := fmt.Sprintf(
		"SELECT %[2]s FROM %[1]s WHERE tenant_id = $1 AND %[2]s ~ $2 ORDER BY created_at DESC, %[2]s DESC LIMIT 1",
		table, column)
	var number string
	err := q.GetContext(ctx, &number, query, tenantID, sequentialPattern(yearPrefix))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

func numberExists(ctx context.Context, q queryer, table, column string, tenantID uuid.UUID, number string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE tenant_id = $1 AND %s = $2)", table, column)
	var exists bool
	if err := q.GetContext(ctx, &exists, query, tenantID, number); err != nil {
		return false, err
	}
	return exists, nil
}
