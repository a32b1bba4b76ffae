package notification

import (
	"fmt"

	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/infra/postgresql"
)

// Record is one assembled notification ready for serialization: the
// original non-identity columns plus the resource server URL and the
// two identity objects.
type Record map[string]any

const (
	resourceServerURLKey = "resourceServerURL"
	consumerKey          = "consumer"
	providerKey          = "provider"
)

// Raw counterpart columns to strip per perspective. The trailing entry
// is the join key left redundant once the identities are attached.
var (
	ownerColumns    = []string{"ownerFirstName", "ownerLastName", "ownerId", "ownerEmailId", "consumerId"}
	consumerColumns = []string{"consumerFirstName", "consumerLastName", "consumerId", "consumerEmailId", "ownerId"}
)

// Assemble merges the caller identity and the extracted counterpart
// identity into every row. Input rows are never mutated; each record is
// a fresh map with the raw counterpart columns stripped. Assembly is
// total: rows missing counterpart columns produce identities with empty
// fields instead of failing.
func Assemble(rows []postgresql.Row, caller domain.Identity, perspective domain.Perspective) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, assembleRecord(row, caller, perspective))
	}
	return records
}

func assembleRecord(row postgresql.Row, caller domain.Identity, perspective domain.Perspective) Record {
	record := make(Record, len(row)+3)
	for key, value := range row {
		record[key] = value
	}

	record[resourceServerURLKey] = caller.ResourceServerURL
	callerInfo := identityObject(caller.ID, caller.FirstName, caller.LastName, caller.Email)

	if perspective == domain.PerspectiveConsumer {
		record[consumerKey] = callerInfo
		record[providerKey] = identityObject(
			stringField(row, "ownerId"),
			stringField(row, "ownerFirstName"),
			stringField(row, "ownerLastName"),
			stringField(row, "ownerEmailId"),
		)
		removeColumns(record, ownerColumns)
		return record
	}

	record[providerKey] = callerInfo
	record[consumerKey] = identityObject(
		stringField(row, "consumerId"),
		stringField(row, "consumerFirstName"),
		stringField(row, "consumerLastName"),
		stringField(row, "consumerEmailId"),
	)
	removeColumns(record, consumerColumns)
	return record
}

// identityObject builds the {email, name:{firstName,lastName}, id}
// shape shared by caller and counterpart.
func identityObject(id, firstName, lastName, email string) map[string]any {
	return map[string]any{
		"email": email,
		"name": map[string]any{
			"firstName": firstName,
			"lastName":  lastName,
		},
		"id": id,
	}
}

func stringField(row postgresql.Row, key string) string {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func removeColumns(record Record, columns []string) {
	for _, column := range columns {
		delete(record, column)
	}
}
