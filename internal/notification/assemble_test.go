package notification

import (
	"testing"

	"github.com/dxgrid/acl-notify/internal/domain"
	"github.com/dxgrid/acl-notify/internal/infra/postgresql"
)

var testCaller = domain.Identity{
	ID:                "U1",
	FirstName:         "Ada",
	LastName:          "Smith",
	Email:             "ada@x.com",
	ResourceServerURL: "rs://a",
	Role:              domain.RoleConsumer,
}

func TestAssembleConsumerPerspective(t *testing.T) {
	t.Parallel()

	row := postgresql.Row{
		"status":         "PENDING",
		"ownerId":        "P1",
		"ownerFirstName": "Jo",
		"ownerLastName":  "Doe",
		"ownerEmailId":   "jo@x.com",
		"consumerId":     "U1",
	}

	records := Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	record := records[0]

	if record["status"] != "PENDING" {
		t.Fatalf("status = %v, want PENDING", record["status"])
	}
	if record["resourceServerURL"] != "rs://a" {
		t.Fatalf("resourceServerURL = %v, want rs://a", record["resourceServerURL"])
	}

	consumer, ok := record["consumer"].(map[string]any)
	if !ok {
		t.Fatal("consumer identity missing")
	}
	if consumer["id"] != "U1" || consumer["email"] != "ada@x.com" {
		t.Fatalf("consumer = %v, want caller identity", consumer)
	}

	provider, ok := record["provider"].(map[string]any)
	if !ok {
		t.Fatal("provider identity missing")
	}
	if provider["id"] != "P1" || provider["email"] != "jo@x.com" {
		t.Fatalf("provider = %v, want owner identity", provider)
	}
	name, ok := provider["name"].(map[string]any)
	if !ok {
		t.Fatal("provider name missing")
	}
	if name["firstName"] != "Jo" || name["lastName"] != "Doe" {
		t.Fatalf("provider name = %v, want Jo Doe", name)
	}

	for _, raw := range []string{"ownerId", "ownerFirstName", "ownerLastName", "ownerEmailId", "consumerId"} {
		if _, ok := record[raw]; ok {
			t.Fatalf("raw column %q must be stripped", raw)
		}
	}
}

func TestAssembleProviderPerspective(t *testing.T) {
	t.Parallel()

	caller := testCaller
	caller.Role = domain.RoleProviderDelegate

	row := postgresql.Row{
		"status":            "GRANTED",
		"consumerId":        "C9",
		"consumerFirstName": "Max",
		"consumerLastName":  "Ray",
		"consumerEmailId":   "max@x.com",
		"ownerId":           "U1",
	}

	records := Assemble([]postgresql.Row{row}, caller, domain.PerspectiveProvider)
	record := records[0]

	provider, ok := record["provider"].(map[string]any)
	if !ok {
		t.Fatal("provider identity missing")
	}
	if provider["id"] != "U1" {
		t.Fatalf("provider id = %v, want caller id U1", provider["id"])
	}

	consumer, ok := record["consumer"].(map[string]any)
	if !ok {
		t.Fatal("consumer identity missing")
	}
	if consumer["id"] != "C9" || consumer["email"] != "max@x.com" {
		t.Fatalf("consumer = %v, want counterpart identity", consumer)
	}

	for _, raw := range []string{"consumerId", "consumerFirstName", "consumerLastName", "consumerEmailId", "ownerId"} {
		if _, ok := record[raw]; ok {
			t.Fatalf("raw column %q must be stripped", raw)
		}
	}
}

func TestAssembleMissingCounterpartColumns(t *testing.T) {
	t.Parallel()

	row := postgresql.Row{"status": "PENDING"}

	records := Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)
	record := records[0]

	provider, ok := record["provider"].(map[string]any)
	if !ok {
		t.Fatal("provider identity missing")
	}
	if provider["id"] != "" || provider["email"] != "" {
		t.Fatalf("provider = %v, want empty fields", provider)
	}
	name := provider["name"].(map[string]any)
	if name["firstName"] != "" || name["lastName"] != "" {
		t.Fatalf("provider name = %v, want empty fields", name)
	}
}

func TestAssembleNullCounterpartColumn(t *testing.T) {
	t.Parallel()

	row := postgresql.Row{
		"status":       "PENDING",
		"ownerEmailId": nil,
	}

	records := Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)
	provider := records[0]["provider"].(map[string]any)
	if provider["email"] != "" {
		t.Fatalf("email = %v, want empty for NULL column", provider["email"])
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	row := postgresql.Row{
		"status":  "PENDING",
		"ownerId": "P1",
	}

	_ = Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)

	if row["ownerId"] != "P1" {
		t.Fatal("input row must not be mutated")
	}
	if _, ok := row["consumer"]; ok {
		t.Fatal("input row must not gain identity keys")
	}
}

func TestAssembleIdempotentOnStrippedRows(t *testing.T) {
	t.Parallel()

	// A row that already lacks every raw column assembles cleanly both
	// times; delete on absent keys never raises.
	row := postgresql.Row{"status": "PENDING"}

	first := Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)
	second := Assemble([]postgresql.Row{row}, testCaller, domain.PerspectiveConsumer)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("lens = %d/%d, want 1/1", len(first), len(second))
	}
	if first[0]["status"] != second[0]["status"] {
		t.Fatal("repeated assembly must agree")
	}
}

func TestAssemblePreservesOrder(t *testing.T) {
	t.Parallel()

	rows := []postgresql.Row{
		{"requestId": "r1"},
		{"requestId": "r2"},
		{"requestId": "r3"},
	}

	records := Assemble(rows, testCaller, domain.PerspectiveProvider)
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []string{"r1", "r2", "r3"} {
		if records[i]["requestId"] != want {
			t.Fatalf("records[%d].requestId = %v, want %s", i, records[i]["requestId"], want)
		}
	}
}
