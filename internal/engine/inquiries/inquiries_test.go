package inquiries

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"shootflow/internal/engine/orgctx"
	"shootflow/internal/engine/projects"
	pkgerrors "shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE inquiries (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address_line TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		converted_project_id TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE organization_customers (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		user_id TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		customer_id TEXT,
		technician_id TEXT,
		editor_id TEXT,
		project_manager_id TEXT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		address_line TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		latitude REAL,
		longitude REAL,
		status TEXT NOT NULL,
		scheduled_time INTEGER,
		calendar_event_id TEXT,
		delivery_token TEXT,
		delivery_enabled_at INTEGER,
		client_approval_status TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(db *sql.DB) *Service {
	return NewService(NewRepository(db), repositories.NewCustomerRepository(db), projects.NewRepository(db))
}

func adminCtx() *orgctx.Context {
	return &orgctx.Context{
		Org:           &models.Organization{ID: "org_1", Type: models.OrgTeam},
		User:          &models.User{ID: "usr_admin"},
		EffectiveRole: orgctx.RoleAdmin,
	}
}

func TestCreatePublicIntake(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	q, err := svc.Create("org_1", &CreateInput{Name: "Dana Reed", Email: "dana@example.com", AddressLine: "12 Ocean Ave"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if q.Status != models.InquiryNew {
		t.Errorf("status = %s, want NEW", q.Status)
	}

	if _, err := svc.Create("org_1", &CreateInput{Email: "dana@example.com"}); !errors.Is(err, pkgerrors.ErrInvalid) {
		t.Errorf("missing name error = %v, want invalid", err)
	}
	if _, err := svc.Create("org_1", &CreateInput{Name: "Dana", Email: "nope"}); !errors.Is(err, pkgerrors.ErrInvalid) {
		t.Errorf("bad email error = %v, want invalid", err)
	}
}

func TestListAndStatusScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	q, err := svc.Create("org_1", &CreateInput{Name: "Dana Reed", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Create("org_2", &CreateInput{Name: "Other Org", Email: "x@example.com"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := svc.List(adminCtx())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("list = %d inquiries, want 1 for org_1", len(got))
	}

	tech := &orgctx.Context{
		Org:           &models.Organization{ID: "org_1", Type: models.OrgTeam},
		User:          &models.User{ID: "usr_tech"},
		EffectiveRole: orgctx.RoleTechnician,
	}
	if _, err := svc.List(tech); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("technician list error = %v, want forbidden", err)
	}

	if _, err := svc.UpdateStatus(adminCtx(), q.ID, models.InquiryContacted); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	// CONVERTED is only reachable through Convert.
	if _, err := svc.UpdateStatus(adminCtx(), q.ID, models.InquiryConverted); !errors.Is(err, pkgerrors.ErrInvalid) {
		t.Errorf("direct CONVERTED error = %v, want invalid", err)
	}
}

func TestConvert(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	q, err := svc.Create("org_1", &CreateInput{Name: "Dana Reed", Email: "dana@example.com", AddressLine: "12 Ocean Ave", City: "Seaside"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	p, err := svc.Convert(adminCtx(), q.ID)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if p.Status != models.StatusBooked {
		t.Errorf("project status = %s, want BOOKED", p.Status)
	}
	if p.CustomerID == nil {
		t.Fatal("converted project should link a customer")
	}

	var customerEmail string
	if err := db.QueryRow(`SELECT email FROM organization_customers WHERE id = ?`, *p.CustomerID).Scan(&customerEmail); err != nil {
		t.Fatalf("customer row missing: %v", err)
	}
	if customerEmail != "dana@example.com" {
		t.Errorf("customer email = %s", customerEmail)
	}

	var status string
	var convertedID sql.NullString
	if err := db.QueryRow(`SELECT status, converted_project_id FROM inquiries WHERE id = ?`, q.ID).Scan(&status, &convertedID); err != nil {
		t.Fatalf("inquiry row missing: %v", err)
	}
	if status != "CONVERTED" || !convertedID.Valid || convertedID.String != p.ID {
		t.Errorf("inquiry after convert: status=%s converted=%v", status, convertedID)
	}

	// Converting twice conflicts.
	if _, err := svc.Convert(adminCtx(), q.ID); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Errorf("second Convert() error = %v, want conflict", err)
	}
}

func TestConvertReusesCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	if _, err := db.Exec(`
		INSERT INTO organization_customers (id, organization_id, name, email, created_at, updated_at)
		VALUES ('cus_existing', 'org_1', 'Dana Reed', 'dana@example.com', 100, 100)
	`); err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}

	q, err := svc.Create("org_1", &CreateInput{Name: "Dana Reed", Email: "dana@example.com", AddressLine: "12 Ocean Ave"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	p, err := svc.Convert(adminCtx(), q.ID)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if p.CustomerID == nil || *p.CustomerID != "cus_existing" {
		t.Error("conversion should reuse the matching customer record")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM organization_customers`).Scan(&n); err != nil {
		t.Fatalf("failed to count customers: %v", err)
	}
	if n != 1 {
		t.Errorf("customer count = %d, want 1", n)
	}
}

func TestConvertCrossOrg(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	q, err := svc.Create("org_2", &CreateInput{Name: "Dana Reed", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Convert(adminCtx(), q.ID); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("cross-org Convert() error = %v, want forbidden", err)
	}
}
