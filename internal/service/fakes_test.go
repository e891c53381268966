package service

import (
	"context"
	"sort"
	"time"

	"hrm/internal/model"
	"hrm/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the query semantics of the real
// gorm-backed implementations closely enough for state-machine and ledger
// tests to run without a database.

type fakeRequestRepo struct {
	rows map[uuid.UUID]model.TimeOffRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: map[uuid.UUID]model.TimeOffRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.TimeOffRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()
	f.rows[req.ID] = *req
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.TimeOffRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.TimeOffRequest, int64, error) {
	var result []model.TimeOffRequest
	for _, row := range f.rows {
		if filter.EmployeeID != nil && row.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && row.Kind != filter.Kind {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, int64(len(result)), nil
}

func (f *fakeRequestRepo) ListApprovedLeaveInRange(_ context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.TimeOffRequest, error) {
	var result []model.TimeOffRequest
	for _, row := range f.rows {
		if row.EmployeeID != employeeID || row.Kind != model.RequestKindLeave || row.Status != model.RequestStatusApproved {
			continue
		}
		if row.StartDate.After(to) || row.EndDate.Before(from) {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func (f *fakeRequestRepo) ListUpcoming(_ context.Context, employeeID uuid.UUID, asOf time.Time) ([]model.TimeOffRequest, error) {
	var result []model.TimeOffRequest
	for _, row := range f.rows {
		if row.EmployeeID != employeeID || row.StartDate.Before(asOf) {
			continue
		}
		if row.Status != model.RequestStatusPending && row.Status != model.RequestStatusApproved {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *model.TimeOffRequest) error {
	if _, ok := f.rows[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.rows[req.ID] = *req
	return nil
}

type quotaKey struct {
	employee uuid.UUID
	year     int
	month    int
}

type fakeQuotaRepo struct {
	rows    map[quotaKey]model.LeaveQuota
	failFor map[uuid.UUID]error // employees whose upserts are forced to fail
	locked  []uuid.UUID
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{
		rows:    map[quotaKey]model.LeaveQuota{},
		failFor: map[uuid.UUID]error{},
	}
}

func (f *fakeQuotaRepo) FindByPeriod(_ context.Context, employeeID uuid.UUID, year, month int) (*model.LeaveQuota, error) {
	row, ok := f.rows[quotaKey{employeeID, year, month}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeQuotaRepo) Upsert(_ context.Context, quota *model.LeaveQuota) error {
	if err, ok := f.failFor[quota.EmployeeID]; ok {
		return err
	}
	key := quotaKey{quota.EmployeeID, quota.Year, quota.Month}
	if existing, ok := f.rows[key]; ok {
		quota.ID = existing.ID
	} else if quota.ID == uuid.Nil {
		quota.ID = uuid.New()
	}
	f.rows[key] = *quota
	return nil
}

func (f *fakeQuotaRepo) ListByEmployee(_ context.Context, employeeID uuid.UUID, year int) ([]model.LeaveQuota, error) {
	var result []model.LeaveQuota
	for _, row := range f.rows {
		if row.EmployeeID != employeeID {
			continue
		}
		if year > 0 && row.Year != year {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}

func (f *fakeQuotaRepo) LockEmployee(_ context.Context, employeeID uuid.UUID) error {
	f.locked = append(f.locked, employeeID)
	return nil
}

type fakeEmployeeRepo struct {
	rows map[uuid.UUID]model.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{rows: map[uuid.UUID]model.Employee{}}
}

func (f *fakeEmployeeRepo) add(departmentID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.rows[id] = model.Employee{ID: id, Username: id.String()[:8], Role: model.RoleStaff, DepartmentID: departmentID}
	return id
}

func (f *fakeEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	f.rows[employee.ID] = *employee
	return nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, row := range f.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) GetByUsername(_ context.Context, username string) (*model.Employee, error) {
	for _, row := range f.rows {
		if row.Username == username {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepo) List(_ context.Context, page, limit int) ([]model.Employee, int64, error) {
	all, _ := f.ListActive(context.Background(), nil)
	return all, int64(len(all)), nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context, departmentID *uuid.UUID) ([]model.Employee, error) {
	var result []model.Employee
	for _, row := range f.rows {
		if departmentID != nil && (row.DepartmentID == nil || *row.DepartmentID != *departmentID) {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	f.rows[employee.ID] = *employee
	return nil
}

func (f *fakeEmployeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakeDepartmentRepo struct {
	rows map[uuid.UUID]model.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{rows: map[uuid.UUID]model.Department{}}
}

func (f *fakeDepartmentRepo) add(code string) uuid.UUID {
	id := uuid.New()
	f.rows[id] = model.Department{ID: id, Code: code, Name: code}
	return id
}

func (f *fakeDepartmentRepo) Create(_ context.Context, department *model.Department) error {
	if department.ID == uuid.Nil {
		department.ID = uuid.New()
	}
	f.rows[department.ID] = *department
	return nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Department, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *fakeDepartmentRepo) GetByCode(_ context.Context, code string) (*model.Department, error) {
	for _, row := range f.rows {
		if row.Code == code {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, row := range f.rows {
		result = append(result, row)
	}
	return result, nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

// fakeTxManager runs the unit of work directly; fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
