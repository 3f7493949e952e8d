package services

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. Transactions
// are a passthrough; the tests exercise business logic, not SQL.
type fakeRepository struct {
	mu sync.Mutex

	sessions   map[uint]*models.ProctoringSession
	violations map[uint][]models.Violation
	reports    map[uint]*models.SessionReport
	alerts     map[uint]*models.ProctoringAlert
	users      map[string]*models.User

	nextSessionID uint
	nextAlertID   uint
	nextViolID    uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		sessions:   map[uint]*models.ProctoringSession{},
		violations: map[uint][]models.Violation{},
		reports:    map[uint]*models.SessionReport{},
		alerts:     map[uint]*models.ProctoringAlert{},
		users:      map[string]*models.User{},
	}
}

func (f *fakeRepository) addUser(id string, role models.UserRole) {
	f.users[id] = &models.User{ID: id, Role: role, IsActive: true}
}

func (f *fakeRepository) Session() repositories.SessionRepository { return &fakeSessionRepo{f} }
func (f *fakeRepository) Alert() repositories.AlertRepository     { return &fakeAlertRepo{f} }
func (f *fakeRepository) User() repositories.UserRepository       { return &fakeUserRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ---- sessions ----

type fakeSessionRepo struct{ f *fakeRepository }

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if session.Status == models.SessionActive {
		for _, existing := range r.f.sessions {
			if existing.CandidateID == session.CandidateID && existing.Status == models.SessionActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.f.nextSessionID++
	session.ID = r.f.nextSessionID
	r.f.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) get(id uint) (*models.ProctoringSession, error) {
	session, ok := r.f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.get(id)
}

func (r *fakeSessionRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	session, err := r.get(id)
	if err != nil {
		return nil, err
	}
	session.Violations = append([]models.Violation(nil), r.f.violations[id]...)
	session.Report = r.f.reports[id]
	return session, nil
}

func (r *fakeSessionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.get(id)
}

func (r *fakeSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.ProctoringSession) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) GetActiveByCandidate(ctx context.Context, tx *gorm.DB, candidateID string) (*models.ProctoringSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, session := range r.f.sessions {
		if session.CandidateID == candidateID && session.Status == models.SessionActive {
			return session, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SessionStatus) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	session, err := r.get(id)
	if err != nil {
		return err
	}
	session.Status = status
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ProctoringSession, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.ProctoringSession
	for _, session := range r.f.sessions {
		if filters.Status != nil && session.Status != *filters.Status {
			continue
		}
		if filters.CandidateID != nil && session.CandidateID != *filters.CandidateID {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) ListForReview(ctx context.Context, tx *gorm.DB) ([]*models.ProctoringSession, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.ProctoringSession
	for id, session := range r.f.sessions {
		report, ok := r.f.reports[id]
		if !ok || session.Status != models.SessionCompleted {
			continue
		}
		if report.ReviewDecision != models.ReviewPending {
			continue
		}
		if report.IntegrityStatus == models.IntegrityClean {
			continue
		}
		session.Report = report
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RiskScore > out[j].RiskScore })
	return out, nil
}

func (r *fakeSessionRepo) GetByCandidate(ctx context.Context, tx *gorm.DB, candidateID string, filters repositories.SessionFilters) ([]*models.ProctoringSession, int64, error) {
	filters.CandidateID = &candidateID
	return r.List(ctx, tx, filters)
}

func (r *fakeSessionRepo) AppendViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.violations[violation.SessionID] {
		if existing.Position == violation.Position {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.nextViolID++
	violation.ID = r.f.nextViolID
	r.f.violations[violation.SessionID] = append(r.f.violations[violation.SessionID], *violation)
	return nil
}

func (r *fakeSessionRepo) GetViolations(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.Violation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return append([]models.Violation(nil), r.f.violations[sessionID]...), nil
}

func (r *fakeSessionRepo) GetViolationByPosition(ctx context.Context, tx *gorm.DB, sessionID uint, position int) (*models.Violation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i := range r.f.violations[sessionID] {
		if r.f.violations[sessionID][i].Position == position {
			v := r.f.violations[sessionID][i]
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) UpdateViolation(ctx context.Context, tx *gorm.DB, violation *models.Violation) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i := range r.f.violations[violation.SessionID] {
		if r.f.violations[violation.SessionID][i].Position == violation.Position {
			r.f.violations[violation.SessionID][i] = *violation
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) CreateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.reports[report.SessionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.f.reports[report.SessionID] = report
	return nil
}

func (r *fakeSessionRepo) GetReport(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.SessionReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	report, ok := r.f.reports[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (r *fakeSessionRepo) UpdateReport(ctx context.Context, tx *gorm.DB, report *models.SessionReport) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.reports[report.SessionID] = report
	return nil
}

// ---- alerts ----

type fakeAlertRepo struct{ f *fakeRepository }

func (r *fakeAlertRepo) Create(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.nextAlertID++
	alert.ID = r.f.nextAlertID
	r.f.alerts[alert.ID] = alert
	return nil
}

func (r *fakeAlertRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	alert, ok := r.f.alerts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return alert, nil
}

func (r *fakeAlertRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ProctoringAlert, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *fakeAlertRepo) Update(ctx context.Context, tx *gorm.DB, alert *models.ProctoringAlert) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.alerts[alert.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.alerts[alert.ID] = alert
	return nil
}

func (r *fakeAlertRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AlertFilters) ([]*models.ProctoringAlert, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.ProctoringAlert
	for _, alert := range r.f.alerts {
		if filters.SessionID != nil && alert.SessionID != *filters.SessionID {
			continue
		}
		if filters.AlertType != nil && alert.AlertType != *filters.AlertType {
			continue
		}
		if filters.Acknowledged != nil && alert.Acknowledged != *filters.Acknowledged {
			continue
		}
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeAlertRepo) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.ProctoringAlert, error) {
	alerts, _, err := r.List(ctx, tx, repositories.AlertFilters{SessionID: &sessionID})
	return alerts, err
}

func (r *fakeAlertRepo) CountUnacknowledged(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var count int64
	for _, alert := range r.f.alerts {
		if !alert.Acknowledged {
			count++
		}
	}
	return count, nil
}

// ---- users ----

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	_, ok := r.f.users[id]
	return ok, nil
}

func (r *fakeUserRepo) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return false, nil
	}
	return user.Role == role, nil
}
