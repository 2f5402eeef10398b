package application

import (
	"context"
	"errors"
	"time"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

// In-memory stand-ins for the ports. Each fake only models the behavior
// the services under test exercise.

type fakeConnectionRepo struct {
	connections map[string]*domain.Connection
	saveErr     error
	lookupErr   error
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{connections: make(map[string]*domain.Connection)}
}

func (r *fakeConnectionRepo) Save(_ context.Context, conn *domain.Connection) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *conn
	r.connections[conn.ID] = &copied
	return nil
}

func (r *fakeConnectionRepo) GetActiveByUser(_ context.Context, userID, provider string) (*domain.Connection, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, conn := range r.connections {
		if conn.UserID == userID && conn.Provider == provider && conn.IsActive {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) GetByAccount(_ context.Context, provider, accountID string) (*domain.Connection, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, conn := range r.connections {
		if conn.Provider == provider && conn.AccountID == accountID {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.connections[id]; !ok {
		return domain.NewNotFoundError("connection", id)
	}
	delete(r.connections, id)
	return nil
}

type fakeProvider struct {
	name          string
	accountScoped bool
	token         string
	scopes        []string
	exchangeErr   error
	info          *domain.AccountInfo
	infoErr       error

	exchangedAccount string
	exchangedCode    string
}

func (p *fakeProvider) Name() string        { return p.name }
func (p *fakeProvider) AccountScoped() bool { return p.accountScoped }

func (p *fakeProvider) AuthorizeURL(account, state string) (string, error) {
	return "https://" + p.name + ".example.com/authorize?account=" + account + "&state=" + state, nil
}

func (p *fakeProvider) ExchangeCode(_ context.Context, account, code string) (string, []string, error) {
	if p.exchangeErr != nil {
		return "", nil, p.exchangeErr
	}
	p.exchangedAccount = account
	p.exchangedCode = code
	return p.token, p.scopes, nil
}

func (p *fakeProvider) AccountInfo(_ context.Context, _, _ string) (*domain.AccountInfo, error) {
	if p.infoErr != nil {
		return nil, p.infoErr
	}
	return p.info, nil
}

var _ ports.ProviderClient = (*fakeProvider)(nil)

// fakeWebhookProvider is a provider that also exposes the webhook API,
// so RegisterProvider wires subscription management for it.
type fakeWebhookProvider struct {
	fakeProvider
	fakeWebhookAPI
}

type fakeWebhookAPI struct {
	nextID     int64
	failTopics map[string]bool
	createErr  error
	remote     []domain.RemoteWebhook
	listErr    error
	deleteErr  error

	createdTopics []string
	deletedIDs    []int64
}

func (a *fakeWebhookAPI) CreateWebhook(_ context.Context, _, _, topic, _ string) (int64, error) {
	if a.createErr != nil {
		return 0, a.createErr
	}
	if a.failTopics[topic] {
		return 0, errors.New("topic rejected")
	}
	a.nextID++
	a.createdTopics = append(a.createdTopics, topic)
	return a.nextID, nil
}

func (a *fakeWebhookAPI) ListWebhooks(_ context.Context, _, _ string) ([]domain.RemoteWebhook, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.remote, nil
}

func (a *fakeWebhookAPI) DeleteWebhook(_ context.Context, _, _ string, id int64) error {
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedIDs = append(a.deletedIDs, id)
	return nil
}

var _ ports.ProviderWebhookAPI = (*fakeWebhookAPI)(nil)

type fakeApprovalStore struct {
	records  []domain.ApprovalRecord
	modified time.Time
	getErr   error
	modErr   error

	replaced [][]domain.ApprovalRecord
}

func (s *fakeApprovalStore) GetAll(_ context.Context) ([]domain.ApprovalRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]domain.ApprovalRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeApprovalStore) ReplaceAll(_ context.Context, records []domain.ApprovalRecord) error {
	s.records = records
	s.replaced = append(s.replaced, records)
	return nil
}

func (s *fakeApprovalStore) LastModified(_ context.Context) (time.Time, error) {
	if s.modErr != nil {
		return time.Time{}, s.modErr
	}
	return s.modified, nil
}

type fakeRejectionStore struct {
	records  []domain.RejectionRecord
	modified time.Time
	getErr   error
	modErr   error
}

func (s *fakeRejectionStore) GetAll(_ context.Context) ([]domain.RejectionRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.records, nil
}

func (s *fakeRejectionStore) ReplaceAll(_ context.Context, records []domain.RejectionRecord) error {
	s.records = records
	return nil
}

func (s *fakeRejectionStore) LastModified(_ context.Context) (time.Time, error) {
	if s.modErr != nil {
		return time.Time{}, s.modErr
	}
	return s.modified, nil
}

type fakeMarkerStore struct {
	exists    bool
	existsErr error
}

func (m *fakeMarkerStore) Exists(_ context.Context) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *fakeMarkerStore) Clear(_ context.Context) error {
	m.exists = false
	return nil
}
