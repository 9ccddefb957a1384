package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/mailer"
	"maintenance-system/pkg/types"
)

// fakeStore - общее состояние in-memory репозиториев.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	requests      map[uint64]entities.Request
	equipment     map[uint64]entities.Equipment
	notifications map[uint64]entities.Notification
	history       []entities.RequestHistory
	nextID        uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:      make(map[uint64]entities.Request),
		equipment:     make(map[uint64]entities.Equipment),
		notifications: make(map[uint64]entities.Notification),
	}
}

func (st *fakeStore) id() uint64 {
	st.nextID++
	return st.nextID
}

func (st *fakeStore) addEquipment(id uint64, status constants.EquipmentStatus) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.equipment[id] = entities.Equipment{ID: id, LabID: 1, Name: fmt.Sprintf("Centrifuge %d", id), Status: status}
}

func (st *fakeStore) equipmentStatus(id uint64) constants.EquipmentStatus {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.equipment[id].Status
}

func (st *fakeStore) request(id uint64) entities.Request {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.requests[id]
}

func (st *fakeStore) notificationList() []entities.Notification {
	st.mu.Lock()
	defer st.mu.Unlock()
	list := make([]entities.Notification, 0, len(st.notifications))
	for _, n := range st.notifications {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (st *fakeStore) historyLen() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.history)
}

type snapshot struct {
	requests      map[uint64]entities.Request
	equipment     map[uint64]entities.Equipment
	notifications map[uint64]entities.Notification
	history       []entities.RequestHistory
	nextID        uint64
}

func (st *fakeStore) snapshot() snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := snapshot{
		requests:      make(map[uint64]entities.Request, len(st.requests)),
		equipment:     make(map[uint64]entities.Equipment, len(st.equipment)),
		notifications: make(map[uint64]entities.Notification, len(st.notifications)),
		history:       append([]entities.RequestHistory(nil), st.history...),
		nextID:        st.nextID,
	}
	for k, v := range st.requests {
		s.requests[k] = v
	}
	for k, v := range st.equipment {
		s.equipment[k] = v
	}
	for k, v := range st.notifications {
		s.notifications[k] = v
	}
	return s
}

func (st *fakeStore) restore(s snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.requests = s.requests
	st.equipment = s.equipment
	st.notifications = s.notifications
	st.history = s.history
	st.nextID = s.nextID
}

// fakeTxManager сериализует транзакции и откатывает состояние при ошибке или панике.
type fakeTxManager struct {
	st *fakeStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	m.st.txMu.Lock()
	defer m.st.txMu.Unlock()

	saved := m.st.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.st.restore(saved)
			panic(p)
		}
		if err != nil {
			m.st.restore(saved)
		}
	}()
	return fn(nil)
}

// -----------------------------------------------------------
// Заявки
// -----------------------------------------------------------

type fakeRequestRepo struct {
	st      *fakeStore
	pending []dto.AdminRequestDTO
}

var _ repositories.RequestRepositoryInterface = (*fakeRequestRepo)(nil)

func (r *fakeRequestRepo) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.Request) (uint64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	req.ID = r.st.id()
	stored := *req
	stored.Equipment = nil
	r.st.requests[req.ID] = stored
	return req.ID, nil
}

func (r *fakeRequestRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error) {
	return r.FindRequest(ctx, id)
}

func (r *fakeRequestRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.Request) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.requests[req.ID]; !ok {
		return apperrors.ErrNotFound
	}
	stored := *req
	stored.Equipment = nil
	r.st.requests[req.ID] = stored
	return nil
}

func (r *fakeRequestRepo) HasOpenRequestForEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uint64) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, req := range r.st.requests {
		if req.EquipmentID == equipmentID && req.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	req, ok := r.st.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) ListByStaff(ctx context.Context, staffID uint64, filter types.Filter) ([]entities.Request, uint64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	list := make([]entities.Request, 0)
	for _, req := range r.st.requests {
		if req.StaffID == staffID {
			list = append(list, req)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, uint64(len(list)), nil
}

func (r *fakeRequestRepo) ListPendingApprovals(ctx context.Context) ([]dto.AdminRequestDTO, error) {
	return r.pending, nil
}

func (r *fakeRequestRepo) CountPendingApprovals(ctx context.Context) (uint64, error) {
	return uint64(len(r.pending)), nil
}

func (r *fakeRequestRepo) ListReports(ctx context.Context, filter types.Filter) ([]dto.AdminRequestDTO, error) {
	return r.pending, nil
}

// -----------------------------------------------------------
// Оборудование
// -----------------------------------------------------------

type fakeEquipmentRepo struct {
	st            *fakeStore
	failSetStatus error
}

var _ repositories.EquipmentRepositoryInterface = (*fakeEquipmentRepo)(nil)

func (r *fakeEquipmentRepo) FindEquipmentForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.FindEquipment(ctx, id)
}

func (r *fakeEquipmentRepo) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status constants.EquipmentStatus) error {
	if r.failSetStatus != nil {
		return r.failSetStatus
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	eq, ok := r.st.equipment[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	eq.Status = status
	r.st.equipment[id] = eq
	return nil
}

func (r *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	eq, ok := r.st.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &eq, nil
}

func (r *fakeEquipmentRepo) ListByLab(ctx context.Context, labID uint64) ([]entities.Equipment, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	list := make([]entities.Equipment, 0)
	for _, eq := range r.st.equipment {
		if eq.LabID == labID {
			list = append(list, eq)
		}
	}
	return list, nil
}

// -----------------------------------------------------------
// Уведомления и история
// -----------------------------------------------------------

type fakeNotificationRepo struct {
	st *fakeStore
}

var _ repositories.NotificationRepositoryInterface = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) (uint64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n.ID = r.st.id()
	n.CreatedAt = time.Now()
	r.st.notifications[n.ID] = *n
	return n.ID, nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uint64) (*entities.Notification, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &n, nil
}

func (r *fakeNotificationRepo) matches(n entities.Notification, role constants.Role, staffID uint64) bool {
	return n.UserRole == role && (staffID == 0 || n.StaffID == staffID)
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, role constants.Role, staffID uint64, filter types.Filter) ([]dto.NotificationDTO, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	list := make([]dto.NotificationDTO, 0)
	for _, n := range r.st.notifications {
		if !r.matches(n, role, staffID) {
			continue
		}
		d := dto.NotificationDTO{
			ID: n.ID, UserRole: n.UserRole.String(), Type: n.Type, Title: n.Title, Message: n.Message,
			IsRead: n.IsRead, Timestamp: n.CreatedAt, RequestID: n.RequestID, StaffID: n.StaffID,
		}
		if req, ok := r.st.requests[n.RequestID]; ok {
			d.EquipmentID = req.EquipmentID
			d.EquipmentName = r.st.equipment[req.EquipmentID].Name
		}
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, role constants.Role, staffID uint64) (uint64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var count uint64
	for _, n := range r.st.notifications {
		if r.matches(n, role, staffID) && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uint64, role constants.Role, staffID uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.notifications[id]
	if !ok || !r.matches(n, role, staffID) {
		return apperrors.ErrNotFound
	}
	n.IsRead = true
	r.st.notifications[id] = n
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uint64, role constants.Role, staffID uint64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.notifications[id]
	if !ok || !r.matches(n, role, staffID) {
		return apperrors.ErrNotFound
	}
	delete(r.st.notifications, id)
	return nil
}

type fakeHistoryRepo struct {
	st *fakeStore
}

var _ repositories.RequestHistoryRepositoryInterface = (*fakeHistoryRepo)(nil)

func (r *fakeHistoryRepo) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.RequestHistory) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	h.ID = r.st.id()
	h.CreatedAt = time.Now()
	r.st.history = append(r.st.history, *h)
	return nil
}

func (r *fakeHistoryRepo) FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	list := make([]entities.RequestHistory, 0)
	for _, h := range r.st.history {
		if h.RequestID == requestID {
			list = append(list, h)
		}
	}
	return list, nil
}

// -----------------------------------------------------------
// Получатели, кеш, почта, шина
// -----------------------------------------------------------

type fakeRecipientRepo struct {
	mu         sync.Mutex
	recipients map[string]entities.Recipient
	calls      int
}

func recipientKey(role constants.Role, staffID uint64) string {
	return fmt.Sprintf("%s/%d", role, staffID)
}

func (r *fakeRecipientRepo) FindRecipient(ctx context.Context, role constants.Role, staffID uint64) (*entities.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	rc, ok := r.recipients[recipientKey(role, staffID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rc, nil
}

// UpdateNotifyEmail обновляет все записи роли с тем же адресом:
// так администратор общий для нескольких сотрудников.
func (r *fakeRecipientRepo) UpdateNotifyEmail(ctx context.Context, role constants.Role, staffID uint64, enabled bool) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.recipients[recipientKey(role, staffID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	var updated []uint64
	for key, rc := range r.recipients {
		var id uint64
		if _, err := fmt.Sscanf(key, string(role)+"/%d", &id); err != nil || rc.Email != target.Email {
			continue
		}
		rc.NotifyEmail = enabled
		r.recipients[key] = rc
		updated = append(updated, id)
	}
	return updated, nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	failGet error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return "", c.failGet
	}
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []mailer.Message
	err   error
	block bool
}

func (s *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	block, err := s.block, s.err
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
