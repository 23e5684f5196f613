package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps every collection in process memory. It mirrors the
// semantics of Repository and backs DATA_BACKEND=memory and the test suites.
type MemoryRepository struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[uuid.UUID]models.User
	transactions map[uuid.UUID]models.Transaction
	budgets      map[uuid.UUID]models.Budget
	savings      map[uuid.UUID]models.Saving
	goals        map[uuid.UUID]models.Goal
	flags        map[uuid.UUID]models.FeatureFlag
	contacts     []models.Contact
}

// NewMemoryRepository returns an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[uuid.UUID]models.User),
		transactions: make(map[uuid.UUID]models.Transaction),
		budgets:      make(map[uuid.UUID]models.Budget),
		savings:      make(map[uuid.UUID]models.Saving),
		goals:        make(map[uuid.UUID]models.Goal),
		flags:        make(map[uuid.UUID]models.FeatureFlag),
	}
}

var _ Store = (*MemoryRepository)(nil)

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }

// ---------- users ----------

func (m *MemoryRepository) userTaken(user *models.User) bool {
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if m.userTaken(user) {
		return ErrDuplicate
	}
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryRepository) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryRepository) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *MemoryRepository) ListUsers(context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

func (m *MemoryRepository) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if m.userTaken(user) {
		return ErrDuplicate
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.Role = user.Role
	stored.IsSuspended = user.IsSuspended
	stored.UpdatedAt = m.now()
	m.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepository) AdjustUserSavings(_ context.Context, userID uuid.UUID, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if u.Savings+delta < 0 {
		return 0, ErrInsufficientSavings
	}
	u.Savings += delta
	u.UpdatedAt = m.now()
	m.users[userID] = u
	return u.Savings, nil
}

// ---------- transactions ----------

func (m *MemoryRepository) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = m.now()
	tx.UpdatedAt = tx.CreatedAt
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *MemoryRepository) FindTransactionByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepository) UpdateTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.transactions[tx.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Type = tx.Type
	stored.Category = tx.Category
	stored.Amount = tx.Amount
	stored.Date = tx.Date
	stored.Description = tx.Description
	stored.UpdatedAt = m.now()
	m.transactions[tx.ID] = stored
	tx.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepository) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchesFilter(t *models.Transaction, f *models.TransactionFilter) bool {
	switch {
	case !f.AllUsers && t.UserID != f.UserID:
		return false
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.Category != "" && !containsFold(t.Category, f.Category):
		return false
	case f.Search != "" && !containsFold(t.Description, f.Search) && !containsFold(t.Category, f.Search):
		return false
	case f.StartDate != nil && t.Date.Before(*f.StartDate):
		return false
	case f.EndDate != nil && t.Date.After(*f.EndDate):
		return false
	}
	return true
}

func transactionLess(field string, a, b *models.Transaction) int {
	switch field {
	case "amount":
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "type":
		return strings.Compare(string(a.Type), string(b.Type))
	default:
		return a.Date.Compare(b.Date)
	}
	return 0
}

func (m *MemoryRepository) ListTransactions(_ context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	m.mu.RLock()
	matched := make([]models.Transaction, 0)
	for _, t := range m.transactions {
		if matchesFilter(&t, &f) {
			matched = append(matched, t)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		c := transactionLess(f.SortField, &matched[i], &matched[j])
		if c == 0 {
			c = strings.Compare(matched[i].ID.String(), matched[j].ID.String())
		}
		if f.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.Limit
		if start > total {
			start = total
		}
		end := start + f.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *MemoryRepository) TransactionsBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !t.Date.Before(to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// ---------- budgets ----------

func (m *MemoryRepository) budgetTaken(b *models.Budget) bool {
	for id, other := range m.budgets {
		if id != b.ID && other.UserID == b.UserID && other.Category == b.Category {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) CreateBudget(_ context.Context, budget *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	if m.budgetTaken(budget) {
		return ErrDuplicate
	}
	budget.CreatedAt = m.now()
	budget.UpdatedAt = budget.CreatedAt
	m.budgets[budget.ID] = *budget
	return nil
}

func (m *MemoryRepository) FindBudgetByID(_ context.Context, id uuid.UUID) (*models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryRepository) ListBudgets(_ context.Context, userID uuid.UUID) ([]models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Budget, 0)
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *MemoryRepository) UpdateBudget(_ context.Context, budget *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.budgets[budget.ID]
	if !ok {
		return ErrNotFound
	}
	candidate := stored
	candidate.Category = budget.Category
	if m.budgetTaken(&candidate) {
		return ErrDuplicate
	}
	stored.Category = budget.Category
	stored.Limit = budget.Limit
	stored.UpdatedAt = m.now()
	m.budgets[budget.ID] = stored
	budget.Spent = stored.Spent
	budget.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepository) DeleteBudget(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[id]; !ok {
		return ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *MemoryRepository) AdjustBudgetSpent(_ context.Context, userID uuid.UUID, category string, delta float64) (*models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, b := range m.budgets {
		if b.UserID != userID || b.Category != category {
			continue
		}
		b.Spent += delta
		b.UpdatedAt = m.now()
		m.budgets[id] = b
		return &b, nil
	}
	return nil, nil
}

// ---------- savings ----------

func (m *MemoryRepository) CreateSaving(_ context.Context, saving *models.Saving) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if saving.ID == uuid.Nil {
		saving.ID = uuid.New()
	}
	saving.CreatedAt = m.now()
	m.savings[saving.ID] = *saving
	return nil
}

func (m *MemoryRepository) FindSavingByID(_ context.Context, id uuid.UUID) (*models.Saving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.savings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) ListSavings(_ context.Context, userID uuid.UUID) ([]models.Saving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Saving, 0)
	for _, s := range m.savings {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryRepository) UpdateSaving(_ context.Context, saving *models.Saving) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.savings[saving.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Date = saving.Date
	stored.Note = saving.Note
	m.savings[saving.ID] = stored
	return nil
}

func (m *MemoryRepository) DeleteSaving(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.savings[id]; !ok {
		return ErrNotFound
	}
	delete(m.savings, id)
	return nil
}

// ---------- goals ----------

func cloneGoal(g models.Goal) models.Goal {
	g.Contributions = append([]models.Contribution{}, g.Contributions...)
	return g
}

func (m *MemoryRepository) CreateGoal(_ context.Context, goal *models.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.Contributions == nil {
		goal.Contributions = []models.Contribution{}
	}
	goal.CreatedAt = m.now()
	goal.UpdatedAt = goal.CreatedAt
	m.goals[goal.ID] = cloneGoal(*goal)
	return nil
}

func (m *MemoryRepository) FindGoalByID(_ context.Context, id uuid.UUID) (*models.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	g = cloneGoal(g)
	return &g, nil
}

func (m *MemoryRepository) listGoals(match func(*models.Goal) bool) []models.Goal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Goal, 0)
	for _, g := range m.goals {
		if match(&g) {
			out = append(out, cloneGoal(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *MemoryRepository) ListGoals(_ context.Context, userID uuid.UUID) ([]models.Goal, error) {
	return m.listGoals(func(g *models.Goal) bool { return g.UserID == userID }), nil
}

func (m *MemoryRepository) UpdateGoal(_ context.Context, goal *models.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.goals[goal.ID]
	if !ok {
		return ErrNotFound
	}
	goal.CreatedAt = stored.CreatedAt
	goal.UpdatedAt = m.now()
	m.goals[goal.ID] = cloneGoal(*goal)
	return nil
}

func (m *MemoryRepository) DeleteGoal(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[id]; !ok {
		return ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *MemoryRepository) GoalsWithReminderOn(_ context.Context, day time.Time) ([]models.Goal, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return m.listGoals(func(g *models.Goal) bool {
		return g.Status == models.GoalActive && g.ReminderDate != nil &&
			!g.ReminderDate.Before(start) && g.ReminderDate.Before(end)
	}), nil
}

// ---------- feature flags ----------

func (m *MemoryRepository) ListFeatureFlags(context.Context) ([]models.FeatureFlag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.FeatureFlag, 0, len(m.flags))
	for _, f := range m.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) FindFeatureFlagByID(_ context.Context, id uuid.UUID) (*models.FeatureFlag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (m *MemoryRepository) FindFeatureFlagByName(_ context.Context, name string) (*models.FeatureFlag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.flags {
		if f.Name == name {
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) flagTaken(flag *models.FeatureFlag) bool {
	for id, f := range m.flags {
		if id != flag.ID && f.Name == flag.Name {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) CreateFeatureFlag(_ context.Context, flag *models.FeatureFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}
	if m.flagTaken(flag) {
		return ErrDuplicate
	}
	flag.UpdatedAt = m.now()
	m.flags[flag.ID] = *flag
	return nil
}

func (m *MemoryRepository) UpdateFeatureFlag(_ context.Context, flag *models.FeatureFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flags[flag.ID]; !ok {
		return ErrNotFound
	}
	if m.flagTaken(flag) {
		return ErrDuplicate
	}
	flag.UpdatedAt = m.now()
	m.flags[flag.ID] = *flag
	return nil
}

func (m *MemoryRepository) DeleteFeatureFlag(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flags[id]; !ok {
		return ErrNotFound
	}
	delete(m.flags, id)
	return nil
}

// ---------- contacts ----------

func (m *MemoryRepository) CreateContact(_ context.Context, contact *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.CreatedAt = m.now()
	m.contacts = append(m.contacts, *contact)
	return nil
}

func (m *MemoryRepository) ListContacts(context.Context) ([]models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Contact, len(m.contacts))
	for i, c := range m.contacts {
		out[len(m.contacts)-1-i] = c
	}
	return out, nil
}
