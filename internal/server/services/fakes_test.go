package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/capsules"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/users"
)

// -------- test fakes --------

// fakeCapsuleRepo is an in-memory capsules.Repository with the same owner
// scoping as the SQL implementation.
type fakeCapsuleRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Capsule
	err       error
	listCalls int
}

func newFakeCapsuleRepo() *fakeCapsuleRepo {
	return &fakeCapsuleRepo{rows: map[string]models.Capsule{}}
}

func (f *fakeCapsuleRepo) Create(ctx context.Context, c *models.Capsule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCapsuleRepo) get(ownerID, id string) (*models.Capsule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.rows[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeCapsuleRepo) GetByID(ctx context.Context, ownerID, id string) (*models.Capsule, error) {
	return f.get(ownerID, id)
}

func (f *fakeCapsuleRepo) GetByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Capsule, error) {
	return f.get(ownerID, id)
}

func (f *fakeCapsuleRepo) owned(ownerID string) []models.Capsule {
	var out []models.Capsule
	for _, c := range f.rows {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeCapsuleRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.owned(ownerID)), nil
}

func (f *fakeCapsuleRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Capsule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.listCalls++
	all := f.owned(ownerID)
	var out []*models.Capsule
	for i := offset; i < len(all) && i < offset+limit; i++ {
		c := all[i]
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeCapsuleRepo) Update(ctx context.Context, c *models.Capsule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cur, ok := f.rows[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return common.ErrorNotFound
	}
	cur.Message = c.Message
	cur.UnlockAt = c.UnlockAt
	cur.AttachmentKey = c.AttachmentKey
	cur.UpdatedAt = c.UpdatedAt
	f.rows[c.ID] = cur
	return nil
}

func (f *fakeCapsuleRepo) Delete(ctx context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c, ok := f.rows[id]
	if !ok || c.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCapsuleRepo) MarkRetired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, c := range f.rows {
		if !c.Retired && c.UnlockAt.Before(cutoff) {
			c.Retired = true
			c.UpdatedAt = now
			f.rows[id] = c
			n++
		}
	}
	return n, nil
}

func (f *fakeCapsuleRepo) row(id string) models.Capsule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	created   *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	c *fakeCapsuleRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository       { return m.u }
func (m *fakeRepoManager) Capsules(db dbx.DBTX) capsules.Repository { return m.c }

type fakeStore struct {
	putURL  string
	putErr  error
	getURL  string
	getErr  error
	delErr  error
	putKeys []string
	deleted []string
}

func (s *fakeStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.putKeys = append(s.putKeys, key)
	return s.putURL, nil
}

func (s *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.getURL + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.delErr
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
