package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/Dosada05/tournament-api/db/dbtest"
	"github.com/Dosada05/tournament-api/repositories"
	"github.com/Dosada05/tournament-api/storage"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) repositories.UnitOfWorkFactory {
	t.Helper()
	return repositories.NewSQLStore(dbtest.Open(t))
}

// forbiddenStore fails the test when anything touches the database.
type forbiddenStore struct{ t *testing.T }

func (f forbiddenStore) New() repositories.UnitOfWork {
	f.t.Fatal("store must not be accessed")
	return nil
}

// racingStore runs race right before the first Complete of every unit of
// work, simulating a writer that commits in between read and write.
type racingStore struct {
	repositories.UnitOfWorkFactory
	race func()
}

func (r *racingStore) New() repositories.UnitOfWork {
	return &racingUnitOfWork{UnitOfWork: r.UnitOfWorkFactory.New(), race: r.race}
}

type racingUnitOfWork struct {
	repositories.UnitOfWork
	race  func()
	raced bool
}

func (u *racingUnitOfWork) Complete(ctx context.Context) (int, error) {
	if !u.raced && u.race != nil {
		u.raced = true
		u.race()
	}
	return u.UnitOfWork.Complete(ctx)
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, kind, svcErr.Kind, "unexpected error: %v", err)
	return svcErr
}

type publishedEvent struct {
	Room, Type string
	Payload    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(room, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: room, Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

var _ storage.FileUploader = (*memoryUploader)(nil)

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (m *memoryUploader) Upload(_ context.Context, key, _ string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *memoryUploader) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
