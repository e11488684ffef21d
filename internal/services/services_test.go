package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/store/memstore"
	"github.com/tudao164/KiemThuPhanMem/types"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.AccountEvent
	err    error
}

func (p *recordingPublisher) PublishAccountEvent(_ context.Context, event types.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) eventTypes() []types.AccountEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.AccountEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *memstore.Store
	codec    *auth.TokenCodec
	ledger   *auth.Ledger
	resolver *auth.Resolver
	events   *recordingPublisher
	authSvc  *AuthService
	taskSvc  *TaskService
	adminSvc *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: []byte("services-test"), TTL: 30 * time.Minute})
	require.NoError(t, err)
	ledger := auth.NewLedger(st.Revocations())
	events := &recordingPublisher{}
	users := st.Users()

	return &fixture{
		store:    st,
		codec:    codec,
		ledger:   ledger,
		resolver: auth.NewResolver(codec, ledger, users, nil),
		events:   events,
		authSvc:  NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), codec, ledger, events, logging.Nop()),
		taskSvc:  NewTaskService(st.Tasks()),
		adminSvc: NewAdminService(users, st.Stats(), nil, events, logging.Nop()),
	}
}

// register creates an account and returns the identity of a fresh login.
func (f *fixture) register(t *testing.T, email string) auth.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := f.authSvc.Register(ctx, RegisterInput{Email: email, Name: "Test User", Password: "secret123"})
	require.NoError(t, err)
	return f.login(t, email)
}

func (f *fixture) registerAdmin(t *testing.T, email string) auth.Identity {
	t.Helper()
	_, err := f.authSvc.CreateAdmin(context.Background(), RegisterInput{Email: email, Name: "Admin", Password: "secret123"})
	require.NoError(t, err)
	return f.login(t, email)
}

func (f *fixture) login(t *testing.T, email string) auth.Identity {
	t.Helper()
	ctx := context.Background()
	session, err := f.authSvc.Login(ctx, email, "secret123")
	require.NoError(t, err)
	identity, err := f.resolver.Resolve(ctx, session.AccessToken)
	require.NoError(t, err)
	return identity
}
