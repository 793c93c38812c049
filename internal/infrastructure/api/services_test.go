package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uyadmin.io/cli/internal/application/services"
	"uyadmin.io/cli/internal/core/domain"
	httpdomain "uyadmin.io/cli/internal/core/domain/http"
	authhttp "uyadmin.io/cli/internal/http"
	"uyadmin.io/cli/internal/infrastructure/auth"
	httpinfra "uyadmin.io/cli/internal/infrastructure/http"
	"uyadmin.io/cli/internal/stubapi"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	backend    *stubapi.Server
	clock      *clock
	store      *auth.MemoryCredentialStore
	auth       *AuthService
	categories *CategoryService
	properties *PropertyService
	saved      *SavedPropertyService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	clk := &clock{now: time.Now()}
	backend := stubapi.New(stubapi.Config{AccessTTL: time.Minute, Clock: clk.Now, Logger: logger})
	require.NoError(t, backend.RegisterUser("admin", "admin@example.com", "s3cret-pass"))
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	transport := httpinfra.NewStdHttpRequester(
		httpdomain.BackendEndpoint{BaseURL: server.URL, UserAgent: "uyadmin-test"},
		5*time.Second,
		httpinfra.WithLogger(logger),
	)
	store := auth.NewMemoryCredentialStore()
	provider := auth.NewHTTPTokenProvider(transport)
	refresher := services.NewAuthRefreshService(provider, store, time.Second, logger)
	client := authhttp.NewAuthenticatedClient(transport, store, refresher, logger)
	gateway := NewGateway(client)

	return &harness{
		backend:    backend,
		clock:      clk,
		store:      store,
		auth:       NewAuthService(transport, store, provider, logger),
		categories: NewCategoryService(gateway),
		properties: NewPropertyService(gateway),
		saved:      NewSavedPropertyService(gateway),
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.auth.Login(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	h := newHarness(t)

	resp, err := h.auth.Login(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	creds, err := h.auth.Credentials()
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{AccessToken: resp.Access, RefreshToken: resp.Refresh}, creds)

	claims, err := auth.ParseClaims(creds.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "access", claims.TokenType)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Login(context.Background(), "admin", "nope")

	assert.Equal(t, http.StatusUnauthorized, domain.StatusOf(err))
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
	creds, _ := h.auth.Credentials()
	assert.True(t, creds.IsEmpty())
}

func TestAuthService_LoginValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Login(context.Background(), "", "pw")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Register(context.Background(), domain.RegisterRequest{
		Username: "dilnoza", Email: "dilnoza@example.com", Password: "long-enough",
	})
	require.NoError(t, err)

	_, err = h.auth.Register(context.Background(), domain.RegisterRequest{
		Username: "dilnoza", Email: "dilnoza@example.com", Password: "long-enough",
	})
	assert.Equal(t, http.StatusBadRequest, domain.StatusOf(err))

	_, err = h.auth.Login(context.Background(), "dilnoza", "long-enough")
	assert.NoError(t, err)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.RefreshToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	h.login(t)
	before, _ := h.auth.Credentials()
	access, err := h.auth.RefreshToken(context.Background())
	require.NoError(t, err)
	after, _ := h.auth.Credentials()
	assert.Equal(t, access, after.AccessToken)
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.Equal(t, before.RefreshToken, after.RefreshToken)

	require.NoError(t, h.auth.Logout())
	creds, _ := h.auth.Credentials()
	assert.True(t, creds.IsEmpty())
}

func TestCatalog_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	category, err := h.categories.Create(ctx, domain.CategoryForm{Name: "Apartments", Description: "City flats"})
	require.NoError(t, err)
	got, err := h.categories.Get(ctx, category.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(category, got); diff != "" {
		t.Errorf("category mismatch (-created +fetched):\n%s", diff)
	}

	imagePath := filepath.Join(t.TempDir(), "front.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg bytes"), 0600))
	created, err := h.properties.Create(ctx, domain.PropertyForm{
		Title:       "Two-room flat",
		Description: "Near the metro",
		Price:       "85000",
		Location:    "Tashkent",
		Category:    itoa(category.ID),
		Status:      domain.StatusActive,
		Image1:      imagePath,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Image1)
	assert.Contains(t, *created.Image1, "front.jpg")
	assert.Nil(t, created.Image2)

	updated, err := h.properties.Update(ctx, created.ID, domain.PropertyPatch{Price: "80000", Status: domain.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, "80000", updated.Price)
	assert.Equal(t, created.Title, updated.Title)
	assert.False(t, updated.IsActive())

	list, err := h.properties.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]domain.Property{*updated}, list, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	saved, err := h.saved.Create(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, saved.Schedule.ID)

	savedList, err := h.saved.List(ctx)
	require.NoError(t, err)
	require.Len(t, savedList, 1)

	require.NoError(t, h.saved.Delete(ctx, saved.ID))
	require.NoError(t, h.properties.Delete(ctx, created.ID))

	_, err = h.properties.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, domain.StatusOf(err))
}

func TestCatalog_TransparentRefresh(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()
	before, _ := h.auth.Credentials()

	h.clock.Advance(2 * time.Minute)
	categories, err := h.categories.List(ctx)

	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.EqualValues(t, 1, h.backend.RefreshCalls())
	after, _ := h.auth.Credentials()
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.Equal(t, before.RefreshToken, after.RefreshToken)
}

func TestCatalog_ConcurrentExpiryRefreshesOnce(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.properties.List(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, h.backend.RefreshCalls())
}

func TestCatalog_RefreshTokenExpiredEndsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.clock.Advance(48 * time.Hour)

	_, err := h.saved.List(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	creds, _ := h.auth.Credentials()
	assert.True(t, creds.IsEmpty())
}

func TestPropertyService_ValidationBeforeSend(t *testing.T) {
	h := newHarness(t)

	_, err := h.properties.Create(context.Background(), domain.PropertyForm{
		Title: "x", Description: "y", Price: "cheap", Location: "z", Category: "1", Status: domain.StatusActive,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	_, err = h.properties.Update(context.Background(), 1, domain.PropertyPatch{Image1: "/does/not/exist.png"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image1", verr.Field)
}

func TestSavedPropertyService_RequiresPositiveID(t *testing.T) {
	h := newHarness(t)

	_, err := h.saved.Create(context.Background(), 0)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func itoa(i int) string {
	return fmt.Sprint(i)
}
