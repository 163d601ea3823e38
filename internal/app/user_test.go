package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/events"
	"github.com/guildradar/core/internal/result"
)

type userFixture struct {
	repo  *fakeRepo
	bus   *events.Bus
	rec   *recorder
	model *UserModel
}

func newUserFixture(t *testing.T, token string) *userFixture {
	t.Helper()

	repo := newFakeRepo()
	bus := events.NewBus(discardLogger())
	rec := &recorder{}
	bus.Subscribe(rec)

	session := NewSession(token, repo, bus, discardLogger())
	model := NewUserModel(repo, session, bus, discardLogger())
	t.Cleanup(model.Close)

	return &userFixture{repo: repo, bus: bus, rec: rec, model: model}
}

func currentUserResult(u domain.User) result.Result[*domain.User] {
	return result.Ok(&u)
}

func TestUserModel_LoadSuccess(t *testing.T) {
	f := newUserFixture(t, "token-1")
	me := testUser("me", "viewer")
	f.repo.currentResults = []result.Result[*domain.User]{currentUserResult(me)}
	f.repo.guildResults = []result.Result[[]domain.Guild]{
		result.Ok([]domain.Guild{{ID: "g1", Name: "Night Watch"}}),
	}

	f.model.Load(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseContent, state.Phase)
	require.NotNil(t, state.CurrentUser)
	assert.Equal(t, domain.UserID("me"), state.CurrentUser.ID)
	require.Len(t, state.Guilds, 1)
	assert.Equal(t, domain.GuildName("Night Watch"), state.Guilds[0].Name)

	published := f.rec.all()
	require.Len(t, published, 1)
	updated, ok := published[0].(events.UserDataUpdated)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("me"), updated.User.ID)
}

func TestUserModel_LoadKeepsFreshestStreamElement(t *testing.T) {
	f := newUserFixture(t, "token-1")
	stale := testUser("me", "stale")
	fresh := testUser("me", "fresh")
	f.repo.currentResults = []result.Result[*domain.User]{
		result.OkMeta(&stale, result.Metadata{CacheHit: true}),
		currentUserResult(fresh),
	}
	f.repo.guildResults = []result.Result[[]domain.Guild]{result.Ok([]domain.Guild{})}

	f.model.Load(context.Background())

	state := f.model.State()
	require.NotNil(t, state.CurrentUser)
	assert.Equal(t, domain.Username("fresh"), state.CurrentUser.Username)
}

func TestUserModel_LoadWithoutToken(t *testing.T) {
	f := newUserFixture(t, "")

	f.model.Load(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, result.ErrorTypeAuthentication, state.ErrorType)
}

func TestUserModel_LoadUserFailureIsFatal(t *testing.T) {
	f := newUserFixture(t, "token-1")
	f.repo.currentResults = []result.Result[*domain.User]{
		result.Fail[*domain.User](errors.New("boom"), result.ErrorTypeServer, true),
	}
	f.repo.guildResults = []result.Result[[]domain.Guild]{result.Ok([]domain.Guild{})}

	f.model.Load(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, result.ErrorTypeServer, state.ErrorType)
	assert.True(t, state.CanRetry)

	published := f.rec.all()
	require.Len(t, published, 1)
	netErr, ok := published[0].(events.NetworkError)
	require.True(t, ok)
	assert.Equal(t, "getCurrentUser", netErr.Operation)
}

func TestUserModel_LoadGuildFailureDegrades(t *testing.T) {
	f := newUserFixture(t, "token-1")
	me := testUser("me", "viewer")
	f.repo.currentResults = []result.Result[*domain.User]{currentUserResult(me)}
	f.repo.guildResults = []result.Result[[]domain.Guild]{
		result.Fail[[]domain.Guild](errors.New("boom"), result.ErrorTypeNetwork, true),
	}

	f.model.Load(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseContent, state.Phase)
	require.NotNil(t, state.CurrentUser)
	assert.Empty(t, state.Guilds)

	types := f.rec.typesSeen()
	assert.Contains(t, types, "network_error")
	assert.Contains(t, types, "user_data_updated")
}

func TestUserModel_UpdateUserSuccess(t *testing.T) {
	f := newUserFixture(t, "token-1")
	me := testUser("me", "viewer")
	f.repo.currentResults = []result.Result[*domain.User]{currentUserResult(me)}
	f.repo.guildResults = []result.Result[[]domain.Guild]{result.Ok([]domain.Guild{})}
	f.model.Load(context.Background())

	edited := testUser("me", "renamed")
	f.model.UpdateUser(context.Background(), edited)

	state := f.model.State()
	assert.Equal(t, PhaseContent, state.Phase)
	assert.False(t, state.Updating)
	require.NotNil(t, state.CurrentUser)
	assert.Equal(t, domain.Username("renamed"), state.CurrentUser.Username)

	f.repo.mu.Lock()
	require.Len(t, f.repo.updatedUsers, 1)
	assert.Equal(t, domain.Username("renamed"), f.repo.updatedUsers[0].Username)
	f.repo.mu.Unlock()

	types := f.rec.typesSeen()
	assert.Equal(t, "user_data_updated", types[len(types)-1])
}

func TestUserModel_UpdateUserFailure(t *testing.T) {
	f := newUserFixture(t, "token-1")
	f.repo.updateResult = result.Fail[struct{}](errors.New("boom"), result.ErrorTypeNetwork, true)

	f.model.UpdateUser(context.Background(), testUser("me", "renamed"))

	state := f.model.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.True(t, state.CanRetry)

	types := f.rec.typesSeen()
	assert.Contains(t, types, "network_error")
}

func TestUserModel_DeleteDataSuccess(t *testing.T) {
	f := newUserFixture(t, "token-1")
	me := testUser("me", "viewer")
	f.repo.currentResults = []result.Result[*domain.User]{currentUserResult(me)}
	f.repo.guildResults = []result.Result[[]domain.Guild]{result.Ok([]domain.Guild{})}
	f.model.Load(context.Background())

	f.model.DeleteData(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseContent, state.Phase)
	assert.Nil(t, state.CurrentUser)
	assert.Empty(t, state.Guilds)

	types := f.rec.typesSeen()
	assert.Contains(t, types, "data_cleared")

	f.repo.mu.Lock()
	assert.Equal(t, 1, f.repo.deleteCalls)
	f.repo.mu.Unlock()
}

func TestUserModel_DeleteDataFailure(t *testing.T) {
	f := newUserFixture(t, "token-1")
	f.repo.deleteResult = result.Fail[struct{}](errors.New("boom"), result.ErrorTypeServer, true)

	f.model.DeleteData(context.Background())

	state := f.model.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, result.ErrorTypeServer, state.ErrorType)

	types := f.rec.typesSeen()
	assert.Contains(t, types, "network_error")
	assert.NotContains(t, types, "data_cleared")
}

func TestUserModel_LogoutEventClears(t *testing.T) {
	f := newUserFixture(t, "token-1")

	f.bus.Publish(events.UserLoggedOut{})

	state := f.model.State()
	assert.Equal(t, PhaseError, state.Phase)
	assert.Equal(t, result.ErrorTypeAuthentication, state.ErrorType)
}

func TestLastResult(t *testing.T) {
	t.Run("keeps final element", func(t *testing.T) {
		stream := streamOf(result.Ok(1), result.Ok(2))
		res := lastResult(stream)
		require.True(t, res.IsOk())
		assert.Equal(t, 2, res.MustValue())
	})

	t.Run("empty stream fails", func(t *testing.T) {
		stream := streamOf[int]()
		res := lastResult(stream)
		assert.False(t, res.IsOk())
	})
}
