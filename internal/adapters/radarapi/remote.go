package radarapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/guildradar/core/internal/adapters/clients"
	"github.com/guildradar/core/internal/result"
)

const (
	pathCurrentUser = "/users/me"
	pathUsers       = "/users"
	pathGuilds      = "/guilds"
)

// statusError is a non-2xx response from the platform API. It carries the
// status code for classification and any Retry-After hint the server sent.
type statusError struct {
	code       int
	status     string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api error: %d - %s", e.code, e.status)
}

func (e *statusError) HTTPStatus() int { return e.code }

func (e *statusError) RetryAfterHint() time.Duration { return e.retryAfter }

// errNullBody marks a 2xx response whose body was null or empty. The server
// broke its contract, so it classifies as a retryable server fault.
type errNullBody struct{}

func (errNullBody) Error() string   { return "response body is null" }
func (errNullBody) HTTPStatus() int { return http.StatusInternalServerError }

// RemoteDataSource performs the network operations against the platform API.
// Every outcome is a classified Result; raw errors stop here.
type RemoteDataSource struct {
	client *clients.Client
	logger *slog.Logger
}

// NewRemoteDataSource creates a remote data source on the given client.
func NewRemoteDataSource(client *clients.Client, logger *slog.Logger) *RemoteDataSource {
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteDataSource{
		client: client,
		logger: logger.With(slog.String("component", "radarapi.RemoteDataSource")),
	}
}

// GetCurrentUser fetches the authenticated user's own record.
func (r *RemoteDataSource) GetCurrentUser(ctx context.Context, token string) result.Result[*User] {
	return clients.Execute(ctx, "getCurrentUser", func(ctx context.Context) (*User, error) {
		return fetchOne[User](ctx, r, token, pathCurrentUser)
	})
}

// GetUsers fetches every user visible to the authenticated user.
func (r *RemoteDataSource) GetUsers(ctx context.Context, token string) result.Result[[]User] {
	return clients.Execute(ctx, "getUsers", func(ctx context.Context) ([]User, error) {
		return fetchList[User](ctx, r, token, pathUsers)
	})
}

// GetGuilds fetches the guilds shared between the user and the network.
func (r *RemoteDataSource) GetGuilds(ctx context.Context, token string) result.Result[[]Guild] {
	return clients.Execute(ctx, "getGuilds", func(ctx context.Context) ([]Guild, error) {
		return fetchList[Guild](ctx, r, token, pathGuilds)
	})
}

// UpdateCurrentUser pushes an edited user record upstream.
func (r *RemoteDataSource) UpdateCurrentUser(ctx context.Context, token string, user *User) result.Result[struct{}] {
	return clients.Execute(ctx, "updateCurrentUser", func(ctx context.Context) (struct{}, error) {
		payload, err := json.Marshal(user)
		if err != nil {
			return struct{}{}, fmt.Errorf("encoding user: %w", err)
		}

		resp, err := r.do(ctx, http.MethodPost, pathCurrentUser, token, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, err
		}
		defer closeQuietly(resp.Body, r.logger)

		_, err = decodeBody[SuccessResponse](resp.Body)

		return struct{}{}, err
	})
}

// DeleteUserData asks the server to erase the user's stored data.
func (r *RemoteDataSource) DeleteUserData(ctx context.Context, token string) result.Result[struct{}] {
	return clients.Execute(ctx, "deleteUserData", func(ctx context.Context) (struct{}, error) {
		resp, err := r.do(ctx, http.MethodDelete, pathCurrentUser, token, nil)
		if err != nil {
			return struct{}{}, err
		}
		defer closeQuietly(resp.Body, r.logger)

		_, err = decodeBody[SuccessResponse](resp.Body)

		return struct{}{}, err
	})
}

// do builds and executes an authenticated request, converting non-2xx
// responses into statusError. Callers own the body on success.
func (r *RemoteDataSource) do(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	req, err := r.client.NewRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer closeQuietly(resp.Body, r.logger)

		return nil, &statusError{
			code:       resp.StatusCode,
			status:     resp.Status,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return resp, nil
}

func fetchOne[T any](ctx context.Context, r *RemoteDataSource, token, path string) (*T, error) {
	resp, err := r.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(resp.Body, r.logger)

	return decodeBody[T](resp.Body)
}

func fetchList[T any](ctx context.Context, r *RemoteDataSource, token, path string) ([]T, error) {
	items, err := fetchOne[[]T](ctx, r, token, path)
	if err != nil {
		return nil, err
	}

	return *items, nil
}

// decodeBody decodes a JSON body, treating a null or empty payload on a
// success status as errNullBody.
func decodeBody[T any](body io.Reader) (*T, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errNullBody{}
	}

	var decoded T
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &decoded, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func closeQuietly(c io.Closer, logger *slog.Logger) {
	if err := c.Close(); err != nil && !errors.Is(err, http.ErrBodyReadAfterClose) {
		logger.Debug("closing response body", slog.Any("error", err))
	}
}
