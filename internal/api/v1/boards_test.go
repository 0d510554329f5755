package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/taskflow-io/taskflow/internal/api/v1"
	"github.com/taskflow-io/taskflow/internal/domain"
)

// ---------------------------------------------------------------------------
// TestCreateBoard
// ---------------------------------------------------------------------------

func TestCreateBoard(t *testing.T) {
	t.Parallel()

	const userID = int64(1)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var createCalled bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				createFunc: func(_ context.Context, uid int64, b *domain.Board) error {
					createCalled = true
					b.ID = 7
					assert.Equal(t, userID, uid)
					assert.Equal(t, int64(3), b.ProjectID)
					assert.Equal(t, "Sprint 12", b.Name)
					return nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.PostCtx(userCtx(userID), "/boards", map[string]any{
			"project_id": 3,
			"name":       "Sprint 12",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, createCalled, "store.Boards().Create must be invoked")

		var body domain.Board
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, int64(7), body.ID)
		assert.Equal(t, "Sprint 12", body.Name)
	})

	t.Run("project_not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				createFunc: func(_ context.Context, _ int64, _ *domain.Board) error {
					return domain.ErrNotFound
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.PostCtx(userCtx(userID), "/boards", map[string]any{
			"project_id": 999,
			"name":       "Orphan board",
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)

		var errBody map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		assert.Contains(t, errBody["detail"], "project not found")
	})

	t.Run("missing_user", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{boards: &mockBoardRepo{}}
		v1.RegisterBoardRoutes(api, store)

		resp := api.PostCtx(context.Background(), "/boards", map[string]any{
			"project_id": 3,
			"name":       "No user",
		})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestListBoards
// ---------------------------------------------------------------------------

func TestListBoards(t *testing.T) {
	t.Parallel()

	const userID = int64(1)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				listByProjectFunc: func(_ context.Context, uid, pid int64) ([]*domain.Board, error) {
					assert.Equal(t, userID, uid)
					assert.Equal(t, int64(3), pid)
					return []*domain.Board{
						{ID: 7, ProjectID: 3, Name: "Sprint 12"},
						{ID: 8, ProjectID: 3, Name: "Backlog"},
					}, nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/boards?project_id=3")

		require.Equal(t, http.StatusOK, resp.Code)

		var body []*domain.Board
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body, 2)
		assert.Equal(t, "Sprint 12", body[0].Name)
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				listByProjectFunc: func(_ context.Context, _, _ int64) ([]*domain.Board, error) {
					return nil, errors.New("db timeout")
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/boards?project_id=3")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestGetBoard
// ---------------------------------------------------------------------------

func TestGetBoard(t *testing.T) {
	t.Parallel()

	const userID = int64(1)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				getByIDFunc: func(_ context.Context, uid, id int64) (*domain.Board, error) {
					assert.Equal(t, userID, uid)
					assert.Equal(t, int64(7), id)
					return &domain.Board{ID: 7, ProjectID: 3, Name: "Sprint 12"}, nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/boards/7")

		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Board
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, int64(7), body.ID)
		assert.Equal(t, "Sprint 12", body.Name)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				getByIDFunc: func(_ context.Context, _, _ int64) (*domain.Board, error) {
					return nil, domain.ErrNotFound
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/boards/999")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestDeleteBoard
// ---------------------------------------------------------------------------

func TestDeleteBoard(t *testing.T) {
	t.Parallel()

	const userID = int64(1)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				deleteFunc: func(_ context.Context, uid, id int64) error {
					assert.Equal(t, userID, uid)
					assert.Equal(t, int64(7), id)
					return nil
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.DeleteCtx(userCtx(userID), "/boards/7")

		assert.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: &mockBoardRepo{
				deleteFunc: func(_ context.Context, _, _ int64) error {
					return domain.ErrNotFound
				},
			},
		}
		v1.RegisterBoardRoutes(api, store)

		resp := api.DeleteCtx(userCtx(userID), "/boards/999")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
