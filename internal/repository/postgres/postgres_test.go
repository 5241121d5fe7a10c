package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

func setupMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewWithConn(conn, "test_"), mock
}

var projectRowColumns = []string{
	"id", "title", "description", "link", "preview_image", "tags",
	"code_snippet", "size", "created_at", "updated_at",
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")
	assert.Equal(t, "dev_projects", tables.Projects)
	assert.Equal(t, "dev_notes", tables.Notes)
	assert.Equal(t, "dev_users", tables.Users)
}

func TestMigrate(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS test_projects`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS test_notes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS test_users`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCreate(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(`INSERT INTO test_projects`).
		WithArgs(sqlmock.AnyArg(), "Vault", "", "https://example.com", "", "{go,web}", "", "small",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	project := &model.Project{
		Title: "Vault",
		Link:  "https://example.com",
		Tags:  []string{"go", "web"},
		Size:  model.SizeSmall,
	}
	err := db.Projects().Create(context.Background(), project)

	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.False(t, project.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCreate_NilTagsEncodeEmptyArray(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(`INSERT INTO test_projects`).
		WithArgs(sqlmock.AnyArg(), "x", "", "", "", "{}", "", "small",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.Projects().Create(context.Background(), &model.Project{Title: "x", Size: model.SizeSmall})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectGetByID(t *testing.T) {
	db, mock := setupMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM test_projects WHERE id = $1`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(projectRowColumns).
			AddRow("p1", "Vault", "desc", "https://a.io", "", `{go,"web dev"}`, "x := 1", "large", now, now))

	project, err := db.Projects().GetByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Vault", project.Title)
	assert.Equal(t, []string{"go", "web dev"}, project.Tags)
	assert.Equal(t, model.SizeLarge, project.Size)
	assert.Equal(t, "x := 1", project.CodeSnippet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectGetByID_NotFound(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM test_projects WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(projectRowColumns))

	_, err := db.Projects().GetByID(context.Background(), "missing")

	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectList(t *testing.T) {
	db, mock := setupMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM test_projects ORDER BY id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(projectRowColumns).
			AddRow("a", "A", "", "", "", "{}", "", "small", now, now).
			AddRow("b", "B", "", "", "", nil, "", "small", now, now))

	projects, err := db.Projects().List(context.Background(), repository.ListOptions{Ascending: true, Limit: 10})

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "A", projects[0].Title)
	assert.Equal(t, []string{}, projects[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectList_NoLimitNewestFirst(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id DESC LIMIT $1 OFFSET $2`)).
		WithArgs(nil, 0).
		WillReturnRows(sqlmock.NewRows(projectRowColumns))

	projects, err := db.Projects().List(context.Background(), repository.ListOptions{})

	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectUpdateSnippet(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE test_projects SET code_snippet = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("y := 2", sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.Projects().UpdateSnippet(context.Background(), "p1", "y := 2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectUpdate_NotFound(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(`UPDATE test_projects`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.Projects().Update(context.Background(), &model.Project{ID: "gone", Title: "x"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func TestProjectDelete_DatabaseError(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM test_projects WHERE id = $1`)).
		WithArgs("p1").
		WillReturnError(errors.New("connection reset"))

	err := db.Projects().Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteCRUD(t *testing.T) {
	db, mock := setupMock(t)
	now := time.Now().UTC()
	notes := db.Notes()

	mock.ExpectExec(`INSERT INTO test_notes`).
		WithArgs(sqlmock.AnyArg(), "Prompt", "be terse", "prompt", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM test_notes WHERE id = $1`)).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "category", "created_at", "updated_at"}).
			AddRow("n1", "Prompt", "be terse", "prompt", now, now))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM test_notes WHERE id = $1`)).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	note := &model.Note{Title: "Prompt", Content: "be terse", Category: model.CategoryPrompt}
	require.NoError(t, notes.Create(context.Background(), note))

	found, err := notes.GetByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryPrompt, found.Category)

	require.NoError(t, notes.Delete(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpsert(t *testing.T) {
	db, mock := setupMock(t)
	created := time.Now().Add(-time.Hour).UTC()
	updated := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO test_users .* ON CONFLICT \(github_id\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), int64(42), "octocat", "o@example.com", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("existing-id", created, updated))

	user := &model.User{GitHubID: 42, Login: "octocat", Email: "o@example.com"}
	require.NoError(t, db.Users().Upsert(context.Background(), user))

	assert.Equal(t, "existing-id", user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByID_NotFound(t *testing.T) {
	db, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM test_users WHERE id = $1`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "github_id", "login", "email", "avatar_url", "created_at", "updated_at"}))

	_, err := db.Users().GetUserByID(context.Background(), "nobody")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func TestTextArrayRoundTrip(t *testing.T) {
	value, err := textArray{"go", "web dev"}.Value()
	require.NoError(t, err)

	var decoded textArray
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, textArray{"go", "web dev"}, decoded)
}

// Concurrent requests encode and decode tags at the same time; run with -race.
func TestTextArray_ConcurrentUse(t *testing.T) {
	const workers = 16

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			value, err := textArray{"go", "web dev"}.Value()
			if err != nil {
				errs <- err
				return
			}
			var decoded textArray
			if err := decoded.Scan(value); err != nil {
				errs <- err
				return
			}
			if len(decoded) != 2 || decoded[1] != "web dev" {
				errs <- fmt.Errorf("decoded %q", decoded)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
