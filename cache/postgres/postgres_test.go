package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCache_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewWithPool(mock, "llm_cache")

	resultJSON, _ := json.Marshal("the output")
	debugJSON, _ := json.Marshal(map[string]any{"input": "the prompt"})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO llm_cache")).
		WithArgs("chat-abc", resultJSON, debugJSON).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = c.Set(context.Background(), "chat-abc", "the output", map[string]any{"input": "the prompt"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewWithPool(mock, "llm_cache")

	resultJSON, _ := json.Marshal("the output")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT result FROM llm_cache")).
		WithArgs("chat-abc").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(resultJSON))

	value, found, err := c.Get(context.Background(), "chat-abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "the output", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_GetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewWithPool(mock, "llm_cache")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT result FROM llm_cache")).
		WithArgs("absent").
		WillReturnRows(pgxmock.NewRows([]string{"result"}))

	value, found, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestPostgresCache_Has(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewWithPool(mock, "llm_cache")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("chat-abc").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := c.Has(context.Background(), "chat-abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresCache_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS llm_cache")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, c.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
