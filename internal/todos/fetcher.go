// Package todos reads the todo table and the keyspace schema through the
// REST interface. Nothing is filtered, sorted or paged.
package todos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/idilsaglam/todoproxy/internal/astra"
)

// Table is the table the rows endpoint reads.
const Table = "todo"

// RowsBasePath is the base path the rows endpoint builds its handle for.
func RowsBasePath(keyspace string) string {
	return "/api/rest/v1/keyspaces/" + keyspace
}

// RowsPath is the rows endpoint: every row of the todo table, first page only.
func RowsPath(keyspace string) string {
	return RowsBasePath(keyspace) + "/tables/" + Table + "/rows"
}

// SchemaBasePath is the base path the schema endpoint builds its handle for.
// It is v2; the request itself goes to the v1 SchemaPath.
func SchemaBasePath(keyspace string) string {
	return "/api/rest/v2/keyspaces/" + keyspace
}

// SchemaPath lists the tables of the keyspace. The trailing slash is part of it.
func SchemaPath(keyspace string) string {
	return "/api/rest/v1/keyspaces/" + keyspace + "/tables/"
}

// Fetcher issues one fixed GET through its own cached handle.
type Fetcher struct {
	cache *astra.Cache
	path  func(keyspace string) string
	log   *zap.Logger
}

// NewRowFetcher returns the fetcher behind /getTodos.
func NewRowFetcher(opts astra.Options, log *zap.Logger) *Fetcher {
	return newFetcher(RowsBasePath(opts.Keyspace), RowsPath, astra.FactoryFor(opts, log), log)
}

// NewSchemaFetcher returns the fetcher behind /testAPI.
func NewSchemaFetcher(opts astra.Options, log *zap.Logger) *Fetcher {
	return newFetcher(SchemaBasePath(opts.Keyspace), SchemaPath, astra.FactoryFor(opts, log), log)
}

func newFetcher(base string, path func(string) string, build astra.Factory, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		cache: astra.NewCache(base, build, log),
		path:  path,
		log:   log,
	}
}

// Fetch returns the upstream response unmodified.
func (f *Fetcher) Fetch(ctx context.Context) (*astra.Response, error) {
	cl, err := f.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return cl.Get(ctx, f.path(cl.Keyspace()))
}

// ErrNoRows is returned when the response body has no rows, or rows is null.
var ErrNoRows = errors.New("response has no rows")

// ExtractRows returns data.rows exactly as upstream sent it.
func ExtractRows(resp *astra.Response) (json.RawMessage, error) {
	var env struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if env.Rows == nil || bytes.Equal(env.Rows, []byte("null")) {
		return nil, ErrNoRows
	}
	return env.Rows, nil
}

// Rows fetches the todo table and returns its rows payload.
func (f *Fetcher) Rows(ctx context.Context) (json.RawMessage, error) {
	resp, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractRows(resp)
}

// Data fetches and returns the whole data payload.
func (f *Fetcher) Data(ctx context.Context) (json.RawMessage, error) {
	resp, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
