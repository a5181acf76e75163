//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
//
// These exercise what SQLite cannot: row locks, partial unique indexes and
// the deferred final-version FK under true parallelism, plus the Redis-backed
// final-offer cache and notification queue.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func doReq(t *testing.T, srv *httptest.Server, method, path string, body any, tok string) *http.Response {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type e2eEnv struct {
	server *httptest.Server
	token  string
	db     *gorm.DB
	rdb    *redis.Client
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("envaperu_test"),
		tcPostgres.WithUsername("envaperu"),
		tcPostgres.WithPassword("envaperu"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        secret,
		JWTIssuer:        "envaperu-auth",
		DatabaseURL:      pgURL,
		DBLockTimeoutMS:  5000,
		RedisURL:         rdURL,
		FinalCacheTTLMin: 5,
		WorkerPoolSize:   1,
		PDFStoragePath:   t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLockTimeoutMS)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	// No pool is started: jobs stay in the queue so the test can inspect them.
	dispatcher := worker.NewDispatcher(worker.NewRedisQueue(rdb))
	app := New(runCtx, cfg, Deps{DB: db, Redis: rdb, Mailer: infra.NewMailer(cfg), Dispatcher: dispatcher})

	srv := httptest.NewServer(app.Engine)
	t.Cleanup(srv.Close)

	return &e2eEnv{server: srv, token: token(t, "ADMIN"), db: db, rdb: rdb}
}

func (e *e2eEnv) post(t *testing.T, path string, body any, dest any) int {
	t.Helper()
	resp := doReq(t, e.server, http.MethodPost, path, body, e.token)
	if dest == nil {
		resp.Body.Close()
		return resp.StatusCode
	}
	decodeJSON(t, resp, dest)
	return resp.StatusCode
}

type idResp struct {
	ID            string `json:"id"`
	SesionInicial struct {
		ID string `json:"id"`
	} `json:"sesion_inicial"`
}

func (e *e2eEnv) nuevoCatalogo(t *testing.T, sufijo string) idResp {
	t.Helper()
	var cl, pr, cat idResp
	require.Equal(t, http.StatusCreated, e.post(t, "/v1/clientes", map[string]any{
		"tipo_doc": "RUC", "num_doc": "2010004" + sufijo, "nombre": "Cliente " + sufijo,
	}, &cl))
	require.Equal(t, http.StatusCreated, e.post(t, "/v1/productos", map[string]any{
		"nombre": "Balde " + sufijo, "um": "DOC", "doc_x_bulto_caja": 40, "doc_x_paq": 10, "precio_exw": 12.34, "familia": "BALDES",
	}, &pr))
	require.Equal(t, http.StatusCreated, e.post(t, "/v1/catalogos", map[string]any{
		"cliente_id": cl.ID, "producto_id": pr.ID,
	}, &cat))
	return cat
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_Negociacion(t *testing.T) {
	env := setupE2E(t)

	t.Run("versiones concurrentes en una sesion", func(t *testing.T) {
		cat := env.nuevoCatalogo(t, "0001")
		const n = 10

		var wg sync.WaitGroup
		codes := make([]int, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				codes[i] = env.post(t, "/v1/sesiones/"+cat.SesionInicial.ID+"/versiones", map[string]any{"cant_bultos": i + 1}, nil)
			}(i)
		}
		wg.Wait()
		for _, c := range codes {
			assert.Equal(t, http.StatusCreated, c)
		}

		var nums []int
		require.NoError(t, env.db.Raw(`SELECT version_num FROM versiones WHERE sesion_id = ? ORDER BY version_num`, cat.SesionInicial.ID).Scan(&nums).Error)
		require.Len(t, nums, n)
		for i, num := range nums {
			assert.Equal(t, i+1, num)
		}
		var current int64
		require.NoError(t, env.db.Raw(`SELECT count(*) FROM versiones WHERE sesion_id = ? AND is_current`, cat.SesionInicial.ID).Scan(&current).Error)
		assert.Equal(t, int64(1), current)
	})

	t.Run("aprobaciones en paralelo", func(t *testing.T) {
		cat := env.nuevoCatalogo(t, "0002")
		var versiones []string
		for i := 0; i < 5; i++ {
			var s, v idResp
			require.Equal(t, http.StatusCreated, env.post(t, "/v1/catalogos/"+cat.ID+"/sesiones", nil, &s))
			require.Equal(t, http.StatusCreated, env.post(t, "/v1/sesiones/"+s.ID+"/versiones", nil, &v))
			require.Equal(t, http.StatusOK, env.post(t, "/v1/versiones/"+v.ID+"/enviar", nil, nil))
			versiones = append(versiones, v.ID)
		}

		var wg sync.WaitGroup
		codes := make([]int, len(versiones))
		for i, id := range versiones {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				codes[i] = env.post(t, "/v1/versiones/"+id+"/aprobar", nil, nil)
			}(i, id)
		}
		wg.Wait()

		ok := 0
		for _, c := range codes {
			if c == http.StatusOK {
				ok++
			} else {
				assert.Equal(t, http.StatusConflict, c)
			}
		}
		assert.Equal(t, 1, ok)

		var finales int64
		require.NoError(t, env.db.Raw(`SELECT count(*) FROM versiones WHERE catalogo_id = ? AND is_final`, cat.ID).Scan(&finales).Error)
		assert.Equal(t, int64(1), finales)

		var estado string
		require.NoError(t, env.db.Raw(`SELECT estado FROM catalogos WHERE id = ?`, cat.ID).Scan(&estado).Error)
		assert.Equal(t, "CERRADA", estado)

		// Final offer is cached and a notification job is queued.
		resp := doReq(t, env.server, http.MethodGet, "/v1/catalogos/"+cat.ID+"/final", nil, env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		exists, err := env.rdb.Exists(ctx, "oferta_final:"+cat.ID).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		jobs, err := env.rdb.LLen(ctx, worker.QueueOfertas).Result()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, jobs, int64(1))
	})

	t.Run("edicion y cancelacion compiten", func(t *testing.T) {
		cat := env.nuevoCatalogo(t, "0003")
		var v idResp
		require.Equal(t, http.StatusCreated, env.post(t, "/v1/sesiones/"+cat.SesionInicial.ID+"/versiones", nil, &v))

		var wg sync.WaitGroup
		var cancelCode int
		editCodes := make([]int, 5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := doReq(t, env.server, http.MethodPatch, "/v1/catalogos/"+cat.ID, map[string]any{"estado": "CANCELADA"}, env.token)
			cancelCode = resp.StatusCode
			resp.Body.Close()
		}()
		for i := range editCodes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resp := doReq(t, env.server, http.MethodPatch, "/v1/versiones/"+v.ID, map[string]any{"cant_bultos": i}, env.token)
				editCodes[i] = resp.StatusCode
				resp.Body.Close()
			}(i)
		}
		wg.Wait()

		assert.Equal(t, http.StatusOK, cancelCode)
		for _, c := range editCodes {
			assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, c, fmt.Sprint(c))
		}
	})
}
