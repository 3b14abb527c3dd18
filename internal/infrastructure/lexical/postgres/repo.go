package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/minjcho/dietcoach/internal/core/domain"
)

const snippetChars = 240

// RecipeRepository is both the recipe system of record and the lexical
// search backend: full-text (tsvector) for exact matches and pg_trgm for
// fuzzy ones.
type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecipeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS recipes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	kcal INTEGER NOT NULL DEFAULT 0,
	index_status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	search_tsv tsvector GENERATED ALWAYS AS (to_tsvector('simple', title || ' ' || body)) STORED
);

CREATE INDEX IF NOT EXISTS idx_recipes_search_tsv ON recipes USING gin(search_tsv);
CREATE INDEX IF NOT EXISTS idx_recipes_title_trgm ON recipes USING gin(title gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_recipes_index_status ON recipes(index_status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO recipes (id, title, body, category, kcal, index_status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		recipe.ID, recipe.Title, recipe.Body, recipe.Category, recipe.Kcal,
		string(recipe.IndexStatus), recipe.Error, recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepository) GetRecipeByID(ctx context.Context, id string) (*domain.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, body, category, kcal, index_status, error_message, created_at, updated_at
FROM recipes
WHERE id = $1
`, id)

	var recipe domain.Recipe
	var status string
	err := row.Scan(
		&recipe.ID, &recipe.Title, &recipe.Body, &recipe.Category, &recipe.Kcal,
		&status, &recipe.Error, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRecipeNotFound, "get recipe", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	recipe.IndexStatus = domain.IndexStatus(status)
	return &recipe, nil
}

func (r *RecipeRepository) UpdateIndexStatus(ctx context.Context, id string, status domain.IndexStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE recipes
SET index_status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update index status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update index status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrRecipeNotFound, "update index status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *RecipeRepository) ListRecipesByStatus(ctx context.Context, status domain.IndexStatus, limit int) ([]domain.Recipe, error) {
	query := `
SELECT id, title, body, category, kcal, index_status, error_message, created_at, updated_at
FROM recipes
WHERE index_status = $1
ORDER BY created_at ASC
`
	args := []any{string(status)}
	if limit > 0 {
		query += "LIMIT $2\n"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipe
	for rows.Next() {
		var recipe domain.Recipe
		var rowStatus string
		if err := rows.Scan(
			&recipe.ID, &recipe.Title, &recipe.Body, &recipe.Category, &recipe.Kcal,
			&rowStatus, &recipe.Error, &recipe.CreatedAt, &recipe.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recipe row: %w", err)
		}
		recipe.IndexStatus = domain.IndexStatus(rowStatus)
		out = append(out, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe rows: %w", err)
	}
	return out, nil
}

// SearchExact runs full-text search over title and body. The returned score
// is Postgres ts_rank; zero means the index matched without a usable rank.
func (r *RecipeRepository) SearchExact(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.StoreHit, error) {
	sqlQuery := fmt.Sprintf(`
SELECT r.id, r.title, left(r.body, %d), ts_rank(r.search_tsv, q.query) AS score
FROM recipes r, websearch_to_tsquery('simple', $1) AS q(query)
WHERE r.search_tsv @@ q.query
`, snippetChars)
	args := []any{query}
	sqlQuery, args = appendFilter(sqlQuery, args, filter, "r.")
	sqlQuery += fmt.Sprintf("ORDER BY score DESC, r.id ASC\nLIMIT $%d\n", len(args)+1)
	args = append(args, limit)

	return r.searchHits(ctx, "exact search", sqlQuery, args)
}

// SearchFuzzy runs trigram-similarity search over titles.
func (r *RecipeRepository) SearchFuzzy(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.StoreHit, error) {
	sqlQuery := fmt.Sprintf(`
SELECT id, title, left(body, %d), similarity(title, $1) AS score
FROM recipes
WHERE title %% $1
`, snippetChars)
	args := []any{query}
	sqlQuery, args = appendFilter(sqlQuery, args, filter, "")
	sqlQuery += fmt.Sprintf("ORDER BY score DESC, id ASC\nLIMIT $%d\n", len(args)+1)
	args = append(args, limit)

	return r.searchHits(ctx, "fuzzy search", sqlQuery, args)
}

func (r *RecipeRepository) searchHits(ctx context.Context, operation, sqlQuery string, args []any) ([]domain.StoreHit, error) {
	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	var out []domain.StoreHit
	for rows.Next() {
		var hit domain.StoreHit
		if err := rows.Scan(&hit.RecipeID, &hit.Title, &hit.Snippet, &hit.Score); err != nil {
			return nil, fmt.Errorf("%s scan: %w", operation, err)
		}
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", operation, err)
	}
	return out, nil
}

func appendFilter(sqlQuery string, args []any, filter domain.SearchFilter, prefix string) (string, []any) {
	var conditions []string
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("%scategory = $%d", prefix, len(args)))
	}
	if filter.MaxKcal > 0 {
		args = append(args, filter.MaxKcal)
		conditions = append(conditions, fmt.Sprintf("%skcal <= $%d", prefix, len(args)))
	}
	for _, condition := range conditions {
		sqlQuery += "  AND " + condition + "\n"
	}
	return sqlQuery, args
}
