package schemes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/yojanahub/yojanahub/internal/apperror"
)

const mysqlDuplicateEntry = 1062

// SchemeRepository defines persistence for the scheme catalog.
type SchemeRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Scheme, error)
	FindByID(ctx context.Context, id string) (*Scheme, error)
	FindByIDs(ctx context.Context, ids []string) ([]Scheme, error)
	Create(ctx context.Context, scheme *Scheme) error
}

type schemeRepository struct {
	db *sql.DB
}

// NewSchemeRepository creates a MariaDB-backed scheme repository.
func NewSchemeRepository(db *sql.DB) SchemeRepository {
	return &schemeRepository{db: db}
}

const schemeColumns = `id, scheme_name, category, ministry, state, target_groups,
	eligibility, benefits, documents_required, apply_link, description,
	language_support, created_at, updated_at`

func scanScheme(scan func(dest ...any) error) (*Scheme, error) {
	var s Scheme
	err := scan(
		&s.ID, &s.SchemeName, &s.Category, &s.Ministry, &s.State,
		&s.TargetGroups, &s.Eligibility, &s.Benefits, &s.DocumentsRequired,
		&s.ApplyLink, &s.Description, &s.LanguageSupport,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns catalog entries matching the filter, newest first. Filters
// are case-insensitive substring matches, like the search UI expects.
func (r *schemeRepository) List(ctx context.Context, filter ListFilter) ([]Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes`
	var conds []string
	var args []any

	if filter.Category != "" {
		conds = append(conds, "LOWER(category) LIKE ?")
		args = append(args, likePattern(filter.Category))
	}
	if filter.State != "" {
		conds = append(conds, "LOWER(state) LIKE ?")
		args = append(args, likePattern(filter.State))
	}
	if filter.Search != "" {
		conds = append(conds, "LOWER(scheme_name) LIKE ?")
		args = append(args, likePattern(filter.Search))
	}
	if len(filter.TargetGroups) > 0 {
		// target_groups is a JSON array in a text column; a substring match
		// on any requested group is sufficient for discovery queries.
		var group []string
		for _, tg := range filter.TargetGroups {
			group = append(group, "LOWER(target_groups) LIKE ?")
			args = append(args, likePattern(tg))
		}
		conds = append(conds, "("+strings.Join(group, " OR ")+")")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing schemes: %w", err)
	}
	defer rows.Close()

	var schemes []Scheme
	for rows.Next() {
		s, err := scanScheme(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning scheme: %w", err)
		}
		schemes = append(schemes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schemes: %w", err)
	}
	return schemes, nil
}

func (r *schemeRepository) FindByID(ctx context.Context, id string) (*Scheme, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+schemeColumns+` FROM schemes WHERE id = ?`, id)
	s, err := scanScheme(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("scheme not found")
		}
		return nil, fmt.Errorf("finding scheme: %w", err)
	}
	return s, nil
}

func (r *schemeRepository) FindByIDs(ctx context.Context, ids []string) ([]Scheme, error) {
	if len(ids) == 0 {
		return []Scheme{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+schemeColumns+` FROM schemes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("finding schemes by ids: %w", err)
	}
	defer rows.Close()

	var schemes []Scheme
	for rows.Next() {
		s, err := scanScheme(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning scheme: %w", err)
		}
		schemes = append(schemes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schemes: %w", err)
	}
	return schemes, nil
}

func (r *schemeRepository) Create(ctx context.Context, scheme *Scheme) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schemes (id, scheme_name, category, ministry, state,
			target_groups, eligibility, benefits, documents_required,
			apply_link, description, language_support)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scheme.ID, scheme.SchemeName, scheme.Category, scheme.Ministry,
		scheme.State, scheme.TargetGroups, scheme.Eligibility, scheme.Benefits,
		scheme.DocumentsRequired, scheme.ApplyLink, scheme.Description,
		scheme.LanguageSupport,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperror.NewConflict("a scheme with this id already exists")
		}
		return fmt.Errorf("creating scheme: %w", err)
	}
	return nil
}

// likeEscaper neutralizes LIKE wildcards in user-supplied filter text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
