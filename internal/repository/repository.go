// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensource-finance/heron/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveProfile inserts or replaces a client profile.
func (r *SQLRepository) SaveProfile(ctx context.Context, profile *domain.ClientProfile) error {
	if profile.ClientID == "" {
		return fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO client_profiles (
			client_id, birth_date, marital_status, dependents, employment_status,
			sector, seniority_years, monthly_income, existing_credits,
			monthly_debt_payment, bank_seniority_months, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			birth_date = excluded.birth_date,
			marital_status = excluded.marital_status,
			dependents = excluded.dependents,
			employment_status = excluded.employment_status,
			sector = excluded.sector,
			seniority_years = excluded.seniority_years,
			monthly_income = excluded.monthly_income,
			existing_credits = excluded.existing_credits,
			monthly_debt_payment = excluded.monthly_debt_payment,
			bank_seniority_months = excluded.bank_seniority_months,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		profile.ClientID, profile.BirthDate, profile.MaritalStatus, profile.Dependents,
		profile.EmploymentStatus, profile.Sector, profile.SeniorityYears,
		profile.MonthlyIncome, profile.ExistingCredits, profile.MonthlyDebtPayment,
		profile.BankSeniorityMonths, profile.CreatedAt, profile.UpdatedAt,
	)
	return err
}

// GetProfile retrieves a client profile by client ID.
func (r *SQLRepository) GetProfile(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		SELECT client_id, birth_date, marital_status, dependents, employment_status,
			   sector, seniority_years, monthly_income, existing_credits,
			   monthly_debt_payment, bank_seniority_months, created_at, updated_at
		FROM client_profiles
		WHERE client_id = ?
	`

	var p domain.ClientProfile
	err := r.db.QueryRowContext(ctx, r.rebind(query), clientID).Scan(
		&p.ClientID, &p.BirthDate, &p.MaritalStatus, &p.Dependents,
		&p.EmploymentStatus, &p.Sector, &p.SeniorityYears,
		&p.MonthlyIncome, &p.ExistingCredits, &p.MonthlyDebtPayment,
		&p.BankSeniorityMonths, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// SavePaymentRecord stores one historical payment.
func (r *SQLRepository) SavePaymentRecord(ctx context.Context, rec *domain.PaymentRecord) error {
	if rec.ClientID == "" {
		return fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO payment_history (
			id, client_id, credit_type, amount, payment_date, due_date, days_late, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rec.ID, rec.ClientID, rec.CreditType, rec.Amount,
		rec.PaymentDate, rec.DueDate, rec.DaysLate, rec.Status,
	)
	return err
}

// ListPaymentRecords retrieves a client's payment history, most recent first.
func (r *SQLRepository) ListPaymentRecords(ctx context.Context, clientID string) ([]*domain.PaymentRecord, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, client_id, credit_type, amount, payment_date, due_date, days_late, status
		FROM payment_history
		WHERE client_id = ?
		ORDER BY payment_date DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.PaymentRecord
	for rows.Next() {
		var rec domain.PaymentRecord
		var creditType sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.ClientID, &creditType, &rec.Amount,
			&rec.PaymentDate, &rec.DueDate, &rec.DaysLate, &rec.Status,
		); err != nil {
			return nil, err
		}

		rec.CreditType = creditType.String
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// SaveTransactionRecord stores one bank transaction.
func (r *SQLRepository) SaveTransactionRecord(ctx context.Context, rec *domain.TransactionRecord) error {
	if rec.ClientID == "" {
		return fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO transactions (
			id, client_id, date, amount, type, category, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rec.ID, rec.ClientID, rec.Date, rec.Amount, rec.Type, rec.Category, rec.BalanceAfter,
	)
	return err
}

// ListTransactionRecords retrieves a client's transactions, most recent first.
func (r *SQLRepository) ListTransactionRecords(ctx context.Context, clientID string) ([]*domain.TransactionRecord, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, client_id, date, amount, type, category, balance_after
		FROM transactions
		WHERE client_id = ?
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		var category sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.ClientID, &rec.Date, &rec.Amount, &rec.Type, &category, &rec.BalanceAfter,
		); err != nil {
			return nil, err
		}

		rec.Category = category.String
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// SaveDemand inserts or replaces a credit demand.
func (r *SQLRepository) SaveDemand(ctx context.Context, demand *domain.CreditDemand) error {
	if demand.ID == "" {
		return fmt.Errorf("%w: demand ID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO credit_demands (
			id, reference, client_id, credit_type, amount, duration_months,
			purpose, status, assigned_agent, decision_date, decision_comment,
			approved_amount, approved_duration, interest_rate, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			credit_type = excluded.credit_type,
			amount = excluded.amount,
			duration_months = excluded.duration_months,
			purpose = excluded.purpose,
			status = excluded.status,
			assigned_agent = excluded.assigned_agent,
			decision_date = excluded.decision_date,
			decision_comment = excluded.decision_comment,
			approved_amount = excluded.approved_amount,
			approved_duration = excluded.approved_duration,
			interest_rate = excluded.interest_rate,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		demand.ID, demand.Reference, demand.ClientID, demand.CreditType,
		demand.Amount, demand.DurationMonths, demand.Purpose, demand.Status,
		demand.AssignedAgent, demand.DecisionDate, demand.DecisionComment,
		demand.ApprovedAmount, demand.ApprovedDuration, demand.InterestRate,
		demand.CreatedAt, demand.UpdatedAt,
	)
	return err
}

// GetDemand retrieves a credit demand by ID.
func (r *SQLRepository) GetDemand(ctx context.Context, demandID string) (*domain.CreditDemand, error) {
	if demandID == "" {
		return nil, fmt.Errorf("%w: demandID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, reference, client_id, credit_type, amount, duration_months,
			   purpose, status, assigned_agent, decision_date, decision_comment,
			   approved_amount, approved_duration, interest_rate, created_at, updated_at
		FROM credit_demands
		WHERE id = ?
	`

	var d domain.CreditDemand
	var purpose, agent, comment sql.NullString
	var decisionDate sql.NullTime

	err := r.db.QueryRowContext(ctx, r.rebind(query), demandID).Scan(
		&d.ID, &d.Reference, &d.ClientID, &d.CreditType,
		&d.Amount, &d.DurationMonths, &purpose, &d.Status,
		&agent, &decisionDate, &comment,
		&d.ApprovedAmount, &d.ApprovedDuration, &d.InterestRate,
		&d.CreatedAt, &d.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Purpose = purpose.String
	d.AssignedAgent = agent.String
	d.DecisionComment = comment.String
	if decisionDate.Valid {
		d.DecisionDate = &decisionDate.Time
	}

	return &d, nil
}

// UpsertScore replaces the stored score of a demand. Each demand keeps
// exactly one score row; recomputation overwrites it in place.
func (r *SQLRepository) UpsertScore(ctx context.Context, score *domain.Score) error {
	if score.DemandID == "" {
		return fmt.Errorf("%w: demandID is required", ErrInvalidInput)
	}

	positive, _ := json.Marshal(score.FactorsPositive)
	negative, _ := json.Marshal(score.FactorsNegative)
	features, _ := json.Marshal(score.Features)
	attribution, _ := json.Marshal(score.Attribution)

	query := `
		INSERT INTO credit_scores (
			id, demand_id, score_value, risk_level, factors_positive, factors_negative,
			model_version, features, attribution, recommendation, confidence_level, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(demand_id) DO UPDATE SET
			score_value = excluded.score_value,
			risk_level = excluded.risk_level,
			factors_positive = excluded.factors_positive,
			factors_negative = excluded.factors_negative,
			model_version = excluded.model_version,
			features = excluded.features,
			attribution = excluded.attribution,
			recommendation = excluded.recommendation,
			confidence_level = excluded.confidence_level,
			calculated_at = excluded.calculated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		score.ID, score.DemandID, score.ScoreValue, score.RiskLevel,
		string(positive), string(negative), score.ModelVersion,
		string(features), string(attribution), score.Recommendation,
		score.ConfidenceLevel, score.CalculatedAt,
	)
	return err
}

// GetScore retrieves the stored score of a demand.
func (r *SQLRepository) GetScore(ctx context.Context, demandID string) (*domain.Score, error) {
	if demandID == "" {
		return nil, fmt.Errorf("%w: demandID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, demand_id, score_value, risk_level, factors_positive, factors_negative,
			   model_version, features, attribution, recommendation, confidence_level, calculated_at
		FROM credit_scores
		WHERE demand_id = ?
	`

	var s domain.Score
	var positive, negative, features, attribution string

	err := r.db.QueryRowContext(ctx, r.rebind(query), demandID).Scan(
		&s.ID, &s.DemandID, &s.ScoreValue, &s.RiskLevel,
		&positive, &negative, &s.ModelVersion,
		&features, &attribution, &s.Recommendation,
		&s.ConfidenceLevel, &s.CalculatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(positive), &s.FactorsPositive)
	json.Unmarshal([]byte(negative), &s.FactorsNegative)
	json.Unmarshal([]byte(features), &s.Features)
	json.Unmarshal([]byte(attribution), &s.Attribution)

	return &s, nil
}

// SaveRule inserts or replaces a business rule.
func (r *SQLRepository) SaveRule(ctx context.Context, rule *domain.BusinessRule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule ID is required", ErrInvalidInput)
	}

	active := 0
	if rule.Active {
		active = 1
	}

	query := `
		INSERT INTO business_rules (
			id, name, rule_type, credit_type, condition, threshold_value,
			active, priority, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rule_type = excluded.rule_type,
			credit_type = excluded.credit_type,
			condition = excluded.condition,
			threshold_value = excluded.threshold_value,
			active = excluded.active,
			priority = excluded.priority,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.RuleType, rule.CreditType,
		string(rule.Condition), rule.ThresholdValue,
		active, rule.Priority, rule.Description,
		rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

// GetRule retrieves a business rule by ID.
func (r *SQLRepository) GetRule(ctx context.Context, ruleID string) (*domain.BusinessRule, error) {
	if ruleID == "" {
		return nil, fmt.Errorf("%w: ruleID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, name, rule_type, credit_type, condition, threshold_value,
			   active, priority, description, created_at, updated_at
		FROM business_rules
		WHERE id = ?
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, r.rebind(query), ruleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return rule, nil
}

// ListActiveRules retrieves all active rules, highest priority first.
func (r *SQLRepository) ListActiveRules(ctx context.Context) ([]*domain.BusinessRule, error) {
	query := `
		SELECT id, name, rule_type, credit_type, condition, threshold_value,
			   active, priority, description, created_at, updated_at
		FROM business_rules
		WHERE active = 1
		ORDER BY priority DESC, name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.BusinessRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*domain.BusinessRule, error) {
	var rule domain.BusinessRule
	var creditType, description sql.NullString
	var threshold sql.NullFloat64
	var condition string
	var active int

	if err := row.Scan(
		&rule.ID, &rule.Name, &rule.RuleType, &creditType,
		&condition, &threshold, &active, &rule.Priority,
		&description, &rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rule.CreditType = domain.CreditType(creditType.String)
	rule.Description = description.String
	rule.Condition = []byte(condition)
	rule.Active = active == 1
	if threshold.Valid {
		v := threshold.Float64
		rule.ThresholdValue = &v
	}

	return &rule, nil
}

// AppendEvaluation stores one rule evaluation. Rows are append-only.
func (r *SQLRepository) AppendEvaluation(ctx context.Context, eval *domain.RuleEvaluation) error {
	if eval.DemandID == "" {
		return fmt.Errorf("%w: demandID is required", ErrInvalidInput)
	}

	passed := 0
	if eval.Passed {
		passed = 1
	}

	query := `
		INSERT INTO rule_evaluations (
			id, demand_id, rule_id, rule_name, passed, computed_value, message, evaluated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		eval.ID, eval.DemandID, eval.RuleID, eval.RuleName,
		passed, eval.ComputedValue, eval.Message, eval.EvaluatedAt,
	)
	return err
}

// ListEvaluations retrieves the evaluation history of a demand, most recent
// first.
func (r *SQLRepository) ListEvaluations(ctx context.Context, demandID string) ([]*domain.RuleEvaluation, error) {
	if demandID == "" {
		return nil, fmt.Errorf("%w: demandID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, demand_id, rule_id, rule_name, passed, computed_value, message, evaluated_at
		FROM rule_evaluations
		WHERE demand_id = ?
		ORDER BY evaluated_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), demandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []*domain.RuleEvaluation
	for rows.Next() {
		var e domain.RuleEvaluation
		var passed int
		var value sql.NullFloat64

		if err := rows.Scan(
			&e.ID, &e.DemandID, &e.RuleID, &e.RuleName,
			&passed, &value, &e.Message, &e.EvaluatedAt,
		); err != nil {
			return nil, err
		}

		e.Passed = passed == 1
		if value.Valid {
			v := value.Float64
			e.ComputedValue = &v
		}
		evals = append(evals, &e)
	}

	return evals, rows.Err()
}

// SaveProduct inserts or replaces a credit product.
func (r *SQLRepository) SaveProduct(ctx context.Context, product *domain.CreditProduct) error {
	if product.ID == "" {
		return fmt.Errorf("%w: product ID is required", ErrInvalidInput)
	}

	docs, _ := json.Marshal(product.RequiredDocuments)

	active := 0
	if product.Active {
		active = 1
	}

	query := `
		INSERT INTO credit_products (
			id, name, credit_type, min_amount, max_amount,
			min_duration_months, max_duration_months,
			base_interest_rate, min_interest_rate, max_interest_rate,
			min_income_required, max_debt_ratio, min_score_required,
			required_documents, active, description, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			credit_type = excluded.credit_type,
			min_amount = excluded.min_amount,
			max_amount = excluded.max_amount,
			min_duration_months = excluded.min_duration_months,
			max_duration_months = excluded.max_duration_months,
			base_interest_rate = excluded.base_interest_rate,
			min_interest_rate = excluded.min_interest_rate,
			max_interest_rate = excluded.max_interest_rate,
			min_income_required = excluded.min_income_required,
			max_debt_ratio = excluded.max_debt_ratio,
			min_score_required = excluded.min_score_required,
			required_documents = excluded.required_documents,
			active = excluded.active,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		product.ID, product.Name, product.CreditType,
		product.MinAmount, product.MaxAmount,
		product.MinDurationMonths, product.MaxDurationMonths,
		product.BaseInterestRate, product.MinInterestRate, product.MaxInterestRate,
		product.MinIncomeRequired, product.MaxDebtRatio, product.MinScoreRequired,
		string(docs), active, product.Description,
		product.CreatedAt, product.UpdatedAt,
	)
	return err
}

// GetProduct retrieves a credit product by ID.
func (r *SQLRepository) GetProduct(ctx context.Context, productID string) (*domain.CreditProduct, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: productID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, name, credit_type, min_amount, max_amount,
			   min_duration_months, max_duration_months,
			   base_interest_rate, min_interest_rate, max_interest_rate,
			   min_income_required, max_debt_ratio, min_score_required,
			   required_documents, active, description, created_at, updated_at
		FROM credit_products
		WHERE id = ?
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, r.rebind(query), productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return product, nil
}

// ListProducts retrieves all active credit products.
func (r *SQLRepository) ListProducts(ctx context.Context) ([]*domain.CreditProduct, error) {
	query := `
		SELECT id, name, credit_type, min_amount, max_amount,
			   min_duration_months, max_duration_months,
			   base_interest_rate, min_interest_rate, max_interest_rate,
			   min_income_required, max_debt_ratio, min_score_required,
			   required_documents, active, description, created_at, updated_at
		FROM credit_products
		WHERE active = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.CreditProduct
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func scanProduct(row rowScanner) (*domain.CreditProduct, error) {
	var p domain.CreditProduct
	var docs string
	var description sql.NullString
	var active int

	if err := row.Scan(
		&p.ID, &p.Name, &p.CreditType, &p.MinAmount, &p.MaxAmount,
		&p.MinDurationMonths, &p.MaxDurationMonths,
		&p.BaseInterestRate, &p.MinInterestRate, &p.MaxInterestRate,
		&p.MinIncomeRequired, &p.MaxDebtRatio, &p.MinScoreRequired,
		&docs, &active, &description, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Active = active == 1
	json.Unmarshal([]byte(docs), &p.RequiredDocuments)

	return &p, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
