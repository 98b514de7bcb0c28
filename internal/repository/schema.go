package repository

// Schema definitions for the Heron database.
// Compatible with both SQLite and PostgreSQL.

const schemaClientProfiles = `
CREATE TABLE IF NOT EXISTS client_profiles (
    client_id TEXT PRIMARY KEY,
    birth_date TIMESTAMP NOT NULL,
    marital_status TEXT NOT NULL,
    dependents INTEGER NOT NULL DEFAULT 0,
    employment_status TEXT NOT NULL,
    sector TEXT,
    seniority_years REAL NOT NULL DEFAULT 0,
    monthly_income REAL NOT NULL DEFAULT 0,
    existing_credits INTEGER NOT NULL DEFAULT 0,
    monthly_debt_payment REAL NOT NULL DEFAULT 0,
    bank_seniority_months INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaPaymentHistory = `
CREATE TABLE IF NOT EXISTS payment_history (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL,
    credit_type TEXT,
    amount REAL NOT NULL,
    payment_date TIMESTAMP NOT NULL,
    due_date TIMESTAMP NOT NULL,
    days_late INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_history_client ON payment_history(client_id);
`

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL,
    date TIMESTAMP NOT NULL,
    amount REAL NOT NULL,
    type TEXT NOT NULL,
    category TEXT,
    balance_after REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_client ON transactions(client_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(client_id, date);
`

const schemaCreditDemands = `
CREATE TABLE IF NOT EXISTS credit_demands (
    id TEXT PRIMARY KEY,
    reference TEXT NOT NULL UNIQUE,
    client_id TEXT NOT NULL,
    credit_type TEXT NOT NULL,
    amount REAL NOT NULL,
    duration_months INTEGER NOT NULL,
    purpose TEXT,
    status TEXT NOT NULL,
    assigned_agent TEXT,
    decision_date TIMESTAMP,
    decision_comment TEXT,
    approved_amount REAL NOT NULL DEFAULT 0,
    approved_duration INTEGER NOT NULL DEFAULT 0,
    interest_rate REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credit_demands_client ON credit_demands(client_id);
CREATE INDEX IF NOT EXISTS idx_credit_demands_status ON credit_demands(status);
`

// credit_scores keeps exactly one row per demand; recomputation replaces it.
const schemaCreditScores = `
CREATE TABLE IF NOT EXISTS credit_scores (
    id TEXT PRIMARY KEY,
    demand_id TEXT NOT NULL UNIQUE,
    score_value INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    factors_positive TEXT NOT NULL,
    factors_negative TEXT NOT NULL,
    model_version TEXT NOT NULL,
    features TEXT NOT NULL,
    attribution TEXT NOT NULL,
    recommendation TEXT NOT NULL,
    confidence_level REAL NOT NULL DEFAULT 0,
    calculated_at TIMESTAMP NOT NULL
);
`

const schemaBusinessRules = `
CREATE TABLE IF NOT EXISTS business_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    rule_type TEXT NOT NULL,
    credit_type TEXT,
    condition TEXT NOT NULL,
    threshold_value REAL,
    active INTEGER NOT NULL DEFAULT 1,
    priority INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_business_rules_active ON business_rules(active);
`

// rule_evaluations is append-only: rows are never updated or deleted.
const schemaRuleEvaluations = `
CREATE TABLE IF NOT EXISTS rule_evaluations (
    id TEXT PRIMARY KEY,
    demand_id TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    rule_name TEXT NOT NULL,
    passed INTEGER NOT NULL,
    computed_value REAL,
    message TEXT NOT NULL,
    evaluated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rule_evaluations_demand ON rule_evaluations(demand_id);
`

const schemaCreditProducts = `
CREATE TABLE IF NOT EXISTS credit_products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    credit_type TEXT NOT NULL,
    min_amount REAL NOT NULL,
    max_amount REAL NOT NULL,
    min_duration_months INTEGER NOT NULL,
    max_duration_months INTEGER NOT NULL,
    base_interest_rate REAL NOT NULL DEFAULT 0,
    min_interest_rate REAL NOT NULL DEFAULT 0,
    max_interest_rate REAL NOT NULL DEFAULT 0,
    min_income_required REAL NOT NULL DEFAULT 0,
    max_debt_ratio REAL NOT NULL DEFAULT 100,
    min_score_required INTEGER NOT NULL DEFAULT 0,
    required_documents TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    description TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credit_products_active ON credit_products(active);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaClientProfiles,
		schemaPaymentHistory,
		schemaTransactions,
		schemaCreditDemands,
		schemaCreditScores,
		schemaBusinessRules,
		schemaRuleEvaluations,
		schemaCreditProducts,
	}
}
