// Package domain defines the core types and interfaces for Heron.
package domain

import (
	"time"
)

// MaritalStatus of a client.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

// EmploymentStatus of a client.
type EmploymentStatus string

const (
	EmploymentCivilServant EmploymentStatus = "CIVIL_SERVANT"
	EmploymentEmployee     EmploymentStatus = "EMPLOYEE"
	EmploymentSelfEmployed EmploymentStatus = "SELF_EMPLOYED"
	EmploymentUnemployed   EmploymentStatus = "UNEMPLOYED"
)

// ClientProfile holds the demographic, professional and banking attributes
// of a client. It is maintained by the account-management collaborator and
// read-only for the scoring core.
type ClientProfile struct {
	ClientID            string           `json:"clientId"`
	BirthDate           time.Time        `json:"birthDate"`
	MaritalStatus       MaritalStatus    `json:"maritalStatus"`
	Dependents          int              `json:"dependents"`
	EmploymentStatus    EmploymentStatus `json:"employmentStatus"`
	Sector              string           `json:"sector,omitempty"`
	SeniorityYears      float64          `json:"seniorityYears"`
	MonthlyIncome       float64          `json:"monthlyIncome"`
	ExistingCredits     int              `json:"existingCredits"`
	MonthlyDebtPayment  float64          `json:"monthlyDebtPayment"`
	BankSeniorityMonths int              `json:"bankSeniorityMonths"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Age returns the client's age in fractional years as of the given time.
func (p *ClientProfile) Age(at time.Time) float64 {
	return at.Sub(p.BirthDate).Hours() / 24 / 365.25
}

// DebtRatio is the monthly debt payment as a percentage of monthly income.
// Returns 0 when income is not positive; callers that need the unfavorable
// sentinel apply it themselves (see ScoringPolicy).
func (p *ClientProfile) DebtRatio() float64 {
	if p.MonthlyIncome > 0 {
		return p.MonthlyDebtPayment / p.MonthlyIncome * 100
	}
	return 0
}

// PaymentStatus classifies a historical payment.
type PaymentStatus string

const (
	PaymentOnTime  PaymentStatus = "ON_TIME"
	PaymentLate    PaymentStatus = "LATE"
	PaymentDefault PaymentStatus = "DEFAULT"
)

// PaymentRecord is one historical credit payment of a client. Records are
// created by the data-ingestion collaborator and immutable afterwards; the
// core only consumes them in aggregate.
type PaymentRecord struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"clientId"`
	CreditType  string        `json:"creditType,omitempty"`
	Amount      float64       `json:"amount"`
	PaymentDate time.Time     `json:"paymentDate"`
	DueDate     time.Time     `json:"dueDate"`
	DaysLate    int           `json:"daysLate"`
	Status      PaymentStatus `json:"status"`
}

// TransactionType classifies a bank transaction.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// TransactionRecord is one bank account movement of a client, used for
// behavioral analysis. Same lifecycle as PaymentRecord.
type TransactionRecord struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"clientId"`
	Date         time.Time       `json:"date"`
	Amount       float64         `json:"amount"`
	Type         TransactionType `json:"type"`
	Category     string          `json:"category,omitempty"`
	BalanceAfter float64         `json:"balanceAfter"`
}

// PaymentStatistics is the aggregate of a client's payment history.
// A client with no history yields the zero value, which feature extraction
// treats as a distinct penalized case rather than neutral.
type PaymentStatistics struct {
	Total        int     `json:"total"`
	LateCount    int     `json:"lateCount"`
	DefaultCount int     `json:"defaultCount"`
	AvgDaysLate  float64 `json:"avgDaysLate"`
	OnTimeRate   float64 `json:"onTimeRate"` // percentage, 0-100
}

// TransactionStatistics is the aggregate of a client's bank transactions.
type TransactionStatistics struct {
	AvgBalance       float64 `json:"avgBalance"`
	TotalCredits     float64 `json:"totalCredits"`
	TotalDebits      float64 `json:"totalDebits"`
	TransactionCount int     `json:"transactionCount"`
}
