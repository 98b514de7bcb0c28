package domain

import (
	"time"
)

// RiskLevel is the discrete risk tier derived from the score value.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// Recommendation is the advisory outcome of the scoring pipeline. It never
// transitions a demand's status by itself.
type Recommendation string

const (
	RecommendAutoApprove  Recommendation = "AUTO_APPROVE"
	RecommendManualReview Recommendation = "MANUAL_REVIEW"
	RecommendAutoReject   Recommendation = "AUTO_REJECT"
)

// Factor is one human-readable contributing factor of a score. Impact is a
// signed display magnitude; it is not summed back into the score.
type Factor struct {
	Factor string `json:"factor"`
	Value  string `json:"value"`
	Impact int    `json:"impact"`
}

// Score is the credit score computed for a demand. Exactly one Score exists
// per demand; recomputation upserts the stored record.
type Score struct {
	ID              string         `json:"id"`
	DemandID        string         `json:"demandId"`
	ScoreValue      int            `json:"scoreValue"` // 0-1000
	RiskLevel       RiskLevel      `json:"riskLevel"`
	FactorsPositive []Factor       `json:"factorsPositive"`
	FactorsNegative []Factor       `json:"factorsNegative"`
	ModelVersion    string         `json:"modelVersion"`
	Features        FeatureSet     `json:"features"`
	Attribution     map[string]int `json:"attribution"` // simulated, non-deterministic
	Recommendation  Recommendation `json:"recommendation"`
	ConfidenceLevel float64        `json:"confidenceLevel"` // 0-100
	CalculatedAt    time.Time      `json:"calculatedAt"`
}

// FeatureSet is the fixed-shape feature bundle extracted for a demand.
// Both the score calculator and the factor explainer read these fields, so
// the two stay aligned at compile time.
type FeatureSet struct {
	// Demographic
	Age           float64 `json:"age"`
	Dependents    int     `json:"dependents"`
	MaritalStatus string  `json:"maritalStatus"`

	// Professional
	EmploymentStatus string  `json:"employmentStatus"`
	MonthlyIncome    float64 `json:"monthlyIncome"`
	SeniorityYears   float64 `json:"seniorityYears"`
	Sector           string  `json:"sector"`

	// Financial
	DebtRatio           float64 `json:"debtRatio"`
	ExistingCredits     int     `json:"existingCredits"`
	MonthlyDebtPayment  float64 `json:"monthlyDebtPayment"`
	BankSeniorityMonths int     `json:"bankSeniorityMonths"`
	AvailableIncome     float64 `json:"availableIncome"`
	PaymentCapacity     float64 `json:"paymentCapacity"`

	// Demand
	RequestedAmount      float64 `json:"requestedAmount"`
	DurationMonths       int     `json:"durationMonths"`
	LoanToIncome         float64 `json:"loanToIncomeRatio"`
	AmountToAnnualIncome float64 `json:"amountToAnnualIncome"`
	CreditType           string  `json:"creditType"`

	// Payment history
	TotalPayments   int     `json:"totalPayments"`
	LatePayments    int     `json:"latePayments"`
	DefaultPayments int     `json:"defaultPayments"`
	AvgDaysLate     float64 `json:"avgDaysLate"`
	OnTimeRate      float64 `json:"onTimeRate"`

	// Banking behavior
	AvgBalance       float64 `json:"avgBalance"`
	TotalCredits     float64 `json:"totalCredits"`
	TotalDebits      float64 `json:"totalDebits"`
	TransactionCount int     `json:"transactionCount"`
}
