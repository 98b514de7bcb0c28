package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreditType enumerates the supported credit products.
type CreditType string

const (
	CreditConsumption CreditType = "CONSUMPTION"
	CreditAuto        CreditType = "AUTO"
	CreditRealEstate  CreditType = "REAL_ESTATE"
	CreditBusiness    CreditType = "BUSINESS"
)

// DemandStatus is the workflow state of a credit demand. The scoring and
// rule-evaluation core never writes it; status transitions belong to the
// human decision workflow.
type DemandStatus string

const (
	DemandPendingAnalyst DemandStatus = "PENDING_ANALYST"
	DemandApproved       DemandStatus = "APPROVED"
	DemandRejected       DemandStatus = "REJECTED"
	DemandCancelled      DemandStatus = "CANCELLED"
)

// CreditDemand is a client's loan application. The core reads amount,
// duration and type; decision fields are written by the workflow layer.
type CreditDemand struct {
	ID             string       `json:"id"`
	Reference      string       `json:"reference"`
	ClientID       string       `json:"clientId"`
	CreditType     CreditType   `json:"creditType"`
	Amount         float64      `json:"amount"`
	DurationMonths int          `json:"durationMonths"`
	Purpose        string       `json:"purpose,omitempty"`
	Status         DemandStatus `json:"status"`
	AssignedAgent  string       `json:"assignedAgent,omitempty"`

	// Decision fields, owned by the workflow layer.
	DecisionDate     *time.Time `json:"decisionDate,omitempty"`
	DecisionComment  string     `json:"decisionComment,omitempty"`
	ApprovedAmount   float64    `json:"approvedAmount,omitempty"`
	ApprovedDuration int        `json:"approvedDuration,omitempty"`
	InterestRate     float64    `json:"interestRate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewReference generates a unique demand reference such as "CR-1A2B3C4D".
func NewReference() string {
	return "CR-" + strings.ToUpper(uuid.New().String()[:8])
}

// MonthlyPayment computes the annuity installment for the approved terms.
// Returns 0 when the demand has no approved amount or duration yet.
func (d *CreditDemand) MonthlyPayment() float64 {
	if d.ApprovedAmount <= 0 || d.ApprovedDuration <= 0 {
		return 0
	}
	return Annuity(d.ApprovedAmount, d.ApprovedDuration, d.InterestRate)
}

// Annuity computes the monthly installment for a principal over a number of
// months at an annual interest rate percentage. A zero rate degrades to a
// straight division.
func Annuity(principal float64, months int, annualRatePct float64) float64 {
	if months <= 0 {
		return 0
	}
	if annualRatePct <= 0 {
		return principal / float64(months)
	}
	r := annualRatePct / 100 / 12
	n := float64(months)
	factor := math.Pow(1+r, n)
	return principal * (r * factor) / (factor - 1)
}
