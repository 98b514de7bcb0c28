// Seed tool for loading fixture data into a Heron database.
//
// Usage:
//
//	go run cmd/seed/main.go -db ./heron.db -clients 80
//
// This tool:
//  1. Creates client profiles across four income bands
//  2. Generates payment history (70% good, 20% medium, 10% bad payers)
//  3. Generates bank transactions with a running balance
//  4. Creates credit demands with amounts coherent per credit type
//  5. Installs the default business rules and credit products
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
)

var sectors = []string{
	"Banque", "Télécommunications", "Commerce", "Industrie",
	"Santé", "Éducation", "Administration", "Transport", "Agriculture",
}

var categories = []string{"Salaire", "Achat", "Retrait", "Virement", "Facture"}

func main() {
	dbPath := flag.String("db", "./heron.db", "Path to the SQLite database")
	numClients := flag.Int("clients", 80, "Number of client profiles to create")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	skipRules := flag.Bool("skip-rules", false, "Do not install default rules and products")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	ctx := context.Background()

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: *dbPath,
	})
	if err != nil {
		fmt.Printf("ERROR: failed to open database %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer repo.Close()

	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║        HERON SEED - Fixture Data Loader       ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
	fmt.Printf("\nDatabase: %s\n", *dbPath)
	fmt.Printf("Clients:  %d\n\n", *numClients)

	clientIDs := seedProfiles(ctx, repo, rng, *numClients)
	payments := seedPayments(ctx, repo, rng, clientIDs)
	transactions := seedTransactions(ctx, repo, rng, clientIDs)
	demands := seedDemands(ctx, repo, rng, clientIDs)

	rulesCount, productsCount := 0, 0
	if !*skipRules {
		rulesCount = seedRules(ctx, repo)
		productsCount = seedProducts(ctx, repo)
	}

	fmt.Println("\n✓ Seed complete")
	fmt.Printf("  - Profiles:     %d\n", len(clientIDs))
	fmt.Printf("  - Payments:     %d\n", payments)
	fmt.Printf("  - Transactions: %d\n", transactions)
	fmt.Printf("  - Demands:      %d\n", demands)
	fmt.Printf("  - Rules:        %d\n", rulesCount)
	fmt.Printf("  - Products:     %d\n", productsCount)
}

func seedProfiles(ctx context.Context, repo domain.Repository, rng *rand.Rand, n int) []string {
	fmt.Printf("Creating %d client profiles...\n", n)

	incomeBands := [][2]int{
		{75_000, 150_000},
		{150_000, 300_000},
		{300_000, 500_000},
		{500_000, 1_000_000},
	}
	maritals := []domain.MaritalStatus{
		domain.MaritalSingle, domain.MaritalMarried,
		domain.MaritalDivorced, domain.MaritalWidowed,
	}
	employments := []domain.EmploymentStatus{
		domain.EmploymentEmployee, domain.EmploymentCivilServant, domain.EmploymentSelfEmployed,
	}

	now := time.Now().UTC()
	ids := make([]string, 0, n)

	for i := 0; i < n; i++ {
		clientID := fmt.Sprintf("client-%03d", i+1)

		band := incomeBands[rng.Intn(len(incomeBands))]
		income := float64(band[0] + rng.Intn(band[1]-band[0]))

		existingCredits := rng.Intn(4)
		monthlyDebt := 0.0
		if existingCredits > 0 {
			monthlyDebt = income * rng.Float64() * 0.4
		}

		ageYears := 21 + rng.Intn(45)
		profile := &domain.ClientProfile{
			ClientID:            clientID,
			BirthDate:           now.AddDate(-ageYears, -rng.Intn(12), 0),
			MaritalStatus:       maritals[rng.Intn(len(maritals))],
			Dependents:          rng.Intn(6),
			EmploymentStatus:    employments[rng.Intn(len(employments))],
			Sector:              sectors[rng.Intn(len(sectors))],
			SeniorityYears:      0.5 + rng.Float64()*19.5,
			MonthlyIncome:       income,
			ExistingCredits:     existingCredits,
			MonthlyDebtPayment:  monthlyDebt,
			BankSeniorityMonths: 6 + rng.Intn(115),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := repo.SaveProfile(ctx, profile); err != nil {
			fmt.Printf("ERROR: failed to save profile %s: %v\n", clientID, err)
			os.Exit(1)
		}
		ids = append(ids, clientID)
	}

	return ids
}

// payerType picks good/medium/bad with 70/20/10 weights.
func payerType(rng *rand.Rand) string {
	switch v := rng.Intn(100); {
	case v < 70:
		return "good"
	case v < 90:
		return "medium"
	default:
		return "bad"
	}
}

func seedPayments(ctx context.Context, repo domain.Repository, rng *rand.Rand, clientIDs []string) int {
	fmt.Println("Creating payment history...")

	creditTypes := []string{"CONSUMPTION", "AUTO", "REAL_ESTATE"}
	now := time.Now().UTC()
	total := 0

	for _, clientID := range clientIDs {
		profileType := payerType(rng)
		numPayments := 5 + rng.Intn(26)

		for i := 0; i < numPayments; i++ {
			var daysLate int
			switch profileType {
			case "good":
				daysLate = 0
			case "medium":
				if rng.Intn(5) == 0 {
					daysLate = 1 + rng.Intn(15)
				}
			default:
				switch rng.Intn(4) {
				case 2:
					daysLate = 1 + rng.Intn(30)
				case 3:
					daysLate = 30 + rng.Intn(61)
				}
			}

			status := domain.PaymentOnTime
			if daysLate > 30 {
				status = domain.PaymentDefault
			} else if daysLate > 0 {
				status = domain.PaymentLate
			}

			paymentDate := now.AddDate(0, 0, -rng.Intn(730))
			record := &domain.PaymentRecord{
				ID:          uuid.New().String(),
				ClientID:    clientID,
				CreditType:  creditTypes[rng.Intn(len(creditTypes))],
				Amount:      float64(50_000 + rng.Intn(450_000)),
				PaymentDate: paymentDate,
				DueDate:     paymentDate.AddDate(0, 0, -daysLate),
				DaysLate:    daysLate,
				Status:      status,
			}
			if err := repo.SavePaymentRecord(ctx, record); err != nil {
				fmt.Printf("ERROR: failed to save payment for %s: %v\n", clientID, err)
				os.Exit(1)
			}
			total++
		}
	}

	return total
}

func seedTransactions(ctx context.Context, repo domain.Repository, rng *rand.Rand, clientIDs []string) int {
	fmt.Println("Creating bank transactions...")

	now := time.Now().UTC()
	total := 0

	for _, clientID := range clientIDs {
		balance := float64(100_000 + rng.Intn(4_900_000))
		numTransactions := 20 + rng.Intn(81)

		for i := 0; i < numTransactions; i++ {
			txType := domain.TransactionDebit
			var amount float64
			if rng.Intn(100) < 40 {
				txType = domain.TransactionCredit
				amount = float64(10_000 + rng.Intn(990_000))
				balance += amount
			} else {
				amount = float64(5_000 + rng.Intn(495_000))
				balance -= amount
				if balance < 0 {
					balance = 0
				}
			}

			record := &domain.TransactionRecord{
				ID:           uuid.New().String(),
				ClientID:     clientID,
				Date:         now.AddDate(0, 0, -rng.Intn(365)),
				Amount:       amount,
				Type:         txType,
				Category:     categories[rng.Intn(len(categories))],
				BalanceAfter: balance,
			}
			if err := repo.SaveTransactionRecord(ctx, record); err != nil {
				fmt.Printf("ERROR: failed to save transaction for %s: %v\n", clientID, err)
				os.Exit(1)
			}
			total++
		}
	}

	return total
}

func seedDemands(ctx context.Context, repo domain.Repository, rng *rand.Rand, clientIDs []string) int {
	fmt.Println("Creating credit demands...")

	now := time.Now().UTC()
	total := 0

	for _, clientID := range clientIDs {
		numDemands := 1 + rng.Intn(3)

		for i := 0; i < numDemands; i++ {
			var (
				creditType domain.CreditType
				amount     float64
				durations  []int
			)
			switch rng.Intn(4) {
			case 0:
				creditType = domain.CreditConsumption
				amount = float64(500_000 + rng.Intn(4_500_000))
				durations = []int{12, 18, 24, 36}
			case 1:
				creditType = domain.CreditAuto
				amount = float64(3_000_000 + rng.Intn(12_000_000))
				durations = []int{24, 36, 48, 60}
			case 2:
				creditType = domain.CreditRealEstate
				amount = float64(10_000_000 + rng.Intn(40_000_000))
				durations = []int{120, 180, 240}
			default:
				creditType = domain.CreditBusiness
				amount = float64(2_000_000 + rng.Intn(18_000_000))
				durations = []int{12, 24, 36, 48}
			}

			created := now.AddDate(0, 0, -rng.Intn(180))
			demand := &domain.CreditDemand{
				ID:             uuid.New().String(),
				Reference:      domain.NewReference(),
				ClientID:       clientID,
				CreditType:     creditType,
				Amount:         amount,
				DurationMonths: durations[rng.Intn(len(durations))],
				Purpose:        "Demande générée pour les tests",
				Status:         domain.DemandPendingAnalyst,
				CreatedAt:      created,
				UpdatedAt:      created,
			}
			if err := repo.SaveDemand(ctx, demand); err != nil {
				fmt.Printf("ERROR: failed to save demand for %s: %v\n", clientID, err)
				os.Exit(1)
			}
			total++
		}
	}

	return total
}

func seedRules(ctx context.Context, repo domain.Repository) int {
	fmt.Println("Installing default business rules...")

	now := time.Now().UTC()
	minScore := 400.0
	rules := []*domain.BusinessRule{
		{
			ID:          "rule-age",
			Name:        "Âge du demandeur",
			RuleType:    domain.RuleAgeLimit,
			Condition:   json.RawMessage(`{"min_age": 21, "max_age": 65}`),
			Active:      true,
			Priority:    100,
			Description: "Le demandeur doit avoir entre 21 et 65 ans",
		},
		{
			ID:          "rule-debt-ratio",
			Name:        "Taux d'endettement maximum",
			RuleType:    domain.RuleDebtRatio,
			Condition:   json.RawMessage(`{"max_ratio": 40}`),
			Active:      true,
			Priority:    90,
			Description: "Le taux d'endettement ne doit pas dépasser 40%",
		},
		{
			ID:             "rule-min-score",
			Name:           "Score minimum",
			RuleType:       domain.RuleScoringThreshold,
			Condition:      json.RawMessage(`{}`),
			ThresholdValue: &minScore,
			Active:         true,
			Priority:       80,
			Description:    "Le score de crédit doit être au moins 400",
		},
		{
			ID:          "rule-amount-range",
			Name:        "Plage de montant",
			RuleType:    domain.RuleAmountLimit,
			Condition:   json.RawMessage(`{"min_amount": 100000, "max_amount": 50000000}`),
			Active:      true,
			Priority:    70,
			Description: "Le montant demandé doit rester dans la plage autorisée",
		},
	}

	for _, r := range rules {
		r.CreatedAt = now
		r.UpdatedAt = now
		if err := repo.SaveRule(ctx, r); err != nil {
			fmt.Printf("ERROR: failed to save rule %s: %v\n", r.ID, err)
			os.Exit(1)
		}
	}

	return len(rules)
}

func seedProducts(ctx context.Context, repo domain.Repository) int {
	fmt.Println("Installing default credit products...")

	now := time.Now().UTC()
	products := []*domain.CreditProduct{
		{
			ID:                "product-consumption",
			Name:              "Crédit Consommation",
			CreditType:        domain.CreditConsumption,
			MinAmount:         100_000,
			MaxAmount:         5_000_000,
			MinDurationMonths: 6,
			MaxDurationMonths: 36,
			MinIncomeRequired: 100_000,
			MaxDebtRatio:      40,
			MinScoreRequired:  400,
			BaseInterestRate:  12,
			RequiredDocuments: []string{"CNI", "BULLETIN_SALAIRE"},
			Active:            true,
		},
		{
			ID:                "product-auto",
			Name:              "Crédit Auto Standard",
			CreditType:        domain.CreditAuto,
			MinAmount:         500_000,
			MaxAmount:         15_000_000,
			MinDurationMonths: 12,
			MaxDurationMonths: 60,
			MinIncomeRequired: 200_000,
			MaxDebtRatio:      40,
			MinScoreRequired:  450,
			BaseInterestRate:  10,
			RequiredDocuments: []string{"CNI", "BULLETIN_SALAIRE", "FACTURE_PROFORMA"},
			Active:            true,
		},
		{
			ID:                "product-immo",
			Name:              "Crédit Immobilier",
			CreditType:        domain.CreditRealEstate,
			MinAmount:         5_000_000,
			MaxAmount:         50_000_000,
			MinDurationMonths: 60,
			MaxDurationMonths: 240,
			MinIncomeRequired: 500_000,
			MaxDebtRatio:      35,
			MinScoreRequired:  550,
			BaseInterestRate:  8,
			RequiredDocuments: []string{"CNI", "BULLETIN_SALAIRE", "TITRE_FONCIER"},
			Active:            true,
		},
		{
			ID:                "product-business",
			Name:              "Crédit Entreprise",
			CreditType:        domain.CreditBusiness,
			MinAmount:         1_000_000,
			MaxAmount:         20_000_000,
			MinDurationMonths: 12,
			MaxDurationMonths: 48,
			MinIncomeRequired: 300_000,
			MaxDebtRatio:      45,
			MinScoreRequired:  500,
			BaseInterestRate:  11,
			RequiredDocuments: []string{"CNI", "REGISTRE_COMMERCE", "BILAN"},
			Active:            true,
		},
	}

	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := repo.SaveProduct(ctx, p); err != nil {
			fmt.Printf("ERROR: failed to save product %s: %v\n", p.ID, err)
			os.Exit(1)
		}
	}

	return len(products)
}
