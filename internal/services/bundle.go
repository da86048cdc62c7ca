package services

import (
	"database/sql"
	"time"

	"budgeteer/internal/auth"
	"budgeteer/internal/cache"
	"budgeteer/internal/core"
	"budgeteer/internal/sheets"
	"budgeteer/internal/storage"
)

// Bundle wires every service over one database handle.
type Bundle struct {
	Auth         *AuthService
	Categories   *CategoryService
	Rules        *RuleService
	Transactions *TransactionService
	Budgets      *BudgetService
	Goals        *GoalService
	Reports      *ReportService
	Notifier     *Notifier
}

// BundleConfig carries the tunables the services need beyond the database.
type BundleConfig struct {
	LoginPolicy    auth.LoginPolicy
	SessionTimeout time.Duration
	Publisher      Publisher
	ReportCache    *cache.LRUCache[core.Report]
	ReportWriter   sheets.ReportWriter
}

func NewBundle(db *sql.DB, cfg BundleConfig) *Bundle {
	notifier := NewNotifier(storage.NewNotificationRepo(db), cfg.Publisher)
	budgets := NewBudgetService(db, notifier)
	goals := NewGoalService(db, notifier)
	reports := NewReportService(db, cfg.ReportCache, cfg.ReportWriter)

	return &Bundle{
		Auth:         NewAuthService(db, cfg.LoginPolicy, cfg.SessionTimeout),
		Categories:   NewCategoryService(db),
		Rules:        NewRuleService(db),
		Transactions: NewTransactionService(db, budgets, goals, reports),
		Budgets:      budgets,
		Goals:        goals,
		Reports:      reports,
		Notifier:     notifier,
	}
}
