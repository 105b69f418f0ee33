package core

import (
	"errors"
	"strings"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	CreditCard AccountType = "credit_card"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Single      RecurrenceType = "single"
	Recurring   RecurrenceType = "recurring"
	Installment RecurrenceType = "installment"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Salary         Category = "salary"
	Housing        Category = "housing"
	Food           Category = "food"
	Transportation Category = "transportation"
	Health         Category = "health"
	Education      Category = "education"
	Leisure        Category = "leisure"
	Investments    Category = "investments"
	Other          Category = "other"
)

type (
	AccountType     string
	TransactionType string
	RecurrenceType  string
	Frequency       string
	Category        string

	// CardTerms carries the fields that only exist on credit-card accounts.
	CardTerms struct {
		ClosingDay int // 1-31
		DueDay     int // 1-31
		Limit      Money
	}

	Account struct {
		ID             string
		OwnerID        string
		Name           string
		Type           AccountType
		InitialBalance Money
		Currency       string
		Card           *CardTerms // non-nil iff Type == CreditCard
	}

	// AccountDraft is an account as submitted by the host, before an id is assigned.
	AccountDraft struct {
		OwnerID        string
		Name           string
		Type           AccountType
		InitialBalance Money
		Currency       string
		Card           *CardTerms
	}

	// InstallmentMark positions a row inside an installment plan.
	InstallmentMark struct {
		Current int
		Total   int
	}

	Transaction struct {
		ID             string
		OwnerID        string
		AccountID      string
		Type           TransactionType
		Description    string
		Amount         Money
		Date           Date // invoice due date for credit-card expenses
		PurchaseDate   Date // set only for credit-card expenses
		Category       Category
		CustomCategory string
		IsPaid         bool
		Recurrence     RecurrenceType
		Frequency      Frequency        // set iff Recurrence == Recurring
		Installment    *InstallmentMark // set iff Recurrence == Installment
	}

	// TransactionDraft is the input of AddTransaction. Date is the purchase
	// date; InstallmentTotal is only read when Recurrence is Installment.
	TransactionDraft struct {
		OwnerID          string
		AccountID        string
		Type             TransactionType
		Description      string
		Amount           Money
		Date             Date
		Category         Category
		CustomCategory   string
		IsPaid           bool
		Recurrence       RecurrenceType
		Frequency        Frequency
		InstallmentTotal int
	}
)

// KnownBanks lists the institution names offered as account names.
var KnownBanks = []string{
	"Itaú Unibanco",
	"Nubank",
	"Santander",
	"Caixa Econômica Federal",
	"Bradesco",
	"Banco do Brasil",
	"Inter",
	"C6 Bank",
	"Original",
}

// Categories lists every predefined category in display order.
var Categories = []Category{
	Salary, Housing, Food, Transportation, Health, Education, Leisure, Investments, Other,
}

var (
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidRecurrence      = errors.New("invalid recurrence type")
	ErrInvalidFrequency       = errors.New("invalid recurrence frequency")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidCardTerms       = errors.New("invalid credit card terms")
	ErrUnexpectedCardTerms    = errors.New("card terms are only allowed on credit card accounts")
	ErrInvalidInstallment     = errors.New("invalid installment")
	ErrEmptyName              = errors.New("empty account name")
	ErrEmptyAccountID         = errors.New("empty account id")
	ErrInvalidCurrency        = errors.New("invalid currency code")
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, Investment, CreditCard:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (r RecurrenceType) Valid() bool {
	switch r {
	case Single, Recurring, Installment:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display label for a transaction's category. A custom
// category replaces "other" when present.
func (t Transaction) Label() string {
	if t.Category == Other && strings.TrimSpace(t.CustomCategory) != "" {
		return strings.TrimSpace(t.CustomCategory)
	}
	if t.Category == "" {
		return string(Other)
	}
	return string(t.Category)
}

// IsCreditCard reports whether the account is a credit card.
func (a Account) IsCreditCard() bool {
	return a.Type == CreditCard
}

func (c CardTerms) Validate() error {
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidCardTerms
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidCardTerms
	}
	if c.Limit.Cents <= 0 {
		return ErrInvalidCardTerms
	}
	return nil
}

func validateAccountFields(name string, typ AccountType, currency string, card *CardTerms) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !typ.Valid() {
		return ErrInvalidAccountType
	}
	if len(strings.TrimSpace(currency)) != 3 {
		return ErrInvalidCurrency
	}
	if typ == CreditCard {
		if card == nil {
			return ErrInvalidCardTerms
		}
		return card.Validate()
	}
	if card != nil {
		return ErrUnexpectedCardTerms
	}
	return nil
}

func (d AccountDraft) Validate() error {
	return validateAccountFields(d.Name, d.Type, d.Currency, d.Card)
}

func (a Account) Validate() error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}
	return validateAccountFields(a.Name, a.Type, a.Currency, a.Card)
}

func (d TransactionDraft) Validate() error {
	if strings.TrimSpace(d.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if !d.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if d.Category != "" && !d.Category.Valid() {
		return ErrInvalidCategory
	}
	switch d.Recurrence {
	case "", Single, Installment:
	case Recurring:
		if !d.Frequency.Valid() {
			return ErrInvalidFrequency
		}
	default:
		return ErrInvalidRecurrence
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.ID == "" {
		return errors.New("empty transaction id")
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Recurrence.Valid() {
		return ErrInvalidRecurrence
	}
	if (t.Recurrence == Recurring) != t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if (t.Recurrence == Installment) != (t.Installment != nil) {
		return ErrInvalidInstallment
	}
	if m := t.Installment; m != nil {
		if m.Total <= 0 || m.Current < 1 || m.Current > m.Total {
			return ErrInvalidInstallment
		}
	}
	return nil
}
