package core

import (
	"encoding/json"
	"strings"
	"time"
)

type (
	Category      string
	PaymentType   string
	RecurringType string

	// Expense is a single spending record.
	Expense struct {
		ID            string        `json:"id"`
		Title         string        `json:"title"`
		Description   string        `json:"description,omitempty"`
		Amount        float64       `json:"amount"`
		Currency      string        `json:"currency"`
		PaymentType   PaymentType   `json:"paymentType"`
		Category      Category      `json:"category"`
		Date          time.Time     `json:"date"`
		Tags          []string      `json:"tags"`
		IsRecurring   bool          `json:"isRecurring"`
		RecurringType RecurringType `json:"recurringType,omitempty"`
		Notes         string        `json:"notes,omitempty"`
		CreatedBy     string        `json:"createdBy,omitempty"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
	}

	// ExpenseInput carries the fields of a create or partial update request.
	// Nil fields are left untouched.
	ExpenseInput struct {
		Title         *string   `json:"title"`
		Description   *string   `json:"description"`
		Amount        *float64  `json:"amount"`
		Currency      *string   `json:"currency"`
		PaymentType   *string   `json:"paymentType"`
		Category      *string   `json:"category"`
		Date          *string   `json:"date"`
		Tags          *[]string `json:"tags"`
		IsRecurring   *bool     `json:"isRecurring"`
		RecurringType *string   `json:"recurringType"`
		Notes         *string   `json:"notes"`
		CreatedBy     *string   `json:"createdBy"`
	}

	// Option is a selectable enum value with its display label.
	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
		Icon  string `json:"icon"`
	}
)

// CurrencyINR is the only supported currency.
const CurrencyINR = "INR"

const (
	PaymentCash PaymentType = "cash"
	PaymentCard PaymentType = "card"
	PaymentUPI  PaymentType = "upi"
)

const (
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
	RecurringYearly  RecurringType = "yearly"
)

var (
	CategoryOptions = []Option{
		{Value: "food", Label: "Food & Dining", Icon: "🍽️"},
		{Value: "transportation", Label: "Transportation", Icon: "🚗"},
		{Value: "entertainment", Label: "Entertainment", Icon: "🎬"},
		{Value: "shopping", Label: "Shopping", Icon: "🛍️"},
		{Value: "bills", Label: "Bills & Utilities", Icon: "📄"},
		{Value: "healthcare", Label: "Healthcare", Icon: "🏥"},
		{Value: "education", Label: "Education", Icon: "📚"},
		{Value: "travel", Label: "Travel", Icon: "✈️"},
		{Value: "groceries", Label: "Groceries", Icon: "🛒"},
		{Value: "fuel", Label: "Fuel", Icon: "⛽"},
		{Value: "rent", Label: "Rent", Icon: "🏠"},
		{Value: "utilities", Label: "Utilities", Icon: "💡"},
		{Value: "insurance", Label: "Insurance", Icon: "🛡️"},
		{Value: "investment", Label: "Investment", Icon: "📈"},
		{Value: "charity", Label: "Charity", Icon: "❤️"},
		{Value: "other", Label: "Other", Icon: "📦"},
	}

	PaymentTypeOptions = []Option{
		{Value: string(PaymentCash), Label: "Cash", Icon: "💵"},
		{Value: string(PaymentCard), Label: "Card", Icon: "💳"},
		{Value: string(PaymentUPI), Label: "UPI", Icon: "📱"},
	}
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxExpenseNotes   = 1000
	maxTagLen         = 30
)

func hasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool    { return hasOption(CategoryOptions, string(c)) }
func (p PaymentType) Valid() bool { return hasOption(PaymentTypeOptions, string(p)) }

func (r RecurringType) Valid() bool {
	switch r {
	case RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

func (e Expense) RecordID() string      { return e.ID }
func (e Expense) RecordDate() time.Time { return e.Date }

// FormattedAmount renders the amount in rupees with Indian grouping.
func (e Expense) FormattedAmount() string {
	return FormatINR(e.Amount)
}

func (e Expense) MarshalJSON() ([]byte, error) {
	type alias Expense
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return json.Marshal(struct {
		alias
		FormattedAmount string `json:"formattedAmount"`
	}{alias(e), e.FormattedAmount()})
}

// NewExpense builds a validated expense from a create request.
func NewExpense(in ExpenseInput, now time.Time) (Expense, error) {
	e := Expense{Currency: CurrencyINR}
	verr := &ValidationError{}
	if in.Title == nil {
		verr.Add("title", "is required")
	}
	if in.Amount == nil {
		verr.Add("amount", "is required")
	}
	if in.PaymentType == nil {
		verr.Add("paymentType", "is required")
	}
	if in.Category == nil {
		verr.Add("category", "is required")
	}
	if in.Date == nil {
		verr.Add("date", "is required")
	}
	return e.merge(in, now, verr)
}

// Patch applies a partial update and re-validates the merged expense.
func (e Expense) Patch(in ExpenseInput, now time.Time) (Expense, error) {
	return e.merge(in, now, &ValidationError{})
}

func (e Expense) merge(in ExpenseInput, now time.Time, verr *ValidationError) (Expense, error) {
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Currency != nil {
		e.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.PaymentType != nil {
		e.PaymentType = PaymentType(strings.TrimSpace(*in.PaymentType))
	}
	if in.Category != nil {
		e.Category = Category(strings.TrimSpace(*in.Category))
	}
	applyDate(verr, "date", in.Date, &e.Date, now.Location())
	if in.Tags != nil {
		tags := make([]string, 0, len(*in.Tags))
		for _, tag := range *in.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		e.Tags = tags
	}
	if in.IsRecurring != nil {
		e.IsRecurring = *in.IsRecurring
	}
	if in.RecurringType != nil {
		e.RecurringType = RecurringType(strings.TrimSpace(*in.RecurringType))
	} else if !e.IsRecurring {
		e.RecurringType = ""
	}
	if in.Notes != nil {
		e.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.CreatedBy != nil {
		e.CreatedBy = strings.TrimSpace(*in.CreatedBy)
	}

	e.Amount = Round(e.Amount, MoneyPlaces)
	e.validate(now, verr)
	if err := verr.Err(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) validate(now time.Time, verr *ValidationError) {
	if e.Title == "" {
		if !hasField(verr, "title") {
			verr.Add("title", "is required")
		}
	} else {
		checkLength(verr, "title", e.Title, maxTitleLen)
	}
	checkLength(verr, "description", e.Description, maxDescriptionLen)
	checkLength(verr, "notes", e.Notes, maxExpenseNotes)

	if e.Amount < 0 {
		verr.Add("amount", "must be a non-negative number")
	}
	if e.Currency != CurrencyINR {
		verr.Add("currency", "must be %s", CurrencyINR)
	}
	if !hasField(verr, "paymentType") && !e.PaymentType.Valid() {
		verr.Add("paymentType", "must be one of cash, card, upi")
	}
	if !hasField(verr, "category") && !e.Category.Valid() {
		verr.Add("category", "is not a supported category")
	}
	if !hasField(verr, "date") {
		if e.Date.IsZero() {
			verr.Add("date", "is required")
		} else {
			checkNotFuture(verr, "date", e.Date, now)
		}
	}
	for _, tag := range e.Tags {
		if len([]rune(tag)) > maxTagLen {
			verr.Add("tags", "each tag cannot exceed %d characters", maxTagLen)
			break
		}
	}
	switch {
	case e.IsRecurring && e.RecurringType == "":
		verr.Add("recurringType", "is required for recurring expenses")
	case e.IsRecurring && !e.RecurringType.Valid():
		verr.Add("recurringType", "must be one of daily, weekly, monthly, yearly")
	case !e.IsRecurring && e.RecurringType != "":
		verr.Add("recurringType", "is only allowed for recurring expenses")
	}
}

func hasField(verr *ValidationError, field string) bool {
	for _, fe := range verr.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}
