package domain

import "time"

// DateLayout is the calendar date format used for every date field.
const DateLayout = "2006-01-02"

// Sex is the sex code stored on a quote.
type Sex string

// Sex codes accepted by the service.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is one of the accepted codes.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Field is one raw request value. Present distinguishes an explicit null
// from a missing key.
//
// Value holds what the transport decoded: string, float64, bool, nil or a
// number type exposing Float64() (such as json.Number).
type Field struct {
	Value   any
	Present bool
}

// Set wraps a decoded value as a present field.
func Set(v any) Field {
	return Field{Value: v, Present: true}
}

// QuoteRequest is the unvalidated input of a quote.
type QuoteRequest struct {
	Name          Field
	CPF           Field
	Sex           Field
	BirthDate     Field
	Capital       Field
	CoverageStart Field
	CoverageEnd   Field
}

// ValidatedQuote is a quote request that passed ValidateQuote.
// The zero value is not a valid quote; obtain one from ValidateQuote.
type ValidatedQuote struct {
	name          string
	cpf           string
	sex           Sex
	birthDate     time.Time
	coverageStart time.Time
	coverageEnd   time.Time
	capital       float64
}

// Name returns the trimmed name.
func (q ValidatedQuote) Name() string { return q.name }

// CPF returns the taxpayer id, digits only.
func (q ValidatedQuote) CPF() string { return q.cpf }

// Sex returns the sex code declared by the caller.
func (q ValidatedQuote) Sex() Sex { return q.sex }

// BirthDate returns the date of birth.
func (q ValidatedQuote) BirthDate() time.Time { return q.birthDate }

// CoverageStart returns the first day of coverage.
func (q ValidatedQuote) CoverageStart() time.Time { return q.coverageStart }

// CoverageEnd returns the last day of coverage.
func (q ValidatedQuote) CoverageEnd() time.Time { return q.coverageEnd }

// Capital returns the insured amount.
func (q ValidatedQuote) Capital() float64 { return q.capital }

// AgeAtStart returns the insured's age on the first day of coverage.
func (q ValidatedQuote) AgeAtStart() int { return AgeAt(q.birthDate, q.coverageStart) }

// Pricing is the outcome of CalculatePricing.
type Pricing struct {
	BaseRate      float64
	AdjustedRate  float64
	DurationDays  int
	DurationYears float64
	Premium       float64
}

// QuoteRecord is a priced quote as persisted. Records are never updated.
type QuoteRecord struct {
	ID            int64
	Name          string
	CPF           string
	Sex           Sex
	BirthDate     time.Time
	Capital       float64
	CoverageStart time.Time
	CoverageEnd   time.Time
	Pricing
	Description string
	CreatedAt   time.Time
}

// NewQuoteRecord assembles the record to store for a validated quote.
// sex is the code to persist, which may differ from the declared one.
func NewQuoteRecord(q ValidatedQuote, p Pricing, sex Sex) QuoteRecord {
	if sex == "" {
		sex = q.sex
	}

	return QuoteRecord{
		Name:          q.name,
		CPF:           q.cpf,
		Sex:           sex,
		BirthDate:     q.birthDate,
		Capital:       q.capital,
		CoverageStart: q.coverageStart,
		CoverageEnd:   q.coverageEnd,
		Pricing:       p,
		Description:   DescribePricing(p),
	}
}
