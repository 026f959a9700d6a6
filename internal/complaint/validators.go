package complaint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rejection is a recoverable validation failure carrying the reason shown to
// the user. It is never treated as a system error.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// timeNow is swapped out in tests.
var timeNow = time.Now

var (
	nameRegex        = regexp.MustCompile(`^[A-Za-z .'-]{2,50}$`)
	namePhraseRegex  = regexp.MustCompile(`(?i)(?:my name is|i am|this is)\s+([A-Za-z .'-]{2,50})`)
	mobileRegex      = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	panRegex         = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarRegex     = regexp.MustCompile(`^[0-9]{12}$`)
	accountRegex     = regexp.MustCompile(`^[0-9]{9,18}$`)
	transactionRegex = regexp.MustCompile(`^[A-Za-z0-9-]{5,30}$`)
	mobileSepRegex   = regexp.MustCompile(`[\s\-().+/]`)
	nonDigitRegex    = regexp.MustCompile(`\D`)
)

var knownBanks = []string{
	"sbi", "hdfc", "icici", "axis", "kotak", "bob", "pnb", "canara", "union",
	"idbi", "yes bank", "indusind", "uco", "bandhan", "federal", "rbl",
	"bank of india", "bank of baroda",
}

// ValidateName accepts a bare name, or extracts one from phrasings like
// "my name is Neel Patel".
func ValidateName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if m := namePhraseRegex.FindStringSubmatch(trimmed); len(m) == 2 {
		return titleCase(m[1]), nil
	}
	if nameRegex.MatchString(trimmed) {
		return trimmed, nil
	}
	return "", reject("that doesn't look like a name; use letters only, 2-50 characters")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ValidateMobile normalizes an Indian mobile number to its bare 10 digits.
// Separator punctuation and a leading +91 or 0 are stripped first; any other
// non-digit character rejects the input.
func ValidateMobile(raw string) (string, error) {
	digits := mobileSepRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	if digits == "" || nonDigitRegex.MatchString(digits) {
		return "", reject("a valid Indian mobile number has 10 digits and starts with 6-9")
	}
	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		digits = digits[2:]
	}
	if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		digits = digits[1:]
	}
	if !mobileRegex.MatchString(digits) {
		return "", reject("a valid Indian mobile number has 10 digits and starts with 6-9")
	}
	return digits, nil
}

// ValidateAge accepts whole numbers between 1 and 120.
func ValidateAge(raw string) (string, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", reject("age must be a number")
	}
	if age < 1 || age > 120 {
		return "", reject("age must be between 1 and 120")
	}
	return strconv.Itoa(age), nil
}

// ValidatePANOrAadhaar accepts a PAN (ABCDE1234F) or a 12-digit Aadhaar number.
func ValidatePANOrAadhaar(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(trimmed, " ", ""), "-", ""))
	if panRegex.MatchString(upper) {
		return upper, nil
	}
	if aadhaarRegex.MatchString(upper) {
		return upper, nil
	}
	return "", reject("enter a PAN like ABCDE1234F or a 12-digit Aadhaar number")
}

// ValidateAddress requires at least 6 characters after trimming.
func ValidateAddress(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 6 {
		return "", reject("the address is too short; at least 6 characters are needed")
	}
	return trimmed, nil
}

// ValidateDescription requires at least 10 characters after trimming.
func ValidateDescription(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 10 {
		return "", reject("please describe the incident in at least 10 characters")
	}
	return trimmed, nil
}

// ValidateBankName accepts a known Indian bank or any name of 3+ characters.
func ValidateBankName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	for _, b := range knownBanks {
		if strings.Contains(lower, b) {
			return trimmed, nil
		}
	}
	if len(trimmed) >= 3 {
		return trimmed, nil
	}
	return "", reject("the bank name is too short; e.g. SBI, HDFC, ICICI")
}

// ValidateAccountNumber accepts 9-18 digits, ignoring spaces and dashes.
func ValidateAccountNumber(raw string) (string, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""), "-", "")
	if !accountRegex.MatchString(cleaned) {
		return "", reject("a bank account number has 9-18 digits")
	}
	return cleaned, nil
}

// ValidateAmount parses a money value with an optional currency marker and
// thousands separators, rejecting negatives, and normalizes it to a plain
// decimal string.
func ValidateAmount(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "rs.", "", "rs", "", "INR", "", "inr", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return "", reject("enter the amount as a number, e.g. 15000")
	}
	if strings.HasPrefix(cleaned, "-") {
		return "", reject("the amount cannot be negative")
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", reject("that doesn't look like an amount; enter a number like 15000 or ₹15,000")
	}
	if value < 0 {
		return "", reject("the amount cannot be negative")
	}
	return strconv.FormatFloat(value, 'f', -1, 64), nil
}

// ValidateTransactionID accepts an alphanumeric reference, or normalizes
// blank / "don't know" answers to "unknown".
func ValidateTransactionID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if trimmed == "" || lower == "don't know" || lower == "dont know" {
		return "unknown", nil
	}
	if !transactionRegex.MatchString(trimmed) {
		return "", reject("a transaction ID has 5-30 letters, digits or dashes; type \"don't know\" if unsure")
	}
	return trimmed, nil
}

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2/1/06",
	"2-1-06",
	"2 January 2006",
	"January 2, 2006",
}

// ValidateDate accepts common day-first formats and normalizes to ISO form.
// Impossible calendar dates and dates after today are rejected.
func ValidateDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	var parsed time.Time
	var ok bool
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return "", reject("enter the date like 01/01/2023 (day first) or 2023-01-01")
	}
	now := timeNow()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.After(today) {
		return "", reject("the incident date cannot be in the future")
	}
	return parsed.Format("2006-01-02"), nil
}

// ValidateRecipientName applies the same rules as ValidateName.
func ValidateRecipientName(raw string) (string, error) {
	value, err := ValidateName(raw)
	if err != nil {
		return "", reject("that doesn't look like a name; if unknown, type Unknown")
	}
	return value, nil
}

// ValidateExtraDetails normalizes "no"-style answers and otherwise keeps the
// trimmed text.
func ValidateExtraDetails(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "no", "none", "nothing", "nothing else":
		return "No extra details provided.", nil
	}
	if trimmed == "" {
		return "", reject("type any extra detail, or \"no\" if there is nothing else")
	}
	return trimmed, nil
}
