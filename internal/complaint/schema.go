package complaint

// Field is one entry of the complaint interview: a unique key, the prompt
// shown to the user and the validator applied to their answer. Field
// definitions are immutable; records reference them by name only.
type Field struct {
	Name     string
	Prompt   string
	Validate func(raw string) (string, error)
}

// Schema returns the fixed, ordered interview sequence. The intake machine
// depends on this ordering and never skips a field.
func Schema() []Field {
	return []Field{
		{Name: "name", Prompt: "Please enter your full name (e.g., Neel Patel):", Validate: ValidateName},
		{Name: "mobile_number", Prompt: "Please enter a valid 10-digit Indian mobile number (starting with 6-9):", Validate: ValidateMobile},
		{Name: "age", Prompt: "Please enter your age (1-120):", Validate: ValidateAge},
		{Name: "pan_or_aadhaar", Prompt: "Please enter a valid PAN (ABCDE1234F) or 12-digit Aadhaar number:", Validate: ValidatePANOrAadhaar},
		{Name: "address", Prompt: "Please enter your address (at least 6 characters):", Validate: ValidateAddress},
		{Name: "description", Prompt: "Please briefly describe the fraud (at least 10 characters):", Validate: ValidateDescription},
		{Name: "bank_name", Prompt: "Please enter your bank name (e.g., SBI, HDFC, ICICI, etc.):", Validate: ValidateBankName},
		{Name: "account_number", Prompt: "Please enter your bank account number (9-18 digits):", Validate: ValidateAccountNumber},
		{Name: "amount_lost", Prompt: "Please enter the approximate amount lost (e.g., 15000 or ₹15,000):", Validate: ValidateAmount},
		{Name: "transaction_id", Prompt: "Please enter your transaction ID (if available). If you don't know, type 'don't know':", Validate: ValidateTransactionID},
		{Name: "date_time", Prompt: "Please enter the date of the incident (e.g., 01/01/2023):", Validate: ValidateDate},
		{Name: "recipient_name", Prompt: "Please enter the recipient's name (if known):", Validate: ValidateRecipientName},
		{Name: "extra_details", Prompt: "Is there any other detail you'd like to provide about the fraud (e.g., suspicious link, email, or other information)? If not, type 'no'.", Validate: ValidateExtraDetails},
	}
}

// FieldLabels maps field names to the headings used in the summary.
var fieldLabels = map[string]string{
	"name":           "Name",
	"mobile_number":  "Mobile Number",
	"age":            "Age",
	"pan_or_aadhaar": "PAN/Aadhaar Number",
	"address":        "Address",
	"description":    "Description of Fraud",
	"bank_name":      "Bank Name",
	"account_number": "Account Number",
	"amount_lost":    "Amount Lost",
	"transaction_id": "Transaction ID",
	"date_time":      "Date of Incident",
	"recipient_name": "Recipient Name",
	"extra_details":  "Extra Details",
}
