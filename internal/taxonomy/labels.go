// Package taxonomy holds the fixed tax-object label set, the recognized
// business types and the KBLI category catalog. The label set changes only
// with regulatory updates, so it is a closed enum with a metadata table
// rather than anything dynamic.
package taxonomy

// Label is one of the Indonesian withholding/transaction tax object
// categories a GL row can be classified into.
type Label string

const (
	PPh21                    Label = "PPh21"
	PPh22                    Label = "PPh22"
	PPh23Bunga               Label = "PPh23_Bunga"
	PPh23Dividen             Label = "PPh23_Dividen"
	PPh23Hadiah              Label = "PPh23_Hadiah"
	PPh23Jasa                Label = "PPh23_Jasa"
	PPh23Royalti             Label = "PPh23_Royalti"
	PPh23Sewa                Label = "PPh23_Sewa"
	PPh26                    Label = "PPh26"
	PPN                      Label = "PPN"
	PPh42Final               Label = "PPh4_2_Final"
	FiscalCorrectionPositive Label = "Fiscal_Correction_Positive"
	FiscalCorrectionNegative Label = "Fiscal_Correction_Negative"
	NonObject                Label = "Non_Object"
)

// AllLabels lists every valid label in display order.
var AllLabels = []Label{
	PPh21,
	PPh22,
	PPh23Bunga,
	PPh23Dividen,
	PPh23Hadiah,
	PPh23Jasa,
	PPh23Royalti,
	PPh23Sewa,
	PPh26,
	PPN,
	PPh42Final,
	FiscalCorrectionPositive,
	FiscalCorrectionNegative,
	NonObject,
}

// LabelInfo is display metadata for a label.
type LabelInfo struct {
	Emoji       string `json:"emoji"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

var labelInfo = map[Label]LabelInfo{
	PPh21:                    {"👥", "Employee Tax", "Withholding tax on salaries, wages and other employee compensation"},
	PPh22:                    {"🚢", "Import Tax", "Tax on imports and certain goods purchases"},
	PPh23Bunga:               {"💰", "Interest Tax", "Withholding tax on interest income"},
	PPh23Dividen:             {"📈", "Dividend Tax", "Withholding tax on dividend distributions to shareholders"},
	PPh23Hadiah:              {"🎁", "Prize Tax", "Withholding tax on prizes and awards"},
	PPh23Jasa:                {"🔧", "Service Tax", "Withholding tax on service fees"},
	PPh23Royalti:             {"©️", "Royalty Tax", "Withholding tax on royalty payments"},
	PPh23Sewa:                {"🏢", "Rent Tax", "Withholding tax on rent of assets other than land and buildings"},
	PPh26:                    {"🌍", "Foreign Tax", "Withholding tax on payments to foreign taxpayers"},
	PPN:                      {"🧾", "VAT", "Value added tax on taxable goods and services"},
	PPh42Final:               {"🏗️", "Final Tax", "Final income tax, including land/building rent and construction"},
	FiscalCorrectionPositive: {"⚠️", "Correction +", "Positive fiscal correction candidate"},
	FiscalCorrectionNegative: {"ℹ️", "Correction -", "Negative fiscal correction candidate"},
	NonObject:                {"❌", "Non-Taxable", "Not a tax object"},
}

// Info returns display metadata for a label, with a generic fallback for
// anything outside the catalog so rendering never breaks.
func Info(l Label) LabelInfo {
	if info, ok := labelInfo[l]; ok {
		return info
	}
	return LabelInfo{Emoji: "📌", Category: string(l), Description: string(l)}
}

// IsValidLabel reports whether s is in the label taxonomy.
func IsValidLabel(s string) bool {
	_, ok := labelInfo[Label(s)]
	return ok
}

// Recognized taxpayer business types.
var BusinessTypes = []string{"Manufaktur", "Perdagangan", "Jasa"}

// IsValidBusinessType reports whether s is a recognized business type.
func IsValidBusinessType(s string) bool {
	for _, bt := range BusinessTypes {
		if bt == s {
			return true
		}
	}
	return false
}
