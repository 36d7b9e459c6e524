package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const DefaultRegion = "Toàn quốc"

// GoldPrice is one row of the gold price board. Prices are in thousands of
// VND per tael; nil means the server sent no value.
type GoldPrice struct {
	Name     string
	Purchase *float64
	Sell     *float64
	Region   string
}

// ExchangeRate is the VND buy and sell rate for one foreign currency.
type ExchangeRate struct {
	CurrencyCode string
	Buy          *float64
	Sell         *float64
}

var currencyNames = map[string]string{
	"USD": "Đô la Mỹ",
	"EUR": "Euro",
	"GBP": "Bảng Anh",
	"JPY": "Yên Nhật",
	"CNY": "Nhân dân tệ",
	"KRW": "Won Hàn Quốc",
	"SGD": "Đô la Singapore",
	"THB": "Baht Thái",
	"AUD": "Đô la Úc",
	"CAD": "Đô la Canada",
	"CHF": "Franc Thụy Sĩ",
	"HKD": "Đô la Hong Kong",
	"MYR": "Ringgit Malaysia",
	"TWD": "Đô la Đài Loan",
}

// CurrencyName returns the Vietnamese name for code, or code itself.
func CurrencyName(code string) string {
	if name, ok := currencyNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// Kind labels a gold product line from its name.
func Kind(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "nhẫn"):
		return "ring"
	case strings.Contains(lower, "trang sức"), strings.Contains(lower, "nữ trang"):
		return "jewelry"
	case strings.Contains(lower, "miếng"):
		return "bar"
	case strings.Contains(lower, "sjc"):
		return "sjc"
	case strings.Contains(lower, "nguyên liệu"):
		return "raw"
	default:
		return "other"
	}
}

// FormatAmount renders v with vi-VN grouping: "." between thousands and ","
// before at most two decimals. nil renders as "N/A".
func FormatAmount(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "N/A"
	}

	neg := *v < 0
	abs := math.Abs(*v)
	whole := math.Floor(abs)
	cents := int64(math.Round((abs - whole) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if cents > 0 {
		frac := fmt.Sprintf("%02d", cents)
		b.WriteByte(',')
		b.WriteString(strings.TrimRight(frac, "0"))
	}
	return b.String()
}

// flexNumber accepts JSON numbers and numeric strings, including vi-VN
// grouped strings like "7.850.000". Anything else decodes to nil.
type flexNumber struct {
	value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		n.value = parseAmount(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	n.value = &f
	return nil
}

var groupedAmount = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)

func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !groupedAmount.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
	}
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if f, err := strconv.ParseFloat(normalized, 64); err == nil {
		return &f
	}
	return nil
}

type rawGold struct {
	GoldName      string     `json:"goldName"`
	Type          string     `json:"type"`
	PurchasePrice flexNumber `json:"purchasePrice"`
	SellPrice     flexNumber `json:"sellPrice"`
	Region        string     `json:"region"`
	Branch        string     `json:"branch"`
}

type rawRate struct {
	CurrencyCode string     `json:"currencyCode"`
	BuyRate      flexNumber `json:"buyRate"`
	SellRate     flexNumber `json:"sellRate"`
}

func (r rawGold) toGoldPrice(index int) GoldPrice {
	name := firstNonEmpty(r.GoldName, r.Type)
	if name == "" {
		name = fmt.Sprintf("Loại %d", index+1)
	}
	region := firstNonEmpty(r.Region, r.Branch)
	if region == "" {
		region = DefaultRegion
	}
	return GoldPrice{
		Name:     name,
		Purchase: r.PurchasePrice.value,
		Sell:     r.SellPrice.value,
		Region:   region,
	}
}

func (r rawRate) toExchangeRate() ExchangeRate {
	return ExchangeRate{
		CurrencyCode: strings.ToUpper(strings.TrimSpace(r.CurrencyCode)),
		Buy:          r.BuyRate.value,
		Sell:         r.SellRate.value,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
