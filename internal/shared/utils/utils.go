package utils

import "github.com/shopspring/decimal"

// AverageOf trả về total/count làm tròn 2 chữ số, 0 nếu count = 0
func AverageOf(total, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(count)).Round(2)
}

// DerefString trả về "" khi p nil
func DerefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
